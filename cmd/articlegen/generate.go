package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"articlegen/internal/domain/entity"
	"articlegen/internal/infrastructure/userinteraction"

	"github.com/fatih/color"
)

// GenerateCmd runs one pipeline in the foreground and writes the markdown.
// Usage: articlegen generate --topic "Robotics" --out ./articles
type GenerateCmd struct {
	Topic string `short:"t" long:"topic" description:"article topic" required:"true"`
	Out   string `short:"o" long:"out" description:"output directory" default:"."`
	Print bool   `short:"p" long:"print" description:"also print the article to stdout"`
}

func (g *GenerateCmd) Execute(_ []string) error {
	topic := strings.TrimSpace(g.Topic)
	if topic == "" {
		return fmt.Errorf("%w: please enter a topic", entity.ErrInvalidInput)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	container, err := bootstrap(ctx, nil)
	if err != nil {
		return err
	}
	defer container.Close()

	fmt.Printf("\nGenerating article on %q... This may take a few minutes.\n", topic)

	article, err := container.Generator.Generate(ctx, topic, userinteraction.NewConsoleProgress(os.Stdout))
	if err != nil {
		return fmt.Errorf("an error occurred: %w", err)
	}

	path, err := writeArticle(g.Out, article)
	if err != nil {
		return err
	}

	color.New(color.FgGreen, color.Bold).Println("\nArticle generated successfully!")
	fmt.Printf("Saved to %s\n", path)
	if g.Print {
		fmt.Println()
		fmt.Println(article.Markdown())
	}
	return nil
}

func writeArticle(dir string, article *entity.Article) (string, error) {
	name := localFilename(article.Filename())
	path := filepath.Join(dir, name)
	if filepath.Dir(path) != filepath.Clean(dir) {
		return "", fmt.Errorf("article filename %q is not inside %s", name, dir)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(article.Markdown()), 0o644); err != nil {
		return "", fmt.Errorf("write article: %w", err)
	}
	return path, nil
}

// localFilename replaces path separators so a topic such as "AI/ML" stays a
// single file name inside the output directory.
func localFilename(name string) string {
	name = strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == filepath.Separator {
			return '_'
		}
		return r
	}, name)
	if name == "." || name == ".." || name == "" {
		return "article.md"
	}
	return name
}
