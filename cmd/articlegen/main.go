package main

import (
	"errors"
	"fmt"
	"os"

	"articlegen/internal/domain/entity"

	"github.com/fatih/color"
	"github.com/jessevdk/go-flags"
)

var version = "dev"

// Options is the root command; go-flags dispatches to the selected
// sub-command's Execute.
type Options struct {
	Version  bool        `short:"v" long:"version" description:"print version and exit"`
	Serve    ServeCmd    `command:"serve" description:"Start the web UI"`
	Generate GenerateCmd `command:"generate" description:"Generate one article from the command line"`
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	opts := &Options{}
	parser := flags.NewParser(opts, flags.HelpFlag|flags.PassDoubleDash)
	parser.SubcommandsOptional = true
	parser.CommandHandler = func(cmd flags.Commander, cmdArgs []string) error {
		if opts.Version {
			fmt.Println(version)
			return nil
		}
		if cmd == nil {
			parser.WriteHelp(os.Stdout)
			return nil
		}
		return cmd.Execute(cmdArgs)
	}

	if _, err := parser.ParseArgs(args); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			fmt.Println(err)
			return 0
		}
		color.New(color.FgRed, color.Bold).Fprintf(os.Stderr, "articlegen: %v\n", err)
		if errors.Is(err, entity.ErrStartup) {
			return 2
		}
		return 1
	}
	return 0
}
