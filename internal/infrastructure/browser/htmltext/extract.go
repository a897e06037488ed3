package htmltext

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

type Config struct {
	TagsToRemove  []string
	MaxOutputSize int
}

var DefaultConfig = Config{
	TagsToRemove: []string{
		"script", "style", "noscript", "svg", "iframe", "template",
		"link", "meta", "head", "nav", "footer", "form", "button",
	},
	MaxOutputSize: 20_000,
}

var blockTags = map[string]bool{
	"p": true, "div": true, "section": true, "article": true, "main": true,
	"header": true, "aside": true, "li": true, "ul": true, "ol": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"br": true, "tr": true, "table": true, "blockquote": true, "pre": true,
	"figcaption": true, "dd": true, "dt": true, "hr": true,
}

// Extract returns the readable text of an HTML document: the <title> on the
// first line, then the visible body text with one block element per line.
func Extract(rawHTML string, cfg *Config) (string, error) {
	if cfg == nil {
		cfg = &DefaultConfig
	}

	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	if title := findNode(doc, "title"); title != nil {
		if t := collapse(textOf(title)); t != "" {
			sb.WriteString(t)
			sb.WriteString("\n\n")
		}
	}

	root := findNode(doc, "body")
	if root == nil {
		root = doc
	}
	clean(root, cfg)

	var body strings.Builder
	writeText(&body, root)
	sb.WriteString(normalizeLines(body.String()))

	return truncate(strings.TrimSpace(sb.String()), cfg.MaxOutputSize), nil
}

func findNode(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findNode(c, tag); found != nil {
			return found
		}
	}
	return nil
}

// clean drops comments and non-content elements in place.
func clean(n *html.Node, cfg *Config) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		switch {
		case c.Type == html.CommentNode:
			n.RemoveChild(c)
		case c.Type == html.ElementNode && isOneOf(c.Data, cfg.TagsToRemove...):
			n.RemoveChild(c)
		case c.Type == html.ElementNode && hidden(c):
			n.RemoveChild(c)
		default:
			clean(c, cfg)
		}
		c = next
	}
}

func hidden(n *html.Node) bool {
	for _, attr := range n.Attr {
		switch attr.Key {
		case "hidden":
			return true
		case "aria-hidden":
			if attr.Val == "true" {
				return true
			}
		}
	}
	return false
}

func writeText(sb *strings.Builder, n *html.Node) {
	if n.Type == html.TextNode {
		sb.WriteString(strings.Map(flattenSpace, n.Data))
		return
	}
	block := n.Type == html.ElementNode && blockTags[n.Data]
	if block {
		sb.WriteString("\n")
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(sb, c)
	}
	if block {
		sb.WriteString("\n")
	}
}

// flattenSpace keeps source line breaks from splitting a block.
func flattenSpace(r rune) rune {
	switch r {
	case '\n', '\r', '\t', '\f':
		return ' '
	}
	return r
}

func textOf(n *html.Node) string {
	var sb strings.Builder
	writeText(&sb, n)
	return sb.String()
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func normalizeLines(s string) string {
	lines := strings.Split(s, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = collapse(line); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

func truncate(s string, maxSize int) string {
	if maxSize > 0 && len(s) > maxSize {
		return s[:runeBoundary(s, maxSize)] + "\n... (truncated)"
	}
	return s
}

// runeBoundary backs n off to the start of the rune it falls inside.
func runeBoundary(s string, n int) int {
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return n
}

func isOneOf(s string, candidates ...string) bool {
	for _, c := range candidates {
		if s == c {
			return true
		}
	}
	return false
}
