package entity

import (
	"fmt"
	"strings"
	"time"
)

const ArticleDateLayout = "January 2, 2006"

type Article struct {
	Topic       string
	Body        string
	GeneratedAt time.Time
}

// Markdown renders the downloadable document.
func (a Article) Markdown() string {
	return fmt.Sprintf("# Generated Article on %s\n\n%s\n\n---\n*Generated on %s*",
		a.Topic, a.Body, a.GeneratedAt.Format(ArticleDateLayout))
}

// Filename is the topic with spaces replaced by underscores plus "_article.md".
func (a Article) Filename() string {
	return strings.ReplaceAll(a.Topic, " ", "_") + "_article.md"
}
