package entity

type ToolName string

const (
	ToolWebSearch    ToolName = "web_search"
	ToolReadPage     ToolName = "read_page"
	ToolDelegateWork ToolName = "delegate_work"
	ToolAskQuestion  ToolName = "ask_question"
)

func (t ToolName) String() string {
	return string(t)
}

type SearchResult struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	URL     string `json:"url"`
}
