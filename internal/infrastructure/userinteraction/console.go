package userinteraction

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"articlegen/internal/application/port/output"
	"articlegen/internal/domain/entity"

	"github.com/fatih/color"
)

var _ output.ProgressPort = (*ConsoleProgress)(nil)

// ConsoleProgress prints pipeline progress for the command line.
type ConsoleProgress struct {
	mu  sync.Mutex
	out io.Writer
}

func NewConsoleProgress(out io.Writer) *ConsoleProgress {
	if out == nil {
		out = os.Stdout
	}
	return &ConsoleProgress{out: out}
}

func (c *ConsoleProgress) OnProgress(ev entity.ProgressEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch ev.Kind {
	case entity.ProgressTaskStarted:
		cyan := color.New(color.FgCyan, color.Bold)
		cyan.Fprintf(c.out, "\n━━━ Task %d/%d: %s (%s) ━━━\n", ev.TaskIndex+1, ev.TaskCount, ev.TaskName, ev.AgentRole)

	case entity.ProgressToolStarted:
		icon, name := toolDisplay(ev.ToolName)
		yellow := color.New(color.FgYellow, color.Bold)
		yellow.Fprintf(c.out, "%s %s\n", icon, name)
		if summary := formatToolArguments(ev.ToolName, ev.Message); summary != "" {
			dim := color.New(color.Faint)
			dim.Fprintf(c.out, "   %s\n", summary)
		}

	case entity.ProgressToolFinished:
		if ev.IsError {
			red := color.New(color.FgRed)
			red.Fprint(c.out, "❌ Error: ")
			dim := color.New(color.Faint)
			dim.Fprintln(c.out, truncate(ev.Message, 300))
			return
		}
		green := color.New(color.FgGreen)
		green.Fprintln(c.out, "✓ done")

	case entity.ProgressTaskCompleted:
		green := color.New(color.FgGreen, color.Bold)
		green.Fprintf(c.out, "✓ Task %d/%d completed", ev.TaskIndex+1, ev.TaskCount)
		if ev.Message != "" {
			fmt.Fprintf(c.out, " (%s)", ev.Message)
		}
		fmt.Fprintln(c.out)

	case entity.ProgressTaskFailed:
		red := color.New(color.FgRed, color.Bold)
		red.Fprintf(c.out, "✗ Task %d/%d failed: %s\n", ev.TaskIndex+1, ev.TaskCount, truncate(ev.Message, 300))
	}
}

func toolDisplay(name entity.ToolName) (string, string) {
	displays := map[entity.ToolName][2]string{
		entity.ToolWebSearch:    {"🔎", "Web search"},
		entity.ToolReadPage:     {"🌐", "Read page"},
		entity.ToolDelegateWork: {"🤖", "Delegate work"},
		entity.ToolAskQuestion:  {"❓", "Ask coworker"},
	}

	if display, ok := displays[name]; ok {
		return display[0], display[1]
	}
	return "🔧", string(name)
}

func formatToolArguments(name entity.ToolName, arguments string) string {
	var args map[string]interface{}
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return ""
	}

	switch name {
	case entity.ToolWebSearch:
		if q, ok := args["query"].(string); ok {
			return fmt.Sprintf("Query: %s", truncate(q, 80))
		}

	case entity.ToolReadPage:
		if url, ok := args["url"].(string); ok {
			return fmt.Sprintf("URL: %s", url)
		}

	case entity.ToolDelegateWork, entity.ToolAskQuestion:
		coworker, _ := args["coworker"].(string)
		text, _ := args["task"].(string)
		if text == "" {
			text, _ = args["question"].(string)
		}
		return fmt.Sprintf("Coworker: %s | %s", coworker, truncate(text, 60))
	}

	return ""
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
