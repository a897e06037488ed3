package prompts

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"articlegen/internal/domain/entity"
)

var placeholderRe = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// TemplateError lists placeholders that had no parameter.
type TemplateError struct {
	Missing []string
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("unresolved placeholders: %s", strings.Join(e.Missing, ", "))
}

func (e *TemplateError) Is(target error) bool { return target == entity.ErrTemplate }

// Render replaces every {name} in tmpl with params[name] in a single pass.
// Substituted values are not rescanned.
func Render(tmpl string, params map[string]string) (string, error) {
	missing := make(map[string]bool)
	out := placeholderRe.ReplaceAllStringFunc(tmpl, func(match string) string {
		key := match[1 : len(match)-1]
		value, ok := params[key]
		if !ok {
			missing[key] = true
			return match
		}
		return value
	})

	if len(missing) > 0 {
		keys := make([]string, 0, len(missing))
		for k := range missing {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return "", &TemplateError{Missing: keys}
	}
	return out, nil
}

// Placeholders returns the distinct placeholder names used in tmpl.
func Placeholders(tmpl string) []string {
	var names []string
	seen := make(map[string]bool)
	for _, m := range placeholderRe.FindAllStringSubmatch(tmpl, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}
