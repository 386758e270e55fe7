package notifier

import (
	"fmt"
	"regexp"
	"strings"
)

// Alert carries everything needed to render one notification.
type Alert struct {
	TargetName string
	URL        string
	Sections   []string
	Template   string
}

const emptySections = "none listed"

var rePlaceholder = regexp.MustCompile(`\{([a-zA-Z_]+)\}`)

// defaultMessage is the fixed fallback format: header, sections, link.
func defaultMessage(a Alert) string {
	return fmt.Sprintf("🚨 ALERT: %s has open seats!\nSections: %s\nLink: %s",
		a.TargetName, sectionsString(a.Sections), a.URL)
}

// renderTemplate substitutes {course_name}, {sections} and {course_url}.
// A reference to an unknown variable or leftover unbalanced braces fail the
// render; the caller falls back to defaultMessage.
func renderTemplate(a Alert) (string, error) {
	vars := map[string]string{
		"course_name": a.TargetName,
		"sections":    sectionsString(a.Sections),
		"course_url":  a.URL,
	}

	var unknown []string
	out := rePlaceholder.ReplaceAllStringFunc(a.Template, func(m string) string {
		name := m[1 : len(m)-1]
		if v, ok := vars[name]; ok {
			return v
		}
		unknown = append(unknown, name)
		return m
	})
	if len(unknown) > 0 {
		return "", fmt.Errorf("template references unknown variables: %s", strings.Join(unknown, ", "))
	}
	if strings.ContainsAny(out, "{}") {
		return "", fmt.Errorf("template has unbalanced braces")
	}
	return out, nil
}

func sectionsString(sections []string) string {
	if len(sections) == 0 {
		return emptySections
	}
	return strings.Join(sections, ", ")
}
