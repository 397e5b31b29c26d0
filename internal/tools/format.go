package tools

import (
	"context"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Styles lists the accepted format_text styles in the order they are advertised.
var Styles = []string{"uppercase", "lowercase", "title", "capitalize"}

const defaultStyle = "uppercase"

type formatTool struct{}

// NewFormat returns the format_text tool.
func NewFormat() Tool { return formatTool{} }

func (formatTool) Descriptor() Descriptor {
	return Descriptor{
		Name:        "format_text",
		Description: "Format text in different styles",
		InputSchema: Schema{
			Type: "object",
			Properties: map[string]Property{
				"text": {
					Type:        "string",
					Description: "Text to format",
				},
				"style": {
					Type:        "string",
					Description: "Text formatting style",
					Enum:        append([]string(nil), Styles...),
					Default:     defaultStyle,
				},
			},
			Required: []string{"text"},
		},
	}
}

func (formatTool) Execute(_ context.Context, args Arguments) (string, error) {
	text, _, err := args.String("text")
	if err != nil {
		return "", err
	}
	if text == "" {
		return "", Failf(KindMissingArgument, "Text parameter is required")
	}
	style, present, err := args.String("style")
	if err != nil {
		return "", err
	}
	if !present {
		style = defaultStyle
	}

	formatted, ok := applyStyle(style, text)
	if !ok {
		return "", Failf(KindInvalidArgument, "Unknown style '%s'. Available: %s", style, strings.Join(Styles, ", "))
	}
	return fmt.Sprintf("Formatted text (%s): %s", style, formatted), nil
}

// applyStyle builds fresh casers per call; a cases.Caser is not safe for
// concurrent use.
func applyStyle(style, text string) (string, bool) {
	upper := cases.Upper(language.Und)
	lower := cases.Lower(language.Und)
	switch style {
	case "uppercase":
		return upper.String(text), true
	case "lowercase":
		return lower.String(text), true
	case "title":
		return titleWords(text, upper, lower), true
	case "capitalize":
		return capitalize(text, upper, lower), true
	}
	return "", false
}

// titleWords capitalizes every whitespace-separated word, keeping the
// original spacing.
func titleWords(s string, upper, lower cases.Caser) string {
	var b strings.Builder
	b.Grow(len(s))
	start := -1
	for i, r := range s {
		if !unicode.IsSpace(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			b.WriteString(capitalize(s[start:i], upper, lower))
			start = -1
		}
		b.WriteRune(r)
	}
	if start >= 0 {
		b.WriteString(capitalize(s[start:], upper, lower))
	}
	return b.String()
}

func capitalize(s string, upper, lower cases.Caser) string {
	if s == "" {
		return s
	}
	_, size := utf8.DecodeRuneInString(s)
	return upper.String(s[:size]) + lower.String(s[size:])
}
