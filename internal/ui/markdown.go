package ui

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
)

// MarkdownRenderMargin is the left margin used for item descriptions.
const MarkdownRenderMargin = 2

// DefaultCodeTheme is the Chroma theme for code blocks in descriptions.
const DefaultCodeTheme = "monokai"

// codeTheme is set from the [ui] code_theme setting.
var codeTheme = DefaultCodeTheme

// ConfigureCodeTheme sets the Chroma theme used for code blocks. Empty
// restores the default.
func ConfigureCodeTheme(theme string) {
	theme = strings.TrimSpace(theme)
	if theme == "" {
		theme = DefaultCodeTheme
	}
	codeTheme = theme
}

// RenderMarkdown renders an item description for terminal display.
func RenderMarkdown(content string, width int) (string, error) {
	if width <= 0 {
		width = DefaultTermWidth
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStyles(descriptionStyle()),
		glamour.WithWordWrap(width-MarkdownRenderMargin),
	)
	if err != nil {
		return "", err
	}

	rendered, err := r.Render(content)
	if err != nil {
		return "", err
	}

	// glamour adds trailing newlines; normalize to a single trailing newline.
	return strings.TrimRight(rendered, "\n") + "\n", nil
}

func descriptionStyle() ansi.StyleConfig {
	muted := mdStringPtr("8")
	var accent *string
	if color, ok := AccentColor(); ok {
		accent = mdStringPtr(color)
	}

	return ansi.StyleConfig{
		Document: ansi.StyleBlock{
			Margin: mdUintPtr(MarkdownRenderMargin),
		},
		BlockQuote: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{Color: muted},
			Indent:         mdUintPtr(1),
			IndentToken:    mdStringPtr("│ "),
		},
		List: ansi.StyleList{LevelIndent: 2},
		Heading: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{
				BlockSuffix: "\n",
				Color:       accent,
				Bold:        mdBoolPtr(true),
			},
		},
		H1:     ansi.StyleBlock{StylePrimitive: ansi.StylePrimitive{Prefix: "# ", Underline: mdBoolPtr(true)}},
		H2:     ansi.StyleBlock{StylePrimitive: ansi.StylePrimitive{Prefix: "## "}},
		H3:     ansi.StyleBlock{StylePrimitive: ansi.StylePrimitive{Prefix: "### "}},
		Emph:   ansi.StylePrimitive{Italic: mdBoolPtr(true)},
		Strong: ansi.StylePrimitive{Bold: mdBoolPtr(true)},
		Item:   ansi.StylePrimitive{BlockPrefix: "• "},
		Enumeration: ansi.StylePrimitive{
			BlockPrefix: ". ",
		},
		Link: ansi.StylePrimitive{Color: muted, Underline: mdBoolPtr(true)},
		Code: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{Prefix: "`", Suffix: "`", Color: accent},
		},
		CodeBlock: ansi.StyleCodeBlock{
			StyleBlock: ansi.StyleBlock{
				StylePrimitive: ansi.StylePrimitive{Color: muted},
				Margin:         mdUintPtr(2),
			},
			Theme: codeTheme,
		},
		HorizontalRule: ansi.StylePrimitive{Color: muted, Format: "\n--------\n"},
	}
}

func mdBoolPtr(v bool) *bool { return &v }

func mdStringPtr(v string) *string { return &v }

func mdUintPtr(v uint) *uint { return &v }
