package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
)

// markdownRenderer renders agent markdown for the transcript. The agent is a
// trusted content source; user text never goes through here and is always
// inserted literally.
type markdownRenderer struct {
	width    int
	renderer *glamour.TermRenderer
}

func newMarkdownRenderer(width int) *markdownRenderer {
	return &markdownRenderer{width: width}
}

// Render converts markdown to styled terminal output, rebuilding the
// underlying renderer when the width changes. Falls back to the raw text on
// any renderer failure so a reply is never dropped.
func (r *markdownRenderer) Render(content string, width int) string {
	if width < 20 {
		width = 20
	}
	if r.renderer == nil || width != r.width {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(width),
			glamour.WithEmoji(),
		)
		if err != nil {
			logDebug(fmt.Sprintf("markdown renderer init failed: %v", err))
			return content
		}
		r.renderer = renderer
		r.width = width
	}
	out, err := r.renderer.Render(content)
	if err != nil {
		logDebug(fmt.Sprintf("markdown render failed: %v", err))
		return content
	}
	return strings.TrimRight(out, "\n")
}
