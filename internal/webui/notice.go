// ABOUTME: Renders the optional hub notice from markdown
// ABOUTME: The notice is converted once at startup with goldmark

package webui

import (
	"bytes"
	"fmt"
	"html/template"
	"os"

	"github.com/yuin/goldmark"
)

// LoadNotice reads a markdown file and converts it to HTML. An empty path
// means no notice.
func LoadNotice(path string) (template.HTML, error) {
	if path == "" {
		return "", nil
	}

	md, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading hub notice: %w", err)
	}
	return RenderNotice(md)
}

// RenderNotice converts markdown to HTML.
func RenderNotice(md []byte) (template.HTML, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert(md, &buf); err != nil {
		return "", fmt.Errorf("converting hub notice: %w", err)
	}
	return template.HTML(buf.String()), nil
}
