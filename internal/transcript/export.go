// Package transcript writes the visible chat transcript to a file.
package transcript

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/diogo/ayurchat/internal/models"
)

// Format is the file format of an export
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

// Meta describes where a transcript came from
type Meta struct {
	Title      string
	BaseURL    string
	ExportedAt time.Time
}

// FormatFromPath picks JSON for a .json extension and Markdown otherwise.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatMarkdown
}

// Markdown renders the messages as a Markdown document.
func Markdown(messages []models.Message, meta Meta) string {
	var sb strings.Builder

	title := meta.Title
	if title == "" {
		title = models.AssistantName + " conversation"
	}
	sb.WriteString("# ")
	sb.WriteString(title)
	sb.WriteString("\n\n")

	if meta.BaseURL != "" {
		fmt.Fprintf(&sb, "**Backend:** %s\n", meta.BaseURL)
	}
	if !meta.ExportedAt.IsZero() {
		fmt.Fprintf(&sb, "**Exported:** %s\n", meta.ExportedAt.Format("2006-01-02 15:04:05"))
	}
	fmt.Fprintf(&sb, "**Messages:** %d\n\n---\n\n", len(messages))

	for i, msg := range messages {
		sb.WriteString("## ")
		sb.WriteString(msg.Role.Label())
		sb.WriteString("\n\n")
		sb.WriteString(msg.Content)
		sb.WriteString("\n")

		if i < len(messages)-1 {
			sb.WriteString("\n---\n\n")
		}
	}

	return sb.String()
}

type exportMessage struct {
	Role    models.Role `json:"role"`
	Header  string      `json:"header"`
	Content string      `json:"content"`
}

type exportDocument struct {
	Title      string          `json:"title,omitempty"`
	BaseURL    string          `json:"base_url,omitempty"`
	ExportedAt *time.Time      `json:"exported_at,omitempty"`
	Messages   []exportMessage `json:"messages"`
}

// JSON renders the messages as an indented JSON document.
func JSON(messages []models.Message, meta Meta) ([]byte, error) {
	doc := exportDocument{
		Title:    meta.Title,
		BaseURL:  meta.BaseURL,
		Messages: make([]exportMessage, len(messages)),
	}
	if !meta.ExportedAt.IsZero() {
		at := meta.ExportedAt
		doc.ExportedAt = &at
	}
	for i, msg := range messages {
		doc.Messages[i] = exportMessage{Role: msg.Role, Header: msg.Role.Label(), Content: msg.Content}
	}
	return json.MarshalIndent(doc, "", "  ")
}

// WriteFile exports the messages to path, choosing the format from its extension.
func WriteFile(path string, messages []models.Message, meta Meta) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("export path is required")
	}
	if len(messages) == 0 {
		return fmt.Errorf("nothing to export")
	}

	var data []byte
	switch FormatFromPath(path) {
	case FormatJSON:
		raw, err := JSON(messages, meta)
		if err != nil {
			return fmt.Errorf("failed to encode transcript: %w", err)
		}
		data = append(raw, '\n')
	default:
		data = []byte(Markdown(messages, meta))
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create export directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write transcript: %w", err)
	}
	return nil
}
