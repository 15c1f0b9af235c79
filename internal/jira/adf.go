package jira

import (
	"encoding/json"
	"strings"
)

// The REST transport encodes rich text (descriptions, comment bodies) as
// ADF documents while the legacy transport uses plain strings. These
// helpers let the rest of the system work in plain text regardless of
// transport.

type adfInline struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type adfBlock struct {
	Type    string      `json:"type"`
	Content []adfInline `json:"content"`
}

type adfDoc struct {
	Type    string     `json:"type"`
	Version int        `json:"version"`
	Content []adfBlock `json:"content"`
}

// ADFToText extracts plain text from a rich-text field value. The value
// may be an ADF document, a JSON string, or absent.
func ADFToText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	var doc adfDoc
	if err := json.Unmarshal(raw, &doc); err != nil || doc.Type != "doc" {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
		return string(raw)
	}

	var lines []string
	for _, block := range doc.Content {
		var parts []string
		for _, inline := range block.Content {
			if inline.Text != "" {
				parts = append(parts, inline.Text)
			}
		}
		if len(parts) > 0 {
			lines = append(lines, strings.Join(parts, ""))
		}
	}
	return strings.Join(lines, "\n")
}

// TextToADF wraps plain text in a minimal ADF document, one paragraph per
// line. Returns nil for empty text so omitted fields stay omitted.
func TextToADF(text string) json.RawMessage {
	if text == "" {
		return nil
	}

	var blocks []adfBlock
	for _, line := range strings.Split(text, "\n") {
		block := adfBlock{Type: "paragraph", Content: []adfInline{}}
		if line != "" {
			block.Content = append(block.Content, adfInline{Type: "text", Text: line})
		}
		blocks = append(blocks, block)
	}

	data, _ := json.Marshal(adfDoc{Type: "doc", Version: 1, Content: blocks})
	return data
}
