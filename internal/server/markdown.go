package server

import (
	"bytes"
	"html/template"
	"os"

	"github.com/yuin/goldmark"

	"github.com/hnrobert/remlogon/internal/logger"
)

// RenderMarkdown converts markdown text to HTML (safe to inject as template.HTML).
func RenderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	_ = goldmark.Convert([]byte(md), &buf)
	return template.HTML(buf.String())
}

// loadNotice reads and renders the logon-page notice once at startup.
func loadNotice(path string) template.HTML {
	b, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("Notice file %s not readable: %v", path, err)
		return ""
	}
	return RenderMarkdown(string(b))
}
