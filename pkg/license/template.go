package license

import (
	"strings"
)

const crlf = "\r\n"

// bodyLines returns the license text line by line, including the empty lines framing it
func (cfg *Config) bodyLines() []string {
	yearRange := cfg.YearRange()

	lines := []string{"", cfg.Header, ""}
	for _, holder := range cfg.Holders {
		lines = append(lines, "Copyright (c) "+yearRange+" "+holder)
	}
	lines = append(lines, "")

	body := strings.ReplaceAll(cfg.Body, "\r\n", "\n")
	lines = append(lines, strings.Split(body, "\n")...)
	return append(lines, "")
}

// Render wraps the license text in style. The result always uses CRLF line endings and ends with a blank
// separator line.
func (cfg *Config) Render(style CommentStyle) string {
	lines := cfg.bodyLines()
	var buf strings.Builder

	if style.IsBlock() {
		buf.WriteString(style.Open)
		buf.WriteString(crlf)
		// the framing empty lines are replaced by the open and close lines
		for _, line := range lines[1 : len(lines)-1] {
			buf.WriteString(style.Prefix)
			buf.WriteString(line)
			buf.WriteString(crlf)
		}
		buf.WriteString(style.Close)
	} else {
		for idx, line := range lines {
			if idx > 0 {
				buf.WriteString(crlf)
			}
			buf.WriteString(style.Prefix)
			buf.WriteString(line)
		}
	}

	buf.WriteString(crlf)
	buf.WriteString(crlf)
	return buf.String()
}

// Templates caches the rendered license per extension for the duration of one run
type Templates struct {
	cfg   *Config
	cache map[string]string
}

// NewTemplates creates an empty cache for cfg
func NewTemplates(cfg *Config) *Templates {
	return &Templates{
		cfg:   cfg,
		cache: make(map[string]string),
	}
}

// Get returns the template for ext, rendering it on first use
func (t *Templates) Get(ext string) string {
	tmpl, ok := t.cache[ext]
	if !ok {
		tmpl = t.cfg.Render(t.cfg.StyleFor(ext))
		t.cache[ext] = tmpl
	}

	return tmpl
}
