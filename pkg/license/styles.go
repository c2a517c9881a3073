package license

import "strings"

// CommentStyle describes how a license block is wrapped for a family of files. Line styles repeat Prefix on every
// line and have Open == Prefix and an empty Close. Block styles open with Open, indent each line with Prefix and
// end with Close.
type CommentStyle struct {
	Open   string `yaml:"open"`
	Prefix string `yaml:"prefix"`
	Close  string `yaml:"close"`
}

// LineComment returns a line style using prefix on every line
func LineComment(prefix string) CommentStyle {
	return CommentStyle{Open: prefix, Prefix: prefix}
}

// BlockComment returns a block style
func BlockComment(open, prefix, close string) CommentStyle {
	return CommentStyle{Open: open, Prefix: prefix, Close: close}
}

// IsBlock reports whether the style uses a distinct closing token
func (s CommentStyle) IsBlock() bool {
	return s.Close != ""
}

// matchesLine reports whether line (without its line ending) belongs to a line comment of this style. Editors
// commonly strip trailing whitespace so a bare, right-trimmed prefix counts as well.
func (s CommentStyle) matchesLine(line string) bool {
	if strings.HasPrefix(line, s.Prefix) {
		return true
	}

	trimmed := strings.TrimRight(s.Prefix, " \t")
	return trimmed != "" && strings.TrimRight(line, "\r") == trimmed
}

// DefaultStyle is used for every extension without an explicit mapping
var DefaultStyle = LineComment("// ")

// defaultStyles maps extensions to their comment style. Extensions that aren't listed use DefaultStyle.
var defaultStyles = map[string]CommentStyle{
	".cmake": LineComment("# "),
	".py":    LineComment("# "),
	".bat":   LineComment("rem "),
	".xml":   BlockComment("<!--", "  ", "-->"),
	".axaml": BlockComment("<!--", "  ", "-->"),
	".xaml":  BlockComment("<!--", "  ", "-->"),
}
