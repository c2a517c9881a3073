package license

import "strings"

// lineAt returns the line starting at offset without its trailing newline
func lineAt(text string, offset int) string {
	end := strings.IndexByte(text[offset:], '\n')
	if end < 0 {
		return text[offset:]
	}

	return text[offset : offset+end]
}

// nextLine returns the offset just past the newline following offset, or len(text) if there is none
func nextLine(text string, offset int) int {
	end := strings.IndexByte(text[offset:], '\n')
	if end < 0 {
		return len(text)
	}

	return offset + end + 1
}

// LeadingBlockEnd returns the offset where the leading comment block of text ends. For line styles the scan stops
// at the first line that doesn't start with the comment prefix. Block styles end on the line containing the close
// token. A single blank line following the block is included.
func LeadingBlockEnd(text string, style CommentStyle) int {
	end := 0

	if style.IsBlock() {
		if strings.HasPrefix(text, style.Open) {
			closeIdx := strings.Index(text[len(style.Open):], style.Close)
			if closeIdx < 0 {
				end = len(text)
			} else {
				end = nextLine(text, len(style.Open)+closeIdx+len(style.Close))
			}
		}
	} else {
		for end < len(text) && style.matchesLine(lineAt(text, end)) {
			end = nextLine(text, end)
		}
	}

	// eat the separator
	if end < len(text) && strings.TrimSpace(lineAt(text, end)) == "" {
		end = nextLine(text, end)
	}

	return end
}

// isCRLF reports whether s has a carriage return at idx that is directly followed by a line feed
func isCRLF(s string, idx int) bool {
	return s[idx] == '\r' && idx+1 < len(s) && s[idx+1] == '\n'
}

// HasPrefixIgnoringCR reports whether text starts with prefix, treating CRLF and LF line endings as equal on both
// sides.
func HasPrefixIgnoringCR(text, prefix string) bool {
	a, b := 0, 0
	for a < len(text) && b < len(prefix) {
		if isCRLF(text, a) {
			a++
			continue
		}

		if isCRLF(prefix, b) {
			b++
			continue
		}

		if text[a] != prefix[b] {
			return false
		}

		a++
		b++
	}

	return b == len(prefix)
}
