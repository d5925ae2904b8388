// Package comment makes free-form documentation text safe to embed in JSDoc blocks.
package comment

import (
	"strings"
	"unicode/utf8"
)

const zeroWidthSpace = "\u200b"

// Config limits the sanitized output
type Config struct {
	// MaxLength caps single-line output, in runes, including the ellipsis
	MaxLength int
	// MaxLines caps multi-line output, not counting the ellipsis line
	MaxLines int
	// PreserveHTMLTags keeps entities such as &lt; encoded in single-line output
	PreserveHTMLTags bool
	// PreserveLineBreaks asks callers to keep multi-line documentation multi-line
	PreserveLineBreaks bool
}

// DefaultConfig returns the default sanitizer limits
func DefaultConfig() Config {
	return Config{
		MaxLength:          200,
		MaxLines:           5,
		PreserveHTMLTags:   true,
		PreserveLineBreaks: true,
	}
}

var delimiterEscaper = strings.NewReplacer(
	"*/", "*"+zeroWidthSpace+"/",
	"/*", "/"+zeroWidthSpace+"*",
)

// SanitizeSingleLine collapses text onto one line that cannot terminate a block comment.
// Sanitizing its own output returns the output unchanged.
func SanitizeSingleLine(text string, cfg Config) string {
	s := strings.TrimSpace(text)
	if s == "" {
		return ""
	}

	s = escapeDelimiters(s)
	s = strings.Join(strings.Fields(s), " ")
	if !cfg.PreserveHTMLTags {
		s = decodeEntities(s)
	}

	if cfg.MaxLength > 3 && utf8.RuneCountInString(s) > cfg.MaxLength {
		s = truncate(s, cfg.MaxLength-3, !cfg.PreserveHTMLTags)
	}
	return s
}

// truncate cuts s to n runes plus an ellipsis. With decoding on, the cut moves left until
// the result decodes to itself: an "&amp;" kept encoded because "lt;" followed it would
// otherwise be decoded on the next pass.
func truncate(s string, n int, decoding bool) string {
	runes := []rune(s)
	for ; n > 0; n-- {
		out := string(runes[:n]) + "..."
		if !decoding || decodeEntities(out) == out {
			return out
		}
	}
	return "..."
}

// SanitizeMultiLine returns the non-blank lines of text, trimmed, escaped and decoded.
// When there are more than MaxLines lines the rest is replaced by a single "..." line.
func SanitizeMultiLine(text string, cfg Config) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var lines []string
	for _, line := range splitLines(text) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, decodeEntities(escapeDelimiters(line)))
	}

	if cfg.MaxLines > 0 && len(lines) > cfg.MaxLines {
		lines = append(lines[:cfg.MaxLines:cfg.MaxLines], "...")
	}
	return lines
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(text, "\n")
}

// escapeDelimiters repeats until stable: escaping "/*/" can expose a second delimiter
func escapeDelimiters(s string) string {
	for strings.Contains(s, "*/") || strings.Contains(s, "/*") {
		s = delimiterEscaper.Replace(s)
	}
	return s
}

var entities = []struct {
	encoded string
	decoded string
}{
	{"&lt;", "<"},
	{"&gt;", ">"},
	{"&amp;", "&"},
	{"&quot;", `"`},
	{"&apos;", "'"},
}

// decodeEntities decodes the basic HTML entities in one pass. An "&amp;" that would
// produce a new entity ("&amp;lt;") is left encoded.
func decodeEntities(s string) string {
	if !strings.Contains(s, "&") {
		return s
	}

	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); {
		if s[i] != '&' {
			sb.WriteByte(s[i])
			i++
			continue
		}
		decoded := false
		for _, e := range entities {
			if !strings.HasPrefix(s[i:], e.encoded) {
				continue
			}
			if e.decoded == "&" && startsWithEntity(s[i+len(e.encoded):]) {
				break
			}
			sb.WriteString(e.decoded)
			i += len(e.encoded)
			decoded = true
			break
		}
		if !decoded {
			sb.WriteByte('&')
			i++
		}
	}
	return sb.String()
}

func startsWithEntity(s string) bool {
	for _, e := range entities {
		if strings.HasPrefix("&"+s, e.encoded) {
			return true
		}
	}
	return false
}
