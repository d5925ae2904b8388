package comment

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeSingleLine(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"whitespace only", " \t\r\n ", ""},
		{"collapses whitespace", "  Gets\tthe\r\n  widget  ", "Gets the widget"},
		{"escapes closer", "ends */ here", "ends *\u200b/ here"},
		{"escapes opener", "starts /* here", "starts /\u200b* here"},
		{"overlapping delimiters", "a/*/b", "a/\u200b*\u200b/b"},
		{"entities preserved by default", "a &lt; b", "a &lt; b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeSingleLine(tt.input, cfg))
		})
	}
}

func TestSanitizeSingleLine_DecodesEntities(t *testing.T) {
	// Test: Entities decode when HTML is not preserved, without creating new entities
	cfg := DefaultConfig()
	cfg.PreserveHTMLTags = false

	assert.Equal(t, `a < b > c & "d" 'e'`, SanitizeSingleLine("a &lt; b &gt; c &amp; &quot;d&quot; &apos;e&apos;", cfg))
	assert.Equal(t, "&amp;lt; stays", SanitizeSingleLine("&amp;lt; stays", cfg))
	assert.Equal(t, "&nbsp; & &x", SanitizeSingleLine("&nbsp; &amp; &x", cfg))
}

func TestSanitizeSingleLine_Truncates(t *testing.T) {
	// Test: Long text is cut by runes to MaxLength including the ellipsis
	cfg := DefaultConfig()
	cfg.MaxLength = 10

	assert.Equal(t, "abcdefg...", SanitizeSingleLine("abcdefghijklmnop", cfg))
	assert.Equal(t, "ÄÖÜäöüß...", SanitizeSingleLine("ÄÖÜäöüßÄÖÜäöüß", cfg))
	assert.Equal(t, "abcdefghij", SanitizeSingleLine("abcdefghij", cfg))
}

func TestSanitizeMultiLine(t *testing.T) {
	cfg := DefaultConfig()

	assert.Nil(t, SanitizeMultiLine("  \n ", cfg))

	lines := SanitizeMultiLine("First line.\r\n\r\n  Second &lt;b&gt; line */  \rThird", cfg)
	assert.Equal(t, []string{"First line.", "Second <b> line *\u200b/", "Third"}, lines)
}

func TestSanitizeMultiLine_MaxLines(t *testing.T) {
	// Test: Lines beyond MaxLines collapse into one ellipsis line
	cfg := DefaultConfig()
	cfg.MaxLines = 2

	lines := SanitizeMultiLine("one\ntwo\nthree\nfour", cfg)
	assert.Equal(t, []string{"one", "two", "..."}, lines)

	exact := SanitizeMultiLine("one\ntwo", cfg)
	assert.Equal(t, []string{"one", "two"}, exact)
}

func TestSanitize_Idempotent(t *testing.T) {
	// Test: Sanitizing sanitized output changes nothing and never leaves a closer
	inputs := []string{
		"plain text",
		"*/ leading closer",
		"/*/ mixed /**/ delimiters */",
		"&amp;lt; double encoded &amp;amp; &lt;tag&gt;",
		strings.Repeat("long sentence with */ inside ", 20),
		"line one\nline two */\n\nline three\nfour\nfive\nsix\nseven",
	}

	configs := map[string]Config{
		"default": DefaultConfig(),
		"decode": func() Config {
			c := DefaultConfig()
			c.PreserveHTMLTags = false
			return c
		}(),
	}

	for name, cfg := range configs {
		for _, input := range inputs {
			once := SanitizeSingleLine(input, cfg)
			assert.Equal(t, once, SanitizeSingleLine(once, cfg), "%s: %q", name, input)
			assert.NotContains(t, once, "*/")
			assert.NotContains(t, once, "/*")

			lines := SanitizeMultiLine(input, cfg)
			assert.Equal(t, lines, SanitizeMultiLine(strings.Join(lines, "\n"), cfg), "%s: %q", name, input)
			for _, line := range lines {
				assert.NotContains(t, line, "*/")
			}
		}
	}
}

func TestSanitizeSingleLine_TruncationWithDecoding(t *testing.T) {
	// Test: A cut right after an entity kept encoded still yields a fixed point
	cfg := Config{MaxLength: 12, PreserveHTMLTags: false}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"cut after kept amp", "abcd&amp;lt;xyz", "abcd&amp..."},
		{"cut inside entity", "abcdefg&amp;lt;", "abcdefg&a..."},
		{"decoded before cut", "ab &lt;tag&gt; and more", "ab <tag> ..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			once := SanitizeSingleLine(tt.input, cfg)
			assert.Equal(t, tt.expected, once)
			assert.Equal(t, once, SanitizeSingleLine(once, cfg))
		})
	}

	// Every cut position of a string dense with entities
	input := strings.Repeat("x&amp;lt;&amp;amp;&lt;", 4)
	for n := 4; n <= 40; n++ {
		c := Config{MaxLength: n, PreserveHTMLTags: false}
		once := SanitizeSingleLine(input, c)
		assert.Equal(t, once, SanitizeSingleLine(once, c), "MaxLength %d", n)
	}
}
