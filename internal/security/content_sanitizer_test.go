package security

import (
	"strings"
	"testing"
)

func TestSanitize_AllowsSafeTags(t *testing.T) {
	s := NewContentSanitizer()

	tests := []struct {
		name         string
		input        string
		wantContains []string
	}{
		{
			name:         "paragraph and emphasis",
			input:        "<p>New model released. <strong>Major</strong> <em>update</em>.</p>",
			wantContains: []string{"<p>", "<strong>Major</strong>", "<em>update</em>", "</p>"},
		},
		{
			name:         "lists",
			input:        "<ul><li>feature one</li><li>feature two</li></ul>",
			wantContains: []string{"<ul>", "<li>feature one</li>", "<li>feature two</li>"},
		},
		{
			name:         "headings from markdown conversion",
			input:        "<h2>Background</h2><p>body</p>",
			wantContains: []string{"<h2>Background</h2>"},
		},
		{
			name:         "code blocks",
			input:        "<pre><code>func main() {}</code></pre>",
			wantContains: []string{"<pre>", "<code>", "func main() {}", "</code>", "</pre>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Sanitize(tt.input)
			for _, want := range tt.wantContains {
				if !strings.Contains(got, want) {
					t.Errorf("Sanitize(%q) = %q, should contain %q", tt.input, got, want)
				}
			}
		})
	}
}

func TestSanitize_RemovesDangerousContent(t *testing.T) {
	s := NewContentSanitizer()

	tests := []struct {
		name           string
		input          string
		wantNotContain []string
	}{
		{
			name:           "script tag",
			input:          `<p>hello</p><script>alert("xss")</script>`,
			wantNotContain: []string{"<script>", "alert"},
		},
		{
			name:           "iframe tag",
			input:          `<iframe src="https://evil.example.com"></iframe>`,
			wantNotContain: []string{"<iframe"},
		},
		{
			name:           "event handler attribute",
			input:          `<p onclick="alert(1)">text</p>`,
			wantNotContain: []string{"onclick"},
		},
		{
			name:           "http image source",
			input:          `<img src="http://example.com/x.png" alt="x">`,
			wantNotContain: []string{"src="},
		},
		{
			name:           "javascript image source",
			input:          `<img src="javascript:alert(1)">`,
			wantNotContain: []string{"src="},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Sanitize(tt.input)
			for _, notWant := range tt.wantNotContain {
				if strings.Contains(got, notWant) {
					t.Errorf("Sanitize(%q) = %q, should not contain %q", tt.input, got, notWant)
				}
			}
		})
	}
}

func TestSanitize_LinksGetSafeRelAndTarget(t *testing.T) {
	s := NewContentSanitizer()

	got := s.Sanitize(`<a href="https://example.com">link</a>`)

	if !strings.Contains(got, `target="_blank"`) {
		t.Errorf("sanitized link should contain target=_blank, got %q", got)
	}
	if !strings.Contains(got, "noopener") || !strings.Contains(got, "noreferrer") {
		t.Errorf("sanitized link should contain noopener noreferrer, got %q", got)
	}
}

func TestSanitize_HTTPSImageAllowed(t *testing.T) {
	s := NewContentSanitizer()

	got := s.Sanitize(`<img src="https://example.com/x.png" alt="illustration">`)

	if !strings.Contains(got, `src="https://example.com/x.png"`) {
		t.Errorf("https image source should be preserved, got %q", got)
	}
	if !strings.Contains(got, `alt="illustration"`) {
		t.Errorf("alt attribute should be preserved, got %q", got)
	}
}

func TestSanitize_EmptyInput(t *testing.T) {
	s := NewContentSanitizer()

	if got := s.Sanitize(""); got != "" {
		t.Errorf("Sanitize(\"\") = %q, want empty string", got)
	}
}

func TestSanitize_Idempotent(t *testing.T) {
	s := NewContentSanitizer()

	input := `<p>text <strong>bold</strong> <a href="https://example.com">link</a></p>`
	once := s.Sanitize(input)
	twice := s.Sanitize(once)

	if once != twice {
		t.Errorf("sanitize should be idempotent:\nonce:  %q\ntwice: %q", once, twice)
	}
}
