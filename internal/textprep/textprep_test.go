package textprep

import "testing"

func TestStrip(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "heading and paragraph",
			in:   "# Title\n\nSome *emphasis* and **bold** text.",
			want: "Title\nSome emphasis and bold text.",
		},
		{
			name: "soft wrap joins lines",
			in:   "first half\nsecond half",
			want: "first half second half",
		},
		{
			name: "links keep text only",
			in:   "See [the docs](https://example.com) now.",
			want: "See the docs now.",
		},
		{
			name: "list items are separate lines",
			in:   "- one\n- two\n- three",
			want: "one\ntwo\nthree",
		},
		{
			name: "code blocks dropped",
			in:   "Before\n\n```go\nfmt.Println(1)\n```\n\nAfter",
			want: "Before\nAfter",
		},
		{
			name: "inline code kept",
			in:   "Run `make build` first.",
			want: "Run make build first.",
		},
		{
			name: "html dropped",
			in:   "<div>hidden</div>\n\nvisible",
			want: "visible",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Strip(tt.in, false); got != tt.want {
				t.Errorf("Strip() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStripKeepCode(t *testing.T) {
	got := Strip("```\nls -la\n```", true)
	if got != "ls -la" {
		t.Errorf("Strip() = %q", got)
	}
}

func TestPrepare(t *testing.T) {
	if got := Prepare("  a\r\nb\rc  ", Options{}); got != "a\nb\nc" {
		t.Errorf("Prepare() = %q", got)
	}
	if got := Prepare("# Hi\r\n\r\nthere", Options{StripMarkdown: true}); got != "Hi\nthere" {
		t.Errorf("Prepare(markdown) = %q", got)
	}
	// without stripping, markdown syntax passes through
	if got := Prepare("# Hi", Options{}); got != "# Hi" {
		t.Errorf("Prepare() = %q", got)
	}
}
