// Package textprep cleans clipboard text before it is spoken.
package textprep

import (
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Options control Prepare.
type Options struct {
	// StripMarkdown renders markdown to plain text, one block per line.
	StripMarkdown bool

	// KeepCode speaks code blocks instead of dropping them.
	KeepCode bool
}

var spaces = regexp.MustCompile(`[ \t]+`)

// Prepare normalizes line endings and, if asked, strips markdown.
func Prepare(s string, opts Options) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	if opts.StripMarkdown {
		s = Strip(s, opts.KeepCode)
	}
	return strings.TrimSpace(s)
}

// Strip renders markdown as plain text. Each block ends with a newline so
// block boundaries survive as chunk boundaries; link targets and HTML are
// dropped.
func Strip(markdown string, keepCode bool) string {
	reader := text.NewReader([]byte(markdown))
	doc := goldmark.New().Parser().Parse(reader)

	w := &walker{source: reader.Source(), keepCode: keepCode}
	w.walk(doc)

	lines := strings.Split(w.buf.String(), "\n")
	out := lines[:0]
	for _, l := range lines {
		l = strings.TrimSpace(spaces.ReplaceAllString(l, " "))
		if l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}

type walker struct {
	source   []byte
	keepCode bool
	buf      strings.Builder
}

func (w *walker) children(n ast.Node) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		w.walk(c)
	}
}

func (w *walker) walk(node ast.Node) {
	switch n := node.(type) {
	case *ast.CodeBlock, *ast.FencedCodeBlock:
		if !w.keepCode {
			return
		}
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			w.buf.Write(seg.Value(w.source))
		}
		w.buf.WriteString("\n")

	case *ast.HTMLBlock, *ast.RawHTML, *ast.ThematicBreak:
		return

	case *ast.Text:
		w.buf.Write(n.Segment.Value(w.source))
		switch {
		case n.HardLineBreak():
			w.buf.WriteString("\n")
		case n.SoftLineBreak():
			w.buf.WriteString(" ")
		}

	case *ast.String:
		w.buf.Write(n.Value)

	case *ast.CodeSpan:
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			if t, ok := c.(*ast.Text); ok {
				w.buf.Write(t.Segment.Value(w.source))
			}
		}

	case *ast.AutoLink:
		w.buf.Write(n.Label(w.source))

	case *ast.Image:
		// alt text only
		w.children(n)

	case *ast.Heading, *ast.Paragraph, *ast.TextBlock, *ast.ListItem:
		w.children(n)
		w.buf.WriteString("\n")

	default:
		w.children(n)
	}
}
