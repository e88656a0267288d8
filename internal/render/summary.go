package render

import (
	"bytes"
	"strings"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

var (
	summaryParserOnce sync.Once
	summaryParser     parser.Parser
)

// Summary renders an optional markdown summary as structured terminal text.
// A nil or blank summary renders nothing. The text is untrusted: control
// characters are removed and raw HTML is shown as literal text.
func Summary(summary *string, opts Options) (string, error) {
	if summary == nil {
		return "", nil
	}
	clean := SanitizeSummary(*summary)
	if strings.TrimSpace(clean) == "" {
		return "", nil
	}

	out, err := Markdown(clean, opts)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(out, "\n"), nil
}

// SanitizeSummary removes control characters and rewrites every '<' that
// markdown would read as raw HTML as the &lt; entity, so tags render as the
// characters the server sent. Text such as x<y, autolinks and code spans is
// untouched.
func SanitizeSummary(s string) string {
	src := []byte(StripControl(strings.TrimSpace(s)))
	if bytes.IndexByte(src, '<') < 0 {
		return string(src)
	}

	escape := make([]bool, len(src))
	mark := func(start, stop int) {
		for i := start; i < stop && i < len(src); i++ {
			if src[i] == '<' {
				escape[i] = true
			}
		}
	}

	doc := markdownParser().Parse(text.NewReader(src))
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.RawHTML:
			for i := 0; i < node.Segments.Len(); i++ {
				seg := node.Segments.At(i)
				mark(seg.Start, seg.Stop)
			}
		case *ast.HTMLBlock:
			lines := node.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				mark(seg.Start, seg.Stop)
			}
			if node.HasClosure() {
				mark(node.ClosureLine.Start, node.ClosureLine.Stop)
			}
		}
		return ast.WalkContinue, nil
	})

	var b strings.Builder
	b.Grow(len(src) + 16)
	for i, c := range src {
		if escape[i] {
			b.WriteString("&lt;")
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// markdownParser parses with the GFM extensions glamour renders with.
func markdownParser() parser.Parser {
	summaryParserOnce.Do(func() {
		summaryParser = goldmark.New(goldmark.WithExtensions(extension.GFM)).Parser()
	})
	return summaryParser
}

// StripControl removes C0/C1 control characters (including ESC) except
// newline and tab, so server text cannot drive the terminal.
func StripControl(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\t':
			return r
		case r < 0x20 || r == 0x7f:
			return -1
		case r >= 0x80 && r <= 0x9f:
			return -1
		default:
			return r
		}
	}, s)
}
