package structurer

import (
	"bytes"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/hmercer/tapread/internal/model"
)

// MarkdownSource reads Markdown using goldmark. Block node types supply the
// element kinds; geometry is synthesized downstream.
type MarkdownSource struct {
	r io.Reader
}

func NewMarkdownSource(r io.Reader) (*MarkdownSource, error) {
	return &MarkdownSource{r: r}, nil
}

func (s *MarkdownSource) Pages() ([]RawPage, error) {
	src, err := io.ReadAll(s.r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New()
	reader := text.NewReader(src)
	doc := md.Parser().Parse(reader)

	var runs []RawRun
	emit := func(t string, kind model.ElementKind, level int) {
		t = strings.TrimSpace(t)
		if t == "" {
			return
		}
		runs = append(runs, RawRun{Text: t, KindHint: kind, HintLevel: level, HasHint: true})
	}

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			kind := model.KindSubtitle
			if node.Level == 1 {
				kind = model.KindTitle
			}
			emit(string(node.Text(src)), kind, node.Level)
		case *ast.Blockquote:
			emit(mdText(node, src), model.KindQuote, 0)
		case *ast.List:
			for item := node.FirstChild(); item != nil; item = item.NextSibling() {
				emit(mdText(item, src), model.KindList, 0)
			}
		default:
			emit(mdText(n, src), model.KindParagraph, 0)
		}
	}

	return []RawPage{{Runs: runs}}, nil
}

// mdText gets the text content of a goldmark AST node. Blocks that carry
// raw source lines (paragraphs, text blocks) yield those directly; container
// blocks recurse into their children.
func mdText(n ast.Node, src []byte) string {
	if t, ok := n.(*ast.Text); ok {
		return string(t.Value(src))
	}

	var buf bytes.Buffer
	if n.Type() == ast.TypeBlock && n.Lines().Len() > 0 {
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			buf.Write(seg.Value(src))
		}
		return strings.TrimSpace(buf.String())
	}

	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		part := mdText(c, src)
		if part == "" {
			continue
		}
		if buf.Len() > 0 {
			buf.WriteByte(' ')
		}
		buf.WriteString(part)
	}
	return strings.TrimSpace(buf.String())
}
