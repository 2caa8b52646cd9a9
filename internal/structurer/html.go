package structurer

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/hmercer/tapread/internal/model"
)

// HTMLSource reads an HTML document. Markup supplies the element kinds
// directly (h1-h6, blockquote, li); geometry is synthesized downstream.
type HTMLSource struct {
	r io.Reader
}

func NewHTMLSource(r io.Reader) (*HTMLSource, error) {
	return &HTMLSource{r: r}, nil
}

func (s *HTMLSource) Pages() ([]RawPage, error) {
	doc, err := html.Parse(s.r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var runs []RawRun

	emit := func(text string, kind model.ElementKind, level int) {
		text = strings.TrimSpace(text)
		if text == "" {
			return
		}
		runs = append(runs, RawRun{
			Text:      text,
			KindHint:  kind,
			HintLevel: level,
			HasHint:   true,
		})
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if level := htmlHeadingLevel(n.Data); level > 0 {
				kind := model.KindSubtitle
				if level == 1 {
					kind = model.KindTitle
				}
				emit(htmlTextContent(n), kind, level)
				return // Text already extracted; don't recurse.
			}
			switch n.Data {
			case "script", "style", "nav", "footer", "header":
				return
			case "p", "td":
				emit(htmlTextContent(n), model.KindParagraph, 0)
				return
			case "li":
				emit(htmlTextContent(n), model.KindList, 0)
				return
			case "blockquote":
				emit(htmlTextContent(n), model.KindQuote, 0)
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	if body := findBody(doc); body != nil {
		walk(body)
	} else {
		walk(doc)
	}

	return []RawPage{{Runs: runs}}, nil
}

func htmlHeadingLevel(tag string) int {
	if len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6' {
		return int(tag[1] - '0')
	}
	return 0
}

func htmlTextContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(buf.String())
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
