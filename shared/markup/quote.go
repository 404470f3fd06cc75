package markup

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// quoteClass marks quoted lines in rendered HTML, clients style it
const quoteClass = "quote"

// Quote is a run of consecutive lines starting with '>', rendered as one span.
// It replaces markdown blockquotes: boards quote line by line.
type Quote struct {
	ast.BaseBlock
}

var KindQuote = ast.NewNodeKind("Quote")

func (n *Quote) Kind() ast.NodeKind {
	return KindQuote
}

func (n *Quote) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, nil, nil)
}

type quoteParser struct{}

func (p *quoteParser) Trigger() []byte {
	return []byte{'>'}
}

func (p *quoteParser) Open(parent ast.Node, reader text.Reader, pc parser.Context) (ast.Node, parser.State) {
	line, segment := reader.PeekLine()
	if len(line) == 0 || line[0] != '>' {
		return nil, parser.NoChildren
	}

	node := &Quote{}
	node.Lines().Append(segment)
	reader.Advance(segment.Len() - 1)
	return node, parser.NoChildren
}

func (p *quoteParser) Continue(node ast.Node, reader text.Reader, pc parser.Context) parser.State {
	line, segment := reader.PeekLine()
	if len(line) == 0 || line[0] != '>' {
		return parser.Close
	}
	node.Lines().Append(segment)
	reader.Advance(segment.Len() - 1)
	return parser.Continue | parser.NoChildren
}

func (p *quoteParser) Close(node ast.Node, reader text.Reader, pc parser.Context) {}

func (p *quoteParser) CanInterruptParagraph() bool {
	return true
}

func (p *quoteParser) CanAcceptIndentedLine() bool {
	return false
}

type quoteRenderer struct {
	html.Config
}

func (r *quoteRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindQuote, r.renderQuote)
}

func (r *quoteRenderer) renderQuote(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkSkipChildren, nil
	}
	_, _ = w.WriteString(`<span class="` + quoteClass + `">`)
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		value := bytes.TrimRight(line.Value(source), "\r\n")
		_, _ = w.Write(util.EscapeHTML(value))
		if i < lines.Len()-1 {
			_, _ = w.WriteString("<br>")
		}
	}
	_, _ = w.WriteString("</span>")
	return ast.WalkSkipChildren, nil
}

type quoteExtension struct{}

// quotes must run before the blockquote parser, which also triggers on '>'
func (e quoteExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithBlockParsers(
		util.Prioritized(&quoteParser{}, 750),
	))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(&quoteRenderer{Config: html.NewConfig()}, 500),
	))
}
