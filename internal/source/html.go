package source

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dgallion1/mdblocks/internal/mdast"
)

// HTMLParser handles HTML files.
type HTMLParser struct{}

func (p *HTMLParser) Parse(r io.Reader, filename string) (*Document, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	out := &Document{Title: baseTitle(filename)}
	if title := findTitle(doc); title != "" {
		out.Title = title
	}

	root := findBody(doc)
	if root == nil {
		root = doc
	}
	var b htmlBuilder
	b.blocks(root)
	out.Root = &mdast.Document{Children: b.finish()}
	return out, nil
}

// HTMLFragment converts an HTML snippet, such as a raw HTML block embedded in
// Markdown, into block nodes.
func HTMLFragment(s string) ([]mdast.Node, error) {
	context := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(s), context)
	if err != nil {
		return nil, fmt.Errorf("parse html fragment: %w", err)
	}
	var b htmlBuilder
	for _, n := range nodes {
		b.node(n)
	}
	return b.finish(), nil
}

// htmlBuilder collects block nodes. Inline content met at block level is
// gathered into an implicit paragraph.
type htmlBuilder struct {
	out     []mdast.Node
	pending []mdast.Node
}

func (b *htmlBuilder) flush() {
	if p := trimInline(b.pending); len(p) > 0 {
		b.out = append(b.out, &mdast.Paragraph{Children: p})
	}
	b.pending = nil
}

func (b *htmlBuilder) finish() []mdast.Node {
	b.flush()
	return b.out
}

func (b *htmlBuilder) emit(n mdast.Node) {
	b.flush()
	b.out = append(b.out, n)
}

func (b *htmlBuilder) blocks(parent *html.Node) {
	for c := parent.FirstChild; c != nil; c = c.NextSibling {
		b.node(c)
	}
}

func (b *htmlBuilder) node(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.pending = append(b.pending, inlineNodes(n)...)
		return
	case html.ElementNode:
	default:
		return
	}

	if level := headingLevel(n.Data); level > 0 {
		b.emit(&mdast.Heading{Level: level, Children: trimInline(inlineChildren(n))})
		return
	}

	switch n.Data {
	case "script", "style", "nav", "footer", "header", "head", "template", "noscript":
		return
	case "p":
		b.flush()
		b.pending = inlineChildren(n)
		b.flush()
	case "blockquote":
		var inner htmlBuilder
		inner.blocks(n)
		b.emit(&mdast.Quote{Children: inner.finish()})
	case "hr":
		b.emit(&mdast.ThematicBreak{})
	case "pre":
		b.emit(preBlock(n))
	case "ul", "ol":
		b.emit(listBlock(n))
	case "table":
		b.emit(tableBlock(n))
	case "div", "section", "article", "main", "aside", "figure", "body", "html", "li", "dl", "dd", "dt", "form", "fieldset":
		b.flush()
		b.blocks(n)
		b.flush()
	default:
		b.pending = append(b.pending, inlineNodes(n)...)
	}
}

func preBlock(n *html.Node) *mdast.CodeBlock {
	cb := &mdast.CodeBlock{}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == "code" {
			cb.Language = codeLanguage(c)
			break
		}
	}
	code := strings.TrimSuffix(rawText(n), "\n")
	if code != "" {
		cb.Children = []mdast.Node{mdast.Raw(code)}
	}
	return cb
}

// codeLanguage reads the language-* or lang-* class used by highlighters.
func codeLanguage(n *html.Node) string {
	for _, class := range strings.Fields(attr(n, "class")) {
		for _, prefix := range []string{"language-", "lang-"} {
			if strings.HasPrefix(class, prefix) {
				return strings.TrimPrefix(class, prefix)
			}
		}
	}
	return ""
}

func listBlock(n *html.Node) *mdast.List {
	l := &mdast.List{Ordered: n.Data == "ol"}
	num := 1
	if l.Ordered {
		if start, err := strconv.Atoi(attr(n, "start")); err == nil {
			num = start
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.Data != "li" {
			continue
		}
		var inner htmlBuilder
		inner.blocks(c)
		leader := "-"
		if l.Ordered {
			leader = fmt.Sprintf("%d.", num)
			num++
		}
		l.Children = append(l.Children, &mdast.ListItem{Leader: leader, Children: inner.finish()})
	}
	return l
}

func tableBlock(n *html.Node) *mdast.Table {
	t := &mdast.Table{}
	var walk func(*html.Node, bool)
	walk = func(p *html.Node, inHead bool) {
		for c := p.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.Data {
			case "thead":
				walk(c, true)
			case "tbody", "tfoot":
				walk(c, false)
			case "tr":
				row, allTH := tableRow(c)
				if t.Header == nil && len(t.Rows) == 0 && (inHead || allTH) {
					t.Header = row
				} else {
					t.Rows = append(t.Rows, row)
				}
			}
		}
	}
	walk(n, false)
	return t
}

func tableRow(n *html.Node) (*mdast.TableRow, bool) {
	row := &mdast.TableRow{}
	allTH := true
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || (c.Data != "td" && c.Data != "th") {
			continue
		}
		if c.Data != "th" {
			allTH = false
		}
		row.Cells = append(row.Cells, &mdast.TableCell{Children: trimInline(inlineChildren(c))})
	}
	return row, allTH && len(row.Cells) > 0
}

func inlineChildren(n *html.Node) []mdast.Node {
	var out []mdast.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, inlineNodes(c)...)
	}
	return out
}

// inlineNodes converts n as phrasing content. Unknown elements are
// transparent.
func inlineNodes(n *html.Node) []mdast.Node {
	switch n.Type {
	case html.TextNode:
		s := collapseSpace(n.Data)
		if s == "" {
			return nil
		}
		return []mdast.Node{mdast.Raw(s)}
	case html.ElementNode:
	default:
		return nil
	}

	switch n.Data {
	case "script", "style", "template", "noscript":
		return nil
	case "strong", "b":
		return []mdast.Node{&mdast.Strong{Children: inlineChildren(n)}}
	case "em", "i":
		return []mdast.Node{&mdast.Emphasis{Children: inlineChildren(n)}}
	case "del", "s", "strike":
		return []mdast.Node{&mdast.Strikethrough{Children: inlineChildren(n)}}
	case "code", "kbd", "samp":
		return []mdast.Node{&mdast.InlineCode{Children: []mdast.Node{mdast.Raw(rawText(n))}}}
	case "a":
		return []mdast.Node{&mdast.Link{
			Target:   attr(n, "href"),
			Title:    attr(n, "title"),
			Children: inlineChildren(n),
		}}
	case "img":
		img := &mdast.Image{Source: attr(n, "src"), Title: attr(n, "title")}
		if alt := attr(n, "alt"); alt != "" {
			img.Children = []mdast.Node{mdast.Raw(alt)}
		}
		return []mdast.Node{img}
	case "br":
		return []mdast.Node{&mdast.LineBreak{}}
	}
	return inlineChildren(n)
}

// collapseSpace folds runs of HTML whitespace to a single space.
func collapseSpace(s string) string {
	var sb strings.Builder
	space := false
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r', '\f':
			space = true
			continue
		}
		if space {
			sb.WriteByte(' ')
			space = false
		}
		sb.WriteRune(r)
	}
	if space {
		sb.WriteByte(' ')
	}
	return sb.String()
}

// trimInline drops leading and trailing whitespace from a run of inline
// nodes. It returns nil when nothing but whitespace remains.
func trimInline(nodes []mdast.Node) []mdast.Node {
	for len(nodes) > 0 {
		if rt, ok := nodes[0].(*mdast.RawText); ok {
			if s := strings.TrimLeft(rt.Content, " "); s == "" {
				nodes = nodes[1:]
				continue
			} else if s != rt.Content {
				nodes = append([]mdast.Node{mdast.Raw(s)}, nodes[1:]...)
			}
		} else if _, ok := nodes[0].(*mdast.LineBreak); ok {
			nodes = nodes[1:]
			continue
		}
		break
	}
	for len(nodes) > 0 {
		last := len(nodes) - 1
		if rt, ok := nodes[last].(*mdast.RawText); ok {
			if s := strings.TrimRight(rt.Content, " "); s == "" {
				nodes = nodes[:last]
				continue
			} else if s != rt.Content {
				nodes = append(nodes[:last:last], mdast.Raw(s))
			}
		} else if _, ok := nodes[last].(*mdast.LineBreak); ok {
			nodes = nodes[:last]
			continue
		}
		break
	}
	if len(nodes) == 0 {
		return nil
	}
	return nodes
}

func rawText(n *html.Node) string {
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
	return buf.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func headingLevel(tag string) int {
	switch tag {
	case "h1":
		return 1
	case "h2":
		return 2
	case "h3":
		return 3
	case "h4":
		return 4
	case "h5":
		return 5
	case "h6":
		return 6
	}
	return 0
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		return strings.TrimSpace(rawText(n))
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
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
