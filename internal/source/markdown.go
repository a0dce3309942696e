package source

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
	"gopkg.in/yaml.v3"

	"github.com/dgallion1/mdblocks/internal/mdast"
)

// ErrUnsupportedNode is returned when goldmark produces a node kind the
// converter has no mapping for.
var ErrUnsupportedNode = errors.New("unsupported markdown node")

var markdown = goldmark.New(
	goldmark.WithExtensions(
		extension.Table,
		extension.Strikethrough,
		extension.Linkify,
	),
)

var frontMatterFormats = []*frontmatter.Format{
	frontmatter.NewFormat("---", "---", yaml.Unmarshal),
	frontmatter.NewFormat("---yaml", "---", yaml.Unmarshal),
}

var lineBreakTag = regexp.MustCompile(`(?i)^<br\s*/?>$`)

// MarkdownParser handles Markdown files using goldmark.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	body, meta := splitFrontMatter(src)
	doc := &Document{Title: baseTitle(filename), Meta: meta}
	if t, ok := meta["title"].(string); ok && strings.TrimSpace(t) != "" {
		doc.Title = strings.TrimSpace(t)
	}

	root, err := ParseMarkdown(body)
	if err != nil {
		return nil, err
	}
	doc.Root = root
	return doc, nil
}

// ParseMarkdown converts a Markdown body without front matter to mdast.
func ParseMarkdown(src []byte) (*mdast.Document, error) {
	tree := markdown.Parser().Parse(text.NewReader(src))
	c := &mdConverter{src: src}
	children, err := c.children(tree)
	if err != nil {
		return nil, err
	}
	return &mdast.Document{Children: children}, nil
}

// splitFrontMatter strips a leading YAML block. A block that fails to parse
// or decodes to nothing is treated as ordinary Markdown, since a document may
// legitimately open with a thematic break.
func splitFrontMatter(src []byte) ([]byte, map[string]any) {
	var meta map[string]any
	body, err := frontmatter.Parse(bytes.NewReader(src), &meta, frontMatterFormats...)
	if err != nil || len(meta) == 0 {
		return src, nil
	}
	return body, meta
}

type mdConverter struct {
	src []byte
}

func (c *mdConverter) children(n ast.Node) ([]mdast.Node, error) {
	var out []mdast.Node
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		nodes, err := c.convert(child)
		if err != nil {
			return nil, err
		}
		out = append(out, nodes...)
	}
	return out, nil
}

func (c *mdConverter) convert(n ast.Node) ([]mdast.Node, error) {
	switch n := n.(type) {
	case *ast.Heading:
		children, err := c.children(n)
		if err != nil {
			return nil, err
		}
		return []mdast.Node{&mdast.Heading{Level: n.Level, Children: children}}, nil

	case *ast.Paragraph, *ast.TextBlock:
		children, err := c.children(n)
		if err != nil {
			return nil, err
		}
		return []mdast.Node{&mdast.Paragraph{Children: children}}, nil

	case *ast.Blockquote:
		children, err := c.children(n)
		if err != nil {
			return nil, err
		}
		return []mdast.Node{&mdast.Quote{Children: children}}, nil

	case *ast.ThematicBreak:
		return []mdast.Node{&mdast.ThematicBreak{}}, nil

	case *ast.CodeBlock:
		return []mdast.Node{c.codeBlock("", n)}, nil

	case *ast.FencedCodeBlock:
		var lang string
		if n.Info != nil {
			lang = string(n.Language(c.src))
		}
		return []mdast.Node{c.codeBlock(lang, n)}, nil

	case *ast.HTMLBlock:
		var buf bytes.Buffer
		c.writeLines(&buf, n.Lines())
		if n.HasClosure() {
			buf.Write(n.ClosureLine.Value(c.src))
		}
		nodes, err := HTMLFragment(buf.String())
		if err != nil {
			return nil, fmt.Errorf("html block: %w", err)
		}
		return nodes, nil

	case *ast.List:
		return c.list(n)

	case *east.Table:
		return c.table(n)

	case *ast.Text:
		var out []mdast.Node
		value := string(n.Value(c.src))
		if n.IsRaw() {
			out = append(out, mdast.Raw(value))
		} else {
			out = append(out, splitEscapes(value)...)
		}
		if (n.SoftLineBreak() || n.HardLineBreak()) && n.NextSibling() != nil {
			out = append(out, &mdast.LineBreak{})
		}
		return out, nil

	case *ast.String:
		return []mdast.Node{mdast.Raw(string(n.Value))}, nil

	case *ast.CodeSpan:
		var buf strings.Builder
		for child := n.FirstChild(); child != nil; child = child.NextSibling() {
			switch t := child.(type) {
			case *ast.Text:
				v := t.Segment.Value(c.src)
				if bytes.HasSuffix(v, []byte("\n")) {
					buf.Write(v[:len(v)-1])
					buf.WriteByte(' ')
				} else {
					buf.Write(v)
				}
			case *ast.String:
				buf.Write(t.Value)
			}
		}
		return []mdast.Node{&mdast.InlineCode{Children: []mdast.Node{mdast.Raw(buf.String())}}}, nil

	case *ast.Emphasis:
		children, err := c.children(n)
		if err != nil {
			return nil, err
		}
		if n.Level >= 2 {
			return []mdast.Node{&mdast.Strong{Children: children}}, nil
		}
		return []mdast.Node{&mdast.Emphasis{Children: children}}, nil

	case *east.Strikethrough:
		children, err := c.children(n)
		if err != nil {
			return nil, err
		}
		return []mdast.Node{&mdast.Strikethrough{Children: children}}, nil

	case *ast.Link:
		children, err := c.children(n)
		if err != nil {
			return nil, err
		}
		return []mdast.Node{&mdast.Link{
			Target:   string(n.Destination),
			Title:    string(n.Title),
			Children: children,
		}}, nil

	case *ast.Image:
		children, err := c.children(n)
		if err != nil {
			return nil, err
		}
		return []mdast.Node{&mdast.Image{
			Source:   string(n.Destination),
			Title:    string(n.Title),
			Children: children,
		}}, nil

	case *ast.AutoLink:
		return []mdast.Node{&mdast.Link{
			Target:   string(n.URL(c.src)),
			Children: []mdast.Node{mdast.Raw(string(n.Label(c.src)))},
		}}, nil

	case *ast.RawHTML:
		var buf bytes.Buffer
		for i := 0; i < n.Segments.Len(); i++ {
			seg := n.Segments.At(i)
			buf.Write(seg.Value(c.src))
		}
		if lineBreakTag.Match(bytes.TrimSpace(buf.Bytes())) {
			return []mdast.Node{&mdast.LineBreak{}}, nil
		}
		return nil, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedNode, n.Kind())
}

func (c *mdConverter) writeLines(buf *bytes.Buffer, lines *text.Segments) {
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(c.src))
	}
}

func (c *mdConverter) codeBlock(lang string, n ast.Node) *mdast.CodeBlock {
	var buf bytes.Buffer
	c.writeLines(&buf, n.Lines())
	code := strings.TrimSuffix(buf.String(), "\n")
	cb := &mdast.CodeBlock{Language: lang}
	if code != "" {
		cb.Children = []mdast.Node{mdast.Raw(code)}
	}
	return cb
}

func (c *mdConverter) list(n *ast.List) ([]mdast.Node, error) {
	l := &mdast.List{Ordered: n.IsOrdered()}
	i := 0
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		item, ok := child.(*ast.ListItem)
		if !ok {
			return nil, fmt.Errorf("%w: %s inside list", ErrUnsupportedNode, child.Kind())
		}
		children, err := c.children(item)
		if err != nil {
			return nil, err
		}
		leader := string(n.Marker)
		if n.IsOrdered() {
			leader = fmt.Sprintf("%d%c", n.Start+i, n.Marker)
		}
		l.Children = append(l.Children, &mdast.ListItem{Leader: leader, Children: children})
		i++
	}
	return []mdast.Node{l}, nil
}

func (c *mdConverter) table(n *east.Table) ([]mdast.Node, error) {
	t := &mdast.Table{}
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		switch row := child.(type) {
		case *east.TableHeader:
			r, err := c.row(row)
			if err != nil {
				return nil, err
			}
			t.Header = r
		case *east.TableRow:
			r, err := c.row(row)
			if err != nil {
				return nil, err
			}
			t.Rows = append(t.Rows, r)
		default:
			return nil, fmt.Errorf("%w: %s inside table", ErrUnsupportedNode, child.Kind())
		}
	}
	return []mdast.Node{t}, nil
}

func (c *mdConverter) row(n ast.Node) (*mdast.TableRow, error) {
	r := &mdast.TableRow{}
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		if _, ok := child.(*east.TableCell); !ok {
			return nil, fmt.Errorf("%w: %s inside table row", ErrUnsupportedNode, child.Kind())
		}
		children, err := c.children(child)
		if err != nil {
			return nil, err
		}
		r.Cells = append(r.Cells, &mdast.TableCell{Children: children})
	}
	return r, nil
}

// splitEscapes turns backslash escapes in s into EscapeSequence nodes so the
// renderer can write them back verbatim.
func splitEscapes(s string) []mdast.Node {
	var out []mdast.Node
	start := 0
	for i := 0; i < len(s)-1; i++ {
		if s[i] != '\\' || !util.IsPunct(s[i+1]) {
			continue
		}
		if i > start {
			out = append(out, mdast.Raw(s[start:i]))
		}
		out = append(out, &mdast.EscapeSequence{Children: []mdast.Node{mdast.Raw(s[i+1 : i+2])}})
		i++
		start = i + 1
	}
	if start < len(s) {
		out = append(out, mdast.Raw(s[start:]))
	}
	return out
}
