package source

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/fumiama/go-docx"

	"github.com/dgallion1/mdblocks/internal/mdast"
)

// DOCXParser handles .docx files.
type DOCXParser struct{}

func (p *DOCXParser) Parse(r io.Reader, filename string) (*Document, error) {
	// go-docx needs a ReaderAt+size; uploads are already size-capped.
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read docx: %w", err)
	}
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	c := &docxConverter{doc: doc}
	for _, item := range doc.Document.Body.Items {
		switch it := item.(type) {
		case *docx.Paragraph:
			c.paragraph(it)
		case *docx.Table:
			c.flushList()
			c.out = append(c.out, c.table(it))
		}
	}
	c.flushList()

	return &Document{
		Title: baseTitle(filename),
		Root:  &mdast.Document{Children: c.out},
	}, nil
}

type docxConverter struct {
	doc  *docx.Docx
	out  []mdast.Node
	list *mdast.List
}

func (c *docxConverter) flushList() {
	if c.list != nil {
		c.out = append(c.out, c.list)
		c.list = nil
	}
}

func (c *docxConverter) paragraph(para *docx.Paragraph) {
	inline := c.inline(para)

	if para.Properties != nil && para.Properties.NumProperties != nil {
		if c.list == nil {
			c.list = &mdast.List{}
		}
		item := &mdast.ListItem{Leader: "-"}
		if len(inline) > 0 {
			item.Children = []mdast.Node{&mdast.Paragraph{Children: inline}}
		}
		c.list.Children = append(c.list.Children, item)
		return
	}
	c.flushList()

	if len(inline) == 0 {
		return
	}
	if level := docxHeadingLevel(para); level > 0 {
		c.out = append(c.out, &mdast.Heading{Level: level, Children: inline})
		return
	}
	if docxStyleIs(para, "quote", "intensequote") {
		c.out = append(c.out, &mdast.Quote{Children: inline})
		return
	}
	c.out = append(c.out, &mdast.Paragraph{Children: inline})
}

func (c *docxConverter) inline(para *docx.Paragraph) []mdast.Node {
	var out []mdast.Node
	for _, child := range para.Children {
		switch ch := child.(type) {
		case *docx.Run:
			out = append(out, runNodes(ch)...)
		case *docx.Hyperlink:
			label := runText(&ch.Run)
			if label == "" {
				label = ch.Run.InstrText
			}
			target, err := c.doc.ReferTarget(ch.ID)
			if err != nil || target == "" {
				if label != "" {
					out = append(out, mdast.Raw(label))
				}
				continue
			}
			link := &mdast.Link{Target: target}
			if label != "" {
				link.Children = []mdast.Node{mdast.Raw(label)}
			}
			out = append(out, link)
		}
	}
	return trimInline(out)
}

func (c *docxConverter) table(t *docx.Table) *mdast.Table {
	out := &mdast.Table{}
	for i, tr := range t.TableRows {
		row := &mdast.TableRow{}
		for _, tc := range tr.TableCells {
			var children []mdast.Node
			for j, para := range tc.Paragraphs {
				inline := c.inline(para)
				if j > 0 && len(children) > 0 && len(inline) > 0 {
					children = append(children, &mdast.LineBreak{})
				}
				children = append(children, inline...)
			}
			row.Cells = append(row.Cells, &mdast.TableCell{Children: children})
		}
		if i == 0 {
			out.Header = row
		} else {
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}

// runNodes wraps the text of r in the formatting its properties declare.
func runNodes(r *docx.Run) []mdast.Node {
	var nodes []mdast.Node
	for _, rc := range r.Children {
		switch t := rc.(type) {
		case *docx.Text:
			if t.Text != "" {
				nodes = append(nodes, mdast.Raw(t.Text))
			}
		case *docx.Tab:
			nodes = append(nodes, mdast.Raw(" "))
		case *docx.BarterRabbet:
			nodes = append(nodes, &mdast.LineBreak{})
		}
	}
	if len(nodes) == 0 || r.RunProperties == nil {
		return nodes
	}

	props := r.RunProperties
	if props.Strike != nil && props.Strike.Val != "false" && props.Strike.Val != "0" {
		nodes = []mdast.Node{&mdast.Strikethrough{Children: nodes}}
	}
	if props.Italic != nil {
		nodes = []mdast.Node{&mdast.Emphasis{Children: nodes}}
	}
	if props.Bold != nil {
		nodes = []mdast.Node{&mdast.Strong{Children: nodes}}
	}
	return nodes
}

func runText(r *docx.Run) string {
	var buf strings.Builder
	for _, rc := range r.Children {
		if t, ok := rc.(*docx.Text); ok {
			buf.WriteString(t.Text)
		}
	}
	return buf.String()
}

func docxStyle(para *docx.Paragraph) string {
	if para.Properties == nil || para.Properties.Style == nil {
		return ""
	}
	return strings.ToLower(strings.ReplaceAll(para.Properties.Style.Val, " ", ""))
}

func docxStyleIs(para *docx.Paragraph, names ...string) bool {
	style := docxStyle(para)
	for _, n := range names {
		if style == n {
			return true
		}
	}
	return false
}

// docxHeadingLevel maps "Heading1" and "heading 1" style names to a level.
// Title styles count as level 1.
func docxHeadingLevel(para *docx.Paragraph) int {
	style := docxStyle(para)
	if style == "title" {
		return 1
	}
	if !strings.HasPrefix(style, "heading") {
		return 0
	}
	rest := strings.TrimPrefix(style, "heading")
	if len(rest) != 1 || rest[0] < '1' || rest[0] > '6' {
		return 0
	}
	return int(rest[0] - '0')
}
