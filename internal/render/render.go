// Package render turns an mdast tree into block descriptors.
//
// Markdown nests inline formatting arbitrarily while the target model only
// knows flat titles, so every block boundary collapses its inline children
// into one string with the Markdown sigils written back in. Children that
// cannot become text (an image inside a paragraph, a nested list inside a
// list item) are carried alongside that string instead.
package render

import (
	"fmt"
	"log/slog"

	"github.com/dgallion1/mdblocks/internal/blocks"
	"github.com/dgallion1/mdblocks/internal/mdast"
)

// Renderer converts trees to blocks. It keeps no per-call state and may be
// shared between goroutines.
type Renderer struct {
	langs *Languages
	log   *slog.Logger
}

// Result is the output of one render call.
type Result struct {
	Blocks   []blocks.Block `json:"blocks"`
	Warnings []Warning      `json:"warnings"`
}

// New creates a Renderer. A nil langs uses DefaultLanguages; a nil log
// disables diagnostic logging (warnings are still returned in the Result).
func New(langs *Languages, log *slog.Logger) *Renderer {
	if langs == nil {
		langs = DefaultLanguageList()
	}
	return &Renderer{langs: langs, log: log}
}

// Languages returns the code-language allow-list in use.
func (r *Renderer) Languages() *Languages {
	return r.langs
}

// Render converts node, normally a *mdast.Document, into top-level blocks.
// An error means the tree contained a node kind with no handler; no partial
// result is returned in that case.
func (r *Renderer) Render(node mdast.Node) (*Result, error) {
	p := &pass{r: r}
	out, err := p.render(node)
	if err != nil {
		return nil, err
	}

	res := &Result{Blocks: make([]blocks.Block, 0, len(out))}
	for _, o := range out {
		if o.kind != plainString {
			res.Blocks = append(res.Blocks, o.block)
			continue
		}
		if o.str == "" {
			continue
		}
		p.warn(WarningStrayInline, node.Kind(), "inline content outside a block wrapped in a text block")
		res.Blocks = append(res.Blocks, blocks.Text(o.str))
	}
	res.Warnings = p.warnings
	if res.Warnings == nil {
		res.Warnings = []Warning{}
	}
	return res, nil
}

type resultKind int

const (
	// plainString is a bare inline string.
	plainString resultKind = iota
	// textBlock is a text block whose title can be absorbed by a parent.
	textBlock
	// otherBlock is any block that cannot become part of a string.
	otherBlock
)

// rendered is the output of rendering one node.
type rendered struct {
	kind  resultKind
	str   string
	block blocks.Block
}

func str(s string) rendered {
	return rendered{kind: plainString, str: s}
}

func block(b blocks.Block) rendered {
	if b.Kind == blocks.KindText {
		return rendered{kind: textBlock, block: b}
	}
	return rendered{kind: otherBlock, block: b}
}

// pass holds the warnings of a single Render call.
type pass struct {
	r        *Renderer
	warnings []Warning
}

func (p *pass) warn(t WarningType, kind mdast.Kind, msg string) {
	p.warnings = append(p.warnings, Warning{Type: t, Node: kind, Message: msg})
	if p.r.log != nil {
		p.r.log.Info("render degraded", "type", t, "node", kind, "message", msg)
	}
}

func (p *pass) render(n mdast.Node) ([]rendered, error) {
	switch n := n.(type) {
	case *mdast.Document:
		return p.renderChildren(n.Children)

	case *mdast.Heading:
		level := n.Level
		if level > 3 {
			p.warn(WarningHeadingClamped, n.Kind(), fmt.Sprintf("h%d not supported, converting to h3", level))
			level = 3
		}
		return p.combine(n.Children, func(s string) rendered {
			return block(blocks.Header(level, s))
		})

	case *mdast.Paragraph:
		return p.combine(n.Children, func(s string) rendered {
			return block(blocks.Text(s))
		})

	case *mdast.Quote:
		return p.combine(n.Children, func(s string) rendered {
			return block(blocks.Quote(s))
		})

	case *mdast.ThematicBreak:
		return []rendered{block(blocks.Divider())}, nil

	case *mdast.CodeBlock:
		lang := PlainText
		if n.Language != "" {
			var ok bool
			lang, ok = p.r.langs.Match(n.Language)
			if !ok {
				p.warn(WarningUnsupportedLanguage, n.Kind(), fmt.Sprintf("code block language %q has no supported label", n.Language))
			}
		}
		return p.combine(n.Children, func(s string) rendered {
			return block(blocks.Code(lang, s))
		})

	case *mdast.List:
		return p.renderChildren(n.Children)

	case *mdast.ListItem:
		return p.renderListItem(n)

	case *mdast.Table:
		return p.renderTable(n)

	case *mdast.TableRow:
		cells, err := p.renderRow(n)
		if err != nil {
			return nil, err
		}
		out := make([]rendered, 0, len(cells))
		for _, c := range cells {
			out = append(out, str(c))
		}
		return out, nil

	case *mdast.TableCell:
		s, err := p.renderCell(n)
		if err != nil {
			return nil, err
		}
		return []rendered{str(s)}, nil

	case *mdast.Strong:
		return p.wrap(n.Children, "**", "**")

	case *mdast.Emphasis:
		return p.wrap(n.Children, "*", "*")

	case *mdast.InlineCode:
		return p.wrap(n.Children, "`", "`")

	case *mdast.Strikethrough:
		return p.wrap(n.Children, "~", "~")

	case *mdast.EscapeSequence:
		return p.wrap(n.Children, `\`, "")

	case *mdast.Link:
		s, others, err := p.mergeToString(n.Children)
		if err != nil {
			return nil, err
		}
		out := make([]rendered, 0, 1+len(others))
		out = append(out, str("["+s+"]("+n.Target+")"))
		for _, b := range others {
			out = append(out, block(b))
		}
		return out, nil

	case *mdast.Image:
		caption := n.Title
		if caption == "" {
			s, others, err := p.mergeToString(n.Children)
			if err != nil {
				return nil, err
			}
			if len(others) > 0 {
				p.warn(WarningDroppedBlock, n.Kind(), fmt.Sprintf("image caption contained %d non-text block(s), dropped", len(others)))
			}
			caption = s
		}
		return []rendered{block(blocks.Image(n.Source, caption))}, nil

	case *mdast.RawText:
		return []rendered{str(n.Content)}, nil

	case *mdast.LineBreak:
		return []rendered{str(" ")}, nil
	}
	return nil, &UnknownNodeError{Type: fmt.Sprintf("%T", n)}
}

// renderChildren renders siblings in order, flattening each child's results
// into one sequence.
func (p *pass) renderChildren(nodes []mdast.Node) ([]rendered, error) {
	out := make([]rendered, 0, len(nodes))
	for _, c := range nodes {
		r, err := p.render(c)
		if err != nil {
			return nil, err
		}
		out = append(out, r...)
	}
	return out, nil
}

// mergeToString renders nodes and joins every string result, unwrapping text
// blocks to their titles. Blocks that cannot be expressed as text are
// returned separately in their original order.
func (p *pass) mergeToString(nodes []mdast.Node) (string, []blocks.Block, error) {
	out, err := p.renderChildren(nodes)
	if err != nil {
		return "", nil, err
	}
	var s []byte
	var others []blocks.Block
	for _, o := range out {
		switch o.kind {
		case plainString:
			s = append(s, o.str...)
		case textBlock:
			s = append(s, o.block.Title...)
		default:
			others = append(others, o.block)
		}
	}
	return string(s), others, nil
}

// combine merges nodes to a string and hands it to toResult. The string
// result always comes first, followed by the blocks that could not be merged,
// even if one of them preceded text in the source. Nothing is produced for
// the string when it is empty.
func (p *pass) combine(nodes []mdast.Node, toResult func(string) rendered) ([]rendered, error) {
	s, others, err := p.mergeToString(nodes)
	if err != nil {
		return nil, err
	}
	out := make([]rendered, 0, 1+len(others))
	if s != "" {
		out = append(out, toResult(s))
	}
	for _, b := range others {
		out = append(out, block(b))
	}
	return out, nil
}

func (p *pass) wrap(nodes []mdast.Node, open, closing string) ([]rendered, error) {
	return p.combine(nodes, func(s string) rendered {
		return str(open + s + closing)
	})
}

func (p *pass) renderListItem(n *mdast.ListItem) ([]rendered, error) {
	out, err := p.renderChildren(n.Children)
	if err != nil {
		return nil, err
	}
	var title []byte
	var children []blocks.Block
	for _, o := range out {
		switch o.kind {
		case textBlock:
			title = append(title, o.block.Title...)
		case plainString:
			title = append(title, o.str...)
		default:
			children = append(children, o.block)
		}
	}
	return []rendered{block(blocks.ListItem(n.Numbered(), string(title), children))}, nil
}

func (p *pass) renderTable(n *mdast.Table) ([]rendered, error) {
	var header []string
	rows := make([][]string, 0, len(n.Rows)+1)
	if n.Header != nil {
		h, err := p.renderRow(n.Header)
		if err != nil {
			return nil, err
		}
		header = h
		rows = append(rows, h)
	} else {
		p.warn(WarningMissingTableHeader, n.Kind(), "table has no header row, schema left empty")
	}
	for _, r := range n.Rows {
		cells, err := p.renderRow(r)
		if err != nil {
			return nil, err
		}
		rows = append(rows, cells)
	}
	return []rendered{block(blocks.Table(header, rows))}, nil
}

func (p *pass) renderRow(n *mdast.TableRow) ([]string, error) {
	cells := make([]string, 0, len(n.Cells))
	for _, c := range n.Cells {
		s, err := p.renderCell(c)
		if err != nil {
			return nil, err
		}
		cells = append(cells, s)
	}
	return cells, nil
}

func (p *pass) renderCell(n *mdast.TableCell) (string, error) {
	s, others, err := p.mergeToString(n.Children)
	if err != nil {
		return "", err
	}
	if len(others) > 0 {
		p.warn(WarningDroppedBlock, n.Kind(), fmt.Sprintf("table cell contained %d non-text block(s), dropped", len(others)))
	}
	return s, nil
}
