// Package mdast defines the closed Markdown syntax tree consumed by the block
// renderer. Source adapters build it; nothing mutates it afterwards.
package mdast

import "strings"

// Kind names a node variant.
type Kind string

const (
	KindDocument       Kind = "Document"
	KindHeading        Kind = "Heading"
	KindParagraph      Kind = "Paragraph"
	KindQuote          Kind = "Quote"
	KindThematicBreak  Kind = "ThematicBreak"
	KindCodeBlock      Kind = "CodeBlock"
	KindList           Kind = "List"
	KindListItem       Kind = "ListItem"
	KindTable          Kind = "Table"
	KindTableRow       Kind = "TableRow"
	KindTableCell      Kind = "TableCell"
	KindStrong         Kind = "Strong"
	KindEmphasis       Kind = "Emphasis"
	KindInlineCode     Kind = "InlineCode"
	KindStrikethrough  Kind = "Strikethrough"
	KindLink           Kind = "Link"
	KindImage          Kind = "Image"
	KindEscapeSequence Kind = "EscapeSequence"
	KindLineBreak      Kind = "LineBreak"
	KindRawText        Kind = "RawText"
)

// Node is implemented only by the types in this package.
type Node interface {
	Kind() Kind
	node()
}

// Document is the root of a parsed source.
type Document struct {
	Children []Node
}

// Heading is an ATX or setext heading. Level is 1-6.
type Heading struct {
	Level    int
	Children []Node
}

type Paragraph struct {
	Children []Node
}

type Quote struct {
	Children []Node
}

type ThematicBreak struct{}

// CodeBlock holds its literal text as RawText children. Language is the
// first word of the fence info string, empty for indented blocks.
type CodeBlock struct {
	Language string
	Children []Node
}

type List struct {
	Ordered  bool
	Children []Node
}

// ListItem keeps the leader token that introduced it ("-", "*", "3.", "1)").
type ListItem struct {
	Leader   string
	Children []Node
}

// Numbered reports whether the item's leader begins with a digit. This is the
// only rule used to tell ordered items from bulleted ones.
func (n *ListItem) Numbered() bool {
	return n.Leader != "" && n.Leader[0] >= '0' && n.Leader[0] <= '9'
}

// Table is a GFM table. Header is nil when the source had no header row.
type Table struct {
	Header *TableRow
	Rows   []*TableRow
}

type TableRow struct {
	Cells []*TableCell
}

type TableCell struct {
	Children []Node
}

type Strong struct {
	Children []Node
}

type Emphasis struct {
	Children []Node
}

type InlineCode struct {
	Children []Node
}

type Strikethrough struct {
	Children []Node
}

type Link struct {
	Target   string
	Title    string
	Children []Node
}

// Image children are the alt text.
type Image struct {
	Source   string
	Title    string
	Children []Node
}

// EscapeSequence wraps the escaped character(s) of a backslash escape.
type EscapeSequence struct {
	Children []Node
}

type LineBreak struct{}

type RawText struct {
	Content string
}

func (*Document) Kind() Kind       { return KindDocument }
func (*Heading) Kind() Kind        { return KindHeading }
func (*Paragraph) Kind() Kind      { return KindParagraph }
func (*Quote) Kind() Kind          { return KindQuote }
func (*ThematicBreak) Kind() Kind  { return KindThematicBreak }
func (*CodeBlock) Kind() Kind      { return KindCodeBlock }
func (*List) Kind() Kind           { return KindList }
func (*ListItem) Kind() Kind       { return KindListItem }
func (*Table) Kind() Kind          { return KindTable }
func (*TableRow) Kind() Kind       { return KindTableRow }
func (*TableCell) Kind() Kind      { return KindTableCell }
func (*Strong) Kind() Kind         { return KindStrong }
func (*Emphasis) Kind() Kind       { return KindEmphasis }
func (*InlineCode) Kind() Kind     { return KindInlineCode }
func (*Strikethrough) Kind() Kind  { return KindStrikethrough }
func (*Link) Kind() Kind           { return KindLink }
func (*Image) Kind() Kind          { return KindImage }
func (*EscapeSequence) Kind() Kind { return KindEscapeSequence }
func (*LineBreak) Kind() Kind      { return KindLineBreak }
func (*RawText) Kind() Kind        { return KindRawText }

func (*Document) node()       {}
func (*Heading) node()        {}
func (*Paragraph) node()      {}
func (*Quote) node()          {}
func (*ThematicBreak) node()  {}
func (*CodeBlock) node()      {}
func (*List) node()           {}
func (*ListItem) node()       {}
func (*Table) node()          {}
func (*TableRow) node()       {}
func (*TableCell) node()      {}
func (*Strong) node()         {}
func (*Emphasis) node()       {}
func (*InlineCode) node()     {}
func (*Strikethrough) node()  {}
func (*Link) node()           {}
func (*Image) node()          {}
func (*EscapeSequence) node() {}
func (*LineBreak) node()      {}
func (*RawText) node()        {}

// Text returns the concatenated RawText content under n. Line breaks count
// as a single space.
func Text(n Node) string {
	var sb strings.Builder
	writeText(&sb, n)
	return sb.String()
}

func writeText(sb *strings.Builder, n Node) {
	switch n := n.(type) {
	case *RawText:
		sb.WriteString(n.Content)
	case *LineBreak:
		sb.WriteByte(' ')
	case *Table:
		if n.Header != nil {
			writeText(sb, n.Header)
		}
		for _, r := range n.Rows {
			writeText(sb, r)
		}
	case *TableRow:
		for _, c := range n.Cells {
			writeText(sb, c)
		}
	default:
		for _, c := range Children(n) {
			writeText(sb, c)
		}
	}
}

// Children returns the direct children of container nodes and nil for leaves
// and tables.
func Children(n Node) []Node {
	switch n := n.(type) {
	case *Document:
		return n.Children
	case *Heading:
		return n.Children
	case *Paragraph:
		return n.Children
	case *Quote:
		return n.Children
	case *CodeBlock:
		return n.Children
	case *List:
		return n.Children
	case *ListItem:
		return n.Children
	case *TableCell:
		return n.Children
	case *Strong:
		return n.Children
	case *Emphasis:
		return n.Children
	case *InlineCode:
		return n.Children
	case *Strikethrough:
		return n.Children
	case *Link:
		return n.Children
	case *Image:
		return n.Children
	case *EscapeSequence:
		return n.Children
	}
	return nil
}

// Raw is shorthand for a RawText node.
func Raw(s string) *RawText {
	return &RawText{Content: s}
}
