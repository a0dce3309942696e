// Package blocks defines the descriptors handed to the document API client.
package blocks

// Kind is the target block type.
type Kind string

const (
	KindDivider        Kind = "divider"
	KindHeader         Kind = "header"
	KindSubheader      Kind = "sub_header"
	KindSubsubheader   Kind = "sub_sub_header"
	KindQuote          Kind = "quote"
	KindText           Kind = "text"
	KindCode           Kind = "code"
	KindNumberedList   Kind = "numbered_list"
	KindBulletedList   Kind = "bulleted_list"
	KindImage          Kind = "image"
	KindCollectionView Kind = "collection_view"
)

// ColumnTypeText is the only column type tables produce.
const ColumnTypeText = "text"

// Block is one node of the target document. Title carries inline markup
// re-serialized as Markdown sigils.
type Block struct {
	Kind     Kind    `json:"type"`
	Title    string  `json:"title,omitempty"`
	Language string  `json:"language,omitempty"`
	Children []Block `json:"children,omitempty"`

	// Table
	Rows   [][]string `json:"rows,omitempty"`
	Schema []Column   `json:"schema,omitempty"`

	// Image
	Source        string `json:"source,omitempty"`
	DisplaySource string `json:"display_source,omitempty"`
	Caption       string `json:"caption,omitempty"`
}

// Column is one entry of a table schema.
type Column struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

func Divider() Block {
	return Block{Kind: KindDivider}
}

func Text(title string) Block {
	return Block{Kind: KindText, Title: title}
}

func Quote(title string) Block {
	return Block{Kind: KindQuote, Title: title}
}

// Header builds a heading block. level must already be within 1-3.
func Header(level int, title string) Block {
	return Block{Kind: HeaderKind(level), Title: title}
}

// HeaderKind maps a heading level to its block kind; anything deeper than 3
// maps to the deepest header.
func HeaderKind(level int) Kind {
	switch {
	case level <= 1:
		return KindHeader
	case level == 2:
		return KindSubheader
	default:
		return KindSubsubheader
	}
}

// Code builds a code block; an empty language means unlabeled.
func Code(language, text string) Block {
	return Block{Kind: KindCode, Language: language, Title: text}
}

// ListItem builds a numbered or bulleted item.
func ListItem(numbered bool, title string, children []Block) Block {
	k := KindBulletedList
	if numbered {
		k = KindNumberedList
	}
	return Block{Kind: k, Title: title, Children: children}
}

func Image(src, caption string) Block {
	return Block{Kind: KindImage, Source: src, DisplaySource: src, Caption: caption}
}

// Table builds a collection view with one text column per header name.
func Table(header []string, rows [][]string) Block {
	schema := make([]Column, 0, len(header))
	for _, name := range header {
		schema = append(schema, Column{Name: name, Type: ColumnTypeText})
	}
	return Block{Kind: KindCollectionView, Rows: rows, Schema: schema}
}

// Count returns the number of descriptors in list, nested children included.
func Count(list []Block) int {
	n := 0
	for _, b := range list {
		n += 1 + Count(b.Children)
	}
	return n
}
