package source

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/dgallion1/mdblocks/internal/mdast"
)

// CSVParser handles CSV files. The whole file becomes one table whose first
// record is the header.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) (*Document, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	doc := &Document{Title: baseTitle(filename), Root: &mdast.Document{}}
	if len(records) == 0 {
		return doc, nil
	}

	t := &mdast.Table{Header: csvRow(records[0])}
	for _, rec := range records[1:] {
		t.Rows = append(t.Rows, csvRow(rec))
	}
	doc.Root.Children = []mdast.Node{t}
	return doc, nil
}

func csvRow(rec []string) *mdast.TableRow {
	row := &mdast.TableRow{Cells: make([]*mdast.TableCell, 0, len(rec))}
	for _, field := range rec {
		cell := &mdast.TableCell{}
		if field != "" {
			cell.Children = inlineText(field)
		}
		row.Cells = append(row.Cells, cell)
	}
	return row
}
