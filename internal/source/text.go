package source

import (
	"bufio"
	"io"
	"strings"

	"github.com/dgallion1/mdblocks/internal/mdast"
)

// TextParser handles plain text files.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*Document, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return &Document{
		Title: baseTitle(filename),
		Root:  &mdast.Document{Children: textParagraphs(strings.Join(lines, "\n"))},
	}, nil
}

// textParagraphs splits s on blank lines. Lines inside a paragraph are
// joined with LineBreak nodes.
func textParagraphs(s string) []mdast.Node {
	var out []mdast.Node
	var current []string

	flush := func() {
		if len(current) > 0 {
			out = append(out, &mdast.Paragraph{Children: inlineText(strings.Join(current, "\n"))})
			current = nil
		}
	}

	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimRight(line, " \t\r")
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		current = append(current, line)
	}
	flush()
	return out
}
