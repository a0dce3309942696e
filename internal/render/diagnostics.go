package render

import (
	"errors"
	"fmt"

	"github.com/dgallion1/mdblocks/internal/mdast"
)

// WarningType categorizes non-fatal rendering issues.
type WarningType string

const (
	WarningHeadingClamped      WarningType = "heading_clamped"
	WarningUnsupportedLanguage WarningType = "unsupported_language"
	WarningDroppedBlock        WarningType = "dropped_block"
	WarningMissingTableHeader  WarningType = "missing_table_header"
	WarningStrayInline         WarningType = "stray_inline"
)

// Warning is a content issue the renderer degraded around.
type Warning struct {
	Type    WarningType `json:"type"`
	Node    mdast.Kind  `json:"node"`
	Message string      `json:"message"`
}

// ErrUnknownNode is matched by every UnknownNodeError.
var ErrUnknownNode = errors.New("unknown markdown node")

// UnknownNodeError means the tree holds a node the renderer has no handler
// for, which only happens when the AST producer and renderer disagree.
type UnknownNodeError struct {
	Type string
}

func (e *UnknownNodeError) Error() string {
	return fmt.Sprintf("render: no handler for node %s", e.Type)
}

func (e *UnknownNodeError) Unwrap() error {
	return ErrUnknownNode
}
