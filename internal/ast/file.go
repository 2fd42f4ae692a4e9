package ast

import (
	"epscript/internal/source"
)

// File is the root of one compilation unit: top-level items in source order.
type File struct {
	Span  source.Span
	Items []ItemID
}
