// Package testkit holds structural checks shared by parser tests and fuzz harnesses.
package testkit

import (
	"fmt"

	"epscript/internal/ast"
	"epscript/internal/source"
)

// CheckSpanInvariants verifies the spans recorded by the parser:
// the file span lies within the content, every item sits inside the file
// span in source order, and every statement and expression span is well
// formed and points into the same file.
func CheckSpanInvariants(b *ast.Builder, fileID ast.FileID, sf *source.File) error {
	if b == nil || sf == nil {
		return fmt.Errorf("nil builder or file")
	}
	f := b.File(fileID)
	if f == nil {
		return fmt.Errorf("file node not found")
	}
	size := sf.Size()
	if err := checkSpan("file", f.Span, sf.ID, size); err != nil {
		return err
	}

	var prevEnd uint32
	for i, it := range f.Items {
		item := b.Items.Get(it)
		if item == nil {
			return fmt.Errorf("nil item for id=%d", it)
		}
		if err := checkSpan(fmt.Sprintf("item #%d", i), item.Span, sf.ID, size); err != nil {
			return err
		}
		if !f.Span.Contains(item.Span) {
			return fmt.Errorf("item span %v is outside file span %v", item.Span, f.Span)
		}
		if item.Span.Start < prevEnd {
			return fmt.Errorf("item #%d starts at %d before the previous item ends at %d", i, item.Span.Start, prevEnd)
		}
		prevEnd = item.Span.End
	}

	for i, st := range b.Stmts.Arena.Slice() {
		if err := checkSpan(fmt.Sprintf("stmt #%d", i+1), st.Span, sf.ID, size); err != nil {
			return err
		}
	}
	for i, ex := range b.Exprs.Arena.Slice() {
		if err := checkSpan(fmt.Sprintf("expr #%d", i+1), ex.Span, sf.ID, size); err != nil {
			return err
		}
	}
	return nil
}

func checkSpan(what string, sp source.Span, file source.FileID, size uint32) error {
	if sp.File != file {
		return fmt.Errorf("%s span points to different file id: got=%d want=%d", what, sp.File, file)
	}
	if sp.Start > sp.End {
		return fmt.Errorf("%s span is inverted: %v", what, sp)
	}
	if sp.End > size {
		return fmt.Errorf("%s span end beyond content: %d > %d", what, sp.End, size)
	}
	return nil
}
