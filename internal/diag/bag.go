package diag

import (
	"sort"
)

type Bag struct {
	items []Diagnostic
	max   int
}

// NewBag creates a bag holding at most max diagnostics; max <= 0 means unlimited.
func NewBag(max int) *Bag {
	capHint := max
	if capHint <= 0 || capHint > 64 {
		capHint = 16
	}
	return &Bag{
		items: make([]Diagnostic, 0, capHint),
		max:   max,
	}
}

// Add добавляет диагностику, учитывая лимит. Полный Bag оставляет у себя
// самые важные: ошибки раньше предупреждений, затем по позиции в файле;
// вытесняется худшая из хранимых.
// Возвращает false, если диагностика не добавлена.
func (b *Bag) Add(d Diagnostic) bool {
	if b.max <= 0 || len(b.items) < b.max {
		b.items = append(b.items, d)
		return true
	}
	worst := 0
	for i := 1; i < len(b.items); i++ {
		if retainLess(&b.items[worst], &b.items[i]) {
			worst = i
		}
	}
	if !retainLess(&d, &b.items[worst]) {
		return false
	}
	b.items[worst] = d
	return true
}

// retainLess: a важнее b при вытеснении из полного Bag.
func retainLess(a, b *Diagnostic) bool {
	if a.Severity != b.Severity {
		return a.Severity > b.Severity
	}
	return positionLess(a, b)
}

func positionLess(a, b *Diagnostic) bool {
	if a.Primary.File != b.Primary.File {
		return a.Primary.File < b.Primary.File
	}
	if a.Primary.Start != b.Primary.Start {
		return a.Primary.Start < b.Primary.Start
	}
	if a.Primary.End != b.Primary.End {
		return a.Primary.End < b.Primary.End
	}
	if a.Severity != b.Severity {
		return a.Severity > b.Severity
	}
	return a.Code < b.Code
}

func (b *Bag) Cap() int {
	return b.max
}

// HasErrors возвращает true, если есть хотя бы одна диагностика с Severity >= Error
func (b *Bag) HasErrors() bool {
	return b.ErrorCount() > 0
}

// ErrorCount counts error-severity diagnostics.
func (b *Bag) ErrorCount() int {
	n := 0
	for i := range b.items {
		if b.items[i].Severity >= SevError {
			n++
		}
	}
	return n
}

// длина
func (b *Bag) Len() int {
	return len(b.items)
}

// Items возвращает read-only slice диагностик.
// ВАЖНО: не модифицируйте возвращаемый срез!
func (b *Bag) Items() []Diagnostic {
	return b.items
}

// Merge объединяет диагностики из другого Bag, расширяя лимит при необходимости.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	if b.max > 0 && len(b.items)+len(other.items) > b.max {
		b.max = len(b.items) + len(other.items)
	}
	b.items = append(b.items, other.items...)
}

// Sort сортирует диагностики по: file, start, end, severity (desc), code (asc).
func (b *Bag) Sort() {
	sort.SliceStable(b.items, func(i, j int) bool {
		return positionLess(&b.items[i], &b.items[j])
	})
}
