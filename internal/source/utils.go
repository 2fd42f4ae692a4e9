package source

import (
	"bytes"
	"path/filepath"
)

// normalizeCRLF заменяет все \r\n на \n, не трогая одиночные \r.
// Возвращает смещения (уже в новом тексте) тех '\n', перед которыми стоял \r.
func normalizeCRLF(content []byte) ([]byte, []uint32) {
	if bytes.IndexByte(content, '\r') < 0 {
		return content, nil
	}
	out := make([]byte, 0, len(content))
	var dropped []uint32
	for i := 0; i < len(content); i++ {
		if content[i] == '\r' && i+1 < len(content) && content[i+1] == '\n' {
			dropped = append(dropped, uint32(len(out))) //nolint:gosec // FileSet.Add rejects >4GiB files via Size
			continue
		}
		out = append(out, content[i])
	}
	return out, dropped
}

func removeBOM(content []byte) ([]byte, bool) {
	if bytes.HasPrefix(content, []byte{0xEF, 0xBB, 0xBF}) {
		return content[3:], true
	}
	return content, false
}

func buildLineIndex(content []byte) []uint32 {
	out := make([]uint32, 0, bytes.Count(content, []byte{'\n'}))
	for i, b := range content {
		if b == '\n' {
			out = append(out, uint32(i)) //nolint:gosec // FileSet.Add rejects >4GiB files via Size
		}
	}
	return out
}

// toLineCol uses binary search over newline offsets.
func toLineCol(lineIdx []uint32, off uint32) LineCol {
	lo, hi := 0, len(lineIdx)
	for lo < hi {
		mid := (lo + hi) >> 1
		if lineIdx[mid] < off {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	// lo = number of newlines strictly before off
	var lineStart uint32
	if lo > 0 {
		lineStart = lineIdx[lo-1] + 1
	}
	return LineCol{Line: uint32(lo + 1), Col: off - lineStart + 1} //nolint:gosec // lo <= len(lineIdx) which fits uint32
}

func normalizePath(p string) string {
	// единый вид в кроссплатформенных дифах
	return filepath.ToSlash(filepath.Clean(p))
}
