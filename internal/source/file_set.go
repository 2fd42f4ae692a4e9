package source

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"fortio.org/safecast"
)

// FileSet owns every source file of one compilation (or one build).
type FileSet struct {
	files   []File
	index   map[string]FileID // path -> latest id
	baseDir string
}

// NewFileSet creates a new empty FileSet.
func NewFileSet() *FileSet {
	return NewFileSetWithBase("")
}

// NewFileSetWithBase creates a FileSet that renders relative paths against baseDir.
func NewFileSetWithBase(baseDir string) *FileSet {
	return &FileSet{
		files:   make([]File, 0, 4),
		index:   make(map[string]FileID),
		baseDir: baseDir,
	}
}

// BaseDir returns the directory relative paths are computed against.
func (fileSet *FileSet) BaseDir() string {
	if fileSet.baseDir == "" {
		if wd, err := os.Getwd(); err == nil {
			return wd
		}
	}
	return fileSet.baseDir
}

// Add stores already normalised bytes and returns a fresh FileID.
// Adding the same path twice yields two versions; the index points at the latest.
func (fileSet *FileSet) Add(path string, content []byte, flags FileFlags) FileID {
	return fileSet.add(path, content, flags, nil)
}

func (fileSet *FileSet) add(path string, content []byte, flags FileFlags, crlf []uint32) FileID {
	count, err := safecast.Conv[uint32](len(fileSet.files))
	if err != nil {
		panic(fmt.Errorf("file set overflow: %w", err))
	}
	id := FileID(count)
	normalized := normalizePath(path)
	fileSet.files = append(fileSet.files, File{
		ID:      id,
		Path:    normalized,
		Content: content,
		LineIdx: buildLineIndex(content),
		Hash:    sha256.Sum256(content),
		Flags:   flags,
		crlf:    crlf,
	})
	fileSet.index[normalized] = id
	return id
}

// AddVirtual normalises CRLF/BOM of host-provided bytes and adds them as a virtual file.
func (fileSet *FileSet) AddVirtual(name string, content []byte) FileID {
	content, flags, crlf := normalize(content)
	return fileSet.add(name, content, flags|FileVirtual, crlf)
}

// Load reads a file from disk, normalises it and adds it to the set.
func (fileSet *FileSet) Load(path string) (FileID, error) {
	// #nosec G304 -- path is provided by the caller
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	content, flags, crlf := normalize(content)
	return fileSet.add(path, content, flags, crlf), nil
}

// Normalize strips a UTF-8 BOM and converts CRLF line endings to LF.
func Normalize(content []byte) ([]byte, FileFlags) {
	content, flags, _ := normalize(content)
	return content, flags
}

func normalize(content []byte) ([]byte, FileFlags, []uint32) {
	var flags FileFlags
	content, hadBOM := removeBOM(content)
	if hadBOM {
		flags |= FileHadBOM
	}
	content, crlf := normalizeCRLF(content)
	if len(crlf) > 0 {
		flags |= FileNormalizedCRLF
	}
	return content, flags, crlf
}

// Get returns the file for id. It panics on an unknown id.
func (fileSet *FileSet) Get(id FileID) *File {
	return &fileSet.files[id]
}

// Len returns the number of stored file versions.
func (fileSet *FileSet) Len() int {
	return len(fileSet.files)
}

// GetLatest returns the latest file ID for the given path, if any.
func (fileSet *FileSet) GetLatest(path string) (FileID, bool) {
	id, ok := fileSet.index[normalizePath(path)]
	return id, ok
}

// Resolve converts a span into line and column positions.
func (fileSet *FileSet) Resolve(span Span) (start, end LineCol) {
	f := &fileSet.files[span.File]
	return f.Position(span.Start), f.Position(span.End)
}

// Position converts a byte offset into a line/column pair.
func (f *File) Position(off uint32) LineCol {
	return toLineCol(f.LineIdx, off)
}

// OriginalOffset maps an offset in Content back to the bytes that were
// handed to Load or AddVirtual, undoing BOM removal and CRLF folding.
// An offset of a folded '\n' points at the '\n', not at its '\r'.
func (f *File) OriginalOffset(off uint32) uint32 {
	n := sort.Search(len(f.crlf), func(i int) bool { return f.crlf[i] > off })
	orig := off + uint32(n) //nolint:gosec // n <= len(crlf) which fits uint32
	if f.Flags&FileHadBOM != 0 {
		orig += 3
	}
	return orig
}

// Size returns the content length as uint32.
func (f *File) Size() uint32 {
	n, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		panic(fmt.Errorf("file %s too large: %w", f.Path, err))
	}
	return n
}

// Span returns the span covering the whole file.
func (f *File) Span() Span {
	return Span{File: f.ID, Start: 0, End: f.Size()}
}

// Text returns the source text under span.
func (f *File) Text(span Span) string {
	size := f.Size()
	if span.Start > size || span.End > size || span.Start > span.End {
		return ""
	}
	return string(f.Content[span.Start:span.End])
}

// GetLine returns the 1-based line lineNum without its trailing newline.
func (f *File) GetLine(lineNum uint32) string {
	if lineNum == 0 {
		return ""
	}
	size := f.Size()
	lines := uint32(len(f.LineIdx))

	var start uint32
	if lineNum > 1 {
		if lineNum-2 >= lines {
			return ""
		}
		start = f.LineIdx[lineNum-2] + 1
	}
	end := size
	if lineNum-1 < lines {
		end = f.LineIdx[lineNum-1]
	}
	if start > size {
		return ""
	}
	return string(f.Content[start:end])
}

// DisplayPath renders the path relative to baseDir when that is shorter.
func (f *File) DisplayPath(baseDir string) string {
	if f.Flags&FileVirtual != 0 || baseDir == "" || !filepath.IsAbs(f.Path) {
		return f.Path
	}
	if rel, err := filepath.Rel(baseDir, f.Path); err == nil && len(rel) < len(f.Path) {
		return filepath.ToSlash(rel)
	}
	return f.Path
}
