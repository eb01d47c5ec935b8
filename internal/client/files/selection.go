// Package files keeps the ordered set of local PDFs picked for the next tool
// run. Only real PDFs are accepted; the check reads the file header instead
// of trusting the extension.
package files

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/pdfier/internal/client/client"
)

var pdfMagic = []byte("%PDF-")

// File is one selected PDF.
type File struct {
	ID   string
	Name string
	Path string
	Size int64
}

// Rejected is a path that Add refused, with the reason.
type Rejected struct {
	Path   string
	Reason string
}

// IsPDF reports whether the file at path starts with the PDF header.
func IsPDF(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	head := make([]byte, len(pdfMagic))
	if _, err := io.ReadFull(f, head); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return false, nil
		}
		return false, err
	}
	return bytes.Equal(head, pdfMagic), nil
}

// Selection is safe for concurrent use.
type Selection struct {
	mu    sync.Mutex
	items []File
}

func NewSelection() *Selection {
	return &Selection{}
}

// Add appends every path that is a readable PDF and reports the rest.
func (s *Selection) Add(paths ...string) ([]File, []Rejected) {
	var (
		added    []File
		rejected []Rejected
	)
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			rejected = append(rejected, Rejected{Path: p, Reason: err.Error()})
			continue
		}
		if info.IsDir() {
			rejected = append(rejected, Rejected{Path: p, Reason: "is a directory"})
			continue
		}
		ok, err := IsPDF(p)
		if err != nil {
			rejected = append(rejected, Rejected{Path: p, Reason: err.Error()})
			continue
		}
		if !ok {
			rejected = append(rejected, Rejected{Path: p, Reason: "not a PDF file"})
			continue
		}
		added = append(added, File{
			ID:   uuid.NewString(),
			Name: filepath.Base(p),
			Path: p,
			Size: info.Size(),
		})
	}

	s.mu.Lock()
	s.items = append(s.items, added...)
	s.mu.Unlock()
	return added, rejected
}

// List returns a copy in selection order.
func (s *Selection) List() []File {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]File, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Selection) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *Selection) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
}

// index resolves ref as a 1-based position or as an ID prefix.
// Callers hold mu.
func (s *Selection) index(ref string) int {
	ref = strings.TrimSpace(ref)
	if n, err := strconv.Atoi(ref); err == nil {
		if n >= 1 && n <= len(s.items) {
			return n - 1
		}
		return -1
	}
	if ref == "" {
		return -1
	}
	found := -1
	for i, f := range s.items {
		if strings.HasPrefix(f.ID, ref) {
			if found >= 0 {
				return -1
			}
			found = i
		}
	}
	return found
}

// Remove drops the file referenced by ref.
func (s *Selection) Remove(ref string) (File, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(ref)
	if i < 0 {
		return File{}, false
	}
	f := s.items[i]
	s.items = append(s.items[:i], s.items[i+1:]...)
	return f, true
}

// MoveUp swaps the file with its predecessor. It reports false when ref is
// unknown or already first.
func (s *Selection) MoveUp(ref string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(ref)
	if i <= 0 {
		return false
	}
	s.items[i-1], s.items[i] = s.items[i], s.items[i-1]
	return true
}

// MoveDown swaps the file with its successor.
func (s *Selection) MoveDown(ref string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(ref)
	if i < 0 || i >= len(s.items)-1 {
		return false
	}
	s.items[i+1], s.items[i] = s.items[i], s.items[i+1]
	return true
}

// ReadUploads loads the contents of files for a multipart request.
func ReadUploads(files []File) ([]client.Upload, error) {
	out := make([]client.Upload, 0, len(files))
	for _, f := range files {
		data, err := os.ReadFile(f.Path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f.Name, err)
		}
		out = append(out, client.Upload{Name: f.Name, Data: data})
	}
	return out, nil
}
