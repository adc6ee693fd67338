// ABOUTME: External bank file reader
// ABOUTME: Keeps recently used bank files open in an expiring cache
package hx

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// DefaultBankTTL is how long an unused bank file stays open
const DefaultBankTTL = 5 * time.Minute

// Bank resolves external sample references relative to a directory
type Bank struct {
	dir   string
	mu    sync.Mutex
	files *cache.Cache
}

// NewBank creates a bank reader rooted at dir
func NewBank(dir string, ttl time.Duration) *Bank {
	if ttl <= 0 {
		ttl = DefaultBankTTL
	}
	b := &Bank{dir: dir, files: cache.New(ttl, 2*ttl)}
	b.files.OnEvicted(func(_ string, v interface{}) {
		b.mu.Lock()
		defer b.mu.Unlock()
		if f, ok := v.(*os.File); ok {
			f.Close()
		}
	})
	return b
}

// Dir returns the directory external filenames are resolved against
func (b *Bank) Dir() string {
	return b.dir
}

// Read returns the bytes addressed by ref. Reads past the end of the bank
// file are clamped to the available bytes.
func (b *Bank) Read(ref ExternalRef) ([]byte, error) {
	if ref.Size <= 0 {
		return nil, fmt.Errorf("external %s: empty reference: %w", ref.Filename, ErrLoad)
	}
	path := ref.Filename
	if !filepath.IsAbs(path) {
		path = filepath.Join(b.dir, path)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	f, err := b.file(path)
	if err != nil {
		return nil, fmt.Errorf("external %s: %v: %w", ref.Filename, err, ErrLoad)
	}
	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("external %s: %v: %w", ref.Filename, err, ErrLoad)
	}

	size := ref.Size
	if ref.Offset >= info.Size() {
		return nil, fmt.Errorf("external %s: offset %d beyond end of file: %w", ref.Filename, ref.Offset, ErrLoad)
	}
	if ref.Offset+size > info.Size() {
		size = info.Size() - ref.Offset
	}

	buf := make([]byte, size)
	n, err := f.ReadAt(buf, ref.Offset)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("external %s: %v: %w", ref.Filename, err, ErrLoad)
	}
	return buf[:n], nil
}

func (b *Bank) file(path string) (*os.File, error) {
	if v, ok := b.files.Get(path); ok {
		return v.(*os.File), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	b.files.Set(path, f, cache.DefaultExpiration)
	return f, nil
}

// Close closes every cached bank file
func (b *Bank) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, item := range b.files.Items() {
		if f, ok := item.Object.(*os.File); ok {
			f.Close()
		}
	}
	b.files.Flush()
	return nil
}
