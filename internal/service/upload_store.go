package service

import (
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"mime/multipart"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// CoverPrefix is prepended to stored filenames to form Post.Cover.
const CoverPrefix = "uploads/"

// UploadStore keeps uploaded files in a single local directory.
type UploadStore struct {
	dir string
}

func NewUploadStore(dir string) *UploadStore {
	return &UploadStore{dir: dir}
}

// Dir returns the directory files are written to.
func (s *UploadStore) Dir() string {
	return s.dir
}

// EnsureDir creates the upload directory if it does not exist.
func (s *UploadStore) EnsureDir() error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create upload dir %s: %w", s.dir, err)
	}
	return nil
}

var safeExt = regexp.MustCompile(`^\.[A-Za-z0-9]+$`)

// GenerateFilename builds "<unix-millis>-<random>.<ext>" keeping the original
// extension when it is only letters and digits.
func GenerateFilename(original string) string {
	ext := filepath.Ext(original)
	if !safeExt.MatchString(ext) {
		ext = ""
	}
	return fmt.Sprintf("%d-%d%s", time.Now().UnixMilli(), rand.Int64N(1_000_000_000), ext)
}

// Save writes the uploaded file under a generated name and returns that name and its size.
func (s *UploadStore) Save(fh *multipart.FileHeader) (string, int64, error) {
	if err := s.EnsureDir(); err != nil {
		return "", 0, err
	}

	src, err := fh.Open()
	if err != nil {
		return "", 0, fmt.Errorf("open upload: %w", err)
	}
	defer func() { _ = src.Close() }()

	name := GenerateFilename(fh.Filename)
	path := filepath.Join(s.dir, name)
	dst, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", 0, fmt.Errorf("create %s: %w", path, err)
	}

	n, err := io.Copy(dst, src)
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return "", 0, fmt.Errorf("write %s: %w", path, err)
	}
	return name, n, nil
}

// Remove deletes a stored file. A file that is already gone is not an error.
func (s *UploadStore) Remove(name string) error {
	path, ok := s.Resolve(name)
	if !ok {
		return fmt.Errorf("invalid upload name %q", name)
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Resolve maps a request filename to a path inside the upload directory. Names
// that are not a single path element are rejected.
func (s *UploadStore) Resolve(name string) (string, bool) {
	if name == "" || name == "." || name == ".." {
		return "", false
	}
	if strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") || filepath.Base(name) != name {
		return "", false
	}
	return filepath.Join(s.dir, name), true
}

// CoverPath is the value stored in Post.Cover for a saved file.
func CoverPath(name string) string {
	return CoverPrefix + name
}
