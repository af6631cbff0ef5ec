package services

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"prismtech.dev/internal/config"
	"prismtech.dev/internal/validation"
)

// UploadPrefix is the URL path uploaded files are served under
const UploadPrefix = "/uploads/"

// Upload describes a stored file
type Upload struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
	Size     int64  `json:"size"`
}

// UploadService stores files on the local disk
type UploadService struct {
	dir      string
	maxBytes int64
	now      func() time.Time
	newID    func() string
}

// NewUploadService creates the upload directory and returns a service
// writing into it
func NewUploadService(cfg config.UploadsConfig) (*UploadService, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &UploadService{
		dir:      cfg.Dir,
		maxBytes: cfg.MaxBytes,
		now:      time.Now,
		newID:    uuid.NewString,
	}, nil
}

// Dir returns the directory files are written to
func (s *UploadService) Dir() string {
	return s.dir
}

// MaxBytes returns the largest accepted file
func (s *UploadService) MaxBytes() int64 {
	return s.maxBytes
}

// Save copies r into a new file named after original's extension. Files
// over the size limit are rejected and nothing is kept.
func (s *UploadService) Save(original string, r io.Reader) (Upload, error) {
	name := s.filename(original)
	dst := filepath.Join(s.dir, name)

	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return Upload{}, fmt.Errorf("failed to create upload: %w", err)
	}

	src := r
	if s.maxBytes > 0 {
		src = io.LimitReader(r, s.maxBytes+1)
	}
	n, err := io.Copy(f, src)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && s.maxBytes > 0 && n > s.maxBytes {
		err = validation.Fail("file", "must be at most "+strconv.FormatInt(s.maxBytes, 10)+" bytes")
	}
	if err != nil {
		_ = os.Remove(dst)
		var verr *validation.Error
		if errors.As(err, &verr) {
			return Upload{}, verr
		}
		return Upload{}, fmt.Errorf("failed to write upload: %w", err)
	}

	return Upload{Filename: name, URL: path.Join(UploadPrefix, name), Size: n}, nil
}

// filename builds "<unix-ms>-<uuid8><ext>"
func (s *UploadService) filename(original string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(original)))
	if len(ext) > 10 || strings.ContainsAny(ext, `/\ `) {
		ext = ""
	}
	return fmt.Sprintf("%d-%s%s", s.now().UnixMilli(), s.newID()[:8], ext)
}
