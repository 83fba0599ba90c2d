package uploads

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/lastros/pos-backend/pkg/config"
	pkgerrors "github.com/lastros/pos-backend/pkg/errors"
	"github.com/lastros/pos-backend/pkg/logger"
)

const sniffBytes = 3072

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// allowedImageTypes lists the raster formats served back from /uploads.
// SVG is excluded since it can carry script.
var allowedImageTypes = []string{"image/png", "image/jpeg", "image/webp", "image/gif"}

// Stored describes a file written by the store.
type Stored struct {
	Name        string
	URL         string
	ContentType string
	Size        int64
}

// Store writes product images to local disk under a public prefix.
type Store struct {
	dir      string
	prefix   string
	maxBytes int64
	logg     *logger.Logger
	now      func() time.Time
}

// NewStore creates the upload directory when missing.
func NewStore(cfg config.UploadsConfig, logg *logger.Logger) (*Store, error) {
	dir := strings.TrimSpace(cfg.Dir)
	if dir == "" {
		return nil, fmt.Errorf("upload dir required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	prefix := "/" + strings.Trim(strings.TrimSpace(cfg.PublicPrefix), "/")
	if prefix == "/" {
		prefix = "/uploads"
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Store{
		dir:      dir,
		prefix:   prefix,
		maxBytes: cfg.MaxBytes(),
		logg:     logg,
		now:      time.Now,
	}, nil
}

func (s *Store) Dir() string     { return s.dir }
func (s *Store) Prefix() string  { return s.prefix }
func (s *Store) MaxBytes() int64 { return s.maxBytes }

// SaveImage sniffs r, rejects anything that is not an image and writes it as
// <unix-millis>-<safe name>.
func (s *Store) SaveImage(ctx context.Context, originalName string, r io.Reader) (*Stored, error) {
	head := make([]byte, sniffBytes)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read upload")
	}
	head = head[:n]
	if n == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "uploaded file is empty")
	}
	detected := mimetype.Detect(head)
	if !allowedImage(detected) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "only png, jpeg, webp or gif images are allowed").
			WithDetails(map[string]any{"content_type": detected.String(), "allowed": allowedImageTypes})
	}

	name := fmt.Sprintf("%d-%s%s", s.now().UnixMilli(), stem(originalName), detected.Extension())
	target := filepath.Join(s.dir, name)
	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create upload file")
	}
	defer os.Remove(tmp.Name())

	body := io.MultiReader(bytes.NewReader(head), r)
	written, err := io.Copy(tmp, io.LimitReader(body, s.maxBytes+1))
	closeErr := tmp.Close()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write upload")
	}
	if closeErr != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, closeErr, "write upload")
	}
	if written > s.maxBytes {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("file exceeds %d bytes", s.maxBytes))
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store upload")
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"file":         name,
		"content_type": detected.String(),
		"size":         written,
	}), "upload.stored")
	return &Stored{
		Name:        name,
		URL:         path.Join(s.prefix, name),
		ContentType: detected.String(),
		Size:        written,
	}, nil
}

// Remove deletes a stored file by name. Missing files are ignored.
func (s *Store) Remove(name string) error {
	clean := filepath.Base(name)
	if clean == "." || clean == string(filepath.Separator) {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, clean))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// File is an entry in the upload directory.
type File struct {
	Name    string
	ModTime time.Time
}

// Files lists stored uploads. In-flight temp files are skipped.
func (s *Store) Files() ([]File, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read upload dir: %w", err)
	}
	files := make([]File, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("stat upload: %w", err)
		}
		files = append(files, File{Name: entry.Name(), ModTime: info.ModTime()})
	}
	return files, nil
}

// NameFromURL maps a public URL produced by SaveImage back to its file name.
// URLs outside the store prefix return "".
func (s *Store) NameFromURL(url string) string {
	url = strings.TrimSpace(url)
	if i := strings.Index(url, s.prefix+"/"); i >= 0 {
		name := url[i+len(s.prefix)+1:]
		if name != "" && !strings.Contains(name, "/") {
			return name
		}
	}
	return ""
}

func allowedImage(detected *mimetype.MIME) bool {
	for _, allowed := range allowedImageTypes {
		if detected.Is(allowed) {
			return true
		}
	}
	return false
}

// stem is the safe client file name without its extension; the stored
// extension always comes from the sniffed content.
func stem(originalName string) string {
	base := SafeName(originalName)
	if trimmed := strings.TrimSuffix(base, filepath.Ext(base)); trimmed != "" && trimmed != "." {
		return trimmed
	}
	return "image"
}

// SafeName keeps [a-zA-Z0-9._-] and replaces everything else with "_".
func SafeName(name string) string {
	base := filepath.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if base == "." || base == "/" || base == "" {
		base = "image"
	}
	return unsafeChars.ReplaceAllString(base, "_")
}
