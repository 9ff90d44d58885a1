package upload

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Saver writes uploaded listing images into a local directory and hands back
// the public path they are served under.
type Saver struct {
	Dir     string
	MaxSize int64
}

func NewSaver(dir string, maxSize int64) (*Saver, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("upload: create dir: %w", err)
	}
	return &Saver{Dir: dir, MaxSize: maxSize}, nil
}

// Save stores one multipart image file. The returned path is relative
// ("uploads/image-<uuid>.png") and safe to hand to clients.
func (s *Saver) Save(file multipart.File, header *multipart.FileHeader) (string, error) {
	if header.Size > s.MaxSize {
		return "", fmt.Errorf("upload: file exceeds %d byte limit", s.MaxSize)
	}

	ext, err := extensionFor(header)
	if err != nil {
		return "", err
	}

	name := "image-" + uuid.NewString() + ext
	dst, err := os.Create(filepath.Join(s.Dir, name))
	if err != nil {
		return "", fmt.Errorf("upload: create file: %w", err)
	}
	defer dst.Close()

	// Size limit again on the actual bytes; header.Size is client-declared.
	if _, err := io.Copy(dst, io.LimitReader(file, s.MaxSize+1)); err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("upload: write file: %w", err)
	}
	if info, err := dst.Stat(); err == nil && info.Size() > s.MaxSize {
		os.Remove(dst.Name())
		return "", fmt.Errorf("upload: file exceeds %d byte limit", s.MaxSize)
	}

	return "uploads/" + name, nil
}

func extensionFor(header *multipart.FileHeader) (string, error) {
	ct := header.Header.Get("Content-Type")
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = ct[:i]
	}
	ct = strings.TrimSpace(strings.ToLower(ct))

	ext, ok := allowedTypes[ct]
	if !ok {
		return "", fmt.Errorf("upload: content type %q not allowed", ct)
	}
	return ext, nil
}
