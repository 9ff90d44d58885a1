package upload

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// formFile builds a real multipart.FileHeader the way a request parse would.
func formFile(t *testing.T, contentType string, payload []byte) (multipart.File, *multipart.FileHeader) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="image"; filename="photo"`)
	header.Set("Content-Type", contentType)

	part, err := w.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(payload)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })

	fh := form.File["image"][0]
	file, err := fh.Open()
	require.NoError(t, err)
	t.Cleanup(func() { _ = file.Close() })

	return file, fh
}

func TestSaveStoresAllowedImage(t *testing.T) {
	dir := t.TempDir()
	s, err := NewSaver(dir, 1<<20)
	require.NoError(t, err)

	file, fh := formFile(t, "image/png", []byte("png-bytes"))

	path, err := s.Save(file, fh)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(path, "uploads/image-"), "got %q", path)
	assert.True(t, strings.HasSuffix(path, ".png"), "got %q", path)

	data, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(path, "uploads/")))
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), data)
}

func TestSaveRejectsDisallowedType(t *testing.T) {
	s, err := NewSaver(t.TempDir(), 1<<20)
	require.NoError(t, err)

	file, fh := formFile(t, "application/pdf", []byte("%PDF-1.4"))

	_, err = s.Save(file, fh)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not allowed")
}

func TestSaveRejectsOversizedFile(t *testing.T) {
	s, err := NewSaver(t.TempDir(), 16)
	require.NoError(t, err)

	file, fh := formFile(t, "image/jpeg", bytes.Repeat([]byte("x"), 64))

	_, err = s.Save(file, fh)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "limit")
}

// brokenFile satisfies multipart.File but fails on the first read.
type brokenFile struct{}

func (brokenFile) Read(p []byte) (int, error)                   { return 0, errReadFailed }
func (brokenFile) ReadAt(p []byte, off int64) (int, error)      { return 0, errReadFailed }
func (brokenFile) Seek(offset int64, whence int) (int64, error) { return 0, nil }
func (brokenFile) Close() error                                 { return nil }

var errReadFailed = errors.New("read failed")

func TestSaveRemovesPartialFileOnCopyError(t *testing.T) {
	dir := t.TempDir()
	s, err := NewSaver(dir, 1<<20)
	require.NoError(t, err)

	fh := &multipart.FileHeader{
		Filename: "photo",
		Size:     10,
		Header:   textproto.MIMEHeader{"Content-Type": []string{"image/png"}},
	}

	_, err = s.Save(brokenFile{}, fh)
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "failed upload must not leave a partial file behind")
}

func TestSaveGeneratesUniqueNames(t *testing.T) {
	dir := t.TempDir()
	s, err := NewSaver(dir, 1<<20)
	require.NoError(t, err)

	file1, fh1 := formFile(t, "image/gif", []byte("a"))
	file2, fh2 := formFile(t, "image/gif", []byte("b"))

	p1, err := s.Save(file1, fh1)
	require.NoError(t, err)
	p2, err := s.Save(file2, fh2)
	require.NoError(t, err)

	assert.NotEqual(t, p1, p2)
}
