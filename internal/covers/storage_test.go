package covers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// uploadedFile builds a *multipart.FileHeader the way gin would hand it to
// a handler.
func uploadedFile(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("cover_image", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))

	return req.MultipartForm.File["cover_image"][0]
}

func TestLocalStorage_SaveAndDelete(t *testing.T) {
	dir := t.TempDir()
	storage, err := NewLocalStorage(dir)
	require.NoError(t, err)

	name, err := storage.Save(uploadedFile(t, "Cover Image.PNG", []byte("fake png bytes")))
	require.NoError(t, err)

	// The stored name is random, keeping only the lowercased extension.
	assert.NotContains(t, name, "Cover")
	assert.Equal(t, ".png", filepath.Ext(name))

	content, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.Equal(t, []byte("fake png bytes"), content)

	assert.Equal(t, "/covers/"+name, storage.URL(name))

	names, err := storage.List()
	require.NoError(t, err)
	assert.Equal(t, []string{name}, names)

	require.NoError(t, storage.Delete(name))
	names, err = storage.List()
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestLocalStorage_DeleteMissing(t *testing.T) {
	storage, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	assert.NoError(t, storage.Delete("never-existed.png"))
}

func TestLocalStorage_DeleteIgnoresPathTraversal(t *testing.T) {
	dir := t.TempDir()
	storage, err := NewLocalStorage(filepath.Join(dir, "covers"))
	require.NoError(t, err)

	outside := filepath.Join(dir, "precious.txt")
	require.NoError(t, os.WriteFile(outside, []byte("keep me"), 0o644))

	require.NoError(t, storage.Delete("../precious.txt"))
	_, err = os.Stat(outside)
	assert.NoError(t, err, "files outside the storage dir must not be touched")
}
