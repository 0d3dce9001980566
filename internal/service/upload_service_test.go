package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type memoryStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	err     error
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{objects: map[string][]byte{}}
}

func (m *memoryStorage) Upload(_ context.Context, key string, reader io.Reader) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	payload, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = payload
	return fmt.Sprintf("https://cdn.test/%s", key), nil
}

type testFile struct {
	name    string
	content []byte
}

var pngPayload = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 64)...)

func multipartFiles(t *testing.T, files ...testFile) []*multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for _, file := range files {
		part, err := writer.CreateFormFile("photos", file.name)
		require.NoError(t, err)
		_, err = part.Write(file.content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	form, err := multipart.NewReader(body, writer.Boundary()).ReadForm(10 << 20)
	require.NoError(t, err)
	return form.File["photos"]
}

func TestPhotoIntakeStoresImages(t *testing.T) {
	storage := newMemoryStorage()
	intake := newPhotoIntake(storage, 1, zerolog.Nop())

	urls, err := intake.store(context.Background(), "tenant/2026-03-02", multipartFiles(t,
		testFile{name: "Site Entrance.PNG", content: pngPayload},
		testFile{name: "../../etc/passwd.png", content: pngPayload},
	))
	require.NoError(t, err)
	require.Len(t, urls, 2)
	require.Contains(t, storage.objects, "tenant/2026-03-02/site-entrance.png")
	require.Contains(t, urls[0], "site-entrance.png")
	for key := range storage.objects {
		require.NotContains(t, key, "..")
	}
}

func TestPhotoIntakeRejectsNonImages(t *testing.T) {
	storage := newMemoryStorage()
	intake := newPhotoIntake(storage, 1, zerolog.Nop())

	_, err := intake.store(context.Background(), "tenant/day", multipartFiles(t,
		testFile{name: "ok.png", content: pngPayload},
		testFile{name: "notes.png", content: []byte("plain text pretending to be an image")},
	))
	require.True(t, errors.Is(err, ErrUploadTypeNotAllowed))
	require.Empty(t, storage.objects)
}

func TestPhotoIntakeRejectsOversizedFiles(t *testing.T) {
	intake := newPhotoIntake(newMemoryStorage(), 1, zerolog.Nop())
	large := append(append([]byte{}, pngPayload...), make([]byte, 1024*1024)...)

	_, err := intake.store(context.Background(), "tenant/day", multipartFiles(t, testFile{name: "big.png", content: large}))
	require.True(t, errors.Is(err, ErrUploadTooLarge))
}

func TestPhotoIntakeRejectsMissingFile(t *testing.T) {
	storage := newMemoryStorage()
	intake := newPhotoIntake(storage, 1, zerolog.Nop())

	_, err := intake.store(context.Background(), "tenant/day", []*multipart.FileHeader{nil})
	require.True(t, errors.Is(err, ErrPhotoRequired))
	require.Empty(t, storage.objects)
}

func TestPhotoIntakeWithoutStorage(t *testing.T) {
	intake := newPhotoIntake(nil, 1, zerolog.Nop())
	_, err := intake.store(context.Background(), "tenant/day", multipartFiles(t, testFile{name: "a.png", content: pngPayload}))
	require.True(t, errors.Is(err, ErrPhotoStorageUnavailable))
}

func TestSanitizeFileName(t *testing.T) {
	require.Equal(t, "report-final.png", sanitizeFileName("Report Final.jpeg", ".png"))
	require.Equal(t, "scan.jpg", sanitizeFileName("scan.JPG", ""))
}
