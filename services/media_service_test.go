package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"spacrm-backend/errs"
	"spacrm-backend/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memObjects struct {
	mu        sync.Mutex
	objects   map[string][]byte
	deleteErr error
}

func newMemObjects() *memObjects { return &memObjects{objects: map[string][]byte{}} }

func (m *memObjects) Bucket() string { return "media" }

func (m *memObjects) Upload(_ context.Context, path, _ string, body io.Reader) error {
	b, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[path] = b
	return nil
}

func (m *memObjects) Delete(_ context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.objects, path)
	return nil
}

func (m *memObjects) PublicURL(path string) string { return "https://cdn.example.com/" + path }

var pngHeader = []byte("\x89PNG\r\n\x1a\n0000000000")

func TestMediaService_Upload(t *testing.T) {
	db := testutil.NewDB(t)
	store := newMemObjects()
	clock := testutil.NewClock(time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC))
	svc := NewMediaService(db, store, clock, nil)
	ctx := context.Background()
	uploader := uuid.New()

	file, err := svc.Upload(ctx, uploader, "../../photo.png", "", bytes.NewReader(pngHeader))
	require.NoError(t, err)
	assert.Equal(t, "image/png", file.ContentType)
	assert.Equal(t, "photo.png", file.FileName)
	assert.True(t, strings.HasPrefix(file.Path, "uploads/2024/03/"))
	assert.True(t, strings.HasSuffix(file.Path, ".png"))
	assert.Equal(t, "https://cdn.example.com/"+file.Path, file.URL)
	assert.EqualValues(t, len(pngHeader), file.Size)
	assert.Equal(t, uploader, file.UploadedBy)
	assert.Contains(t, store.objects, file.Path)

	pdf, err := svc.Upload(ctx, uploader, "consent.pdf", "application/pdf; charset=binary", strings.NewReader("%PDF-1.4"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(pdf.Path, ".pdf"))

	list, err := svc.List(ctx, 0, 10)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestMediaService_UploadRejects(t *testing.T) {
	db := testutil.NewDB(t)
	store := newMemObjects()
	svc := NewMediaService(db, store, nil, nil)
	ctx := context.Background()

	_, err := svc.Upload(ctx, uuid.New(), "empty.png", "image/png", bytes.NewReader(nil))
	assert.True(t, errs.Is(err, errs.KindValidation))

	_, err = svc.Upload(ctx, uuid.New(), "notes.txt", "", strings.NewReader("plain text"))
	assert.True(t, errs.Is(err, errs.KindValidation))

	big := bytes.Repeat([]byte{0}, MaxUploadSize+1)
	_, err = svc.Upload(ctx, uuid.New(), "big.png", "image/png", bytes.NewReader(big))
	assert.True(t, errs.Is(err, errs.KindValidation))

	assert.Empty(t, store.objects)
}

func TestMediaService_Delete(t *testing.T) {
	db := testutil.NewDB(t)
	store := newMemObjects()
	svc := NewMediaService(db, store, nil, nil)
	ctx := context.Background()

	file, err := svc.Upload(ctx, uuid.New(), "a.png", "image/png", bytes.NewReader(pngHeader))
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, file.ID))
	assert.NotContains(t, store.objects, file.Path)

	_, err = svc.Get(ctx, file.ID)
	assert.True(t, errs.Is(err, errs.KindNotFound))
	assert.True(t, errs.Is(svc.Delete(ctx, file.ID), errs.KindNotFound))

	// object removal failures do not undo the record delete
	other, err := svc.Upload(ctx, uuid.New(), "b.png", "image/png", bytes.NewReader(pngHeader))
	require.NoError(t, err)
	store.deleteErr = errors.New("bucket offline")
	require.NoError(t, svc.Delete(ctx, other.ID))
	_, err = svc.Get(ctx, other.ID)
	assert.True(t, errs.Is(err, errs.KindNotFound))
}
