package app_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"regexp"
	"testing"

	"property_listing/internal/app"
	"property_listing/internal/domain"
)

type memImages struct {
	objects map[string][]byte
	types   map[string]string
}

func (m *memImages) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	if m.objects == nil {
		m.objects, m.types = map[string][]byte{}, map[string]string{}
	}
	m.objects[key] = data
	m.types[key] = contentType
	return "http://media.test/media/" + key, nil
}

func (m *memImages) Open(ctx context.Context, key string) (io.ReadCloser, string, error) {
	b, ok := m.objects[key]
	if !ok {
		return nil, "", domain.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(b)), m.types[key], nil
}

func (m *memImages) Delete(ctx context.Context, url string) error {
	for k := range m.objects {
		if "http://media.test/media/"+k == url {
			delete(m.objects, k)
			return nil
		}
	}
	return domain.ErrNotFound
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func TestImageUpload_SniffsAndNames(t *testing.T) {
	store := &memImages{}
	svc := app.NewImageService(store, 1024, []string{"image/png", "image/jpeg"})

	img, err := svc.Upload(context.Background(), "photo.jpg", pngHeader)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if img.ContentType != "image/png" {
		t.Fatalf("content type = %s, want image/png", img.ContentType)
	}
	re := regexp.MustCompile(`/media/properties/\d{8}_\d{6}_[0-9a-f]{8}\.png$`)
	if !re.MatchString(img.ImageURL) {
		t.Fatalf("unexpected url %s", img.ImageURL)
	}
	if len(store.objects) != 1 {
		t.Fatalf("stored %d objects, want 1", len(store.objects))
	}

	if err := svc.Delete(context.Background(), img.ImageURL); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.Delete(context.Background(), img.ImageURL); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("second delete err = %v, want not found", err)
	}
}

func TestImageUpload_Rejects(t *testing.T) {
	svc := app.NewImageService(&memImages{}, 64, []string{"image/png"})
	ctx := context.Background()

	cases := map[string][]byte{
		"empty":     nil,
		"text":      []byte("definitely not an image"),
		"too large": append(append([]byte{}, pngHeader...), make([]byte, 64)...),
		"gif":       []byte("GIF89a\x01\x00\x01\x00\x00\x00\x00;"),
	}
	for name, data := range cases {
		if _, err := svc.Upload(ctx, name, data); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("%s: err = %v, want validation", name, err)
		}
	}
}

func TestImageUploadMany_FirstIsCover(t *testing.T) {
	svc := app.NewImageService(&memImages{}, 0, nil)
	out, err := svc.UploadMany(context.Background(), []app.ImageFile{
		{Name: "a.png", Data: pngHeader},
		{Name: "b.png", Data: pngHeader},
	})
	if err != nil {
		t.Fatalf("upload many: %v", err)
	}
	if len(out) != 2 || !out[0].IsCover || out[1].IsCover || out[1].DisplayOrder != 1 {
		t.Fatalf("unexpected result %+v", out)
	}
}
