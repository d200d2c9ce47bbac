package app

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"property_listing/internal/domain"
)

// UploadedImage is returned for every stored upload, ready to be sent back as a property image.
type UploadedImage struct {
	ImageURL     string `json:"image_url"`
	Filename     string `json:"filename"`
	ContentType  string `json:"content_type"`
	Size         int    `json:"size"`
	DisplayOrder int    `json:"display_order"`
	IsCover      bool   `json:"is_cover"`
	AltText      string `json:"alt_text"`
}

// ImageService validates uploads by size and sniffed content type before handing them to the store.
type ImageService struct {
	store    domain.ImageStore
	maxBytes int
	allowed  map[string]string // mime -> extension
	folder   string
	now      func() time.Time
}

var imageExt = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
	"image/gif":  "gif",
}

func NewImageService(s domain.ImageStore, maxBytes int, allowedTypes []string) *ImageService {
	allowed := map[string]string{}
	for _, t := range allowedTypes {
		t = strings.ToLower(strings.TrimSpace(t))
		if ext, ok := imageExt[t]; ok {
			allowed[t] = ext
		}
	}
	if len(allowed) == 0 {
		allowed = imageExt
	}
	return &ImageService{store: s, maxBytes: maxBytes, allowed: allowed, folder: "properties", now: time.Now}
}

// Upload stores one image under properties/<yyyymmdd_hhmmss>_<uuid8>.<ext>.
func (s *ImageService) Upload(ctx context.Context, filename string, data []byte) (UploadedImage, error) {
	if len(data) == 0 {
		return UploadedImage{}, domain.Validationf("%s: empty file", filename)
	}
	if s.maxBytes > 0 && len(data) > s.maxBytes {
		return UploadedImage{}, domain.Validationf("%s: file exceeds %d bytes", filename, s.maxBytes)
	}
	mt := mimetype.Detect(data)
	ext, ok := s.allowed[mt.String()]
	if !ok {
		return UploadedImage{}, domain.Validationf("%s: content type %s is not an allowed image type", filename, mt.String())
	}
	key := s.key(ext)
	url, err := s.store.Put(ctx, key, mt.String(), data)
	if err != nil {
		return UploadedImage{}, err
	}
	return UploadedImage{
		ImageURL:    url,
		Filename:    filename,
		ContentType: mt.String(),
		Size:        len(data),
		AltText:     filename,
	}, nil
}

type ImageFile struct {
	Name string
	Data []byte
}

// UploadMany stores each file in order. The first becomes the cover.
func (s *ImageService) UploadMany(ctx context.Context, files []ImageFile) ([]UploadedImage, error) {
	if len(files) == 0 {
		return nil, domain.Validationf("no images supplied")
	}
	out := make([]UploadedImage, 0, len(files))
	for i, f := range files {
		img, err := s.Upload(ctx, f.Name, f.Data)
		if err != nil {
			return out, err
		}
		img.DisplayOrder = i
		img.IsCover = i == 0
		out = append(out, img)
	}
	return out, nil
}

func (s *ImageService) Delete(ctx context.Context, url string) error {
	if strings.TrimSpace(url) == "" {
		return domain.Validationf("image_url is required")
	}
	return s.store.Delete(ctx, url)
}

// Open streams a stored object back with its content type.
func (s *ImageService) Open(ctx context.Context, key string) (io.ReadCloser, string, error) {
	return s.store.Open(ctx, key)
}

func (s *ImageService) key(ext string) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s/%s_%s.%s", s.folder, s.now().UTC().Format("20060102_150405"), id, ext)
}
