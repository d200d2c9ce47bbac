package app

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"property_listing/internal/domain"
)

// Slugify lower-cases title, folds accents and joins alphanumeric runs with "-".
func Slugify(title string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, title)
	if err != nil {
		folded = title
	}
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(folded) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	s := strings.TrimSuffix(b.String(), "-")
	if s == "" {
		s = "property"
	}
	return s
}

// uniqueSlug tries base, base-1, base-2, ... until one is free.
func uniqueSlug(ctx context.Context, props domain.PropertyRepository, title string, exclude uuid.UUID) (string, error) {
	base := Slugify(title)
	slug := base
	for i := 1; ; i++ {
		taken, err := props.SlugTaken(ctx, slug, exclude)
		if err != nil {
			return "", err
		}
		if !taken {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}
