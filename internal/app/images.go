package app

import (
	"context"
	"log/slog"
	"path"

	"celebrity-trivia/internal/domain"
	"golang.org/x/sync/errgroup"
)

const imageDownloadLimit = 4

// ImageSource downloads a remote profile image.
type ImageSource interface {
	Image(ctx context.Context, path string) ([]byte, error)
}

// ImageStore persists image bytes and returns their location.
type ImageStore interface {
	Save(name string, data []byte) (string, error)
}

// ImageCacher fills in local profile images once a round's options are final.
type ImageCacher struct {
	source  ImageSource
	store   ImageStore
	catalog CatalogRepository
}

func NewImageCacher(source ImageSource, store ImageStore, catalog CatalogRepository) *ImageCacher {
	return &ImageCacher{source: source, store: store, catalog: catalog}
}

// Cache downloads the images people are missing and records their location.
// A failed download leaves that person without an image.
func (c *ImageCacher) Cache(ctx context.Context, people []domain.Person) []domain.Person {
	out := make([]domain.Person, len(people))
	copy(out, people)

	var g errgroup.Group
	g.SetLimit(imageDownloadLimit)
	for i := range out {
		i := i
		p := out[i]
		if p.ProfileImage != "" || p.ProfilePath == "" {
			continue
		}
		g.Go(func() error {
			loc, err := c.fetch(ctx, p)
			if err != nil {
				slog.Warn("profile image unavailable", "person_id", p.ID, "path", p.ProfilePath, "error", err)
				return nil
			}
			out[i].ProfileImage = loc
			return nil
		})
	}
	g.Wait()
	return out
}

func (c *ImageCacher) fetch(ctx context.Context, p domain.Person) (string, error) {
	data, err := c.source.Image(ctx, p.ProfilePath)
	if err != nil {
		return "", err
	}
	loc, err := c.store.Save(path.Base(p.ProfilePath), data)
	if err != nil {
		return "", err
	}
	if err := c.catalog.SetProfileImage(ctx, p.ID, loc); err != nil {
		return "", err
	}
	return loc, nil
}
