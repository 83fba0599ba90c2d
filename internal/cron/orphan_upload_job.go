package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/lastros/pos-backend/internal/uploads"
	"github.com/lastros/pos-backend/pkg/logger"
)

const defaultOrphanUploadAge = 24 * time.Hour

type uploadDir interface {
	Files() ([]uploads.File, error)
	NameFromURL(url string) string
	Remove(name string) error
}

type imageLister interface {
	ImageURLs(ctx context.Context) ([]string, error)
}

type OrphanUploadJobParams struct {
	Logger   *logger.Logger
	Store    uploadDir
	Products imageLister
	MinAge   time.Duration
}

// NewOrphanUploadJob removes uploaded images no product points at anymore,
// such as files left behind when an image is replaced. Files younger than
// MinAge are skipped so an upload that is still being attached survives.
func NewOrphanUploadJob(params OrphanUploadJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Store == nil {
		return nil, fmt.Errorf("upload store required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("product repository required")
	}
	minAge := params.MinAge
	if minAge <= 0 {
		minAge = defaultOrphanUploadAge
	}
	return &orphanUploadJob{
		logg:     params.Logger,
		store:    params.Store,
		products: params.Products,
		minAge:   minAge,
		now:      time.Now,
	}, nil
}

type orphanUploadJob struct {
	logg     *logger.Logger
	store    uploadDir
	products imageLister
	minAge   time.Duration
	now      func() time.Time
}

func (j *orphanUploadJob) Name() string { return "orphan-uploads" }

func (j *orphanUploadJob) Run(ctx context.Context) error {
	urls, err := j.products.ImageURLs(ctx)
	if err != nil {
		return fmt.Errorf("list product images: %w", err)
	}
	referenced := make(map[string]struct{}, len(urls))
	for _, u := range urls {
		if name := j.store.NameFromURL(u); name != "" {
			referenced[name] = struct{}{}
		}
	}

	files, err := j.store.Files()
	if err != nil {
		return err
	}
	cutoff := j.now().Add(-j.minAge)
	var removed, failed int
	for _, f := range files {
		if _, ok := referenced[f.Name]; ok || f.ModTime.After(cutoff) {
			continue
		}
		if err := j.store.Remove(f.Name); err != nil {
			failed++
			j.logg.Error(j.logg.WithField(ctx, "file", f.Name), "upload.orphan_remove_failed", err)
			continue
		}
		removed++
	}

	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"scanned": len(files),
		"removed": removed,
		"failed":  failed,
	}), "upload.orphan_cleanup_complete")
	if failed > 0 {
		return fmt.Errorf("failed to remove %d orphaned uploads", failed)
	}
	return nil
}
