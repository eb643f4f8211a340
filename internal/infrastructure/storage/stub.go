package storage

import (
	"context"
	"time"

	customerapp "github.com/pawnfin/console/internal/application/customer"
)

var _ customerapp.PhotoArchive = (*DiscardPhotoArchive)(nil)

// DiscardPhotoArchive is used when no bucket is configured. It checks the
// captured photo decodes and returns the key it would have used, but keeps
// nothing: the photo already travels to the pawn-api with the intake.
type DiscardPhotoArchive struct {
	prefix string
	now    func() time.Time
}

// NewDiscardPhotoArchive creates a DiscardPhotoArchive
func NewDiscardPhotoArchive(prefix string) *DiscardPhotoArchive {
	return &DiscardPhotoArchive{prefix: prefix, now: time.Now}
}

// ArchivePhoto validates dataURL and drops it
func (d *DiscardPhotoArchive) ArchivePhoto(_ context.Context, accNo, dataURL string) (string, error) {
	contentType, _, err := decodeDataURL(dataURL)
	if err != nil {
		return "", err
	}
	return photoKey(d.prefix, accNo, d.now().UTC().Format("20060102T150405"), extensionFor(contentType)), nil
}
