package handler

import (
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pawnfin/console/internal/domain/shared"
)

const (
	photoField    = "photoFile"
	maxPhotoBytes = 5 << 20
)

// uploadedPhoto returns an uploaded photo file as a data URL, or "" when no
// file was sent. Captured photos arrive as a data URL already and skip this.
func uploadedPhoto(c *gin.Context) (string, error) {
	fh, err := c.FormFile(photoField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return "", nil
		}
		return "", err
	}
	if fh.Size == 0 {
		return "", nil
	}
	if fh.Size > maxPhotoBytes {
		return "", shared.NewValidationError("photo", "Photo must be smaller than 5 MB.")
	}

	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxPhotoBytes))
	if err != nil {
		return "", err
	}
	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return "", shared.NewValidationError("photo", "Photo must be an image.")
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
