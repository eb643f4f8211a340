package storage

import (
	"encoding/base64"
	"errors"
	"mime"
	"strings"
)

// ErrInvalidDataURL is returned for anything that is not a base64 image data URL
var ErrInvalidDataURL = errors.New("photo is not a base64 image data URL")

// decodeDataURL splits "data:<type>;base64,<payload>" into its content type
// and bytes. Only image types are accepted.
func decodeDataURL(dataURL string) (contentType string, data []byte, err error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(dataURL), "data:")
	if !ok {
		return "", nil, ErrInvalidDataURL
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, ErrInvalidDataURL
	}
	contentType, params, ok := strings.Cut(meta, ";")
	if !ok || !strings.Contains(params, "base64") || !strings.HasPrefix(contentType, "image/") {
		return "", nil, ErrInvalidDataURL
	}
	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, ErrInvalidDataURL
	}
	if len(data) == 0 {
		return "", nil, ErrInvalidDataURL
	}
	return contentType, data, nil
}

// extensionFor picks a file extension for contentType, ".bin" when unknown.
func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	}
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ".bin"
}

// photoKey builds the object key for an account's photo. Account numbers
// contain a slash, which would otherwise nest the key.
func photoKey(prefix, accNo, stamp, ext string) string {
	safe := strings.NewReplacer("/", "_", " ", "_").Replace(strings.TrimSpace(accNo))
	key := safe + "/" + stamp + ext
	if prefix = strings.Trim(prefix, "/"); prefix != "" {
		key = prefix + "/" + key
	}
	return key
}
