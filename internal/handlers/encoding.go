package handlers

import (
	"bytes"
	"compress/flate"
	"encoding/base64"
	"io"
	"unicode/utf8"

	"github.com/ArcBlock/super-linter-api-sub000/internal/models"
)

// maxEncodedPayload bounds the inflated size of URL-embedded source
const maxInflatedPayload = 10 * 1024 * 1024

// DecodeURLPayload decodes the {encoded} path segment: base64 over a
// raw DEFLATE stream, no zlib or gzip wrapper. URL-safe and standard
// base64 alphabets are both accepted.
func DecodeURLPayload(encoded string) (string, error) {
	compressed, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		compressed, err = base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return "", &models.EncodingError{Message: "malformed base64 payload", Cause: err}
		}
	}

	fr := flate.NewReader(bytes.NewReader(compressed))
	defer fr.Close()

	inflated, err := io.ReadAll(io.LimitReader(fr, maxInflatedPayload+1))
	if err != nil {
		return "", &models.EncodingError{Message: "malformed DEFLATE payload", Cause: err}
	}
	if len(inflated) > maxInflatedPayload {
		return "", &models.ContentTooLargeError{
			Message: "inflated payload exceeds limit",
			Size:    int64(len(inflated)),
			Limit:   maxInflatedPayload,
		}
	}
	if !utf8.Valid(inflated) {
		return "", &models.EncodingError{Message: "payload is not valid UTF-8"}
	}

	return string(inflated), nil
}
