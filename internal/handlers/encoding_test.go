package handlers

import (
	"bytes"
	"compress/flate"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArcBlock/super-linter-api-sub000/internal/models"
)

func deflateBase64(t *testing.T, content string, enc *base64.Encoding) string {
	t.Helper()

	var buf bytes.Buffer
	fw, err := flate.NewWriter(&buf, flate.DefaultCompression)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, fw.Close())

	return enc.EncodeToString(buf.Bytes())
}

func TestDecodeURLPayloadRoundTrip(t *testing.T) {
	source := "#!/bin/sh\necho \"hello $USER\"\n"

	decoded, err := DecodeURLPayload(deflateBase64(t, source, base64.URLEncoding))
	require.NoError(t, err)
	assert.Equal(t, source, decoded)
}

func TestDecodeURLPayloadAcceptsStandardAlphabet(t *testing.T) {
	source := "def main():\n    pass\n"

	decoded, err := DecodeURLPayload(deflateBase64(t, source, base64.StdEncoding))
	require.NoError(t, err)
	assert.Equal(t, source, decoded)
}

func TestDecodeURLPayloadMalformedBase64(t *testing.T) {
	_, err := DecodeURLPayload("not%%%base64")

	var encErr *models.EncodingError
	require.Error(t, err)
	assert.True(t, errors.As(err, &encErr))
}

func TestDecodeURLPayloadMalformedDeflate(t *testing.T) {
	// Valid base64, but the bytes are not a DEFLATE stream
	encoded := base64.URLEncoding.EncodeToString([]byte("plain text, no compression"))

	_, err := DecodeURLPayload(encoded)

	var encErr *models.EncodingError
	require.Error(t, err)
	assert.True(t, errors.As(err, &encErr))
}

func TestDecodeURLPayloadRejectsInvalidUTF8(t *testing.T) {
	var buf bytes.Buffer
	fw, err := flate.NewWriter(&buf, flate.DefaultCompression)
	require.NoError(t, err)
	_, err = fw.Write([]byte{0xff, 0xfe, 0xfd})
	require.NoError(t, err)
	require.NoError(t, fw.Close())

	_, err = DecodeURLPayload(base64.URLEncoding.EncodeToString(buf.Bytes()))

	var encErr *models.EncodingError
	require.Error(t, err)
	assert.True(t, errors.As(err, &encErr))
}
