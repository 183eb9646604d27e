// Package dataurl converts between raw image bytes and base64 data URLs
// ("data:<mime>;base64,<payload>"), the inline form images travel in.
package dataurl

import (
	"encoding/base64"
	"errors"
	"strings"
)

var ErrInvalid = errors.New("invalid data URL")

func Encode(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// Decode splits a base64 data URL into its MIME type and payload.
func Decode(s string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return "", nil, ErrInvalid
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, ErrInvalid
	}
	mimeType, ok := strings.CutSuffix(meta, ";base64")
	if !ok || mimeType == "" {
		return "", nil, ErrInvalid
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, ErrInvalid
	}
	return mimeType, data, nil
}

// MimeType returns the MIME type of a data URL, or fallback when s is not
// one.
func MimeType(s, fallback string) string {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return fallback
	}
	meta, _, ok := strings.Cut(rest, ",")
	if !ok {
		return fallback
	}
	if m, ok := strings.CutSuffix(meta, ";base64"); ok && m != "" {
		return m
	}
	return fallback
}
