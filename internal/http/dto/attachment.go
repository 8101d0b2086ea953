package dto

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"fritakagp.app/backend/internal/service"
)

const MaxAttachmentSize = 10 << 20

var (
	ErrUnsupportedFileType = errors.New("unsupported attachment type")
	ErrAttachmentTooLarge  = errors.New("attachment exceeds 10 MB")
	ErrMalformedAttachment = errors.New("attachment is not valid base64")
)

var fileTypes = map[string]string{
	"application/pdf": "pdf",
	"image/png":       "png",
	"image/jpeg":      "jpg",
}

// DecodeAttachment parses a "data:<mime>;base64,<content>" string. A bare
// base64 string is treated as a PDF. Empty input means no attachment.
func DecodeAttachment(s string) (*service.Attachment, error) {
	if s == "" {
		return nil, nil
	}

	fileType := "pdf"
	encoded := s
	if rest, ok := strings.CutPrefix(s, "data:"); ok {
		header, data, found := strings.Cut(rest, ",")
		if !found {
			return nil, ErrMalformedAttachment
		}
		mime, isBase64 := strings.CutSuffix(header, ";base64")
		if !isBase64 {
			return nil, ErrMalformedAttachment
		}
		ft, ok := fileTypes[mime]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedFileType, mime)
		}
		fileType, encoded = ft, data
	}

	if base64.StdEncoding.DecodedLen(len(encoded)) > MaxAttachmentSize+3 {
		return nil, ErrAttachmentTooLarge
	}
	content, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, ErrMalformedAttachment
	}
	if len(content) > MaxAttachmentSize {
		return nil, ErrAttachmentTooLarge
	}
	return &service.Attachment{Content: content, FileType: fileType}, nil
}
