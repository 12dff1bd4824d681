package validate

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// MaxFileSize caps every upload at 10 MiB.
const MaxFileSize = 10 << 20

// FileRef is the metadata of an uploaded file. Content is never inspected.
type FileRef struct {
	Name string `json:"name"`
	MIME string `json:"mime"`
	Size int64  `json:"size"`
}

type FileKind int

const (
	// KindDocument accepts images and PDF scans.
	KindDocument FileKind = iota
	// KindSelfie accepts images only.
	KindSelfie
)

var imageTypes = []string{"image/jpeg", "image/jpg", "image/png"}

func (k FileKind) allowed(mime string) bool {
	for _, t := range imageTypes {
		if mime == t {
			return true
		}
	}
	return k == KindDocument && mime == "application/pdf"
}

// File checks an optional upload. A nil ref only fails when required.
func File(label string, ref *FileRef, kind FileKind, required bool) error {
	if ref == nil {
		if required {
			return fmt.Errorf("%s is required", label)
		}
		return nil
	}

	mime, _, _ := strings.Cut(strings.ToLower(strings.TrimSpace(ref.MIME)), ";")
	if !kind.allowed(strings.TrimSpace(mime)) {
		if kind == KindSelfie {
			return fmt.Errorf("%s must be a JPEG or PNG image", label)
		}
		return fmt.Errorf("%s must be a JPEG, PNG or PDF file", label)
	}
	if ref.Size > MaxFileSize {
		return fmt.Errorf("%s must be smaller than 10MB", label)
	}
	return nil
}

// SniffFile builds a FileRef for a local file, detecting the MIME type from
// its leading bytes rather than trusting the extension.
func SniffFile(path string) (*FileRef, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return nil, fmt.Errorf("detect mime type: %w", err)
	}

	return &FileRef{
		Name: filepath.Base(path),
		MIME: mtype.String(),
		Size: info.Size(),
	}, nil
}
