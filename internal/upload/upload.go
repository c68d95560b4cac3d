// Package upload prepares product images before they are forwarded to the
// backend.
package upload

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/nfnt/resize"

	"github.com/omerbag-9/CarMate-AdminPanel/internal/api"
)

const (
	// MaxWidth is the widest image sent to the backend.
	MaxWidth = 800
	// Quality of the re-encoded JPEG.
	Quality = 80
)

var ErrUnsupportedFormat = errors.New("unsupported image format, only PNG, JPG and JPEG are allowed")

// Prepare decodes an uploaded PNG or JPEG, shrinks it to MaxWidth keeping
// its aspect ratio, and re-encodes it as a JPEG with a fresh name.
func Prepare(file io.Reader, filename string) (api.File, error) {
	var (
		img image.Image
		err error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png":
		img, err = png.Decode(file)
	case ".jpg", ".jpeg":
		img, err = jpeg.Decode(file)
	default:
		return api.File{}, ErrUnsupportedFormat
	}
	if err != nil {
		return api.File{}, fmt.Errorf("decode %s: %w", filename, err)
	}

	if img.Bounds().Dx() > MaxWidth {
		img = resize.Resize(MaxWidth, 0, img, resize.Lanczos3)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: Quality}); err != nil {
		return api.File{}, fmt.Errorf("encode %s: %w", filename, err)
	}
	return api.File{
		Name:        uuid.New().String() + ".jpg",
		ContentType: "image/jpeg",
		Data:        buf.Bytes(),
	}, nil
}

// FromForm prepares the single file under key. It returns nil, nil when
// the field was left empty.
func FromForm(r *http.Request, key string) (*api.File, error) {
	file, header, err := r.FormFile(key)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	f, err := Prepare(file, header.Filename)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// AllFromForm prepares every file under key, in submission order.
func AllFromForm(r *http.Request, key string) ([]api.File, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	var out []api.File
	for _, header := range r.MultipartForm.File[key] {
		f, err := prepareHeader(header)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

func prepareHeader(header *multipart.FileHeader) (api.File, error) {
	file, err := header.Open()
	if err != nil {
		return api.File{}, err
	}
	defer file.Close()
	return Prepare(file, header.Filename)
}
