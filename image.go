package physique

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"golang.org/x/sync/errgroup"
)

const (
	MinImages    = 1
	MaxImages    = 3
	MaxImageSize = 10 << 20
)

var (
	ErrNoImages         = errors.New("please upload at least one photo")
	ErrTooManyImages    = fmt.Errorf("no more than %d photos may be analyzed at once", MaxImages)
	ErrUnsupportedImage = errors.New("photos must be JPEG or PNG images")
)

var extensions = map[string]string{
	".jpeg": "image/jpeg",
	".jpg":  "image/jpeg",
	".png":  "image/png",
}

// Image is an uploaded photo
type Image struct {
	Name     string
	MIMEType string
	Data     []byte
}

func (i *Image) part() genai.Part {
	return genai.Blob{MIMEType: i.MIMEType, Data: i.Data}
}

// CheckImages enforces the number and type of photos for one analysis
func CheckImages(images []*Image) error {
	switch {
	case len(images) < MinImages:
		return ErrNoImages
	case len(images) > MaxImages:
		return ErrTooManyImages
	}
	for _, img := range images {
		if img.MIMEType != "image/jpeg" && img.MIMEType != "image/png" {
			return fmt.Errorf("%s: %w", img.Name, ErrUnsupportedImage)
		}
	}
	return nil
}

func mimeType(name, header string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(name))
	want, ok := extensions[ext]
	if !ok {
		return "", fmt.Errorf("%s: %w", name, ErrUnsupportedImage)
	}
	if header != "" && header != "application/octet-stream" && header != want {
		return "", fmt.Errorf("%s: %w", name, ErrUnsupportedImage)
	}
	if sniffed := http.DetectContentType(data); sniffed != want {
		return "", fmt.Errorf("%s: %w", name, ErrUnsupportedImage)
	}
	return want, nil
}

func readImage(fh *multipart.FileHeader) (*Image, error) {
	if fh.Size > MaxImageSize {
		return nil, validationError("%s exceeds the %d MiB limit", fh.Filename, MaxImageSize>>20)
	}
	fp, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer fp.Close()
	data, err := io.ReadAll(io.LimitReader(fp, MaxImageSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxImageSize {
		return nil, validationError("%s exceeds the %d MiB limit", fh.Filename, MaxImageSize>>20)
	}
	typ, err := mimeType(fh.Filename, fh.Header.Get("Content-Type"), data)
	if err != nil {
		return nil, err
	}
	return &Image{Name: fh.Filename, MIMEType: typ, Data: data}, nil
}

// ReadImages loads uploaded photos, preserving their order
func ReadImages(ctx context.Context, files []*multipart.FileHeader) ([]*Image, error) {
	switch {
	case len(files) < MinImages:
		return nil, ErrNoImages
	case len(files) > MaxImages:
		return nil, ErrTooManyImages
	}
	images := make([]*Image, len(files))
	grp, ctx := errgroup.WithContext(ctx)
	for i, fh := range files {
		i, fh := i, fh
		grp.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			img, err := readImage(fh)
			if err != nil {
				return err
			}
			images[i] = img
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}
	return images, nil
}
