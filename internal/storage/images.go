// Package storage writes uploaded images under the upload directory with
// random file names, scaled down to fit a bounding box.
package storage

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/image/draw"
)

const (
	ProfileDir = "profile_pics"
	MediaDir   = "media"

	ThumbnailSize = 125  // profile pictures fit in 125x125
	MediaMaxSize  = 1024 // restaurant photos fit in 1024x1024

	// MaxPixels caps the decoded size of an upload.  A small compressed
	// file can declare huge dimensions, so the header is checked before
	// any pixel is decoded.
	MaxPixels = 40_000_000
)

// ErrUnsupportedImage is returned for uploads that are not JPEG, PNG or GIF.
var ErrUnsupportedImage = errors.New("unsupported image format")

// Images saves uploads below Root.
type Images struct {
	Root string
}

func NewImages(root string) *Images { return &Images{Root: root} }

// Save decodes r, shrinks it to fit size x size keeping the aspect ratio and
// writes it to Root/dir under a random name with the original extension.
// It returns the stored file name.
func (s *Images) Save(dir, original string, r io.Reader, size int) (string, error) {
	var head bytes.Buffer
	cfg, _, err := image.DecodeConfig(io.TeeReader(r, &head))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return "", fmt.Errorf("%w: %dx%d exceeds the %d pixel limit", ErrUnsupportedImage, cfg.Width, cfg.Height, MaxPixels)
	}
	src, format, err := image.Decode(io.MultiReader(&head, r))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	ext := strings.ToLower(filepath.Ext(original))
	if ext == "" {
		ext = "." + format
	}
	name := strings.ReplaceAll(uuid.NewString(), "-", "")[:16] + ext

	target := filepath.Join(s.Root, dir)
	if err := os.MkdirAll(target, 0o755); err != nil {
		return "", err
	}
	f, err := os.Create(filepath.Join(target, name))
	if err != nil {
		return "", err
	}
	img := Fit(src, size)
	switch format {
	case "png":
		err = png.Encode(f, img)
	case "gif":
		err = gif.Encode(f, img, nil)
	default:
		err = jpeg.Encode(f, img, &jpeg.Options{Quality: 90})
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(filepath.Join(target, name))
		return "", err
	}
	return name, nil
}

// Remove deletes a stored file; a missing file is not an error.
func (s *Images) Remove(dir, name string) error {
	if name == "" || name != filepath.Base(name) {
		return nil
	}
	err := os.Remove(filepath.Join(s.Root, dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// Fit scales src down so neither side exceeds size.  Smaller images are
// returned unchanged.
func Fit(src image.Image, size int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= size && h <= size {
		return src
	}
	if w >= h {
		h = h * size / w
		w = size
	} else {
		w = w * size / h
		h = size
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}
