package storage

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngOf(t *testing.T, w, h int) *bytes.Buffer {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return &buf
}

func TestFit_KeepsAspectRatio(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 500, 250))
	b := Fit(img, ThumbnailSize).Bounds()
	assert.Equal(t, 125, b.Dx())
	assert.Equal(t, 62, b.Dy())

	tall := image.NewRGBA(image.Rect(0, 0, 100, 400))
	b = Fit(tall, ThumbnailSize).Bounds()
	assert.Equal(t, 31, b.Dx())
	assert.Equal(t, 125, b.Dy())

	small := image.NewRGBA(image.Rect(0, 0, 40, 30))
	assert.Same(t, small, Fit(small, ThumbnailSize))
}

func TestImages_SaveWritesThumbnail(t *testing.T) {
	root := t.TempDir()
	store := NewImages(root)

	name, err := store.Save(ProfileDir, "me.PNG", pngOf(t, 300, 300), ThumbnailSize)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(name, ".png"))
	assert.Len(t, name, 16+len(".png"))

	f, err := os.Open(filepath.Join(root, ProfileDir, name))
	require.NoError(t, err)
	defer f.Close()
	cfg, format, err := image.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 125, cfg.Width)
	assert.Equal(t, 125, cfg.Height)

	other, err := store.Save(ProfileDir, "me.png", pngOf(t, 10, 10), ThumbnailSize)
	require.NoError(t, err)
	assert.NotEqual(t, name, other)

	require.NoError(t, store.Remove(ProfileDir, other))
	require.NoError(t, store.Remove(ProfileDir, other))
	_, err = os.Stat(filepath.Join(root, ProfileDir, other))
	assert.True(t, os.IsNotExist(err))
}

func TestImages_SaveRejectsNonImages(t *testing.T) {
	store := NewImages(t.TempDir())
	_, err := store.Save(MediaDir, "notes.txt", strings.NewReader("hello"), MediaMaxSize)
	assert.ErrorIs(t, err, ErrUnsupportedImage)
}

// grayPNG streams a valid all-black grayscale PNG of w x h pixels.  The
// rows compress to almost nothing, so the file stays small whatever its
// dimensions.
func grayPNG(t *testing.T, w, h int) *bytes.Buffer {
	t.Helper()
	var out bytes.Buffer
	out.WriteString("\x89PNG\r\n\x1a\n")
	chunk := func(typ string, data []byte) {
		var n [4]byte
		binary.BigEndian.PutUint32(n[:], uint32(len(data)))
		out.Write(n[:])
		crc := crc32.NewIEEE()
		crc.Write([]byte(typ))
		crc.Write(data)
		out.WriteString(typ)
		out.Write(data)
		binary.BigEndian.PutUint32(n[:], crc.Sum32())
		out.Write(n[:])
	}
	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], uint32(w))
	binary.BigEndian.PutUint32(ihdr[4:8], uint32(h))
	ihdr[8] = 8 // bit depth, color type 0 (gray)
	chunk("IHDR", ihdr)

	var idat bytes.Buffer
	zw, err := zlib.NewWriterLevel(&idat, zlib.BestSpeed)
	require.NoError(t, err)
	row := make([]byte, 1+w) // filter byte + pixels
	for y := 0; y < h; y++ {
		_, err := zw.Write(row)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	chunk("IDAT", idat.Bytes())
	chunk("IEND", nil)
	return &out
}

func TestImages_SaveRejectsOversizedDimensions(t *testing.T) {
	root := t.TempDir()
	store := NewImages(root)

	bomb := grayPNG(t, 7000, 7000)
	require.Less(t, bomb.Len(), 1<<20, "fixture should be a small upload")

	_, err := store.Save(MediaDir, "huge.png", bomb, MediaMaxSize)
	assert.ErrorIs(t, err, ErrUnsupportedImage)
	assert.Contains(t, err.Error(), "7000x7000")
	_, statErr := os.Stat(filepath.Join(root, MediaDir))
	assert.True(t, os.IsNotExist(statErr), "nothing is written for a rejected upload")

	name, err := store.Save(MediaDir, "ok.png", grayPNG(t, 2000, 1000), MediaMaxSize)
	require.NoError(t, err)
	f, err := os.Open(filepath.Join(root, MediaDir, name))
	require.NoError(t, err)
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 1024, cfg.Width)
	assert.Equal(t, 512, cfg.Height)
}
