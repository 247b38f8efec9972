package folio

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/image/draw"
)

const (
	maxImageWidth  = 1600
	jpegQuality    = 85
	maxUploadSize  = 10 << 20 // 10MB
	maxImagePixels = 50_000_000
)

var (
	errImageTooLarge = errors.New("image exceeds the 10MB upload limit")
	errImagePixels   = errors.New("image dimensions are too large")
)

// processedImage is an upload ready to forward to the content API.
type processedImage struct {
	Filename string
	Width    int
	Height   int
	Data     []byte
}

// processImage decodes a JPEG, PNG or GIF from src, downscales it to at most
// maxImageWidth wide and re-encodes it as JPEG. The filename is derived from
// originalName plus a random suffix so repeated uploads never collide.
func processImage(src io.Reader, originalName string) (processedImage, error) {
	raw, err := io.ReadAll(io.LimitReader(src, maxUploadSize+1))
	if err != nil {
		return processedImage{}, fmt.Errorf("read image: %w", err)
	}
	if len(raw) > maxUploadSize {
		return processedImage{}, errImageTooLarge
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return processedImage{}, fmt.Errorf("decode image: %w", err)
	}
	if cfg.Width*cfg.Height > maxImagePixels {
		return processedImage{}, errImagePixels
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return processedImage{}, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > maxImageWidth {
		newH := h * maxImageWidth / w
		if newH < 1 {
			newH = 1
		}
		dst := image.NewRGBA(image.Rect(0, 0, maxImageWidth, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
		w, h = maxImageWidth, newH
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return processedImage{}, fmt.Errorf("encode jpeg: %w", err)
	}

	return processedImage{
		Filename: uploadFilename(originalName),
		Width:    w,
		Height:   h,
		Data:     buf.Bytes(),
	}, nil
}

// uploadFilename turns "Mi Foto.PNG" into "mi-foto-1a2b3c4d.jpg".
func uploadFilename(originalName string) string {
	base := strings.TrimSuffix(filepath.Base(originalName), filepath.Ext(originalName))
	slug := Slugify(base)
	if slug == "" {
		slug = "foto"
	}
	return slug + "-" + uuid.NewString()[:8] + ".jpg"
}
