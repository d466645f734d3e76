package images

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

const (
	MaxUploadSize = 10 << 20 // 10 MiB
	MaxDimension  = 800
	JPEGQuality   = 85

	// limits on the source image, checked from the header before decoding
	MaxSourceDimension = 8000
	MaxSourcePixels    = 40_000_000

	picturesDir = "pictures"
)

var (
	ErrTooLarge        = errors.New("image exceeds the upload size limit")
	ErrUnsupportedType = errors.New("unsupported image type")
	ErrTooManyPixels   = errors.New("image dimensions exceed the limit")
)

var allowedTypes = []string{"image/jpeg", "image/png", "image/gif"}

type Processor struct {
	uploadDir string
}

func NewProcessor(uploadDir string) *Processor {
	return &Processor{uploadDir: uploadDir}
}

// Process validates the upload, applies EXIF orientation, fits it inside
// MaxDimension x MaxDimension and re-encodes it as JPEG.
func (p *Processor) Process(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(data) > MaxUploadSize {
		return nil, ErrTooLarge
	}

	mtype := mimetype.Detect(data)
	if !isAllowed(mtype) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, mtype.String())
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedType, err)
	}
	if cfg.Width > MaxSourceDimension || cfg.Height > MaxSourceDimension || cfg.Width*cfg.Height > MaxSourcePixels {
		return nil, fmt.Errorf("%w: %dx%d", ErrTooManyPixels, cfg.Width, cfg.Height)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() > MaxDimension || bounds.Dy() > MaxDimension {
		img = imaging.Fit(img, MaxDimension, MaxDimension, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(JPEGQuality)); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// isAllowed accepts the allowed types and their subtypes, e.g. APNG under PNG.
func isAllowed(mtype *mimetype.MIME) bool {
	for m := mtype; m != nil; m = m.Parent() {
		if lo.ContainsBy(allowedTypes, m.Is) {
			return true
		}
	}
	return false
}

// Store processes the upload and writes it below the upload directory. The returned
// path is relative to the upload directory.
func (p *Processor) Store(ownerID uuid.UUID, r io.Reader) (string, error) {
	data, err := p.Process(r)
	if err != nil {
		return "", err
	}

	dir := filepath.Join(p.uploadDir, picturesDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	name := fmt.Sprintf("%s-%s.jpg", ownerID, uuid.New())
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}

	return filepath.ToSlash(filepath.Join(picturesDir, name)), nil
}

// Remove deletes a previously stored picture. Missing files are ignored.
func (p *Processor) Remove(relPath string) error {
	if relPath == "" {
		return nil
	}
	clean := filepath.Clean(filepath.FromSlash(relPath))
	if filepath.IsAbs(clean) || strings.HasPrefix(clean, "..") {
		return fmt.Errorf("invalid picture path: %s", relPath)
	}
	err := os.Remove(filepath.Join(p.uploadDir, clean))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
