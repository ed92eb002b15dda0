package images

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"image"
	"image/color"
	_ "image/gif" // Register GIF decoder
	"image/jpeg"
	_ "image/png" // Register PNG decoder
	"io"
	"log/slog"
	"math"
	"path"
	"path/filepath"
	"strings"

	"github.com/bookblog/bookblog-server/internal/errors"
	"github.com/google/uuid"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	// MaxCoverDimension bounds both sides of a stored cover.
	MaxCoverDimension = 1024
	// CoverQuality is the JPEG quality covers are re-encoded at.
	CoverQuality = 85

	// defaultExt is used when the upload name has no extension.
	defaultExt = ".png"
)

// maxCoverPixels bounds the decoded size of an upload, checked from the
// header before any pixel data is allocated.
var maxCoverPixels = 40_000_000

// Cover describes a stored cover image.
type Cover struct {
	Name     string // file name inside the covers directory
	Path     string // "covers/<name>", the value stored on the book
	BlurHash string
	Width    int
	Height   int
}

// CoverProcessor normalizes uploaded images into stored covers.
type CoverProcessor struct {
	storage *Storage
	logger  *slog.Logger
}

// NewCoverProcessor creates a new CoverProcessor.
func NewCoverProcessor(storage *Storage, logger *slog.Logger) *CoverProcessor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &CoverProcessor{storage: storage, logger: logger}
}

// Storage returns the underlying cover storage.
func (p *CoverProcessor) Storage() *Storage { return p.storage }

// Process decodes r (JPEG, PNG, GIF or WebP), shrinks it to fit inside
// MaxCoverDimension square keeping aspect ratio, re-encodes it as JPEG and
// stores it under a fresh random name. The name keeps the lowercased
// extension of filename, or .png when it has none; the bytes are JPEG
// regardless. Undecodable input, or a header declaring more than
// maxCoverPixels pixels, is a validation error.
func (p *CoverProcessor) Process(ctx context.Context, filename string, r io.Reader) (*Cover, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read cover upload: %w", err)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Validationf("unsupported or corrupt image %q", filename).WithCause(err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width > maxCoverPixels/cfg.Height {
		return nil, errors.Validationf("image %q is too large: %dx%d", filename, cfg.Width, cfg.Height)
	}

	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Validationf("unsupported or corrupt image %q", filename).WithCause(err)
	}

	img := flatten(fit(src, MaxCoverDimension, draw.CatmullRom))

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: CoverQuality}); err != nil {
		return nil, fmt.Errorf("encode cover: %w", err)
	}

	name := NewCoverName(filename)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := p.storage.Save(name, buf.Bytes()); err != nil {
		return nil, errors.Storage("save cover", err)
	}

	hash, err := BlurHash(img)
	if err != nil {
		// Placeholder only; the cover itself is stored.
		p.logger.Warn("failed to compute cover blurhash", "name", name, "error", err)
	}

	bounds := img.Bounds()
	p.logger.Debug("cover saved",
		"name", name,
		"source_format", format,
		"width", bounds.Dx(),
		"height", bounds.Dy(),
		"size", buf.Len(),
	)

	return &Cover{
		Name:     name,
		Path:     RelPath(name),
		BlurHash: hash,
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
	}, nil
}

// NewCoverName returns "<uuid hex><ext>" where ext is the lowercased
// extension of the uploaded file name, defaulting to .png.
func NewCoverName(uploadName string) string {
	ext := strings.ToLower(filepath.Ext(uploadName))
	if ext == "" || ext == "." {
		ext = defaultExt
	}
	u := uuid.New()
	return hex.EncodeToString(u[:]) + ext
}

// RelPath returns the data-directory-relative path stored on a book.
func RelPath(name string) string {
	return path.Join("covers", name)
}

// NameFromPath extracts the cover file name from a stored cover path. It
// accepts "covers/x.jpg", legacy "data/covers/x.jpg" and bare "x.jpg".
func NameFromPath(coverPath string) string {
	if coverPath == "" {
		return ""
	}
	return path.Base(filepath.ToSlash(coverPath))
}

// fit scales img down so neither side exceeds maxDim. Images already
// inside the bound are returned unchanged; nothing is upscaled.
func fit(img image.Image, maxDim int, scaler draw.Scaler) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxDim && h <= maxDim {
		return img
	}

	scale := math.Min(float64(maxDim)/float64(w), float64(maxDim)/float64(h))
	dw := max(1, int(math.Round(float64(w)*scale)))
	dh := max(1, int(math.Round(float64(h)*scale)))

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	scaler.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

// flatten composites img onto an opaque white canvas so transparent
// regions do not turn black in the JPEG.
func flatten(img image.Image) image.Image {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Over)
	return dst
}
