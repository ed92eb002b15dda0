package images

import (
	"fmt"
	"image"
	"os"

	"github.com/bbrks/go-blurhash"
	"golang.org/x/image/draw"
)

// blurHashSize bounds the thumbnail BlurHash is computed from. The placeholder
// is low resolution anyway and 64px keeps encoding in the millisecond range.
const blurHashSize = 64

// BlurHash encodes img with 4x3 components (~20-30 chars).
func BlurHash(img image.Image) (string, error) {
	hash, err := blurhash.Encode(4, 3, fit(img, blurHashSize, draw.ApproxBiLinear))
	if err != nil {
		return "", fmt.Errorf("encode blurhash: %w", err)
	}
	return hash, nil
}

// ComputeBlurHash generates a BlurHash string from an image file.
func ComputeBlurHash(imagePath string) (string, error) {
	file, err := os.Open(imagePath) //#nosec G304 -- path comes from cover storage
	if err != nil {
		return "", fmt.Errorf("open image: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}
	return BlurHash(img)
}
