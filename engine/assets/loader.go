package assets

import (
	"encoding/binary"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	xdraw "golang.org/x/image/draw"
)

// spirvMagic is the first word of every SPIR-V module, little-endian.
const spirvMagic = 0x07230203

// maxImageDim bounds texture uploads; larger images are scaled down
// preserving aspect ratio.
const maxImageDim = 4096

/** @brief Tightly packed RGBA pixels ready for a texture upload. */
type ImageData struct {
	Pixels       []byte
	Width        uint32
	Height       uint32
	ChannelCount uint32
}

/**
 * @brief Reads a compiled SPIR-V module, validating its word alignment and
 * magic number before handing the bytes to the backend.
 */
func LoadSPIRV(path string) ([]byte, error) {
	code, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(code) < 4 || len(code)%4 != 0 {
		return nil, fmt.Errorf("'%s' is not a SPIR-V module: %d bytes is not a whole word count", path, len(code))
	}
	if magic := binary.LittleEndian.Uint32(code); magic != spirvMagic {
		return nil, fmt.Errorf("'%s' is not a SPIR-V module: magic word %#08x", path, magic)
	}
	return code, nil
}

/**
 * @brief Decodes a PNG or JPEG file into tightly packed RGBA pixels,
 * scaling down anything larger than the engine's texture bound.
 */
func LoadImageRGBA(path string) (*ImageData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding image '%s': %w", path, err)
	}

	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("image '%s' has no pixels", path)
	}
	if width > maxImageDim || height > maxImageDim {
		scale := float64(maxImageDim) / float64(max(width, height))
		width = int(float64(width) * scale)
		height = int(float64(height) * scale)
	}

	rgba := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.ApproxBiLinear.Scale(rgba, rgba.Bounds(), src, bounds, xdraw.Src, nil)

	return &ImageData{
		Pixels:       rgba.Pix,
		Width:        uint32(width),
		Height:       uint32(height),
		ChannelCount: 4,
	}, nil
}
