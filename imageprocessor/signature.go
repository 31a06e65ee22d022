package imageprocessor

import (
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"imagedetective/logging"
	"imagedetective/types"
)

// SignatureOptions tunes ExtractSignature
type SignatureOptions struct {
	// ExiftoolFallback probes dimensions with exiftool when Go cannot decode
	// the header
	ExiftoolFallback bool
}

// ExtractSignature derives the signature of the image at path. It never
// fails: fields that cannot be determined are left unknown.
func ExtractSignature(path string, opts SignatureOptions) types.ImageSignature {
	var sig types.ImageSignature

	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		sig.ByteSize = types.Known(info.Size())
	}

	f, err := os.Open(path)
	if err != nil {
		logging.DebugLog("signature: cannot open %s: %v", path, err)
		return sig
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil || cfg.Width <= 0 || cfg.Height <= 0 {
		logging.DebugLog("signature: cannot decode header of %s: %v", path, err)
		if opts.ExiftoolFallback {
			probeWithExiftool(path, &sig)
		}
		return sig
	}

	sig.Width = types.Known(cfg.Width)
	sig.Height = types.Known(cfg.Height)
	sig.ColorMode = ClassifyColorModel(cfg.ColorModel)
	if format == "png" {
		if colorType, ok := pngColorType(f); ok {
			sig.ColorMode = ClassifyPNG(colorType, cfg.ColorModel)
		}
	}
	if format != "" {
		sig.Format = types.Known(strings.ToUpper(format))
	}

	if _, err := f.Seek(0, io.SeekStart); err == nil {
		sig.Camera, sig.Software = readCameraTags(f, format)
	}

	return sig
}

// PNG color types from the IHDR chunk
const (
	pngColorGray      = 0
	pngColorGrayAlpha = 4
)

// ClassifyPNG classifies a PNG by its IHDR color type. Gray+alpha decodes to
// an NRGBA model in Go but is still a gray image.
func ClassifyPNG(colorType byte, m color.Model) types.ColorMode {
	switch colorType {
	case pngColorGray, pngColorGrayAlpha:
		return types.ColorModeGray
	default:
		return ClassifyColorModel(m)
	}
}

// pngColorType reads the color type byte of the IHDR chunk, which always
// directly follows the 8-byte signature
func pngColorType(r io.ReadSeeker) (byte, bool) {
	var header [26]byte
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return 0, false
	}
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return 0, false
	}
	if string(header[12:16]) != "IHDR" {
		return 0, false
	}
	return header[25], true
}

// ClassifyColorModel collapses a pixel model into GRAY or COLOR
func ClassifyColorModel(m color.Model) types.ColorMode {
	switch m {
	case nil:
		return types.ColorModeUnknown
	case color.GrayModel, color.Gray16Model:
		return types.ColorModeGray
	default:
		return types.ColorModeColor
	}
}
