package imageprocessor

import (
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/barasher/go-exiftool"
	"github.com/bep/imagemeta"

	"imagedetective/logging"
	"imagedetective/types"
)

var cameraTags = map[string]bool{
	"Make":     true,
	"Model":    true,
	"Software": true,
}

var metaFormats = map[string]imagemeta.ImageFormat{
	"jpeg": imagemeta.JPEG,
	"png":  imagemeta.PNG,
	"tiff": imagemeta.TIFF,
	"webp": imagemeta.WebP,
}

// readCameraTags returns "Make Model" and Software from EXIF. Missing or
// unparseable metadata yields empty strings.
func readCameraTags(r io.ReadSeeker, format string) (camera string, software string) {
	imageFormat, ok := metaFormats[format]
	if !ok {
		return "", ""
	}

	defer func() {
		if r := recover(); r != nil {
			logging.LogWarning("EXIF decoding panicked: %v", r)
			camera, software = "", ""
		}
	}()

	var maker, model string
	_, err := imagemeta.Decode(imagemeta.Options{
		R:           r,
		ImageFormat: imageFormat,
		Sources:     imagemeta.EXIF,
		ShouldHandleTag: func(ti imagemeta.TagInfo) bool {
			return cameraTags[ti.Tag]
		},
		HandleTag: func(ti imagemeta.TagInfo) error {
			s := strings.TrimSpace(fmt.Sprint(ti.Value))
			switch ti.Tag {
			case "Make":
				maker = s
			case "Model":
				model = s
			case "Software":
				software = s
			}
			return nil
		},
	})
	if err != nil {
		return "", ""
	}

	camera = strings.TrimSpace(maker + " " + model)
	return camera, software
}

// Check if exiftool is available on the system
func hasExiftool() bool {
	_, err := exec.LookPath("exiftool")
	return err == nil
}

// probeWithExiftool fills dimensions and format for files Go cannot decode.
// Color mode is left unknown.
func probeWithExiftool(path string, sig *types.ImageSignature) {
	if !hasExiftool() {
		return
	}

	et, err := exiftool.NewExiftool()
	if err != nil {
		logging.LogWarning("Failed to initialize exiftool: %v", err)
		return
	}
	defer et.Close()

	fileInfos := et.ExtractMetadata(path)
	if len(fileInfos) == 0 || fileInfos[0].Err != nil {
		return
	}
	fields := fileInfos[0]

	w, errW := fields.GetInt("ImageWidth")
	h, errH := fields.GetInt("ImageHeight")
	if errW != nil || errH != nil || w <= 0 || h <= 0 {
		return
	}
	sig.Width = types.Known(int(w))
	sig.Height = types.Known(int(h))

	if fileType, err := fields.GetString("FileType"); err == nil && fileType != "" {
		sig.Format = types.Known(strings.ToUpper(fileType))
	}
	logging.DebugLog("signature: exiftool probe for %s gave %dx%d", path, w, h)
}
