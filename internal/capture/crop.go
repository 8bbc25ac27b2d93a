package capture

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"
)

// Ear region crop: a vertical rectangle in the center of the raw frame,
// 60% of the width and 70% of the height.
const (
	cropWidthRatio  = 0.6
	cropHeightRatio = 0.7
	jpegQuality     = 90
)

// CropEarRegion cuts the centered ear region out of a raw frame and
// re-encodes it as JPEG. The cropped image is what gets validated and
// persisted, never the full frame.
func CropEarRegion(frame []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(frame), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode frame: %w", err)
	}

	bounds := img.Bounds()
	cropWidth := int(float64(bounds.Dx()) * cropWidthRatio)
	cropHeight := int(float64(bounds.Dy()) * cropHeightRatio)

	cropped := imaging.CropCenter(img, cropWidth, cropHeight)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, cropped, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, fmt.Errorf("failed to encode cropped frame: %w", err)
	}

	return buf.Bytes(), nil
}
