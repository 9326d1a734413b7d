// imageprocessor.go - Image preprocessing for better request-line extraction

package processor

import (
	"bytes"
	"fmt"
	"image/jpeg"
	"image/png"

	"github.com/disintegration/imaging"
	"github.com/teklifware/product_match_api/configs"
)

// PreprocessImageBytes enhances an uploaded request-list photo before it is
// sent to the vision model. Phone photos of handwritten or printed request
// lists benefit from sharpening and a grayscale contrast boost; clean
// screenshots pass through nearly unchanged visually.
// Returns the processed image data and mime type.
func PreprocessImageBytes(imageData []byte, mimeType string) ([]byte, string, error) {
	if !configs.ENABLE_IMAGE_PREPROCESSING {
		return imageData, mimeType, nil
	}

	img, err := imaging.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}

	// Step 1: Resize if too large (helps with processing speed and API limits)
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	maxDimension := configs.MAX_IMAGE_DIMENSION

	if width > maxDimension || height > maxDimension {
		if width > height {
			img = imaging.Resize(img, maxDimension, 0, imaging.Lanczos)
		} else {
			img = imaging.Resize(img, 0, maxDimension, imaging.Lanczos)
		}
	}

	// Step 2: Enhance sharpness (helps with blurry photos)
	img = imaging.Sharpen(img, 2.5)

	// Step 3: Increase contrast (makes text stand out)
	img = imaging.AdjustContrast(img, 40)

	// Step 4: Convert to grayscale (text recognition does not need color)
	img = imaging.Grayscale(img)

	// Step 5: Apply additional contrast after grayscale
	img = imaging.AdjustContrast(img, 30)

	// Encode the processed image
	var buf bytes.Buffer
	switch mimeType {
	case "image/png":
		err = png.Encode(&buf, img)
	default:
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90})
		mimeType = "image/jpeg"
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode processed image: %w", err)
	}

	return buf.Bytes(), mimeType, nil
}
