package media

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"log"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/rwcarlsen/goexif/exif"
)

const (
	UploadJpegQuality   = 85
	UploadFileExtension = ".jpg"
)

// Processor normalizes an admin-supplied image before it is sent to the
// image host: EXIF orientation is applied, the image is shrunk so its
// longest side fits maxSize, and the result is re-encoded as JPEG. This
// bounds outbound payload size and strips rotation quirks from phone
// captures.
type Processor struct {
	maxSize int
}

func NewProcessor(maxSize int) *Processor {
	return &Processor{maxSize: maxSize}
}

// Prepare decodes fileData and returns a re-encoded JPEG reader ready
// for upload.
func (p *Processor) Prepare(fileData io.Reader) (io.Reader, error) {
	raw, err := io.ReadAll(fileData)
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded image: %w", err)
	}

	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to decode uploaded image: %w", err)
	}
	log.Printf("media: decoded upload (format: %s, %dx%d)", format, img.Bounds().Dx(), img.Bounds().Dy())

	img = applyOrientation(img, readOrientation(raw))

	bounds := img.Bounds()
	if bounds.Dx() > p.maxSize || bounds.Dy() > p.maxSize {
		// Fit only shrinks, it never upscales
		img = imaging.Fit(img, p.maxSize, p.maxSize, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(UploadJpegQuality)); err != nil {
		return nil, fmt.Errorf("failed to encode image for upload: %w", err)
	}
	return &buf, nil
}

// UploadFilename generates a collision-free filename for an outbound file.
func UploadFilename() string {
	return uuid.NewString() + UploadFileExtension
}

// readOrientation extracts the EXIF orientation tag, returning 1 (normal)
// when the data carries no usable EXIF block.
func readOrientation(raw []byte) int {
	exifData, err := exif.Decode(bytes.NewReader(raw))
	if err != nil {
		return 1
	}
	tag, err := exifData.Get(exif.Orientation)
	if err != nil || tag == nil {
		return 1
	}
	orientation, err := tag.Int(0)
	if err != nil {
		return 1
	}
	return orientation
}

// applyOrientation bakes the EXIF orientation into the pixels so the
// re-encoded JPEG renders upright everywhere.
func applyOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.Transpose(img)
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.Transverse(img)
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}
