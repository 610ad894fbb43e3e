package utils

import (
	"bytes"
	"errors"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"mime/multipart"

	"github.com/nfnt/resize"
)

// ResizeProfileImage scales an uploaded avatar down so neither side
// exceeds maxDim, preserving aspect ratio. Images already within bounds
// are returned as decoded.
func ResizeProfileImage(file multipart.File, filename string, maxDim uint) (image.Image, error) {
	_, err := file.Seek(0, io.SeekStart)
	if err != nil {
		return nil, err
	}

	img, err := decodeImage(file, filename)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	width := uint(bounds.Dx())
	height := uint(bounds.Dy())

	if width <= maxDim && height <= maxDim {
		return img, nil
	}

	if width >= height {
		return resize.Resize(maxDim, 0, img, resize.Lanczos3), nil
	}
	return resize.Resize(0, maxDim, img, resize.Lanczos3), nil
}

// EncodeImage serializes an image back to bytes in the format implied by
// the filename extension.
func EncodeImage(img image.Image, filename string) (*bytes.Buffer, error) {
	buf := new(bytes.Buffer)

	switch GetFileExtension(filename) {
	case ".jpg", ".jpeg":
		err := jpeg.Encode(buf, img, &jpeg.Options{Quality: 85})
		return buf, err
	case ".png":
		err := png.Encode(buf, img)
		return buf, err
	case ".gif":
		err := gif.Encode(buf, img, nil)
		return buf, err
	default:
		return nil, errors.New("unsupported image format")
	}
}

func decodeImage(r io.Reader, filename string) (image.Image, error) {
	switch GetFileExtension(filename) {
	case ".jpg", ".jpeg":
		return jpeg.Decode(r)
	case ".png":
		return png.Decode(r)
	case ".gif":
		return gif.Decode(r)
	default:
		img, _, err := image.Decode(r)
		return img, err
	}
}
