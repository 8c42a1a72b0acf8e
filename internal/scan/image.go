// ABOUTME: Reads a QR code or retail barcode out of an uploaded image
// ABOUTME: Uses gozxing readers for QR, EAN-13, UPC-A and EAN-8

package scan

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"io"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/oned"
	"github.com/makiuchi-d/gozxing/qrcode"
)

// ErrNoCode is returned when no supported symbol is found in an image.
var ErrNoCode = errors.New("no barcode or QR code found in image")

// DecodeImage returns the text of the first symbol found in the image
// read from r. Retail barcodes are tried before QR codes.
func DecodeImage(r io.Reader) (string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return "", fmt.Errorf("decoding image: %w", err)
	}

	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", fmt.Errorf("preparing %s image: %w", format, err)
	}

	hints := map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_TRY_HARDER: true,
	}
	readers := []gozxing.Reader{
		oned.NewEAN13Reader(),
		oned.NewUPCAReader(),
		oned.NewEAN8Reader(),
		qrcode.NewQRCodeReader(),
	}
	for _, reader := range readers {
		result, err := reader.Decode(bmp, hints)
		if err == nil {
			return result.GetText(), nil
		}
	}
	return "", ErrNoCode
}
