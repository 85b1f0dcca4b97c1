// Package ticket renders ticket codes as scannable QR images.
package ticket

import (
	"fmt"

	"github.com/skip2/go-qrcode"
)

const qrSize = 256

// QRRenderer encodes ticket codes as PNG QR images for attendee
// check-in.
type QRRenderer struct {
	level qrcode.RecoveryLevel
}

func NewQRRenderer() *QRRenderer {
	return &QRRenderer{level: qrcode.Medium}
}

// RenderPNG returns a PNG image encoding the given ticket code.
func (r *QRRenderer) RenderPNG(code string) ([]byte, error) {
	if code == "" {
		return nil, fmt.Errorf("ticket code is empty")
	}
	png, err := qrcode.Encode(code, r.level, qrSize)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	return png, nil
}
