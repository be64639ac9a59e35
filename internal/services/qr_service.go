package services

import (
	"github.com/skip2/go-qrcode"
)

// QRGenerator renders a PNG QR code for content.
type QRGenerator interface {
	PNG(content string) ([]byte, error)
}

type qrCodeGenerator struct {
	size  int
	level qrcode.RecoveryLevel
}

func NewQRGenerator() QRGenerator {
	return &qrCodeGenerator{size: 256, level: qrcode.Medium}
}

func (g *qrCodeGenerator) PNG(content string) ([]byte, error) {
	return qrcode.Encode(content, g.level, g.size)
}
