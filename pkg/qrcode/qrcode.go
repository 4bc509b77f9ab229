// Package qrcode generates PromptPay payment QR images and decodes QR
// payloads out of submitted receipt photos.
package qrcode

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"time"

	pp "github.com/Frontware/promptpay"
	"github.com/makiuchi-d/gozxing"
	zxqrcode "github.com/makiuchi-d/gozxing/qrcode"
	"github.com/yeqown/go-qrcode/v2"
	"github.com/yeqown/go-qrcode/writer/standard"
)

// Generate renders a PromptPay QR for the given amount into dir and
// returns the image path. The caller removes the file when done.
func Generate(dir, promptPayID string, amount float64) (string, error) {
	payment := pp.PromptPay{PromptPayID: promptPayID, Amount: amount}
	payload, err := payment.Gen()
	if err != nil {
		return "", fmt.Errorf("error generating PromptPay data: %w", err)
	}

	qrc, err := qrcode.New(payload)
	if err != nil {
		return "", fmt.Errorf("error creating QR code: %w", err)
	}

	filename := filepath.Join(dir, fmt.Sprintf("qr_%s_%d.jpg", promptPayID, time.Now().UnixNano()))
	fileWriter, err := standard.New(filename)
	if err != nil {
		return "", fmt.Errorf("error creating file writer: %w", err)
	}

	if err = qrc.Save(fileWriter); err != nil {
		os.Remove(filename)
		return "", fmt.Errorf("error saving QR code: %w", err)
	}

	return filename, nil
}

// Remove deletes a generated QR image.
func Remove(filename string) error {
	return os.Remove(filename)
}

// DecodeFile extracts the QR payload from an image file, typically a
// bank-transfer slip. It returns an error when the image holds no
// readable QR code.
func DecodeFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("error opening image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return "", fmt.Errorf("error decoding image: %w", err)
	}

	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", fmt.Errorf("error preparing bitmap: %w", err)
	}

	result, err := zxqrcode.NewQRCodeReader().Decode(bmp, nil)
	if err != nil {
		return "", fmt.Errorf("no readable QR code: %w", err)
	}
	return result.GetText(), nil
}
