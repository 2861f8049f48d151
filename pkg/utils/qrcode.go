package utils

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

const (
	// DefaultVerifyBaseURL is used when no verification base URL is configured.
	DefaultVerifyBaseURL = "http://localhost:3000"

	qrPixelsPerModule = 10
	pngDataURIPrefix  = "data:image/png;base64,"
)

// VerificationURL builds the public link a certificate's QR code points to.
func VerificationURL(baseURL, verificationID string) string {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultVerifyBaseURL
	}
	return baseURL + "/verify/" + verificationID
}

// GenerateQRCode encodes the verification URL for verificationID as a PNG
// data URI. It returns the data URI and the URL that was encoded.
//
// The code uses low error correction, 10px modules and the standard
// 4-module quiet zone.
func GenerateQRCode(baseURL, verificationID string) (string, string, error) {
	url := VerificationURL(baseURL, verificationID)

	q, err := qrcode.New(url, qrcode.Low)
	if err != nil {
		return "", "", fmt.Errorf("encode qr code: %w", err)
	}

	png, err := q.PNG(-qrPixelsPerModule)
	if err != nil {
		return "", "", fmt.Errorf("render qr code: %w", err)
	}

	return pngDataURIPrefix + base64.StdEncoding.EncodeToString(png), url, nil
}

// DecodePNGDataURI returns the raw PNG bytes of a data URI produced by GenerateQRCode.
func DecodePNGDataURI(dataURI string) ([]byte, error) {
	payload, ok := strings.CutPrefix(dataURI, pngDataURIPrefix)
	if !ok {
		return nil, errors.New("not a png data uri")
	}
	return base64.StdEncoding.DecodeString(payload)
}
