package utils

import (
	"bytes"
	"image/png"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/makiuchi-d/gozxing"
	gozxingqr "github.com/makiuchi-d/gozxing/qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scanQRCode(t *testing.T, dataURI string) string {
	t.Helper()

	raw, err := DecodePNGDataURI(dataURI)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)

	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	require.NoError(t, err)

	result, err := gozxingqr.NewQRCodeReader().Decode(bmp, nil)
	require.NoError(t, err)
	return result.GetText()
}

func TestVerificationURL(t *testing.T) {
	assert.Equal(t, "https://certs.example.com/verify/abc", VerificationURL("https://certs.example.com", "abc"))
	assert.Equal(t, "https://certs.example.com/verify/abc", VerificationURL("https://certs.example.com/", "abc"))
	assert.Equal(t, DefaultVerifyBaseURL+"/verify/abc", VerificationURL("", "abc"))
}

func TestGenerateQRCode_RoundTrip(t *testing.T) {
	base := "https://certs.example.com"
	vid := uuid.NewString()

	dataURI, url, err := GenerateQRCode(base, vid)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(dataURI, "data:image/png;base64,"))
	assert.Equal(t, base+"/verify/"+vid, url)
	assert.Equal(t, url, scanQRCode(t, dataURI))
}

func TestGenerateQRCode_ModuleSizeAndBorder(t *testing.T) {
	dataURI, _, err := GenerateQRCode("https://c.example", "x")
	require.NoError(t, err)

	raw, err := DecodePNGDataURI(dataURI)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)

	// Symbols are 17+4v modules wide, plus a 4-module border on each side.
	bounds := img.Bounds()
	require.Equal(t, bounds.Dx(), bounds.Dy())
	require.Zero(t, bounds.Dx()%qrPixelsPerModule)

	symbol := bounds.Dx()/qrPixelsPerModule - 8
	assert.GreaterOrEqual(t, symbol, 21)
	assert.Zero(t, (symbol-17)%4)

	// top-left pixel lies in the quiet zone
	r, g, b, _ := img.At(0, 0).RGBA()
	assert.Equal(t, uint32(0xffff), r&g&b)
}

func TestGenerateQRCode_NotCached(t *testing.T) {
	a, _, err := GenerateQRCode("https://c.example", "one")
	require.NoError(t, err)
	b, _, err := GenerateQRCode("https://c.example", "two")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestDecodePNGDataURI_RejectsOtherSchemes(t *testing.T) {
	_, err := DecodePNGDataURI("data:image/jpeg;base64,AAAA")
	assert.Error(t, err)
}

func TestNewIdentifier(t *testing.T) {
	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		id := NewIdentifier()
		_, err := uuid.Parse(id)
		require.NoError(t, err)
		_, dup := seen[id]
		require.False(t, dup)
		seen[id] = struct{}{}
	}
}
