package media

import (
	"crypto/sha1"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		mime string
		want Type
	}{
		{"image/png", TypeBitmap},
		{"image/jpeg", TypeBitmap},
		{"image/svg+xml", TypeDrawing},
		{"audio/mpeg", TypeAudio},
		{"video/mp4", TypeVideo},
		{"text/plain; charset=utf-8", TypeText},
		{"application/pdf", TypeOffice},
		{"application/vnd.openxmlformats-officedocument.wordprocessingml.document", TypeOffice},
		{"application/zip", TypeArchive},
		{"application/x-msdownload", TypeExecutable},
		{"application/x-shockwave-flash", TypeMultimedia},
		{"application/octet-stream", TypeUnknown},
		{"garbage", TypeUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.mime, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.mime))
		})
	}
}

func TestSplitMIME(t *testing.T) {
	major, minor := SplitMIME("text/html; charset=UTF-8")
	assert.Equal(t, "text", major)
	assert.Equal(t, "html", minor)

	major, minor = SplitMIME("")
	assert.Equal(t, "application", major)
	assert.Equal(t, "octet-stream", minor)
}

func TestTypeByName(t *testing.T) {
	assert.Equal(t, "image/png", TypeByName("logo.PNG"))
	assert.Equal(t, "", TypeByName("README"))
}

func TestSHA1Base36(t *testing.T) {
	// Reference value computed by MediaWiki for an empty file.
	sum := sha1.Sum(nil)
	assert.Equal(t, "phoiac9h4m842xq45sp7s6u21eteeq1", SHA1Base36(sum[:]))

	zero := SHA1Base36(make([]byte, 20))
	assert.Len(t, zero, 31)
	assert.Equal(t, strings.Repeat("0", 31), zero)
}

func TestDigestReader(t *testing.T) {
	got, err := DigestReader(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, "phoiac9h4m842xq45sp7s6u21eteeq1", got)
}

func TestNewRecord(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600))
	r := NewRecord("logo.png", 2048, "image/png", "abc", ts).
		WithDimensions(Dimensions{Width: 64, Height: 32, Bits: 8}).
		WithDescription("company logo").
		WithUploader(7, "Migrator")

	assert.Equal(t, "logo.png", r.Name())
	assert.Equal(t, int64(2048), r.Size())
	assert.Equal(t, TypeBitmap, r.MediaType())
	assert.Equal(t, "image", r.MajorMIME())
	assert.Equal(t, "png", r.MinorMIME())
	assert.Equal(t, "image/png", r.MIMEType())
	assert.Equal(t, 64, r.Dimensions().Width)
	assert.Equal(t, "company logo", r.Description())
	assert.Equal(t, int64(7), r.UserID())
	assert.Equal(t, "Migrator", r.UserText())
	assert.Equal(t, time.UTC, r.Timestamp().Location())
}
