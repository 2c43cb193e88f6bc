package ingest

import (
	"image"
	"image/color"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"io"
	"net/http"

	_ "golang.org/x/image/bmp"  // register decoder
	_ "golang.org/x/image/tiff" // register decoder
	_ "golang.org/x/image/webp" // register decoder

	"github.com/helixml/mt2mw/domain/media"
)

const sniffLen = 512

// probeDimensions reads the image header from r. Non-images return zero
// dimensions and no error.
func probeDimensions(r io.Reader) media.Dimensions {
	cfg, _, err := image.DecodeConfig(r)
	if err != nil {
		return media.Dimensions{}
	}
	return media.Dimensions{
		Width:  cfg.Width,
		Height: cfg.Height,
		Bits:   bitsPerChannel(cfg.ColorModel),
	}
}

func bitsPerChannel(m color.Model) int {
	switch m {
	case color.RGBA64Model, color.NRGBA64Model, color.Gray16Model, color.Alpha16Model:
		return 16
	default:
		return 8
	}
}

// detectMIME picks the reported type, then the extension, then content
// sniffing.
func detectMIME(reported, name string, head []byte) string {
	if reported != "" {
		return reported
	}
	if byName := media.TypeByName(name); byName != "" {
		return byName
	}
	if len(head) > sniffLen {
		head = head[:sniffLen]
	}
	return http.DetectContentType(head)
}
