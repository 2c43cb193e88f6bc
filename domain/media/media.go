// Package media describes files as the target wiki stores them.
package media

import (
	"crypto/sha1"
	"fmt"
	"io"
	"math/big"
	"mime"
	"path/filepath"
	"strings"
)

// Type is the target wiki's coarse media classification.
type Type string

// Type values.
const (
	TypeUnknown    Type = "UNKNOWN"
	TypeBitmap     Type = "BITMAP"
	TypeDrawing    Type = "DRAWING"
	TypeAudio      Type = "AUDIO"
	TypeVideo      Type = "VIDEO"
	TypeMultimedia Type = "MULTIMEDIA"
	TypeOffice     Type = "OFFICE"
	TypeText       Type = "TEXT"
	TypeExecutable Type = "EXECUTABLE"
	TypeArchive    Type = "ARCHIVE"
)

// DefaultMIMEType is used when nothing better is known.
const DefaultMIMEType = "application/octet-stream"

var minorTypes = map[string]Type{
	"svg+xml":           TypeDrawing,
	"postscript":        TypeDrawing,
	"pdf":               TypeOffice,
	"msword":            TypeOffice,
	"vnd.ms-excel":      TypeOffice,
	"vnd.ms-powerpoint": TypeOffice,
	"rtf":               TypeOffice,
	"zip":               TypeArchive,
	"gzip":              TypeArchive,
	"x-gzip":            TypeArchive,
	"x-tar":             TypeArchive,
	"x-7z-compressed":   TypeArchive,
	"x-rar-compressed":  TypeArchive,
	"x-bzip2":           TypeArchive,
	"x-msdownload":      TypeExecutable,
	"x-executable":      TypeExecutable,
	"x-sh":              TypeExecutable,
	"x-shockwave-flash": TypeMultimedia,
	"ogg":               TypeMultimedia,
	"json":              TypeText,
	"xml":               TypeText,
	"javascript":        TypeText,
	"x-javascript":      TypeText,
}

// Classify maps a MIME type to the target wiki's media type.
func Classify(mimeType string) Type {
	major, minor := SplitMIME(mimeType)
	switch major {
	case "image":
		if minor == "svg+xml" {
			return TypeDrawing
		}
		return TypeBitmap
	case "audio":
		return TypeAudio
	case "video":
		return TypeVideo
	case "text":
		return TypeText
	case "application":
		if t, ok := minorTypes[minor]; ok {
			return t
		}
		if strings.HasPrefix(minor, "vnd.openxmlformats-officedocument.") ||
			strings.HasPrefix(minor, "vnd.oasis.opendocument.") {
			return TypeOffice
		}
	}
	return TypeUnknown
}

// SplitMIME splits a MIME type into its major and minor parts, dropping any
// parameters. An unparsable value yields the default type's parts.
func SplitMIME(mimeType string) (string, string) {
	mediaType, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		mediaType = DefaultMIMEType
	}
	major, minor, ok := strings.Cut(mediaType, "/")
	if !ok {
		return "application", "octet-stream"
	}
	return major, minor
}

// TypeByName guesses a MIME type from a filename extension.
func TypeByName(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return ""
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return ""
}

const sha1Base36Len = 31

// SHA1Base36 returns the content digest in the target wiki's format: the
// SHA-1 as a base-36 number, zero padded to 31 digits.
func SHA1Base36(sum []byte) string {
	s := new(big.Int).SetBytes(sum).Text(36)
	if len(s) < sha1Base36Len {
		s = strings.Repeat("0", sha1Base36Len-len(s)) + s
	}
	return s
}

// DigestReader returns the base-36 SHA-1 of everything read from r.
func DigestReader(r io.Reader) (string, error) {
	h := sha1.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", fmt.Errorf("digest: %w", err)
	}
	return SHA1Base36(h.Sum(nil)), nil
}
