package media

import "time"

// Dimensions are the pixel size and bit depth of a raster image.
// All zero for anything else.
type Dimensions struct {
	Width  int
	Height int
	Bits   int
}

// Record is one row of the target wiki's file table. The name is the key.
type Record struct {
	name        string
	size        int64
	dims        Dimensions
	metadata    string
	mediaType   Type
	majorMIME   string
	minorMIME   string
	description string
	userID      int64
	userText    string
	timestamp   time.Time
	sha1        string
}

// NewRecord creates a Record for a stored file, classifying it by MIME type.
func NewRecord(name string, size int64, mimeType, sha1 string, timestamp time.Time) Record {
	major, minor := SplitMIME(mimeType)
	return Record{
		name:      name,
		size:      size,
		mediaType: Classify(major + "/" + minor),
		majorMIME: major,
		minorMIME: minor,
		sha1:      sha1,
		timestamp: timestamp.UTC(),
	}
}

// ReconstructRecord recreates a Record from persistence.
func ReconstructRecord(
	name string,
	size int64,
	dims Dimensions,
	metadata string,
	mediaType Type,
	majorMIME string,
	minorMIME string,
	description string,
	userID int64,
	userText string,
	timestamp time.Time,
	sha1 string,
) Record {
	return Record{
		name:        name,
		size:        size,
		dims:        dims,
		metadata:    metadata,
		mediaType:   mediaType,
		majorMIME:   majorMIME,
		minorMIME:   minorMIME,
		description: description,
		userID:      userID,
		userText:    userText,
		timestamp:   timestamp,
		sha1:        sha1,
	}
}

// Name returns the file name, which is also the table key.
func (r Record) Name() string { return r.name }

// Size returns the byte size of the stored file.
func (r Record) Size() int64 { return r.size }

// Dimensions returns the image dimensions, zero for non-images.
func (r Record) Dimensions() Dimensions { return r.dims }

// Metadata returns the serialized metadata blob.
func (r Record) Metadata() string { return r.metadata }

// MediaType returns the coarse media classification.
func (r Record) MediaType() Type { return r.mediaType }

// MajorMIME returns the MIME major type, e.g. "image".
func (r Record) MajorMIME() string { return r.majorMIME }

// MinorMIME returns the MIME minor type, e.g. "png".
func (r Record) MinorMIME() string { return r.minorMIME }

// MIMEType returns the full MIME type.
func (r Record) MIMEType() string { return r.majorMIME + "/" + r.minorMIME }

// Description returns the file description.
func (r Record) Description() string { return r.description }

// UserID returns the id of the uploading user, 0 when anonymous.
func (r Record) UserID() int64 { return r.userID }

// UserText returns the display name of the uploading user.
func (r Record) UserText() string { return r.userText }

// Timestamp returns when the file was stored.
func (r Record) Timestamp() time.Time { return r.timestamp }

// SHA1 returns the base-36 content digest.
func (r Record) SHA1() string { return r.sha1 }

// WithDimensions returns a copy with the image dimensions set.
func (r Record) WithDimensions(dims Dimensions) Record {
	r.dims = dims
	return r
}

// WithDescription returns a copy with the description set.
func (r Record) WithDescription(description string) Record {
	r.description = description
	return r
}

// WithUploader returns a copy attributed to the given user.
func (r Record) WithUploader(id int64, name string) Record {
	r.userID = id
	r.userText = name
	return r
}
