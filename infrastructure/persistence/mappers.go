package persistence

import (
	"time"

	"github.com/helixml/mt2mw/domain/media"
)

// ImageMapper maps between media.Record and ImageModel.
type ImageMapper struct{}

// ToDomain converts an ImageModel to a media.Record.
func (m ImageMapper) ToDomain(e ImageModel) media.Record {
	var userID int64
	if e.UserID != nil {
		userID = *e.UserID
	}
	ts, err := time.Parse(timestampLayout, e.Timestamp)
	if err != nil {
		ts = time.Time{}
	}
	return media.ReconstructRecord(
		e.Name,
		e.Size,
		media.Dimensions{Width: e.Width, Height: e.Height, Bits: e.Bits},
		e.Metadata,
		media.Type(e.MediaType),
		e.MajorMIME,
		e.MinorMIME,
		e.Description,
		userID,
		e.UserText,
		ts,
		e.SHA1,
	)
}

// ToModel converts a media.Record to an ImageModel. A zero user id is stored
// as NULL.
func (m ImageMapper) ToModel(r media.Record) ImageModel {
	var userID *int64
	if id := r.UserID(); id != 0 {
		userID = &id
	}
	dims := r.Dimensions()
	return ImageModel{
		Name:        r.Name(),
		Size:        r.Size(),
		Width:       dims.Width,
		Height:      dims.Height,
		Metadata:    r.Metadata(),
		Bits:        dims.Bits,
		MediaType:   string(r.MediaType()),
		MajorMIME:   r.MajorMIME(),
		MinorMIME:   r.MinorMIME(),
		Description: r.Description(),
		UserID:      userID,
		UserText:    r.UserText(),
		Timestamp:   r.Timestamp().UTC().Format(timestampLayout),
		SHA1:        r.SHA1(),
	}
}
