// Package persistence stores file records in the target wiki's database.
package persistence

// DefaultImageTable is the name of the target wiki's file table.
const DefaultImageTable = "image"

// timestampLayout is the target wiki's 14 digit timestamp format.
const timestampLayout = "20060102150405"

// ImageModel is a row of the target wiki's file table.
type ImageModel struct {
	Name        string `gorm:"column:img_name;primaryKey;size:255"`
	Size        int64  `gorm:"column:img_size;not null;default:0"`
	Width       int    `gorm:"column:img_width;not null;default:0"`
	Height      int    `gorm:"column:img_height;not null;default:0"`
	Metadata    string `gorm:"column:img_metadata;not null;default:''"`
	Bits        int    `gorm:"column:img_bits;not null;default:0"`
	MediaType   string `gorm:"column:img_media_type;size:16"`
	MajorMIME   string `gorm:"column:img_major_mime;size:16;not null;default:'unknown'"`
	MinorMIME   string `gorm:"column:img_minor_mime;size:100;not null;default:'unknown'"`
	Description string `gorm:"column:img_description;not null;default:''"`
	UserID      *int64 `gorm:"column:img_user"`
	UserText    string `gorm:"column:img_user_text;size:255;not null;default:''"`
	Timestamp   string `gorm:"column:img_timestamp;size:14;not null"`
	SHA1        string `gorm:"column:img_sha1;size:32;not null;default:'';index"`
}

// TableName returns the default table name.
func (ImageModel) TableName() string { return DefaultImageTable }
