package media

import "github.com/helixml/mt2mw/domain/store"

// WithName filters by the "img_name" column.
func WithName(name string) store.Option {
	return store.WithCondition("img_name", name)
}

// WithMediaType filters by the "img_media_type" column.
func WithMediaType(t Type) store.Option {
	return store.WithCondition("img_media_type", string(t))
}

// WithSHA1 filters by the "img_sha1" column.
func WithSHA1(sha1 string) store.Option {
	return store.WithCondition("img_sha1", sha1)
}
