package wiki

// File is an attachment on a source page.
// The filename doubles as the display name and the target storage key.
type File struct {
	name        string
	url         string
	mimeType    string
	size        int64
	description string
}

// NewFile creates a new File.
func NewFile(name, url string) File {
	return File{name: name, url: url}
}

// Name returns the attachment filename.
func (f File) Name() string { return f.name }

// URL returns the URL the attachment bytes are fetched from.
func (f File) URL() string { return f.url }

// MIMEType returns the content type reported by the source, if any.
func (f File) MIMEType() string { return f.mimeType }

// Size returns the size reported by the source, or 0 when unknown.
func (f File) Size() int64 { return f.size }

// Description returns the attachment description reported by the source.
func (f File) Description() string { return f.description }

// WithMIMEType returns a copy with the reported content type set.
func (f File) WithMIMEType(mimeType string) File {
	f.mimeType = mimeType
	return f
}

// WithSize returns a copy with the reported size set.
func (f File) WithSize(size int64) File {
	f.size = size
	return f
}

// WithDescription returns a copy with the description set.
func (f File) WithDescription(description string) File {
	f.description = description
	return f
}

// Page represents a single page in the source wiki.
// Pages form a tree via children; child order is the source order.
type Page struct {
	id       string
	title    string
	path     string
	files    []File
	children []Page
}

// NewPage creates a new Page.
func NewPage(id, title, path string, files []File, children []Page) Page {
	if files == nil {
		files = []File{}
	}
	if children == nil {
		children = []Page{}
	}
	return Page{
		id:       id,
		title:    title,
		path:     path,
		files:    files,
		children: children,
	}
}

// ID returns the source-assigned page identifier.
func (p Page) ID() string { return p.id }

// Title returns the display title of this page.
func (p Page) Title() string { return p.title }

// Path returns the hierarchical path assigned by the source.
// Paths are not guaranteed to be unique.
func (p Page) Path() string { return p.path }

// Files returns the attachments of this page.
func (p Page) Files() []File {
	result := make([]File, len(p.files))
	copy(result, p.files)
	return result
}

// Children returns the child pages in source order.
func (p Page) Children() []Page {
	result := make([]Page, len(p.children))
	copy(result, p.children)
	return result
}

// HasFiles reports whether the page has at least one attachment.
func (p Page) HasFiles() bool { return len(p.files) > 0 }

// HasChildren reports whether the page has at least one subpage.
func (p Page) HasChildren() bool { return len(p.children) > 0 }

// WithPath returns a copy of the page with a different path.
func (p Page) WithPath(path string) Page {
	p.path = path
	return p
}
