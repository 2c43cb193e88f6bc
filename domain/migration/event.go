package migration

import "context"

// EventKind identifies what happened during a run.
type EventKind string

// EventKind values.
const (
	EventPageWritten      EventKind = "page.written"
	EventPageFailed       EventKind = "page.failed"
	EventPageSkipped      EventKind = "page.skipped"
	EventTitleSanitized   EventKind = "page.title_sanitized"
	EventBodyFetchFailed  EventKind = "page.body_fetch_failed"
	EventConvertFailed    EventKind = "page.convert_failed"
	EventFilesFetchFailed EventKind = "files.fetch_failed"
	EventFileUploaded     EventKind = "file.uploaded"
	EventFileSkipped      EventKind = "file.skipped"
	EventFileFailed       EventKind = "file.failed"
	EventMainPageSet      EventKind = "main_page.set"
	EventMainPageFailed   EventKind = "main_page.failed"
)

// String returns the string representation of the kind.
func (k EventKind) String() string { return string(k) }

// IsFailure reports whether the kind records something that was not migrated.
func (k EventKind) IsFailure() bool {
	switch k {
	case EventPageFailed, EventFileFailed, EventMainPageFailed,
		EventBodyFetchFailed, EventFilesFetchFailed, EventConvertFailed:
		return true
	default:
		return false
	}
}

// Event is a progress notification emitted while fetching or publishing.
type Event struct {
	kind   EventKind
	page   string
	target string
	file   string
	detail string
	err    error
}

// NewEvent creates an Event about the page with the given source title.
func NewEvent(kind EventKind, page string) Event {
	return Event{kind: kind, page: page}
}

// FileEvent creates the Event matching a file ingest outcome.
func FileEvent(page, file string, outcome Outcome) Event {
	kind := EventFileUploaded
	switch outcome.Kind() {
	case OutcomeSkipped:
		kind = EventFileSkipped
	case OutcomeFailed:
		kind = EventFileFailed
	}
	return Event{
		kind:   kind,
		page:   page,
		file:   file,
		detail: outcome.Detail(),
		err:    outcome.Err(),
	}
}

// Kind returns what happened.
func (e Event) Kind() EventKind { return e.kind }

// Page returns the source title of the page concerned.
func (e Event) Page() string { return e.page }

// Target returns the target title, when one was chosen.
func (e Event) Target() string { return e.target }

// File returns the filename concerned, if any.
func (e Event) File() string { return e.file }

// Detail returns extra human-readable context.
func (e Event) Detail() string { return e.detail }

// Err returns the underlying failure, if any.
func (e Event) Err() error { return e.err }

// WithTarget returns a copy with the target title set.
func (e Event) WithTarget(target string) Event {
	e.target = target
	return e
}

// WithFile returns a copy with the filename set.
func (e Event) WithFile(file string) Event {
	e.file = file
	return e
}

// WithDetail returns a copy with the detail set.
func (e Event) WithDetail(detail string) Event {
	e.detail = detail
	return e
}

// WithErr returns a copy with the failure set.
func (e Event) WithErr(err error) Event {
	e.err = err
	if err != nil && e.detail == "" {
		e.detail = err.Error()
	}
	return e
}

// Reporter receives run events.
type Reporter interface {
	OnEvent(ctx context.Context, event Event) error
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(ctx context.Context, event Event) error

// OnEvent calls f.
func (f ReporterFunc) OnEvent(ctx context.Context, event Event) error {
	return f(ctx, event)
}
