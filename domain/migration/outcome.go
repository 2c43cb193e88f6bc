package migration

import "fmt"

// OutcomeKind classifies the result of ingesting one file.
type OutcomeKind int

// OutcomeKind values.
const (
	OutcomeUploaded OutcomeKind = iota
	OutcomeSkipped
	OutcomeFailed
)

// String returns the lower-case name of the kind.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeUploaded:
		return "uploaded"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeFailed:
		return "failed"
	default:
		return fmt.Sprintf("outcome(%d)", int(k))
	}
}

// Outcome is the result of a single file ingest. Failures are carried as
// values so the traversal can decide to continue.
type Outcome struct {
	kind   OutcomeKind
	detail string
	err    error
}

// Uploaded reports a file that was transferred to the target.
func Uploaded() Outcome {
	return Outcome{kind: OutcomeUploaded}
}

// Skipped reports a file that the target already holds.
func Skipped(detail string) Outcome {
	return Outcome{kind: OutcomeSkipped, detail: detail}
}

// Failed reports a file that could not be transferred.
func Failed(err error) Outcome {
	o := Outcome{kind: OutcomeFailed, err: err}
	if err != nil {
		o.detail = err.Error()
	}
	return o
}

// Kind returns the outcome classification.
func (o Outcome) Kind() OutcomeKind { return o.kind }

// Detail returns the skip reason or failure message.
func (o Outcome) Detail() string { return o.detail }

// Err returns the failure cause, nil unless the outcome is Failed.
func (o Outcome) Err() error { return o.err }

// IsFailed reports whether the ingest failed.
func (o Outcome) IsFailed() bool { return o.kind == OutcomeFailed }

// String returns a human-readable form of the outcome.
func (o Outcome) String() string {
	if o.detail == "" {
		return o.kind.String()
	}
	return o.kind.String() + ": " + o.detail
}
