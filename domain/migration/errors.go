package migration

import (
	"errors"
	"fmt"
)

// Stages at which a run can fail fatally.
const (
	StageConfig     = "config"
	StageSourceTree = "source tree"
	StageTargetAuth = "target login"
	StageStorage    = "storage"
)

// ErrDuplicate indicates the target already holds a file with the same name.
var ErrDuplicate = errors.New("file already exists on target")

// FatalError aborts a run before any writes happen.
type FatalError struct {
	Stage string
	Err   error
}

// NewFatalError wraps err as a fatal failure of the given stage.
func NewFatalError(stage string, err error) *FatalError {
	return &FatalError{Stage: stage, Err: err}
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *FatalError) Unwrap() error { return e.Err }

// IsFatal reports whether err, or any error it wraps, is a FatalError.
func IsFatal(err error) bool {
	var fatal *FatalError
	return errors.As(err, &fatal)
}

// NodeFetchError is a failure to retrieve one node's files or body.
// The node is then treated as having no files or an empty body.
type NodeFetchError struct {
	PageID   string
	Resource string
	Err      error
}

func (e *NodeFetchError) Error() string {
	return fmt.Sprintf("fetch %s of page %s: %v", e.Resource, e.PageID, e.Err)
}

func (e *NodeFetchError) Unwrap() error { return e.Err }

// WriteError is a failed page write at the target.
type WriteError struct {
	Title string
	Err   error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write page %q: %v", e.Title, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
