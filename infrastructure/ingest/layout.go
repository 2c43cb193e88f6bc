// Package ingest transfers wiki attachments to the target, either through its
// upload API or straight into its file repository and table.
package ingest

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrInvalidFilename is returned for names that cannot be a single path leaf.
var ErrInvalidFilename = errors.New("invalid filename")

// Layout places stored files the way MediaWiki's local file repository does:
// dataRoot/h/hh/name, where h and hh are the first one and two hex digits of
// the MD5 of the filename.
type Layout struct {
	root string
}

// NewLayout creates a Layout rooted at dataRoot.
func NewLayout(dataRoot string) Layout {
	return Layout{root: dataRoot}
}

// Root returns the data root.
func (l Layout) Root() string { return l.root }

// Hash returns the hex MD5 of name.
func Hash(name string) string {
	sum := md5.Sum([]byte(name))
	return hex.EncodeToString(sum[:])
}

// Path returns where name is stored.
func (l Layout) Path(name string) (string, error) {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidFilename, name)
	}
	h := Hash(name)
	return filepath.Join(l.root, h[:1], h[:2], name), nil
}
