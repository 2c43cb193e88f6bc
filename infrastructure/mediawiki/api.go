package mediawiki

import (
	"fmt"
	"sort"
	"strings"
)

// Response shapes of api.php (private).

type apiError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

type response struct {
	Error  *apiError       `json:"error,omitempty"`
	Query  *queryResult    `json:"query,omitempty"`
	Login  *loginResult    `json:"login,omitempty"`
	Edit   *resultEnvelope `json:"edit,omitempty"`
	Upload *uploadResult   `json:"upload,omitempty"`
}

type queryResult struct {
	Tokens map[string]string `json:"tokens"`
}

type loginResult struct {
	Result string `json:"result"`
	Reason string `json:"reason"`
}

type resultEnvelope struct {
	Result string `json:"result"`
}

type uploadResult struct {
	Result   string         `json:"result"`
	Warnings map[string]any `json:"warnings"`
}

// APIError is an error reported in the body of an api.php response.
type APIError struct {
	Action string
	Code   string
	Info   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Action, e.Code, e.Info)
}

// nameTakenWarning means a file with the requested name is already stored.
// Other warnings (duplicate content under another name, a name differing only
// in normalization) leave the requested name free.
const nameTakenWarning = "exists"

func (u uploadResult) warningKeys() []string {
	keys := make([]string, 0, len(u.Warnings))
	for k := range u.Warnings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (u uploadResult) nameTaken() bool {
	_, ok := u.Warnings[nameTakenWarning]
	return ok
}

func (u uploadResult) warningText() string {
	return strings.Join(u.warningKeys(), ", ")
}
