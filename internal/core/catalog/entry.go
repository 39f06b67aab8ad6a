// Package catalog holds the immutable variety catalog and its lookup index.
package catalog

import (
	"regexp"
	"strings"

	"github.com/joseph-ayodele/label-matcher/internal/core/normalize"
)

// Entry is one offered variety as loaded from a catalog source.
type Entry struct {
	ID      string `json:"id"`
	Variety string `json:"variedad"`
	Crop    string `json:"cultivo,omitempty"`
	Client  string `json:"cliente,omitempty"`
	Flight  string `json:"vuelo,omitempty"`
}

// Record is an indexed entry together with its normalized keys.
type Record struct {
	Entry
	Ordinal     int // position inside the index, stable per snapshot
	NormVariety string
	NormCrop    string
	FlightKey   string
	FirstToken  string
}

var reFirstToken = regexp.MustCompile(`^[A-Z0-9]+`)

// FirstToken returns the leading alphanumeric run of a normalized name.
func FirstToken(normalized string) string {
	return reFirstToken.FindString(normalized)
}

// FlightKey reduces a flight number to a form that ignores spacing and colons,
// so "123-4567 8901" and ":123-45678901" compare equal.
func FlightKey(flight string) string {
	n := normalize.Normalize(flight)
	return strings.NewReplacer(" ", "", ":", "").Replace(n)
}
