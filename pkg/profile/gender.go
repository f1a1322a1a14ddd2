package profile

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Gender is one of the fixed gender options offered by the form.
type Gender string

// Gender options.
const (
	Male   Gender = "male"
	Female Gender = "female"
	Other  Gender = "other"
)

// GenderPlaceholder is the label of the empty gender option.
const GenderPlaceholder = "Select Gender"

var titleCaser = cases.Title(language.English)

// Genders returns the selectable options in display order.
func Genders() []Gender {
	return []Gender{Male, Female, Other}
}

// ParseGender returns the Gender for s. Only the exact option values are
// accepted.
func ParseGender(s string) (Gender, bool) {
	g := Gender(s)
	return g, g.Valid()
}

// Valid reports whether g is one of the fixed options.
func (g Gender) Valid() bool {
	switch g {
	case Male, Female, Other:
		return true
	}
	return false
}

// Label returns the human readable option label, e.g. "Female".
func (g Gender) Label() string {
	return titleCaser.String(string(g))
}

// String implements fmt.Stringer.
func (g Gender) String() string {
	return string(g)
}
