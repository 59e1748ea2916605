package query

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titler = cases.Title(language.Und, cases.NoLower)

// SplitCamel inserts a space at each lower-to-upper case boundary:
// "ticketTypes" becomes "ticket Types".
func SplitCamel(s string) string {
	var b strings.Builder
	var prev rune
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) && (unicode.IsLower(prev) || unicode.IsDigit(prev)) {
			b.WriteRune(' ')
		}
		b.WriteRune(r)
		prev = r
	}
	return b.String()
}

// Capitalize upper-cases the first letter of each word and leaves the rest
// of each word untouched.
func Capitalize(s string) string {
	return titler.String(s)
}

// Label turns an identifier such as "ticketTypes", "ticket_types" or
// "ticket-types" into "Ticket Types".
func Label(s string) string {
	s = strings.NewReplacer("-", " ", "_", " ").Replace(s)
	return Capitalize(strings.Join(strings.Fields(SplitCamel(s)), " "))
}

// Crumb is one breadcrumb segment.
type Crumb struct {
	Label string
	Href  string
}

// Breadcrumbs returns one crumb per path segment, each linking to the path
// up to and including that segment.
func Breadcrumbs(path string) []Crumb {
	segments := strings.FieldsFunc(path, func(r rune) bool { return r == '/' })
	crumbs := make([]Crumb, 0, len(segments))
	href := ""
	for _, seg := range segments {
		href += "/" + seg
		crumbs = append(crumbs, Crumb{Label: Label(seg), Href: href})
	}
	return crumbs
}
