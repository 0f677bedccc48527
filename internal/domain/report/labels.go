package report

import (
	"math"
	"strconv"
	"time"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Display formats.
const (
	dateLayout       = "January 2, 2006 at 3:04 PM MST"
	averageDecimals  = 2
	missingAverage   = "n/a"
	selectAllHint    = "Select all that apply"
	individualPrefix = "Employee "
)

// PeopleLabel renders a respondent count, e.g. "1 person" or "3 people".
func PeopleLabel(n int) string {
	if n == 1 {
		return "1 person"
	}
	return strconv.Itoa(n) + " people"
}

// FormatDate renders an assessment timestamp for display.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

// FormatAverage renders an average with two decimals, or "n/a" when the
// average is undefined.
func FormatAverage(avg float64, ok bool) string {
	if !ok || math.IsNaN(avg) {
		return missingAverage
	}
	return strconv.FormatFloat(avg, 'f', averageDecimals, 64)
}

// RespondentLabel names the i-th (zero-based) respondent in a listing.
func RespondentLabel(i int) string {
	return individualPrefix + strconv.Itoa(i+1)
}

// Capitalize upper-cases the first letter of s and leaves the rest alone.
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return cases.Upper(language.Und).String(s[:size]) + s[size:]
}
