package days

import "strings"

// Day is one of the three evenings the group considers meeting up on.
// The set is closed, the remote sites only know about these three.
type Day string

const (
	Friday   Day = "friday"
	Saturday Day = "saturday"
	Sunday   Day = "sunday"
)

// All lists the days in the fixed left-to-right order the calendar
// pages render their status cells in.
var All = []Day{Friday, Saturday, Sunday}

// queryCodes is the day encoding the cinema's availability endpoint
// expects. The codes are assigned by the remote site, not derived.
var queryCodes = map[Day]string{
	Friday:   "05",
	Saturday: "06",
	Sunday:   "07",
}

func (d Day) QueryCode() string {
	return queryCodes[d]
}

// Prefix returns the 3-letter form the dinner booking tokens lead with.
func (d Day) Prefix() string {
	return string(d)[:3]
}

// Title returns the capitalized name used in the report output.
func (d Day) Title() string {
	s := string(d)
	return strings.ToUpper(s[:1]) + s[1:]
}

// MatchesPrefix reports whether a dinner token belongs to this day.
// Only the first three characters are compared, case-insensitively.
func (d Day) MatchesPrefix(token string) bool {
	if len(token) < 3 {
		return false
	}
	return strings.EqualFold(token[:3], d.Prefix())
}
