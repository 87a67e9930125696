package planner

import (
	"fmt"
	"strconv"

	"nightout-backend/lib/days"
	"nightout-backend/lib/scrapers/cinema"
)

// the group wants dinner at the earliest two hours after the movie begins
const dinnerDelayHours = 2

// Suggestion is one compatible movie and dinner pairing. A movie can
// appear in several suggestions, and a dinner window can too.
type Suggestion struct {
	Day         days.Day
	MovieTitle  string
	MovieTime   string
	DinnerStart string
	DinnerEnd   string
}

// dinnerWindow is the decoded form of a raw booking token, which packs
// a 3-letter day prefix, a 2-digit start hour and a 2-digit end hour
// into a fixed-width string like "fri0608".
type dinnerWindow struct {
	prefix    string
	startHour int
	start     string
	end       string
}

func parseDinnerToken(token string) (dinnerWindow, bool) {
	if len(token) < 7 {
		return dinnerWindow{}, false
	}
	startHour, err := strconv.Atoi(token[3:5])
	if err != nil {
		return dinnerWindow{}, false
	}
	return dinnerWindow{
		prefix:    token[:3],
		startHour: startHour,
		start:     fmt.Sprintf("%s:00", token[3:5]),
		end:       fmt.Sprintf("%s:00", token[5:7]),
	}, true
}

func earliestDinnerHour(movieTime string) (int, bool) {
	if len(movieTime) < 2 {
		return 0, false
	}
	hour, err := strconv.Atoi(movieTime[:2])
	if err != nil {
		return 0, false
	}
	return hour + dinnerDelayHours, true
}

// Match pairs every movie against every booking token and keeps the
// pairs whose days agree and whose dinner starts late enough after the
// movie. Iteration order is stable: movies outer, dinners inner, no
// dedup and no ranking beyond discovery order. Empty inputs yield an
// empty result, never an error.
func Match(movies []cinema.Showtime, dinners []string) []Suggestion {
	var suggested []Suggestion

	for _, movie := range movies {
		earliest, ok := earliestDinnerHour(movie.Time)
		if !ok {
			continue
		}
		for _, token := range dinners {
			window, ok := parseDinnerToken(token)
			if !ok {
				continue
			}
			if !movie.Day.MatchesPrefix(window.prefix) {
				continue
			}
			if earliest > window.startHour {
				continue
			}
			suggested = append(suggested, Suggestion{
				Day:         movie.Day,
				MovieTitle:  movie.Title,
				MovieTime:   movie.Time,
				DinnerStart: window.start,
				DinnerEnd:   window.end,
			})
		}
	}

	return suggested
}
