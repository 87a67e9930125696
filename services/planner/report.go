package planner

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/text"
)

// Report prints the suggestions one per line in the agreed format.
func Report(w io.Writer, suggestions []Suggestion) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Suggestions")
	fmt.Fprintln(w, "===========")

	for _, s := range suggestions {
		fmt.Fprintf(
			w,
			"* On %s, \"%s\" begins at %s, and there is a free table to book between %s-%s.\n",
			s.Day.Title(),
			text.FgRed.Sprint(s.MovieTitle),
			s.MovieTime,
			s.DinnerStart,
			s.DinnerEnd,
		)
	}
}
