package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"nightout-backend/lib/browser"
	"nightout-backend/lib/days"
	"nightout-backend/lib/scrapers/calendar"
	"nightout-backend/lib/scrapers/dinner"
	"nightout-backend/lib/telemetry"

	"github.com/stretchr/testify/require"
)

var testCreds = dinner.Credentials{Username: "zeke", Password: "coys"}

// testSite wires up the seed page and all three scraped sites on one
// server, mirroring the layout of the real assignment environment.
type testSite struct {
	// per-friend cells in friday, saturday, sunday order
	friends map[string][3]string
	// showtime returned for every slot on every queried day; status 1
	// only for movie 01
	showtime string
	// raw booking tokens behind the login
	bookings []string
}

func (s testSite) server(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/start", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<ul>
			<li><a href="/calendar">calendar</a></li>
			<li><a href="/cinema">cinema</a></li>
			<li><a href="/dinner">dinner</a></li>
		</ul>`)
	})

	mux.HandleFunc("/calendar", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<ul>")
		for name := range s.friends {
			fmt.Fprintf(w, `<li><a href="/calendar/%s">%s</a></li>`, name, name)
		}
		fmt.Fprint(w, "</ul>")
	})
	for name, cells := range s.friends {
		name, cells := name, cells
		mux.HandleFunc("/calendar/"+name, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintf(w, `<h2>%s</h2><table><tbody><tr><td>%s</td><td>%s</td><td>%s</td></tr></tbody></table>`,
				name, cells[0], cells[1], cells[2])
		})
	}

	mux.HandleFunc("/cinema", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<select id="movie">
			<option value="01">The Flying Deuces</option>
			<option value="02">Keep Your Seats, Please</option>
			<option value="03">A Day at the Races</option>
		</select>`)
	})
	mux.HandleFunc("/cinema/check", func(w http.ResponseWriter, r *http.Request) {
		status := 0
		if r.URL.Query().Get("movie") == "01" {
			status = 1
		}
		err := json.NewEncoder(w).Encode([]map[string]any{{
			"day":    r.URL.Query().Get("day"),
			"time":   s.showtime,
			"status": status,
		}})
		require.NoError(t, err)
	})

	mux.HandleFunc("/dinner", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<form method="post" action="/dinner/login">
			<input type="text" name="username"/>
			<input type="password" name="password"/>
			<input type="submit" value="login"/>
		</form>`)
	})
	mux.HandleFunc("/dinner/login", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.PostFormValue("username") != "zeke" || r.PostFormValue("password") != "coys" {
			http.Error(w, "bad credentials", http.StatusUnauthorized)
			return
		}
		http.Redirect(w, r, "/dinner/booking", http.StatusFound)
	})
	mux.HandleFunc("/dinner/booking", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<div><p>")
		for _, token := range s.bookings {
			fmt.Fprintf(w, `<input type="radio" name="group1" value="%s"/>`, token)
		}
		fmt.Fprint(w, "</p></div>")
	})

	return httptest.NewServer(mux)
}

func newSession(t *testing.T) *browser.Session {
	session, err := browser.New(context.Background())
	require.NoError(t, err)
	return session
}

func TestPlan(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:planner")
	defer cleanup()

	site := testSite{
		friends: map[string][3]string{
			"ann": {"OK", "OK", "-"},
			"ben": {"-", "OK", "-"},
		},
		showtime: "18:00",
		bookings: []string{"sat0608", "sat2022", "fri2022"},
	}
	server := site.server(t)
	defer server.Close()

	suggestions, err := Plan(context.Background(), newSession(t), server.URL+"/start", testCreds)
	require.NoError(t, err)

	// saturday is the only unanimous day; of its two windows only the
	// one starting two hours after the movie begins survives
	require.Equal(t, []Suggestion{{
		Day:         days.Saturday,
		MovieTitle:  "The Flying Deuces",
		MovieTime:   "18:00",
		DinnerStart: "20:00",
		DinnerEnd:   "22:00",
	}}, suggestions)
}

func TestPlanNoCommonDay(t *testing.T) {
	site := testSite{
		friends: map[string][3]string{
			"ann": {"OK", "-", "-"},
			"ben": {"-", "OK", "-"},
		},
		showtime: "18:00",
		bookings: []string{"fri2022"},
	}
	server := site.server(t)
	defer server.Close()

	_, err := Plan(context.Background(), newSession(t), server.URL+"/start", testCreds)
	require.ErrorIs(t, err, calendar.ErrNoCommonDay)
}

func TestPlanNoMatchingReservations(t *testing.T) {
	site := testSite{
		friends: map[string][3]string{
			"ann": {"-", "OK", "-"},
		},
		showtime: "18:00",
		bookings: []string{"fri2022", "sun1820"},
	}
	server := site.server(t)
	defer server.Close()

	_, err := Plan(context.Background(), newSession(t), server.URL+"/start", testCreds)
	require.ErrorIs(t, err, ErrNoReservations)
}

func TestPlanNoLinks(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/start", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<p>nothing here</p>`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	_, err := Plan(context.Background(), newSession(t), server.URL+"/start", testCreds)
	require.ErrorIs(t, err, ErrNoLinks)
}

func TestPlanSeedUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()

	_, err := Plan(context.Background(), newSession(t), server.URL+"/start", testCreds)
	require.Error(t, err)
}
