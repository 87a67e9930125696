package cinema

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"nightout-backend/lib/browser"
	"nightout-backend/lib/days"
	"nightout-backend/lib/telemetry"

	"github.com/stretchr/testify/require"
)

const catalogPage = `
	<select id="movie">
		<option value="01">The Flying Deuces</option>
		<option value="02">Keep Your Seats, Please</option>
		<option value="03">A Day at the Races</option>
	</select>
`

type queryLog struct {
	mu      sync.Mutex
	queries []string
}

func (l *queryLog) add(day, movie string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.queries = append(l.queries, day+"/"+movie)
}

func cinemaServer(t *testing.T, log *queryLog, check func(day, movie string, w http.ResponseWriter)) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/cinema", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, catalogPage)
	})
	mux.HandleFunc("/cinema/check", func(w http.ResponseWriter, r *http.Request) {
		day := r.URL.Query().Get("day")
		movie := r.URL.Query().Get("movie")
		log.add(day, movie)
		check(day, movie, w)
	})
	return httptest.NewServer(mux)
}

func respond(t *testing.T, w http.ResponseWriter, records []checkRecord) {
	require.NoError(t, json.NewEncoder(w).Encode(records))
}

func newSession(t *testing.T) *browser.Session {
	session, err := browser.New(context.Background())
	require.NoError(t, err)
	return session
}

func TestResolveScopedToCandidateDays(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:cinema")
	defer cleanup()

	log := &queryLog{}
	server := cinemaServer(t, log, func(day, movie string, w http.ResponseWriter) {
		respond(t, w, []checkRecord{})
	})
	defer server.Close()

	result, err := Resolve(
		context.Background(), newSession(t),
		server.URL+"/cinema", []days.Day{days.Saturday},
	)
	require.NoError(t, err)
	require.Empty(t, result)

	// only the saturday code is ever queried, once per catalog slot
	require.Equal(t, []string{"06/01", "06/02", "06/03"}, log.queries)
}

func TestResolveFiltersBookedShowings(t *testing.T) {
	log := &queryLog{}
	server := cinemaServer(t, log, func(day, movie string, w http.ResponseWriter) {
		if movie == "01" {
			respond(t, w, []checkRecord{
				{Day: day, Time: "18:00", Status: 1},
				{Day: day, Time: "21:00", Status: 0},
			})
			return
		}
		respond(t, w, []checkRecord{{Day: day, Time: "19:00", Status: 3}})
	})
	defer server.Close()

	result, err := Resolve(
		context.Background(), newSession(t),
		server.URL+"/cinema", []days.Day{days.Friday},
	)
	require.NoError(t, err)

	// only status 1 counts as available, the title comes from the
	// catalog's option list
	require.Equal(t, []Showtime{
		{Day: days.Friday, Time: "18:00", Title: "The Flying Deuces"},
	}, result)
}

func TestResolvePartialFailure(t *testing.T) {
	log := &queryLog{}
	server := cinemaServer(t, log, func(day, movie string, w http.ResponseWriter) {
		if movie == "02" {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		respond(t, w, []checkRecord{{Day: day, Time: "20:00", Status: 1}})
	})
	defer server.Close()

	result, err := Resolve(
		context.Background(), newSession(t),
		server.URL+"/cinema", []days.Day{days.Sunday},
	)
	require.NoError(t, err)

	// a failing slot query skips that slot only
	require.Equal(t, []Showtime{
		{Day: days.Sunday, Time: "20:00", Title: "The Flying Deuces"},
		{Day: days.Sunday, Time: "20:00", Title: "A Day at the Races"},
	}, result)
}

func TestResolveCatalogUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()

	_, err := Resolve(
		context.Background(), newSession(t),
		server.URL+"/cinema", []days.Day{days.Friday},
	)
	require.Error(t, err)
}
