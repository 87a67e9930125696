package planner

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"nightout-backend/lib/browser"
	"nightout-backend/lib/days"
	"nightout-backend/lib/scrapers/calendar"
	"nightout-backend/lib/scrapers/cinema"
	"nightout-backend/lib/scrapers/dinner"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/planner")

var (
	ErrNoLinks        = fmt.Errorf("no links found on the seed page")
	ErrNoMovies       = fmt.Errorf("no movies available on the possible days")
	ErrNoReservations = fmt.Errorf("no available reservations for the given criteria")
)

// Plan runs the whole pipeline against the three sites linked from the
// seed page: common days first, then movies and dinner bookings scoped
// to those days, then the compatibility match. Each stage that comes up
// structurally empty is a terminal failure, never a degenerate report.
func Plan(ctx context.Context, session *browser.Session, seedUrl string, creds dinner.Credentials) ([]Suggestion, error) {
	ctx, span := tracer.Start(ctx, "planner:Plan")
	defer span.End()
	span.SetAttributes(attribute.String("seed_url", seedUrl))

	slog.InfoContext(ctx, "scraping links", "url", seedUrl)
	if err := session.Navigate(ctx, seedUrl); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to load seed page")
		return nil, err
	}
	links := session.Links(ctx)
	if len(links) == 0 {
		span.SetStatus(codes.Error, "no links")
		return nil, ErrNoLinks
	}

	var (
		candidates   []days.Day
		movies       []cinema.Showtime
		reservations []string
	)

	// the seed page links the three sites; the calendar link comes
	// first, its result scopes the other two queries
	for _, link := range links {
		upper := strings.ToUpper(link)
		switch {
		case strings.Contains(upper, "CALENDAR"):
			slog.InfoContext(ctx, "scraping available days", "url", link)
			var err error
			candidates, err = calendar.Resolve(ctx, session, link)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, "availability stage failed")
				return nil, err
			}
			slog.InfoContext(ctx, "found common days", "days", candidates)

		case strings.Contains(upper, "CINEMA"):
			slog.InfoContext(ctx, "scraping showtimes", "url", link)
			var err error
			movies, err = cinema.Resolve(ctx, session, link, candidates)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, "showtime stage failed")
				return nil, err
			}
			if len(movies) == 0 {
				span.SetStatus(codes.Error, "no movies")
				return nil, ErrNoMovies
			}
			slog.InfoContext(ctx, "found showtimes", "count", len(movies))

		case strings.Contains(upper, "DINNER"):
			slog.InfoContext(ctx, "scraping possible reservations", "url", link)
			var err error
			reservations, err = dinner.Resolve(ctx, session, link, creds, candidates)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, "reservation stage failed")
				return nil, err
			}
			if len(reservations) == 0 {
				span.SetStatus(codes.Error, "no reservations")
				return nil, ErrNoReservations
			}
			slog.InfoContext(ctx, "found reservations", "count", len(reservations))
		}
	}

	suggestions := Match(movies, reservations)
	span.SetAttributes(attribute.Int("suggestions", len(suggestions)))
	return suggestions, nil
}
