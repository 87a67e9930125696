package cinema

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"nightout-backend/lib/browser"
	"nightout-backend/lib/days"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("scrapers/cinema")

// the catalog always displays exactly three movies
const slotCount = 3

// status value the availability endpoint reports for a bookable showing
const availableStatus = 1

// Showtime is one movie that still has seats on a given day.
type Showtime struct {
	Day   days.Day
	Time  string
	Title string
}

type checkRecord struct {
	Day    string `json:"day"`
	Time   string `json:"time"`
	Status int    `json:"status"`
}

func slotId(i int) string {
	return fmt.Sprintf("0%d", i)
}

// Resolve queries the cinema's availability endpoint for every candidate
// day and catalog slot. A failing slot query is logged and skipped, the
// remaining queries still run, so partial results are possible.
func Resolve(ctx context.Context, session *browser.Session, catalogUrl string, candidates []days.Day) ([]Showtime, error) {
	ctx, span := tracer.Start(ctx, "cinema:Resolve")
	defer span.End()

	if err := session.Navigate(ctx, catalogUrl); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to load catalog")
		return nil, err
	}

	// titles live in the catalog's option list, not in the query response
	titles := map[string]string{}
	for i := 1; i <= slotCount; i++ {
		slot := slotId(i)
		titles[slot] = session.Text(fmt.Sprintf(`#movie > option[value="%s"]`, slot))
	}

	checkUrl := catalogUrl + "/check"
	var result []Showtime

	for _, day := range candidates {
		for i := 1; i <= slotCount; i++ {
			slot := slotId(i)

			res, err := session.Http.R().
				SetContext(ctx).
				SetQueryParams(map[string]string{
					"day":   day.QueryCode(),
					"movie": slot,
				}).
				Get(checkUrl)
			if err != nil {
				slog.WarnContext(ctx, "availability query failed", "day", day, "movie", slot, "err", err)
				continue
			}
			if res.StatusCode() >= 400 {
				slog.WarnContext(ctx, "availability query failed", "day", day, "movie", slot, "status", res.StatusCode())
				continue
			}

			var records []checkRecord
			if err := json.Unmarshal(res.Body(), &records); err != nil {
				slog.WarnContext(ctx, "unexpected availability response", "day", day, "movie", slot, "err", err)
				continue
			}

			for _, record := range records {
				if record.Status != availableStatus {
					continue
				}
				result = append(result, Showtime{
					Day:   day,
					Time:  record.Time,
					Title: titles[slot],
				})
			}
		}
	}

	span.SetAttributes(attribute.Int("showtimes", len(result)))
	return result, nil
}
