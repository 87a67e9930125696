package calendar

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"nightout-backend/lib/browser"
	"nightout-backend/lib/days"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("scrapers/calendar")

var ErrNoCommonDay = fmt.Errorf("no day where all friends are available")

// token a calendar cell carries when the friend is free that day
const freeToken = "OK"

// Resolve visits every friend's calendar linked from the index page and
// returns the days on which every single friend is free. Friends are
// visited one at a time, the whole count must be folded before the
// unanimity check. An empty result is an error, the caller has nothing
// to plan with.
func Resolve(ctx context.Context, session *browser.Session, indexUrl string) ([]days.Day, error) {
	ctx, span := tracer.Start(ctx, "calendar:Resolve")
	defer span.End()

	if err := session.Navigate(ctx, indexUrl); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to load calendar index")
		return nil, err
	}
	links := session.Links(ctx)

	freeCount := map[days.Day]int{}
	visited := 0

	for _, link := range links {
		if err := session.Navigate(ctx, link); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to load friend calendar")
			return nil, err
		}

		name := session.Text("h2")
		cells := session.TextAll("tbody > tr > td")
		visited++

		// cells come in the fixed friday, saturday, sunday order
		for i, cell := range cells {
			if i >= len(days.All) {
				break
			}
			if !strings.EqualFold(cell, freeToken) {
				continue
			}
			freeCount[days.All[i]]++
			slog.DebugContext(ctx, "friend is free", "name", name, "day", days.All[i])
		}
	}

	var common []days.Day
	for _, d := range days.All {
		if visited > 0 && freeCount[d] == visited {
			common = append(common, d)
		}
	}
	span.SetAttributes(
		attribute.Int("friends", visited),
		attribute.Int("common_days", len(common)),
	)

	if len(common) == 0 {
		span.SetStatus(codes.Error, "no common day")
		return nil, ErrNoCommonDay
	}
	return common, nil
}
