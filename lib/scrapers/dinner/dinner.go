package dinner

import (
	"context"
	"fmt"

	"nightout-backend/lib/browser"
	"nightout-backend/lib/days"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("scrapers/dinner")

var ErrLoginFailed = fmt.Errorf("could not log in to the restaurant's booking site")

type Credentials struct {
	Username string
	Password string
}

// selector for the radio inputs carrying the free booking tokens
const bookingSelector = `div > p > input[name="group1"]`

// Resolve logs in to the restaurant's booking site and returns the raw
// booking tokens whose day prefix matches one of the candidate days. The
// login navigation must complete before the booking page is read, both
// the initial load and the login are terminal failures.
func Resolve(ctx context.Context, session *browser.Session, bookingUrl string, creds Credentials, candidates []days.Day) ([]string, error) {
	ctx, span := tracer.Start(ctx, "dinner:Resolve")
	defer span.End()

	if err := session.Navigate(ctx, bookingUrl); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to load booking site")
		return nil, err
	}

	err := session.SubmitForm(ctx, map[string]string{
		"username": creds.Username,
		"password": creds.Password,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "login failed")
		return nil, fmt.Errorf("%w: %w", ErrLoginFailed, err)
	}

	tokens := session.Values(bookingSelector)
	span.SetAttributes(attribute.Int("free_bookings", len(tokens)))

	var matching []string
	for _, token := range tokens {
		for _, d := range candidates {
			if d.MatchesPrefix(token) {
				matching = append(matching, token)
				break
			}
		}
	}
	return matching, nil
}
