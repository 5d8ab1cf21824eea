package calendar

import (
	"context"
	"fmt"
	"time"

	"consultly/models"

	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// GoogleProvider implements Provider over the Google Calendar API. One
// authenticated client is constructed at the composition root and injected
// wherever calendar access is needed.
type GoogleProvider struct {
	svc        *gcal.Service
	calendarID string
	timezone   string
	enabled    bool
}

// NewGoogleProvider builds a calendar client from a service-account
// credentials file. When enabled is false the client is returned without
// touching the network so the rest of the wiring stays uniform.
func NewGoogleProvider(ctx context.Context, credentialsFile, calendarID, timezone string, enabled bool) (*GoogleProvider, error) {
	p := &GoogleProvider{
		calendarID: calendarID,
		timezone:   timezone,
		enabled:    enabled,
	}
	if !enabled {
		return p, nil
	}

	svc, err := gcal.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(gcal.CalendarScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize google calendar service: %w", err)
	}
	p.svc = svc
	return p, nil
}

func (p *GoogleProvider) Enabled() bool {
	return p.enabled
}

func (p *GoogleProvider) ListEvents(ctx context.Context, start, end time.Time) ([]models.Event, error) {
	call := p.svc.Events.List(p.calendarID).
		TimeMin(start.Format(time.RFC3339)).
		TimeMax(end.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx)

	res, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list calendar events: %w", err)
	}

	events := make([]models.Event, 0, len(res.Items))
	for _, item := range res.Items {
		ev, err := p.fromGoogleEvent(item)
		if err != nil {
			return nil, err
		}
		events = append(events, *ev)
	}
	return events, nil
}

func (p *GoogleProvider) CreateEvent(ctx context.Context, input models.EventInput) (*models.Event, error) {
	created, err := p.svc.Events.Insert(p.calendarID, p.toGoogleEvent(input)).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar event: %w", err)
	}
	return p.fromGoogleEvent(created)
}

func (p *GoogleProvider) UpdateEvent(ctx context.Context, id string, input models.EventInput) (*models.Event, error) {
	updated, err := p.svc.Events.Update(p.calendarID, id, p.toGoogleEvent(input)).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to update calendar event %s: %w", id, err)
	}
	return p.fromGoogleEvent(updated)
}

func (p *GoogleProvider) DeleteEvent(ctx context.Context, id string) error {
	if err := p.svc.Events.Delete(p.calendarID, id).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to delete calendar event %s: %w", id, err)
	}
	return nil
}

func (p *GoogleProvider) toGoogleEvent(input models.EventInput) *gcal.Event {
	tz := input.Timezone
	if tz == "" {
		tz = p.timezone
	}
	ev := &gcal.Event{
		Summary:     input.Summary,
		Description: input.Description,
		Start: &gcal.EventDateTime{
			DateTime: input.Start.Format(time.RFC3339),
			TimeZone: tz,
		},
		End: &gcal.EventDateTime{
			DateTime: input.End.Format(time.RFC3339),
			TimeZone: tz,
		},
	}
	if input.Attendee != "" {
		ev.Attendees = []*gcal.EventAttendee{{Email: input.Attendee}}
	}
	return ev
}

func (p *GoogleProvider) fromGoogleEvent(item *gcal.Event) (*models.Event, error) {
	start, tz, err := p.parseEventTime(item.Start)
	if err != nil {
		return nil, fmt.Errorf("bad start time on event %s: %w", item.Id, err)
	}
	end, _, err := p.parseEventTime(item.End)
	if err != nil {
		return nil, fmt.Errorf("bad end time on event %s: %w", item.Id, err)
	}

	return &models.Event{
		ID:          item.Id,
		Summary:     item.Summary,
		Description: item.Description,
		Start:       start,
		End:         end,
		Timezone:    tz,
		Status:      item.Status,
	}, nil
}

// parseEventTime handles both timed events (DateTime) and all-day events
// (Date), resolving the latter in the event's own timezone with the
// configured business timezone as fallback.
func (p *GoogleProvider) parseEventTime(edt *gcal.EventDateTime) (time.Time, string, error) {
	if edt == nil {
		return time.Time{}, "", fmt.Errorf("missing event time")
	}

	tz := edt.TimeZone
	if tz == "" {
		tz = p.timezone
	}

	if edt.DateTime != "" {
		t, err := time.Parse(time.RFC3339, edt.DateTime)
		return t, tz, err
	}

	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("unknown timezone %q: %w", tz, err)
	}
	t, err := time.ParseInLocation("2006-01-02", edt.Date, loc)
	return t, tz, err
}
