package sources

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/domain"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/platform/logger"
)

// eventStatusActive is the calendar service's published state.
const eventStatusActive = 1

type eventRow struct {
	ID           string     `db:"id"`
	Title        *string    `db:"title"`
	Description  *string    `db:"description"`
	StartTime    time.Time  `db:"start_time"`
	EndTime      *time.Time `db:"end_time"`
	VenueName    *string    `db:"venue_name"`
	VenueAddress *string    `db:"venue_address"`
	MeetingLink  *string    `db:"meeting_link"`
}

type CalendarClient struct {
	pool   *pgxpool.Pool
	policy RetryPolicy
	log    *logger.Logger
	now    func() time.Time
}

func NewCalendarClient(pool *pgxpool.Pool, policy RetryPolicy, baseLog *logger.Logger) *CalendarClient {
	if baseLog == nil {
		baseLog = logger.Nop()
	}
	return &CalendarClient{pool: pool, policy: policy, log: baseLog.With("service", "CalendarClient"), now: time.Now}
}

// GetUpcomingEvents returns active events starting within the next daysAhead
// days, soonest first.
func (c *CalendarClient) GetUpcomingEvents(ctx context.Context, tenant domain.TenantRef, daysAhead int) ([]domain.Event, error) {
	if daysAhead <= 0 {
		daysAhead = domain.DefaultEventsTimeframeDays
	}
	from := c.now().UTC()
	to := from.AddDate(0, 0, daysAhead)

	recs, err := withRetry(ctx, c.policy, c.log, "get_upcoming_events", func(ctx context.Context) ([]eventRow, error) {
		return inTenant(ctx, c.pool, tenant, pgx.ReadOnly, func(tx pgx.Tx) ([]eventRow, error) {
			rows, err := tx.Query(ctx, `
				SELECT id::text AS id, title, description, start_time, end_time,
					venue_name, venue_address, meeting_link
				FROM event
				WHERE start_time >= $1 AND start_time <= $2 AND status = $3
				ORDER BY start_time ASC`, from, to, eventStatusActive)
			if err != nil {
				return nil, err
			}
			return pgx.CollectRows(rows, pgx.RowToStructByName[eventRow])
		})
	})
	if err != nil {
		return []domain.Event{}, fmt.Errorf("get upcoming events: %w", err)
	}
	out := make([]domain.Event, 0, len(recs))
	for _, r := range recs {
		out = append(out, domain.Event{
			ID:           r.ID,
			Title:        deref(r.Title),
			Description:  deref(r.Description),
			StartTime:    r.StartTime,
			EndTime:      r.EndTime,
			VenueName:    deref(r.VenueName),
			VenueAddress: deref(r.VenueAddress),
			MeetingLink:  deref(r.MeetingLink),
		})
	}
	return out, nil
}
