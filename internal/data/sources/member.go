package sources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/domain"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/platform/logger"
)

const personColumns = `
	p.id, p.title, p.first_name, p.middle_name, p.last_name, p.email, p.phone,
	p.dob, p.gender::text AS gender, p.marital_status::text AS marital_status,
	p.member_status::text AS member_status,
	p.address, p.city, p.state, p.country, p.zip, p.how_join, p.joined_via,
	p.profession, p.spiritual_need, p.spiritual_challenge, p.prayer_request,
	p.fam_id, f.first_name AS family_head_first_name, f.last_name AS family_head_last_name,
	p.created_at`

const noteColumns = `n.id::text AS id, n.title, n.notes_body, n.created_at`

type personRow struct {
	ID                  uuid.UUID  `db:"id"`
	Title               *string    `db:"title"`
	FirstName           *string    `db:"first_name"`
	MiddleName          *string    `db:"middle_name"`
	LastName            *string    `db:"last_name"`
	Email               *string    `db:"email"`
	Phone               *string    `db:"phone"`
	DOB                 *time.Time `db:"dob"`
	Gender              *string    `db:"gender"`
	MaritalStatus       *string    `db:"marital_status"`
	MemberStatus        *string    `db:"member_status"`
	Address             *string    `db:"address"`
	City                *string    `db:"city"`
	State               *string    `db:"state"`
	Country             *string    `db:"country"`
	Zip                 *string    `db:"zip"`
	HowJoin             *string    `db:"how_join"`
	JoinedVia           *string    `db:"joined_via"`
	Profession          *string    `db:"profession"`
	SpiritualNeed       *string    `db:"spiritual_need"`
	SpiritualChallenge  *string    `db:"spiritual_challenge"`
	PrayerRequest       *string    `db:"prayer_request"`
	FamID               *uuid.UUID `db:"fam_id"`
	FamilyHeadFirstName *string    `db:"family_head_first_name"`
	FamilyHeadLastName  *string    `db:"family_head_last_name"`
	CreatedAt           *time.Time `db:"created_at"`
}

func (r personRow) toDomain() domain.Person {
	return domain.Person{
		ID:                  r.ID,
		Title:               deref(r.Title),
		FirstName:           deref(r.FirstName),
		MiddleName:          deref(r.MiddleName),
		LastName:            deref(r.LastName),
		Email:               deref(r.Email),
		Phone:               deref(r.Phone),
		DOB:                 r.DOB,
		Gender:              deref(r.Gender),
		MaritalStatus:       deref(r.MaritalStatus),
		MemberStatus:        deref(r.MemberStatus),
		Address:             deref(r.Address),
		City:                deref(r.City),
		State:               deref(r.State),
		Country:             deref(r.Country),
		Zip:                 deref(r.Zip),
		HowJoin:             deref(r.HowJoin),
		JoinedVia:           deref(r.JoinedVia),
		Profession:          deref(r.Profession),
		SpiritualNeed:       deref(r.SpiritualNeed),
		SpiritualChallenge:  deref(r.SpiritualChallenge),
		PrayerRequest:       deref(r.PrayerRequest),
		FamID:               r.FamID,
		FamilyHeadFirstName: deref(r.FamilyHeadFirstName),
		FamilyHeadLastName:  deref(r.FamilyHeadLastName),
		CreatedAt:           r.CreatedAt,
	}
}

type welcomeRow struct {
	PersonID           uuid.UUID  `db:"person_id"`
	Title              *string    `db:"title"`
	FirstName          *string    `db:"first_name"`
	MiddleName         *string    `db:"middle_name"`
	LastName           *string    `db:"last_name"`
	Email              *string    `db:"email"`
	Phone              *string    `db:"phone"`
	DateOfBirth        *time.Time `db:"date_of_birth"`
	Gender             *string    `db:"gender"`
	Race               *string    `db:"race"`
	Occupation         *string    `db:"occupation"`
	MaritalStatus      *string    `db:"marital_status"`
	Address            *string    `db:"address"`
	City               *string    `db:"city"`
	State              *string    `db:"state"`
	Country            *string    `db:"country"`
	Zip                *string    `db:"zip"`
	HowHeard           *string    `db:"how_heard_about_us"`
	JoinedVia          *string    `db:"joined_via"`
	PreferredComm      *string    `db:"preferred_communication_method"`
	BestContactTime    *string    `db:"best_contact_time"`
	SpiritualNeed      *string    `db:"spiritual_need"`
	SpiritualChallenge *string    `db:"spiritual_challenge"`
	PrayerRequest      *string    `db:"prayer_request"`
	RecentlyRelocated  *bool      `db:"recently_relocated"`
	ConsideringJoining *bool      `db:"considering_joining"`
	JoiningOurChurch   *bool      `db:"joining_our_church"`
	DailyDevotional    *bool      `db:"receive_devotionals"`
	Feedback           *string    `db:"feedback"`
	CreatedAt          *time.Time `db:"created_at"`
	UpdatedAt          *time.Time `db:"updated_at"`
	FamilyID           *uuid.UUID `db:"family_id"`
	FamilyHeadFirst    *string    `db:"family_head_first_name"`
	FamilyHeadLast     *string    `db:"family_head_last_name"`
	FamilySize         *int32     `db:"family_size"`
}

func (r welcomeRow) toDomain() domain.WelcomeForm {
	size := 0
	if r.FamilySize != nil {
		size = int(*r.FamilySize)
	}
	return domain.WelcomeForm{
		PersonInfo: domain.WelcomePersonInfo{
			ID:            r.PersonID.String(),
			Title:         deref(r.Title),
			FirstName:     deref(r.FirstName),
			MiddleName:    deref(r.MiddleName),
			LastName:      deref(r.LastName),
			Email:         deref(r.Email),
			Phone:         deref(r.Phone),
			DateOfBirth:   r.DateOfBirth,
			Gender:        deref(r.Gender),
			Race:          deref(r.Race),
			Occupation:    deref(r.Occupation),
			MaritalStatus: deref(r.MaritalStatus),
			Address: domain.Address{
				Street:  deref(r.Address),
				City:    deref(r.City),
				State:   deref(r.State),
				Country: deref(r.Country),
				Zip:     deref(r.Zip),
			},
		},
		VisitInfo: domain.WelcomeVisitInfo{
			VisitDate:                    r.CreatedAt,
			BestContactTime:              deref(r.BestContactTime),
			HowHeardAboutChurch:          deref(r.HowHeard),
			RecentlyRelocated:            derefBool(r.RecentlyRelocated),
			ConsideringJoining:           derefBool(r.ConsideringJoining),
			PreferredCommunicationMethod: deref(r.PreferredComm),
			JoinedVia:                    deref(r.JoinedVia),
		},
		// The person table has no interest columns beyond joining intent.
		Interests: domain.WelcomeInterests{
			Membership: derefBool(r.JoiningOurChurch),
		},
		SpiritualInfo: domain.WelcomeSpiritualInfo{
			SpiritualNeed:             deref(r.SpiritualNeed),
			SpiritualChallenge:        deref(r.SpiritualChallenge),
			PrayerRequest:             deref(r.PrayerRequest),
			Feedback:                  deref(r.Feedback),
			InterestInDailyDevotional: derefBool(r.DailyDevotional),
			JoiningOurChurch:          derefBool(r.JoiningOurChurch),
		},
		FormMetadata: domain.WelcomeFormMetadata{
			FamilyID:            r.FamilyID,
			FamilyHeadFirstName: deref(r.FamilyHeadFirst),
			FamilyHeadLastName:  deref(r.FamilyHeadLast),
			FamilySize:          size,
			CreatedAt:           r.CreatedAt,
			UpdatedAt:           r.UpdatedAt,
		},
	}
}

type noteRow struct {
	ID        string     `db:"id"`
	Title     *string    `db:"title"`
	Body      *string    `db:"notes_body"`
	CreatedAt *time.Time `db:"created_at"`
}

type followupRow struct {
	noteRow
	Type *string `db:"type"`
}

// NoteWrite is a member-facing note written back into the tenant notes table.
type NoteWrite struct {
	Title          string
	Body           string
	Type           string
	AuthorID       uuid.UUID
	RecipientID    uuid.UUID
	RecipientFamID *uuid.UUID
	Meta           map[string]any
}

// MemberClient reads the tenant person, fam and notes tables.
type MemberClient struct {
	pool   *pgxpool.Pool
	policy RetryPolicy
	log    *logger.Logger
}

func NewMemberClient(pool *pgxpool.Pool, policy RetryPolicy, baseLog *logger.Logger) *MemberClient {
	if baseLog == nil {
		baseLog = logger.Nop()
	}
	return &MemberClient{pool: pool, policy: policy, log: baseLog.With("service", "MemberClient")}
}

func (c *MemberClient) read(ctx context.Context, tenant domain.TenantRef, op string, fn func(pgx.Tx) (any, error)) (any, error) {
	return withRetry(ctx, c.policy, c.log, op, func(ctx context.Context) (any, error) {
		return inTenant(ctx, c.pool, tenant, pgx.ReadOnly, fn)
	})
}

func queryPersons(ctx context.Context, tx pgx.Tx, sql string, args ...any) ([]domain.Person, error) {
	rows, err := tx.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	recs, err := pgx.CollectRows(rows, pgx.RowToStructByName[personRow])
	if err != nil {
		return nil, err
	}
	out := make([]domain.Person, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.toDomain())
	}
	return out, nil
}

func (c *MemberClient) GetProfile(ctx context.Context, tenant domain.TenantRef, personID uuid.UUID) (*domain.Person, error) {
	v, err := c.read(ctx, tenant, "get_profile", func(tx pgx.Tx) (any, error) {
		people, err := queryPersons(ctx, tx, `SELECT `+personColumns+`
			FROM person p
			LEFT JOIN fam f ON p.fam_id = f.id
			WHERE p.id = $1 AND p.deleted_at IS NULL`, personID)
		if err != nil || len(people) == 0 {
			return (*domain.Person)(nil), err
		}
		return &people[0], nil
	})
	if err != nil {
		return nil, fmt.Errorf("get profile %s: %w", personID, err)
	}
	return v.(*domain.Person), nil
}

func (c *MemberClient) GetWelcomeForm(ctx context.Context, tenant domain.TenantRef, personID uuid.UUID) (*domain.WelcomeForm, error) {
	v, err := c.read(ctx, tenant, "get_welcome_form", func(tx pgx.Tx) (any, error) {
		rows, err := tx.Query(ctx, `
			SELECT
				p.id AS person_id, p.title, p.first_name, p.middle_name, p.last_name,
				p.email, p.phone, p.dob AS date_of_birth, p.gender::text AS gender, p.race,
				p.profession AS occupation, p.marital_status::text AS marital_status,
				p.address, p.city, p.state, p.country, p.zip,
				p.how_join AS how_heard_about_us, p.joined_via,
				p.preferred_comm_method AS preferred_communication_method,
				p.time_to_contact AS best_contact_time,
				p.spiritual_need, p.spiritual_challenge, p.prayer_request,
				p.just_relocated AS recently_relocated,
				p.consider_joining AS considering_joining,
				p.joining_our_church,
				p.daily_devotional AS receive_devotionals,
				p.feedback, p.created_at, p.updated_at,
				f.id AS family_id, f.first_name AS family_head_first_name,
				f.last_name AS family_head_last_name, f.family_size
			FROM person p
			LEFT JOIN fam f ON p.fam_id = f.id
			WHERE p.id = $1 AND p.deleted_at IS NULL`, personID)
		if err != nil {
			return nil, err
		}
		rec, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[welcomeRow])
		if errors.Is(err, pgx.ErrNoRows) {
			return (*domain.WelcomeForm)(nil), nil
		}
		if err != nil {
			return nil, err
		}
		form := rec.toDomain()
		return &form, nil
	})
	if err != nil {
		return nil, fmt.Errorf("get welcome form %s: %w", personID, err)
	}
	return v.(*domain.WelcomeForm), nil
}

func (c *MemberClient) GetFamilyMembers(ctx context.Context, tenant domain.TenantRef, famID uuid.UUID) ([]domain.Person, error) {
	v, err := c.read(ctx, tenant, "get_family_members", func(tx pgx.Tx) (any, error) {
		return queryPersons(ctx, tx, `SELECT `+personColumns+`
			FROM person p
			LEFT JOIN fam f ON p.fam_id = f.id
			WHERE p.fam_id = $1 AND p.deleted_at IS NULL
			ORDER BY p.dob ASC NULLS LAST`, famID)
	})
	if err != nil {
		return []domain.Person{}, fmt.Errorf("get family members of %s: %w", famID, err)
	}
	return v.([]domain.Person), nil
}

// GetFamilyMemberProfiles skips ids that are not UUIDs; they cannot match a
// person row.
func (c *MemberClient) GetFamilyMemberProfiles(ctx context.Context, tenant domain.TenantRef, personIDs []string) ([]domain.Person, error) {
	ids := validUUIDs(personIDs)
	if len(ids) == 0 {
		return []domain.Person{}, nil
	}
	if skipped := len(personIDs) - len(ids); skipped > 0 {
		c.log.Debug("Skipping non-uuid family member ids", "skipped", skipped, "tenant", tenant.Identifier)
	}
	v, err := c.read(ctx, tenant, "get_family_member_profiles", func(tx pgx.Tx) (any, error) {
		return queryPersons(ctx, tx, `SELECT `+personColumns+`
			FROM person p
			LEFT JOIN fam f ON p.fam_id = f.id
			WHERE p.id = ANY($1::uuid[]) AND p.deleted_at IS NULL
			ORDER BY p.dob ASC NULLS LAST`, ids)
	})
	if err != nil {
		return []domain.Person{}, fmt.Errorf("get family member profiles: %w", err)
	}
	return v.([]domain.Person), nil
}

func (c *MemberClient) notesByTitle(ctx context.Context, tenant domain.TenantRef, op string, personID uuid.UUID, patterns []string, limit int) ([]noteRow, error) {
	sql, args := titlePatternQuery(personID, patterns, limit)
	v, err := c.read(ctx, tenant, op, func(tx pgx.Tx) (any, error) {
		rows, err := tx.Query(ctx, sql, args...)
		if err != nil {
			return nil, err
		}
		return pgx.CollectRows(rows, pgx.RowToStructByName[noteRow])
	})
	if err != nil {
		return nil, fmt.Errorf("%s for %s: %w", op, personID, err)
	}
	return v.([]noteRow), nil
}

// titlePatternQuery matches any of the patterns against the note title,
// case-insensitively, newest first.
func titlePatternQuery(personID uuid.UUID, patterns []string, limit int) (string, []any) {
	conds := make([]string, 0, len(patterns))
	args := make([]any, 0, len(patterns)+2)
	args = append(args, personID)
	for i, p := range patterns {
		conds = append(conds, fmt.Sprintf("LOWER(n.title) LIKE LOWER($%d)", i+2))
		args = append(args, "%"+p+"%")
	}
	args = append(args, limit)
	sql := fmt.Sprintf(`SELECT %s
		FROM notes n
		WHERE n.recipient_id = $1
			AND (%s)
			AND n.is_archived = false
		ORDER BY n.created_at DESC
		LIMIT $%d`, noteColumns, strings.Join(conds, " OR "), len(patterns)+2)
	return sql, args
}

func (c *MemberClient) GetFirstTimerNotes(ctx context.Context, tenant domain.TenantRef, personID uuid.UUID) ([]domain.FirstTimerNote, error) {
	rows, err := c.notesByTitle(ctx, tenant, "get_first_timer_notes", personID, firstTimerTitlePatterns, firstTimerNotesLimit)
	if err != nil {
		return []domain.FirstTimerNote{}, err
	}
	out := make([]domain.FirstTimerNote, 0, len(rows))
	for _, r := range rows {
		body := deref(r.Body)
		out = append(out, domain.FirstTimerNote{
			ID:             r.ID,
			Title:          deref(r.Title),
			Body:           body,
			NoteType:       "first_timer",
			CreatedAt:      r.CreatedAt,
			RelevanceScore: firstTimerRelevance(body),
			Source:         domain.SourceNotes,
		})
	}
	return out, nil
}

func (c *MemberClient) GetPrayerRequests(ctx context.Context, tenant domain.TenantRef, personID uuid.UUID) ([]domain.PrayerRequest, error) {
	rows, err := c.notesByTitle(ctx, tenant, "get_prayer_requests", personID, prayerTitlePatterns, prayerNotesLimit)
	if err != nil {
		return []domain.PrayerRequest{}, err
	}
	out := make([]domain.PrayerRequest, 0, len(rows))
	for _, r := range rows {
		body := deref(r.Body)
		out = append(out, domain.PrayerRequest{
			ID:        r.ID,
			Title:     deref(r.Title),
			Body:      body,
			CreatedAt: r.CreatedAt,
			Urgency:   prayerUrgency(body),
			Category:  prayerCategory(body),
			Source:    domain.SourceNotes,
		})
	}
	return out, nil
}

func (c *MemberClient) GetFeedbackFields(ctx context.Context, tenant domain.TenantRef, personID uuid.UUID) ([]domain.FeedbackField, error) {
	rows, err := c.notesByTitle(ctx, tenant, "get_feedback_fields", personID, feedbackTitlePatterns, feedbackNotesLimit)
	if err != nil {
		return []domain.FeedbackField{}, err
	}
	out := make([]domain.FeedbackField, 0, len(rows))
	for _, r := range rows {
		body := deref(r.Body)
		out = append(out, domain.FeedbackField{
			ID:           r.ID,
			Title:        deref(r.Title),
			Body:         body,
			FeedbackType: feedbackType(body),
			Sentiment:    feedbackSentiment(body),
			CreatedAt:    r.CreatedAt,
			Source:       domain.SourceNotes,
		})
	}
	return out, nil
}

func (c *MemberClient) GetExistingFollowupNotes(ctx context.Context, tenant domain.TenantRef, personID uuid.UUID) ([]domain.FollowupNote, error) {
	v, err := c.read(ctx, tenant, "get_existing_followup_notes", func(tx pgx.Tx) (any, error) {
		rows, err := tx.Query(ctx, `SELECT `+noteColumns+`, n.type
			FROM notes n
			WHERE n.recipient_id = $1
				AND (
					LOWER(COALESCE(n.type, '')) LIKE '%followup%' OR LOWER(COALESCE(n.type, '')) LIKE '%follow-up%'
					OR LOWER(n.title) LIKE '%followup%' OR LOWER(n.title) LIKE '%follow-up%'
				)
			ORDER BY n.created_at DESC
			LIMIT $2`, personID, followupNotesLimit)
		if err != nil {
			return nil, err
		}
		return pgx.CollectRows(rows, pgx.RowToStructByName[followupRow])
	})
	if err != nil {
		return []domain.FollowupNote{}, fmt.Errorf("get existing followup notes for %s: %w", personID, err)
	}
	recs := v.([]followupRow)
	out := make([]domain.FollowupNote, 0, len(recs))
	for _, r := range recs {
		out = append(out, domain.FollowupNote{
			ID:        r.ID,
			Title:     deref(r.Title),
			Body:      deref(r.Body),
			Type:      deref(r.Type),
			CreatedAt: r.CreatedAt,
		})
	}
	return out, nil
}

// CreateNote inserts a member-facing note and returns its id as text.
func (c *MemberClient) CreateNote(ctx context.Context, tenant domain.TenantRef, n NoteWrite) (string, error) {
	if strings.TrimSpace(n.Title) == "" || strings.TrimSpace(n.Body) == "" || n.RecipientID == uuid.Nil {
		return "", domain.NewValidationError("note", "title, body and recipient are required")
	}
	meta := map[string]any{
		"service_metadata": map[string]any{
			"created_by_service": "ai_service",
			"service_version":    "1.0",
			"created_at":         time.Now().UTC().Format(time.RFC3339),
		},
	}
	for k, v := range n.Meta {
		meta[k] = v
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("encode note meta: %w", err)
	}

	author := n.AuthorID
	if author == uuid.Nil {
		author = n.RecipientID
	}
	// Inserts are not retried: a timeout after commit would duplicate the note.
	id, err := inTenant(ctx, c.pool, tenant, pgx.ReadWrite, func(tx pgx.Tx) (string, error) {
		var id string
		err := tx.QueryRow(ctx, `
			INSERT INTO notes (title, person_id, notes_body, recipient_id, recipient_fam_id, type, meta)
			VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb)
			RETURNING id::text`,
			n.Title, author, n.Body, n.RecipientID, n.RecipientFamID, n.Type, string(metaJSON),
		).Scan(&id)
		return id, err
	})
	if err != nil {
		return "", fmt.Errorf("create note for %s: %w", n.RecipientID, err)
	}
	c.log.Info("Member note created", "note_id", id, "tenant", tenant.Identifier, "type", n.Type)
	return id, nil
}

func validUUIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if u, err := uuid.Parse(strings.TrimSpace(id)); err == nil {
			out = append(out, u.String())
		}
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func derefBool(b *bool) bool { return b != nil && *b }
