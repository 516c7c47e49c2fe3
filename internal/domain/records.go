package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Person is a row of the tenant person table joined with its family.
type Person struct {
	ID                  uuid.UUID  `json:"id"`
	Title               string     `json:"title,omitempty"`
	FirstName           string     `json:"first_name"`
	MiddleName          string     `json:"middle_name,omitempty"`
	LastName            string     `json:"last_name"`
	Email               string     `json:"email,omitempty"`
	Phone               string     `json:"phone,omitempty"`
	DOB                 *time.Time `json:"dob,omitempty"`
	Gender              string     `json:"gender,omitempty"`
	MaritalStatus       string     `json:"marital_status,omitempty"`
	MemberStatus        string     `json:"member_status,omitempty"`
	Address             string     `json:"address,omitempty"`
	City                string     `json:"city,omitempty"`
	State               string     `json:"state,omitempty"`
	Country             string     `json:"country,omitempty"`
	Zip                 string     `json:"zip,omitempty"`
	HowJoin             string     `json:"how_join,omitempty"`
	JoinedVia           string     `json:"joined_via,omitempty"`
	Profession          string     `json:"profession,omitempty"`
	SpiritualNeed       string     `json:"spiritual_need,omitempty"`
	SpiritualChallenge  string     `json:"spiritual_challenge,omitempty"`
	PrayerRequest       string     `json:"prayer_request,omitempty"`
	FamID               *uuid.UUID `json:"fam_id,omitempty"`
	FamilyHeadFirstName string     `json:"family_head_first_name,omitempty"`
	FamilyHeadLastName  string     `json:"family_head_last_name,omitempty"`
	CreatedAt           *time.Time `json:"created_at,omitempty"`
}

func (p Person) FullName() string {
	return strings.TrimSpace(strings.Join(nonEmpty(p.FirstName, p.LastName), " "))
}

// Age returns whole years at now; ok is false without a date of birth.
func (p Person) Age(now time.Time) (int, bool) {
	if p.DOB == nil || p.DOB.IsZero() {
		return 0, false
	}
	years := now.Year() - p.DOB.Year()
	if now.YearDay() < p.DOB.YearDay() {
		years--
	}
	if years < 0 {
		years = 0
	}
	return years, true
}

type Address struct {
	Street  string `json:"street,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Country string `json:"country,omitempty"`
	Zip     string `json:"zip,omitempty"`
}

type WelcomePersonInfo struct {
	ID            string     `json:"id,omitempty"`
	Title         string     `json:"title,omitempty"`
	FirstName     string     `json:"first_name,omitempty"`
	MiddleName    string     `json:"middle_name,omitempty"`
	LastName      string     `json:"last_name,omitempty"`
	Email         string     `json:"email,omitempty"`
	Phone         string     `json:"phone,omitempty"`
	DateOfBirth   *time.Time `json:"date_of_birth,omitempty"`
	Gender        string     `json:"gender,omitempty"`
	Race          string     `json:"race,omitempty"`
	Occupation    string     `json:"occupation,omitempty"`
	MaritalStatus string     `json:"marital_status,omitempty"`
	Address       Address    `json:"address"`
}

type WelcomeVisitInfo struct {
	VisitDate                    *time.Time `json:"visit_date,omitempty"`
	BestContactTime              string     `json:"best_contact_time,omitempty"`
	HowHeardAboutChurch          string     `json:"how_heard_about_church,omitempty"`
	RecentlyRelocated            bool       `json:"recently_relocated"`
	ConsideringJoining           bool       `json:"considering_joining"`
	PreferredCommunicationMethod string     `json:"preferred_communication_method,omitempty"`
	JoinedVia                    string     `json:"joined_via,omitempty"`
}

type WelcomeInterests struct {
	Membership bool `json:"membership"`
	Baptism    bool `json:"baptism"`
	BibleStudy bool `json:"bible_study"`
	SmallGroup bool `json:"small_group"`
}

type WelcomeSpiritualInfo struct {
	SpiritualNeed             string `json:"spiritual_need,omitempty"`
	SpiritualChallenge        string `json:"spiritual_challenge,omitempty"`
	PrayerRequest             string `json:"prayer_request,omitempty"`
	Feedback                  string `json:"feedback,omitempty"`
	InterestInDailyDevotional bool   `json:"interest_in_daily_devotional"`
	JoiningOurChurch          bool   `json:"joining_our_church"`
}

type WelcomeFormMetadata struct {
	FamilyID            *uuid.UUID `json:"family_id,omitempty"`
	FamilyHeadFirstName string     `json:"family_head_first_name,omitempty"`
	FamilyHeadLastName  string     `json:"family_head_last_name,omitempty"`
	FamilySize          int        `json:"family_size,omitempty"`
	CreatedAt           *time.Time `json:"created_at,omitempty"`
	UpdatedAt           *time.Time `json:"updated_at,omitempty"`
}

// WelcomeForm is the visitor's intake form, split into the sections the
// prompts consume. The zero value is the empty form.
type WelcomeForm struct {
	PersonInfo    WelcomePersonInfo    `json:"person_info"`
	VisitInfo     WelcomeVisitInfo     `json:"visit_info"`
	Interests     WelcomeInterests     `json:"interests"`
	SpiritualInfo WelcomeSpiritualInfo `json:"spiritual_info"`
	FormMetadata  WelcomeFormMetadata  `json:"form_metadata"`
}

func (w WelcomeForm) IsEmpty() bool {
	return w.PersonInfo.ID == "" &&
		w.PersonInfo.FirstName == "" &&
		w.PersonInfo.Email == "" &&
		w.VisitInfo == (WelcomeVisitInfo{}) &&
		w.Interests == (WelcomeInterests{}) &&
		w.SpiritualInfo == (WelcomeSpiritualInfo{})
}

const (
	SourceNotes       = "notes"
	SourceWelcomeForm = "welcome_form"
)

type PrayerRequest struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Body      string     `json:"notes_body"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	Urgency   string     `json:"urgency"`
	Category  string     `json:"category"`
	Source    string     `json:"source"`
}

type FirstTimerNote struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Body           string     `json:"notes_body"`
	NoteType       string     `json:"note_type"`
	CreatedAt      *time.Time `json:"created_at,omitempty"`
	RelevanceScore float64    `json:"relevance_score"`
	Source         string     `json:"source"`
}

type FeedbackField struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Body         string     `json:"notes_body"`
	FeedbackType string     `json:"feedback_type"`
	Sentiment    string     `json:"sentiment"`
	CreatedAt    *time.Time `json:"created_at,omitempty"`
	Source       string     `json:"source"`
}

// FollowupNote is a note previously written against the person.
type FollowupNote struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Body      string     `json:"notes_body"`
	Type      string     `json:"type"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

type Team struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Category    string   `json:"category,omitempty"`
	Leaders     []string `json:"leaders,omitempty"`
}

type Group struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Privacy     string `json:"privacy,omitempty"`
	MeetingDay  string `json:"meeting_day,omitempty"`
	Location    string `json:"location,omitempty"`
}

type Event struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	StartTime    time.Time  `json:"start_time"`
	EndTime      *time.Time `json:"end_time,omitempty"`
	VenueName    string     `json:"venue_name,omitempty"`
	VenueAddress string     `json:"venue_address,omitempty"`
	MeetingLink  string     `json:"meeting_link,omitempty"`
}

func nonEmpty(vals ...string) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
