package application

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/risingacademy/backend/core"
)

// Type is the program an Application is made for. It is set once, at creation.
type Type string

const (
	TypeLanguage   Type = "language"
	TypeCoding     Type = "coding"
	TypeOfficeClub Type = "office-club"
)

var Types = []Type{TypeLanguage, TypeCoding, TypeOfficeClub}

func (t Type) Valid() bool {
	for _, typ := range Types {
		if t == typ {
			return true
		}
	}
	return false
}

// Program is the human readable name of the program.
func (t Type) Program() string {
	switch t {
	case TypeLanguage:
		return "Language Learning"
	case TypeCoding:
		return "Coding Bootcamp"
	case TypeOfficeClub:
		return "The Office Club"
	default:
		return string(t)
	}
}

// Status of an Application. Only pending -> approved and pending -> rejected are legal.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

var Statuses = []Status{StatusPending, StatusApproved, StatusRejected}

func (s Status) Valid() bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected
}

// Decision reports whether s is a status an admin can decide on (approved or rejected).
func (s Status) Decision() bool {
	return s == StatusApproved || s == StatusRejected
}

// Programming experience levels (coding applications only)
const (
	ExperienceBeginner     = "beginner"
	ExperienceIntermediate = "intermediate"
	ExperienceAdvanced     = "advanced"
)

var (
	ExperienceLevels = []string{ExperienceBeginner, ExperienceIntermediate, ExperienceAdvanced}

	AvailabilitySlots = []string{
		"Monday Evening", "Tuesday Evening", "Wednesday Evening",
		"Thursday Evening", "Friday Evening", "Saturday", "Sunday",
	}

	LanguageOptions = []string{
		"Spanish", "French", "German", "Italian", "Portuguese",
		"Japanese", "Korean", "Mandarin", "Arabic", "Russian",
	}
)

// Options lists the choices offered by the application form.
type Options struct {
	Types             []Type   `json:"types"`
	AvailabilitySlots []string `json:"availabilitySlots"`
	Languages         []string `json:"languages"`
	ExperienceLevels  []string `json:"experienceLevels"`
}

func FormOptions() Options {
	return Options{
		Types:             Types,
		AvailabilitySlots: AvailabilitySlots,
		Languages:         LanguageOptions,
		ExperienceLevels:  ExperienceLevels,
	}
}

type Application struct {
	ID                    string      `json:"id"`
	Type                  Type        `json:"type"`
	FirstName             string      `json:"firstName"`
	LastName              string      `json:"lastName"`
	Email                 string      `json:"email"`
	Phone                 string      `json:"phone"`
	Age                   int         `json:"age"`
	Experience            null.String `json:"experience"`
	Motivation            string      `json:"motivation"`
	PreferredLanguages    []string    `json:"preferredLanguages"`
	ProgrammingExperience null.String `json:"programmingExperience"`
	Availability          []string    `json:"availability"`
	Status                Status      `json:"status"`
	CreatedAt             time.Time   `json:"createdAt"` // UTC
	UpdatedAt             time.Time   `json:"updatedAt"` // UTC
}

func (app Application) FullName() string {
	return strings.TrimSpace(app.FirstName + " " + app.LastName)
}

// NewApplication contains the information submitted by the public application form.
type NewApplication struct {
	Type                  Type        `json:"type" validate:"required,oneof=language coding office-club"`
	FirstName             string      `json:"firstName" validate:"required,max=100"`
	LastName              string      `json:"lastName" validate:"required,max=100"`
	Email                 string      `json:"email" validate:"required,email,max=254"`
	Phone                 string      `json:"phone" validate:"required,phone"`
	Age                   int         `json:"age" validate:"required,min=16,max=100"`
	Experience            null.String `json:"experience" validate:"omitempty,max=2000"`
	Motivation            string      `json:"motivation" validate:"required,max=5000"`
	PreferredLanguages    []string    `json:"preferredLanguages" validate:"omitempty,max=10,dive,required,max=50"`
	ProgrammingExperience null.String `json:"programmingExperience" validate:"omitempty,oneof=beginner intermediate advanced"`
	Availability          []string    `json:"availability" validate:"omitempty,dive,appslot"`
}

// Clean trims the draft and drops the fields that do not apply to its Type.
func (na *NewApplication) Clean() {
	na.Type = Type(core.CleanString(string(na.Type), true /* lower */))
	na.FirstName = core.CleanString(na.FirstName)
	na.LastName = core.CleanString(na.LastName)
	na.Email = core.CleanString(na.Email, true /* lower */)
	na.Phone = core.CleanString(na.Phone)
	na.Motivation = core.CleanString(na.Motivation)
	na.Experience = cleanNullString(na.Experience, false)
	na.ProgrammingExperience = cleanNullString(na.ProgrammingExperience, true)
	na.Availability = cleanStrings(na.Availability)
	na.PreferredLanguages = cleanStrings(na.PreferredLanguages)

	if na.Type != TypeLanguage {
		na.PreferredLanguages = nil
	}
	if na.Type != TypeCoding {
		na.ProgrammingExperience = null.String{}
	}
}

func (na *NewApplication) Validate(validate *validator.Validate) error {
	na.Clean()
	return validate.Struct(na)
}

// Filter selects Applications; empty fields match everything and set fields are ANDed.
// Search is a case-insensitive substring match on the first name, last name or email.
type Filter struct {
	Type   Type   `query:"type"`
	Status Status `query:"status"`
	Search string `query:"search"`
}

func (f *Filter) Clean() {
	f.Type = Type(core.CleanString(string(f.Type), true /* lower */))
	f.Status = Status(core.CleanString(string(f.Status), true /* lower */))
	f.Search = core.CleanString(f.Search)
}

func (f Filter) IsEmpty() bool {
	return f.Type == "" && f.Status == "" && f.Search == ""
}

func (f Filter) Match(app Application) bool {
	if f.Type != "" && app.Type != f.Type {
		return false
	}
	if f.Status != "" && app.Status != f.Status {
		return false
	}
	if term := strings.ToLower(strings.TrimSpace(f.Search)); term != "" {
		return strings.Contains(strings.ToLower(app.FirstName), term) ||
			strings.Contains(strings.ToLower(app.LastName), term) ||
			strings.Contains(strings.ToLower(app.Email), term)
	}
	return true
}

// Apply returns the Applications matching f, in their original order. apps is never modified.
func (f Filter) Apply(apps []Application) []Application {
	filtered := make([]Application, 0, len(apps))
	for _, app := range apps {
		if f.Match(app) {
			filtered = append(filtered, app)
		}
	}
	return filtered
}

// Stats holds the dashboard counters.
type Stats struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	Approved   int `json:"approved"`
	Rejected   int `json:"rejected"`
	Language   int `json:"language"`
	Coding     int `json:"coding"`
	OfficeClub int `json:"officeClub"`
}

func Summarize(apps []Application) Stats {
	stats := Stats{Total: len(apps)}
	for _, app := range apps {
		switch app.Status {
		case StatusPending:
			stats.Pending++
		case StatusApproved:
			stats.Approved++
		case StatusRejected:
			stats.Rejected++
		}
		switch app.Type {
		case TypeLanguage:
			stats.Language++
		case TypeCoding:
			stats.Coding++
		case TypeOfficeClub:
			stats.OfficeClub++
		}
	}
	return stats
}

func cleanNullString(s null.String, lower bool) null.String {
	if !s.Valid {
		return s
	}
	val := core.CleanString(s.String, lower)
	return null.NewString(val, val != "")
}

func cleanStrings(ss []string) []string {
	if len(ss) == 0 {
		return nil
	}
	cleaned := make([]string, 0, len(ss))
	seen := make(map[string]bool, len(ss))
	for _, s := range ss {
		s = core.CleanString(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		cleaned = append(cleaned, s)
	}
	return cleaned
}
