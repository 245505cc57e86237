package lead

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/webstudio/backend/internal/domain/shared"
)

// Status is the position of a lead in the sales pipeline
type Status string

const (
	StatusNew       Status = "new"
	StatusContacted Status = "contacted"
	StatusQualified Status = "qualified"
	StatusWon       Status = "won"
	StatusLost      Status = "lost"
)

// AllStatuses lists pipeline statuses in order
var AllStatuses = []Status{StatusNew, StatusContacted, StatusQualified, StatusWon, StatusLost}

var transitions = map[Status][]Status{
	StatusNew:       {StatusContacted, StatusLost},
	StatusContacted: {StatusQualified, StatusLost},
	StatusQualified: {StatusWon, StatusLost},
	StatusLost:      {StatusNew},
	StatusWon:       {},
}

// IsValid reports whether s is a known status
func (s Status) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

// CanTransitionTo reports whether the pipeline allows moving from s to next
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Source tells where a lead came from
type Source string

const (
	SourceContactForm Source = "contact_form"
	SourceAudit       Source = "audit"
	SourceLanding     Source = "landing"
	SourceManual      Source = "manual"
)

// IsValid reports whether s is a known source
func (s Source) IsValid() bool {
	switch s {
	case SourceContactForm, SourceAudit, SourceLanding, SourceManual:
		return true
	}
	return false
}

var phonePattern = regexp.MustCompile(`^\+?[0-9 ()\-]{6,25}$`)

// IsValidPhone accepts digits with optional leading + and common separators
func IsValidPhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

// Lead is an inquiry captured from the site or entered by hand
type Lead struct {
	shared.Aggregate
	Name            string
	Email           string
	Phone           string
	Company         string
	Website         string
	Message         string
	ServiceInterest string
	CitySlug        string
	Source          Source
	Locale          shared.Locale
	Status          Status
	Notes           string
	AuditID         *uuid.UUID
	ConsentGiven    bool
	ContactedAt     *time.Time
	ClosedAt        *time.Time
}

// Contact groups the person-facing fields of a lead
type Contact struct {
	Name    string
	Email   string
	Phone   string
	Company string
	Website string
	Message string
}

// Option sets optional context on a new lead
type Option func(*Lead)

// WithInterest records which service and city the lead asked about
func WithInterest(serviceSlug, citySlug string) Option {
	return func(l *Lead) {
		l.ServiceInterest = strings.TrimSpace(serviceSlug)
		l.CitySlug = strings.TrimSpace(citySlug)
	}
}

// WithAudit ties the lead to the website audit that produced it
func WithAudit(auditID uuid.UUID) Option {
	return func(l *Lead) {
		l.AuditID = &auditID
	}
}

// NewLead validates contact details and creates a lead in status new
func NewLead(contact Contact, source Source, locale shared.Locale, opts ...Option) (*Lead, error) {
	if !source.IsValid() {
		return nil, shared.NewDomainError("INVALID_SOURCE", "Unknown lead source")
	}
	if !locale.IsValid() {
		locale = shared.DefaultLocale
	}

	l := &Lead{
		Aggregate: shared.NewAggregate(),
		Source:    source,
		Locale:    locale,
		Status:    StatusNew,
	}
	if err := l.applyContact(contact); err != nil {
		return nil, err
	}
	for _, opt := range opts {
		opt(l)
	}

	l.Record(NewLeadSubmittedEvent(l))
	return l, nil
}

// NewPublicLead is NewLead for anonymous site visitors, who must give consent
func NewPublicLead(contact Contact, source Source, locale shared.Locale, consent bool, opts ...Option) (*Lead, error) {
	if !consent {
		return nil, shared.NewDomainError("CONSENT_REQUIRED", "Consent to personal data processing is required")
	}
	opts = append(opts, func(l *Lead) { l.ConsentGiven = true })
	return NewLead(contact, source, locale, opts...)
}

// SetInterest changes the service and city the lead asked about
func (l *Lead) SetInterest(serviceSlug, citySlug string) {
	WithInterest(serviceSlug, citySlug)(l)
	l.Touch()
}

// UpdateContact replaces the contact fields
func (l *Lead) UpdateContact(contact Contact) error {
	if err := l.applyContact(contact); err != nil {
		return err
	}
	l.Touch()
	return nil
}

func (l *Lead) applyContact(c Contact) error {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Name is required")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Name cannot exceed 200 characters")
	}

	email := strings.ToLower(strings.TrimSpace(c.Email))
	phone := strings.TrimSpace(c.Phone)
	if email == "" && phone == "" {
		return shared.NewDomainError("CONTACT_REQUIRED", "Email or phone is required")
	}
	if email != "" {
		if err := shared.ValidateEmail(email); err != nil {
			return err
		}
	}
	if phone != "" && !IsValidPhone(phone) {
		return shared.NewDomainError("INVALID_PHONE", "Invalid phone number")
	}
	if len(c.Message) > 5000 {
		return shared.NewDomainError("INVALID_MESSAGE", "Message cannot exceed 5000 characters")
	}

	l.Name = name
	l.Email = email
	l.Phone = phone
	l.Company = strings.TrimSpace(c.Company)
	l.Website = strings.TrimSpace(c.Website)
	l.Message = strings.TrimSpace(c.Message)
	return nil
}

// ChangeStatus moves the lead along the pipeline
func (l *Lead) ChangeStatus(next Status, at time.Time) error {
	if !next.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Unknown lead status")
	}
	if !l.Status.CanTransitionTo(next) {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot change lead status from %s to %s", l.Status, next))
	}

	at = at.UTC()
	prev := l.Status
	l.Status = next
	switch next {
	case StatusContacted:
		if l.ContactedAt == nil {
			l.ContactedAt = &at
		}
	case StatusWon, StatusLost:
		l.ClosedAt = &at
	case StatusNew:
		l.ClosedAt = nil
	}
	l.Touch()

	l.Record(NewLeadStatusChangedEvent(l, prev))
	return nil
}

// AppendNote adds a timestamped line to the notes
func (l *Lead) AppendNote(author, note string, at time.Time) error {
	note = strings.TrimSpace(note)
	if note == "" {
		return shared.NewDomainError("INVALID_NOTE", "Note cannot be empty")
	}
	line := fmt.Sprintf("[%s] %s: %s", at.UTC().Format("2006-01-02 15:04"), author, note)
	if l.Notes == "" {
		l.Notes = line
	} else {
		l.Notes = l.Notes + "\n" + line
	}
	l.Touch()
	return nil
}

// IsClosed reports whether the lead is won or lost
func (l *Lead) IsClosed() bool {
	return l.Status == StatusWon || l.Status == StatusLost
}
