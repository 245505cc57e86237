package blog

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/webstudio/backend/internal/domain/shared"
)

// Status of a blog post
type Status string

const (
	StatusDraft     Status = "draft"
	StatusScheduled Status = "scheduled"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

// IsValid reports whether s is a known status
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusScheduled, StatusPublished, StatusArchived:
		return true
	}
	return false
}

const maxExcerptRunes = 280

// Post is a blog article in one locale
type Post struct {
	shared.Aggregate
	Locale          shared.Locale
	Slug            string
	Title           string
	Excerpt         string
	Body            string
	CoverImageKey   string
	Tags            []string
	MetaDescription string
	AuthorID        *uuid.UUID
	Generated       bool
	Status          Status
	ScheduledAt     *time.Time
	PublishedAt     *time.Time
}

// Input carries the editable fields of a Post
type Input struct {
	Slug            string
	Title           string
	Excerpt         string
	Body            string
	CoverImageKey   string
	Tags            []string
	MetaDescription string
}

// NewPost creates a draft
func NewPost(locale shared.Locale, in Input, authorID *uuid.UUID) (*Post, error) {
	if !locale.IsValid() {
		return nil, shared.NewDomainError("INVALID_LOCALE", "Unsupported locale")
	}
	p := &Post{
		Aggregate: shared.NewAggregate(),
		Locale:    locale,
		AuthorID:  authorID,
		Status:    StatusDraft,
	}
	if err := p.apply(in); err != nil {
		return nil, err
	}
	return p, nil
}

// NewGeneratedPost creates a draft from AI output and marks it as generated
func NewGeneratedPost(locale shared.Locale, title, body string, tags []string) (*Post, error) {
	p, err := NewPost(locale, Input{Title: title, Body: body, Tags: tags}, nil)
	if err != nil {
		return nil, err
	}
	p.Generated = true
	return p, nil
}

// Update replaces editable fields. Archived posts are read-only.
func (p *Post) Update(in Input) error {
	if p.Status == StatusArchived {
		return shared.NewDomainError("INVALID_STATE", "Archived posts cannot be edited")
	}
	if p.Status == StatusPublished && in.Slug != "" && in.Slug != p.Slug {
		return shared.NewDomainError("INVALID_STATE", "Slug of a published post cannot change")
	}
	if strings.TrimSpace(in.Body) == "" && (p.Status == StatusScheduled || p.Status == StatusPublished) {
		return errEmptyBody(p.Status)
	}
	if err := p.apply(in); err != nil {
		return err
	}
	p.Touch()
	return nil
}

func errEmptyBody(status Status) error {
	return shared.NewDomainError("EMPTY_BODY", fmt.Sprintf("A %s post needs content", status))
}

func (p *Post) apply(in Input) error {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return shared.NewDomainError("INVALID_TITLE", "Title is required")
	}
	if utf8.RuneCountInString(title) > 200 {
		return shared.NewDomainError("INVALID_TITLE", "Title cannot exceed 200 characters")
	}
	slug := in.Slug
	if slug == "" && p.Slug != "" {
		slug = p.Slug
	}
	slug, err := shared.NormalizeSlug(slug, title)
	if err != nil {
		return err
	}

	p.Title = title
	p.Slug = slug
	p.Body = strings.TrimSpace(in.Body)
	p.Excerpt = strings.TrimSpace(in.Excerpt)
	if p.Excerpt == "" {
		p.Excerpt = ExcerptFrom(p.Body)
	}
	p.MetaDescription = strings.TrimSpace(in.MetaDescription)
	if p.MetaDescription == "" {
		p.MetaDescription = truncateRunes(p.Excerpt, 160)
	}
	p.CoverImageKey = strings.TrimSpace(in.CoverImageKey)
	p.Tags = normalizeTags(in.Tags)
	return nil
}

// Schedule sets a future publish time on a draft or scheduled post
func (p *Post) Schedule(at, now time.Time) error {
	if p.Status != StatusDraft && p.Status != StatusScheduled {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot schedule a post in status %s", p.Status))
	}
	if !at.After(now) {
		return shared.NewDomainError("INVALID_SCHEDULE", "Scheduled time must be in the future")
	}
	if p.Body == "" {
		return errEmptyBody(StatusScheduled)
	}
	at = at.UTC()
	p.ScheduledAt = &at
	p.Status = StatusScheduled
	p.Touch()
	return nil
}

// Publish makes a draft or scheduled post public. PublishedAt is set only the first time.
func (p *Post) Publish(now time.Time) error {
	if p.Status != StatusDraft && p.Status != StatusScheduled {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot publish a post in status %s", p.Status))
	}
	if p.Body == "" {
		return shared.NewDomainError("EMPTY_BODY", "Cannot publish a post without content")
	}
	if p.PublishedAt == nil {
		now = now.UTC()
		p.PublishedAt = &now
	}
	p.Status = StatusPublished
	p.ScheduledAt = nil
	p.Touch()

	p.Record(NewPostPublishedEvent(p))
	return nil
}

// Unpublish returns a published or scheduled post to draft
func (p *Post) Unpublish() error {
	if p.Status != StatusPublished && p.Status != StatusScheduled {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot unpublish a post in status %s", p.Status))
	}
	p.Status = StatusDraft
	p.ScheduledAt = nil
	p.Touch()
	return nil
}

// Archive hides the post from every listing
func (p *Post) Archive() error {
	if p.Status == StatusArchived {
		return shared.NewDomainError("INVALID_STATE", "Post is already archived")
	}
	p.Status = StatusArchived
	p.ScheduledAt = nil
	p.Touch()
	return nil
}

// IsDue reports whether a scheduled post should be published at now
func (p *Post) IsDue(now time.Time) bool {
	return p.Status == StatusScheduled && p.ScheduledAt != nil && !p.ScheduledAt.After(now)
}

// ReadingMinutes estimates reading time at 200 words per minute, at least one
func (p *Post) ReadingMinutes() int {
	words := len(strings.Fields(p.Body))
	m := (words + 199) / 200
	if m < 1 {
		m = 1
	}
	return m
}

// ExcerptFrom takes the first non-heading paragraph of a markdown body
func ExcerptFrom(body string) string {
	for _, para := range strings.Split(strings.ReplaceAll(body, "\r\n", "\n"), "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" || strings.HasPrefix(para, "#") {
			continue
		}
		para = strings.Join(strings.Fields(para), " ")
		return truncateRunes(para, maxExcerptRunes)
	}
	return ""
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)[:max-1]
	cut := string(r)
	if i := strings.LastIndex(cut, " "); i > max/2 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,.;:") + "…"
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
