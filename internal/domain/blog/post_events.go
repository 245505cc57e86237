package blog

import "github.com/webstudio/backend/internal/domain/shared"

// AggregateTypePost is the aggregate type for post events
const AggregateTypePost = "Post"

// EventTypePostPublished is emitted when a post goes live
const EventTypePostPublished = "PostPublished"

// PostPublishedEvent is published when a post becomes public
type PostPublishedEvent struct {
	shared.EventMeta
	Slug      string        `json:"slug"`
	Title     string        `json:"title"`
	Locale    shared.Locale `json:"locale"`
	Generated bool          `json:"generated"`
}

// NewPostPublishedEvent creates a new PostPublishedEvent
func NewPostPublishedEvent(p *Post) *PostPublishedEvent {
	return &PostPublishedEvent{
		EventMeta: shared.NewEventMeta(EventTypePostPublished, AggregateTypePost, p.ID),
		Slug:      p.Slug,
		Title:     p.Title,
		Locale:    p.Locale,
		Generated: p.Generated,
	}
}
