package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/webstudio/backend/internal/domain/blog"
	"github.com/webstudio/backend/internal/domain/shared"
)

// PostModel is the persistence model for blog posts
type PostModel struct {
	AggregateModel
	Locale          shared.Locale `gorm:"type:varchar(5);not null;uniqueIndex:idx_posts_locale_slug"`
	Slug            string        `gorm:"type:varchar(120);not null;uniqueIndex:idx_posts_locale_slug"`
	Title           string        `gorm:"type:varchar(300);not null"`
	Excerpt         string        `gorm:"type:text"`
	Body            string        `gorm:"type:text"`
	CoverImageKey   string        `gorm:"type:varchar(300)"`
	Tags            StringList    `gorm:"type:text"`
	MetaDescription string        `gorm:"type:varchar(300)"`
	AuthorID        *uuid.UUID    `gorm:"type:uuid"`
	Generated       bool          `gorm:"not null;default:false"`
	Status          blog.Status   `gorm:"type:varchar(20);not null;index"`
	ScheduledAt     *time.Time    `gorm:"index"`
	PublishedAt     *time.Time    `gorm:"index"`
}

func (PostModel) TableName() string {
	return "blog_posts"
}

func (m *PostModel) ToDomain() *blog.Post {
	return &blog.Post{
		Aggregate:       m.ToAggregate(),
		Locale:          m.Locale,
		Slug:            m.Slug,
		Title:           m.Title,
		Excerpt:         m.Excerpt,
		Body:            m.Body,
		CoverImageKey:   m.CoverImageKey,
		Tags:            m.Tags.Strings(),
		MetaDescription: m.MetaDescription,
		AuthorID:        m.AuthorID,
		Generated:       m.Generated,
		Status:          m.Status,
		ScheduledAt:     toUTC(m.ScheduledAt),
		PublishedAt:     toUTC(m.PublishedAt),
	}
}

func PostModelFromDomain(p *blog.Post) *PostModel {
	m := &PostModel{
		Locale:          p.Locale,
		Slug:            p.Slug,
		Title:           p.Title,
		Excerpt:         p.Excerpt,
		Body:            p.Body,
		CoverImageKey:   p.CoverImageKey,
		Tags:            StringList(p.Tags),
		MetaDescription: p.MetaDescription,
		AuthorID:        p.AuthorID,
		Generated:       p.Generated,
		Status:          p.Status,
		ScheduledAt:     p.ScheduledAt,
		PublishedAt:     p.PublishedAt,
	}
	m.FromDomainAggregate(p.Aggregate)
	return m
}
