package blog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/webstudio/backend/internal/domain/blog"
	"github.com/webstudio/backend/internal/domain/shared"
	"go.uber.org/zap"
)

const maxSlugAttempts = 20

// Scheduler names of the recurring blog jobs
const (
	JobNamePublishDue    = "blog.publish_due"
	JobNameGenerateDaily = "blog.generate_daily"
)

// ImageResolver turns stored object keys into URLs
type ImageResolver interface {
	ImageURL(ctx context.Context, key string) string
}

// PostService manages blog posts and their publishing schedule
type PostService struct {
	repo      blog.PostRepository
	publisher shared.EventPublisher
	generator TextGenerator
	images    ImageResolver
	logger    *zap.Logger
	now       func() time.Time
}

// NewPostService creates a post service. generator and images may be nil.
func NewPostService(
	repo blog.PostRepository,
	publisher shared.EventPublisher,
	generator TextGenerator,
	images ImageResolver,
	logger *zap.Logger,
) *PostService {
	return &PostService{
		repo:      repo,
		publisher: publisher,
		generator: generator,
		images:    images,
		logger:    logger,
		now:       time.Now,
	}
}

// GenerationEnabled reports whether an AI provider is configured
func (s *PostService) GenerationEnabled() bool {
	return s.generator != nil
}

// CreatePost stores a new draft
func (s *PostService) CreatePost(ctx context.Context, input CreatePostInput) (*PostDTO, error) {
	locale, err := shared.ParseLocale(input.Locale)
	if err != nil {
		return nil, err
	}
	post, err := blog.NewPost(locale, blog.Input{
		Slug:            input.Slug,
		Title:           input.Title,
		Excerpt:         input.Excerpt,
		Body:            input.Body,
		CoverImageKey:   input.CoverImageKey,
		Tags:            input.Tags,
		MetaDescription: input.MetaDescription,
	}, input.AuthorID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureSlugFree(ctx, post, nil); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, post); err != nil {
		return nil, err
	}
	s.logger.Info("Post created", zap.String("post_id", post.ID.String()), zap.String("slug", post.Slug))
	return s.dto(ctx, post), nil
}

// UpdatePost edits a post; a published post stays published
func (s *PostService) UpdatePost(ctx context.Context, id uuid.UUID, input UpdatePostInput) (*PostDTO, error) {
	post, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := post.Update(blog.Input{
		Slug:            input.Slug,
		Title:           input.Title,
		Excerpt:         input.Excerpt,
		Body:            input.Body,
		CoverImageKey:   input.CoverImageKey,
		Tags:            input.Tags,
		MetaDescription: input.MetaDescription,
	}); err != nil {
		return nil, err
	}
	if err := s.ensureSlugFree(ctx, post, &post.ID); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, post); err != nil {
		return nil, err
	}
	return s.dto(ctx, post), nil
}

// GetPost returns any post by id
func (s *PostService) GetPost(ctx context.Context, id uuid.UUID) (*PostDTO, error) {
	post, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.dto(ctx, post), nil
}

// ListPosts is the admin list
func (s *PostService) ListPosts(ctx context.Context, input ListPostsInput) (shared.Paginated[PostDTO], error) {
	filter := shared.DefaultFilter()
	if input.Page > 0 {
		filter.Page = input.Page
	}
	if input.PageSize > 0 && input.PageSize <= 100 {
		filter.PageSize = input.PageSize
	}
	if input.OrderBy != "" {
		filter.OrderBy = input.OrderBy
	}
	if input.OrderDir != "" {
		filter.OrderDir = input.OrderDir
	}
	filter.Search = strings.TrimSpace(input.Search)
	if input.Status != "" {
		filter.Filters[blog.FilterStatus] = strings.ToLower(input.Status)
	}
	if input.Locale != "" {
		filter.Filters[blog.FilterLocale] = shared.LocaleOrDefault(input.Locale)
	}
	if input.Tag != "" {
		filter.Filters[blog.FilterTag] = strings.ToLower(strings.TrimSpace(input.Tag))
	}
	if input.Generated != nil {
		filter.Filters[blog.FilterGenerated] = *input.Generated
	}
	return s.page(ctx, filter)
}

// DeletePost removes a post
func (s *PostService) DeletePost(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return notFound(err)
	}
	s.logger.Info("Post deleted", zap.String("post_id", id.String()))
	return nil
}

// SchedulePost sets a future publish time
func (s *PostService) SchedulePost(ctx context.Context, id uuid.UUID, at time.Time) (*PostDTO, error) {
	return s.transition(ctx, id, func(p *blog.Post) error { return p.Schedule(at, s.now()) })
}

// PublishPost publishes immediately
func (s *PostService) PublishPost(ctx context.Context, id uuid.UUID) (*PostDTO, error) {
	return s.transition(ctx, id, func(p *blog.Post) error { return p.Publish(s.now()) })
}

func (s *PostService) UnpublishPost(ctx context.Context, id uuid.UUID) (*PostDTO, error) {
	return s.transition(ctx, id, (*blog.Post).Unpublish)
}

func (s *PostService) ArchivePost(ctx context.Context, id uuid.UUID) (*PostDTO, error) {
	return s.transition(ctx, id, (*blog.Post).Archive)
}

// ListPublished is the public blog index, newest first
func (s *PostService) ListPublished(ctx context.Context, locale shared.Locale, tag string, page, pageSize int) (shared.Paginated[PostDTO], error) {
	filter := shared.DefaultFilter()
	filter.OrderBy = "published_at"
	filter.OrderDir = "desc"
	if page > 0 {
		filter.Page = page
	}
	if pageSize > 0 && pageSize <= 50 {
		filter.PageSize = pageSize
	} else {
		filter.PageSize = 10
	}
	filter.Filters[blog.FilterStatus] = string(blog.StatusPublished)
	filter.Filters[blog.FilterLocale] = locale
	if tag = strings.ToLower(strings.TrimSpace(tag)); tag != "" {
		filter.Filters[blog.FilterTag] = tag
	}

	result, err := s.page(ctx, filter)
	if err != nil {
		return result, err
	}
	// the index shows excerpts only
	for i := range result.Items {
		result.Items[i].Body = ""
	}
	return result, nil
}

// GetPublishedBySlug returns a published post
func (s *PostService) GetPublishedBySlug(ctx context.Context, locale shared.Locale, slug string) (*PostDTO, error) {
	post, err := s.repo.FindBySlug(ctx, locale, slug)
	if err != nil {
		return nil, notFound(err)
	}
	if post.Status != blog.StatusPublished {
		return nil, shared.NewDomainError("NOT_FOUND", "Post not found")
	}
	return s.dto(ctx, post), nil
}

// PublishDue publishes every scheduled post whose time has come. Failures are
// logged and joined; posts already published are no longer due on a retry.
func (s *PostService) PublishDue(ctx context.Context) (int, error) {
	now := s.now()
	due, err := s.repo.FindDue(ctx, now)
	if err != nil {
		return 0, err
	}

	published := 0
	var errs []error
	for i := range due {
		post := &due[i]
		if err := post.Publish(now); err != nil {
			// not publishable as stored: back to draft so it stops being due
			s.logger.Warn("Scheduled post returned to draft", zap.String("post_id", post.ID.String()), zap.Error(err))
			if uerr := post.Unpublish(); uerr == nil {
				if serr := s.repo.Save(ctx, post); serr != nil {
					errs = append(errs, fmt.Errorf("post %s: %w", post.ID, serr))
				}
			}
			continue
		}
		if err := s.repo.Save(ctx, post); err != nil {
			s.logger.Error("Failed to publish scheduled post", zap.String("post_id", post.ID.String()), zap.Error(err))
			errs = append(errs, fmt.Errorf("post %s: %w", post.ID, err))
			continue
		}
		s.publish(ctx, post)
		published++
	}

	if published > 0 {
		s.logger.Info("Scheduled posts published", zap.Int("count", published))
	}
	return published, errors.Join(errs...)
}

// GenerateDraft asks the AI provider for an article and stores it as a generated draft
func (s *PostService) GenerateDraft(ctx context.Context, input GenerateDraftInput) (*PostDTO, error) {
	if s.generator == nil {
		return nil, shared.NewDomainError("INVALID_STATE", "AI generation is disabled")
	}
	topic := strings.TrimSpace(input.Topic)
	if topic == "" {
		return nil, shared.NewDomainError("INVALID_TOPIC", "Topic is required")
	}
	locale := shared.LocaleOrDefault(input.Locale)

	started := s.now()
	output, err := s.generator.Generate(ctx, BuildDraftPrompt(topic, locale, input.Keywords))
	if err != nil {
		s.logger.Error("Draft generation failed", zap.String("topic", topic), zap.Error(err))
		return nil, fmt.Errorf("failed to generate draft: %w", err)
	}
	title, body, err := ParseDraft(output)
	if err != nil {
		return nil, err
	}

	post, err := blog.NewGeneratedPost(locale, title, body, input.Keywords)
	if err != nil {
		return nil, err
	}
	if err := s.uniqueSlug(ctx, post); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, post); err != nil {
		return nil, err
	}

	s.logger.Info("Draft generated",
		zap.String("post_id", post.ID.String()),
		zap.String("topic", topic),
		zap.String("locale", string(locale)),
		zap.Duration("duration", s.now().Sub(started)))
	return s.dto(ctx, post), nil
}

// PublishDueJob is the recurring JobNamePublishDue job
func (s *PostService) PublishDueJob() func(context.Context) error {
	return func(ctx context.Context) error {
		_, err := s.PublishDue(ctx)
		return err
	}
}

// DailyDraftJob is the recurring JobNameGenerateDaily job. Topics rotate by day of year.
func (s *PostService) DailyDraftJob(topics []string, locale shared.Locale) func(context.Context) error {
	return func(ctx context.Context) error {
		topic, ok := TopicForDay(topics, s.now())
		if !ok || !s.GenerationEnabled() {
			s.logger.Debug("Skipping daily draft", zap.Int("topics", len(topics)), zap.Bool("ai_enabled", s.GenerationEnabled()))
			return nil
		}
		_, err := s.GenerateDraft(ctx, GenerateDraftInput{Topic: topic, Locale: string(locale)})
		return err
	}
}

// TopicForDay picks topics[dayOfYear % len(topics)]
func TopicForDay(topics []string, day time.Time) (string, bool) {
	if len(topics) == 0 {
		return "", false
	}
	return topics[day.YearDay()%len(topics)], true
}

func (s *PostService) transition(ctx context.Context, id uuid.UUID, apply func(*blog.Post) error) (*PostDTO, error) {
	post, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(post); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, post); err != nil {
		return nil, err
	}
	s.publish(ctx, post)
	return s.dto(ctx, post), nil
}

func (s *PostService) ensureSlugFree(ctx context.Context, post *blog.Post, excludeID *uuid.UUID) error {
	taken, err := s.repo.ExistsBySlug(ctx, post.Locale, post.Slug, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return shared.NewDomainError("SLUG_EXISTS", "Slug "+post.Slug+" is already used in locale "+string(post.Locale))
	}
	return nil
}

// uniqueSlug appends -2, -3 ... until the slug is free in the locale
func (s *PostService) uniqueSlug(ctx context.Context, post *blog.Post) error {
	base := post.Slug
	for n := 1; n <= maxSlugAttempts; n++ {
		candidate := base
		if n > 1 {
			candidate = fmt.Sprintf("%s-%d", base, n)
		}
		taken, err := s.repo.ExistsBySlug(ctx, post.Locale, candidate, nil)
		if err != nil {
			return err
		}
		if !taken {
			post.Slug = candidate
			return nil
		}
	}
	post.Slug = base + "-" + post.ID.String()[:8]
	return nil
}

func (s *PostService) page(ctx context.Context, filter shared.Filter) (shared.Paginated[PostDTO], error) {
	posts, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[PostDTO]{}, err
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return shared.Paginated[PostDTO]{}, err
	}
	items := make([]PostDTO, len(posts))
	for i := range posts {
		items[i] = *s.dto(ctx, &posts[i])
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

func (s *PostService) find(ctx context.Context, id uuid.UUID) (*blog.Post, error) {
	post, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return post, nil
}

func (s *PostService) publish(ctx context.Context, post *blog.Post) {
	if err := shared.PublishAndClear(ctx, s.publisher, post); err != nil {
		s.logger.Warn("Failed to publish post events", zap.String("post_id", post.ID.String()), zap.Error(err))
	}
}

func (s *PostService) dto(ctx context.Context, post *blog.Post) *PostDTO {
	dto := ToPostDTO(post)
	if s.images != nil && post.CoverImageKey != "" {
		dto.CoverImageURL = s.images.ImageURL(ctx, post.CoverImageKey)
	}
	return &dto
}

func notFound(err error) error {
	if errors.Is(err, shared.ErrNotFound) {
		return shared.WrapDomainError("NOT_FOUND", "Post not found", err)
	}
	return err
}
