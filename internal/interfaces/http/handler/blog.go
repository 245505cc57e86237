package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	blogapp "github.com/webstudio/backend/internal/application/blog"
	"go.uber.org/zap"
)

// BlogHandler handles admin blog endpoints
type BlogHandler struct {
	BaseHandler
	postService *blogapp.PostService
}

// NewBlogHandler creates a new BlogHandler
func NewBlogHandler(postService *blogapp.PostService, logger *zap.Logger) *BlogHandler {
	return &BlogHandler{
		BaseHandler: BaseHandler{logger: logger},
		postService: postService,
	}
}

// Create godoc
// @ID           createPost
// @Summary      Create post
// @Description  Create a draft. A missing slug is derived from the title.
// @Tags         blog
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreatePostRequest true "Post"
// @Success      201 {object} APIResponse[blogapp.PostDTO]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Router       /admin/blog [post]
func (h *BlogHandler) Create(c *gin.Context) {
	var req CreatePostRequest
	if !h.BindJSON(c, &req) {
		return
	}

	input := blogapp.CreatePostInput{
		Locale:          localeOrDefault(req.Locale),
		Slug:            req.Slug,
		Title:           req.Title,
		Excerpt:         req.Excerpt,
		Body:            req.Body,
		CoverImageKey:   req.CoverImageKey,
		Tags:            req.Tags,
		MetaDescription: req.MetaDescription,
	}
	if authorID, err := getUserID(c); err == nil {
		input.AuthorID = &authorID
	}

	post, err := h.postService.CreatePost(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, post)
}

// List godoc
// @ID           listPosts
// @Summary      List posts
// @Tags         blog
// @Produce      json
// @Security     BearerAuth
// @Param        status    query string false "Status" Enums(draft, scheduled, published, archived)
// @Param        locale    query string false "Locale" Enums(cs, de, en)
// @Param        tag       query string false "Tag"
// @Param        generated query bool   false "Only AI generated drafts"
// @Param        search    query string false "Search in title"
// @Param        page      query int    false "Page number" default(1)
// @Param        page_size query int    false "Page size" default(20)
// @Success      200 {object} ListResponse[blogapp.PostDTO]
// @Router       /admin/blog [get]
func (h *BlogHandler) List(c *gin.Context) {
	var q ListPostsQuery
	if !h.BindQuery(c, &q) {
		return
	}

	page, err := h.postService.ListPosts(c.Request.Context(), blogapp.ListPostsInput{
		Status:    q.Status,
		Locale:    q.Locale,
		Tag:       q.Tag,
		Generated: q.Generated,
		Search:    q.Search,
		Page:      q.Page,
		PageSize:  q.PageSize,
		OrderBy:   q.OrderBy,
		OrderDir:  q.OrderDir,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	successPage(&h.BaseHandler, c, page)
}

// Get godoc
// @ID           getPost
// @Summary      Get post
// @Tags         blog
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Post ID" format(uuid)
// @Success      200 {object} APIResponse[blogapp.PostDTO]
// @Failure      404 {object} ErrorResponse
// @Router       /admin/blog/{id} [get]
func (h *BlogHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	post, err := h.postService.GetPost(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, post)
}

// Update godoc
// @ID           updatePost
// @Summary      Update post
// @Tags         blog
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path string            true "Post ID" format(uuid)
// @Param        request body UpdatePostRequest true "Post"
// @Success      200 {object} APIResponse[blogapp.PostDTO]
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Router       /admin/blog/{id} [put]
func (h *BlogHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req UpdatePostRequest
	if !h.BindJSON(c, &req) {
		return
	}

	post, err := h.postService.UpdatePost(c.Request.Context(), id, blogapp.UpdatePostInput{
		Slug:            req.Slug,
		Title:           req.Title,
		Excerpt:         req.Excerpt,
		Body:            req.Body,
		CoverImageKey:   req.CoverImageKey,
		Tags:            req.Tags,
		MetaDescription: req.MetaDescription,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, post)
}

// Delete godoc
// @ID           deletePost
// @Summary      Delete post
// @Tags         blog
// @Security     BearerAuth
// @Param        id path string true "Post ID" format(uuid)
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Router       /admin/blog/{id} [delete]
func (h *BlogHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	if err := h.postService.DeletePost(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Schedule godoc
// @ID           schedulePost
// @Summary      Schedule post
// @Description  Publish the post automatically at the given time, which must be in the future
// @Tags         blog
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path string              true "Post ID" format(uuid)
// @Param        request body SchedulePostRequest true "Publish time"
// @Success      200 {object} APIResponse[blogapp.PostDTO]
// @Failure      422 {object} ErrorResponse
// @Router       /admin/blog/{id}/schedule [post]
func (h *BlogHandler) Schedule(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req SchedulePostRequest
	if !h.BindJSON(c, &req) {
		return
	}

	post, err := h.postService.SchedulePost(c.Request.Context(), id, req.PublishAt)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, post)
}

// Publish godoc
// @ID           publishPost
// @Summary      Publish post now
// @Tags         blog
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Post ID" format(uuid)
// @Success      200 {object} APIResponse[blogapp.PostDTO]
// @Failure      422 {object} ErrorResponse
// @Router       /admin/blog/{id}/publish [post]
func (h *BlogHandler) Publish(c *gin.Context) {
	h.transition(c, h.postService.PublishPost)
}

// Unpublish godoc
// @ID           unpublishPost
// @Summary      Move post back to draft
// @Tags         blog
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Post ID" format(uuid)
// @Success      200 {object} APIResponse[blogapp.PostDTO]
// @Failure      422 {object} ErrorResponse
// @Router       /admin/blog/{id}/unpublish [post]
func (h *BlogHandler) Unpublish(c *gin.Context) {
	h.transition(c, h.postService.UnpublishPost)
}

// Archive godoc
// @ID           archivePost
// @Summary      Archive post
// @Tags         blog
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Post ID" format(uuid)
// @Success      200 {object} APIResponse[blogapp.PostDTO]
// @Failure      422 {object} ErrorResponse
// @Router       /admin/blog/{id}/archive [post]
func (h *BlogHandler) Archive(c *gin.Context) {
	h.transition(c, h.postService.ArchivePost)
}

// Generate godoc
// @ID           generatePost
// @Summary      Generate draft with AI
// @Description  Ask the configured AI provider for an article and store it as a draft for review
// @Tags         blog
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body GenerateDraftRequest true "Topic"
// @Success      201 {object} APIResponse[blogapp.PostDTO]
// @Failure      400 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Router       /admin/blog/generate [post]
func (h *BlogHandler) Generate(c *gin.Context) {
	var req GenerateDraftRequest
	if !h.BindJSON(c, &req) {
		return
	}

	post, err := h.postService.GenerateDraft(c.Request.Context(), blogapp.GenerateDraftInput{
		Topic:    req.Topic,
		Locale:   localeOrDefault(req.Locale),
		Keywords: req.Keywords,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, post)
}

func (h *BlogHandler) transition(c *gin.Context, apply func(ctx context.Context, id uuid.UUID) (*blogapp.PostDTO, error)) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	post, err := apply(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, post)
}
