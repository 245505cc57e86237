package handler

import (
	"github.com/gin-gonic/gin"
	appidentity "github.com/webstudio/backend/internal/application/identity"
	"go.uber.org/zap"
)

// UserHandler handles admin user management
type UserHandler struct {
	BaseHandler
	userService *appidentity.UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService *appidentity.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		BaseHandler: BaseHandler{logger: logger},
		userService: userService,
	}
}

// Create godoc
// @ID           createUser
// @Summary      Create user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreateUserRequest true "User data"
// @Success      201 {object} APIResponse[appidentity.UserDTO]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Router       /admin/users [post]
func (h *UserHandler) Create(c *gin.Context) {
	var req CreateUserRequest
	if !h.BindJSON(c, &req) {
		return
	}

	user, err := h.userService.Create(c.Request.Context(), appidentity.CreateUserInput{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, user)
}

// List godoc
// @ID           listUsers
// @Summary      List users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        search     query string false "Search in name and email"
// @Param        role       query string false "Role filter" Enums(admin, editor)
// @Param        active     query bool   false "Active filter"
// @Param        page       query int    false "Page number" default(1)
// @Param        page_size  query int    false "Page size" default(20)
// @Param        sort_by    query string false "Sort field" default(created_at)
// @Param        sort_order query string false "Sort order" Enums(asc, desc)
// @Success      200 {object} ListResponse[appidentity.UserDTO]
// @Failure      400 {object} ErrorResponse
// @Router       /admin/users [get]
func (h *UserHandler) List(c *gin.Context) {
	var q ListUsersQuery
	if !h.BindQuery(c, &q) {
		return
	}

	result, err := h.userService.List(c.Request.Context(), appidentity.ListUsersInput{
		Search:    q.Search,
		Role:      q.Role,
		Active:    q.Active,
		Page:      q.Page,
		PageSize:  q.PageSize,
		SortBy:    q.SortBy,
		SortOrder: q.SortOrder,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Users, result.Total, result.Page, result.PageSize)
}

// Get godoc
// @ID           getUser
// @Summary      Get user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "User ID" format(uuid)
// @Success      200 {object} APIResponse[appidentity.UserDTO]
// @Failure      404 {object} ErrorResponse
// @Router       /admin/users/{id} [get]
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, user)
}

// Update godoc
// @ID           updateUser
// @Summary      Update user
// @Description  Update name and role. A role change ends the user's sessions.
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path string            true "User ID" format(uuid)
// @Param        request body UpdateUserRequest true "User data"
// @Success      200 {object} APIResponse[appidentity.UserDTO]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /admin/users/{id} [put]
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req UpdateUserRequest
	if !h.BindJSON(c, &req) {
		return
	}

	user, err := h.userService.Update(c.Request.Context(), id, appidentity.UpdateUserInput{
		Name: req.Name,
		Role: req.Role,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, user)
}

// Delete godoc
// @ID           deleteUser
// @Summary      Delete user
// @Tags         users
// @Security     BearerAuth
// @Param        id path string true "User ID" format(uuid)
// @Success      204
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /admin/users/{id} [delete]
func (h *UserHandler) Delete(c *gin.Context) {
	actorID, ok := h.requireUserID(c)
	if !ok {
		return
	}
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	if err := h.userService.Delete(c.Request.Context(), actorID, id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Activate godoc
// @ID           activateUser
// @Summary      Activate user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "User ID" format(uuid)
// @Success      200 {object} APIResponse[appidentity.UserDTO]
// @Failure      422 {object} ErrorResponse
// @Router       /admin/users/{id}/activate [post]
func (h *UserHandler) Activate(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	user, err := h.userService.Activate(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, user)
}

// Deactivate godoc
// @ID           deactivateUser
// @Summary      Deactivate user
// @Description  Deactivate a user and end their sessions
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "User ID" format(uuid)
// @Success      200 {object} APIResponse[appidentity.UserDTO]
// @Failure      403 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /admin/users/{id}/deactivate [post]
func (h *UserHandler) Deactivate(c *gin.Context) {
	actorID, ok := h.requireUserID(c)
	if !ok {
		return
	}
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	user, err := h.userService.Deactivate(c.Request.Context(), actorID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, user)
}
