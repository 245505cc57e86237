package handler

// ============================================================================
// User Request DTOs
// ============================================================================

// CreateUserRequest represents a request to create an admin user
// @Description Create user request
type CreateUserRequest struct {
	Email    string `json:"email" binding:"required,email,max=254" example:"editor@webstudio.cz"`
	Name     string `json:"name" binding:"required,min=1,max=100" example:"Jana Nováková"`
	Password string `json:"password" binding:"required,min=8,max=128"`
	Role     string `json:"role" binding:"required,oneof=admin editor" example:"editor"`
}

// UpdateUserRequest represents a request to update a user
// @Description Update user request
type UpdateUserRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
	Role string `json:"role" binding:"required,oneof=admin editor"`
}

// ListUsersQuery represents query parameters for listing users
// @Description User list filters
type ListUsersQuery struct {
	Search    string `form:"search"`
	Role      string `form:"role" binding:"omitempty,oneof=admin editor"`
	Active    *bool  `form:"active"`
	Page      int    `form:"page" binding:"omitempty,min=1"`
	PageSize  int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	SortBy    string `form:"sort_by"`
	SortOrder string `form:"sort_order" binding:"omitempty,oneof=asc desc"`
}
