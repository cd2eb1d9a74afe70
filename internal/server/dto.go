package server

import (
	"newsdesk/internal/domain"
)

// Request payloads

type RegisterRequest struct {
	Email    string `json:"email" format:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email" format:"email"`
	Password string `json:"password"`
}

type CreateArticleRequest struct {
	Title      string  `json:"title"`
	Slug       string  `json:"slug"`
	Summary    *string `json:"summary,omitempty"`
	Body       *string `json:"body,omitempty"`
	CategoryID *int64  `json:"category_id,omitempty"`
	PublishAt  *string `json:"publish_at,omitempty" format:"date-time"`
	SourceURL  *string `json:"source_url,omitempty"`
}

type UpdateArticleRequest struct {
	Title           *string `json:"title,omitempty"`
	Slug            *string `json:"slug,omitempty"`
	Summary         *string `json:"summary,omitempty"`
	Body            *string `json:"body,omitempty"`
	CategoryID      *int64  `json:"category_id,omitempty"`
	Status          *string `json:"status,omitempty" enum:"draft,pending_review,rejected,published,archived"`
	RejectionReason *string `json:"rejection_reason,omitempty"`
	PublishAt       *string `json:"publish_at,omitempty" format:"date-time"`
	SourceURL       *string `json:"source_url,omitempty"`
}

type CreateCategoryRequest struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
}

type UpdateCategoryRequest struct {
	Name        *string `json:"name,omitempty"`
	Slug        *string `json:"slug,omitempty"`
	Description *string `json:"description,omitempty"`
}

type CreateCommentRequest struct {
	Content string `json:"content"`
}

type CreateMediaRequest struct {
	URL      string `json:"url"`
	MimeType string `json:"mime_type,omitempty"`
	Size     int64  `json:"size,omitempty"`
}

type UpdateUserRoleRequest struct {
	Role string `json:"role" enum:"reader,author,editor,admin"`
}

type CreateUserRequest struct {
	Email    string `json:"email" format:"email"`
	Username string `json:"username,omitempty"`
	Password string `json:"password"`
	Role     string `json:"role" enum:"reader,author,editor,admin"`
}

type UpdateUserRequest struct {
	Email    *string `json:"email,omitempty" format:"email"`
	Username *string `json:"username,omitempty"`
	Password *string `json:"password,omitempty"`
	Role     *string `json:"role,omitempty" enum:"reader,author,editor,admin"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// Response payloads

type TokenResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type UserResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email" format:"email"`
	Username  string `json:"username,omitempty"`
	Role      string `json:"role" enum:"reader,author,editor,admin"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at" format:"date-time"`
}

type ArticleListResponse struct {
	Items []domain.Article `json:"items"`
	Total int              `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}

func toUserResponse(u domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		Role:      string(u.Role),
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

func toUserResponses(users []domain.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return out
}
