package handler

import "github.com/chamomile/taskboard/internal/core/domain"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// messageResponse is the envelope for mutations that return no resource body.
type messageResponse struct {
	Message string `json:"message"`
}

// --- Auth ---

// registerRequest carries the signup payload. Nickname is the honeypot field
// and Timestamp the client-recorded form-render time; both are consumed by the
// signup gate middleware and ignored here.
type registerRequest struct {
	Email     string `json:"email"     validate:"required,email"`
	Password  string `json:"password"  validate:"required,min=8"`
	Nickname  string `json:"nickname,omitempty"`
	Timestamp int64  `json:"timestamp,omitempty"`
}

type registerResponse struct {
	Message string `json:"message"`
	UserID  int64  `json:"userId"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

// userResponse is the public projection of an account: never the hash.
type userResponse struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

type loginResponse struct {
	Message string       `json:"message"`
	Token   string       `json:"token"`
	User    userResponse `json:"user"`
}

// --- Tasks ---

type createTaskRequest struct {
	Title       string `json:"title"       validate:"required"`
	Description string `json:"description,omitempty"`
}

// updateTaskRequest is a partial update: absent fields stay untouched.
type updateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status" validate:"omitempty,oneof=todo doing done"`
}

type taskResponse struct {
	Task *domain.Task `json:"task"`
}

type taskListResponse struct {
	Tasks []domain.Task `json:"tasks"`
}
