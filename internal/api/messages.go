package api

import "time"

// Tokens is an issued access/refresh pair.
type Tokens struct {
	AccessToken      string    `json:"access_token"`
	RefreshToken     string    `json:"refresh_token"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

// User is the public view of an account.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName *string   `json:"first_name,omitempty"`
	LastName  *string   `json:"last_name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Visibility  string    `json:"visibility"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

type Issue struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"project_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Member struct {
	UserID    string    `json:"user_id"`
	ProjectID string    `json:"project_id"`
	Role      string    `json:"role"`
	JoinedAt  time.Time `json:"joined_at"`
}

// Empty is used by calls with no payload.
type Empty struct{}

// --- auth ---

type RegisterRequest struct {
	Username  string  `json:"username" validate:"required,max=64"`
	Email     string  `json:"email" validate:"required,email"`
	Password  string  `json:"password" validate:"required,max=1024"`
	FirstName *string `json:"first_name,omitempty" validate:"omitempty,max=128"`
	LastName  *string `json:"last_name,omitempty" validate:"omitempty,max=128"`
}

type RegisterResponse struct {
	User   User   `json:"user"`
	Tokens Tokens `json:"tokens"`
}

// LoginRequest identifies the account by username or email.
type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

type LoginResponse struct {
	User   User   `json:"user"`
	Tokens Tokens `json:"tokens"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type RefreshResponse struct {
	Tokens Tokens `json:"tokens"`
}

// --- users ---

type ListUsersResponse struct {
	Users []User `json:"users"`
}

// IDRequest addresses a single entity by id.
type IDRequest struct {
	ID string `json:"id" validate:"required,uuid"`
}

type UserResponse struct {
	User User `json:"user"`
}

// --- projects ---

type CreateProjectRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"max=4000"`
}

type UpdateProjectRequest struct {
	ID          string  `json:"id" validate:"required,uuid"`
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=4000"`
	Status      *string `json:"status,omitempty" validate:"omitempty,oneof=Draft Active Archived"`
	Visibility  *string `json:"visibility,omitempty" validate:"omitempty,oneof=Public Private Unlisted"`
}

type ProjectResponse struct {
	Project Project `json:"project"`
}

type ListProjectsResponse struct {
	Projects []Project `json:"projects"`
}

// --- issues ---

type CreateIssueRequest struct {
	ProjectID   string `json:"project_id" validate:"required,uuid"`
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=10000"`
}

type ListIssuesRequest struct {
	ProjectID string `json:"project_id" validate:"required,uuid"`
}

type UpdateIssueRequest struct {
	ID          string  `json:"id" validate:"required,uuid"`
	Title       *string `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=10000"`
	Status      *string `json:"status,omitempty" validate:"omitempty,oneof=Open InProgress Closed"`
}

type IssueResponse struct {
	Issue Issue `json:"issue"`
}

type ListIssuesResponse struct {
	Issues []Issue `json:"issues"`
}

// --- members ---

type AddMemberRequest struct {
	ProjectID string `json:"project_id" validate:"required,uuid"`
	UserID    string `json:"user_id" validate:"required,uuid"`
	Role      string `json:"role" validate:"required,oneof=Owner Maintainer Contributor Viewer"`
}

type MemberResponse struct {
	Member Member `json:"member"`
}

type ListMembersRequest struct {
	ProjectID string `json:"project_id" validate:"required,uuid"`
}

type ListMembersResponse struct {
	Members []Member `json:"members"`
}

type RemoveMemberRequest struct {
	ProjectID string `json:"project_id" validate:"required,uuid"`
	UserID    string `json:"user_id" validate:"required,uuid"`
}

type RemoveMemberResponse struct {
	Removed int `json:"removed"`
}
