package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/daniellescalera/user-management/internal/application"
	"github.com/daniellescalera/user-management/internal/domain/entity"
	"github.com/daniellescalera/user-management/internal/interface/middleware"
	"github.com/daniellescalera/user-management/pkg/pagination"
)

// registerRequest is shared by self-service signup and admin creation.
type registerRequest struct {
	Email              string `json:"email" binding:"required"`
	Password           string `json:"password" binding:"required"`
	Nickname           string `json:"nickname" binding:"omitempty,nickname"`
	FirstName          string `json:"first_name" binding:"max=100"`
	LastName           string `json:"last_name" binding:"max=100"`
	Bio                string `json:"bio" binding:"max=500"`
	ProfilePictureURL  string `json:"profile_picture_url"`
	LinkedInProfileURL string `json:"linkedin_profile_url"`
	GitHubProfileURL   string `json:"github_profile_url"`
	IsProfessional     bool   `json:"is_professional"`
	Role               string `json:"role"`
}

func (r registerRequest) input() application.RegisterInput {
	return application.RegisterInput{
		Email:              r.Email,
		Password:           r.Password,
		Nickname:           r.Nickname,
		FirstName:          r.FirstName,
		LastName:           r.LastName,
		Bio:                r.Bio,
		ProfilePictureURL:  r.ProfilePictureURL,
		LinkedInProfileURL: r.LinkedInProfileURL,
		GitHubProfileURL:   r.GitHubProfileURL,
		IsProfessional:     r.IsProfessional,
		Role:               r.Role,
	}
}

type updateUserRequest struct {
	Email              *string `json:"email"`
	Nickname           *string `json:"nickname" binding:"omitempty,nickname"`
	FirstName          *string `json:"first_name" binding:"omitempty,max=100"`
	LastName           *string `json:"last_name" binding:"omitempty,max=100"`
	Bio                *string `json:"bio" binding:"omitempty,max=500"`
	ProfilePictureURL  *string `json:"profile_picture_url"`
	LinkedInProfileURL *string `json:"linkedin_profile_url"`
	GitHubProfileURL   *string `json:"github_profile_url"`
	IsProfessional     *bool   `json:"is_professional"`
	Role               *string `json:"role"`
}

func (r updateUserRequest) input() application.UpdateInput {
	return application.UpdateInput{
		Email:              r.Email,
		Nickname:           r.Nickname,
		FirstName:          r.FirstName,
		LastName:           r.LastName,
		Bio:                r.Bio,
		ProfilePictureURL:  r.ProfilePictureURL,
		LinkedInProfileURL: r.LinkedInProfileURL,
		GitHubProfileURL:   r.GitHubProfileURL,
		IsProfessional:     r.IsProfessional,
		Role:               r.Role,
	}
}

type listQuery struct {
	Skip  int `form:"skip" binding:"gte=0"`
	Limit int `form:"limit" binding:"gte=0"`
}

// userResponse is the public view of an account. Password hash and
// verification token are never part of it.
type userResponse struct {
	ID                 string    `json:"id"`
	Email              string    `json:"email"`
	Nickname           string    `json:"nickname"`
	FirstName          string    `json:"first_name"`
	LastName           string    `json:"last_name"`
	Bio                string    `json:"bio"`
	ProfilePictureURL  string    `json:"profile_picture_url"`
	LinkedInProfileURL string    `json:"linkedin_profile_url"`
	GitHubProfileURL   string    `json:"github_profile_url"`
	IsProfessional     bool      `json:"is_professional"`
	Role               string    `json:"role"`
	EmailVerified      bool      `json:"email_verified"`
	IsLocked           bool      `json:"is_locked"`
	State              string    `json:"state"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func toUserResponse(u *entity.User) userResponse {
	return userResponse{
		ID:                 u.ID,
		Email:              u.Email,
		Nickname:           u.Nickname,
		FirstName:          u.FirstName,
		LastName:           u.LastName,
		Bio:                u.Bio,
		ProfilePictureURL:  u.ProfilePictureURL,
		LinkedInProfileURL: u.LinkedInProfileURL,
		GitHubProfileURL:   u.GitHubProfileURL,
		IsProfessional:     u.IsProfessional,
		Role:               u.Role.String(),
		EmailVerified:      u.EmailVerified,
		IsLocked:           u.IsLocked,
		State:              string(u.State()),
		CreatedAt:          u.CreatedAt,
		UpdatedAt:          u.UpdatedAt,
	}
}

type userListResponse struct {
	Items []userResponse   `json:"items"`
	Total int              `json:"total"`
	Links pagination.Links `json:"links"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// baseURL is the absolute URL of the current request without its query.
// X-Forwarded-Proto only counts behind a trusted proxy.
func baseURL(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	} else if c.GetBool(middleware.TrustProxyKey) && c.GetHeader("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	host := c.Request.Host
	if host == "" {
		host = "localhost"
	}
	return scheme + "://" + host + c.Request.URL.Path
}
