package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/daniellescalera/user-management/internal/domain/entity"
	repo "github.com/daniellescalera/user-management/internal/domain/repository"
	"github.com/daniellescalera/user-management/pkg/helpers"
	"github.com/daniellescalera/user-management/pkg/validation"
)

const (
	verificationTokenBytes = 32
	nicknameAttempts       = 5

	DefaultPageSize = 10
	MaxPageSize     = 100
	MaxSearchSize   = 50
)

// Deps are the collaborators of Service. Index and Avatars are optional.
type Deps struct {
	Repo             repo.UserRepository
	Hasher           PasswordHasher
	Tokens           TokenIssuer
	Notifier         Notifier
	Index            repo.UserIndex
	Avatars          AvatarStore
	Logger           *logrus.Logger
	Metrics          *Metrics
	MaxLoginAttempts int
}

// Service owns the account lifecycle: registration, verification, login and user management.
type Service struct {
	Deps
}

func NewService(d Deps) *Service {
	if d.Logger == nil {
		d.Logger = helpers.NewNopLogger()
	}
	if d.Metrics == nil {
		d.Metrics = NewMetrics()
	}
	if d.MaxLoginAttempts <= 0 {
		d.MaxLoginAttempts = 3
	}
	return &Service{Deps: d}
}

// RegisterInput is the self-service signup payload. Role falls back to AUTHENTICATED when unknown.
type RegisterInput struct {
	Email              string
	Password           string
	Nickname           string
	FirstName          string
	LastName           string
	Bio                string
	ProfilePictureURL  string
	LinkedInProfileURL string
	GitHubProfileURL   string
	IsProfessional     bool
	Role               string
}

// Page is one slice of the user list.
type Page struct {
	Items  []*entity.User
	Total  int
	Offset int
	Limit  int
}

func validateProfileURLs(fields map[string]string) error {
	for _, name := range []string{"profile_picture_url", "linkedin_profile_url", "github_profile_url"} {
		if v := fields[name]; v != "" && !validation.IsHTTPURL(v) {
			return &ValidationError{Field: name, Message: "must be a valid http or https URL"}
		}
	}
	return nil
}

// Register creates an unverified account and dispatches its verification email.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	return s.create(ctx, in, logrus.Fields{"source": "register"})
}

// CreateUser is Register on behalf of an administrator.
func (s *Service) CreateUser(ctx context.Context, actor Principal, in RegisterInput) (*entity.User, error) {
	return s.create(ctx, in, logrus.Fields{"source": "admin", "actor_id": actor.UserID})
}

func (s *Service) create(ctx context.Context, in RegisterInput, fields logrus.Fields) (*entity.User, error) {
	if in.Email == "" {
		return nil, &MissingFieldError{Field: "email"}
	}
	if in.Password == "" {
		return nil, &MissingFieldError{Field: "password"}
	}
	if err := checkPasswordLength(in.Password); err != nil {
		return nil, err
	}
	if !validation.IsEmail(in.Email) {
		return nil, &ValidationError{Field: "email", Message: "must be a valid email"}
	}
	if err := validateProfileURLs(map[string]string{
		"profile_picture_url":  in.ProfilePictureURL,
		"linkedin_profile_url": in.LinkedInProfileURL,
		"github_profile_url":   in.GitHubProfileURL,
	}); err != nil {
		return nil, err
	}

	if _, err := s.Repo.GetByEmail(ctx, in.Email); err == nil {
		return nil, ErrDuplicateEmail
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, fmt.Errorf("lookup email: %w", err)
	}

	explicitNickname := in.Nickname != ""
	nickname := in.Nickname
	if !explicitNickname {
		var err error
		if nickname, err = s.freeNickname(ctx, helpers.GenerateNickname(in.Email)); err != nil {
			return nil, err
		}
	} else if _, err := s.Repo.GetByNickname(ctx, nickname); err == nil {
		return nil, ErrDuplicateNickname
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, fmt.Errorf("lookup nickname: %w", err)
	}

	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return nil, hashError(err)
	}
	token, err := helpers.GenerateToken(verificationTokenBytes)
	if err != nil {
		return nil, fmt.Errorf("generate verification token: %w", err)
	}

	u := &entity.User{
		Email:              in.Email,
		Nickname:           nickname,
		PasswordHash:       hash,
		FirstName:          in.FirstName,
		LastName:           in.LastName,
		Bio:                in.Bio,
		ProfilePictureURL:  in.ProfilePictureURL,
		LinkedInProfileURL: in.LinkedInProfileURL,
		GitHubProfileURL:   in.GitHubProfileURL,
		IsProfessional:     in.IsProfessional,
		Role:               entity.RoleOrDefault(in.Role),
		VerificationToken:  token,
	}

	for attempt := 0; ; attempt++ {
		err = s.Repo.Create(ctx, u)
		// a generated nickname lost a race; pick another one
		if errors.Is(err, repo.ErrDuplicateNickname) && !explicitNickname && attempt < nicknameAttempts {
			u.Nickname = helpers.NicknameWithSuffix(helpers.GenerateNickname(in.Email))
			continue
		}
		break
	}
	if err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) || errors.Is(err, repo.ErrDuplicateNickname) {
			return nil, err
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.Metrics.Registered.Add(1)

	log := s.Logger.WithFields(fields).WithField("user_id", u.ID)
	log.WithField("role", u.Role).Info("user registered")

	if err := s.Notifier.SendVerificationEmail(ctx, u, token); err != nil {
		log.WithError(err).Warn("verification email dispatch failed")
	}
	s.index(ctx, u)
	return u, nil
}

// freeNickname returns base if unused, otherwise base with a random suffix.
func (s *Service) freeNickname(ctx context.Context, base string) (string, error) {
	candidate := base
	for i := 0; i < nicknameAttempts; i++ {
		_, err := s.Repo.GetByNickname(ctx, candidate)
		if errors.Is(err, repo.ErrNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", fmt.Errorf("lookup nickname: %w", err)
		}
		candidate = helpers.NicknameWithSuffix(base)
	}
	return candidate, nil
}

// VerifyEmail consumes the verification token of an unverified account.
// Every kind of mismatch yields ErrInvalidVerificationToken.
func (s *Service) VerifyEmail(ctx context.Context, userID, token string) error {
	if _, err := uuid.Parse(userID); err != nil || token == "" {
		return ErrInvalidVerificationToken
	}
	ok, err := s.Repo.ConsumeVerificationToken(ctx, userID, token)
	if err != nil {
		return fmt.Errorf("consume verification token: %w", err)
	}
	if !ok {
		return ErrInvalidVerificationToken
	}
	s.Metrics.Verified.Add(1)
	s.Logger.WithField("user_id", userID).Info("email verified")
	return nil
}

// ResendVerification re-dispatches the stored token of an unverified account.
func (s *Service) ResendVerification(ctx context.Context, userID string) error {
	u, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if u.EmailVerified || u.VerificationToken == "" {
		return ErrAlreadyVerified
	}
	if err := s.Notifier.SendVerificationEmail(ctx, u, u.VerificationToken); err != nil {
		return fmt.Errorf("send verification email: %w", err)
	}
	return nil
}

func (s *Service) GetUser(ctx context.Context, id string) (*entity.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	u, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// UpdateInput is a partial update. Nil fields are left unchanged; Role must be a valid name.
type UpdateInput struct {
	Email              *string
	Nickname           *string
	FirstName          *string
	LastName           *string
	Bio                *string
	ProfilePictureURL  *string
	LinkedInProfileURL *string
	GitHubProfileURL   *string
	IsProfessional     *bool
	Role               *string
}

func (in UpdateInput) patch() (repo.UserPatch, error) {
	p := repo.UserPatch{
		Email:              in.Email,
		Nickname:           in.Nickname,
		FirstName:          in.FirstName,
		LastName:           in.LastName,
		Bio:                in.Bio,
		ProfilePictureURL:  in.ProfilePictureURL,
		LinkedInProfileURL: in.LinkedInProfileURL,
		GitHubProfileURL:   in.GitHubProfileURL,
		IsProfessional:     in.IsProfessional,
	}
	if in.Email != nil && !validation.IsEmail(*in.Email) {
		return p, &ValidationError{Field: "email", Message: "must be a valid email"}
	}
	if in.Nickname != nil && strings.TrimSpace(*in.Nickname) == "" {
		return p, &ValidationError{Field: "nickname", Message: "must not be empty"}
	}
	urls := map[string]string{}
	for name, v := range map[string]*string{
		"profile_picture_url":  in.ProfilePictureURL,
		"linkedin_profile_url": in.LinkedInProfileURL,
		"github_profile_url":   in.GitHubProfileURL,
	} {
		if v != nil {
			urls[name] = *v
		}
	}
	if err := validateProfileURLs(urls); err != nil {
		return p, err
	}
	if in.Role != nil {
		r, ok := entity.ParseRole(*in.Role)
		if !ok {
			return p, &ValidationError{Field: "role", Message: "must be one of ADMIN, MANAGER, AUTHENTICATED"}
		}
		p.Role = &r
	}
	return p, nil
}

// UpdateUser applies a partial update on behalf of actor. Only admins may change roles.
func (s *Service) UpdateUser(ctx context.Context, actor Principal, id string, in UpdateInput) (*entity.User, error) {
	p, err := in.patch()
	if err != nil {
		return nil, err
	}
	if p.Role != nil && actor.Role != entity.RoleAdmin {
		return nil, ErrForbidden
	}
	if p.Empty() {
		return s.GetUser(ctx, id)
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	u, err := s.Repo.Update(ctx, id, p)
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrNotFound), errors.Is(err, repo.ErrDuplicateEmail), errors.Is(err, repo.ErrDuplicateNickname):
			return nil, err
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	s.Logger.WithFields(logrus.Fields{"user_id": id, "actor_id": actor.UserID}).Info("user updated")
	s.index(ctx, u)
	return u, nil
}

// DeleteUser hard-deletes the account.
func (s *Service) DeleteUser(ctx context.Context, actor Principal, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete user: %w", err)
	}
	log := s.Logger.WithFields(logrus.Fields{"user_id": id, "actor_id": actor.UserID})
	log.Info("user deleted")
	if s.Index != nil {
		if err := s.Index.Delete(ctx, id); err != nil {
			log.WithError(err).Warn("search index delete failed")
		}
	}
	return nil
}

// ListUsers returns a page of users. limit defaults to DefaultPageSize and is clamped to 1..MaxPageSize.
func (s *Service) ListUsers(ctx context.Context, offset, limit int) (Page, error) {
	if offset < 0 {
		offset = 0
	}
	switch {
	case limit <= 0:
		limit = DefaultPageSize
	case limit > MaxPageSize:
		limit = MaxPageSize
	}
	items, total, err := s.Repo.List(ctx, offset, limit)
	if err != nil {
		return Page{}, fmt.Errorf("list users: %w", err)
	}
	return Page{Items: items, Total: total, Offset: offset, Limit: limit}, nil
}

// SearchUsers queries the search index. Without an index the result is empty.
func (s *Service) SearchUsers(ctx context.Context, q string, size int) ([]repo.UserDocument, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, &MissingFieldError{Field: "q"}
	}
	if s.Index == nil {
		return []repo.UserDocument{}, nil
	}
	if size <= 0 || size > MaxSearchSize {
		size = DefaultPageSize
	}
	docs, err := s.Index.Search(ctx, q, size)
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	return docs, nil
}

// UploadAvatar stores an image and points the user's profile picture at it.
func (s *Service) UploadAvatar(ctx context.Context, id string, r io.Reader, filename, contentType string) (*entity.User, error) {
	if s.Avatars == nil {
		return nil, ErrStorageUnavailable
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, &ValidationError{Field: "file", Message: "must be an image"}
	}
	if _, err := s.GetUser(ctx, id); err != nil {
		return nil, err
	}
	url, err := s.Avatars.Upload(ctx, id, r, filename, contentType)
	if err != nil {
		return nil, fmt.Errorf("upload avatar: %w", err)
	}
	u, err := s.Repo.Update(ctx, id, repo.UserPatch{ProfilePictureURL: &url})
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("set profile picture: %w", err)
	}
	s.index(ctx, u)
	return u, nil
}

// index refreshes the search document. Failures only log.
func (s *Service) index(ctx context.Context, u *entity.User) {
	if s.Index == nil {
		return
	}
	if err := s.Index.Index(ctx, u); err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("search index update failed")
	}
}

func checkPasswordLength(password string) error {
	if len(password) > helpers.MaxPasswordBytes {
		return &ValidationError{Field: "password", Message: "must be at most 72 bytes"}
	}
	return nil
}

// hashError keeps a too-long password a client error whichever hasher rejects it.
func hashError(err error) error {
	if errors.Is(err, helpers.ErrPasswordTooLong) {
		return &ValidationError{Field: "password", Message: "must be at most 72 bytes"}
	}
	return fmt.Errorf("hash password: %w", err)
}
