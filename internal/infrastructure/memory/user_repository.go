// Package memory holds a process-local implementation of the user repository.
// Every operation runs under one mutex, so the uniqueness and atomicity rules
// match the Postgres implementation.
package memory

import (
	"context"
	"crypto/subtle"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/daniellescalera/user-management/internal/domain/entity"
	"github.com/daniellescalera/user-management/internal/domain/repository"
)

type UserRepository struct {
	mu    sync.Mutex
	users map[string]*entity.User
	now   func() time.Time
	last  time.Time
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]*entity.User), now: time.Now}
}

// WithClock replaces the timestamp source.
func (r *UserRepository) WithClock(now func() time.Time) *UserRepository {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = now
	return r
}

// tick returns a timestamp strictly after the previous one, so a mutation
// always moves updated_at away from created_at.
func (r *UserRepository) tick() time.Time {
	t := r.now().UTC()
	if !t.After(r.last) {
		t = r.last.Add(time.Microsecond)
	}
	r.last = t
	return t
}

func clone(u *entity.User) *entity.User {
	cp := *u
	return &cp
}

func (r *UserRepository) uniqueLocked(email, nickname, exceptID string) error {
	for id, u := range r.users {
		if id == exceptID {
			continue
		}
		if email != "" && u.Email == email {
			return repository.ErrDuplicateEmail
		}
		if nickname != "" && u.Nickname == nickname {
			return repository.ErrDuplicateNickname
		}
	}
	return nil
}

func (r *UserRepository) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.uniqueLocked(u.Email, u.Nickname, ""); err != nil {
		return err
	}
	now := r.tick()
	u.ID = uuid.NewString()
	u.CreatedAt = now
	u.UpdatedAt = now
	r.users[u.ID] = clone(u)
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clone(u), nil
}

func (r *UserRepository) findLocked(match func(*entity.User) bool) (*entity.User, error) {
	for _, u := range r.users {
		if match(u) {
			return clone(u), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.findLocked(func(u *entity.User) bool { return u.Email == email })
}

func (r *UserRepository) GetByNickname(_ context.Context, nickname string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.findLocked(func(u *entity.User) bool { return u.Nickname == nickname })
}

func (r *UserRepository) Update(_ context.Context, id string, p repository.UserPatch) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if p.Empty() {
		return clone(u), nil
	}
	var email, nickname string
	if p.Email != nil {
		email = *p.Email
	}
	if p.Nickname != nil {
		nickname = *p.Nickname
	}
	if err := r.uniqueLocked(email, nickname, id); err != nil {
		return nil, err
	}

	next := clone(u)
	if p.Email != nil {
		next.Email = *p.Email
	}
	if p.Nickname != nil {
		next.Nickname = *p.Nickname
	}
	if p.FirstName != nil {
		next.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		next.LastName = *p.LastName
	}
	if p.Bio != nil {
		next.Bio = *p.Bio
	}
	if p.ProfilePictureURL != nil {
		next.ProfilePictureURL = *p.ProfilePictureURL
	}
	if p.LinkedInProfileURL != nil {
		next.LinkedInProfileURL = *p.LinkedInProfileURL
	}
	if p.GitHubProfileURL != nil {
		next.GitHubProfileURL = *p.GitHubProfileURL
	}
	if p.IsProfessional != nil {
		next.IsProfessional = *p.IsProfessional
	}
	if p.Role != nil {
		next.Role = *p.Role
	}
	next.UpdatedAt = r.tick()
	r.users[id] = next
	return clone(next), nil
}

func (r *UserRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *UserRepository) List(_ context.Context, offset, limit int) ([]*entity.User, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	all := make([]*entity.User, 0, len(r.users))
	for _, u := range r.users {
		all = append(all, u)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.Before(all[j].CreatedAt)
		}
		return all[i].ID < all[j].ID
	})

	total := len(all)
	if offset >= total || limit <= 0 {
		return []*entity.User{}, total, nil
	}
	end := min(offset+limit, total)
	out := make([]*entity.User, 0, end-offset)
	for _, u := range all[offset:end] {
		out = append(out, clone(u))
	}
	return out, total, nil
}

func (r *UserRepository) ConsumeVerificationToken(_ context.Context, id, token string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok || u.EmailVerified || u.VerificationToken == "" {
		return false, nil
	}
	if subtle.ConstantTimeCompare([]byte(u.VerificationToken), []byte(token)) != 1 {
		return false, nil
	}
	u.EmailVerified = true
	u.VerificationToken = ""
	u.UpdatedAt = r.tick()
	return true, nil
}

func (r *UserRepository) RecordFailedLogin(_ context.Context, id string, maxAttempts int) (repository.LoginAttempt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return repository.LoginAttempt{}, repository.ErrNotFound
	}
	if u.IsLocked {
		return repository.LoginAttempt{}, repository.ErrLocked
	}
	u.FailedLoginAttempts++
	if u.FailedLoginAttempts >= maxAttempts {
		u.IsLocked = true
	}
	u.UpdatedAt = r.tick()
	return repository.LoginAttempt{FailedAttempts: u.FailedLoginAttempts, Locked: u.IsLocked}, nil
}

func (r *UserRepository) ResetFailedLogins(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	if u.IsLocked {
		return repository.ErrLocked
	}
	if u.FailedLoginAttempts > 0 {
		u.FailedLoginAttempts = 0
		u.UpdatedAt = r.tick()
	}
	return nil
}

func (r *UserRepository) CountRetention(_ context.Context) (repository.RetentionCounts, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := repository.RetentionCounts{Total: len(r.users)}
	for _, u := range r.users {
		if u.Returning() {
			c.Returning++
		}
	}
	return c, nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
