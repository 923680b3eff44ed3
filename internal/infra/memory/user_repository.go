package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"studysync/internal/domain"
)

// UserRepository is an in-memory implementation of app.UserRepository and
// app.LeaderboardReader, used in demo mode and unit tests.
type UserRepository struct {
	mu    sync.RWMutex
	users map[string]domain.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]domain.User)}
}

func (r *UserRepository) Create(_ context.Context, user domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return domain.ErrEmailTaken
		}
		if u.Username == user.Username {
			return domain.ErrUsernameTaken
		}
	}
	r.users[user.ID] = user
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id string) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return user, nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (domain.User, error) {
	return r.findBy(func(u domain.User) bool { return u.Email == email })
}

func (r *UserRepository) GetByUsername(_ context.Context, username string) (domain.User, error) {
	return r.findBy(func(u domain.User) bool { return u.Username == username })
}

func (r *UserRepository) UpdateProfile(_ context.Context, user domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.users[user.ID]
	if !ok {
		return domain.ErrUserNotFound
	}
	current.Name = user.Name
	current.Grade = user.Grade
	current.Board = user.Board
	current.Subjects = user.Subjects
	r.users[user.ID] = current
	return nil
}

func (r *UserRepository) AddXP(_ context.Context, id string, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	// Repair corrupt state before adding; XP is never legitimately negative.
	if user.XP < 0 {
		user.XP = 0
	}
	user.XP += delta
	r.users[id] = user
	return nil
}

// RankOf counts ranked users with strictly more XP, or the same XP and an
// older account, and adds one.
func (r *UserRepository) RankOf(_ context.Context, xp int, createdAt time.Time) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ahead := 0
	for _, u := range r.users {
		if !ranked(u.Role) {
			continue
		}
		if u.XP > xp || (u.XP == xp && u.CreatedAt.Before(createdAt)) {
			ahead++
		}
	}
	return ahead + 1, nil
}

// Top returns the highest-XP ranked users, older accounts winning ties.
func (r *UserRepository) Top(_ context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	users := make([]domain.User, 0, len(r.users))
	for _, u := range r.users {
		if ranked(u.Role) {
			users = append(users, u)
		}
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].XP != users[j].XP {
			return users[i].XP > users[j].XP
		}
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
	if len(users) > limit {
		users = users[:limit]
	}
	entries := make([]domain.LeaderboardEntry, 0, len(users))
	for _, u := range users {
		entries = append(entries, domain.LeaderboardEntry{
			UserID: u.ID,
			Name:   u.Name,
			XP:     u.XP,
			Badges: u.Badges,
			Grade:  u.Grade,
			Board:  u.Board,
		})
	}
	return entries, nil
}

func (r *UserRepository) findBy(match func(domain.User) bool) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if match(u) {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrUserNotFound
}

func ranked(role domain.Role) bool {
	return role == domain.RoleStudent || role == domain.RoleAdmin
}
