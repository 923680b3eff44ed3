package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"studysync/internal/domain"
)

type userRecord struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           string    `bun:"id,pk"`
	Name         string    `bun:"name,notnull"`
	Email        string    `bun:"email,notnull"`
	Username     string    `bun:"username,notnull"`
	PasswordHash string    `bun:"password_hash,notnull"`
	Role         string    `bun:"role,notnull"`
	Grade        string    `bun:"grade"`
	Board        string    `bun:"board"`
	Subjects     []string  `bun:"subjects,array"`
	XP           int       `bun:"xp"`
	Badges       []string  `bun:"badges,array"`
	Verified     bool      `bun:"verified"`
	CreatedAt    time.Time `bun:"created_at,notnull"`
}

// UserRepository is the bun-backed implementation of app.UserRepository.
type UserRepository struct {
	db *bun.DB
}

func NewUserRepository(db *bun.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user domain.User) error {
	rec := toUserRecord(user)
	if _, err := r.db.NewInsert().Model(&rec).Exec(ctx); err != nil {
		switch {
		case uniqueViolation(err, "email"):
			return domain.ErrEmailTaken
		case uniqueViolation(err, "username"):
			return domain.ErrUsernameTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (domain.User, error) {
	return r.getWhere(ctx, "u.id = ?", id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.getWhere(ctx, "u.email = ?", email)
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	return r.getWhere(ctx, "u.username = ?", username)
}

func (r *UserRepository) UpdateProfile(ctx context.Context, user domain.User) error {
	rec := toUserRecord(user)
	res, err := r.db.NewUpdate().
		Model(&rec).
		Column("name", "grade", "board", "subjects").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// AddXP is a single UPDATE so concurrent submissions cannot lose increments.
// COALESCE/GREATEST repair null or negative stored XP before adding.
func (r *UserRepository) AddXP(ctx context.Context, id string, delta int) error {
	res, err := r.db.NewUpdate().
		Model((*userRecord)(nil)).
		Set("xp = GREATEST(COALESCE(xp, 0), 0) + ?", delta).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("add xp: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) getWhere(ctx context.Context, where string, arg any) (domain.User, error) {
	var rec userRecord
	err := r.db.NewSelect().Model(&rec).Where(where, arg).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("load user: %w", err)
	}
	return fromUserRecord(rec), nil
}

func toUserRecord(u domain.User) userRecord {
	return userRecord{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		Grade:        u.Grade,
		Board:        u.Board,
		Subjects:     u.Subjects,
		XP:           u.XP,
		Badges:       u.Badges,
		Verified:     u.Verified,
		CreatedAt:    u.CreatedAt,
	}
}

func fromUserRecord(rec userRecord) domain.User {
	return domain.User{
		ID:           rec.ID,
		Name:         rec.Name,
		Email:        rec.Email,
		Username:     rec.Username,
		PasswordHash: rec.PasswordHash,
		Role:         domain.Role(rec.Role),
		Grade:        rec.Grade,
		Board:        rec.Board,
		Subjects:     rec.Subjects,
		XP:           rec.XP,
		Badges:       rec.Badges,
		Verified:     rec.Verified,
		CreatedAt:    rec.CreatedAt,
	}
}
