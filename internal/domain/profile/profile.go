package profile

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"
)

// Profile is the directory entry used to compose notification and message
// text. Owned by the identity collaborator; read-only here.
type Profile struct {
	UserID    int64          `gorm:"column:user_id;primaryKey" json:"user_id"`
	FullName  sql.NullString `gorm:"column:full_name" json:"full_name,omitempty"`
	Email     sql.NullString `gorm:"column:email" json:"email,omitempty"`
	CreatedAt time.Time      `gorm:"column:created_at" json:"created_at"`
}

func (Profile) TableName() string { return "profiles" }

// Repository reads the profile directory
type Repository interface {
	GetByUserID(ctx context.Context, userID int64) (*Profile, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetByUserID(ctx context.Context, userID int64) (*Profile, error) {
	var p Profile
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// placeholderName is shown when a profile is missing or unreadable; name
// resolution must never block decision processing.
const placeholderName = "Utilizador"

// Service resolves user ids to display names
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// DisplayName returns the user's full name, degrading to a generic
// placeholder on any miss or error.
func (s *Service) DisplayName(ctx context.Context, userID int64) string {
	p, err := s.repo.GetByUserID(ctx, userID)
	if err != nil || p == nil || !p.FullName.Valid || p.FullName.String == "" {
		return placeholderName
	}
	return p.FullName.String
}

// Resolve returns name and email where available
func (s *Service) Resolve(ctx context.Context, userID int64) (name, email string) {
	p, err := s.repo.GetByUserID(ctx, userID)
	if err != nil || p == nil {
		return placeholderName, ""
	}
	name = placeholderName
	if p.FullName.Valid && p.FullName.String != "" {
		name = p.FullName.String
	}
	if p.Email.Valid {
		email = p.Email.String
	}
	return name, email
}
