package repository

import (
	"context"

	"github.com/oksasatya/go-portfolio-tracker/internal/domain/entity"
)

// UserRepository defines the interface for user-related database operations.
// Create returns apperror.ErrDuplicateUser when the email is taken; lookups
// return apperror.ErrNotFound for missing rows.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
}
