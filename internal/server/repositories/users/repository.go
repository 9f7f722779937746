package users

import (
	"context"

	"github.com/dev-c-webd/tube-v/internal/server/models"
)

// Repository is the account store: a document per account keyed by id with
// unique username and email.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	// GetByUsernameOrEmail matches case-insensitively on either field.
	GetByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	UpdatePassword(ctx context.Context, id string, passwordHash string) error
	UpdateDetails(ctx context.Context, id string, fullName, email string) (*models.User, error)
	UpdateAvatar(ctx context.Context, id string, url string) (*models.User, error)
	UpdateCoverImage(ctx context.Context, id string, url string) (*models.User, error)
}
