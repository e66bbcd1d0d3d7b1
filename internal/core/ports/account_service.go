package ports

import (
	"context"

	"github.com/saa-academy/portal/internal/core/domain"
)

// AccountService implements the /users endpoints of the local academy API.
type AccountService interface {
	Register(ctx context.Context, username, email, password string) (*domain.Identity, error)
	Login(ctx context.Context, email, password string) (*domain.Identity, error)
	List(ctx context.Context) ([]*domain.Account, error)
	ChangeRole(ctx context.Context, actorID, targetID string, role domain.Role) (*domain.Account, error)
	Delete(ctx context.Context, actorID, targetID string) error
}
