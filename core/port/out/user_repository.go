package out

import (
	"context"

	"github.com/google/uuid"

	"github.com/johsire/dev-connector/core/domain"
)

// UserRepository reads identity records owned by the external auth
// component. GetByID returns nil (not an error) when the user row is
// missing so profile reads degrade to an empty projection.
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.User, error)
}
