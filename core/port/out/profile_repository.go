// Package out defines outbound ports implemented by storage adapters.
package out

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/johsire/dev-connector/core/domain"
)

// Sentinel errors returned by repository implementations.
var (
	ErrNotFound        = errors.New("not found")
	ErrDuplicateHandle = errors.New("handle already exists")
	ErrDuplicateUser   = errors.New("profile already exists for user")
)

// ProfileFields is a sparse field-update set for the profile upsert.
// Nil members are never written, so absent request fields leave stored
// state untouched. Social, when present, replaces the stored sub-object
// wholesale.
type ProfileFields struct {
	Handle         *string
	Company        *string
	Website        *string
	Location       *string
	Bio            *string
	Status         *string
	GithubUsername *string
	Skills         []string
	Social         *domain.SocialLinks
}

// ProfileRepository is the document store for profile aggregates.
//
// All mutation methods are atomic and field-scoped: concurrent updates
// to the same document must not lose each other's writes. Find methods
// return ErrNotFound when no matching document exists.
type ProfileRepository interface {
	FindByUserID(ctx context.Context, userID uuid.UUID) (*domain.Profile, error)
	FindByHandle(ctx context.Context, handle string) (*domain.Profile, error)
	FindAll(ctx context.Context) ([]*domain.Profile, error)

	// Insert creates a new profile document. Returns ErrDuplicateHandle
	// or ErrDuplicateUser when a unique index rejects the write.
	Insert(ctx context.Context, profile *domain.Profile) error

	// Update applies the sparse field set to the user's document and
	// returns the updated profile.
	Update(ctx context.Context, userID uuid.UUID, fields ProfileFields) (*domain.Profile, error)

	// PushExperience inserts the entry at the front of the experience
	// list and returns the updated profile.
	PushExperience(ctx context.Context, userID uuid.UUID, exp domain.Experience) (*domain.Profile, error)

	// PullExperience removes the entry with the given id. Removing an
	// unknown id is a no-op; the (unchanged) profile is returned.
	PullExperience(ctx context.Context, userID uuid.UUID, expID string) (*domain.Profile, error)

	PushEducation(ctx context.Context, userID uuid.UUID, edu domain.Education) (*domain.Profile, error)
	PullEducation(ctx context.Context, userID uuid.UUID, eduID string) (*domain.Profile, error)
}
