// Package in defines inbound ports implemented by core services.
package in

import (
	"context"

	"github.com/google/uuid"

	"github.com/johsire/dev-connector/core/domain"
)

// ProfileService is the application boundary for profile operations.
type ProfileService interface {
	// Upsert creates the caller's profile on first call and applies a
	// sparse merge on subsequent calls.
	Upsert(ctx context.Context, userID uuid.UUID, input domain.ProfileInput) (*domain.Profile, error)

	GetOwn(ctx context.Context, userID uuid.UUID) (*domain.Profile, error)
	GetAll(ctx context.Context) ([]*domain.Profile, error)
	GetByHandle(ctx context.Context, handle string) (*domain.Profile, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Profile, error)

	AddExperience(ctx context.Context, userID uuid.UUID, input domain.ExperienceInput) (*domain.Profile, error)
	RemoveExperience(ctx context.Context, userID uuid.UUID, expID string) (*domain.Profile, error)
	AddEducation(ctx context.Context, userID uuid.UUID, input domain.EducationInput) (*domain.Profile, error)
	RemoveEducation(ctx context.Context, userID uuid.UUID, eduID string) (*domain.Profile, error)
}
