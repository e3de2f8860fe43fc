// Package profile implements the profile aggregate update protocol:
// create-or-merge upserts keyed by the owning user, unique handle
// enforcement, and the embedded experience/education list mutations.
package profile

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/johsire/dev-connector/core/domain"
	"github.com/johsire/dev-connector/core/port/out"
	"github.com/johsire/dev-connector/pkg/apperr"
	"github.com/johsire/dev-connector/pkg/cache"
	"github.com/johsire/dev-connector/pkg/logger"
	"github.com/johsire/dev-connector/pkg/validate"
)

const (
	defaultOpTimeout = 5 * time.Second

	cacheKeyAll     = "profiles:all"
	cacheKeyHandle  = "profiles:handle:"
	defaultCacheTTL = 30 * time.Second
)

// Service implements in.ProfileService over a profile document store
// and a read-only user store.
type Service struct {
	profiles out.ProfileRepository
	users    out.UserRepository
	cache    *cache.RedisCache

	opTimeout time.Duration
	cacheTTL  time.Duration
	log       *logger.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithOpTimeout bounds every storage call made by the service.
func WithOpTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.opTimeout = d
		}
	}
}

// WithCache enables Redis caching of public reads.
func WithCache(c *cache.RedisCache, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = c
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

// NewService creates a new profile service.
func NewService(profiles out.ProfileRepository, users out.UserRepository, opts ...Option) *Service {
	s := &Service{
		profiles:  profiles,
		users:     users,
		opTimeout: defaultOpTimeout,
		cacheTTL:  defaultCacheTTL,
		log:       logger.WithField("component", "profile-service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.opTimeout)
}

// =============================================================================
// Upsert
// =============================================================================

// Upsert creates the caller's profile on first call and applies a
// sparse field merge on subsequent calls. Only fields present in the
// input are written; the social sub-object is rebuilt from the present
// social keys and replaces the stored one wholesale.
func (s *Service) Upsert(ctx context.Context, userID uuid.UUID, input domain.ProfileInput) (*domain.Profile, error) {
	if errs, ok := validate.ProfileInput(input); !ok {
		return nil, apperr.ValidationFailed(errs)
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	fields := fieldsFromInput(input)

	existing, err := s.profiles.FindByUserID(ctx, userID)
	switch {
	case err == nil:
		updated, err := s.profiles.Update(ctx, userID, fields)
		if err != nil {
			switch {
			case errors.Is(err, out.ErrNotFound):
				return nil, apperr.NotFound("profile")
			case errors.Is(err, out.ErrDuplicateHandle):
				return nil, apperr.Conflict("handle already exists")
			default:
				return nil, apperr.DatabaseError("update profile", err)
			}
		}
		s.invalidate(ctx, existing.Handle, updated.Handle)
		return updated, nil

	case errors.Is(err, out.ErrNotFound):
		return s.create(ctx, userID, input, fields)

	default:
		return nil, apperr.DatabaseError("find profile", err)
	}
}

// create inserts a fresh profile document. The handle is checked first
// and the unique index backs the check, so a lost race between lookup
// and insert still surfaces as a conflict instead of a duplicate.
func (s *Service) create(ctx context.Context, userID uuid.UUID, input domain.ProfileInput, fields out.ProfileFields) (*domain.Profile, error) {
	handle := *input.Handle

	_, err := s.profiles.FindByHandle(ctx, handle)
	switch {
	case err == nil:
		return nil, apperr.Conflict("handle already exists")
	case errors.Is(err, out.ErrNotFound):
		// handle is free
	default:
		return nil, apperr.DatabaseError("find profile by handle", err)
	}

	now := time.Now().UTC()
	p := &domain.Profile{
		ID:         uuid.NewString(),
		UserID:     userID,
		Handle:     handle,
		Skills:     []string{},
		Experience: []domain.Experience{},
		Education:  []domain.Education{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	applyFields(p, fields)

	if err := s.profiles.Insert(ctx, p); err != nil {
		switch {
		case errors.Is(err, out.ErrDuplicateHandle):
			return nil, apperr.Conflict("handle already exists")
		case errors.Is(err, out.ErrDuplicateUser):
			return nil, apperr.Conflict("profile already exists for user")
		default:
			return nil, apperr.DatabaseError("insert profile", err)
		}
	}

	s.invalidate(ctx, handle)
	return p, nil
}

// =============================================================================
// Reads
// =============================================================================

// GetOwn returns the caller's profile.
func (s *Service) GetOwn(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	p, err := s.profiles.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, out.ErrNotFound) {
			return nil, apperr.NotFound("profile for this user")
		}
		return nil, apperr.DatabaseError("find profile", err)
	}
	return s.attachUser(ctx, p), nil
}

// GetAll returns every profile with user projections attached. An empty
// store yields an empty list, not an error.
func (s *Service) GetAll(ctx context.Context) ([]*domain.Profile, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	var cached []*domain.Profile
	if hit, err := s.cache.GetJSON(ctx, cacheKeyAll, &cached); err == nil && hit {
		return cached, nil
	}

	profiles, err := s.profiles.FindAll(ctx)
	if err != nil {
		return nil, apperr.DatabaseError("list profiles", err)
	}
	if profiles == nil {
		profiles = []*domain.Profile{}
	}

	s.attachUsers(ctx, profiles)

	if err := s.cache.SetJSON(ctx, cacheKeyAll, profiles, s.cacheTTL); err != nil {
		s.log.WithError(err).Warn("failed to cache profile list")
	}
	return profiles, nil
}

// GetByHandle returns the profile with the given handle.
func (s *Service) GetByHandle(ctx context.Context, handle string) (*domain.Profile, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	var cached domain.Profile
	if hit, err := s.cache.GetJSON(ctx, cacheKeyHandle+handle, &cached); err == nil && hit {
		return &cached, nil
	}

	p, err := s.profiles.FindByHandle(ctx, handle)
	if err != nil {
		if errors.Is(err, out.ErrNotFound) {
			return nil, apperr.NotFound("profile")
		}
		return nil, apperr.DatabaseError("find profile by handle", err)
	}

	p = s.attachUser(ctx, p)
	if err := s.cache.SetJSON(ctx, cacheKeyHandle+handle, p, s.cacheTTL); err != nil {
		s.log.WithError(err).Warn("failed to cache profile")
	}
	return p, nil
}

// GetByUserID returns the profile owned by the given user.
func (s *Service) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	p, err := s.profiles.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, out.ErrNotFound) {
			return nil, apperr.NotFound("profile for this user")
		}
		return nil, apperr.DatabaseError("find profile", err)
	}
	return s.attachUser(ctx, p), nil
}

// =============================================================================
// Experience / Education
// =============================================================================

// AddExperience prepends a new experience entry to the caller's profile.
func (s *Service) AddExperience(ctx context.Context, userID uuid.UUID, input domain.ExperienceInput) (*domain.Profile, error) {
	if errs, ok := validate.ExperienceInput(input); !ok {
		return nil, apperr.ValidationFailed(errs)
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	exp := domain.Experience{
		ID:          uuid.NewString(),
		Title:       input.Title,
		Company:     input.Company,
		Location:    input.Location,
		From:        input.From,
		To:          input.To,
		Current:     input.Current,
		Description: input.Description,
	}

	p, err := s.profiles.PushExperience(ctx, userID, exp)
	if err != nil {
		if errors.Is(err, out.ErrNotFound) {
			return nil, apperr.NotFound("profile for this user")
		}
		return nil, apperr.DatabaseError("add experience", err)
	}

	s.invalidate(ctx, p.Handle)
	return p, nil
}

// RemoveExperience removes the experience entry with the given id.
// Removing an unknown id leaves the list unchanged.
func (s *Service) RemoveExperience(ctx context.Context, userID uuid.UUID, expID string) (*domain.Profile, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	p, err := s.profiles.PullExperience(ctx, userID, expID)
	if err != nil {
		if errors.Is(err, out.ErrNotFound) {
			return nil, apperr.NotFound("profile for this user")
		}
		return nil, apperr.DatabaseError("remove experience", err)
	}

	s.invalidate(ctx, p.Handle)
	return p, nil
}

// AddEducation prepends a new education entry to the caller's profile.
func (s *Service) AddEducation(ctx context.Context, userID uuid.UUID, input domain.EducationInput) (*domain.Profile, error) {
	if errs, ok := validate.EducationInput(input); !ok {
		return nil, apperr.ValidationFailed(errs)
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	edu := domain.Education{
		ID:           uuid.NewString(),
		School:       input.School,
		Degree:       input.Degree,
		FieldOfStudy: input.FieldOfStudy,
		From:         input.From,
		To:           input.To,
		Current:      input.Current,
		Description:  input.Description,
	}

	p, err := s.profiles.PushEducation(ctx, userID, edu)
	if err != nil {
		if errors.Is(err, out.ErrNotFound) {
			return nil, apperr.NotFound("profile for this user")
		}
		return nil, apperr.DatabaseError("add education", err)
	}

	s.invalidate(ctx, p.Handle)
	return p, nil
}

// RemoveEducation removes the education entry with the given id.
func (s *Service) RemoveEducation(ctx context.Context, userID uuid.UUID, eduID string) (*domain.Profile, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	p, err := s.profiles.PullEducation(ctx, userID, eduID)
	if err != nil {
		if errors.Is(err, out.ErrNotFound) {
			return nil, apperr.NotFound("profile for this user")
		}
		return nil, apperr.DatabaseError("remove education", err)
	}

	s.invalidate(ctx, p.Handle)
	return p, nil
}

// =============================================================================
// Helpers
// =============================================================================

func fieldsFromInput(input domain.ProfileInput) out.ProfileFields {
	fields := out.ProfileFields{
		Handle:         input.Handle,
		Company:        input.Company,
		Website:        input.Website,
		Location:       input.Location,
		Bio:            input.Bio,
		Status:         input.Status,
		GithubUsername: input.GithubUsername,
	}
	if input.Skills != nil {
		fields.Skills = domain.SplitSkills(*input.Skills)
	}
	social := input.SocialLinks()
	fields.Social = &social
	return fields
}

func applyFields(p *domain.Profile, fields out.ProfileFields) {
	if fields.Handle != nil {
		p.Handle = *fields.Handle
	}
	if fields.Company != nil {
		p.Company = *fields.Company
	}
	if fields.Website != nil {
		p.Website = *fields.Website
	}
	if fields.Location != nil {
		p.Location = *fields.Location
	}
	if fields.Bio != nil {
		p.Bio = *fields.Bio
	}
	if fields.Status != nil {
		p.Status = *fields.Status
	}
	if fields.GithubUsername != nil {
		p.GithubUsername = *fields.GithubUsername
	}
	if fields.Skills != nil {
		p.Skills = fields.Skills
	}
	if fields.Social != nil {
		p.Social = *fields.Social
	}
}

// attachUser resolves the owning user's name and avatar. A missing or
// unreadable user row degrades to an empty projection instead of
// failing the read.
func (s *Service) attachUser(ctx context.Context, p *domain.Profile) *domain.Profile {
	if p == nil {
		return nil
	}
	u, err := s.users.GetByID(ctx, p.UserID)
	if err != nil {
		s.log.WithError(err).Warn("failed to resolve user %s", p.UserID)
		return p
	}
	info := u.Info()
	p.User = &info
	return p
}

func (s *Service) attachUsers(ctx context.Context, profiles []*domain.Profile) {
	if len(profiles) == 0 {
		return
	}
	ids := make([]uuid.UUID, 0, len(profiles))
	for _, p := range profiles {
		ids = append(ids, p.UserID)
	}
	users, err := s.users.GetByIDs(ctx, ids)
	if err != nil {
		s.log.WithError(err).Warn("failed to resolve users for profile list")
		return
	}
	for _, p := range profiles {
		info := users[p.UserID].Info()
		p.User = &info
	}
}

// invalidate drops the cached list plus any handle entries touched by a
// mutation.
func (s *Service) invalidate(ctx context.Context, handles ...string) {
	keys := []string{cacheKeyAll}
	for _, h := range handles {
		if h != "" {
			keys = append(keys, cacheKeyHandle+h)
		}
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.log.WithError(err).Warn("failed to invalidate profile cache")
	}
}
