package profile

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johsire/dev-connector/core/domain"
	"github.com/johsire/dev-connector/core/port/out"
	"github.com/johsire/dev-connector/pkg/apperr"
)

// ====== Fakes ======

// fakeProfileRepo is an in-memory ProfileRepository with the same
// uniqueness and atomicity contract as the MongoDB adapter.
type fakeProfileRepo struct {
	mu       sync.Mutex
	byUser   map[uuid.UUID]*domain.Profile
	byHandle map[string]uuid.UUID

	failWith       error // when set, every call returns this error
	missHandleOnce bool  // next FindByHandle misses, simulating a lost lookup/insert race
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{
		byUser:   make(map[uuid.UUID]*domain.Profile),
		byHandle: make(map[string]uuid.UUID),
	}
}

func (r *fakeProfileRepo) clone(p *domain.Profile) *domain.Profile {
	cp := *p
	cp.Skills = append([]string(nil), p.Skills...)
	cp.Experience = append([]domain.Experience(nil), p.Experience...)
	cp.Education = append([]domain.Education(nil), p.Education...)
	return &cp
}

func (r *fakeProfileRepo) FindByUserID(_ context.Context, userID uuid.UUID) (*domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, r.failWith
	}
	p, ok := r.byUser[userID]
	if !ok {
		return nil, out.ErrNotFound
	}
	return r.clone(p), nil
}

func (r *fakeProfileRepo) FindByHandle(_ context.Context, handle string) (*domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, r.failWith
	}
	if r.missHandleOnce {
		r.missHandleOnce = false
		return nil, out.ErrNotFound
	}
	userID, ok := r.byHandle[handle]
	if !ok {
		return nil, out.ErrNotFound
	}
	return r.clone(r.byUser[userID]), nil
}

func (r *fakeProfileRepo) FindAll(_ context.Context) ([]*domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, r.failWith
	}
	var all []*domain.Profile
	for _, p := range r.byUser {
		all = append(all, r.clone(p))
	}
	return all, nil
}

func (r *fakeProfileRepo) Insert(_ context.Context, p *domain.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return r.failWith
	}
	if _, ok := r.byUser[p.UserID]; ok {
		return out.ErrDuplicateUser
	}
	if _, ok := r.byHandle[p.Handle]; ok {
		return out.ErrDuplicateHandle
	}
	r.byUser[p.UserID] = r.clone(p)
	r.byHandle[p.Handle] = p.UserID
	return nil
}

func (r *fakeProfileRepo) Update(_ context.Context, userID uuid.UUID, fields out.ProfileFields) (*domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, r.failWith
	}
	p, ok := r.byUser[userID]
	if !ok {
		return nil, out.ErrNotFound
	}
	if fields.Handle != nil && *fields.Handle != p.Handle {
		if _, taken := r.byHandle[*fields.Handle]; taken {
			return nil, out.ErrDuplicateHandle
		}
		delete(r.byHandle, p.Handle)
		r.byHandle[*fields.Handle] = userID
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
		p.Skills = append([]string(nil), fields.Skills...)
	}
	if fields.Social != nil {
		p.Social = *fields.Social
	}
	return r.clone(p), nil
}

func (r *fakeProfileRepo) PushExperience(_ context.Context, userID uuid.UUID, exp domain.Experience) (*domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, r.failWith
	}
	p, ok := r.byUser[userID]
	if !ok {
		return nil, out.ErrNotFound
	}
	p.Experience = append([]domain.Experience{exp}, p.Experience...)
	return r.clone(p), nil
}

func (r *fakeProfileRepo) PullExperience(_ context.Context, userID uuid.UUID, expID string) (*domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, r.failWith
	}
	p, ok := r.byUser[userID]
	if !ok {
		return nil, out.ErrNotFound
	}
	kept := p.Experience[:0]
	for _, e := range p.Experience {
		if e.ID != expID {
			kept = append(kept, e)
		}
	}
	p.Experience = kept
	return r.clone(p), nil
}

func (r *fakeProfileRepo) PushEducation(_ context.Context, userID uuid.UUID, edu domain.Education) (*domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, r.failWith
	}
	p, ok := r.byUser[userID]
	if !ok {
		return nil, out.ErrNotFound
	}
	p.Education = append([]domain.Education{edu}, p.Education...)
	return r.clone(p), nil
}

func (r *fakeProfileRepo) PullEducation(_ context.Context, userID uuid.UUID, eduID string) (*domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, r.failWith
	}
	p, ok := r.byUser[userID]
	if !ok {
		return nil, out.ErrNotFound
	}
	kept := p.Education[:0]
	for _, e := range p.Education {
		if e.ID != eduID {
			kept = append(kept, e)
		}
	}
	p.Education = kept
	return r.clone(p), nil
}

type fakeUserRepo struct {
	users map[uuid.UUID]*domain.User
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	return r.users[id], nil
}

func (r *fakeUserRepo) GetByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.User, error) {
	m := make(map[uuid.UUID]*domain.User)
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			m[id] = u
		}
	}
	return m, nil
}

// ====== Helpers ======

func strptr(s string) *string { return &s }

func newTestService(repo *fakeProfileRepo, users map[uuid.UUID]*domain.User) *Service {
	if users == nil {
		users = map[uuid.UUID]*domain.User{}
	}
	return NewService(repo, &fakeUserRepo{users: users})
}

func validInput(handle string) domain.ProfileInput {
	return domain.ProfileInput{
		Handle: strptr(handle),
		Status: strptr("Developer"),
		Skills: strptr("Go,MongoDB"),
	}
}

func appErr(t *testing.T, err error) *apperr.AppError {
	t.Helper()
	require.Error(t, err)
	require.True(t, apperr.IsAppError(err))
	return apperr.AsAppError(err)
}

// ====== Upsert ======

func TestUpsertCreatesProfile(t *testing.T) {
	repo := newFakeProfileRepo()
	svc := newTestService(repo, nil)
	userID := uuid.New()

	in := validInput("johndoe")
	in.Company = strptr("Acme")
	in.Twitter = strptr("https://twitter.com/johndoe")

	p, err := svc.Upsert(context.Background(), userID, in)
	require.NoError(t, err)

	assert.NotEmpty(t, p.ID)
	assert.Equal(t, userID, p.UserID)
	assert.Equal(t, "johndoe", p.Handle)
	assert.Equal(t, "Acme", p.Company)
	assert.Equal(t, []string{"Go", "MongoDB"}, p.Skills)
	assert.Equal(t, "https://twitter.com/johndoe", p.Social.Twitter)
	assert.NotNil(t, p.Experience)
	assert.Empty(t, p.Experience)
	assert.NotNil(t, p.Education)
	assert.Empty(t, p.Education)
	assert.False(t, p.CreatedAt.IsZero())
}

func TestUpsertValidation(t *testing.T) {
	repo := newFakeProfileRepo()
	svc := newTestService(repo, nil)

	tests := []struct {
		name   string
		input  domain.ProfileInput
		fields []string
	}{
		{
			name:   "all required missing",
			input:  domain.ProfileInput{},
			fields: []string{"handle", "status", "skills"},
		},
		{
			name: "handle too short",
			input: domain.ProfileInput{
				Handle: strptr("j"),
				Status: strptr("Developer"),
				Skills: strptr("Go"),
			},
			fields: []string{"handle"},
		},
		{
			name: "bad website url",
			input: func() domain.ProfileInput {
				in := validInput("johndoe")
				in.Website = strptr("not-a-url")
				return in
			}(),
			fields: []string{"website"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Upsert(context.Background(), uuid.New(), tt.input)
			ae := appErr(t, err)
			assert.Equal(t, apperr.CodeValidationFailed, ae.Code)
			assert.Equal(t, 400, ae.Status)
			for _, f := range tt.fields {
				assert.Contains(t, ae.Details, f)
			}
		})
	}
}

func TestUpsertSparseMerge(t *testing.T) {
	repo := newFakeProfileRepo()
	svc := newTestService(repo, nil)
	userID := uuid.New()

	first := validInput("johndoe")
	first.Company = strptr("Acme")
	first.Youtube = strptr("https://youtube.com/@johndoe")
	_, err := svc.Upsert(context.Background(), userID, first)
	require.NoError(t, err)

	// Second call omits company; it must survive. The social object is
	// rebuilt from the present keys, so the omitted youtube link clears.
	second := validInput("johndoe")
	second.Bio = strptr("It is all about people!")
	second.Twitter = strptr("https://twitter.com/johndoe")

	p, err := svc.Upsert(context.Background(), userID, second)
	require.NoError(t, err)

	assert.Equal(t, "Acme", p.Company)
	assert.Equal(t, "It is all about people!", p.Bio)
	assert.Equal(t, "https://twitter.com/johndoe", p.Social.Twitter)
	assert.Empty(t, p.Social.Youtube)
}

func TestUpsertDoesNotDuplicate(t *testing.T) {
	repo := newFakeProfileRepo()
	svc := newTestService(repo, nil)
	userID := uuid.New()

	created, err := svc.Upsert(context.Background(), userID, validInput("johndoe"))
	require.NoError(t, err)

	updated, err := svc.Upsert(context.Background(), userID, validInput("johndoe"))
	require.NoError(t, err)

	assert.Equal(t, created.ID, updated.ID)
	all, err := svc.GetAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestUpsertHandleConflict(t *testing.T) {
	repo := newFakeProfileRepo()
	svc := newTestService(repo, nil)

	_, err := svc.Upsert(context.Background(), uuid.New(), validInput("johndoe"))
	require.NoError(t, err)

	_, err = svc.Upsert(context.Background(), uuid.New(), validInput("johndoe"))
	ae := appErr(t, err)
	assert.Equal(t, apperr.CodeConflict, ae.Code)
	assert.Equal(t, 409, ae.Status)

	all, err := svc.GetAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestUpsertHandleChangeConflict(t *testing.T) {
	repo := newFakeProfileRepo()
	svc := newTestService(repo, nil)

	_, err := svc.Upsert(context.Background(), uuid.New(), validInput("alice"))
	require.NoError(t, err)

	bob := uuid.New()
	_, err = svc.Upsert(context.Background(), bob, validInput("bob"))
	require.NoError(t, err)

	// Bob tries to take Alice's handle on a subsequent upsert.
	_, err = svc.Upsert(context.Background(), bob, validInput("alice"))
	ae := appErr(t, err)
	assert.Equal(t, apperr.CodeConflict, ae.Code)
	assert.Equal(t, 409, ae.Status)

	// Bob's profile keeps its handle.
	p, err := svc.GetByUserID(context.Background(), bob)
	require.NoError(t, err)
	assert.Equal(t, "bob", p.Handle)
}

func TestUpsertInsertRaceSurfacesConflict(t *testing.T) {
	repo := newFakeProfileRepo()
	svc := newTestService(repo, nil)

	_, err := svc.Upsert(context.Background(), uuid.New(), validInput("johndoe"))
	require.NoError(t, err)

	// The pre-insert lookup misses, so only the unique index stands
	// between the two writers.
	repo.missHandleOnce = true

	_, err = svc.Upsert(context.Background(), uuid.New(), validInput("johndoe"))
	ae := appErr(t, err)
	assert.Equal(t, 409, ae.Status)
}

func TestUpsertSkillsNotTrimmed(t *testing.T) {
	repo := newFakeProfileRepo()
	svc := newTestService(repo, nil)

	in := validInput("johndoe")
	in.Skills = strptr("Go, Rust,Go")

	p, err := svc.Upsert(context.Background(), uuid.New(), in)
	require.NoError(t, err)
	assert.Equal(t, []string{"Go", " Rust", "Go"}, p.Skills)
}

func TestUpsertStorageFailure(t *testing.T) {
	repo := newFakeProfileRepo()
	repo.failWith = assert.AnError
	svc := newTestService(repo, nil)

	_, err := svc.Upsert(context.Background(), uuid.New(), validInput("johndoe"))
	ae := appErr(t, err)
	assert.Equal(t, apperr.CodeDatabaseError, ae.Code)
	assert.Equal(t, 500, ae.Status)
}

// ====== Reads ======

func TestGetOwnNotFound(t *testing.T) {
	svc := newTestService(newFakeProfileRepo(), nil)

	_, err := svc.GetOwn(context.Background(), uuid.New())
	ae := appErr(t, err)
	assert.Equal(t, apperr.CodeNotFound, ae.Code)
	assert.Equal(t, 404, ae.Status)
}

func TestGetAllEmpty(t *testing.T) {
	svc := newTestService(newFakeProfileRepo(), nil)

	all, err := svc.GetAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)
}

func TestGetByHandleNotFound(t *testing.T) {
	svc := newTestService(newFakeProfileRepo(), nil)

	_, err := svc.GetByHandle(context.Background(), "ghost")
	ae := appErr(t, err)
	assert.Equal(t, 404, ae.Status)
}

func TestReadsAttachUserProjection(t *testing.T) {
	repo := newFakeProfileRepo()
	userID := uuid.New()
	name := "John Doe"
	avatar := "https://cdn.example.com/a.png"
	svc := newTestService(repo, map[uuid.UUID]*domain.User{
		userID: {ID: userID, Email: "john@example.com", Name: &name, AvatarURL: &avatar},
	})

	_, err := svc.Upsert(context.Background(), userID, validInput("johndoe"))
	require.NoError(t, err)

	p, err := svc.GetByHandle(context.Background(), "johndoe")
	require.NoError(t, err)
	require.NotNil(t, p.User)
	assert.Equal(t, "John Doe", p.User.Name)
	assert.Equal(t, avatar, p.User.Avatar)

	all, err := svc.GetAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.NotNil(t, all[0].User)
	assert.Equal(t, "John Doe", all[0].User.Name)
}

func TestReadsDegradeWhenUserMissing(t *testing.T) {
	repo := newFakeProfileRepo()
	userID := uuid.New()
	svc := newTestService(repo, nil)

	_, err := svc.Upsert(context.Background(), userID, validInput("johndoe"))
	require.NoError(t, err)

	p, err := svc.GetByUserID(context.Background(), userID)
	require.NoError(t, err)
	require.NotNil(t, p.User)
	assert.Empty(t, p.User.Name)
	assert.Empty(t, p.User.Avatar)
}

// ====== Experience / Education ======

func TestAddExperiencePrepends(t *testing.T) {
	repo := newFakeProfileRepo()
	svc := newTestService(repo, nil)
	userID := uuid.New()

	_, err := svc.Upsert(context.Background(), userID, validInput("johndoe"))
	require.NoError(t, err)

	_, err = svc.AddExperience(context.Background(), userID, domain.ExperienceInput{
		Title: "Engineer", Company: "Acme", From: "2019-01-01",
	})
	require.NoError(t, err)

	p, err := svc.AddExperience(context.Background(), userID, domain.ExperienceInput{
		Title: "Senior Engineer", Company: "Acme", From: "2022-01-01", Current: true,
	})
	require.NoError(t, err)

	require.Len(t, p.Experience, 2)
	assert.Equal(t, "Senior Engineer", p.Experience[0].Title)
	assert.Equal(t, "Engineer", p.Experience[1].Title)
	assert.NotEmpty(t, p.Experience[0].ID)
	assert.NotEqual(t, p.Experience[0].ID, p.Experience[1].ID)
}

func TestAddExperienceValidation(t *testing.T) {
	svc := newTestService(newFakeProfileRepo(), nil)

	_, err := svc.AddExperience(context.Background(), uuid.New(), domain.ExperienceInput{})
	ae := appErr(t, err)
	assert.Equal(t, apperr.CodeValidationFailed, ae.Code)
	assert.Contains(t, ae.Details, "title")
	assert.Contains(t, ae.Details, "company")
	assert.Contains(t, ae.Details, "from")
}

func TestAddExperienceWithoutProfile(t *testing.T) {
	svc := newTestService(newFakeProfileRepo(), nil)

	_, err := svc.AddExperience(context.Background(), uuid.New(), domain.ExperienceInput{
		Title: "Engineer", Company: "Acme", From: "2019-01-01",
	})
	ae := appErr(t, err)
	assert.Equal(t, 404, ae.Status)
}

func TestRemoveExperience(t *testing.T) {
	repo := newFakeProfileRepo()
	svc := newTestService(repo, nil)
	userID := uuid.New()

	_, err := svc.Upsert(context.Background(), userID, validInput("johndoe"))
	require.NoError(t, err)

	p, err := svc.AddExperience(context.Background(), userID, domain.ExperienceInput{
		Title: "Engineer", Company: "Acme", From: "2019-01-01",
	})
	require.NoError(t, err)
	expID := p.Experience[0].ID

	p, err = svc.RemoveExperience(context.Background(), userID, expID)
	require.NoError(t, err)
	assert.Empty(t, p.Experience)
}

func TestRemoveExperienceUnknownIDIsNoop(t *testing.T) {
	repo := newFakeProfileRepo()
	svc := newTestService(repo, nil)
	userID := uuid.New()

	_, err := svc.Upsert(context.Background(), userID, validInput("johndoe"))
	require.NoError(t, err)
	_, err = svc.AddExperience(context.Background(), userID, domain.ExperienceInput{
		Title: "Engineer", Company: "Acme", From: "2019-01-01",
	})
	require.NoError(t, err)

	p, err := svc.RemoveExperience(context.Background(), userID, "no-such-id")
	require.NoError(t, err)
	assert.Len(t, p.Experience, 1)
}

func TestEducationLifecycle(t *testing.T) {
	repo := newFakeProfileRepo()
	svc := newTestService(repo, nil)
	userID := uuid.New()

	_, err := svc.Upsert(context.Background(), userID, validInput("johndoe"))
	require.NoError(t, err)

	_, err = svc.AddEducation(context.Background(), userID, domain.EducationInput{})
	ae := appErr(t, err)
	assert.Equal(t, apperr.CodeValidationFailed, ae.Code)

	p, err := svc.AddEducation(context.Background(), userID, domain.EducationInput{
		School: "MIT", Degree: "BSc", FieldOfStudy: "CS", From: "2010-09-01",
	})
	require.NoError(t, err)
	require.Len(t, p.Education, 1)
	eduID := p.Education[0].ID

	p, err = svc.AddEducation(context.Background(), userID, domain.EducationInput{
		School: "Stanford", Degree: "MSc", FieldOfStudy: "CS", From: "2014-09-01",
	})
	require.NoError(t, err)
	assert.Equal(t, "Stanford", p.Education[0].School)
	assert.Equal(t, "MIT", p.Education[1].School)

	p, err = svc.RemoveEducation(context.Background(), userID, eduID)
	require.NoError(t, err)
	require.Len(t, p.Education, 1)
	assert.Equal(t, "Stanford", p.Education[0].School)
}
