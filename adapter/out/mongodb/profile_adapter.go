// Package mongodb implements MongoDB adapters for the application.
package mongodb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/johsire/dev-connector/core/domain"
	"github.com/johsire/dev-connector/core/port/out"
	"github.com/johsire/dev-connector/pkg/logger"
)

const collectionProfiles = "profiles"

// ProfileAdapter implements out.ProfileRepository using MongoDB.
//
// Every mutation is a single field-scoped update ($set, $push with
// $position 0, $pull by entry id) so concurrent requests against the
// same document never lose each other's writes. Calls run through a
// circuit breaker; an open breaker surfaces as a storage error rather
// than piling requests onto a failing cluster.
type ProfileAdapter struct {
	collection *mongo.Collection
	cb         *gobreaker.CircuitBreaker
}

// NewProfileAdapter creates a new MongoDB profile adapter.
func NewProfileAdapter(db *mongo.Database) *ProfileAdapter {
	cbSettings := gobreaker.Settings{
		Name:     "mongodb-profiles",
		Interval: 60 * time.Second,
		Timeout:  30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.ConsecutiveFailures > 5 ||
				(counts.Requests >= 10 && failureRatio >= 0.6)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("[CircuitBreaker] %s: state changed from %s to %s", name, from.String(), to.String())
		},
	}

	return &ProfileAdapter{
		collection: db.Collection(collectionProfiles),
		cb:         gobreaker.NewCircuitBreaker(cbSettings),
	}
}

// EnsureIndexes creates the unique indexes backing the profile
// invariants: one profile per user and globally unique handles.
func (a *ProfileAdapter) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_user_id"),
		},
		{
			Keys:    bson.D{{Key: "handle", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_handle"),
		},
	}

	_, err := a.collection.Indexes().CreateMany(ctx, indexes)
	return err
}

// =============================================================================
// Document Model
// =============================================================================

type profileDocument struct {
	ID             string              `bson:"id"`
	UserID         string              `bson:"user_id"`
	Handle         string              `bson:"handle"`
	Company        string              `bson:"company,omitempty"`
	Website        string              `bson:"website,omitempty"`
	Location       string              `bson:"location,omitempty"`
	Bio            string              `bson:"bio,omitempty"`
	Status         string              `bson:"status,omitempty"`
	GithubUsername string              `bson:"githubusername,omitempty"`
	Skills         []string            `bson:"skills"`
	Social         domain.SocialLinks  `bson:"social"`
	Experience     []domain.Experience `bson:"experience"`
	Education      []domain.Education  `bson:"education"`
	CreatedAt      time.Time           `bson:"created_at"`
	UpdatedAt      time.Time           `bson:"updated_at"`
}

func toDocument(p *domain.Profile) *profileDocument {
	doc := &profileDocument{
		ID:             p.ID,
		UserID:         p.UserID.String(),
		Handle:         p.Handle,
		Company:        p.Company,
		Website:        p.Website,
		Location:       p.Location,
		Bio:            p.Bio,
		Status:         p.Status,
		GithubUsername: p.GithubUsername,
		Skills:         p.Skills,
		Social:         p.Social,
		Experience:     p.Experience,
		Education:      p.Education,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
	if doc.Skills == nil {
		doc.Skills = []string{}
	}
	if doc.Experience == nil {
		doc.Experience = []domain.Experience{}
	}
	if doc.Education == nil {
		doc.Education = []domain.Education{}
	}
	return doc
}

func (doc *profileDocument) toEntity() (*domain.Profile, error) {
	userID, err := uuid.Parse(doc.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse user ID: %w", err)
	}

	p := &domain.Profile{
		ID:             doc.ID,
		UserID:         userID,
		Handle:         doc.Handle,
		Company:        doc.Company,
		Website:        doc.Website,
		Location:       doc.Location,
		Bio:            doc.Bio,
		Status:         doc.Status,
		GithubUsername: doc.GithubUsername,
		Skills:         doc.Skills,
		Social:         doc.Social,
		Experience:     doc.Experience,
		Education:      doc.Education,
		CreatedAt:      doc.CreatedAt,
		UpdatedAt:      doc.UpdatedAt,
	}
	if p.Skills == nil {
		p.Skills = []string{}
	}
	if p.Experience == nil {
		p.Experience = []domain.Experience{}
	}
	if p.Education == nil {
		p.Education = []domain.Education{}
	}
	return p, nil
}

// =============================================================================
// Lookups
// =============================================================================

// FindByUserID retrieves the profile owned by the given user.
func (a *ProfileAdapter) FindByUserID(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	return a.findOne(ctx, bson.M{"user_id": userID.String()})
}

// FindByHandle retrieves the profile with the given handle.
func (a *ProfileAdapter) FindByHandle(ctx context.Context, handle string) (*domain.Profile, error) {
	return a.findOne(ctx, bson.M{"handle": handle})
}

// FindAll retrieves every profile in storage order.
func (a *ProfileAdapter) FindAll(ctx context.Context) ([]*domain.Profile, error) {
	v, err := a.cb.Execute(func() (interface{}, error) {
		cursor, err := a.collection.Find(ctx, bson.M{})
		if err != nil {
			return nil, fmt.Errorf("failed to list profiles: %w", err)
		}
		defer cursor.Close(ctx)

		profiles := []*domain.Profile{}
		for cursor.Next(ctx) {
			var doc profileDocument
			if err := cursor.Decode(&doc); err != nil {
				return nil, fmt.Errorf("failed to decode profile: %w", err)
			}
			p, err := doc.toEntity()
			if err != nil {
				return nil, err
			}
			profiles = append(profiles, p)
		}
		if err := cursor.Err(); err != nil {
			return nil, fmt.Errorf("cursor error: %w", err)
		}
		return profiles, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]*domain.Profile), nil
}

// =============================================================================
// Mutations
// =============================================================================

// Insert creates a new profile document.
func (a *ProfileAdapter) Insert(ctx context.Context, profile *domain.Profile) error {
	v, err := a.cb.Execute(func() (interface{}, error) {
		if _, err := a.collection.InsertOne(ctx, toDocument(profile)); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				// Not-found/conflict outcomes are domain results, not
				// storage failures; keep them off the breaker counters.
				return duplicateError(err), nil
			}
			return nil, fmt.Errorf("failed to insert profile: %w", err)
		}
		return nil, nil
	})
	if err != nil {
		return err
	}
	if derr, ok := v.(error); ok {
		return derr
	}
	return nil
}

// Update applies the sparse field set to the user's document and
// returns the updated profile.
func (a *ProfileAdapter) Update(ctx context.Context, userID uuid.UUID, fields out.ProfileFields) (*domain.Profile, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if fields.Handle != nil {
		set["handle"] = *fields.Handle
	}
	if fields.Company != nil {
		set["company"] = *fields.Company
	}
	if fields.Website != nil {
		set["website"] = *fields.Website
	}
	if fields.Location != nil {
		set["location"] = *fields.Location
	}
	if fields.Bio != nil {
		set["bio"] = *fields.Bio
	}
	if fields.Status != nil {
		set["status"] = *fields.Status
	}
	if fields.GithubUsername != nil {
		set["githubusername"] = *fields.GithubUsername
	}
	if fields.Skills != nil {
		set["skills"] = fields.Skills
	}
	if fields.Social != nil {
		set["social"] = *fields.Social
	}

	return a.findOneAndUpdate(ctx, userID, bson.M{"$set": set})
}

// PushExperience inserts the entry at index 0 of the experience list.
func (a *ProfileAdapter) PushExperience(ctx context.Context, userID uuid.UUID, exp domain.Experience) (*domain.Profile, error) {
	return a.findOneAndUpdate(ctx, userID, bson.M{
		"$push": bson.M{"experience": bson.M{"$each": bson.A{exp}, "$position": 0}},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
}

// PullExperience removes the experience entry with the given id.
// Unknown ids leave the list untouched.
func (a *ProfileAdapter) PullExperience(ctx context.Context, userID uuid.UUID, expID string) (*domain.Profile, error) {
	return a.findOneAndUpdate(ctx, userID, bson.M{
		"$pull": bson.M{"experience": bson.M{"id": expID}},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
}

// PushEducation inserts the entry at index 0 of the education list.
func (a *ProfileAdapter) PushEducation(ctx context.Context, userID uuid.UUID, edu domain.Education) (*domain.Profile, error) {
	return a.findOneAndUpdate(ctx, userID, bson.M{
		"$push": bson.M{"education": bson.M{"$each": bson.A{edu}, "$position": 0}},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
}

// PullEducation removes the education entry with the given id.
func (a *ProfileAdapter) PullEducation(ctx context.Context, userID uuid.UUID, eduID string) (*domain.Profile, error) {
	return a.findOneAndUpdate(ctx, userID, bson.M{
		"$pull": bson.M{"education": bson.M{"id": eduID}},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
}

// =============================================================================
// Internals
// =============================================================================

func (a *ProfileAdapter) findOne(ctx context.Context, filter bson.M) (*domain.Profile, error) {
	v, err := a.cb.Execute(func() (interface{}, error) {
		var doc profileDocument
		err := a.collection.FindOne(ctx, filter).Decode(&doc)
		if err == mongo.ErrNoDocuments {
			return (*profileDocument)(nil), nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to find profile: %w", err)
		}
		return &doc, nil
	})
	if err != nil {
		return nil, err
	}

	doc := v.(*profileDocument)
	if doc == nil {
		return nil, out.ErrNotFound
	}
	return doc.toEntity()
}

func (a *ProfileAdapter) findOneAndUpdate(ctx context.Context, userID uuid.UUID, update bson.M) (*domain.Profile, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	filter := bson.M{"user_id": userID.String()}

	v, err := a.cb.Execute(func() (interface{}, error) {
		var doc profileDocument
		err := a.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
		if err == mongo.ErrNoDocuments {
			return (*profileDocument)(nil), nil
		}
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return duplicateError(err), nil
			}
			return nil, fmt.Errorf("failed to update profile: %w", err)
		}
		return &doc, nil
	})
	if err != nil {
		return nil, err
	}

	switch res := v.(type) {
	case error:
		return nil, res
	case *profileDocument:
		if res == nil {
			return nil, out.ErrNotFound
		}
		return res.toEntity()
	default:
		return nil, fmt.Errorf("unexpected result type %T", v)
	}
}

// duplicateError maps a unique index violation to the port sentinel for
// the index that rejected the write.
func duplicateError(err error) error {
	if strings.Contains(err.Error(), "uniq_handle") || strings.Contains(err.Error(), "handle") {
		return out.ErrDuplicateHandle
	}
	return out.ErrDuplicateUser
}

var _ out.ProfileRepository = (*ProfileAdapter)(nil)
