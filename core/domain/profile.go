package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Profile is a user's public developer profile. Exactly one profile
// exists per user, and the handle is globally unique.
type Profile struct {
	ID             string       `json:"id" bson:"id"`
	UserID         uuid.UUID    `json:"user_id" bson:"user_id"`
	Handle         string       `json:"handle" bson:"handle"`
	Company        string       `json:"company,omitempty" bson:"company,omitempty"`
	Website        string       `json:"website,omitempty" bson:"website,omitempty"`
	Location       string       `json:"location,omitempty" bson:"location,omitempty"`
	Bio            string       `json:"bio,omitempty" bson:"bio,omitempty"`
	Status         string       `json:"status,omitempty" bson:"status,omitempty"`
	GithubUsername string       `json:"githubusername,omitempty" bson:"githubusername,omitempty"`
	Skills         []string     `json:"skills" bson:"skills"`
	Social         SocialLinks  `json:"social" bson:"social"`
	Experience     []Experience `json:"experience" bson:"experience"`
	Education      []Education  `json:"education" bson:"education"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`

	// User projection attached on reads; only name and avatar are
	// exposed from the linked user.
	User *UserInfo `json:"user,omitempty" bson:"-"`
}

// SocialLinks holds optional social network URLs.
type SocialLinks struct {
	Youtube   string `json:"youtube,omitempty" bson:"youtube,omitempty"`
	Twitter   string `json:"twitter,omitempty" bson:"twitter,omitempty"`
	Facebook  string `json:"facebook,omitempty" bson:"facebook,omitempty"`
	Linkedin  string `json:"linkedin,omitempty" bson:"linkedin,omitempty"`
	Instagram string `json:"instagram,omitempty" bson:"instagram,omitempty"`
}

// Experience is an embedded work history entry. Entries are kept newest
// first within the owning profile.
type Experience struct {
	ID          string `json:"id" bson:"id"`
	Title       string `json:"title" bson:"title"`
	Company     string `json:"company" bson:"company"`
	Location    string `json:"location,omitempty" bson:"location,omitempty"`
	From        string `json:"from" bson:"from"`
	To          string `json:"to,omitempty" bson:"to,omitempty"`
	Current     bool   `json:"current" bson:"current"`
	Description string `json:"description,omitempty" bson:"description,omitempty"`
}

// Education is an embedded education history entry, newest first.
type Education struct {
	ID           string `json:"id" bson:"id"`
	School       string `json:"school" bson:"school"`
	Degree       string `json:"degree" bson:"degree"`
	FieldOfStudy string `json:"fieldofstudy" bson:"fieldofstudy"`
	From         string `json:"from" bson:"from"`
	To           string `json:"to,omitempty" bson:"to,omitempty"`
	Current      bool   `json:"current" bson:"current"`
	Description  string `json:"description,omitempty" bson:"description,omitempty"`
}

// ProfileInput is the upsert request payload. Nil pointers mean the
// field was absent from the request and must not overwrite stored state.
type ProfileInput struct {
	Handle         *string `json:"handle,omitempty"`
	Company        *string `json:"company,omitempty"`
	Website        *string `json:"website,omitempty"`
	Location       *string `json:"location,omitempty"`
	Bio            *string `json:"bio,omitempty"`
	Status         *string `json:"status,omitempty"`
	GithubUsername *string `json:"githubusername,omitempty"`
	Skills         *string `json:"skills,omitempty"`
	Youtube        *string `json:"youtube,omitempty"`
	Twitter        *string `json:"twitter,omitempty"`
	Facebook       *string `json:"facebook,omitempty"`
	Linkedin       *string `json:"linkedin,omitempty"`
	Instagram      *string `json:"instagram,omitempty"`
}

// SocialLinks assembles the social sub-object from the present keys.
// The upsert replaces the stored social object wholesale with this one.
func (in *ProfileInput) SocialLinks() SocialLinks {
	var s SocialLinks
	if in.Youtube != nil {
		s.Youtube = *in.Youtube
	}
	if in.Twitter != nil {
		s.Twitter = *in.Twitter
	}
	if in.Facebook != nil {
		s.Facebook = *in.Facebook
	}
	if in.Linkedin != nil {
		s.Linkedin = *in.Linkedin
	}
	if in.Instagram != nil {
		s.Instagram = *in.Instagram
	}
	return s
}

// SplitSkills splits a comma-separated skills string into an ordered
// list. Tokens are intentionally not trimmed or deduplicated.
func SplitSkills(skills string) []string {
	return strings.Split(skills, ",")
}

// ExperienceInput is the add-experience request payload.
type ExperienceInput struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	From        string `json:"from"`
	To          string `json:"to"`
	Current     bool   `json:"current"`
	Description string `json:"description"`
}

// EducationInput is the add-education request payload.
type EducationInput struct {
	School       string `json:"school"`
	Degree       string `json:"degree"`
	FieldOfStudy string `json:"fieldofstudy"`
	From         string `json:"from"`
	To           string `json:"to"`
	Current      bool   `json:"current"`
	Description  string `json:"description"`
}
