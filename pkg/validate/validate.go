// Package validate holds pure input validators. Each validator takes a
// request payload and returns a field-keyed error map plus a validity
// flag; no validator touches storage or any other state.
package validate

import (
	"net/url"
	"strings"

	"github.com/johsire/dev-connector/core/domain"
)

const (
	handleMin = 2
	handleMax = 40
)

// ProfileInput validates the profile upsert payload.
func ProfileInput(in domain.ProfileInput) (map[string]string, bool) {
	errs := make(map[string]string)

	switch {
	case in.Handle == nil || strings.TrimSpace(*in.Handle) == "":
		errs["handle"] = "Profile handle is required"
	case len(*in.Handle) < handleMin || len(*in.Handle) > handleMax:
		errs["handle"] = "Handle needs to be between 2 and 40 characters"
	}

	if in.Status == nil || strings.TrimSpace(*in.Status) == "" {
		errs["status"] = "Status field is required"
	}

	if in.Skills == nil || strings.TrimSpace(*in.Skills) == "" {
		errs["skills"] = "Skills field is required"
	}

	checkURL(errs, "website", in.Website)
	checkURL(errs, "youtube", in.Youtube)
	checkURL(errs, "twitter", in.Twitter)
	checkURL(errs, "facebook", in.Facebook)
	checkURL(errs, "linkedin", in.Linkedin)
	checkURL(errs, "instagram", in.Instagram)

	return errs, len(errs) == 0
}

// ExperienceInput validates the add-experience payload.
func ExperienceInput(in domain.ExperienceInput) (map[string]string, bool) {
	errs := make(map[string]string)

	if strings.TrimSpace(in.Title) == "" {
		errs["title"] = "Job title field is required"
	}
	if strings.TrimSpace(in.Company) == "" {
		errs["company"] = "Company field is required"
	}
	if strings.TrimSpace(in.From) == "" {
		errs["from"] = "From date field is required"
	}

	return errs, len(errs) == 0
}

// EducationInput validates the add-education payload.
func EducationInput(in domain.EducationInput) (map[string]string, bool) {
	errs := make(map[string]string)

	if strings.TrimSpace(in.School) == "" {
		errs["school"] = "School field is required"
	}
	if strings.TrimSpace(in.Degree) == "" {
		errs["degree"] = "Degree field is required"
	}
	if strings.TrimSpace(in.FieldOfStudy) == "" {
		errs["fieldofstudy"] = "Field of study is required"
	}
	if strings.TrimSpace(in.From) == "" {
		errs["from"] = "From date field is required"
	}

	return errs, len(errs) == 0
}

// checkURL flags a present, non-empty field that is not an absolute URL.
// Empty strings are allowed so callers can clear a stored link.
func checkURL(errs map[string]string, field string, value *string) {
	if value == nil || *value == "" {
		return
	}
	u, err := url.Parse(*value)
	if err != nil || !u.IsAbs() || u.Host == "" {
		errs[field] = "Not a valid URL"
	}
}
