package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/johsire/dev-connector/core/domain"
	"github.com/johsire/dev-connector/core/port/in"
	"github.com/johsire/dev-connector/pkg/apperr"
	"github.com/johsire/dev-connector/pkg/response"
)

// ProfileHandler handles profile HTTP requests.
type ProfileHandler struct {
	service in.ProfileService
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(service in.ProfileService) *ProfileHandler {
	return &ProfileHandler{service: service}
}

// Register registers profile routes. Routes guarded by auth require a
// valid bearer token; the rest are public.
func (h *ProfileHandler) Register(app *fiber.App, auth fiber.Handler) {
	profile := app.Group("/api/profile")

	// Public
	profile.Get("/test", h.Test)
	profile.Get("/all", h.GetAll)
	profile.Get("/handle/:handle", h.GetByHandle)
	profile.Get("/user/:user_id", h.GetByUser)

	// Private
	profile.Get("/", auth, h.GetOwn)
	profile.Post("/", auth, h.Upsert)
	profile.Post("/experience", auth, h.AddExperience)
	profile.Post("/education", auth, h.AddEducation)
	profile.Delete("/experience/:exp_id", auth, h.RemoveExperience)
	profile.Delete("/education/:edu_id", auth, h.RemoveEducation)
}

// Test is the public route self-test.
func (h *ProfileHandler) Test(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"msg": "Profile Works!"})
}

// GetOwn returns the authenticated caller's profile.
func (h *ProfileHandler) GetOwn(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return apperr.Unauthorized("")
	}

	profile, err := h.service.GetOwn(c.Context(), userID)
	if err != nil {
		return err
	}
	return response.OK(c, profile)
}

// GetAll returns every profile. An empty store yields an empty list.
func (h *ProfileHandler) GetAll(c *fiber.Ctx) error {
	profiles, err := h.service.GetAll(c.Context())
	if err != nil {
		return err
	}
	return response.OK(c, profiles)
}

// GetByHandle returns the profile with the given handle.
func (h *ProfileHandler) GetByHandle(c *fiber.Ctx) error {
	handle := c.Params("handle")

	profile, err := h.service.GetByHandle(c.Context(), handle)
	if err != nil {
		return err
	}
	return response.OK(c, profile)
}

// GetByUser returns the profile owned by the given user.
func (h *ProfileHandler) GetByUser(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("user_id"))
	if err != nil {
		return apperr.BadRequest("invalid user id")
	}

	profile, err := h.service.GetByUserID(c.Context(), userID)
	if err != nil {
		return err
	}
	return response.OK(c, profile)
}

// Upsert creates or merges the caller's profile.
func (h *ProfileHandler) Upsert(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return apperr.Unauthorized("")
	}

	var input domain.ProfileInput
	if err := c.BodyParser(&input); err != nil {
		return apperr.BadRequest("invalid request body")
	}

	profile, err := h.service.Upsert(c.Context(), userID, input)
	if err != nil {
		return err
	}
	return response.OK(c, profile)
}

// AddExperience prepends a work history entry to the caller's profile.
func (h *ProfileHandler) AddExperience(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return apperr.Unauthorized("")
	}

	var input domain.ExperienceInput
	if err := c.BodyParser(&input); err != nil {
		return apperr.BadRequest("invalid request body")
	}

	profile, err := h.service.AddExperience(c.Context(), userID, input)
	if err != nil {
		return err
	}
	return response.OK(c, profile)
}

// RemoveExperience removes a work history entry by id.
func (h *ProfileHandler) RemoveExperience(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return apperr.Unauthorized("")
	}

	profile, err := h.service.RemoveExperience(c.Context(), userID, c.Params("exp_id"))
	if err != nil {
		return err
	}
	return response.OK(c, profile)
}

// AddEducation prepends an education entry to the caller's profile.
func (h *ProfileHandler) AddEducation(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return apperr.Unauthorized("")
	}

	var input domain.EducationInput
	if err := c.BodyParser(&input); err != nil {
		return apperr.BadRequest("invalid request body")
	}

	profile, err := h.service.AddEducation(c.Context(), userID, input)
	if err != nil {
		return err
	}
	return response.OK(c, profile)
}

// RemoveEducation removes an education entry by id.
func (h *ProfileHandler) RemoveEducation(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return apperr.Unauthorized("")
	}

	profile, err := h.service.RemoveEducation(c.Context(), userID, c.Params("edu_id"))
	if err != nil {
		return err
	}
	return response.OK(c, profile)
}
