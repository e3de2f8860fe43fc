package http

import (
	"github.com/gofiber/fiber/v2"
)

// PostsHandler holds the posts routes. Posts and comments are not built
// yet; only the route self-test is exposed.
type PostsHandler struct{}

// NewPostsHandler creates a new PostsHandler.
func NewPostsHandler() *PostsHandler {
	return &PostsHandler{}
}

// Register registers posts routes.
func (h *PostsHandler) Register(app *fiber.App) {
	posts := app.Group("/api/posts")
	posts.Get("/test", h.Test)
}

// Test is the public route self-test.
func (h *PostsHandler) Test(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"msg": "Posts Works!"})
}
