package api

import (
	"errors"

	"github.com/Zhihong0321/ATAP-solar/internal/atap"
	"github.com/Zhihong0321/ATAP-solar/internal/logger"
	"github.com/Zhihong0321/ATAP-solar/internal/middleware"
	"github.com/Zhihong0321/ATAP-solar/internal/newsroom"
	"github.com/gofiber/fiber/v2"
)

// Admin endpoints mediate every editorial action through the coordinator.
// Remote API failures surface their message verbatim so the operator sees
// exactly what the backend said; there is no translation layer.

func (h *Handlers) adminError(c *fiber.Ctx, err error) error {
	if errors.Is(err, newsroom.ErrConfirmationRequired) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Pass confirm=true to delete",
		})
	}
	status := fiber.StatusBadGateway
	var reqErr *atap.RequestError
	if errors.As(err, &reqErr) {
		// Token problems propagate as-is so the UI can force re-login.
		if reqErr.StatusCode == fiber.StatusUnauthorized || reqErr.StatusCode == fiber.StatusForbidden {
			status = reqErr.StatusCode
		}
	}
	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}

func confirmed(c *fiber.Ctx) bool {
	return c.Query("confirm") == "true"
}

// AdminState handles GET /api/admin/state
func (h *Handlers) AdminState(c *fiber.Ctx) error {
	return c.JSON(h.coordinator.Snapshot())
}

// AdminSync handles POST /api/admin/sync, the "Sync Data" action: a full
// reload of all four collections.
func (h *Handlers) AdminSync(c *fiber.Ctx) error {
	snapshot := h.coordinator.Load(c.Context(), middleware.Token(c))
	return c.JSON(snapshot)
}

// AdminClearError handles POST /api/admin/errors/clear
func (h *Handlers) AdminClearError(c *fiber.Ctx) error {
	h.coordinator.ClearError()
	return c.SendStatus(fiber.StatusNoContent)
}

// --- News ---

// AdminCreateNews handles POST /api/admin/news
func (h *Handlers) AdminCreateNews(c *fiber.Ctx) error {
	var payload atap.NewsPayload
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body: " + err.Error(),
		})
	}
	if fields, ok := h.validator.Validate(payload); !ok {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":  "Validation failed",
			"fields": fields,
		})
	}

	created, err := h.coordinator.CreateNews(c.Context(), middleware.Token(c), payload)
	if err != nil {
		return h.adminError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// AdminUpdateNews handles PUT /api/admin/news/:id
func (h *Handlers) AdminUpdateNews(c *fiber.Ctx) error {
	var payload atap.NewsPayload
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body: " + err.Error(),
		})
	}
	if fields, ok := h.validator.Validate(payload); !ok {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":  "Validation failed",
			"fields": fields,
		})
	}

	updated, err := h.coordinator.UpdateNews(c.Context(), middleware.Token(c), c.Params("id"), payload)
	if err != nil {
		return h.adminError(c, err)
	}
	return c.JSON(updated)
}

// AdminPublishNews handles PATCH /api/admin/news/:id/publish
func (h *Handlers) AdminPublishNews(c *fiber.Ctx) error {
	var payload atap.PublishPayload
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body: " + err.Error(),
		})
	}
	updated, err := h.coordinator.TogglePublish(c.Context(), middleware.Token(c), c.Params("id"), payload)
	if err != nil {
		return h.adminError(c, err)
	}
	return c.JSON(updated)
}

// AdminDeleteNews handles DELETE /api/admin/news/:id?confirm=true
func (h *Handlers) AdminDeleteNews(c *fiber.Ctx) error {
	err := h.coordinator.DeleteNews(c.Context(), middleware.Token(c), c.Params("id"), confirmed(c))
	if err != nil {
		return h.adminError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AdminRefreshNews handles POST /api/admin/news/:id/refresh: re-fetch one
// item from the remote API instead of trusting the last mutation response.
func (h *Handlers) AdminRefreshNews(c *fiber.Ctx) error {
	fresh, err := h.coordinator.RefreshNews(c.Context(), c.Params("id"))
	if err != nil {
		return h.adminError(c, err)
	}
	if fresh == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "News not found",
		})
	}
	return c.JSON(fresh)
}

// --- Tasks ---

// AdminCreateTask handles POST /api/admin/tasks
func (h *Handlers) AdminCreateTask(c *fiber.Ctx) error {
	var payload atap.TaskPayload
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body: " + err.Error(),
		})
	}
	if fields, ok := h.validator.Validate(payload); !ok {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":  "Validation failed",
			"fields": fields,
		})
	}
	created, err := h.coordinator.CreateTask(c.Context(), middleware.Token(c), payload)
	if err != nil {
		return h.adminError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// AdminUpdateTask handles PUT /api/admin/tasks/:id
func (h *Handlers) AdminUpdateTask(c *fiber.Ctx) error {
	var payload atap.TaskPayload
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body: " + err.Error(),
		})
	}
	if fields, ok := h.validator.Validate(payload); !ok {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":  "Validation failed",
			"fields": fields,
		})
	}
	updated, err := h.coordinator.UpdateTask(c.Context(), middleware.Token(c), c.Params("id"), payload)
	if err != nil {
		return h.adminError(c, err)
	}
	return c.JSON(updated)
}

// AdminDeleteTask handles DELETE /api/admin/tasks/:id?confirm=true
func (h *Handlers) AdminDeleteTask(c *fiber.Ctx) error {
	err := h.coordinator.DeleteTask(c.Context(), middleware.Token(c), c.Params("id"), confirmed(c))
	if err != nil {
		return h.adminError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AdminRunTask handles POST /api/admin/tasks/:id/run. The discovery work is
// asynchronous; a delayed reload picks up its results best-effort.
func (h *Handlers) AdminRunTask(c *fiber.Ctx) error {
	if err := h.coordinator.RunTask(c.Context(), middleware.Token(c), c.Params("id")); err != nil {
		return h.adminError(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"status":  "started",
		"message": "Discovery task started",
	})
}

// AdminProcessRewrites handles POST /api/admin/process-rewrites
func (h *Handlers) AdminProcessRewrites(c *fiber.Ctx) error {
	if err := h.coordinator.ProcessRewrites(c.Context(), middleware.Token(c)); err != nil {
		return h.adminError(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"status":  "started",
		"message": "Batch processing triggered; results will appear in the drafts list shortly",
	})
}

// --- Categories & tags ---

type namePayload struct {
	Name string `json:"name" validate:"required"`
}

// AdminCreateCategory handles POST /api/admin/categories
func (h *Handlers) AdminCreateCategory(c *fiber.Ctx) error {
	var payload namePayload
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body: " + err.Error(),
		})
	}
	if fields, ok := h.validator.Validate(payload); !ok {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":  "Validation failed",
			"fields": fields,
		})
	}
	created, err := h.coordinator.CreateCategory(c.Context(), middleware.Token(c), payload.Name)
	if err != nil {
		return h.adminError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// AdminUpdateCategory handles PUT /api/admin/categories/:id
func (h *Handlers) AdminUpdateCategory(c *fiber.Ctx) error {
	var payload namePayload
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body: " + err.Error(),
		})
	}
	if fields, ok := h.validator.Validate(payload); !ok {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":  "Validation failed",
			"fields": fields,
		})
	}
	updated, err := h.coordinator.UpdateCategory(c.Context(), middleware.Token(c), c.Params("id"), payload.Name)
	if err != nil {
		return h.adminError(c, err)
	}
	return c.JSON(updated)
}

// AdminDeleteCategory handles DELETE /api/admin/categories/:id?confirm=true
func (h *Handlers) AdminDeleteCategory(c *fiber.Ctx) error {
	err := h.coordinator.DeleteCategory(c.Context(), middleware.Token(c), c.Params("id"), confirmed(c))
	if err != nil {
		return h.adminError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AdminCreateTag handles POST /api/admin/categories/:id/tags
func (h *Handlers) AdminCreateTag(c *fiber.Ctx) error {
	var payload namePayload
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body: " + err.Error(),
		})
	}
	if fields, ok := h.validator.Validate(payload); !ok {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":  "Validation failed",
			"fields": fields,
		})
	}
	created, err := h.coordinator.CreateTag(c.Context(), middleware.Token(c), c.Params("id"), payload.Name)
	if err != nil {
		return h.adminError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// AdminDeleteTag handles DELETE /api/admin/tags/:id?confirm=true
func (h *Handlers) AdminDeleteTag(c *fiber.Ctx) error {
	err := h.coordinator.DeleteTag(c.Context(), middleware.Token(c), c.Params("id"), confirmed(c))
	if err != nil {
		return h.adminError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// --- Media ---

// AdminUploadMedia handles POST /api/admin/media (multipart field "image");
// returns the public image_url to store on a news item.
func (h *Handlers) AdminUploadMedia(c *fiber.Ctx) error {
	if h.uploader == nil {
		return c.Status(fiber.StatusNotImplemented).JSON(fiber.Map{
			"error": "Media uploads are not configured",
		})
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing image file",
		})
	}
	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unreadable image file",
		})
	}
	defer file.Close()

	imageURL, err := h.uploader.UploadImage(c.Context(), fileHeader.Filename, fileHeader.Header.Get("Content-Type"), file)
	if err != nil {
		logger.WithError(err).Msg("Image upload failed")
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Failed to upload image",
		})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"image_url": imageURL,
	})
}
