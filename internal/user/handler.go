package user

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes the user service over HTTP.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the REST surface. The range route is registered
// before the :id route so "range" is not swallowed by the id parameter.
func (h *Handler) RegisterRoutes(app *fiber.App) {
	app.Get("/users", h.getAllUsers)
	app.Get("/users/range", h.getUsersByBirthDateRange)
	app.Get("/users/:id", h.getUser)
	app.Post("/users", h.createUser)
	app.Put("/users/:id", h.updateAllUserInfo)
	app.Patch("/users/:id", h.updateUserInfo)
	app.Delete("/users/:id", h.deleteUser)
}

func (h *Handler) getAllUsers(c *fiber.Ctx) error {
	users, err := h.service.GetAllUsers()
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(users)
}

func (h *Handler) getUser(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return jsonMessage(c, fiber.StatusBadRequest, err.Error())
	}

	u, err := h.service.GetUser(id)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(u)
}

func (h *Handler) getUsersByBirthDateRange(c *fiber.Ctx) error {
	from, err := ParseDate(c.Query("from"))
	if err != nil {
		return jsonMessage(c, fiber.StatusBadRequest, err.Error())
	}
	to, err := ParseDate(c.Query("to"))
	if err != nil {
		return jsonMessage(c, fiber.StatusBadRequest, err.Error())
	}

	users, err := h.service.GetUsersByBirthDateRange(from, to)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(users)
}

func (h *Handler) createUser(c *fiber.Ctx) error {
	candidate := new(User)
	if err := c.BodyParser(candidate); err != nil {
		return jsonMessage(c, fiber.StatusBadRequest, err.Error())
	}

	created, err := h.service.CreateUser(*candidate)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(created)
}

func (h *Handler) updateAllUserInfo(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return jsonMessage(c, fiber.StatusBadRequest, err.Error())
	}

	candidate := new(User)
	if err := c.BodyParser(candidate); err != nil {
		return jsonMessage(c, fiber.StatusBadRequest, err.Error())
	}

	updated, err := h.service.UpdateAllUserInfo(id, *candidate)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(updated)
}

func (h *Handler) updateUserInfo(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return jsonMessage(c, fiber.StatusBadRequest, err.Error())
	}

	candidate := new(User)
	if err := c.BodyParser(candidate); err != nil {
		return jsonMessage(c, fiber.StatusBadRequest, err.Error())
	}

	updated, err := h.service.UpdateUserInfo(id, *candidate)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(updated)
}

func (h *Handler) deleteUser(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return jsonMessage(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.DeleteUser(id); err != nil {
		return respondError(c, err)
	}

	return jsonMessage(c, fiber.StatusOK, "User deleted")
}

func parseID(c *fiber.Ctx) (int64, error) {
	return strconv.ParseInt(c.Params("id"), 10, 64)
}

// respondError translates the closed domain error set to HTTP: every domain
// kind becomes 400 with its message as the body, anything else 500.
func respondError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError

	var verr *ValidationError
	switch {
	case errors.Is(err, ErrNoUser),
		errors.Is(err, ErrUserExists),
		errors.Is(err, ErrUnderage),
		errors.Is(err, ErrBadRange),
		errors.As(err, &verr):
		status = fiber.StatusBadRequest
	}

	return jsonMessage(c, status, err.Error())
}

// jsonMessage writes a bare string body under the JSON media type. Existing
// clients expect unwrapped message strings, so no error envelope here.
func jsonMessage(c *fiber.Ctx, status int, msg string) error {
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Status(status).SendString(msg)
}
