package controller

import (
	"errors"

	"notekeeper-be/internal/dto"
	"notekeeper-be/internal/pkg/logger"
	"notekeeper-be/internal/pkg/serverutils"
	"notekeeper-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

const (
	notePageModule = "NotePageController"
	layoutMain     = "layouts/main"
	flashKey       = "flash"
	loginPath      = "/login"
)

// INotePageController serves the server-rendered CRUD pages.
type INotePageController interface {
	RegisterRoutes(r fiber.Router)
}

type notePageController struct {
	noteService  service.INoteService
	authService  service.IAuthService
	sessions     *session.Store
	secureCookie bool
	logger       logger.ILogger
}

func NewNotePageController(
	noteService service.INoteService,
	authService service.IAuthService,
	sessions *session.Store,
	secureCookie bool,
	log logger.ILogger,
) INotePageController {
	return &notePageController{
		noteService:  noteService,
		authService:  authService,
		sessions:     sessions,
		secureCookie: secureCookie,
		logger:       log,
	}
}

func (c *notePageController) RegisterRoutes(r fiber.Router) {
	r.Get("/", func(ctx *fiber.Ctx) error { return ctx.Redirect("/notes", fiber.StatusSeeOther) })
	r.Get(loginPath, c.LoginForm)
	r.Post(loginPath, c.Login)
	r.Post("/logout", c.Logout)

	h := r.Group("/notes", serverutils.JwtPageMiddleware(c.authService, loginPath))
	h.Get("", c.Index)
	h.Get("/new", c.New)
	h.Post("", c.Create)
	h.Get("/:id", c.Show)
	h.Get("/:id/edit", c.Edit)
	h.Post("/:id", c.Update)
	h.Post("/:id/delete", c.Destroy)
}

func (c *notePageController) LoginForm(ctx *fiber.Ctx) error {
	return ctx.Render("auth/login", c.page(ctx, "Log in", fiber.Map{}), layoutMain)
}

func (c *notePageController) Login(ctx *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "malformed form")
	}

	res, err := c.authService.Login(ctx.UserContext(), &req)
	if err != nil {
		var verr *service.ValidationError
		if errors.Is(err, service.ErrInvalidCredentials) || errors.As(err, &verr) {
			return ctx.Status(fiber.StatusUnauthorized).Render("auth/login", c.page(ctx, "Log in", fiber.Map{
				"Email": req.Email,
				"Error": "Invalid email or password.",
			}), layoutMain)
		}
		return err
	}

	setAccessCookie(ctx, res.AccessToken, res.ExpiresAt, c.secureCookie)
	return ctx.Redirect("/notes", fiber.StatusSeeOther)
}

func (c *notePageController) Logout(ctx *fiber.Ctx) error {
	if token := serverutils.TokenFromRequest(ctx); token != "" {
		if err := c.authService.Logout(ctx.UserContext(), token); err != nil && !errors.Is(err, service.ErrInvalidToken) {
			return err
		}
	}
	ctx.ClearCookie(serverutils.AccessTokenCookie)
	return ctx.Redirect(loginPath, fiber.StatusSeeOther)
}

func (c *notePageController) Index(ctx *fiber.Ctx) error {
	userId, err := callerID(ctx)
	if err != nil {
		return err
	}

	notes, err := c.noteService.List(ctx.UserContext(), userId)
	if err != nil {
		return err
	}
	return ctx.Render("notes/index", c.page(ctx, "Notes", fiber.Map{"Notes": notes}), layoutMain)
}

func (c *notePageController) Show(ctx *fiber.Ctx) error {
	userId, err := callerID(ctx)
	if err != nil {
		return err
	}
	id, err := noteID(ctx)
	if err != nil {
		return c.notFound(ctx)
	}

	note, err := c.noteService.Show(ctx.UserContext(), userId, id)
	if err != nil {
		return c.handleError(ctx, err)
	}
	return ctx.Render("notes/show", c.page(ctx, note.Title, fiber.Map{"Note": note}), layoutMain)
}

func (c *notePageController) New(ctx *fiber.Ctx) error {
	return ctx.Render("notes/new", c.page(ctx, "New Note", fiber.Map{
		"Action": "/notes",
		"Form":   dto.CreateNoteRequest{},
	}), layoutMain)
}

func (c *notePageController) Create(ctx *fiber.Ctx) error {
	userId, err := callerID(ctx)
	if err != nil {
		return err
	}

	var form dto.CreateNoteRequest
	if err := ctx.BodyParser(&form); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "malformed form")
	}

	note, err := c.noteService.Create(ctx.UserContext(), userId, &form)
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			return ctx.Status(fiber.StatusUnprocessableEntity).Render("notes/new", c.page(ctx, "New Note", fiber.Map{
				"Action": "/notes",
				"Form":   form,
				"Errors": verr.Fields,
			}), layoutMain)
		}
		return err
	}

	return c.redirectWithNotice(ctx, "/notes/"+note.Id.String(), "Note was successfully created.")
}

func (c *notePageController) Edit(ctx *fiber.Ctx) error {
	userId, err := callerID(ctx)
	if err != nil {
		return err
	}
	id, err := noteID(ctx)
	if err != nil {
		return c.notFound(ctx)
	}

	note, err := c.noteService.Show(ctx.UserContext(), userId, id)
	if err != nil {
		return c.handleError(ctx, err)
	}
	return ctx.Render("notes/edit", c.page(ctx, "Editing Note", fiber.Map{
		"Action": "/notes/" + note.Id.String(),
		"NoteId": note.Id,
		"Form": dto.CreateNoteRequest{
			Title:    note.Title,
			Body:     note.Body,
			Category: note.Category,
		},
	}), layoutMain)
}

func (c *notePageController) Update(ctx *fiber.Ctx) error {
	userId, err := callerID(ctx)
	if err != nil {
		return err
	}
	id, err := noteID(ctx)
	if err != nil {
		return c.notFound(ctx)
	}

	// the edit form always posts every field
	var form dto.CreateNoteRequest
	if err := ctx.BodyParser(&form); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "malformed form")
	}

	note, err := c.noteService.Update(ctx.UserContext(), userId, id, &dto.UpdateNoteRequest{
		Title:    &form.Title,
		Body:     &form.Body,
		Category: &form.Category,
	})
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			return ctx.Status(fiber.StatusUnprocessableEntity).Render("notes/edit", c.page(ctx, "Editing Note", fiber.Map{
				"Action": "/notes/" + id.String(),
				"NoteId": id,
				"Form":   form,
				"Errors": verr.Fields,
			}), layoutMain)
		}
		return c.handleError(ctx, err)
	}

	return c.redirectWithNotice(ctx, "/notes/"+note.Id.String(), "Note was successfully updated.")
}

func (c *notePageController) Destroy(ctx *fiber.Ctx) error {
	userId, err := callerID(ctx)
	if err != nil {
		return err
	}
	id, err := noteID(ctx)
	if err != nil {
		return c.notFound(ctx)
	}

	if err := c.noteService.Delete(ctx.UserContext(), userId, id); err != nil {
		return c.handleError(ctx, err)
	}
	return c.redirectWithNotice(ctx, "/notes", "Note was successfully destroyed.")
}

func (c *notePageController) handleError(ctx *fiber.Ctx, err error) error {
	if errors.Is(err, service.ErrNoteNotFound) {
		return c.notFound(ctx)
	}
	return err
}

func (c *notePageController) notFound(ctx *fiber.Ctx) error {
	return ctx.Status(fiber.StatusNotFound).Render("notes/not_found", c.page(ctx, "Not found", fiber.Map{}), layoutMain)
}

func (c *notePageController) redirectWithNotice(ctx *fiber.Ctx, to, notice string) error {
	sess, err := c.sessions.Get(ctx)
	if err != nil {
		c.logger.Warn(notePageModule, "Session unavailable, dropping notice", map[string]interface{}{"error": err})
		return ctx.Redirect(to, fiber.StatusSeeOther)
	}
	sess.Set(flashKey, notice)
	if err := sess.Save(); err != nil {
		c.logger.Warn(notePageModule, "Failed to save notice", map[string]interface{}{"error": err})
	}
	return ctx.Redirect(to, fiber.StatusSeeOther)
}

// page adds the layout values and consumes the pending flash notice.
func (c *notePageController) page(ctx *fiber.Ctx, title string, data fiber.Map) fiber.Map {
	data["Title"] = title
	_, data["SignedIn"] = serverutils.UserID(ctx)

	sess, err := c.sessions.Get(ctx)
	if err != nil {
		return data
	}
	if notice, ok := sess.Get(flashKey).(string); ok {
		data["Notice"] = notice
		sess.Delete(flashKey)
		_ = sess.Save()
	}
	return data
}
