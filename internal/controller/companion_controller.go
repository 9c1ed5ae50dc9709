package controller

import (
	"companion-bot-be/internal/dto"
	"companion-bot-be/internal/pkg/serverutils"
	"companion-bot-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ICompanionController interface {
	RegisterRoutes(r fiber.Router)
	CreateSession(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	SendMessage(ctx *fiber.Ctx) error
	Restart(ctx *fiber.Ctx) error
	Export(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	Classify(ctx *fiber.Ctx) error
}

type companionController struct {
	service service.ICompanionService
	auth    fiber.Handler
}

func NewCompanionController(service service.ICompanionService, auth fiber.Handler) ICompanionController {
	return &companionController{service: service, auth: auth}
}

func (c *companionController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/companion/v1")
	h.Use(c.auth)
	h.Post("sessions", c.CreateSession)
	h.Get("sessions/:id", c.Show)
	h.Post("sessions/:id/messages", c.SendMessage)
	h.Post("sessions/:id/restart", c.Restart)
	h.Get("sessions/:id/export", c.Export)
	h.Delete("sessions/:id", c.Delete)
	h.Get("classify", c.Classify)
}

func (c *companionController) CreateSession(ctx *fiber.Ctx) error {
	res, err := c.service.CreateSession(ctx.UserContext(), serverutils.UserId(ctx))
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create session", res))
}

func (c *companionController) Show(ctx *fiber.Ctx) error {
	res, err := c.service.GetSession(ctx.UserContext(), serverutils.UserId(ctx), ctx.Params("id"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show session", res))
}

func (c *companionController) SendMessage(ctx *fiber.Ctx) error {
	var req dto.SendMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	req.SessionId = ctx.Params("id")

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.SendMessage(ctx.UserContext(), serverutils.UserId(ctx), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success send message", res))
}

func (c *companionController) Restart(ctx *fiber.Ctx) error {
	res, err := c.service.RestartSession(ctx.UserContext(), serverutils.UserId(ctx), ctx.Params("id"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success restart session", res))
}

// Export returns the transcript in the envelope, or as a text file with ?download=true.
func (c *companionController) Export(ctx *fiber.Ctx) error {
	res, err := c.service.ExportTranscript(ctx.UserContext(), serverutils.UserId(ctx), ctx.Params("id"))
	if err != nil {
		return err
	}

	if ctx.QueryBool("download") {
		ctx.Attachment(res.FileName)
		ctx.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
		return ctx.SendString(res.Content)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success export transcript", res))
}

func (c *companionController) Delete(ctx *fiber.Ctx) error {
	if err := c.service.DeleteSession(ctx.UserContext(), serverutils.UserId(ctx), ctx.Params("id")); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete session", nil))
}

func (c *companionController) Classify(ctx *fiber.Ctx) error {
	text := ctx.Query("text")
	if text == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Query parameter 'text' is required")
	}

	return ctx.JSON(serverutils.SuccessResponse("Success classify text", c.service.Classify(ctx.UserContext(), text)))
}
