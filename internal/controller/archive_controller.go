package controller

import (
	"companion-bot-be/internal/dto"
	"companion-bot-be/internal/pkg/serverutils"
	"companion-bot-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IArchiveController interface {
	RegisterRoutes(r fiber.Router)
	GetAll(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
}

type archiveController struct {
	service service.IArchiveService
	auth    fiber.Handler
}

func NewArchiveController(service service.IArchiveService, auth fiber.Handler) IArchiveController {
	return &archiveController{service: service, auth: auth}
}

func (c *archiveController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/companion/v1/archives")
	h.Use(c.auth)
	h.Get("", c.GetAll)
	h.Get(":id", c.Show)
}

func (c *archiveController) GetAll(ctx *fiber.Ctx) error {
	var req dto.ListArchivesRequest
	if err := ctx.QueryParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid query")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.List(ctx.UserContext(), serverutils.UserId(ctx), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get all archives", res))
}

func (c *archiveController) Show(ctx *fiber.Ctx) error {
	res, err := c.service.Show(ctx.UserContext(), serverutils.UserId(ctx), ctx.Params("id"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show archive", res))
}
