package controller

import (
	"chatlink-be/internal/dto"
	"chatlink-be/internal/pkg/serverutils"
	"chatlink-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IChatRequestController interface {
	RegisterRoutes(r fiber.Router)
	Submit(ctx *fiber.Ctx) error
	Respond(ctx *fiber.Ctx) error
	Cancel(ctx *fiber.Ctx) error
	ListIncoming(ctx *fiber.Ctx) error
	ListOutgoing(ctx *fiber.Ctx) error
}

type chatRequestController struct {
	service       service.IChatRequestService
	jwtMiddleware fiber.Handler
}

func NewChatRequestController(service service.IChatRequestService, jwtMiddleware fiber.Handler) IChatRequestController {
	return &chatRequestController{service: service, jwtMiddleware: jwtMiddleware}
}

func (c *chatRequestController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat-request/v1")
	h.Use(c.jwtMiddleware)
	h.Post("", c.Submit)
	h.Post(":id/respond", c.Respond)
	h.Delete(":id", c.Cancel)
	h.Get("incoming", c.ListIncoming)
	h.Get("outgoing", c.ListOutgoing)
}

func (c *chatRequestController) Submit(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.SubmitChatRequestRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Submit(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success submit chat request", res))
}

func (c *chatRequestController) Respond(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)
	idParam := ctx.Params("id")
	id, _ := uuid.Parse(idParam)

	var req dto.RespondChatRequestRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	req.Id = id

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Respond(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success respond chat request", res))
}

func (c *chatRequestController) Cancel(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)
	idParam := ctx.Params("id")
	id, _ := uuid.Parse(idParam)

	err := c.service.Cancel(ctx.Context(), id, userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success cancel chat request", nil))
}

func (c *chatRequestController) ListIncoming(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	res, err := c.service.ListIncoming(ctx.Context(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get incoming chat requests", res))
}

func (c *chatRequestController) ListOutgoing(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	res, err := c.service.ListOutgoing(ctx.Context(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get outgoing chat requests", res))
}
