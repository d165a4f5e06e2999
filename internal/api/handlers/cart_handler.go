package handlers

import (
	"Marketplace-Cart/domain"
	"Marketplace-Cart/internal/api/presenters"
	"Marketplace-Cart/pkg/cart"
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type (
	CartHandler interface {
		GetCart(c *fiber.Ctx) error
		GetOptimizedItems(c *fiber.Ctx) error
		CountItems(c *fiber.Ctx) error
		AddItem(c *fiber.Ctx) error
		RemoveItem(c *fiber.Ctx) error
		ClearCart(c *fiber.Ctx) error
	}

	cartHandler struct {
		cartService cart.CartService
		validator   *validator.Validate
	}
)

func NewCartHandler(cartService cart.CartService, validator *validator.Validate) CartHandler {
	return &cartHandler{
		cartService: cartService,
		validator:   validator,
	}
}

func (h *cartHandler) GetCart(c *fiber.Ctx) error {
	userID := cartOwner(c)

	res, err := h.cartService.GetCart(c.UserContext(), userID)
	if err != nil {
		return presenters.ErrorResponse(c, cartErrorStatus(err), domain.MessageFailedGetCart, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetCart)
}

func (h *cartHandler) GetOptimizedItems(c *fiber.Ctx) error {
	userID := cartOwner(c)

	res, err := h.cartService.GetOptimizedItems(c.UserContext(), userID)
	if err != nil {
		return presenters.ErrorResponse(c, cartErrorStatus(err), domain.MessageFailedGetCart, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetCartLayout)
}

func (h *cartHandler) CountItems(c *fiber.Ctx) error {
	userID := cartOwner(c)

	res, err := h.cartService.CountItems(c.UserContext(), userID)
	if err != nil {
		return presenters.ErrorResponse(c, cartErrorStatus(err), domain.MessageFailedGetCart, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetCartCount)
}

func (h *cartHandler) AddItem(c *fiber.Ctx) error {
	userID := cartOwner(c)
	req := new(domain.AddCartItemRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedAddCartItem, err)
	}

	res, err := h.cartService.AddItem(c.UserContext(), *req, userID)
	if err != nil {
		return presenters.ErrorResponse(c, cartErrorStatus(err), addItemFailureMessage(err), err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessAddCartItem)
}

func (h *cartHandler) RemoveItem(c *fiber.Ctx) error {
	userID := cartOwner(c)
	itemID := c.Params("id")

	if err := h.cartService.RemoveItem(c.UserContext(), itemID, userID); err != nil {
		return presenters.ErrorResponse(c, cartErrorStatus(err), domain.MessageFailedRemoveItem, err)
	}

	return presenters.SuccessResponse(c, nil, fiber.StatusOK, domain.MessageSuccessRemoveItem)
}

func (h *cartHandler) ClearCart(c *fiber.Ctx) error {
	userID := cartOwner(c)

	if err := h.cartService.ClearCart(c.UserContext(), userID); err != nil {
		return presenters.ErrorResponse(c, cartErrorStatus(err), domain.MessageFailedClearCart, err)
	}

	return presenters.SuccessResponse(c, nil, fiber.StatusOK, domain.MessageSuccessClearCart)
}

// cartOwner is the identity set by the auth middleware, "" for anonymous sessions.
func cartOwner(c *fiber.Ctx) string {
	userID, _ := c.Locals("user_id").(string)
	return userID
}

func cartErrorStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidItem), errors.Is(err, domain.ErrInvalidIdentity):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrStorageQuotaExceeded):
		return fiber.StatusRequestEntityTooLarge
	case errors.Is(err, domain.ErrPersistenceIO),
		errors.Is(err, domain.ErrStoreClosed),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

func addItemFailureMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrStorageQuotaExceeded):
		return domain.MessageFailedCartQuota
	case errors.Is(err, domain.ErrPersistenceIO):
		return domain.MessageFailedCartStorage
	default:
		return domain.MessageFailedAddCartItem
	}
}
