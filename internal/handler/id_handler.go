package handler

import (
	"fmt"

	"github.com/claimdesk/claim-notifier/internal/domain"
	"github.com/gofiber/fiber/v2"
)

type IDGenerator interface {
	ClaimID(claimType domain.ClaimType) (string, error)
	IncidentID() (string, error)
	ReceiptID(claimID string, index int) (string, error)
}

type IDHandler struct {
	generator IDGenerator
}

func NewIDHandler(generator IDGenerator) (*IDHandler, error) {
	if generator == nil {
		return nil, fmt.Errorf("id generator is required")
	}
	return &IDHandler{generator: generator}, nil
}

func RegisterIDRoutes(router fiber.Router, generator IDGenerator, serviceKey string) error {
	h, err := NewIDHandler(generator)
	if err != nil {
		return err
	}

	ids := router.Group("/v1/ids", RequireServiceKey(serviceKey))
	ids.Post("/claim", h.MintClaimID)
	ids.Post("/incident", h.MintIncidentID)
	ids.Post("/receipt", h.MintReceiptID)

	return nil
}

type mintClaimIDRequest struct {
	ClaimType string `json:"claim_type"`
}

type mintReceiptIDRequest struct {
	ClaimID string `json:"claim_id"`
	Index   int    `json:"index"`
}

type mintIDResponse struct {
	ID string `json:"id"`
}

func (h *IDHandler) MintClaimID(c *fiber.Ctx) error {
	var req mintClaimIDRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	claimType, err := domain.ParseClaimTypeFromString(req.ClaimType)
	if err != nil {
		return toHTTPError(err)
	}

	id, err := h.generator.ClaimID(claimType)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(mintIDResponse{ID: id})
}

func (h *IDHandler) MintIncidentID(c *fiber.Ctx) error {
	id, err := h.generator.IncidentID()
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(mintIDResponse{ID: id})
}

func (h *IDHandler) MintReceiptID(c *fiber.Ctx) error {
	var req mintReceiptIDRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	id, err := h.generator.ReceiptID(req.ClaimID, req.Index)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(mintIDResponse{ID: id})
}
