package handler

import (
	"encoding/json"
	"fmt"

	"github.com/claimdesk/claim-notifier/internal/dispatch"
	"github.com/gofiber/fiber/v2"
)

// Limits echoes the operational knobs the dispatcher runs with.
type Limits struct {
	BatchLimit  int `json:"batch_limit"`
	MaxAttempts int `json:"max_attempts"`
}

// EnvInfo names which environment variables the resolved config came from,
// so operators can confirm alias fallbacks without reading logs.
type EnvInfo struct {
	DSNSource string `json:"dsn_source"`
	KeySource string `json:"key_source,omitempty"`
}

type DispatchHandler struct {
	runner dispatch.BatchRunner
	env    EnvInfo
	limits Limits
}

func NewDispatchHandler(runner dispatch.BatchRunner, env EnvInfo, limits Limits) (*DispatchHandler, error) {
	if runner == nil {
		return nil, fmt.Errorf("batch runner is required")
	}
	return &DispatchHandler{runner: runner, env: env, limits: limits}, nil
}

func RegisterDispatchRoutes(router fiber.Router, runner dispatch.BatchRunner, env EnvInfo, limits Limits, serviceKey string) error {
	h, err := NewDispatchHandler(runner, env, limits)
	if err != nil {
		return err
	}

	router.Get("/", h.Health)
	router.Post("/", RequireServiceKey(serviceKey), h.RunBatch)

	return nil
}

type healthResponse struct {
	OK     bool    `json:"ok"`
	Env    EnvInfo `json:"env"`
	Limits Limits  `json:"limits"`
}

type runBatchRequest struct {
	ClaimID string `json:"claim_id"`
}

// Health reports the service configuration without touching any dependency.
// It doubles as the probe target for callers that only need to know the
// function is deployed and configured.
func (h *DispatchHandler) Health(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(healthResponse{
		OK:     true,
		Env:    h.env,
		Limits: h.limits,
	})
}

// RunBatch triggers one dispatch pass. The body is optional: an empty,
// missing, or malformed body runs a full batch, a claim_id scopes the pass
// to that claim. Malformed JSON is tolerated deliberately so schedulers can
// POST with no payload at all.
func (h *DispatchHandler) RunBatch(c *fiber.Ctx) error {
	var req runBatchRequest
	if body := c.Body(); len(body) > 0 {
		// Tolerant parse: a bad body degrades to a full-batch run.
		_ = json.Unmarshal(body, &req)
	}

	result, err := h.runner.Run(c.UserContext(), req.ClaimID)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(result)
}
