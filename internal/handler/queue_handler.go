package handler

import (
	"fmt"
	"time"

	"github.com/claimdesk/claim-notifier/internal/domain"
	"github.com/claimdesk/claim-notifier/internal/repository"
	"github.com/gofiber/fiber/v2"
)

const (
	defaultInspectLimit = 50
	maxInspectLimit     = 200
)

// QueueHandler exposes read-only inspection of the notification queue:
// dead-lettered jobs and the dispatch run history.
type QueueHandler struct {
	queue repository.QueueRepository
	runs  repository.RunRepository
}

func NewQueueHandler(queue repository.QueueRepository, runs repository.RunRepository) (*QueueHandler, error) {
	if queue == nil {
		return nil, fmt.Errorf("queue repository is required")
	}
	if runs == nil {
		return nil, fmt.Errorf("run repository is required")
	}
	return &QueueHandler{queue: queue, runs: runs}, nil
}

func RegisterQueueRoutes(router fiber.Router, queue repository.QueueRepository, runs repository.RunRepository, serviceKey string) error {
	h, err := NewQueueHandler(queue, runs)
	if err != nil {
		return err
	}

	v1 := router.Group("/v1", RequireServiceKey(serviceKey))
	v1.Get("/dead-letters", h.ListDeadLetters)
	v1.Get("/runs", h.ListRuns)

	return nil
}

type deadLetterResponse struct {
	ID        string    `json:"id"`
	ClaimID   string    `json:"claim_id"`
	ClaimType string    `json:"claim_type"`
	NewStatus string    `json:"new_status"`
	Attempts  int       `json:"attempts"`
	LastError *string   `json:"last_error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type listDeadLettersResponse struct {
	Data []deadLetterResponse `json:"data"`
}

type dispatchRunResponse struct {
	ID         string    `json:"id"`
	ClaimID    *string   `json:"claim_id,omitempty"`
	Found      int       `json:"found"`
	Processed  int       `json:"processed"`
	DurationMS int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}

type listRunsResponse struct {
	Data []dispatchRunResponse `json:"data"`
}

// ListDeadLetters returns jobs that exhausted their attempts without a
// successful delivery. These rows need operator action: the dispatcher will
// never pick them up again.
func (h *QueueHandler) ListDeadLetters(c *fiber.Ctx) error {
	limit, err := parseLimit(c)
	if err != nil {
		return toHTTPError(err)
	}

	jobs, err := h.queue.FetchExhausted(c.UserContext(), limit)
	if err != nil {
		return toHTTPError(err)
	}

	data := make([]deadLetterResponse, 0, len(jobs))
	for _, job := range jobs {
		data = append(data, deadLetterResponse{
			ID:        job.ID,
			ClaimID:   job.ClaimID,
			ClaimType: job.ClaimType,
			NewStatus: job.NewStatus,
			Attempts:  job.Attempts,
			LastError: job.LastError,
			CreatedAt: job.CreatedAt,
			UpdatedAt: job.UpdatedAt,
		})
	}

	return c.Status(fiber.StatusOK).JSON(listDeadLettersResponse{Data: data})
}

func (h *QueueHandler) ListRuns(c *fiber.Ctx) error {
	limit, err := parseLimit(c)
	if err != nil {
		return toHTTPError(err)
	}

	runs, err := h.runs.ListRecent(c.UserContext(), limit)
	if err != nil {
		return toHTTPError(err)
	}

	data := make([]dispatchRunResponse, 0, len(runs))
	for _, run := range runs {
		data = append(data, dispatchRunResponse{
			ID:         run.ID,
			ClaimID:    run.ClaimID,
			Found:      run.Found,
			Processed:  run.Processed,
			DurationMS: run.DurationMS,
			CreatedAt:  run.CreatedAt,
		})
	}

	return c.Status(fiber.StatusOK).JSON(listRunsResponse{Data: data})
}

func parseLimit(c *fiber.Ctx) (int, error) {
	limit := c.QueryInt("limit", defaultInspectLimit)
	if limit < 1 || limit > maxInspectLimit {
		return 0, fmt.Errorf("%w: limit must be between 1 and %d", domain.ErrValidation, maxInspectLimit)
	}
	return limit, nil
}
