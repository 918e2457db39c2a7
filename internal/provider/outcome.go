package provider

import (
	"fmt"
	"strings"
)

// OutcomeState tags the result of one delivery channel for one job.
type OutcomeState string

const (
	OutcomeSent    OutcomeState = "sent"
	OutcomeSkipped OutcomeState = "skipped"
	OutcomeFailed  OutcomeState = "failed"
)

// Outcome normalizes a provider call result. A skip (no destination, no
// credentials) is deliberately distinct from a failure: skips never feed the
// retry path.
type Outcome struct {
	State      OutcomeState `json:"state"`
	StatusCode int          `json:"status,omitempty"`
	Detail     string       `json:"detail,omitempty"`
	Reason     string       `json:"reason,omitempty"`
}

func Sent(statusCode int) Outcome {
	return Outcome{State: OutcomeSent, StatusCode: statusCode}
}

func Skipped(reason string) Outcome {
	return Outcome{State: OutcomeSkipped, Reason: reason}
}

func Failed(statusCode int, detail string) Outcome {
	return Outcome{State: OutcomeFailed, StatusCode: statusCode, Detail: detail}
}

func (o Outcome) IsFailed() bool {
	return o.State == OutcomeFailed
}

// Summary renders the outcome for storage in last_error.
func (o Outcome) Summary() string {
	switch o.State {
	case OutcomeSent:
		return fmt.Sprintf("sent status=%d", o.StatusCode)
	case OutcomeSkipped:
		return fmt.Sprintf("skipped (%s)", o.Reason)
	case OutcomeFailed:
		parts := []string{"failed"}
		if o.StatusCode > 0 {
			parts = append(parts, fmt.Sprintf("status=%d", o.StatusCode))
		}
		if detail := strings.TrimSpace(o.Detail); detail != "" {
			parts = append(parts, detail)
		}
		return strings.Join(parts, " ")
	default:
		return string(o.State)
	}
}
