package identifier

import (
	"fmt"
	"strings"
	"time"

	"github.com/claimdesk/claim-notifier/internal/domain"
	"github.com/google/uuid"
)

// Prefixes for generated identifiers.
const (
	PrefixClaimGeneral   = "CLG"
	PrefixClaimBenefit   = "CLB"
	PrefixIncident       = "IR"
	PrefixReceiptGeneral = "RCG"
	PrefixReceiptBenefit = "RCB"
)

const (
	suffixLength      = 4
	maxReceiptOrdinal = 99
	dateLayout        = "060102"
)

// Generator mints claim, incident, and receipt identifiers of the form
// PREFIX-YYMMDD-XXXX. The suffix is the uppercased tail of a random UUID,
// so no store round-trip is needed; uniqueness within a day is probabilistic
// (36^4 space), which is acceptable for human-reviewed internal volumes.
type Generator struct {
	now     func() time.Time
	newUUID func() (uuid.UUID, error)
}

func NewGenerator() *Generator {
	return &Generator{
		now:     time.Now,
		newUUID: uuid.NewRandom,
	}
}

// ClaimID returns a new claim identifier for the given claim type,
// e.g. CLG-240525-A1F3.
func (g *Generator) ClaimID(claimType domain.ClaimType) (string, error) {
	var prefix string
	switch claimType {
	case domain.ClaimTypeGeneral:
		prefix = PrefixClaimGeneral
	case domain.ClaimTypeBenefit:
		prefix = PrefixClaimBenefit
	default:
		return "", fmt.Errorf("%w: invalid claim type %q", domain.ErrValidation, claimType)
	}
	return g.generate(prefix)
}

// IncidentID returns a new incident identifier, e.g. IR-240525-A1F3.
func (g *Generator) IncidentID() (string, error) {
	return g.generate(PrefixIncident)
}

// ReceiptID derives a receipt identifier from its parent claim id and its
// zero-based position within the claim: claim CLG-240101-AB12, index 0
// yields RCG-240101-AB12-01.
func (g *Generator) ReceiptID(claimID string, index int) (string, error) {
	if index < 0 || index >= maxReceiptOrdinal {
		return "", fmt.Errorf("%w: receipt index %d out of range", domain.ErrValidation, index)
	}

	trimmed := strings.TrimSpace(claimID)
	prefix, rest, ok := strings.Cut(trimmed, "-")
	if !ok || rest == "" {
		return "", fmt.Errorf("%w: malformed claim id %q", domain.ErrValidation, claimID)
	}

	var receiptPrefix string
	switch prefix {
	case PrefixClaimGeneral:
		receiptPrefix = PrefixReceiptGeneral
	case PrefixClaimBenefit:
		receiptPrefix = PrefixReceiptBenefit
	default:
		return "", fmt.Errorf("%w: unknown claim id prefix %q", domain.ErrValidation, prefix)
	}

	return fmt.Sprintf("%s-%s-%02d", receiptPrefix, rest, index+1), nil
}

func (g *Generator) generate(prefix string) (string, error) {
	if g == nil || g.now == nil || g.newUUID == nil {
		return "", fmt.Errorf("generator is not initialized")
	}

	date := g.now().UTC().Format(dateLayout)

	u, err := g.newUUID()
	if err != nil {
		// Fail loudly rather than emit a degenerate identifier.
		return "", fmt.Errorf("failed to generate identifier suffix: %w", err)
	}

	s := u.String()
	suffix := strings.ToUpper(s[len(s)-suffixLength:])

	return fmt.Sprintf("%s-%s-%s", prefix, date, suffix), nil
}
