package identifier

import (
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/claimdesk/claim-notifier/internal/domain"
	"github.com/google/uuid"
)

func fixedGenerator(t *testing.T, at time.Time, u string) *Generator {
	t.Helper()

	parsed, err := uuid.Parse(u)
	if err != nil {
		t.Fatalf("uuid.Parse(%q) error = %v", u, err)
	}

	return &Generator{
		now:     func() time.Time { return at },
		newUUID: func() (uuid.UUID, error) { return parsed, nil },
	}
}

func TestClaimIDFormat(t *testing.T) {
	t.Parallel()

	gen := NewGenerator()

	generalPattern := regexp.MustCompile(`^CLG-\d{6}-[A-Z0-9]{4}$`)
	benefitPattern := regexp.MustCompile(`^CLB-\d{6}-[A-Z0-9]{4}$`)

	general, err := gen.ClaimID(domain.ClaimTypeGeneral)
	if err != nil {
		t.Fatalf("ClaimID(General) error = %v", err)
	}
	if !generalPattern.MatchString(general) {
		t.Fatalf("ClaimID(General) = %q, want match %s", general, generalPattern)
	}

	benefit, err := gen.ClaimID(domain.ClaimTypeBenefit)
	if err != nil {
		t.Fatalf("ClaimID(Benefit) error = %v", err)
	}
	if !benefitPattern.MatchString(benefit) {
		t.Fatalf("ClaimID(Benefit) = %q, want match %s", benefit, benefitPattern)
	}

	if _, err := gen.ClaimID(domain.ClaimType("Medical")); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("ClaimID(Medical) error = %v, want ErrValidation", err)
	}
}

func TestClaimIDUsesDateAndUUIDTail(t *testing.T) {
	t.Parallel()

	at := time.Date(2024, time.May, 25, 10, 0, 0, 0, time.UTC)
	gen := fixedGenerator(t, at, "b7e5e2e2-8e2a-4e7c-9a1f-4a1fa1f3a1f3")

	got, err := gen.ClaimID(domain.ClaimTypeGeneral)
	if err != nil {
		t.Fatalf("ClaimID() error = %v", err)
	}
	if got != "CLG-240525-A1F3" {
		t.Fatalf("ClaimID() = %q, want CLG-240525-A1F3", got)
	}
}

func TestIncidentIDFormat(t *testing.T) {
	t.Parallel()

	gen := NewGenerator()
	pattern := regexp.MustCompile(`^IR-\d{6}-[A-Z0-9]{4}$`)

	id, err := gen.IncidentID()
	if err != nil {
		t.Fatalf("IncidentID() error = %v", err)
	}
	if !pattern.MatchString(id) {
		t.Fatalf("IncidentID() = %q, want match %s", id, pattern)
	}
}

func TestClaimIDSuffixDispersion(t *testing.T) {
	t.Parallel()

	gen := NewGenerator()
	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		id, err := gen.ClaimID(domain.ClaimTypeGeneral)
		if err != nil {
			t.Fatalf("ClaimID() error = %v", err)
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate identifier %q after %d generations", id, i)
		}
		seen[id] = struct{}{}
	}
}

func TestReceiptIDDerivation(t *testing.T) {
	t.Parallel()

	gen := NewGenerator()

	cases := []struct {
		claimID string
		index   int
		want    string
	}{
		{claimID: "CLG-240101-AB12", index: 0, want: "RCG-240101-AB12-01"},
		{claimID: "CLB-240101-ZZ99", index: 1, want: "RCB-240101-ZZ99-02"},
		{claimID: "CLG-240101-AB12", index: 11, want: "RCG-240101-AB12-12"},
	}

	for _, tc := range cases {
		got, err := gen.ReceiptID(tc.claimID, tc.index)
		if err != nil {
			t.Fatalf("ReceiptID(%q, %d) error = %v", tc.claimID, tc.index, err)
		}
		if got != tc.want {
			t.Fatalf("ReceiptID(%q, %d) = %q, want %q", tc.claimID, tc.index, got, tc.want)
		}
	}
}

func TestReceiptIDRejectsBadInput(t *testing.T) {
	t.Parallel()

	gen := NewGenerator()

	for _, tc := range []struct {
		claimID string
		index   int
	}{
		{claimID: "CLG-240101-AB12", index: -1},
		{claimID: "CLG-240101-AB12", index: 99},
		{claimID: "IR-240101-AB12", index: 0},
		{claimID: "CLG", index: 0},
		{claimID: "", index: 0},
	} {
		if _, err := gen.ReceiptID(tc.claimID, tc.index); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("ReceiptID(%q, %d) error = %v, want ErrValidation", tc.claimID, tc.index, err)
		}
	}
}

func TestClaimIDFailsWhenRandomnessUnavailable(t *testing.T) {
	t.Parallel()

	gen := &Generator{
		now:     time.Now,
		newUUID: func() (uuid.UUID, error) { return uuid.UUID{}, fmt.Errorf("entropy exhausted") },
	}

	if _, err := gen.ClaimID(domain.ClaimTypeGeneral); err == nil {
		t.Fatal("ClaimID() should fail when the randomness source fails")
	}
}
