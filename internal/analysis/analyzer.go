package analysis

import (
	"context"
	"errors"
)

// Suggestion contains a best-effort extraction of claim fields from a receipt.
// Zero values mean the model did not supply the field; no field is validated
// here, the form controller decides what to trust.
type Suggestion struct {
	Vendor      string  `json:"vendor"`
	Amount      float64 `json:"amount"`
	Date        string  `json:"date"` // YYYY-MM-DD as returned, accepted verbatim
	Category    string  `json:"category"`
	Description string  `json:"description"`
}

var (
	// ErrUnavailable wraps transport failures: the service could not be
	// reached or did not answer in time.
	ErrUnavailable = errors.New("analysis service unavailable")

	// ErrBadResponse wraps schema violations: the service answered but the
	// response could not be parsed as the declared suggestion schema.
	ErrBadResponse = errors.New("analysis response did not match schema")
)

// Analyzer defines the interface for AI-backed receipt analysis
type Analyzer interface {
	// AnalyzeReceipt reads a receipt image/PDF and extracts claim fields
	AnalyzeReceipt(ctx context.Context, imageData []byte, contentType string) (*Suggestion, error)
	// Feedback returns a one-sentence auditor tip for a claim summary
	Feedback(ctx context.Context, claimSummary string) (string, error)
	// Close closes the analyzer and releases resources
	Close() error
}
