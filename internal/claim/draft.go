package claim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/smartexpense/smartexpense/internal/analysis"
)

// ErrSuperseded is returned to an analysis attempt whose result was discarded
// because a newer attempt started while it was in flight
var ErrSuperseded = errors.New("analysis superseded by a newer attempt")

// ValidationError reports which required draft fields failed checks. The
// draft itself is left untouched so the user can correct and resubmit.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid draft fields: %s", strings.Join(e.Fields, ", "))
}

// Draft holds the editable fields of a not-yet-submitted claim. Amount stays
// a user-editable string until submission; Category stays a string because AI
// suggestions are stored verbatim and validated only at submit.
type Draft struct {
	Title       string `json:"title"`
	Amount      string `json:"amount"`
	Date        string `json:"date"` // YYYY-MM-DD
	Category    string `json:"category"`
	Description string `json:"description"`
}

// SubmitResult is the outcome of a successful submission
type SubmitResult struct {
	Claim *ExpenseClaim
	// CategoryRecognized is false when the draft category was outside the
	// closed list and got mapped to Other instead of being cast silently
	CategoryRecognized bool
}

// DraftController owns one in-progress claim draft and orchestrates the
// optional AI-assisted autofill. All state is guarded by one mutex; the
// analyzing and submitting flags are independent.
type DraftController struct {
	mu         sync.Mutex
	draft      Draft
	receipt    *Receipt
	analyzing  bool
	submitting bool
	generation uint64

	service     *Service
	analyzer    analysis.Analyzer
	timeSource  TimeSource
	submittedBy string
}

// NewDraftController creates a controller with a defaulted draft: today's
// date and the Other category
func NewDraftController(service *Service, analyzer analysis.Analyzer, submittedBy string) *DraftController {
	return newDraftController(service, analyzer, submittedBy, &defaultTimeSource{})
}

func newDraftController(service *Service, analyzer analysis.Analyzer, submittedBy string, timeSrc TimeSource) *DraftController {
	return &DraftController{
		draft: Draft{
			Date:     timeSrc.Now().Format("2006-01-02"),
			Category: string(CategoryOther),
		},
		service:     service,
		analyzer:    analyzer,
		timeSource:  timeSrc,
		submittedBy: submittedBy,
	}
}

// Draft returns a copy of the current draft
func (c *DraftController) Draft() Draft {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// Analyzing reports whether a receipt analysis is in flight
func (c *DraftController) Analyzing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.analyzing
}

// Submitting reports whether a submission is in flight
func (c *DraftController) Submitting() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.submitting
}

// SetFields replaces the editable fields. Empty date and category keep their
// current values so the defaults survive partial form input.
func (c *DraftController) SetFields(title, amount, date, category, description string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft.Title = title
	c.draft.Amount = amount
	if date != "" {
		c.draft.Date = date
	}
	if category != "" {
		c.draft.Category = category
	}
	c.draft.Description = description
}

// AttachReceipt stores a receipt image to be persisted with the claim
func (c *DraftController) AttachReceipt(filename, contentType string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.receipt = &Receipt{Filename: filename, ContentType: contentType, Data: data}
}

// AnalyzeFile runs the AI autofill for a selected receipt image. Starting a
// new analysis supersedes any prior in-flight one: the older attempt discards
// its result and returns ErrSuperseded without touching the draft or the
// flags now owned by the newer attempt.
//
// On success the suggestion is merged into the draft:
//   - Title is always regenerated as "Expense at {vendor}", with "Unknown
//     Vendor" when the vendor is absent
//   - Amount becomes the formatted suggestion amount, or empty when absent
//   - Date and Description fall back to the prior draft values when absent
//   - Category is stored verbatim, even outside the closed list; it is
//     validated at submit, not here
//
// On failure the draft is untouched and the error is returned so the caller
// can tell the user to fill the form manually.
func (c *DraftController) AnalyzeFile(ctx context.Context, data []byte, contentType string) error {
	c.mu.Lock()
	c.generation++
	gen := c.generation
	c.analyzing = true
	analyzer := c.analyzer
	c.mu.Unlock()

	suggestion, err := analyzer.AnalyzeReceipt(ctx, data, contentType)

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		return ErrSuperseded
	}
	c.analyzing = false

	if err != nil {
		return fmt.Errorf("analyzing receipt: %w", err)
	}

	c.mergeSuggestion(suggestion)
	return nil
}

// mergeSuggestion applies AI-suggested fields to the draft. Caller holds mu.
func (c *DraftController) mergeSuggestion(s *analysis.Suggestion) {
	vendor := s.Vendor
	if vendor == "" {
		vendor = "Unknown Vendor"
	}
	c.draft.Title = fmt.Sprintf("Expense at %s", vendor)

	if s.Amount != 0 {
		c.draft.Amount = strconv.FormatFloat(s.Amount, 'f', -1, 64)
	} else {
		c.draft.Amount = ""
	}

	if s.Date != "" {
		c.draft.Date = s.Date
	}

	if s.Category != "" {
		c.draft.Category = s.Category
	} else {
		c.draft.Category = string(CategoryOther)
	}

	if s.Description != "" {
		c.draft.Description = s.Description
	}
}

// Submit validates the draft and persists it as a new PENDING claim. On
// validation or persistence failure the draft is preserved so the form can be
// re-enabled with the entered values. The draft category is validated at this
// trust boundary: an unrecognized string maps to Other and the result reports
// CategoryRecognized=false.
func (c *DraftController) Submit(ctx context.Context) (*SubmitResult, error) {
	c.mu.Lock()
	draft := c.draft
	receipt := c.receipt
	c.submitting = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.submitting = false
		c.mu.Unlock()
	}()

	var missing []string
	if strings.TrimSpace(draft.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(draft.Amount) == "" {
		missing = append(missing, "amount")
	}
	if strings.TrimSpace(draft.Date) == "" {
		missing = append(missing, "date")
	}
	if len(missing) > 0 {
		return nil, &ValidationError{Fields: missing}
	}

	amount, err := strconv.ParseFloat(strings.TrimSpace(draft.Amount), 64)
	if err != nil || amount <= 0 {
		return nil, &ValidationError{Fields: []string{"amount"}}
	}

	date, err := time.Parse("2006-01-02", draft.Date)
	if err != nil {
		return nil, &ValidationError{Fields: []string{"date"}}
	}

	category, recognized := ParseCategory(draft.Category)

	claim, err := c.service.SubmitClaim(SubmitClaimInput{
		Title:       strings.TrimSpace(draft.Title),
		Amount:      int(math.Round(amount * 100)),
		Date:        date,
		Category:    category,
		Description: draft.Description,
		SubmittedBy: c.submittedBy,
		Receipt:     receipt,
	})
	if err != nil {
		return nil, fmt.Errorf("submitting claim: %w", err)
	}

	return &SubmitResult{Claim: claim, CategoryRecognized: recognized}, nil
}

// Reset restores the defaulted empty draft after a successful submission
func (c *DraftController) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft = Draft{
		Date:     c.timeSource.Now().Format("2006-01-02"),
		Category: string(CategoryOther),
	}
	c.receipt = nil
}
