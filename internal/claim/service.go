package claim

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/smartexpense/smartexpense/internal/analysis"
)

// ErrNotPending is returned when reviewing a claim that already reached a
// terminal status. PENDING claims may transition once to APPROVED or
// REJECTED; nothing else moves.
var ErrNotPending = errors.New("claim is not pending")

// IDGenerator generates unique IDs for claims
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

// defaultIDGenerator generates random UUIDs
type defaultIDGenerator struct{}

func (g *defaultIDGenerator) Generate() string {
	return uuid.NewString()
}

// defaultTimeSource provides the current time
type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// Service handles expense claim operations
type Service struct {
	db          DB
	analyzer    analysis.Analyzer
	storage     Storage
	idGenerator IDGenerator
	timeSource  TimeSource
}

// NewService creates a new Service with default ID generator and time source
func NewService(db DB, analyzer analysis.Analyzer, storage Storage) *Service {
	return &Service{
		db:          db,
		analyzer:    analyzer,
		storage:     storage,
		idGenerator: &defaultIDGenerator{},
		timeSource:  &defaultTimeSource{},
	}
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(db DB, analyzer analysis.Analyzer, storage Storage, idGen IDGenerator, timeSrc TimeSource) *Service {
	return &Service{
		db:          db,
		analyzer:    analyzer,
		storage:     storage,
		idGenerator: idGen,
		timeSource:  timeSrc,
	}
}

// sanitizeFilename cleans up a filename by removing special characters and truncating length
func sanitizeFilename(filename string) string {
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filename, ext)

	// Keep only alphanumeric, spaces, hyphens, and underscores
	reg := regexp.MustCompile(`[^a-zA-Z0-9\s\-_]`)
	base = reg.ReplaceAllString(base, "")

	reg = regexp.MustCompile(`\s+`)
	base = reg.ReplaceAllString(base, " ")

	base = strings.TrimSpace(base)

	maxLen := 50
	if len(base) > maxLen {
		base = base[:maxLen]
	}

	if base == "" {
		base = "receipt"
	}

	return base + ext
}

// Receipt is an optional receipt image attached to a submission
type Receipt struct {
	Filename    string
	ContentType string
	Data        []byte
}

// SubmitClaimInput carries the validated fields of a new claim
type SubmitClaimInput struct {
	Title       string
	Amount      int // cents
	Date        time.Time
	Category    Category
	Description string
	SubmittedBy string
	Receipt     *Receipt
}

// SubmitClaim creates a new PENDING claim, storing the receipt file first so a
// database failure cannot leave a claim without its evidence
func (s *Service) SubmitClaim(input SubmitClaimInput) (*ExpenseClaim, error) {
	id := s.idGenerator.Generate()
	now := s.timeSource.Now()

	claim := &ExpenseClaim{
		ID:          id,
		Title:       input.Title,
		Amount:      input.Amount,
		Date:        input.Date,
		Category:    input.Category,
		Description: input.Description,
		Status:      StatusPending,
		SubmittedBy: input.SubmittedBy,
		SubmittedAt: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if input.Receipt != nil {
		cleanFilename := sanitizeFilename(input.Receipt.Filename)
		savedPath, err := s.storage.Save(fmt.Sprintf("%s_%s", id, cleanFilename), input.Receipt.Data)
		if err != nil {
			return nil, fmt.Errorf("saving receipt file: %w", err)
		}
		claim.ReceiptFile = savedPath
		claim.ReceiptType = input.Receipt.ContentType
	}

	if err := s.db.SaveClaim(claim); err != nil {
		// Clean up the file if the database save fails
		if claim.ReceiptFile != "" {
			s.storage.Delete(claim.ReceiptFile)
		}
		return nil, fmt.Errorf("saving claim to database: %w", err)
	}

	return claim, nil
}

// GetClaim retrieves a claim by ID
func (s *Service) GetClaim(id string) (*ExpenseClaim, error) {
	claim, err := s.db.GetClaim(id)
	if err != nil {
		return nil, fmt.Errorf("getting claim: %w", err)
	}
	return claim, nil
}

// ListClaims returns all claims
func (s *Service) ListClaims() ([]*ExpenseClaim, error) {
	claims, err := s.db.ListClaims()
	if err != nil {
		return nil, fmt.Errorf("listing claims: %w", err)
	}
	return claims, nil
}

// Summary returns dashboard aggregates over all claims
func (s *Service) Summary() (Summary, error) {
	claims, err := s.db.ListClaims()
	if err != nil {
		return Summary{}, fmt.Errorf("listing claims: %w", err)
	}
	return Summarize(claims), nil
}

// ReviewClaim moves a PENDING claim to APPROVED or REJECTED, recording the
// reviewer and an optional comment. Terminal claims are immutable.
func (s *Service) ReviewClaim(id string, approve bool, reviewedBy, comment string) (*ExpenseClaim, error) {
	claim, err := s.db.GetClaim(id)
	if err != nil {
		return nil, fmt.Errorf("getting claim for review: %w", err)
	}

	if claim.Status != StatusPending {
		return nil, fmt.Errorf("reviewing claim %s (status %s): %w", id, claim.Status, ErrNotPending)
	}
	if reviewedBy == "" {
		return nil, fmt.Errorf("reviewer name is required")
	}

	if approve {
		claim.Status = StatusApproved
	} else {
		claim.Status = StatusRejected
	}
	claim.ReviewedBy = reviewedBy
	claim.ReviewComment = comment
	claim.UpdatedAt = s.timeSource.Now()

	if err := s.db.SaveClaim(claim); err != nil {
		return nil, fmt.Errorf("saving reviewed claim: %w", err)
	}

	return claim, nil
}

// GetReceiptFile retrieves the stored receipt image for a claim
func (s *Service) GetReceiptFile(id string) ([]byte, string, error) {
	claim, err := s.db.GetClaim(id)
	if err != nil {
		return nil, "", fmt.Errorf("getting claim: %w", err)
	}

	if claim.ReceiptFile == "" {
		return nil, "", fmt.Errorf("claim %s has no receipt: %w", id, ErrNotFound)
	}

	data, err := s.storage.Get(claim.ReceiptFile)
	if err != nil {
		return nil, "", fmt.Errorf("getting receipt file: %w", err)
	}

	return data, claim.ReceiptType, nil
}

// ClaimFeedback asks the analyzer for a one-sentence auditor tip on a claim
func (s *Service) ClaimFeedback(ctx context.Context, id string) (string, error) {
	claim, err := s.db.GetClaim(id)
	if err != nil {
		return "", fmt.Errorf("getting claim: %w", err)
	}

	summary := fmt.Sprintf("Title: %s; Amount: %.2f; Date: %s; Category: %s; Description: %s",
		claim.Title,
		float64(claim.Amount)/100,
		claim.Date.Format("2006-01-02"),
		claim.Category,
		claim.Description,
	)

	feedback, err := s.analyzer.Feedback(ctx, summary)
	if err != nil {
		return "", fmt.Errorf("getting feedback: %w", err)
	}
	return feedback, nil
}
