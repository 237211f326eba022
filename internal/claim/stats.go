package claim

// Summary holds dashboard aggregates over a claim list. Amounts are in
// currency units (not cents) since this is what the dashboard renders.
type Summary struct {
	TotalAmount   float64              `json:"total_amount"`
	PendingCount  int                  `json:"pending_count"`
	ApprovedCount int                  `json:"approved_count"`
	RejectedCount int                  `json:"rejected_count"`
	ByCategory    map[Category]float64 `json:"by_category"`
}

// Summarize folds a claim list into dashboard aggregates. It is pure and
// idempotent; the category totals partition the grand total exactly.
func Summarize(claims []*ExpenseClaim) Summary {
	summary := Summary{
		ByCategory: make(map[Category]float64),
	}

	for _, c := range claims {
		amount := float64(c.Amount) / 100
		summary.TotalAmount += amount
		summary.ByCategory[c.Category] += amount

		switch c.Status {
		case StatusPending:
			summary.PendingCount++
		case StatusApproved:
			summary.ApprovedCount++
		case StatusRejected:
			summary.RejectedCount++
		}
	}

	return summary
}
