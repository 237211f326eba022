package claim

import (
	"fmt"
	"time"
)

// CurrentUser is the employee account exercised by the dashboard. There is no
// login flow; the service runs for one active session.
var CurrentUser = User{
	ID:     "u1",
	Name:   "Zhang San",
	Role:   RoleEmployee,
	Avatar: "https://picsum.photos/seed/user1/100/100",
}

// SeedDemoData loads the demo claims and user into an empty database. It is
// idempotent: a database that already holds claims is left alone.
func SeedDemoData(db DB) error {
	existing, err := db.ListClaims()
	if err != nil {
		return fmt.Errorf("checking existing claims: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	if err := db.SaveUser(&CurrentUser); err != nil {
		return fmt.Errorf("seeding user: %w", err)
	}

	for _, c := range demoClaims() {
		if err := db.SaveClaim(c); err != nil {
			return fmt.Errorf("seeding claim %s: %w", c.ID, err)
		}
	}
	return nil
}

func demoClaims() []*ExpenseClaim {
	return []*ExpenseClaim{
		{
			ID:            "c1",
			Title:         "Client Lunch - Tech Partners",
			Amount:        45050,
			Date:          time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC),
			Category:      CategoryMeals,
			Description:   "Project kickoff lunch with the engineering team from Tech Partners.",
			Status:        StatusApproved,
			SubmittedBy:   "Zhang San",
			SubmittedAt:   time.Date(2024, 5, 16, 10, 0, 0, 0, time.UTC),
			ReviewedBy:    "Manager Li",
			ReviewComment: "Approved as per project budget.",
			CreatedAt:     time.Date(2024, 5, 16, 10, 0, 0, 0, time.UTC),
			UpdatedAt:     time.Date(2024, 5, 16, 10, 0, 0, 0, time.UTC),
		},
		{
			ID:          "c2",
			Title:       "New Wireless Mouse",
			Amount:      29900,
			Date:        time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC),
			Category:    CategoryOffice,
			Description: "Replacement for broken peripheral.",
			Status:      StatusPending,
			SubmittedBy: "Zhang San",
			SubmittedAt: time.Date(2024, 5, 21, 14, 30, 0, 0, time.UTC),
			CreatedAt:   time.Date(2024, 5, 21, 14, 30, 0, 0, time.UTC),
			UpdatedAt:   time.Date(2024, 5, 21, 14, 30, 0, 0, time.UTC),
		},
		{
			ID:            "c3",
			Title:         "Taxi to Airport",
			Amount:        12000,
			Date:          time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC),
			Category:      CategoryTransport,
			Description:   "Business trip to Shanghai.",
			Status:        StatusRejected,
			SubmittedBy:   "Zhang San",
			SubmittedAt:   time.Date(2024, 5, 11, 9, 15, 0, 0, time.UTC),
			ReviewedBy:    "Manager Li",
			ReviewComment: "Please provide the official fapiao (tax receipt).",
			CreatedAt:     time.Date(2024, 5, 11, 9, 15, 0, 0, time.UTC),
			UpdatedAt:     time.Date(2024, 5, 11, 9, 15, 0, 0, time.UTC),
		},
	}
}
