package claim

import "time"

// Category is the closed expense category vocabulary
type Category string

const (
	CategoryTransport     Category = "Transport"
	CategoryMeals         Category = "Meals"
	CategoryLodging       Category = "Lodging"
	CategoryOffice        Category = "Office Supplies"
	CategoryCommunication Category = "Communication"
	CategoryOther         Category = "Other"
)

// Categories returns the closed category list in display order
func Categories() []Category {
	return []Category{
		CategoryTransport,
		CategoryMeals,
		CategoryLodging,
		CategoryOffice,
		CategoryCommunication,
		CategoryOther,
	}
}

// ParseCategory validates a category string at the trust boundary. AI
// suggestions and form input are strings; they become a Category only here.
// The second return value reports whether the input was recognized.
func ParseCategory(s string) (Category, bool) {
	for _, c := range Categories() {
		if string(c) == s {
			return c, true
		}
	}
	return CategoryOther, false
}

// Status is the claim review state
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

// ExpenseClaim represents a reimbursement request for a specific expense.
// A claim is created PENDING and may transition once to APPROVED or REJECTED;
// terminal claims are immutable.
type ExpenseClaim struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Amount        int       `json:"amount"` // Amount in cents
	Date          time.Time `json:"date"`
	Category      Category  `json:"category"`
	Description   string    `json:"description"`
	Status        Status    `json:"status"`
	SubmittedBy   string    `json:"submitted_by"`
	SubmittedAt   time.Time `json:"submitted_at"`
	ReviewedBy    string    `json:"reviewed_by,omitempty"`
	ReviewComment string    `json:"review_comment,omitempty"`
	ReceiptFile   string    `json:"receipt_file,omitempty"` // Stored receipt image, if any
	ReceiptType   string    `json:"receipt_type,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Role is the user role vocabulary; only EMPLOYEE is exercised today
type Role string

const (
	RoleEmployee Role = "EMPLOYEE"
	RoleManager  Role = "MANAGER"
	RoleAdmin    Role = "ADMIN"
)

// User represents an account known to the dashboard
type User struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Role   Role   `json:"role"`
	Avatar string `json:"avatar,omitempty"`
}
