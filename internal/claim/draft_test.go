package claim

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/smartexpense/smartexpense/internal/analysis"
)

var _ = Describe("DraftController", func() {
	var (
		db       *mockDB
		storage  *mockStorage
		analyzer *mockAnalyzer
		timeSrc  *mockTimeSource
		service  *Service
		ctrl     *DraftController
	)

	BeforeEach(func() {
		db = newMockDB()
		storage = newMockStorage()
		analyzer = newMockAnalyzer()
		timeSrc = &mockTimeSource{now: time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)}
		service = NewServiceWithDeps(db, analyzer, storage, &mockIDGenerator{id: "test-id-123"}, timeSrc)
		ctrl = newDraftController(service, analyzer, "Zhang San", timeSrc)
	})

	Describe("defaults", func() {
		It("defaults the date to today", func() {
			Expect(ctrl.Draft().Date).To(Equal("2024-06-01"))
		})

		It("defaults the category to Other", func() {
			Expect(ctrl.Draft().Category).To(Equal("Other"))
		})

		It("starts with both busy flags clear", func() {
			Expect(ctrl.Analyzing()).To(BeFalse())
			Expect(ctrl.Submitting()).To(BeFalse())
		})
	})

	Describe("AnalyzeFile", func() {
		var (
			before Draft
			err    error
		)

		BeforeEach(func() {
			ctrl.SetFields("Old Title", "10", "2024-05-01", "Transport", "Old description")
			before = ctrl.Draft()
		})

		JustBeforeEach(func() {
			err = ctrl.AnalyzeFile(context.Background(), []byte("fake image"), "image/jpeg")
		})

		When("the analysis succeeds with all fields", func() {
			It("should not return an error", func() {
				Expect(err).NotTo(HaveOccurred())
			})

			It("regenerates the title from the vendor", func() {
				Expect(ctrl.Draft().Title).To(Equal("Expense at Cafe X"))
			})

			It("formats the amount as editable text", func() {
				Expect(ctrl.Draft().Amount).To(Equal("88.8"))
			})

			It("takes the suggested date", func() {
				Expect(ctrl.Draft().Date).To(Equal("2024-06-01"))
			})

			It("takes the suggested category", func() {
				Expect(ctrl.Draft().Category).To(Equal("Meals"))
			})

			It("takes the suggested description", func() {
				Expect(ctrl.Draft().Description).To(Equal("Team coffee"))
			})

			It("clears the analyzing flag", func() {
				Expect(ctrl.Analyzing()).To(BeFalse())
			})
		})

		When("the suggestion has no description", func() {
			BeforeEach(func() {
				analyzer.suggestion = &analysis.Suggestion{
					Vendor:   "Cafe X",
					Amount:   88.8,
					Date:     "2024-06-01",
					Category: "Meals",
				}
			})

			It("keeps the prior description", func() {
				Expect(ctrl.Draft().Description).To(Equal("Old description"))
			})

			It("still fills every other field", func() {
				draft := ctrl.Draft()
				Expect(draft.Title).To(Equal("Expense at Cafe X"))
				Expect(draft.Amount).To(Equal("88.8"))
				Expect(draft.Date).To(Equal("2024-06-01"))
				Expect(draft.Category).To(Equal("Meals"))
			})
		})

		When("the suggestion has no vendor", func() {
			BeforeEach(func() {
				analyzer.suggestion = &analysis.Suggestion{
					Amount:   12.5,
					Date:     "2024-06-01",
					Category: "Meals",
				}
			})

			It("falls back to Unknown Vendor", func() {
				Expect(ctrl.Draft().Title).To(Equal("Expense at Unknown Vendor"))
			})
		})

		When("the suggestion has no amount, date, or category", func() {
			BeforeEach(func() {
				analyzer.suggestion = &analysis.Suggestion{Vendor: "Cafe X"}
			})

			It("empties the amount", func() {
				Expect(ctrl.Draft().Amount).To(BeEmpty())
			})

			It("keeps the prior date", func() {
				Expect(ctrl.Draft().Date).To(Equal("2024-05-01"))
			})

			It("defaults the category to Other", func() {
				Expect(ctrl.Draft().Category).To(Equal("Other"))
			})
		})

		When("the suggested category is outside the closed list", func() {
			BeforeEach(func() {
				analyzer.suggestion = &analysis.Suggestion{
					Vendor:   "Streamly",
					Amount:   12,
					Date:     "2024-06-01",
					Category: "Subscriptions",
				}
			})

			// Known gap: the draft stores the category verbatim; validation
			// happens at submit, not here
			It("stores the category verbatim", func() {
				Expect(ctrl.Draft().Category).To(Equal("Subscriptions"))
			})
		})

		When("the analysis fails", func() {
			BeforeEach(func() {
				analyzer.analyzeErr = analysis.ErrUnavailable
			})

			It("returns the classified error", func() {
				Expect(err).To(MatchError(analysis.ErrUnavailable))
			})

			It("leaves the draft untouched", func() {
				Expect(ctrl.Draft()).To(Equal(before))
			})

			It("clears the analyzing flag", func() {
				Expect(ctrl.Analyzing()).To(BeFalse())
			})
		})
	})

	Describe("overlapping analyses", func() {
		It("discards the superseded attempt's result", func() {
			analyzer.block = make(chan struct{})
			analyzer.suggestion = &analysis.Suggestion{Vendor: "First Vendor", Amount: 1, Date: "2024-01-01", Category: "Meals"}

			firstDone := make(chan error, 1)
			go func() {
				firstDone <- ctrl.AnalyzeFile(context.Background(), []byte("first"), "image/jpeg")
			}()
			Eventually(func() int { return analyzer.calls }).Should(Equal(1))

			// Second selection while the first analysis is still in flight
			second := newMockAnalyzer()
			second.suggestion = &analysis.Suggestion{Vendor: "Second Vendor", Amount: 2, Date: "2024-02-02", Category: "Transport"}
			ctrl.mu.Lock()
			ctrl.analyzer = second
			ctrl.mu.Unlock()
			Expect(ctrl.AnalyzeFile(context.Background(), []byte("second"), "image/jpeg")).To(Succeed())
			Expect(ctrl.Draft().Title).To(Equal("Expense at Second Vendor"))

			// Release the first attempt: it must not win the form state
			close(analyzer.block)
			Eventually(firstDone).Should(Receive(MatchError(ErrSuperseded)))
			Expect(ctrl.Draft().Title).To(Equal("Expense at Second Vendor"))
			Expect(ctrl.Analyzing()).To(BeFalse())
		})
	})

	Describe("Submit", func() {
		var (
			result *SubmitResult
			err    error
		)

		JustBeforeEach(func() {
			result, err = ctrl.Submit(context.Background())
		})

		When("the draft is valid", func() {
			BeforeEach(func() {
				ctrl.SetFields("Expense at Cafe X", "88.8", "2024-06-01", "Meals", "Team coffee")
			})

			It("should not return an error", func() {
				Expect(err).NotTo(HaveOccurred())
			})

			It("persists a pending claim", func() {
				saved, getErr := db.GetClaim("test-id-123")
				Expect(getErr).NotTo(HaveOccurred())
				Expect(saved.Status).To(Equal(StatusPending))
			})

			It("converts the amount to cents", func() {
				Expect(result.Claim.Amount).To(Equal(8880))
			})

			It("recognizes the category", func() {
				Expect(result.CategoryRecognized).To(BeTrue())
				Expect(result.Claim.Category).To(Equal(CategoryMeals))
			})

			It("records the submitter", func() {
				Expect(result.Claim.SubmittedBy).To(Equal("Zhang San"))
			})

			It("clears the submitting flag", func() {
				Expect(ctrl.Submitting()).To(BeFalse())
			})
		})

		When("the category is outside the closed list", func() {
			BeforeEach(func() {
				ctrl.SetFields("Streaming", "12", "2024-06-01", "Subscriptions", "")
			})

			It("maps it to Other and reports it unrecognized", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(result.Claim.Category).To(Equal(CategoryOther))
				Expect(result.CategoryRecognized).To(BeFalse())
			})
		})

		When("required fields are missing", func() {
			BeforeEach(func() {
				ctrl.SetFields("", "", "2024-06-01", "Meals", "")
			})

			It("returns a validation error naming the fields", func() {
				var verr *ValidationError
				Expect(errors.As(err, &verr)).To(BeTrue())
				Expect(verr.Fields).To(ConsistOf("title", "amount"))
			})

			It("persists nothing", func() {
				Expect(db.claims).To(BeEmpty())
			})

			It("preserves the draft", func() {
				Expect(ctrl.Draft().Date).To(Equal("2024-06-01"))
			})
		})

		When("the amount does not parse", func() {
			BeforeEach(func() {
				ctrl.SetFields("Lunch", "a lot", "2024-06-01", "Meals", "")
			})

			It("returns a validation error for the amount", func() {
				var verr *ValidationError
				Expect(errors.As(err, &verr)).To(BeTrue())
				Expect(verr.Fields).To(ConsistOf("amount"))
			})
		})

		When("the amount is not positive", func() {
			BeforeEach(func() {
				ctrl.SetFields("Lunch", "-5", "2024-06-01", "Meals", "")
			})

			It("returns a validation error for the amount", func() {
				var verr *ValidationError
				Expect(errors.As(err, &verr)).To(BeTrue())
				Expect(verr.Fields).To(ConsistOf("amount"))
			})
		})

		When("the date does not parse", func() {
			BeforeEach(func() {
				ctrl.SetFields("Lunch", "10", "June 1st", "Meals", "")
			})

			It("returns a validation error for the date", func() {
				var verr *ValidationError
				Expect(errors.As(err, &verr)).To(BeTrue())
				Expect(verr.Fields).To(ConsistOf("date"))
			})
		})

		When("persistence fails", func() {
			BeforeEach(func() {
				db.saveErr = errors.New("database error")
				ctrl.SetFields("Lunch", "10", "2024-06-01", "Meals", "Team lunch")
			})

			It("returns the error", func() {
				Expect(err).To(HaveOccurred())
			})

			It("preserves the draft for retry", func() {
				draft := ctrl.Draft()
				Expect(draft.Title).To(Equal("Lunch"))
				Expect(draft.Amount).To(Equal("10"))
			})

			It("clears the submitting flag", func() {
				Expect(ctrl.Submitting()).To(BeFalse())
			})
		})

		When("a receipt was attached", func() {
			BeforeEach(func() {
				ctrl.SetFields("Lunch", "10", "2024-06-01", "Meals", "")
				ctrl.AttachReceipt("receipt.jpg", "image/jpeg", []byte("fake image data"))
			})

			It("stores the receipt with the claim", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(result.Claim.ReceiptFile).To(Equal("test-id-123_receipt.jpg"))
				Expect(storage.files).To(HaveKey("test-id-123_receipt.jpg"))
			})
		})
	})

	Describe("Reset", func() {
		BeforeEach(func() {
			ctrl.SetFields("Lunch", "10", "2024-05-01", "Meals", "Team lunch")
			ctrl.AttachReceipt("receipt.jpg", "image/jpeg", []byte("data"))
			ctrl.Reset()
		})

		It("restores the defaulted draft", func() {
			Expect(ctrl.Draft()).To(Equal(Draft{
				Date:     "2024-06-01",
				Category: "Other",
			}))
		})
	})
})
