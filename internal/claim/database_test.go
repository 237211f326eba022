package claim

import (
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("BoltDB", func() {
	var (
		tmpDir string
		dbPath string
		db     *BoltDB
	)

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		dbPath = filepath.Join(tmpDir, "test.db")
		var err error
		db, err = NewBoltDB(dbPath)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		if db != nil {
			db.Close()
		}
	})

	Describe("SaveClaim", func() {
		var (
			claim *ExpenseClaim
			err   error
		)

		BeforeEach(func() {
			claim = &ExpenseClaim{
				ID:          "test-id",
				Title:       "Client Lunch",
				Amount:      45050,
				Date:        time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC),
				Category:    CategoryMeals,
				Description: "Kickoff lunch",
				Status:      StatusPending,
				SubmittedBy: "Zhang San",
				SubmittedAt: time.Now(),
				CreatedAt:   time.Now(),
				UpdatedAt:   time.Now(),
			}
		})

		JustBeforeEach(func() {
			err = db.SaveClaim(claim)
		})

		When("saving succeeds", func() {
			It("should not return an error", func() {
				Expect(err).NotTo(HaveOccurred())
			})

			It("should save the claim to the database", func() {
				saved, getErr := db.GetClaim("test-id")
				Expect(getErr).NotTo(HaveOccurred())
				Expect(saved.ID).To(Equal("test-id"))
				Expect(saved.Category).To(Equal(CategoryMeals))
				Expect(saved.Amount).To(Equal(45050))
			})
		})

		When("the claim is saved again", func() {
			It("overwrites the stored record", func() {
				claim.Status = StatusApproved
				Expect(db.SaveClaim(claim)).To(Succeed())
				saved, _ := db.GetClaim("test-id")
				Expect(saved.Status).To(Equal(StatusApproved))
			})
		})
	})

	Describe("GetClaim", func() {
		When("the claim does not exist", func() {
			It("returns a not-found error", func() {
				_, err := db.GetClaim("nonexistent")
				Expect(err).To(MatchError(ErrNotFound))
			})
		})
	})

	Describe("ListClaims", func() {
		When("claims exist", func() {
			BeforeEach(func() {
				Expect(db.SaveClaim(&ExpenseClaim{ID: "id1", Title: "One"})).To(Succeed())
				Expect(db.SaveClaim(&ExpenseClaim{ID: "id2", Title: "Two"})).To(Succeed())
			})

			It("returns all claims", func() {
				claims, err := db.ListClaims()
				Expect(err).NotTo(HaveOccurred())
				Expect(claims).To(HaveLen(2))
			})
		})

		When("no claims exist", func() {
			It("returns an empty list, not nil", func() {
				claims, err := db.ListClaims()
				Expect(err).NotTo(HaveOccurred())
				Expect(claims).NotTo(BeNil())
				Expect(claims).To(BeEmpty())
			})
		})
	})

	Describe("SaveUser", func() {
		It("round-trips a user", func() {
			Expect(db.SaveUser(&User{ID: "u1", Name: "Zhang San", Role: RoleEmployee})).To(Succeed())
			user, err := db.GetUser("u1")
			Expect(err).NotTo(HaveOccurred())
			Expect(user.Name).To(Equal("Zhang San"))
			Expect(user.Role).To(Equal(RoleEmployee))
		})

		It("returns a not-found error for unknown users", func() {
			_, err := db.GetUser("nonexistent")
			Expect(err).To(MatchError(ErrNotFound))
		})
	})

	Describe("persistence across reopen", func() {
		It("keeps claims after closing and reopening", func() {
			Expect(db.SaveClaim(&ExpenseClaim{ID: "keep", Title: "Persist me"})).To(Succeed())
			Expect(db.Close()).To(Succeed())

			reopened, err := NewBoltDB(dbPath)
			Expect(err).NotTo(HaveOccurred())
			defer reopened.Close()

			saved, err := reopened.GetClaim("keep")
			Expect(err).NotTo(HaveOccurred())
			Expect(saved.Title).To(Equal("Persist me"))
			db = nil
		})
	})
})
