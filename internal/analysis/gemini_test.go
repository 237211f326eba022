package analysis

import (
	"github.com/google/generative-ai-go/genai"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("NewGemini", func() {
	When("no API key is provided", func() {
		It("should return an error", func() {
			_, err := NewGemini("", "gemini-2.5-flash")
			Expect(err).To(HaveOccurred())
		})
	})

	When("configured with an API key", func() {
		var gemini *Gemini

		BeforeEach(func() {
			var err error
			gemini, err = NewGemini("test-key", "gemini-2.5-flash")
			Expect(err).NotTo(HaveOccurred())
		})

		AfterEach(func() {
			Expect(gemini.Close()).To(Succeed())
		})

		It("should constrain receipt analysis to the declared JSON schema", func() {
			Expect(gemini.model.GenerationConfig.ResponseMIMEType).To(Equal("application/json"))
			Expect(gemini.model.GenerationConfig.ResponseSchema).To(Equal(suggestionSchema))
		})

		It("should leave the feedback model unconstrained", func() {
			Expect(gemini.feedbackModel.GenerationConfig.ResponseMIMEType).To(BeEmpty())
			Expect(gemini.feedbackModel.GenerationConfig.ResponseSchema).To(BeNil())
		})
	})
})

var _ = Describe("suggestionSchema", func() {
	It("should declare the claim fields with only description optional", func() {
		Expect(suggestionSchema.Type).To(Equal(genai.TypeObject))
		Expect(suggestionSchema.Properties).To(HaveLen(5))
		Expect(suggestionSchema.Properties).To(HaveKey("description"))
		Expect(suggestionSchema.Required).To(ConsistOf("amount", "date", "vendor", "category"))
	})
})
