package analysis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Gemini implements the Analyzer interface using Google Gemini
type Gemini struct {
	client        *genai.Client
	model         *genai.GenerativeModel
	feedbackModel *genai.GenerativeModel
}

// suggestionSchema is the declared response schema for receipt analysis.
// amount, date, vendor and category are required; description is optional.
var suggestionSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"amount":      {Type: genai.TypeNumber, Description: "Total amount found on the receipt"},
		"date":        {Type: genai.TypeString, Description: "Date of the transaction in YYYY-MM-DD format"},
		"vendor":      {Type: genai.TypeString, Description: "Name of the merchant"},
		"category":    {Type: genai.TypeString, Description: "Suggested category"},
		"description": {Type: genai.TypeString, Description: "A brief summary of what was purchased"},
	},
	Required: []string{"amount", "date", "vendor", "category"},
}

// NewGemini creates a new Gemini Analyzer instance
func NewGemini(apiKey string, modelName string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if modelName == "" {
		modelName = "gemini-2.5-flash"
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	// Receipt analysis is constrained to the suggestion schema; feedback is
	// plain text, so it gets a model handle without the JSON constraint.
	model := client.GenerativeModel(modelName)
	model.GenerationConfig.ResponseMIMEType = "application/json"
	model.GenerationConfig.ResponseSchema = suggestionSchema

	feedbackModel := client.GenerativeModel(modelName)

	return &Gemini{
		client:        client,
		model:         model,
		feedbackModel: feedbackModel,
	}, nil
}

// AnalyzeReceipt analyzes a receipt image and extracts claim fields
func (g *Gemini) AnalyzeReceipt(ctx context.Context, imageData []byte, contentType string) (*Suggestion, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	// Prepare image data (convert to PNG if needed)
	finalImageData, _, _, err := prepareImageData(imageData, contentType)
	if err != nil {
		return nil, err
	}

	// genai.ImageData expects just the format suffix, and after
	// prepareImageData everything is PNG
	parts := []genai.Part{
		genai.ImageData("png", finalImageData),
		genai.Text(receiptAnalysisPrompt),
	}

	resp, err := g.model.GenerateContent(ctx, parts...)
	if err != nil {
		return nil, fmt.Errorf("%w: generating content: %v", ErrUnavailable, err)
	}

	text, err := candidateText(resp)
	if err != nil {
		return nil, err
	}

	suggestion, err := parseSuggestionJSON(text)
	if err != nil {
		return nil, fmt.Errorf("parsing suggestion: %w", err)
	}

	return suggestion, nil
}

// Feedback asks for a one-sentence auditor tip on a claim summary
func (g *Gemini) Feedback(ctx context.Context, claimSummary string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	prompt := fmt.Sprintf(auditorFeedbackPrompt, claimSummary)
	resp, err := g.feedbackModel.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("%w: generating feedback: %v", ErrUnavailable, err)
	}

	text, err := candidateText(resp)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// candidateText concatenates the text parts of the first candidate
func candidateText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: no response from gemini", ErrBadResponse)
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return b.String(), nil
}

// Close closes the Gemini client
func (g *Gemini) Close() error {
	return g.client.Close()
}
