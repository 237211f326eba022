package claim

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
)

// maxUploadSize bounds multipart parsing (high-resolution phone photos)
const maxUploadSize = int64(50 << 20) // 50MB

// corsError writes an error response with CORS headers set
func corsError(w http.ResponseWriter, message string, code int) {
	setCORSHeaders(w)
	http.Error(w, message, code)
}

// setCORSHeaders sets CORS headers on a response
func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.Header().Set("Access-Control-Max-Age", "3600")
}

// jsonError writes a JSON error body with CORS headers set
func jsonError(w http.ResponseWriter, message string, code int) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// writeJSON encodes a response body as JSON
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// handleIndex serves the HTML interface
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexHTML)
}

// handleListClaims returns a list of all claims
func (s *Server) handleListClaims(w http.ResponseWriter, r *http.Request) {
	claims, err := s.service.ListClaims()
	if err != nil {
		slog.Error("Error listing claims", "error", err)
		corsError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, claims)
}

// formFile reads an uploaded file from a parsed multipart form, inferring the
// content type from the filename extension when the part carries none
func formFile(f multipart.File, header *multipart.FileHeader) ([]byte, string, error) {
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, "", err
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		ext := strings.ToLower(filepath.Ext(header.Filename))
		switch ext {
		case ".jpg", ".jpeg":
			contentType = "image/jpeg"
		case ".png":
			contentType = "image/png"
		case ".pdf":
			contentType = "application/pdf"
		case ".heic":
			contentType = "image/heic"
		case ".heif":
			contentType = "image/heif"
		default:
			contentType = "application/octet-stream"
		}
	}
	contentType = strings.ToLower(strings.TrimSpace(contentType))

	return data, contentType, nil
}

// handleSubmitClaim handles claim submission. Form fields go through a draft
// controller so the web form and any other client share the same validation
// and category trust boundary.
func (s *Server) handleSubmitClaim(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		slog.Error("Error parsing multipart form", "error", err)
		jsonError(w, "Error parsing form", http.StatusBadRequest)
		return
	}

	ctrl := NewDraftController(s.service, s.analyzer, CurrentUser.Name)
	ctrl.SetFields(
		r.FormValue("title"),
		r.FormValue("amount"),
		r.FormValue("date"),
		r.FormValue("category"),
		r.FormValue("description"),
	)

	if f, header, err := r.FormFile("receipt"); err == nil {
		defer f.Close()
		data, contentType, readErr := formFile(f, header)
		if readErr != nil {
			slog.Error("Error reading receipt file", "error", readErr, "filename", header.Filename)
			jsonError(w, "Error reading receipt file", http.StatusInternalServerError)
			return
		}
		ctrl.AttachReceipt(header.Filename, contentType, data)
	}

	result, err := ctrl.Submit(r.Context())
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			setCORSHeaders(w)
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"error":  "validation failed",
				"fields": verr.Fields,
			})
			return
		}
		slog.Error("Error submitting claim", "error", err)
		jsonError(w, "Error submitting claim", http.StatusInternalServerError)
		return
	}

	setCORSHeaders(w)
	writeJSON(w, http.StatusCreated, map[string]any{
		"claim":               result.Claim,
		"category_recognized": result.CategoryRecognized,
	})
}

// handleGetClaim returns a single claim
func (s *Server) handleGetClaim(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		corsError(w, "Claim ID required", http.StatusBadRequest)
		return
	}
	claim, err := s.service.GetClaim(id)
	if err != nil {
		corsError(w, "Claim not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, claim)
}

// handleGetReceiptFile returns the stored receipt image for a claim
func (s *Server) handleGetReceiptFile(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		corsError(w, "Claim ID required", http.StatusBadRequest)
		return
	}
	data, contentType, err := s.service.GetReceiptFile(id)
	if err != nil {
		corsError(w, "Receipt not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Write(data)
}

// handleReviewClaim moves a pending claim to approved or rejected
func (s *Server) handleReviewClaim(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		corsError(w, "Claim ID required", http.StatusBadRequest)
		return
	}

	var req struct {
		Approve    bool   `json:"approve"`
		ReviewedBy string `json:"reviewed_by"`
		Comment    string `json:"comment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		corsError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	claim, err := s.service.ReviewClaim(id, req.Approve, req.ReviewedBy, req.Comment)
	if err != nil {
		if errors.Is(err, ErrNotPending) {
			jsonError(w, "Claim already reviewed", http.StatusConflict)
			return
		}
		if errors.Is(err, ErrNotFound) {
			corsError(w, "Claim not found", http.StatusNotFound)
			return
		}
		slog.Error("Error reviewing claim", "id", id, "error", err)
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, claim)
}

// handleClaimFeedback returns a one-sentence AI auditor tip for a claim
func (s *Server) handleClaimFeedback(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		corsError(w, "Claim ID required", http.StatusBadRequest)
		return
	}

	feedback, err := s.service.ClaimFeedback(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			corsError(w, "Claim not found", http.StatusNotFound)
			return
		}
		slog.Error("Error getting claim feedback", "id", id, "error", err)
		jsonError(w, "Feedback unavailable", http.StatusBadGateway)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"feedback": feedback})
}

// handleAnalyzeReceipt runs the AI autofill for the claim form. The client
// sends its current field values along with the file; a draft controller
// merges the suggestion so the web form and any other client share one set of
// autofill semantics. Failures never touch stored state; the client gets a
// notice to fill the form manually.
func (s *Server) handleAnalyzeReceipt(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		slog.Error("Error parsing multipart form", "error", err)
		jsonError(w, "Error parsing form", http.StatusBadRequest)
		return
	}

	f, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "No file provided", http.StatusBadRequest)
		return
	}
	defer f.Close()

	data, contentType, err := formFile(f, header)
	if err != nil {
		slog.Error("Error reading file data", "error", err, "filename", header.Filename)
		jsonError(w, "Error reading file", http.StatusInternalServerError)
		return
	}

	ctrl := NewDraftController(s.service, s.analyzer, CurrentUser.Name)
	ctrl.SetFields(
		r.FormValue("title"),
		r.FormValue("amount"),
		r.FormValue("date"),
		r.FormValue("category"),
		r.FormValue("description"),
	)

	if err := ctrl.AnalyzeFile(r.Context(), data, contentType); err != nil {
		slog.Error("Failed to analyze receipt",
			"content_type", contentType,
			"file_size", len(data),
			"error", err,
		)
		jsonError(w, "AI failed to read the receipt. Please fill manually.", http.StatusBadGateway)
		return
	}

	writeJSON(w, http.StatusOK, ctrl.Draft())
}

// handleSummary returns dashboard aggregates
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.service.Summary()
	if err != nil {
		slog.Error("Error summarizing claims", "error", err)
		corsError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// handleCurrentUser returns the active session user
func (s *Server) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, CurrentUser)
}

// handleStaticCSS serves the CSS file
func (s *Server) handleStaticCSS(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "text/css")
	w.Write(appCSS)
}

// handleStaticJS serves the JavaScript file
func (s *Server) handleStaticJS(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Write(appJS)
}
