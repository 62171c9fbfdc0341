package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/sagarc03/contentd"
)

// ErrorResponse represents a JSON error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WriteError writes a JSON error response
func WriteError(w http.ResponseWriter, code int, errCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error:   errCode,
		Message: message,
	}); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// WriteNotFound writes a 404 with an empty body
func WriteNotFound(w http.ResponseWriter) {
	w.Header().Set("Content-Length", "0")
	w.WriteHeader(http.StatusNotFound)
}

// WriteText writes a text/plain response
func WriteText(w http.ResponseWriter, code int, text string) {
	writeBody(w, code, contentd.TextContent(text))
}

// WriteContent writes c with status 200. Attachments carry a
// Content-Disposition header.
func WriteContent(w http.ResponseWriter, c contentd.Content) {
	writeBody(w, http.StatusOK, c)
}

func writeBody(w http.ResponseWriter, code int, c contentd.Content) {
	h := w.Header()
	h.Set("Content-Type", c.ContentType)
	h.Set("Content-Length", strconv.Itoa(len(c.Body)))
	if c.IsAttachment() {
		h.Set("Content-Disposition", c.Disposition())
	}
	w.WriteHeader(code)
	if _, err := w.Write(c.Body); err != nil {
		slog.Warn("failed to write response body", "err", err)
	}
}

// HandleError writes the response for a failed download. Every content
// failure collapses to an empty 404; only a rejected verifier is surfaced.
func HandleError(w http.ResponseWriter, err error) {
	if errors.Is(err, contentd.ErrUnauthorized) {
		WriteError(w, http.StatusUnauthorized, "unauthorized", "Unauthorized")
		return
	}

	WriteNotFound(w)
}

// HandleUploadError writes the response for a failed upload.
func HandleUploadError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		WriteError(w, http.StatusRequestEntityTooLarge, "body_too_large",
			"Request body exceeds "+strconv.FormatInt(tooLarge.Limit, 10)+" bytes")
		return
	}

	if errors.Is(err, contentd.ErrInvalidInput) {
		WriteError(w, http.StatusBadRequest, "invalid_body", "Request body must be valid UTF-8 text")
		return
	}

	WriteError(w, http.StatusBadRequest, "bad_request", "Could not read request body")
}
