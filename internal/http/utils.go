package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/listingdeck/listingdeck/internal/domain"
	"github.com/listingdeck/listingdeck/pkg/blocktree"
	"github.com/listingdeck/listingdeck/pkg/logger"
)

// WriteJSONError writes a JSON error response with the given message and status code.
// It sets the Content-Type header to application/json and automatically formats
// the response as {"error": "message"}.
func WriteJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}

// writeJSON writes a JSON response with the given status code and data.
// It sets the Content-Type header to application/json.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

var editorErrors = []error{
	blocktree.ErrBlockNotFound,
	blocktree.ErrNotContainer,
	blocktree.ErrCyclicMove,
	blocktree.ErrDuplicateID,
	blocktree.ErrInvalidBlockType,
	blocktree.ErrNoDropTarget,
	blocktree.ErrNotDragging,
}

// StatusForError maps a service error to the HTTP status reported to the caller
func StatusForError(err error) int {
	var (
		validationErr domain.ValidationError
		notFound      *domain.ErrNotFound
		missingData   *domain.ErrMissingBrochureData
	)
	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &missingData):
		return http.StatusUnprocessableEntity
	}
	for _, target := range editorErrors {
		if errors.Is(err, target) {
			return http.StatusUnprocessableEntity
		}
	}
	return http.StatusInternalServerError
}

// writeServiceError logs server side failures and writes the mapped status.
// Client errors echo the error message, server errors a generic one.
func writeServiceError(w http.ResponseWriter, log logger.Logger, err error, failure string) {
	status := StatusForError(err)
	if status == http.StatusInternalServerError {
		log.WithField("error", err.Error()).Error(failure)
		WriteJSONError(w, failure, status)
		return
	}
	WriteJSONError(w, err.Error(), status)
}

// writeArtifact streams a generated file as an attachment
func writeArtifact(w http.ResponseWriter, artifact *domain.Artifact) {
	w.Header().Set("Content-Type", artifact.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", artifact.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(artifact.Data)))
	w.Header().Set("X-Brochure-Backend", string(artifact.Backend))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifact.Data)
}
