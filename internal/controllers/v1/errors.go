package v1

import (
	"errors"
	"net/http"

	"github.com/hearthledger/backend/internal/models"
)

type httpError struct {
	Error string `json:"error" example:"An ID specified in the query string was not a valid UUID"`
}

// status returns the appropriate HTTP status for a domain error
func status(err error) int {
	if errors.Is(err, models.ErrGeneral) {
		return http.StatusInternalServerError
	}

	if errors.Is(err, models.ErrResourceNotFound) || errors.Is(err, models.ErrUnknownAccount) {
		return http.StatusNotFound
	}

	return http.StatusBadRequest
}

var (
	errOwnerIDParameter = errors.New("the owner parameter must be set to a valid UUID")
)
