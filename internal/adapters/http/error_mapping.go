package httpadapter

import (
	"net/http"

	"github.com/kirillkom/request-classifier-console/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput), domain.IsKind(err, domain.ErrNoPrimaryFile):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrPreviewNotFound), domain.IsKind(err, domain.ErrFileNotTracked):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrSubmissionInFlight):
		return http.StatusConflict
	case domain.IsKind(err, domain.ErrSessionClosed):
		return http.StatusGone
	case domain.IsKind(err, domain.ErrApplication):
		return http.StatusUnprocessableEntity
	case domain.IsKind(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests
	case domain.IsKind(err, domain.ErrTransport):
		return http.StatusBadGateway
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}
