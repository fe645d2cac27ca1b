package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/novis10813/mops-financial-api/internal/apperrors"
)

// statusFor translates a façade error into the HTTP status spec.md §7
// names: NotFoundError -> 404, MalformedPackage/ParseError -> 502,
// TransientFetchError (after retries exhausted) -> 503, everything
// else -> 500. A validation failure (KindClient raised by the service
// façade) is the one addition not in that table, surfaced as 400 since
// it never reaches C2; a KindClient raised by C2 itself (an upstream
// 4xx other than 404) falls under everything else.
func statusFor(err error) int {
	var e *apperrors.Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case apperrors.KindClient:
		if strings.HasPrefix(e.Op, "service.") {
			return http.StatusBadRequest
		}
		return http.StatusInternalServerError
	case apperrors.KindNotFound:
		return http.StatusNotFound
	case apperrors.KindMalformedPackage, apperrors.KindParse:
		return http.StatusBadGateway
	case apperrors.KindTransientFetch:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeFacadeError(w http.ResponseWriter, err error) {
	writeError(w, statusFor(err), err.Error())
}
