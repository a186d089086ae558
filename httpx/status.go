package httpx

import "net/http"

// Status codes returned by the holiday API and asserted in its tests.
const (
	StatusOK                 = http.StatusOK
	StatusNoContent          = http.StatusNoContent
	StatusNotModified        = http.StatusNotModified
	StatusBadRequest         = http.StatusBadRequest
	StatusNotFound           = http.StatusNotFound
	StatusInternalError      = http.StatusInternalServerError
	StatusBadGateway         = http.StatusBadGateway // every holiday provider failed
	StatusGatewayTimeout     = http.StatusGatewayTimeout

	// StatusClientClosedRequest is the nginx convention for a caller that
	// disconnected before the response was written.
	StatusClientClosedRequest = 499
)
