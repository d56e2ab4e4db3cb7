package httperrors

import (
	"net/http"

	"github.com/kashguard/go-sign-bridge/internal/types"
)

var (
	ErrBadRequestPayloadNotReady = NewHTTPError(http.StatusBadRequest, types.PublicHTTPErrorTypePayloadNotReady, "No sign payload is ready yet. Connect a wallet first.")
	ErrBadRequestPayloadMismatch = NewHTTPError(http.StatusBadRequest, types.PublicHTTPErrorTypePayloadMismatch, "Submitted bytes do not match the issued sign payload.")
	ErrConflictFlowTerminated    = NewHTTPError(http.StatusConflict, types.PublicHTTPErrorTypeGeneric, "Provisioning flow has already terminated. Restart provisioning.")
)
