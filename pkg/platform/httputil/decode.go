package httputil

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	dErrors "regscope/pkg/domain-errors"
	"regscope/pkg/validation"
)

// DecodeSchema reads the request body and decodes it with validation.Decode.
// Returns the decoded value and true on success.
// On failure, writes an error response and returns nil, false.
//
// Usage:
//
//	req, ok := httputil.DecodeSchema[models.ScreeningRequest](w, r, h.logger, ctx, requestID)
//	if !ok {
//	    return
//	}
func DecodeSchema[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger, ctx context.Context, requestID string) (*T, bool) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			logger.WarnContext(ctx, "request body too large",
				"limit", tooLarge.Limit,
				"request_id", requestID,
			)
			WriteError(w, dErrors.New(dErrors.CodeBodyTooLarge, "Request body too large"))
			return nil, false
		}
		logger.WarnContext(ctx, "failed to read request body",
			"error", err,
			"request_id", requestID,
		)
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "Invalid request body"))
		return nil, false
	}

	req, err := validation.Decode[T](body)
	if err != nil {
		logger.WarnContext(ctx, "invalid request",
			"error", err,
			"request_id", requestID,
		)
		WriteError(w, err)
		return nil, false
	}
	return req, true
}
