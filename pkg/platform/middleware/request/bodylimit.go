package request

import (
	"net/http"

	dErrors "regscope/pkg/domain-errors"
	"regscope/pkg/platform/httputil"
)

// BodyLimit caps request bodies at maxBytes.
// A declared Content-Length over the limit is rejected with 413 before the handler
// runs. Otherwise the body is wrapped in http.MaxBytesReader, whose overflow error
// httputil.DecodeSchema also reports as 413.
func BodyLimit(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				httputil.WriteError(w, dErrors.New(dErrors.CodeBodyTooLarge, "Request body too large"))
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
