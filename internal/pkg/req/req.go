/*
Package req provides helpers for HTTP request parsing and data binding.

It wraps strict JSON decoding with the application's error codes so handlers can
bind request bodies in one call.
*/
package req

import (
	"encoding/json"
	"net/http"
	"strings"

	"cardparty/internal/pkg/errs"
)

// MaxBodySize caps request bodies; presence-core requests are all small.
const MaxBodySize int64 = 64 << 10 // 64 KB

// BindJSON decodes the JSON request body into dst. Unknown fields, malformed JSON
// and trailing content are rejected.
func BindJSON(w http.ResponseWriter, r *http.Request, dst any) *errs.CustomError {
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "application/json") {
		return errs.NewError(errs.ErrUnsupportedMediaType)
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxBodySize)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return errs.NewError(errs.ErrInvalidJSONFormat)
	}

	if decoder.More() {
		return errs.NewError(errs.ErrExtraContentInBody)
	}

	return nil
}
