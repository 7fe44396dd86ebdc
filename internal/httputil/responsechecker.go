// Package httputil holds helpers for talking to the remote catalogs.
package httputil

import (
	"fmt"
	"io"
	"net/http"
	"slices"

	"github.com/quay/distroalias"
)

// ExcerptLen is the number of body bytes included in status errors.
const excerptLen = 256

// CheckResponse reports an error of kind [distroalias.ErrTransport] if the
// response status is not one of the acceptable codes. If no codes are
// provided, any 2xx status is acceptable.
//
// The returned error includes the start of the response body, if it could be
// read.
func CheckResponse(res *http.Response, acceptableCodes ...int) error {
	ok := slices.Contains(acceptableCodes, res.StatusCode)
	if len(acceptableCodes) == 0 {
		ok = res.StatusCode >= 200 && res.StatusCode < 300
	}
	if ok {
		return nil
	}
	err := &distroalias.Error{
		Kind:    distroalias.ErrTransport,
		Message: fmt.Sprintf("unexpected status code: %s", res.Status),
	}
	if res.Request != nil && res.Request.URL != nil {
		err.Op = res.Request.Method + " " + res.Request.URL.Redacted()
	}
	if res.Body != nil {
		b, rerr := io.ReadAll(io.LimitReader(res.Body, excerptLen))
		if rerr == nil && len(b) != 0 {
			err.Message += fmt.Sprintf(" (body starts: %q)", b)
		}
	}
	return err
}
