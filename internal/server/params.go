package server

import (
	"net/http"
)

// pathParam reads a named route parameter. flow registers :name segments
// through SetPathValue, so they surface on the request itself.
func pathParam(r *http.Request, name string) string {
	return r.PathValue(name)
}
