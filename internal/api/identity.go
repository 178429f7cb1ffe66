package api

import "net/http"

// callerIDHeader carries the verified identity of the caller, set by the
// auth layer in front of this service.
const callerIDHeader = "X-User-ID"

func callerID(r *http.Request) string {
	return r.Header.Get(callerIDHeader)
}
