package util

import "net/http"

// NotifyBodyLimit bounds request bodies on the dht/v1 mutation endpoints
// (notify, adopt-predecessor), which only ever carry a host/port query
// string and no body at all; it exists to stop a misbehaving peer from
// holding a connection open streaming garbage into one.
const NotifyBodyLimit = 4 << 10

func LimitBody(size int64) func(h http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, size)
			h.ServeHTTP(w, r)
		})
	}
}
