package stream_test

import (
	"net/http"

	"ctrmdash/internal/stream"
)

func httpHandler(h *stream.Hub) http.Handler {
	return http.HandlerFunc(h.ServeWS)
}
