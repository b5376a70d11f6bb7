package http

import (
	stdhttp "net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/MyNameIsWhaaat/socialfeed/internal/metrics"
)

func (h *Handler) Routes() stdhttp.Handler {
	mux := stdhttp.NewServeMux()

	mux.Handle("GET /homepage",
		metrics.Instrument("homepage", stdhttp.HandlerFunc(h.Homepage)))
	mux.Handle("GET /timeline",
		metrics.Instrument("timeline", h.limiter.Middleware("timeline", stdhttp.HandlerFunc(h.Timeline))))
	mux.HandleFunc("GET /healthz", func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(stdhttp.StatusOK)
		_, _ = w.Write([]byte(`{"result":"ok"}`))
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	return otelhttp.NewHandler(mux, "http.server")
}
