package httpapi

import (
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"hawaii-climate/internal/config"
)

const serverName = "hawaii-climate"

func NewServer(cfg config.Config, mux *http.ServeMux) *http.Server {
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           otelhttp.NewHandler(requestLogger(mux), serverName),
		ReadHeaderTimeout: 5 * time.Second,
	}
}
