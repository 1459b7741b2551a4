package api

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/azybler/floodfill_pt/pkg/metrics"
)

// ServerConfig holds server configuration.
type ServerConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	MaxConcurrent   int
	MaxBodyBytes    int64
	CORSOrigin      string
}

// DefaultConfig returns sensible defaults for the given listen address,
// including spec.md §6's 50 MiB POST body cap.
func DefaultConfig(addr string) ServerConfig {
	return ServerConfig{
		Addr:          addr,
		ReadTimeout:   30 * time.Second,
		WriteTimeout:  30 * time.Second,
		MaxConcurrent: runtime.NumCPU() * 2,
		MaxBodyBytes:  50 * 1024 * 1024,
		CORSOrigin:    "",
	}
}

// NewServer creates an HTTP server with all routes and middleware.
func NewServer(cfg ServerConfig, handlers *Handlers, reg *metrics.Registry) *http.Server {
	mux := http.NewServeMux()

	sem := make(chan struct{}, cfg.MaxConcurrent)

	mux.HandleFunc("GET /", withMiddleware(handlers.HandleIndex, sem, cfg, reg))
	mux.HandleFunc("GET /get_node_id_count/", withMiddleware(handlers.HandleNodeIDCount, sem, cfg, reg))
	mux.HandleFunc("POST /floodfill_pt/", withMiddleware(handlers.HandleFloodfillPT, sem, cfg, reg))
	mux.Handle("/metrics", promhttp.HandlerFor(reg.GetPrometheusRegistry(), promhttp.HandlerOpts{}))

	return &http.Server{
		Addr:         cfg.Addr,
		Handler:      mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
}

// ListenAndServe starts the server and blocks until shutdown signal.
func ListenAndServe(srv *http.Server) error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGTERM, syscall.SIGINT)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("server listening on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		log.Printf("received %s, shutting down", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}

// statusRecorder wraps a ResponseWriter to capture the status code
// written, defaulting to 200 if WriteHeader is never called explicitly.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// withMiddleware wraps a handler with a request body cap, concurrency
// limiting, panic recovery, request logging, and HTTP metrics recording.
func withMiddleware(handler http.HandlerFunc, sem chan struct{}, cfg ServerConfig, reg *metrics.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Cache-Control", "no-store")

		if cfg.CORSOrigin != "" {
			w.Header().Set("Access-Control-Allow-Origin", cfg.CORSOrigin)
		}

		if cfg.MaxBodyBytes > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, cfg.MaxBodyBytes)
		}

		select {
		case sem <- struct{}{}:
			defer func() { <-sem }()
		default:
			w.Header().Set("Retry-After", "1")
			http.Error(w, `{"error":"service_unavailable"}`, http.StatusServiceUnavailable)
			reg.RecordHTTPRequest(r.URL.Path, strconv.Itoa(http.StatusServiceUnavailable), 0)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		defer func() {
			if p := recover(); p != nil {
				log.Printf("panic: %v", p)
				http.Error(w, `{"error":"internal_error"}`, http.StatusInternalServerError)
				reg.RecordHTTPRequest(r.URL.Path, strconv.Itoa(http.StatusInternalServerError), 0)
			}
		}()

		start := time.Now()
		handler(rec, r)
		duration := time.Since(start)
		reg.RecordHTTPRequest(r.URL.Path, strconv.Itoa(rec.status), duration)
		log.Printf("%s %s %d %s", r.Method, r.URL.Path, rec.status, duration.Round(time.Microsecond))
	}
}
