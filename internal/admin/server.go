// HTTP adapter exposing the dispatch operations
package admin

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"droneops-dispatch/internal/fleet"
	"droneops-dispatch/internal/logging"
	"droneops-dispatch/internal/ops"
	"droneops-dispatch/internal/telemetry"
)

// TelemetrySource provides the rows of the last clock tick.
type TelemetrySource interface {
	TelemetrySnapshot() []telemetry.DroneStatusRow
}

// Server routes HTTP requests to the operations service.
type Server struct {
	svc       *ops.Service
	telemetry TelemetrySource
	router    chi.Router
}

// NewServer builds the router. src may be nil when no clock runs.
func NewServer(svc *ops.Service, src TelemetrySource) *Server {
	s := &Server{svc: svc, telemetry: src}
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Get("/telemetry", s.handleTelemetry)

	r.Route("/drones", func(r chi.Router) {
		r.Get("/", s.handleListDrones)
		r.Post("/", s.handleCreateDrone)
		r.Get("/status", s.handleDroneStatus)
		r.Patch("/{id}", s.handleUpdateDrone)
		r.Delete("/{id}", s.handleRemoveDrone)
	})
	r.Route("/deliveries", func(r chi.Router) {
		r.Get("/", s.handleListDeliveries)
		r.Post("/", s.handleCreateDelivery)
		r.Patch("/{id}", s.handleUpdateDelivery)
		r.Delete("/{id}", s.handleRemoveDelivery)
		r.Post("/{id}/cancel", s.handleCancelDelivery)
	})
	r.Route("/flights", func(r chi.Router) {
		r.Get("/", s.handleListFlights)
		r.Post("/", s.handleScheduleFlight)
		r.Get("/history", s.handleFlightHistory)
		r.Post("/{id}/advance", s.handleAdvanceFlight)
		r.Patch("/{id}", s.handleUpdateFlight)
		r.Delete("/{id}", s.handleRemoveFlight)
	})
	r.Route("/obstacles", func(r chi.Router) {
		r.Get("/", s.handleListObstacles)
		r.Post("/", s.handleCreateObstacle)
		r.Delete("/{id}", s.handleRemoveObstacle)
	})
	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Start serves on addr until ctx is cancelled.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		logging.FromContext(r.Context()).Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start))
	})
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps a domain error kind to an HTTP status.
func statusFor(err error) int {
	switch fleet.KindOf(err) {
	case fleet.KindValidation:
		return http.StatusBadRequest
	case fleet.KindNotFound:
		return http.StatusNotFound
	case fleet.KindConflict:
		return http.StatusConflict
	case fleet.KindInfeasible:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logging.FromContext(r.Context()).Error("request failed", "path", r.URL.Path, "err", err)
	}
	writeJSON(w, status, errorBody{Error: err.Error(), Code: fleet.CodeOf(err)})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON body: " + err.Error(), Code: fleet.ErrValidation.Code})
		return false
	}
	return true
}

func (s *Server) handleTelemetry(w http.ResponseWriter, r *http.Request) {
	rows := []telemetry.DroneStatusRow{}
	if s.telemetry != nil {
		rows = s.telemetry.TelemetrySnapshot()
	}
	writeJSON(w, http.StatusOK, rows)
}
