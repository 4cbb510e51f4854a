package api

import (
	"bufio"
	"errors"
	"log"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pokefinder-cloud/internal/audit"
	"pokefinder-cloud/internal/auth"
	cataloghttp "pokefinder-cloud/internal/catalog/interfaces/http"
	"pokefinder-cloud/internal/observability/metrics"
	telemetryws "pokefinder-cloud/internal/telemetry/interfaces/ws"
	usershttp "pokefinder-cloud/internal/users/interfaces/http"
)

// Deps carries the handlers the router mounts.
type Deps struct {
	Users      *usershttp.Handler
	Catalog    *cataloghttp.Handler
	Telemetry  *telemetryws.Handler
	AuthSecret []byte
	Revoker    auth.TokenRevoker
	Audit      audit.Logger
	Logger     *log.Logger
}

// NewRouter assembles the HTTP surface behind token auth.
func NewRouter(deps Deps) (http.Handler, error) {
	if deps.Users == nil {
		return nil, errors.New("router: nil users handler")
	}
	if deps.Catalog == nil {
		return nil, errors.New("router: nil catalog handler")
	}
	if len(deps.AuthSecret) == 0 {
		return nil, errors.New("router: auth secret required")
	}
	if deps.Logger == nil {
		deps.Logger = log.Default()
	}

	router := mux.NewRouter()
	router.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	deps.Users.Mount(router)
	deps.Catalog.Mount(router)
	if deps.Telemetry != nil {
		deps.Telemetry.Mount(router)
	}

	router.Use(observeMiddleware)
	if deps.Audit != nil {
		router.Use(auditMiddleware(deps.Audit, deps.Logger))
	}

	policy := auth.NewDefaultPolicy(
		[]string{"/api/users/register/", "/api/users/login/", "/healthz", "/metrics"},
		nil,
	)
	middleware := auth.NewMiddleware(deps.AuthSecret, policy, deps.Revoker)
	return middleware.Wrap(router), nil
}

// auditMiddleware records mutating API calls. Reads are not audited.
func auditMiddleware(sink audit.Logger, logger *log.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r)

			if r.Method == http.MethodGet || r.Method == http.MethodHead {
				return
			}
			entry := audit.Entry{
				Actor:        auth.UsernameFromContext(r.Context()),
				Action:       auditAction(r),
				ResourceType: "http",
				ResourceID:   r.URL.Path,
				IP:           r.RemoteAddr,
				UserAgent:    r.UserAgent(),
			}
			if err := sink.Log(r.Context(), entry); err != nil && logger != nil {
				logger.Printf("audit log: %v", err)
			}
		})
	}
}

// auditAction names well-known operations; anything else is recorded as
// method plus path.
func auditAction(r *http.Request) string {
	path := r.URL.Path
	switch {
	case strings.HasSuffix(path, "/users/register/"):
		return audit.ActionRegister
	case strings.HasSuffix(path, "/users/login/"):
		return audit.ActionLogin
	case strings.HasSuffix(path, "/users/logout/"):
		return audit.ActionLogout
	case strings.HasSuffix(path, "/favorite/"):
		return audit.ActionFavorite
	case strings.HasSuffix(path, "/upload_from_csv/"):
		return audit.ActionImportCSV
	case strings.HasSuffix(path, "/fetch_from_api/"):
		return audit.ActionFetchAPI
	case r.Method == http.MethodDelete:
		return audit.ActionDelete
	default:
		return r.Method + " " + path
	}
}

// observeMiddleware records request counts and latency per route template.
func observeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		route := r.URL.Path
		if current := mux.CurrentRoute(r); current != nil {
			if template, err := current.GetPathTemplate(); err == nil {
				route = template
			}
		}
		metrics.ObserveHTTP(route, statusClass(recorder.status), time.Since(start))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Hijack keeps websocket upgrades working through the recorder.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("router: response writer does not support hijacking")
	}
	return hijacker.Hijack()
}

func (r *statusRecorder) Flush() {
	if flusher, ok := r.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func statusClass(status int) string {
	return strconv.Itoa(status/100) + "xx"
}
