package api

import (
	"net/http"
	"net/netip"
	"time"

	"go.uber.org/zap"

	"github.com/zlnvch/notekeep/api/rest"
	"github.com/zlnvch/notekeep/service"
)

const (
	defaultAuthRatePerSecond = 5
	defaultAuthRateBurst     = 10
)

type Options struct {
	RequestTimeout    time.Duration
	AuthRatePerSecond float64
	AuthRateBurst     int
	// TrustedProxies may set X-Forwarded-For; nil trusts nobody.
	TrustedProxies []netip.Prefix
}

type NotesAPI struct {
	restHandler    *rest.Handler
	logger         *zap.Logger
	metrics        *Metrics
	authLimiter    *IPRateLimiter
	clientIPs      ClientIPResolver
	requestTimeout time.Duration
}

func NewNotesAPI(svc *service.Service, metrics *Metrics, logger *zap.Logger, opts Options) *NotesAPI {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = NewMetrics()
	}
	if opts.AuthRatePerSecond <= 0 || opts.AuthRateBurst < 1 {
		opts.AuthRatePerSecond, opts.AuthRateBurst = defaultAuthRatePerSecond, defaultAuthRateBurst
	}
	return &NotesAPI{
		restHandler:    rest.NewHandler(svc, logger),
		logger:         logger,
		metrics:        metrics,
		authLimiter:    NewIPRateLimiter(opts.AuthRatePerSecond, opts.AuthRateBurst),
		clientIPs:      NewClientIPResolver(opts.TrustedProxies),
		requestTimeout: opts.RequestTimeout,
	}
}

func (notesAPI *NotesAPI) RegisterRoutes(mux *http.ServeMux) {
	// Health check endpoint (no auth required)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.Handle("GET /metrics", notesAPI.metrics.Handler())

	h := notesAPI.restHandler
	notesAPI.handle(mux, "POST /auth/register", notesAPI.rateLimited("/auth/register", http.HandlerFunc(h.HandleRegister)))
	notesAPI.handle(mux, "POST /auth/login", notesAPI.rateLimited("/auth/login", http.HandlerFunc(h.HandleLogin)))
	notesAPI.handle(mux, "GET /auth/register", http.HandlerFunc(h.HandleRegisterInfo))
	notesAPI.handle(mux, "POST /auth/logout", http.HandlerFunc(h.HandleLogout))

	notesAPI.handle(mux, "GET /notes", http.HandlerFunc(h.HandleListNotes))
	notesAPI.handle(mux, "GET /api/notes", http.HandlerFunc(h.HandleListNotesPage))

	for _, prefix := range []string{"/notes", "/api/notes"} {
		notesAPI.handle(mux, "POST "+prefix, http.HandlerFunc(h.HandleCreateNote))
		notesAPI.handle(mux, "GET "+prefix+"/{id}", http.HandlerFunc(h.HandleGetNote))
		notesAPI.handle(mux, "PATCH "+prefix+"/{id}", http.HandlerFunc(h.HandleUpdateNote))
		notesAPI.handle(mux, "DELETE "+prefix+"/{id}", http.HandlerFunc(h.HandleDeleteNote))
	}
}

func (notesAPI *NotesAPI) handle(mux *http.ServeMux, pattern string, handler http.Handler) {
	if notesAPI.requestTimeout > 0 {
		handler = withTimeout(notesAPI.requestTimeout, handler)
	}
	mux.Handle(pattern, notesAPI.instrument(pattern, handler))
}
