package router

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gocabin/internal/api/auth"
	"gocabin/internal/api/booking"
	"gocabin/internal/pkg/metrics"
)

// Middleware envolve um handler.
type Middleware func(http.Handler) http.Handler

// Deps são os handlers e middlewares já inicializados por injeção de dependências.
type Deps struct {
	Auth        *auth.Handler
	Booking     *booking.Handler
	RequireAuth Middleware
	RateLimit   Middleware // opcional
}

// NewRouter configura e retorna o roteador HTTP principal.
func NewRouter(d Deps) http.Handler {
	mux := http.NewServeMux()

	rateLimit := d.RateLimit
	if rateLimit == nil {
		rateLimit = func(next http.Handler) http.Handler { return next }
	}

	handle := func(pattern string, h http.Handler) {
		mux.Handle(pattern, metrics.Instrument(pattern, h))
	}
	public := func(pattern string, h http.HandlerFunc) { handle(pattern, h) }
	limited := func(pattern string, h http.HandlerFunc) { handle(pattern, rateLimit(h)) }
	private := func(pattern string, h http.HandlerFunc) { handle(pattern, d.RequireAuth(h)) }

	// --- 1. Health Check e Métricas ---
	mux.HandleFunc("GET /ping", PingHandler)
	mux.Handle("GET /metrics", promhttp.Handler())

	// --- 2. Autenticação (v1) ---
	limited("POST /v1/auth/register", d.Auth.RegisterHandler)
	limited("POST /v1/auth/login", d.Auth.LoginHandler)
	limited("GET /v1/auth/google/login", d.Auth.GoogleLoginHandler)
	limited("GET /v1/auth/google/callback", d.Auth.GoogleCallbackHandler)
	private("POST /v1/auth/refresh", d.Auth.RefreshHandler)
	private("GET /v1/auth/session", d.Auth.SessionHandler)
	private("PATCH /v1/guests/me", d.Auth.UpdateProfileHandler)

	// --- 3. Reservas (v1) ---
	private("GET /v1/bookings", d.Booking.ListBookingsHandler)
	private("POST /v1/bookings", d.Booking.CreateBookingHandler)
	private("GET /v1/bookings/{id}", d.Booking.GetBookingHandler)
	private("PATCH /v1/bookings/{id}", d.Booking.UpdateBookingHandler)
	private("DELETE /v1/bookings/{id}", d.Booking.DeleteBookingHandler)
	private("POST /v1/bookings/{id}/cancel", d.Booking.CancelBookingHandler)

	// --- 4. Consultas públicas ---
	public("GET /v1/cabins/{id}/blocked-dates", d.Booking.BlockedDatesHandler)
	public("GET /v1/settings", d.Booking.SettingsHandler)

	return mux
}

// PingHandler é uma função utilitária para o health check.
func PingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}
