package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gocabin_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gocabin_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	signIns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gocabin_sign_ins_total",
		Help: "Sign-in attempts by provider and result",
	}, []string{"provider", "result"})

	guestsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gocabin_guests_created_total",
		Help: "Guests created on first sign-in",
	})

	bookingOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gocabin_bookings_total",
		Help: "Booking write operations by operation and result",
	}, []string{"operation", "result"})
)

// ObserveHTTPRequest registra uma requisição HTTP.
func ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	code := strconv.Itoa(status)
	httpRequestsTotal.WithLabelValues(method, route, code).Inc()
	httpRequestDuration.WithLabelValues(method, route, code).Observe(duration.Seconds())
}

// SignIn registra uma tentativa de login.
func SignIn(provider, result string) {
	signIns.WithLabelValues(provider, result).Inc()
}

// GuestCreated registra a criação de um hóspede.
func GuestCreated() {
	guestsCreated.Inc()
}

// BookingOperation registra uma escrita de reserva (create, update, cancel, delete).
func BookingOperation(operation string, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	bookingOperations.WithLabelValues(operation, result).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Instrument envolve um handler registrando contagem e duração sob o rótulo route.
// O rótulo é o padrão da rota, nunca o path da requisição.
func Instrument(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		ObserveHTTPRequest(r.Method, route, rec.status, time.Since(start))
	})
}
