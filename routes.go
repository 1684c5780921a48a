package main

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-redis/redis/v8"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/trace"

	"ms-edarshan/internal/analytics"
	analytics_api "ms-edarshan/internal/analytics/api"
	"ms-edarshan/internal/auth"
	"ms-edarshan/internal/bookings/booking_api"
	"ms-edarshan/internal/logger"
	"ms-edarshan/internal/models"
	"ms-edarshan/internal/notification"
	"ms-edarshan/internal/sse"
	"ms-edarshan/internal/telemetry"
	"ms-edarshan/internal/temples/temple_api"
	"ms-edarshan/internal/utils"
)

var availableRoutes = []string{
	"GET /",
	"GET /api/health",
	"GET /api/temples",
	"GET /api/temples/events",
	"POST /api/seed-temples",
	"POST /api/bookings",
	"GET /api/bookings",
	"POST /api/payments/checkout",
	"POST /api/payments/webhook",
	"GET /api/analytics/summary",
}

// GatewayReporter is the slice of the payment gateway the health check reads.
type GatewayReporter interface {
	Status() models.GatewayStatus
}

// app holds everything the router needs. main builds it; tests build it
// from in-memory parts.
type app struct {
	log            *logger.Logger
	db             *bun.DB
	redis          *redis.Client
	bookings       booking_api.BookingService
	temples        temple_api.TempleService
	analytics      *analytics.Service
	emitter        *sse.VisitorEventEmitter
	dispatcher     *notification.Dispatcher
	gateway        GatewayReporter
	verifier       auth.Verifier
	seedTemples    func() []models.Temple
	allowedOrigins []string
	startedAt      time.Time
	// tracerProvider overrides the global provider for request spans.
	tracerProvider trace.TracerProvider
}

func (a *app) router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   a.allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Requested-With", "Stripe-Signature"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(requestLogger(a.log))

	bookingHandler := booking_api.NewHandler(a.bookings, a.log)
	templeHandler := temple_api.NewHandler(a.temples, a.emitter, a.seedTemples, a.log)
	analyticsHandler := analytics_api.NewHandler(a.analytics, a.log)
	guard := auth.Middleware(a.verifier, a.log)

	r.Get("/", a.index)
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", a.health)

		// --- Public Routes ---
		templeHandler.Routes(r)
		bookingHandler.Routes(r)
		bookingHandler.PaymentRoutes(r)

		// --- Protected Routes ---
		r.Group(func(r chi.Router) {
			r.Use(guard)
			templeHandler.AdminRoutes(r)
			bookingHandler.AdminRoutes(r)
			analyticsHandler.RegisterRoutes(r)
			auth.Routes(r)
		})
	})
	r.NotFound(a.notFound)
	r.MethodNotAllowed(a.notFound)

	// requestLogger renames the span to the matched route pattern; until then
	// only the method is known.
	opts := []otelhttp.Option{
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return "HTTP " + r.Method
		}),
	}
	if a.tracerProvider != nil {
		opts = append(opts, otelhttp.WithTracerProvider(a.tracerProvider))
	}
	return otelhttp.NewHandler(r, "edarshan-api", opts...)
}

// requestLogger writes one LogAPI line per request, tagged with the trace id
// when tracing is on. It also names the request span after the route pattern
// so ids in the path stay out of span names.
func requestLogger(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					trace.SpanFromContext(r.Context()).SetName(r.Method + " " + pattern)
				}
			}

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			path := r.URL.Path
			if traceID := telemetry.TraceID(r.Context()); traceID != "" {
				path += " trace=" + traceID
			}
			log.LogAPI(r.Method, path, strconv.Itoa(status), time.Since(start).Round(time.Microsecond).String())
		})
	}
}

func (a *app) index(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "E-Darshan Temple Booking API",
		"status":  "Server running",
		"endpoints": map[string]string{
			"temples":   "/api/temples",
			"health":    "/api/health",
			"payments":  "/api/payments",
			"auth":      "/api/auth",
			"bookings":  "/api/bookings",
			"analytics": "/api/analytics",
		},
	})
}

type dependencyStatus struct {
	Database      string               `json:"database"`
	Redis         string               `json:"redis"`
	Payments      models.GatewayStatus `json:"payments"`
	Notifications notification.Stats   `json:"notifications"`
	SSEClients    int                  `json:"sseClients"`
}

// health reports 503 only when the database is unreachable; Redis and the
// mail queue degrade features without taking bookings down.
func (a *app) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	deps := dependencyStatus{Database: "ok", Redis: "disabled"}
	if a.db == nil {
		deps.Database = "unavailable"
		status = http.StatusServiceUnavailable
	} else if err := a.db.PingContext(ctx); err != nil {
		a.log.Error("HEALTH", fmt.Sprintf("Database ping failed: %v", err))
		deps.Database = "unavailable"
		status = http.StatusServiceUnavailable
	}
	if a.redis != nil {
		deps.Redis = "ok"
		if err := a.redis.Ping(ctx).Err(); err != nil {
			a.log.Warn("HEALTH", fmt.Sprintf("Redis ping failed: %v", err))
			deps.Redis = "unavailable"
		}
	}
	if a.gateway != nil {
		deps.Payments = a.gateway.Status()
	}
	if a.dispatcher != nil {
		deps.Notifications = a.dispatcher.Stats()
	}
	if a.emitter != nil {
		deps.SSEClients = a.emitter.TotalClients()
	}

	label := "Server running"
	if status != http.StatusOK {
		label = "Degraded"
	}
	utils.WriteJSON(w, status, map[string]interface{}{
		"status":       label,
		"timestamp":    time.Now().UTC(),
		"uptime":       time.Since(a.startedAt).Round(time.Second).String(),
		"dependencies": deps,
	})
}

func (a *app) notFound(w http.ResponseWriter, r *http.Request) {
	a.log.Warn("HTTP", fmt.Sprintf("Unhandled route: %s %s", r.Method, r.URL.RequestURI()))
	utils.WriteJSON(w, http.StatusNotFound, map[string]interface{}{
		"success":         false,
		"error":           "Route not found",
		"method":          r.Method,
		"path":            r.URL.RequestURI(),
		"availableRoutes": availableRoutes,
	})
}
