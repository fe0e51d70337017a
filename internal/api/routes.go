package api

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ignite/advent-ledger/internal/pkg/httputil"
)

// RouterOptions tunes the middleware stack.
type RouterOptions struct {
	AllowedOrigins []string
	// TrackRateLimit is the per-client request budget per minute on public
	// endpoints. Zero disables limiting.
	TrackRateLimit int
	// TrustProxy keys rate limiting on the last X-Forwarded-For hop, the
	// address appended by the fronting proxy. Without it the TCP peer is used.
	TrustProxy bool
}

// SetupRoutes configures all routes.
func SetupRoutes(h *Handlers, hc *HealthChecker, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(peerAddress)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	if hc != nil {
		r.Get("/health", hc.HandleHealth)
		r.Get("/health/live", hc.HandleLiveness)
		r.Get("/health/ready", hc.HandleReadiness)
	}
	r.Handle("/metrics", promhttp.Handler())

	public := rateLimit(opts.TrackRateLimit, opts.TrustProxy)

	r.Route("/api", func(r chi.Router) {
		r.With(public).Post("/track", h.HandleTrack)

		r.Route("/campaigns/{campaignID}", func(r chi.Router) {
			r.Get("/analytics", h.HandleAnalytics)

			r.With(public).Post("/leads", h.HandleRegister)
			r.Get("/leads/export", h.HandleExportLeads)

			r.Route("/doors/{doorID}", func(r chi.Router) {
				r.Post("/draw", h.HandleDrawDoor)
				r.Get("/winner", h.HandleGetDoorWinner)
				r.Get("/questions", h.HandleListQuestions)
				r.Put("/questions", h.HandleReplaceQuestions)
				r.Post("/questions/generate", h.HandleGenerateQuestions)
			})

			r.Get("/landing-winner", h.HandleGetLandingWinner)
			r.Post("/landing-winner", h.HandleDrawLanding)
			r.Patch("/landing-winner", h.HandleSetLandingVisibility)
			r.Delete("/landing-winner", h.HandleDeleteLandingWinner)
		})
	})

	return r
}

type peerKey struct{}

// peerAddress records the TCP peer before RealIP rewrites RemoteAddr from
// client-supplied headers.
func peerAddress(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), peerKey{}, hostOnly(r.RemoteAddr))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// limiterKey identifies the caller for rate limiting. Only addresses the
// client cannot choose are used: the hop appended by a trusted proxy, or the
// TCP peer. Fingerprinting keeps using the first forwarded hop.
func limiterKey(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			hops := strings.Split(xff, ",")
			if last := strings.TrimSpace(hops[len(hops)-1]); last != "" {
				return last
			}
		}
	}
	if peer, ok := r.Context().Value(peerKey{}).(string); ok && peer != "" {
		return peer
	}
	return hostOnly(r.RemoteAddr)
}

func hostOnly(addr string) string {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}

// rateLimit limits public endpoints per caller address.
func rateLimit(perMinute int, trustProxy bool) func(http.Handler) http.Handler {
	if perMinute <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(perMinute, time.Minute,
		httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
			return limiterKey(r, trustProxy), nil
		}),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			httputil.ErrorCode(w, http.StatusTooManyRequests, "rate_limited", "Too many requests")
		}),
	)
}
