// Package http provides the HTTP delivery layer for the URL shortener service.
// It wires the chi router, validates input, maps use case errors to status
// codes and formats responses using the pkg/response envelope.
package http

import (
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/httprate"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/vadimbarashkov/shorturls/docs"
	"github.com/vadimbarashkov/shorturls/pkg/middleware/recoverer"
	"github.com/vadimbarashkov/shorturls/pkg/response"
)

const defaultMaxBodyBytes = 10 << 20

// RouterOptions configures the cross-cutting behavior of the router.
type RouterOptions struct {
	Service        string
	Version        string
	AllowedOrigins []string
	// TrustProxy takes the client address from X-Real-IP / X-Forwarded-For.
	// When false the socket address is used for rate limiting and geo-IP.
	TrustProxy bool
	// MaxBodyBytes caps request bodies. Zero means 10 MiB.
	MaxBodyBytes int64
	// RateLimitRequests is the number of requests allowed per client IP and
	// window. A non-positive value disables rate limiting.
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// NewRouter initializes and returns a new chi router configured with middleware
// and routes for the URL shortener API.
func NewRouter(logger *httplog.Logger, useCase urlUseCase, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Accept"},
		AllowCredentials: false,
		MaxAge:           86400,
	}))
	r.Use(middleware.RequestID)
	if opts.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(httplog.RequestLogger(logger))
	r.Use(recoverer.New(logger.Logger))
	r.Use(middleware.SetHeader("X-Content-Type-Options", "nosniff"))
	r.Use(middleware.SetHeader("X-Frame-Options", "DENY"))
	r.Use(middleware.SetHeader("Referrer-Policy", "no-referrer"))

	if opts.RateLimitRequests > 0 {
		r.Use(httprate.Limit(
			opts.RateLimitRequests,
			opts.RateLimitWindow,
			httprate.WithKeyFuncs(httprate.KeyByIP),
			httprate.WithLimitHandler(handleTooManyRequests),
		))
	}

	r.NotFound(handleNotFound)
	r.MethodNotAllowed(handleMethodNotAllowed)

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/swagger.yml"),
	))
	r.Get("/docs/swagger.yml", handleSwaggerSpec)

	r.Get("/health", handleHealth(opts.Service, opts.Version))

	validate := newValidate()

	maxBodyBytes := opts.MaxBodyBytes
	if maxBodyBytes <= 0 {
		maxBodyBytes = defaultMaxBodyBytes
	}

	r.Route("/shorturls", func(r chi.Router) {
		r.With(middleware.RequestSize(maxBodyBytes)).Post("/", handleCreateShortURL(useCase, validate))

		r.Route("/{shortCode}", func(r chi.Router) {
			r.Use(validShortCode(validate))

			r.Get("/", handleGetStats(useCase))
			r.Delete("/", handleDeleteShortURL(useCase))
		})
	})

	r.With(validShortCode(validate)).Get("/{shortCode}", handleRedirect(useCase))

	return r
}

func newValidate() *validator.Validate {
	validate := validator.New()

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return validate
}

// validShortCode rejects path short codes that could never have been issued.
func validShortCode(validate *validator.Validate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			if err := validate.Var(chi.URLParam(r, "shortCode"), shortCodeRules); err != nil {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.InvalidShortCodeResponse)
				return
			}

			next.ServeHTTP(w, r)
		}

		return http.HandlerFunc(fn)
	}
}

func handleNotFound(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusNotFound)
	render.JSON(w, r, response.ResourceNotFoundResponse)
}

func handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusMethodNotAllowed)
	render.JSON(w, r, response.MethodNotAllowedResponse)
}

func handleTooManyRequests(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusTooManyRequests)
	render.JSON(w, r, response.TooManyRequestsResponse)
}

func handleSwaggerSpec(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	w.Write(docs.SwaggerYAML)
}
