package recoverer

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/go-chi/render"
	"github.com/vadimbarashkov/shorturls/pkg/middleware"
	"github.com/vadimbarashkov/shorturls/pkg/response"
)

// New returns a middleware that turns a panic into a logged 500 response.
// http.ErrAbortHandler is re-panicked so the server can abort the connection.
func New(logger *slog.Logger) middleware.Middleware {
	const op = "middleware.recoverer.New"

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}

					logger.Error(
						"something went wrong, panic occurred",
						slog.Group(op,
							slog.Any("err", err),
							slog.String("method", r.Method),
							slog.String("path", r.URL.Path),
							slog.String("stack", string(debug.Stack())),
						),
					)

					render.Status(r, http.StatusInternalServerError)
					render.JSON(w, r, response.ServerErrorResponse)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
