package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/vadimbarashkov/shorturls/internal/entity"
	"github.com/vadimbarashkov/shorturls/internal/usecase"
	"github.com/vadimbarashkov/shorturls/pkg/response"
)

type urlUseCase interface {
	CreateShortURL(ctx context.Context, params usecase.CreateParams) (*entity.URL, error)
	ResolveAndTrack(ctx context.Context, shortCode string, cc entity.ClickContext) (*entity.URL, error)
	GetStats(ctx context.Context, shortCode string) (*entity.URLStats, error)
	DeleteShortURL(ctx context.Context, shortCode string) error
}

func handleHealth(service, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.Status(r, http.StatusOK)
		render.JSON(w, r, healthResponse{
			Status:    "OK",
			Timestamp: time.Now().UTC(),
			Service:   service,
			Version:   version,
		})
	}
}

func handleCreateShortURL(uc urlUseCase, validate *validator.Validate) http.HandlerFunc {
	const op = "adapter.delivery.http.handleCreateShortURL"
	const successMsg = "The URL has been shortened successfully."

	return func(w http.ResponseWriter, r *http.Request) {
		var req createShortURLRequest

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			if errors.Is(err, io.EOF) {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.EmptyRequestBodyResponse)
				return
			}

			var maxBytesErr *http.MaxBytesError
			if errors.As(err, &maxBytesErr) {
				render.Status(r, http.StatusRequestEntityTooLarge)
				render.JSON(w, r, response.RequestTooLargeResponse)
				return
			}

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.BadRequestResponse)
			return
		}

		if err := validate.Struct(req); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.ValidationErrorResponse(err))
			return
		}

		url, err := uc.CreateShortURL(r.Context(), usecase.CreateParams{
			OriginalURL:     req.URL,
			ValidityMinutes: req.Validity,
			CustomCode:      req.ShortCode,
		})
		if err != nil {
			switch {
			case errors.Is(err, entity.ErrInvalidURL),
				errors.Is(err, entity.ErrInvalidValidity),
				errors.Is(err, entity.ErrInvalidShortCodeFormat):
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.ErrorResponse(invalidInputMessage(err)))
			case errors.Is(err, entity.ErrShortCodeExists):
				render.Status(r, http.StatusConflict)
				render.JSON(w, r, response.ShortCodeExistsResponse)
			default:
				httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.ServerErrorResponse)
			}
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, response.SuccessResponse(successMsg, toShortURLResponse(r, url)))
	}
}

func invalidInputMessage(err error) string {
	switch {
	case errors.Is(err, entity.ErrInvalidURL):
		return "Invalid URL. Must be an absolute http or https URL."
	case errors.Is(err, entity.ErrInvalidValidity):
		return "Invalid validity. Must be between 1 and 525600 minutes."
	default:
		return response.InvalidShortCodeResponse.Message
	}
}

func handleRedirect(uc urlUseCase) http.HandlerFunc {
	const op = "adapter.delivery.http.handleRedirect"

	return func(w http.ResponseWriter, r *http.Request) {
		shortCode := chi.URLParam(r, "shortCode")

		url, err := uc.ResolveAndTrack(r.Context(), shortCode, entity.ClickContext{
			Referrer:   r.Referer(),
			UserAgent:  r.UserAgent(),
			RemoteAddr: r.RemoteAddr,
		})
		if err != nil {
			if errors.Is(err, entity.ErrURLNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.URLNotFoundResponse)
				return
			}

			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.ServerErrorResponse)
			return
		}

		http.Redirect(w, r, url.OriginalURL, http.StatusFound)
	}
}

func handleGetStats(uc urlUseCase) http.HandlerFunc {
	const op = "adapter.delivery.http.handleGetStats"
	const successMsg = "The URL statistics retrieved successfully."

	return func(w http.ResponseWriter, r *http.Request) {
		shortCode := chi.URLParam(r, "shortCode")

		stats, err := uc.GetStats(r.Context(), shortCode)
		if err != nil {
			if errors.Is(err, entity.ErrURLNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.URLNotFoundResponse)
				return
			}

			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.ServerErrorResponse)
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, response.SuccessResponse(successMsg, toStatsResponse(stats)))
	}
}

func handleDeleteShortURL(uc urlUseCase) http.HandlerFunc {
	const op = "adapter.delivery.http.handleDeleteShortURL"
	const successMsg = "The URL was successfully deleted."

	return func(w http.ResponseWriter, r *http.Request) {
		shortCode := chi.URLParam(r, "shortCode")

		if err := uc.DeleteShortURL(r.Context(), shortCode); err != nil {
			if errors.Is(err, entity.ErrURLNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.URLNotFoundResponse)
				return
			}

			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.ServerErrorResponse)
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, response.SuccessResponse(successMsg))
	}
}
