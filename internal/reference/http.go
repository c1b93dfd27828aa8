// Copyright (c) 2026 Mangaden. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package reference

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/mangaden/internal/platform/middleware"
	requestutil "github.com/taibuivan/mangaden/internal/platform/request"
	"github.com/taibuivan/mangaden/internal/platform/respond"
	"github.com/taibuivan/mangaden/internal/platform/sec"
	"github.com/taibuivan/mangaden/pkg/pagination"
)

// # HTTP Layer

// Handler exposes the lookup endpoints over HTTP.
type Handler struct {
	service *Service
}

// NewHandler constructs a new reference [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the endpoints for one lookup kind. Mount once per kind
// (at /authors and /genres).
func (handler *Handler) Routes(kind Kind) chi.Router {
	router := chi.NewRouter()

	// Public
	router.Get("/", handler.list(kind))
	router.Get("/{slug}", handler.get(kind))

	// Admin only
	router.Group(func(admin chi.Router) {
		admin.Use(middleware.RequireRole(sec.RoleAdmin))

		admin.Post("/", handler.create(kind))
		admin.Put("/{slug}", handler.update(kind))
	})

	return router
}

type upsertRequest struct {
	Name string `json:"name"`
}

func (handler *Handler) list(kind Kind) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		paginationParams := pagination.FromRequest(request)

		entries, total, err := handler.service.List(request.Context(), kind, paginationParams.Limit, paginationParams.Offset())
		if err != nil {
			respond.Error(writer, request, err)
			return
		}

		respond.Paginated(writer, entries, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
	}
}

func (handler *Handler) get(kind Kind) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		entry, err := handler.service.FindBySlug(request.Context(), kind, requestutil.Param(request, "slug"))
		if err != nil {
			respond.Error(writer, request, err)
			return
		}

		respond.OK(writer, entry)
	}
}

func (handler *Handler) create(kind Kind) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		var payload upsertRequest
		if err := requestutil.DecodeJSON(request, &payload); err != nil {
			respond.Error(writer, request, err)
			return
		}

		entry, err := handler.service.Create(request.Context(), kind, payload.Name)
		if err != nil {
			respond.Error(writer, request, err)
			return
		}

		respond.Created(writer, entry)
	}
}

func (handler *Handler) update(kind Kind) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		var payload upsertRequest
		if err := requestutil.DecodeJSON(request, &payload); err != nil {
			respond.Error(writer, request, err)
			return
		}

		entry, err := handler.service.Update(request.Context(), kind, requestutil.Param(request, "slug"), payload.Name)
		if err != nil {
			respond.Error(writer, request, err)
			return
		}

		respond.OK(writer, entry)
	}
}
