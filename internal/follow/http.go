// Copyright (c) 2026 Mangaden. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package follow

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/mangaden/internal/manga"
	"github.com/taibuivan/mangaden/internal/platform/middleware"
	requestutil "github.com/taibuivan/mangaden/internal/platform/request"
	"github.com/taibuivan/mangaden/internal/platform/respond"
	"github.com/taibuivan/mangaden/pkg/pagination"
)

// # Handler Implementation

// Handler implements the HTTP layer for reading-list subscriptions.
type Handler struct {
	service      *Service
	mangaService *manga.Service
}

// NewHandler constructs a new follow [Handler].
func NewHandler(service *Service, mangaService *manga.Service) *Handler {
	return &Handler{
		service:      service,
		mangaService: mangaService,
	}
}

// ToggleRoutes returns the per-manga follow endpoint.
// Mount under a pattern containing {slug}.
func (handler *Handler) ToggleRoutes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	router.Post("/", handler.toggle)
	router.Get("/", handler.status)

	return router
}

// ListRoutes returns the authenticated reading-list endpoint.
func (handler *Handler) ListRoutes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	router.Get("/", handler.list)

	return router
}

// # Endpoints

/*
POST /api/v1/manga/{slug}/follow. Authenticated.

Description: Toggles the follow state and reports the new one.

Response:
  - 200: {"following": bool}
*/
func (handler *Handler) toggle(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	target, err := handler.mangaService.FindBySlug(request.Context(), requestutil.Param(request, "slug"), false)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	following, err := handler.service.Toggle(request.Context(), userID, target)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]bool{"following": following})
}

/*
GET /api/v1/manga/{slug}/follow. Authenticated.

Description: Reports the current follow state without changing it.
*/
func (handler *Handler) status(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	target, err := handler.mangaService.FindBySlug(request.Context(), requestutil.Param(request, "slug"), false)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	following, err := handler.service.IsFollowing(request.Context(), userID, target)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]bool{"following": following})
}

/*
GET /api/v1/users/me/follows. Authenticated.

Description: The caller's reading list, most recently followed first.
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	paginationParams := pagination.FromRequest(request)

	mangas, total, err := handler.service.ListFollowed(request.Context(), userID, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, mangas, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}
