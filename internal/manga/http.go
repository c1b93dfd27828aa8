// Copyright (c) 2026 Mangaden. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package manga

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/mangaden/internal/platform/middleware"
	requestutil "github.com/taibuivan/mangaden/internal/platform/request"
	"github.com/taibuivan/mangaden/internal/platform/respond"
	"github.com/taibuivan/mangaden/internal/platform/sec"
	"github.com/taibuivan/mangaden/pkg/convert"
	"github.com/taibuivan/mangaden/pkg/pagination"
)

// discoveryDefaultLimit caps the popular/latest shelves.
const discoveryDefaultLimit = 10

// # Handler Implementation

// Handler implements the HTTP layer for catalogue management and discovery.
// It translates web requests into domain service calls.
type Handler struct {
	service *Service
}

// NewHandler constructs a new manga [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] configured with the catalogue endpoints.
//
// # Routing Strategy
//
//   - Discovery (Public): Accessible by all visitors for browsing.
//   - Management (Restricted): Requires [sec.RoleAdmin] for state-mutating operations.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// ## Public Discovery Endpoints
	router.Get("/", handler.list)
	router.Get("/popular", handler.popular)
	router.Get("/latest", handler.latest)
	router.Get("/search", handler.search)
	router.Get("/{slug}", handler.get)

	// ## Catalogue Management (Admin Protected)
	router.Group(func(admin chi.Router) {
		admin.Use(middleware.RequireRole(sec.RoleAdmin))

		admin.Post("/", handler.create)
		admin.Put("/{slug}", handler.update)
		admin.Delete("/{slug}", handler.delete)
	})

	return router
}

// # Request Payloads

type createRequest struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Status      string              `json:"status"`
	CoverImage  string              `json:"cover_image"`
	AltTitles   map[string][]string `json:"alt_titles"`
	AuthorIDs   []string            `json:"author_ids"`
	GenreIDs    []string            `json:"genre_ids"`
}

type updateRequest struct {
	Title       *string             `json:"title"`
	Description *string             `json:"description"`
	Status      *string             `json:"status"`
	CoverImage  *string             `json:"cover_image"`
	AltTitles   map[string][]string `json:"alt_titles"`
	AuthorIDs   []string            `json:"author_ids"`
	GenreIDs    []string            `json:"genre_ids"`
}

// # Discovery Endpoints

/*
GET /api/v1/manga.

Description: Retrieves a paginated catalogue page, newest first.

Request:
  - status: string (ongoing, completed, hiatus, cancelled)
  - genre: string (Genre slug)
  - limit: int
  - page: int

Response:
  - 200: []Manga with pagination meta
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)
	queryParams := request.URL.Query()

	filter := Filter{
		Status:    Status(queryParams.Get("status")),
		GenreSlug: queryParams.Get("genre"),
	}

	mangas, total, err := handler.service.List(request.Context(), filter, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, mangas, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

/*
GET /api/v1/manga/search?q=.

Description: Keyword search over titles, descriptions, and alternative
titles. A blank keyword degrades to an unfiltered listing.
*/
func (handler *Handler) search(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)
	keyword := request.URL.Query().Get("q")

	mangas, total, err := handler.service.Search(request.Context(), keyword, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, mangas, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

/*
GET /api/v1/manga/popular.

Description: Most viewed catalogue entries.
*/
func (handler *Handler) popular(writer http.ResponseWriter, request *http.Request) {
	limit := convert.ToIntD(request.URL.Query().Get("limit"), discoveryDefaultLimit)

	mangas, err := handler.service.Popular(request.Context(), limit)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, mangas)
}

/*
GET /api/v1/manga/latest.

Description: Most recently updated catalogue entries.
*/
func (handler *Handler) latest(writer http.ResponseWriter, request *http.Request) {
	limit := convert.ToIntD(request.URL.Query().Get("limit"), discoveryDefaultLimit)

	mangas, err := handler.service.Latest(request.Context(), limit)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, mangas)
}

/*
GET /api/v1/manga/{slug}.

Description: Retrieves a single manga with relation IDs. Every public read
counts as a view. Admins may inspect soft-deleted entries by passing
include_deleted=true.
*/
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	mangaSlug := requestutil.Param(request, "slug")

	// Soft-deleted visibility is an explicit, role-gated opt-in
	includeDeleted := false
	if convert.ToBool(request.URL.Query().Get("include_deleted")) {
		claims := requestutil.Claims(request)
		includeDeleted = claims != nil && sec.UserRole(claims.Role).AtLeast(sec.RoleAdmin)
	}

	manga, err := handler.service.FindBySlug(request.Context(), mangaSlug, includeDeleted)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.service.IncrementViews(request.Context(), manga)

	respond.OK(writer, manga)
}

// # Management Endpoints

/*
POST /api/v1/manga. Admin only.
*/
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	var payload createRequest
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	manga := &Manga{
		Title:       payload.Title,
		Description: payload.Description,
		Status:      Status(payload.Status),
		CoverImage:  payload.CoverImage,
		AltTitles:   payload.AltTitles,
		AuthorIDs:   payload.AuthorIDs,
		GenreIDs:    payload.GenreIDs,
	}

	if err := handler.service.Create(request.Context(), manga); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, manga)
}

/*
PUT /api/v1/manga/{slug}. Admin only.

Description: Partial update. Omitted fields stay untouched; author_ids and
genre_ids, when present (even empty), replace the relation set exactly.
*/
func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	mangaSlug := requestutil.Param(request, "slug")

	var payload updateRequest
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	input := UpdateInput{
		Title:       payload.Title,
		Description: payload.Description,
		CoverImage:  payload.CoverImage,
		AltTitles:   payload.AltTitles,
		AuthorIDs:   payload.AuthorIDs,
		GenreIDs:    payload.GenreIDs,
		SyncAuthors: payload.AuthorIDs != nil,
		SyncGenres:  payload.GenreIDs != nil,
	}
	if payload.Status != nil {
		status := Status(*payload.Status)
		input.Status = &status
	}

	manga, err := handler.service.Update(request.Context(), mangaSlug, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, manga)
}

/*
DELETE /api/v1/manga/{slug}. Admin only. Soft delete.
*/
func (handler *Handler) delete(writer http.ResponseWriter, request *http.Request) {
	mangaSlug := requestutil.Param(request, "slug")

	if err := handler.service.SoftDelete(request.Context(), mangaSlug); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
