// Copyright (c) 2026 Mangaden. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chapter

import (
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/mangaden/internal/manga"
	"github.com/taibuivan/mangaden/internal/platform/constants"
	"github.com/taibuivan/mangaden/internal/platform/middleware"
	requestutil "github.com/taibuivan/mangaden/internal/platform/request"
	"github.com/taibuivan/mangaden/internal/platform/respond"
	"github.com/taibuivan/mangaden/internal/platform/sec"
	"github.com/taibuivan/mangaden/internal/platform/validate"
	"github.com/taibuivan/mangaden/internal/storage"
	"github.com/taibuivan/mangaden/pkg/pagination"
	"github.com/taibuivan/mangaden/pkg/pointer"
)

// imagesFormKey is the multipart field carrying page files.
const imagesFormKey = "images"

// # Handler Implementation

// Handler implements the HTTP layer for chapter reading, uploads, and
// moderation. Manga resolution goes through the catalogue service so slug
// semantics stay in one place.
type Handler struct {
	service      *Service
	mangaService *manga.Service
}

// NewHandler constructs a new chapter [Handler].
func NewHandler(service *Service, mangaService *manga.Service) *Handler {
	return &Handler{
		service:      service,
		mangaService: mangaService,
	}
}

// MangaRoutes returns the per-manga chapter endpoints.
// Mount under a pattern containing {slug}.
func (handler *Handler) MangaRoutes() chi.Router {
	router := chi.NewRouter()

	// ## Public Reading Endpoints
	router.Get("/", handler.list)
	router.Get("/{number}", handler.get)

	// ## Upload Management (Admin Protected)
	router.Group(func(admin chi.Router) {
		admin.Use(middleware.RequireRole(sec.RoleAdmin))

		admin.Post("/", handler.create)
		admin.Put("/{number}", handler.update)
		admin.Delete("/{number}", handler.delete)
	})

	return router
}

// ModerationRoutes returns the chapter moderation queue endpoints.
func (handler *Handler) ModerationRoutes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireRole(sec.RoleAdmin))

	router.Get("/pending", handler.listPending)
	router.Post("/{id}/approve", handler.approve)
	router.Post("/{id}/reject", handler.reject)

	return router
}

// # Reading Endpoints

/*
GET /api/v1/manga/{slug}/chapters.

Description: Lists a manga's approved chapters ordered by number.
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	owner, err := handler.resolveManga(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	chapters, err := handler.service.ListApproved(request.Context(), owner)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, chapters)
}

/*
GET /api/v1/manga/{slug}/chapters/{number}.

Description: Retrieves an approved chapter with ordered page URLs.
Pending chapters are invisible here.
*/
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	owner, err := handler.resolveManga(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	number, err := parseNumber(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	chapter, err := handler.service.FindByNumber(request.Context(), owner, number)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, chapter)
}

// # Upload Endpoints

/*
POST /api/v1/manga/{slug}/chapters. Admin only.

Description: Multipart submission of a new chapter. Fields: number
(required), title (optional), images (one or more files, input order is
reading order). The chapter always lands pending.
*/
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	owner, err := handler.resolveManga(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	form, err := parseUploadForm(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	number, err := strconv.ParseFloat(form.number, 64)
	if err != nil {
		respond.Error(writer, request, validate.RequiredError(FieldNumber, "Chapter number must be numeric"))
		return
	}

	input := CreateInput{
		Number:     number,
		UploaderID: claims.UserID,
		Uploads:    form.uploads,
	}
	if form.titleProvided && form.title != "" {
		input.Title = pointer.To(form.title)
	}

	chapter, err := handler.service.Create(request.Context(), owner, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, chapter)
}

/*
PUT /api/v1/manga/{slug}/chapters/{number}. Admin only.

Description: Multipart edit. A provided-but-blank title field clears the
title; an absent field leaves it alone. Any attached images fully replace
the existing pages.
*/
func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	owner, chapter, err := handler.resolveChapter(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	form, err := parseUploadForm(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	input := UpdateInput{
		Title:         pointer.To(form.title),
		TitleProvided: form.titleProvided,
		Uploads:       form.uploads,
	}
	if form.number != "" {
		number, err := strconv.ParseFloat(form.number, 64)
		if err != nil {
			respond.Error(writer, request, validate.RequiredError(FieldNumber, "Chapter number must be numeric"))
			return
		}
		input.Number = &number
	}

	updated, err := handler.service.Update(request.Context(), owner, chapter, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, updated)
}

/*
DELETE /api/v1/manga/{slug}/chapters/{number}. Admin only. Hard delete.
*/
func (handler *Handler) delete(writer http.ResponseWriter, request *http.Request) {
	_, chapter, err := handler.resolveChapter(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.Delete(request.Context(), chapter); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// # Moderation Endpoints

/*
GET /api/v1/chapters/pending. Admin only.

Description: The moderation queue, newest submissions first.
*/
func (handler *Handler) listPending(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)

	chapters, total, err := handler.service.ListPending(request.Context(), paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, chapters, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

/*
POST /api/v1/chapters/{id}/approve. Admin only.
*/
func (handler *Handler) approve(writer http.ResponseWriter, request *http.Request) {
	chapter, err := handler.service.FindByID(request.Context(), requestutil.ID(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.Approve(request.Context(), chapter); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, chapter)
}

/*
POST /api/v1/chapters/{id}/reject. Admin only.

Request:
  - reason: string (Optional, logged only)
*/
func (handler *Handler) reject(writer http.ResponseWriter, request *http.Request) {
	chapter, err := handler.service.FindByID(request.Context(), requestutil.ID(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var payload struct {
		Reason string `json:"reason"`
	}
	// Body is optional on reject
	_ = requestutil.DecodeJSON(request, &payload)

	if err := handler.service.Reject(request.Context(), chapter, payload.Reason); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// # Internal Helpers

// resolveManga loads the non-deleted manga addressed by the {slug} URL param.
func (handler *Handler) resolveManga(request *http.Request) (*manga.Manga, error) {
	return handler.mangaService.FindBySlug(request.Context(), requestutil.Param(request, "slug"), false)
}

// resolveChapter loads the manga and the chapter addressed by {slug}/{number},
// regardless of moderation state (admin surface).
func (handler *Handler) resolveChapter(request *http.Request) (*manga.Manga, *Chapter, error) {
	owner, err := handler.resolveManga(request)
	if err != nil {
		return nil, nil, err
	}

	number, err := parseNumber(request)
	if err != nil {
		return nil, nil, err
	}

	chapter, err := handler.service.FindAnyByNumber(request.Context(), owner, number)
	if err != nil {
		return nil, nil, err
	}

	return owner, chapter, nil
}

// parseNumber reads the {number} URL param as a chapter number.
func parseNumber(request *http.Request) (float64, error) {
	number, err := strconv.ParseFloat(requestutil.Param(request, "number"), 64)
	if err != nil {
		return 0, validate.RequiredError(FieldNumber, "Chapter number must be numeric")
	}
	return number, nil
}

// uploadForm is the parsed multipart payload of create/update requests.
type uploadForm struct {
	number        string
	title         string
	titleProvided bool
	uploads       []storage.Upload
}

// parseUploadForm extracts chapter fields and page files from a multipart body.
func parseUploadForm(request *http.Request) (*uploadForm, error) {
	if err := request.ParseMultipartForm(constants.MaxUploadMemory); err != nil {
		return nil, validate.ErrInvalidForm
	}

	form := &uploadForm{
		number: request.FormValue("number"),
	}

	// Presence of the title key matters: blank-but-present means "clear"
	if titles, ok := request.MultipartForm.Value["title"]; ok && len(titles) > 0 {
		form.title = titles[0]
		form.titleProvided = true
	}

	for _, fileHeader := range request.MultipartForm.File[imagesFormKey] {
		form.uploads = append(form.uploads, fileUpload(fileHeader))
	}

	return form, nil
}

// fileUpload adapts a multipart file header to the storage contract.
func fileUpload(fileHeader *multipart.FileHeader) storage.Upload {
	return storage.Upload{
		Filename: fileHeader.Filename,
		Open: func() (io.ReadCloser, error) {
			return fileHeader.Open()
		},
	}
}
