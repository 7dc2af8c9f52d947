// Copyright (c) 2026 MathLab. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package lesson

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/mathlab/internal/platform/middleware"
	requestutil "github.com/taibuivan/mathlab/internal/platform/request"
	"github.com/taibuivan/mathlab/internal/platform/respond"
	"github.com/taibuivan/mathlab/internal/platform/validate"
)

// FieldLessonID is the validation field for the lesson path parameter.
const FieldLessonID = "lesson_id"

// Handler implements lesson HTTP endpoints.
type Handler struct {
	lessonService *Service
}

// NewHandler constructs a new [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{lessonService: service}
}

// Routes returns the lesson router.
//
// # Endpoints
//   - GET  /                     : Catalog (public).
//   - GET  /me/progress          : Catalog with the caller's progress.
//   - POST /{lessonID}/complete  : Complete a lesson.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.list)

	router.Group(func(protected chi.Router) {
		protected.Use(middleware.RequireAuth)
		protected.Get("/me/progress", handler.progress)
		protected.Post("/{lessonID}/complete", handler.complete)
	})

	return router
}

/*
GET /api/v1/lessons

Response:
  - 200: []Lesson ordered by order_index
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	lessons, err := handler.lessonService.ListLessons(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, lessons)
}

/*
GET /api/v1/lessons/me/progress

Response:
  - 200: []LessonProgress
  - 401: UNAUTHORIZED
*/
func (handler *Handler) progress(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	entries, err := handler.lessonService.GetProgress(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, entries)
}

/*
POST /api/v1/lessons/{lessonID}/complete

Response:
  - 200: Completion
  - 400: LESSON_LOCKED or VALIDATION_ERROR
  - 404: Lesson not found
*/
func (handler *Handler) complete(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	lessonID := requestutil.Param(request, "lessonID")
	if err := (&validate.Validator{}).UUID(FieldLessonID, lessonID).Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	completion, err := handler.lessonService.CompleteLesson(request.Context(), userID, lessonID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, completion)
}
