// Copyright (c) 2026 MathLab. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package problem

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/mathlab/internal/platform/middleware"
	requestutil "github.com/taibuivan/mathlab/internal/platform/request"
	"github.com/taibuivan/mathlab/internal/platform/respond"
	"github.com/taibuivan/mathlab/internal/platform/validate"
	"github.com/taibuivan/mathlab/pkg/pagination"
)

// Handler implements problem HTTP endpoints.
type Handler struct {
	problemService *Service
}

// NewHandler constructs a new [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{problemService: service}
}

// Routes returns the problem router.
//
// # Endpoints
//   - GET  /?lessonId=           : Problems of a lesson (public).
//   - POST /{problemID}/submit   : Grade an answer.
//   - GET  /me/results           : Submission history, paginated.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.list)

	router.Group(func(protected chi.Router) {
		protected.Use(middleware.RequireAuth)
		protected.Post("/{problemID}/submit", handler.submit)
		protected.Get("/me/results", handler.results)
	})

	return router
}

type submitRequest struct {
	Answer    *string `json:"answer"`
	TimeSpent int     `json:"time_spent"`
	HintsUsed int     `json:"hints_used"`
}

/*
GET /api/v1/problems?lessonId=

Response:
  - 200: []Problem without answers
  - 400: lessonId missing or malformed
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	lessonID := request.URL.Query().Get(FieldLessonID)

	validator := &validate.Validator{}
	validator.Required(FieldLessonID, lessonID)
	if !validator.HasErrors() {
		validator.UUID(FieldLessonID, lessonID)
	}
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	problems, err := handler.problemService.ListProblems(request.Context(), lessonID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, problems)
}

/*
POST /api/v1/problems/{problemID}/submit

Request:
  - Body: {"answer": string, "time_spent": int, "hints_used": int}

Response:
  - 200: Feedback (correct_answer only when wrong)
  - 400: VALIDATION_ERROR
  - 404: PROBLEM_NOT_FOUND
*/
func (handler *Handler) submit(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	problemID := requestutil.Param(request, "problemID")

	var input submitRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.UUID(FieldProblemID, problemID).
		Custom(FieldAnswer, input.Answer == nil, "This field is required")
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	feedback, err := handler.problemService.SubmitAnswer(request.Context(), userID, Submission{
		ProblemID:        problemID,
		Answer:           *input.Answer,
		TimeSpentSeconds: input.TimeSpent,
		HintsUsed:        input.HintsUsed,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, feedback)
}

/*
GET /api/v1/problems/me/results?page=&limit=

Response:
  - 200: Paginated []ResultRecord
*/
func (handler *Handler) results(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	records, meta, err := handler.problemService.ListResults(request.Context(), userID, pagination.FromRequest(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Paginated(writer, records, meta)
}
