// Copyright (c) 2026 MathLab. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package leaderboard

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/mathlab/internal/platform/middleware"
	requestutil "github.com/taibuivan/mathlab/internal/platform/request"
	"github.com/taibuivan/mathlab/internal/platform/respond"
	"github.com/taibuivan/mathlab/internal/platform/validate"
)

// Query parameter names.
const (
	FieldLeague = "league"
	FieldLimit  = "limit"
)

// Handler implements leaderboard HTTP endpoints.
type Handler struct {
	leaderboardService *Service
}

// NewHandler constructs a new [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{leaderboardService: service}
}

// Routes returns the leaderboard router.
//
// # Endpoints
//   - GET /weekly?league=&limit= : Top list of the current week (public).
//   - GET /me                    : Caller's standing.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/weekly", handler.weekly)
	router.With(middleware.RequireAuth).Get("/me", handler.me)

	return router
}

/*
GET /api/v1/leaderboard/weekly?league=bronze&limit=50

Response:
  - 200: []Entry
  - 400: VALIDATION_ERROR for a bad limit
*/
func (handler *Handler) weekly(writer http.ResponseWriter, request *http.Request) {
	league := request.URL.Query().Get(FieldLeague)

	limit, err := requestutil.QueryInt(request, FieldLimit, DefaultLimit)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Range(FieldLimit, limit, 1, MaxLimit).
		MaxLen(FieldLeague, league, MaxLeagueLength)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	entries, err := handler.leaderboardService.Weekly(request.Context(), league, limit)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, entries)
}

/*
GET /api/v1/leaderboard/me

Response:
  - 200: Standing ("rank" is null for a new entry)
  - 401: UNAUTHORIZED
*/
func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	standing, err := handler.leaderboardService.MyRank(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, standing)
}
