// Copyright (c) 2026 MathLab. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/mathlab/internal/platform/middleware"
	requestutil "github.com/taibuivan/mathlab/internal/platform/request"
	"github.com/taibuivan/mathlab/internal/platform/respond"
	"github.com/taibuivan/mathlab/internal/platform/validate"
	"github.com/taibuivan/mathlab/internal/users/auth"
)

// Field names used in validation errors.
const (
	FieldAmount    = "amount"
	FieldAvatarURL = "avatar_url"
)

// maxAvatarURLLength bounds stored avatar URLs.
const maxAvatarURLLength = 2048

// Handler implements the "me" endpoints of the authenticated user.
type Handler struct {
	accountService *Service
}

// NewHandler constructs a new [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{accountService: service}
}

// Routes returns the account router. Every route requires authentication.
//
// # Endpoints
//   - GET  /me        : Current profile.
//   - PUT  /me        : Update display name or avatar.
//   - GET  /me/stats  : Aggregated statistics.
//   - POST /me/xp     : Credit XP.
//   - POST /me/hearts : Change hearts by a delta.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	router.Get("/me", handler.getMe)
	router.Put("/me", handler.updateProfile)
	router.Get("/me/stats", handler.getStats)
	router.Post("/me/xp", handler.addXP)
	router.Post("/me/hearts", handler.updateHearts)

	return router
}

type amountRequest struct {
	Amount *int `json:"amount"`
}

type profileRequest struct {
	DisplayName *string `json:"display_name"`
	AvatarURL   *string `json:"avatar_url"`
}

/*
GET /api/v1/users/me

Response:
  - 200: auth.User
  - 404: User no longer exists
*/
func (handler *Handler) getMe(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.GetMe(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

/*
PUT /api/v1/users/me

Request:
  - Body: profileRequest (both fields optional, at least one required)

Response:
  - 200: auth.User
  - 400: VALIDATION_ERROR
*/
func (handler *Handler) updateProfile(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input profileRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	if input.DisplayName != nil {
		name := NormalizeDisplayName(*input.DisplayName)
		validator.Required(auth.FieldDisplayName, name).
			MaxLen(auth.FieldDisplayName, name, auth.MaxDisplayNameLength)
	}
	if input.AvatarURL != nil {
		validator.URL(FieldAvatarURL, *input.AvatarURL).
			MaxLen(FieldAvatarURL, *input.AvatarURL, maxAvatarURLLength)
	}
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.UpdateProfile(request.Context(), userID, ProfilePatch{
		DisplayName: input.DisplayName,
		AvatarURL:   input.AvatarURL,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

/*
GET /api/v1/users/me/stats

Response:
  - 200: Stats
*/
func (handler *Handler) getStats(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	stats, err := handler.accountService.GetStats(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, stats)
}

/*
POST /api/v1/users/me/xp

Request:
  - Body: {"amount": int} (positive)

Response:
  - 200: auth.User after the credit
  - 400: INVALID_AMOUNT or VALIDATION_ERROR
*/
func (handler *Handler) addXP(writer http.ResponseWriter, request *http.Request) {
	userID, amount, ok := handler.decodeAmount(writer, request)
	if !ok {
		return
	}

	user, err := handler.accountService.AddXP(request.Context(), userID, amount)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

/*
POST /api/v1/users/me/hearts

Request:
  - Body: {"amount": int} (delta, may be negative)

Response:
  - 200: auth.User after the change
*/
func (handler *Handler) updateHearts(writer http.ResponseWriter, request *http.Request) {
	userID, delta, ok := handler.decodeAmount(writer, request)
	if !ok {
		return
	}

	user, err := handler.accountService.UpdateHearts(request.Context(), userID, delta)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

func (handler *Handler) decodeAmount(writer http.ResponseWriter, request *http.Request) (string, int, bool) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return "", 0, false
	}

	var input amountRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return "", 0, false
	}
	if input.Amount == nil {
		respond.Error(writer, request, validate.RequiredError(FieldAmount, "This field is required"))
		return "", 0, false
	}

	return userID, *input.Amount, true
}
