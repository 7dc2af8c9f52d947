// Copyright (c) 2026 MathLab. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/mathlab/internal/platform/request"
	"github.com/taibuivan/mathlab/internal/platform/respond"
	"github.com/taibuivan/mathlab/internal/platform/sec"
	"github.com/taibuivan/mathlab/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements authentication-related HTTP endpoints.
//
// # Scope
//
// This handler manages the entry points of the session lifecycle: signup,
// password and social login, access token refresh and logout.
type Handler struct {
	authService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{authService: service}
}

// Routes returns a [chi.Router] configured with authentication-specific routes.
//
// # Endpoints
//   - POST /signup/email       : Creates a password account.
//   - POST /login/email        : Password login.
//   - POST /login/{provider}   : Google, Kakao or Apple login.
//   - POST /refresh            : New access token from a refresh token.
//   - POST /logout             : Revokes a refresh token.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/signup/email", handler.signup)
	router.Post("/login/email", handler.loginEmail)
	router.Post("/login/{provider}", handler.loginProvider)
	router.Post("/refresh", handler.refresh)
	router.Post("/logout", handler.logout)

	return router
}

// # Request Payloads

type signupRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
	Grade       string `json:"grade"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type providerLoginRequest struct {
	Token string `json:"token"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

/*
Signup handles the creation of a new password account.

POST /api/v1/auth/signup/email

Request:
  - Body: signupRequest (Email, Password, DisplayName, Grade)

Response:
  - 201: Session: User profile and token pair
  - 400: VALIDATION_ERROR: Bad input
  - 409: DUPLICATE_EMAIL: Email already registered
*/
func (handler *Handler) signup(writer http.ResponseWriter, request *http.Request) {
	var input signupRequest

	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldPassword, input.Password).
		MinLen(FieldPassword, input.Password, MinPasswordLength).
		MaxBytes(FieldPassword, input.Password, sec.MaxPasswordBytes).
		Required(FieldDisplayName, input.DisplayName).
		MaxLen(FieldDisplayName, input.DisplayName, MaxDisplayNameLength).
		MaxLen(FieldGrade, input.Grade, MaxGradeLength)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.SignupWithEmail(request.Context(), SignupInput{
		Email:       input.Email,
		Password:    input.Password,
		DisplayName: input.DisplayName,
		Grade:       input.Grade,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, session)
}

/*
LoginEmail authenticates with email and password.

POST /api/v1/auth/login/email

Request:
  - Body: loginRequest (Email, Password)

Response:
  - 200: Session: User profile and token pair
  - 401: INVALID_CREDENTIALS: Unknown email or wrong password
*/
func (handler *Handler) loginEmail(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest

	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email)
	validator.Required(FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.LoginWithEmail(request.Context(), input.Email, input.Password)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, session)
}

/*
LoginProvider authenticates with a third-party identity token.

POST /api/v1/auth/login/{provider}

Request:
  - Path: provider (google | kakao | apple)
  - Body: providerLoginRequest (Token: Google/Apple ID token or Kakao access token)

Response:
  - 200: Session: User profile and token pair
  - 400: UNSUPPORTED_PROVIDER: Unknown provider
  - 401: INVALID_PROVIDER_TOKEN: Provider rejected the token
  - 503: Provider not configured or unreachable
*/
func (handler *Handler) loginProvider(writer http.ResponseWriter, request *http.Request) {
	var input providerLoginRequest

	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if input.Token == "" {
		respond.Error(writer, request, validate.RequiredError(FieldToken, "This field is required"))
		return
	}

	provider := Provider(requestutil.Param(request, "provider"))

	session, err := handler.authService.LoginWithProvider(request.Context(), provider, input.Token)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, session)
}

/*
Refresh issues a new access token using a live refresh token.

POST /api/v1/auth/refresh

Request:
  - Body: refreshRequest (RefreshToken)

Response:
  - 200: {access_token}
  - 401: INVALID_REFRESH_TOKEN: Unknown, expired or revoked token
*/
func (handler *Handler) refresh(writer http.ResponseWriter, request *http.Request) {
	var input refreshRequest

	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if input.RefreshToken == "" {
		respond.Error(writer, request, validate.RequiredError(FieldRefreshToken, "This field is required"))
		return
	}

	accessToken, err := handler.authService.Refresh(request.Context(), input.RefreshToken)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldAccessToken: accessToken,
	})
}

/*
Logout revokes a refresh token.

POST /api/v1/auth/logout

Description: Idempotent. Revoking an unknown token still succeeds.

Request:
  - Body: refreshRequest (RefreshToken)

Response:
  - 204: No Content: Token revoked
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	var input refreshRequest

	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if input.RefreshToken == "" {
		respond.Error(writer, request, validate.RequiredError(FieldRefreshToken, "This field is required"))
		return
	}

	if err := handler.authService.Logout(request.Context(), input.RefreshToken); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
