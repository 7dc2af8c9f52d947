// Copyright (c) 2026 MathLab. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package social

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/taibuivan/mathlab/internal/platform/apperr"
	"github.com/taibuivan/mathlab/internal/platform/constants"
)

const (
	// DefaultKakaoProfileURL is Kakao's "current user" endpoint.
	DefaultKakaoProfileURL = "https://kapi.kakao.com/v2/user/me"

	kakaoHTTPTimeout = 5 * time.Second
	kakaoAttempts    = 3
	kakaoRetryDelay  = 200 * time.Millisecond

	// kakaoMaxBody caps the profile response we are willing to read.
	kakaoMaxBody = 64 << 10
)

// KakaoConfig configures the Kakao profile client.
type KakaoConfig struct {
	// ProfileURL is overridable for tests.
	ProfileURL string
	HTTPClient *http.Client
	Attempts   uint
	RetryDelay time.Duration
}

// KakaoClient resolves a Kakao access token to the account behind it.
type KakaoClient struct {
	config KakaoConfig
}

// NewKakaoClient creates a KakaoClient, filling unset config with defaults.
func NewKakaoClient(config KakaoConfig) *KakaoClient {
	if config.ProfileURL == "" {
		config.ProfileURL = DefaultKakaoProfileURL
	}
	if config.HTTPClient == nil {
		config.HTTPClient = &http.Client{Timeout: kakaoHTTPTimeout}
	}
	if config.Attempts == 0 {
		config.Attempts = kakaoAttempts
	}
	if config.RetryDelay == 0 {
		config.RetryDelay = kakaoRetryDelay
	}
	return &KakaoClient{config: config}
}

// kakaoUser is the subset of the /v2/user/me response we read.
type kakaoUser struct {
	ID           int64 `json:"id"`
	KakaoAccount struct {
		Email           string `json:"email"`
		IsEmailVerified bool   `json:"is_email_verified"`
		Profile         struct {
			Nickname        string `json:"nickname"`
			ProfileImageURL string `json:"profile_image_url"`
		} `json:"profile"`
	} `json:"kakao_account"`
}

// errKakaoServer marks a response worth retrying: throttling or a server fault.
var errKakaoServer = errors.New("kakao server error")

/*
Verify exchanges a Kakao access token for the user's profile.

Description: Server errors, throttling (429) and network failures are
retried with backoff and surface as a dependency failure once attempts run
out. Any other 4xx answer means the token is bad and is not retried.

Parameters:
  - context: context.Context
  - token: string (Kakao access token)

Returns:
  - *Profile: Identity claims, nickname defaulting to "kakao_<id>"
  - error: ErrTokenRejected or a dependency failure
*/
func (client *KakaoClient) Verify(context context.Context, token string) (*Profile, error) {
	var user *kakaoUser

	err := retry.Do(
		func() error {
			fetched, err := client.fetch(context, token)
			if err != nil {
				return err
			}
			user = fetched
			return nil
		},
		retry.Context(context),
		retry.Attempts(client.config.Attempts),
		retry.Delay(client.config.RetryDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		if apperr.IsAppError(err) {
			return nil, err
		}
		return nil, apperr.Dependency("Kakao", fmt.Errorf("social_kakao_fetch_failed: %w", err))
	}

	subject := strconv.FormatInt(user.ID, 10)
	profile := &Profile{
		Subject:       subject,
		Email:         user.KakaoAccount.Email,
		EmailVerified: user.KakaoAccount.IsEmailVerified,
		DisplayName:   user.KakaoAccount.Profile.Nickname,
		AvatarURL:     user.KakaoAccount.Profile.ProfileImageURL,
	}
	if profile.DisplayName == "" {
		profile.DisplayName = "kakao_" + subject
	}

	return profile, nil
}

// fetch performs one profile request. Rejections are wrapped as unrecoverable.
func (client *KakaoClient) fetch(context context.Context, token string) (*kakaoUser, error) {
	request, err := http.NewRequestWithContext(context, http.MethodGet, client.config.ProfileURL, nil)
	if err != nil {
		return nil, retry.Unrecoverable(fmt.Errorf("social_kakao_request_failed: %w", err))
	}
	request.Header.Set(constants.HeaderAuthorization, "Bearer "+token)

	response, err := client.config.HTTPClient.Do(request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	body, err := io.ReadAll(io.LimitReader(response.Body, kakaoMaxBody))
	if err != nil {
		return nil, err
	}

	switch {
	case response.StatusCode == http.StatusTooManyRequests,
		response.StatusCode >= http.StatusInternalServerError:
		return nil, fmt.Errorf("%w: status %d", errKakaoServer, response.StatusCode)
	case response.StatusCode != http.StatusOK:
		return nil, retry.Unrecoverable(ErrTokenRejected.WithCause(fmt.Errorf("kakao status %d", response.StatusCode)))
	}

	var user kakaoUser
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, retry.Unrecoverable(ErrTokenRejected.WithCause(fmt.Errorf("kakao profile unreadable: %w", err)))
	}
	if user.ID == 0 {
		return nil, retry.Unrecoverable(ErrTokenRejected)
	}

	return &user, nil
}
