package http

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/user-service/internal/auth"
	"github.com/spec-kit/user-service/internal/domain"
)

func TestClassifyErrorTaxonomy(t *testing.T) {
	cases := []struct {
		err        error
		wantCode   string
		wantStatus int
	}{
		{domain.ErrInvalidCredentials, "INVALID_CREDENTIALS", http.StatusUnauthorized},
		{domain.ErrInactiveAccount, "INACTIVE_ACCOUNT", http.StatusUnauthorized},
		{domain.ErrUserNotFound, "USER_NOT_FOUND", http.StatusUnauthorized},
		{domain.ErrEmailTaken, "CONFLICT", http.StatusConflict},
		{domain.ErrResetTokenInvalid, "VALIDATION_FAILED", http.StatusBadRequest},
		{auth.ErrExpiredToken, "EXPIRED_TOKEN", http.StatusUnauthorized},
		{auth.ErrWrongTokenType, "WRONG_TOKEN_TYPE", http.StatusUnauthorized},
		{auth.ErrMalformedToken, "INVALID_TOKEN", http.StatusUnauthorized},
		{auth.ErrInvalidSignature, "INVALID_TOKEN", http.StatusUnauthorized},
		{auth.ErrIssuerMismatch, "INVALID_TOKEN", http.StatusUnauthorized},
		{auth.ErrAudienceMismatch, "INVALID_TOKEN", http.StatusUnauthorized},
		{auth.ErrTokenReplayed, "INVALID_TOKEN", http.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.wantCode+"/"+tc.err.Error(), func(t *testing.T) {
			mapped := classifyError(tc.err)
			require.NotNil(t, mapped)
			assert.Equal(t, tc.wantCode, mapped.Code)
			assert.Equal(t, tc.wantStatus, mapped.HTTPStatus)
		})
	}
}

func TestClassifyErrorWrappedSentinel(t *testing.T) {
	wrapped := fmt.Errorf("refresh: %w", auth.ErrExpiredToken)
	mapped := classifyError(wrapped)
	require.NotNil(t, mapped)
	assert.Equal(t, "EXPIRED_TOKEN", mapped.Code)
}

func TestClassifyErrorStoreOutage(t *testing.T) {
	err := fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, errors.New("dial tcp: refused"))
	mapped := classifyError(err)
	require.NotNil(t, mapped)
	assert.Equal(t, "STORE_UNAVAILABLE", mapped.Code)
	assert.Equal(t, http.StatusServiceUnavailable, mapped.HTTPStatus)
}

func TestClassifyErrorFiberError(t *testing.T) {
	mapped := classifyError(fiber.ErrNotFound)
	require.NotNil(t, mapped)
	assert.Equal(t, "NOT_FOUND", mapped.Code)
	assert.Equal(t, http.StatusNotFound, mapped.HTTPStatus)
}

func TestClassifyErrorUnknownBecomesInternal(t *testing.T) {
	mapped := classifyError(errors.New("surprise"))
	require.NotNil(t, mapped)
	assert.Equal(t, "INTERNAL_ERROR", mapped.Code)
	assert.Equal(t, http.StatusInternalServerError, mapped.HTTPStatus)
}
