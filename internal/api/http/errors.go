package http

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/user-service/internal/auth"
	"github.com/spec-kit/user-service/internal/domain"
	apperrors "github.com/spec-kit/user-service/pkg/util/errorutil"
)

// classifyError maps core sentinel errors onto the stable error taxonomy
// surfaced to clients. Credential and token problems are 401s, permission
// problems 403s, store outages 503s. This is the single place transport
// translation happens; services return plain sentinels.
func classifyError(err error) *apperrors.DomainError {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return asDomain(apperrors.NewUnauthorizedCode("INVALID_CREDENTIALS", "invalid email or password"))
	case errors.Is(err, domain.ErrInactiveAccount):
		return asDomain(apperrors.NewUnauthorizedCode("INACTIVE_ACCOUNT", "account is inactive"))
	case errors.Is(err, domain.ErrUserNotFound):
		return asDomain(apperrors.NewUnauthorizedCode("USER_NOT_FOUND", "user no longer exists"))
	case errors.Is(err, domain.ErrEmailTaken):
		return asDomain(apperrors.NewConflict("email already registered", nil))
	case errors.Is(err, domain.ErrResetTokenInvalid):
		return asDomain(apperrors.NewValidationError("reset token expired or used", nil))
	case errors.Is(err, domain.ErrStoreUnavailable):
		return asDomain(apperrors.NewUnavailable("user store unavailable", err))
	case errors.Is(err, auth.ErrExpiredToken):
		return asDomain(apperrors.NewUnauthorizedCode("EXPIRED_TOKEN", "token expired"))
	case errors.Is(err, auth.ErrWrongTokenType):
		return asDomain(apperrors.NewUnauthorizedCode("WRONG_TOKEN_TYPE", "wrong token type"))
	case errors.Is(err, auth.ErrMalformedToken),
		errors.Is(err, auth.ErrInvalidSignature),
		errors.Is(err, auth.ErrIssuerMismatch),
		errors.Is(err, auth.ErrAudienceMismatch),
		errors.Is(err, auth.ErrTokenReplayed):
		return asDomain(apperrors.NewUnauthorizedCode("INVALID_TOKEN", "invalid token"))
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code := "REQUEST_FAILED"
		if fiberErr.Code == http.StatusNotFound {
			code = "NOT_FOUND"
		}
		return apperrors.NewDomainError(code, fiberErr.Message, fiberErr.Code, nil)
	}

	return apperrors.ToDomainError(err)
}

func asDomain(err error) *apperrors.DomainError {
	var domainErr *apperrors.DomainError
	errors.As(err, &domainErr)
	return domainErr
}
