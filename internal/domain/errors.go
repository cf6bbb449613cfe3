package domain

import "errors"

// Account and store failures returned by the service layer. Unknown email
// and wrong password both map to ErrInvalidCredentials so responses cannot
// be used to enumerate accounts. ErrInactiveAccount is deliberately
// distinguishable: it is not a secret-guessing signal.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactiveAccount    = errors.New("account is inactive")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrResetTokenInvalid  = errors.New("reset token expired or used")
	ErrStoreUnavailable   = errors.New("user store unavailable")
)
