package auth

import (
	"fmt"
	"net/http"

	"digital.vasic.lessons/pkg/apperr"
)

const ErrCodeEmailExists = "email_exists"

func newErrEmailExists() *apperr.Error {
	return apperr.New(
		ErrCodeEmailExists,
		"Email already exists",
	).SetHTTPStatus(http.StatusConflict)
}

const ErrCodeInvalidEmail = "invalid_email"

func newErrInvalidEmail() *apperr.Error {
	return apperr.New(
		ErrCodeInvalidEmail,
		"Email address is invalid",
	).SetHTTPStatus(http.StatusBadRequest)
}

const ErrCodePasswordTooShort = "password_too_short"

func newErrPasswordTooShort(minLength int) *apperr.Error {
	return apperr.New(
		ErrCodePasswordTooShort,
		fmt.Sprintf("Password must be at least %d characters", minLength),
	).SetHTTPStatus(http.StatusBadRequest)
}

const ErrCodePasswordTooLong = "password_too_long"

func newErrPasswordTooLong(maxLength int) *apperr.Error {
	return apperr.New(
		ErrCodePasswordTooLong,
		fmt.Sprintf("Password must be at most %d characters", maxLength),
	).SetHTTPStatus(http.StatusBadRequest)
}

const ErrCodeNameTooLong = "name_too_long"

func newErrNameTooLong(maxLength int) *apperr.Error {
	return apperr.New(
		ErrCodeNameTooLong,
		fmt.Sprintf("Name must be at most %d characters", maxLength),
	).SetHTTPStatus(http.StatusBadRequest)
}

const ErrCodeInvalidWallet = "invalid_wallet_address"

func newErrInvalidWallet() *apperr.Error {
	return apperr.New(
		ErrCodeInvalidWallet,
		"Wallet address is invalid",
	).SetHTTPStatus(http.StatusBadRequest)
}

const ErrCodeInvalidCredentials = "invalid_credentials"

func newErrInvalidCredentials() *apperr.Error {
	return apperr.New(
		ErrCodeInvalidCredentials,
		"Invalid email or password",
	).SetHTTPStatus(http.StatusUnauthorized)
}

const ErrCodeInvalidToken = "invalid_token"

func newErrInvalidToken() *apperr.Error {
	return apperr.New(
		ErrCodeInvalidToken,
		"Session is invalid or has expired",
	).SetHTTPStatus(http.StatusUnauthorized)
}
