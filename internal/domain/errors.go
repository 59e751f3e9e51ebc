package domain

import "errors"

var (
	ErrMissingTaskID     = errors.New("missing task id")
	ErrMissingEmployeeID = errors.New("missing employee id")
	ErrNoTaskLoaded      = errors.New("no task loaded")
	ErrLoadInFlight      = errors.New("load already in flight")
	ErrPaymentInFlight   = errors.New("payment already in flight")
	ErrAlreadyPaid       = errors.New("user already paid")
	ErrUserNotFound      = errors.New("user not found")
	ErrNotLoggedIn       = errors.New("not logged in")
	ErrInvalidAmount     = errors.New("invalid amount")
)
