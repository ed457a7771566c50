package service

import "errors"

var (
	ErrItemNotFound       = errors.New("item not found")
	ErrRequestNotFound    = errors.New("request not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrInvalidTransition  = errors.New("request has already been decided")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrSessionNotFound    = errors.New("session not found or expired")
)
