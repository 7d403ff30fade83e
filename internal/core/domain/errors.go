package domain

import "errors"

var (
	ErrUnauthenticated = errors.New("connection not authenticated")
	ErrInvalidUserID   = errors.New("invalid user id")
	ErrUserNotFound    = errors.New("user not found")
	ErrRoomNotFound    = errors.New("chat room not found")
	ErrInvalidEvent    = errors.New("invalid event payload")
)
