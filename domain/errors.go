package domain

import "errors"

var (
	ErrNotFound           = errors.New("account not found")
	ErrAlreadyExists      = errors.New("account already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotFriends         = errors.New("users are not friends")
	ErrNoPath             = errors.New("no path between users")
)
