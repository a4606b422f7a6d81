package service

import "errors"

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrRoomNotFound         = errors.New("room not found")
	ErrItemNotFound         = errors.New("item not found")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrRegistrationFailed   = errors.New("registration failed: email already exists")
	ErrInvalidInput         = errors.New("invalid input")
	ErrInvalidSchedule      = errors.New("end_at must not be earlier than start_at")
	ErrAlreadyLiked         = errors.New("item already liked by this user")
	ErrLikeNotFound         = errors.New("like not found")
	ErrUploadFailed         = errors.New("upload failed")
	ErrInternalServer       = errors.New("internal server error")
)
