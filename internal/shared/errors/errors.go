package errors

import "errors"

var (
	ErrMissingBotToken = errors.New("TELEGRAM_BOT_TOKEN environment variable is required")
	ErrUnauthorized    = errors.New("unauthorized user")
	ErrSearchNotFound  = errors.New("search not found")
	ErrEmptyName       = errors.New("search name must not be empty")
	ErrEmptyTags       = errors.New("at least one tag is required")
	ErrNegativePrice   = errors.New("price bounds must be non-negative")
	ErrPriceBounds     = errors.New("minimum price must not exceed maximum price")
	ErrInvalidInterval = errors.New("check interval must be a positive number of minutes")
)
