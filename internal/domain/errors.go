package domain

import "errors"

var (
	ErrNoDocuments      = errors.New("no readable source documents")
	ErrRetriesExhausted = errors.New("generation retries exhausted")
	ErrEmptyResponse    = errors.New("empty response from generation service")
	ErrRunNotFound      = errors.New("run not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrBucketNotFound   = errors.New("artifact bucket not found")
)
