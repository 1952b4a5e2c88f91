package queue

import "errors"

var (
	ErrEmptyQueue = errors.New("queue is empty")
	ErrInvalidAge = errors.New("age must be a positive integer")
)
