package service

import "errors"

var (
	ErrAlreadyRunning = errors.New("already in progress")
	ErrJobFinished    = errors.New("job already finished")
	ErrBlankURL       = errors.New("url is blank")
	ErrInvalidURL     = errors.New("invalid url")
	ErrNoFormats      = errors.New("no formats listed")
)
