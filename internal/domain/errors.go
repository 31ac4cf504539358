package domain

import "errors"

var (
	ErrNotFound                = errors.New("resource not found")
	ErrStorageCorrupt          = errors.New("stored invoice data is corrupt")
	ErrCaptureFailed           = errors.New("bitmap capture failed")
	ErrPrintSurfaceUnavailable = errors.New("print surface unavailable")
	ErrInvalidPaymentDate      = errors.New("invalid payment date")
	ErrInvalidAmount           = errors.New("amount must be a finite number")
	ErrInvalidSnapshot         = errors.New("invalid document snapshot")
	ErrLockNotObtained         = errors.New("invoice store is busy")
	ErrExportJobNotFound       = errors.New("export job not found")
	ErrExportNotReady          = errors.New("export job has not completed")
)
