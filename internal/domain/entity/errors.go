package entity

import "errors"

var (
	ErrInvalidCamera           = errors.New("invalid camera")
	ErrInvalidSettings         = errors.New("invalid settings")
	ErrDetectorUnavailable     = errors.New("detector is not available")
	ErrCameraNotReady          = errors.New("camera did not become ready")
	ErrControllerNotConfigured = errors.New("printer controller url is not configured")
)
