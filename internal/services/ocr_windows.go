//go:build windows

package services

import "errors"

var errOCRUnavailable = errors.New("OCR is not available on Windows builds; run the server in the Docker image")

// OCRService is a stand-in that always fails on Windows
type OCRService struct{}

// NewOCRService reports that OCR is unavailable
func NewOCRService() (*OCRService, error) {
	return nil, errOCRUnavailable
}

// ProcessImage always fails on Windows
func (s *OCRService) ProcessImage(imageBytes []byte) (*OCRResult, error) {
	return nil, errOCRUnavailable
}

// Close is a no-op
func (s *OCRService) Close() error {
	return nil
}
