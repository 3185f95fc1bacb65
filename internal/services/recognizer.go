package services

import "errors"

var ErrEmptyImage = errors.New("image is empty")

// OCRResult contains the OCR processing result
type OCRResult struct {
	Text string
}

// TextRecognizer extracts text from an image
type TextRecognizer interface {
	ProcessImage(imageBytes []byte) (*OCRResult, error)
}

var _ TextRecognizer = (*OCRService)(nil)
