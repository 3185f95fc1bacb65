//go:build !windows

package services

import (
	"fmt"
	"strings"
	"sync"

	"github.com/otiai10/gosseract/v2"
)

// billCharWhitelist limits recognition to characters that appear on bills
const billCharWhitelist = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz₹/-:. "

// OCRService handles optical character recognition. The underlying
// Tesseract client is not safe for concurrent use, so calls are serialized.
type OCRService struct {
	mu     sync.Mutex
	client *gosseract.Client
}

// NewOCRService creates a new OCR service
func NewOCRService() (*OCRService, error) {
	client := gosseract.NewClient()

	if err := client.SetLanguage("eng"); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set OCR language: %w", err)
	}

	// PSM 6: a single uniform block of text
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set page segmentation mode: %w", err)
	}

	if err := client.SetWhitelist(billCharWhitelist); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set character whitelist: %w", err)
	}

	return &OCRService{client: client}, nil
}

// ProcessImage recognizes the text in an encoded JPEG or PNG image
func (s *OCRService) ProcessImage(imageBytes []byte) (*OCRResult, error) {
	if len(imageBytes) == 0 {
		return nil, ErrEmptyImage
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.client.SetImageFromBytes(imageBytes); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	text, err := s.client.Text()
	if err != nil {
		return nil, fmt.Errorf("failed to extract text: %w", err)
	}

	return &OCRResult{Text: strings.TrimSpace(text)}, nil
}

// Close releases OCR resources
func (s *OCRService) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}
