package models

import (
	"strconv"
	"time"
)

// ParsedBill is the best-effort structure extracted from OCR text
type ParsedBill struct {
	Title    string
	Amount   *float64
	Date     time.Time
	Category string
}

// AmountString formats the amount the way the scanner UI expects it:
// shortest decimal representation, or "" when no amount was found.
func (p *ParsedBill) AmountString() string {
	if p.Amount == nil {
		return ""
	}
	return strconv.FormatFloat(*p.Amount, 'f', -1, 64)
}

// DateString formats the bill date as YYYY-MM-DD
func (p *ParsedBill) DateString() string {
	return p.Date.Format("2006-01-02")
}

// BillScanResponse is returned by the OCR endpoint
type BillScanResponse struct {
	Title    string `json:"title"`
	Amount   string `json:"amount"`
	Date     string `json:"date"`
	Category string `json:"category"`
	OCRText  string `json:"ocrText"`
	ScanID   *int   `json:"scan_id,omitempty"`
}

// BillScan is an archived bill image with its OCR output
type BillScan struct {
	ID               int       `json:"id"`
	UserID           int       `json:"user_id"`
	S3Bucket         string    `json:"s3_bucket"`
	S3Key            string    `json:"s3_key"`
	OriginalFilename string    `json:"original_filename"`
	ContentType      string    `json:"content_type"`
	FileSizeBytes    int64     `json:"file_size_bytes"`
	OCRText          string    `json:"ocr_text"`
	Title            string    `json:"title"`
	Amount           *float64  `json:"amount,omitempty"`
	BillDate         time.Time `json:"bill_date"`
	Category         string    `json:"category"`
	ExpiresAt        time.Time `json:"expires_at"`
	CreatedAt        time.Time `json:"created_at"`
	ImageURL         *string   `json:"image_url,omitempty"`
}

// CreateBillScanRequest is used internally to record an archived scan
type CreateBillScanRequest struct {
	UserID           int
	S3Bucket         string
	S3Key            string
	OriginalFilename string
	ContentType      string
	FileSizeBytes    int64
	OCRText          string
	Parsed           *ParsedBill
	ExpiresAt        time.Time
}
