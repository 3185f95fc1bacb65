package handlers

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	"github.com/foxxcyber/hisab-kitab/internal/config"
	"github.com/foxxcyber/hisab-kitab/internal/database"
	"github.com/foxxcyber/hisab-kitab/internal/middleware"
	"github.com/foxxcyber/hisab-kitab/internal/models"
	"github.com/foxxcyber/hisab-kitab/internal/services"
)

// MaxBillImageSize is the largest accepted bill upload
const MaxBillImageSize = 5 * 1024 * 1024

const presignedURLExpiry = time.Hour

// BillScanStore persists archived scans
type BillScanStore interface {
	CreateBillScan(ctx context.Context, req *models.CreateBillScanRequest) (*models.BillScan, error)
	GetBillScan(ctx context.Context, id int) (*models.BillScan, error)
	ListBillScans(ctx context.Context, userID, limit, offset int) ([]*models.BillScan, int, error)
	DeleteBillScan(ctx context.Context, id int) error
}

// OCRRecorder counts OCR attempts
type OCRRecorder interface {
	ObserveOCR(err error)
}

// BillHandler handles bill scanning endpoints
type BillHandler struct {
	cfg        *config.Config
	scans      BillScanStore
	recognizer services.TextRecognizer
	parser     *services.BillParser
	bills      services.BillStore
	recorder   OCRRecorder
	now        func() time.Time
}

// NewBillHandler creates a bill handler. recognizer is nil when Tesseract is
// unavailable and bills is nil when archiving is disabled.
func NewBillHandler(
	cfg *config.Config,
	scans BillScanStore,
	recognizer services.TextRecognizer,
	parser *services.BillParser,
	bills services.BillStore,
	recorder OCRRecorder,
) *BillHandler {
	return &BillHandler{
		cfg:        cfg,
		scans:      scans,
		recognizer: recognizer,
		parser:     parser,
		bills:      bills,
		recorder:   recorder,
		now:        time.Now,
	}
}

var allowedBillTypes = map[string][]string{
	".jpg":  {"image/jpeg", "image/jpg"},
	".jpeg": {"image/jpeg", "image/jpg"},
	".png":  {"image/png"},
}

// isValidBillImage checks both the file extension and the declared MIME type
func isValidBillImage(filename, contentType string) bool {
	mimes, ok := allowedBillTypes[strings.ToLower(filepath.Ext(filename))]
	if !ok {
		return false
	}
	contentType = strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	for _, m := range mimes {
		if contentType == m {
			return true
		}
	}
	return false
}

// ProcessBill runs OCR on an uploaded bill and returns the parsed fields.
// Nothing is recorded as an expense.
func (h *BillHandler) ProcessBill(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	file, err := c.FormFile("image")
	if err != nil {
		return Error(c, fiber.StatusBadRequest, "no file uploaded")
	}

	contentType := file.Header.Get("Content-Type")
	if !isValidBillImage(file.Filename, contentType) {
		return Error(c, fiber.StatusBadRequest, "only JPEG, JPG and PNG images are allowed")
	}

	if file.Size > MaxBillImageSize {
		return Error(c, fiber.StatusBadRequest, "file too large. Maximum size is 5MB")
	}

	if h.recognizer == nil {
		return Error(c, fiber.StatusServiceUnavailable, "OCR is not available")
	}

	src, err := file.Open()
	if err != nil {
		return Error(c, fiber.StatusInternalServerError, "failed to read file")
	}
	defer src.Close()

	imageBytes, err := io.ReadAll(src)
	if err != nil {
		return Error(c, fiber.StatusInternalServerError, "failed to read file")
	}

	result, err := h.recognizer.ProcessImage(imageBytes)
	if h.recorder != nil {
		h.recorder.ObserveOCR(err)
	}
	if err != nil {
		if errors.Is(err, services.ErrEmptyImage) {
			return Error(c, fiber.StatusBadRequest, "uploaded file is empty")
		}
		return internalError(c, "failed to process image", err)
	}

	now := h.now().In(h.cfg.Location())
	parsed := h.parser.ParseAt(result.Text, now)

	resp := &models.BillScanResponse{
		Title:    parsed.Title,
		Amount:   parsed.AmountString(),
		Date:     parsed.DateString(),
		Category: parsed.Category,
		OCRText:  result.Text,
	}

	if h.bills != nil {
		if scan := h.archive(c.Context(), userID, file.Filename, contentType, imageBytes, result.Text, parsed, now); scan != nil {
			resp.ScanID = &scan.ID
		}
	}

	return Success(c, resp)
}

// archive stores the image and its scan record. Failures are logged and the
// OCR result is still returned to the caller.
func (h *BillHandler) archive(ctx context.Context, userID int, filename, contentType string, data []byte, text string, parsed *models.ParsedBill, now time.Time) *models.BillScan {
	key := services.BillObjectKey(userID, filename)
	if err := h.bills.PutBill(ctx, key, data, contentType); err != nil {
		log.WithField("key", key).WithError(err).Warn("Failed to archive bill image")
		return nil
	}

	scan, err := h.scans.CreateBillScan(ctx, &models.CreateBillScanRequest{
		UserID:           userID,
		S3Bucket:         h.bills.Bucket(),
		S3Key:            key,
		OriginalFilename: filename,
		ContentType:      contentType,
		FileSizeBytes:    int64(len(data)),
		OCRText:          text,
		Parsed:           parsed,
		ExpiresAt:        now.AddDate(0, 0, h.cfg.ScanRetentionDays),
	})
	if err != nil {
		log.WithField("key", key).WithError(err).Warn("Failed to record bill scan")
		if delErr := h.bills.Delete(ctx, key); delErr != nil {
			log.Printf("Warning: Failed to clean up S3 object %s after scan record failure: %v", key, delErr)
		}
		return nil
	}
	return scan
}

// ListScans returns a page of the caller's archived scans
func (h *BillHandler) ListScans(c *fiber.Ctx) error {
	limit, offset := pagination(c)

	scans, total, err := h.scans.ListBillScans(c.Context(), middleware.GetUserID(c), limit, offset)
	if err != nil {
		return internalError(c, "failed to list scans", err)
	}
	return SuccessWithMeta(c, scans, total, limit, offset)
}

// ownedScan loads a scan and checks it belongs to the caller
func (h *BillHandler) ownedScan(c *fiber.Ctx) (*models.BillScan, error) {
	id, ok := paramID(c)
	if !ok {
		return nil, Error(c, fiber.StatusBadRequest, "invalid scan id")
	}

	scan, err := h.scans.GetBillScan(c.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrScanNotFound) {
			return nil, Error(c, fiber.StatusNotFound, "scan not found")
		}
		return nil, internalError(c, "failed to get scan", err)
	}

	if scan.UserID != middleware.GetUserID(c) {
		return nil, Error(c, fiber.StatusForbidden, "access denied")
	}
	return scan, nil
}

// GetScan returns one scan with a presigned image URL
func (h *BillHandler) GetScan(c *fiber.Ctx) error {
	scan, err := h.ownedScan(c)
	if scan == nil {
		return err
	}

	if h.bills != nil {
		url, err := h.bills.PresignedURL(c.Context(), scan.S3Key, presignedURLExpiry)
		if err != nil {
			log.WithField("scan_id", scan.ID).WithError(err).Warn("Failed to presign bill image")
		} else {
			scan.ImageURL = &url
		}
	}
	return Success(c, scan)
}

// DeleteScan removes a scan and its archived image
func (h *BillHandler) DeleteScan(c *fiber.Ctx) error {
	scan, err := h.ownedScan(c)
	if scan == nil {
		return err
	}

	if h.bills != nil {
		if err := h.bills.Delete(c.Context(), scan.S3Key); err != nil {
			log.Printf("Warning: Failed to delete S3 object %s for scan %d: %v", scan.S3Key, scan.ID, err)
		}
	}

	if err := h.scans.DeleteBillScan(c.Context(), scan.ID); err != nil {
		if errors.Is(err, database.ErrScanNotFound) {
			return Error(c, fiber.StatusNotFound, "scan not found")
		}
		return internalError(c, "failed to delete scan", err)
	}
	return Success(c, fiber.Map{"deleted": true})
}
