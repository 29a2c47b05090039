package service

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/justice-digital/activities-api/internal/models"
	appErrors "github.com/justice-digital/activities-api/pkg/errors"
	"github.com/justice-digital/activities-api/pkg/export"
	"github.com/justice-digital/activities-api/pkg/jobs"
)

// ExportFormat identifies a supported render target.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// Valid reports whether the format is supported.
func (f ExportFormat) Valid() bool {
	return f == ExportFormatCSV || f == ExportFormatPDF
}

// ExportStatus tracks the lifecycle of an export job.
type ExportStatus string

const (
	ExportStatusPending   ExportStatus = "PENDING"
	ExportStatusCompleted ExportStatus = "COMPLETED"
	ExportStatusFailed    ExportStatus = "FAILED"
)

// ExportRequest asks for a daily summary rendered to a file.
type ExportRequest struct {
	PrisonCode string       `json:"prisonCode" validate:"required"`
	Date       time.Time    `json:"date" validate:"required"`
	Format     ExportFormat `json:"format" validate:"required"`
}

// ExportRecord describes one requested export and, once complete, its
// signed download token.
type ExportRecord struct {
	ID          string       `json:"id"`
	PrisonCode  string       `json:"prisonCode"`
	Date        time.Time    `json:"date"`
	Format      ExportFormat `json:"format"`
	Status      ExportStatus `json:"status"`
	Filename    string       `json:"filename,omitempty"`
	Token       string       `json:"token,omitempty"`
	ExpiresAt   *time.Time   `json:"expiresAt,omitempty"`
	RequestedAt time.Time    `json:"requestedAt"`
	CompletedAt *time.Time   `json:"completedAt,omitempty"`
	Error       string       `json:"error,omitempty"`
}

type csvRenderer interface {
	Render(table export.Table) ([]byte, error)
}

type pdfRenderer interface {
	Render(table export.Table, title string) ([]byte, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type downloadSigner interface {
	Generate(exportID, relPath string) (string, time.Time, error)
	Parse(token string, allowExpired bool) (string, string, time.Time, error)
}

type summaryProvider interface {
	Daily(ctx context.Context, prisonCode string, date time.Time) (*models.DailyAttendanceSummary, bool, error)
}

// ExportService renders daily attendance summaries to CSV or PDF through a
// background worker queue. Files land in storage and are served back via
// signed download tokens.
type ExportService struct {
	summaries summaryProvider
	csv       csvRenderer
	pdf       pdfRenderer
	storage   fileStorage
	signer    downloadSigner
	queue     *jobs.Queue
	logger    *zap.Logger
	now       func() time.Time

	mu      sync.RWMutex
	records map[string]*ExportRecord
}

// ExportQueueConfig tunes the background worker pool.
type ExportQueueConfig struct {
	Workers    int
	MaxRetries int
	RetryDelay time.Duration
}

// NewExportService constructs the export pipeline.
func NewExportService(summaries summaryProvider, csv csvRenderer, pdf pdfRenderer, store fileStorage, signer downloadSigner, cfg ExportQueueConfig, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &ExportService{
		summaries: summaries,
		csv:       csv,
		pdf:       pdf,
		storage:   store,
		signer:    signer,
		logger:    logger,
		now:       time.Now,
		records:   make(map[string]*ExportRecord),
	}
	s.queue = jobs.NewQueue("summary-exports", s.process, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
	})
	return s
}

// Start launches the export workers.
func (s *ExportService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the export workers.
func (s *ExportService) Stop() {
	s.queue.Stop()
}

// Request enqueues an export and returns its pending record.
func (s *ExportService) Request(ctx context.Context, req ExportRequest) (*ExportRecord, error) {
	if req.PrisonCode == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "prison code required")
	}
	if req.Date.IsZero() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date required")
	}
	if !req.Format.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", req.Format))
	}

	record := &ExportRecord{
		ID:          uuid.NewString(),
		PrisonCode:  req.PrisonCode,
		Date:        req.Date,
		Format:      req.Format,
		Status:      ExportStatusPending,
		RequestedAt: s.now().UTC(),
	}
	s.mu.Lock()
	s.records[record.ID] = record
	s.mu.Unlock()

	err := s.queue.Enqueue(jobs.Job{ID: record.ID, Kind: "daily-summary", Payload: req})
	if err != nil {
		s.fail(record.ID, err)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue export")
	}
	return s.snapshot(record.ID), nil
}

// Status returns the current state of an export.
func (s *ExportService) Status(id string) (*ExportRecord, error) {
	record := s.snapshot(id)
	if record == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("export %s not found", id))
	}
	return record, nil
}

// Open validates a download token and returns the stored file.
func (s *ExportService) Open(token string) (*os.File, string, error) {
	_, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrForbidden.Code, appErrors.ErrForbidden.Status, "invalid download token")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "export file unavailable")
	}
	return file, relPath, nil
}

// Cleanup removes stored exports older than the TTL.
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	return s.storage.CleanupOlderThan(ttl)
}

func (s *ExportService) process(ctx context.Context, job jobs.Job) error {
	req, ok := job.Payload.(ExportRequest)
	if !ok {
		s.fail(job.ID, fmt.Errorf("unexpected payload type %T", job.Payload))
		return nil
	}

	summary, _, err := s.summaries.Daily(ctx, req.PrisonCode, req.Date)
	if err != nil {
		if job.Attempt >= 1 {
			s.fail(job.ID, err)
			return nil
		}
		return err
	}

	table := buildSummaryTable(summary)
	title := fmt.Sprintf("Daily attendance summary %s %s", req.PrisonCode, req.Date.Format("2006-01-02"))

	var data []byte
	switch req.Format {
	case ExportFormatCSV:
		data, err = s.csv.Render(table)
	case ExportFormatPDF:
		data, err = s.pdf.Render(table, title)
	default:
		err = fmt.Errorf("unsupported format %q", req.Format)
	}
	if err != nil {
		s.fail(job.ID, err)
		return nil
	}

	filename := buildExportFilename(req.PrisonCode, req.Date, req.Format)
	if _, err := s.storage.Save(filename, data); err != nil {
		s.fail(job.ID, err)
		return nil
	}

	token, expiresAt, err := s.signer.Generate(job.ID, filename)
	if err != nil {
		s.fail(job.ID, err)
		return nil
	}

	completedAt := s.now().UTC()
	s.mu.Lock()
	if record, found := s.records[job.ID]; found {
		record.Status = ExportStatusCompleted
		record.Filename = filename
		record.Token = token
		record.ExpiresAt = &expiresAt
		record.CompletedAt = &completedAt
		record.Error = ""
	}
	s.mu.Unlock()

	s.logger.Info("export completed",
		zap.String("export", job.ID),
		zap.String("prison", req.PrisonCode),
		zap.String("format", string(req.Format)))
	return nil
}

func (s *ExportService) fail(id string, err error) {
	s.mu.Lock()
	if record, found := s.records[id]; found {
		record.Status = ExportStatusFailed
		record.Error = err.Error()
	}
	s.mu.Unlock()
	s.logger.Warn("export failed", zap.String("export", id), zap.Error(err))
}

func (s *ExportService) snapshot(id string) *ExportRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, found := s.records[id]
	if !found {
		return nil
	}
	copied := *record
	return &copied
}

// buildSummaryTable flattens the bucket counters into export rows, one per
// counter in presentation order.
func buildSummaryTable(summary *models.DailyAttendanceSummary) export.Table {
	buckets := summary.Buckets()
	table := export.Table{
		Columns: []string{"Measure", "DAY", "AM", "PM", "ED"},
		Rows:    make([][]string, 0, len(models.SummaryBucketOrder)),
	}
	for _, name := range models.SummaryBucketOrder {
		counts := buckets[name]
		table.Rows = append(table.Rows, []string{
			name,
			strconv.Itoa(counts.Day),
			strconv.Itoa(counts.AM),
			strconv.Itoa(counts.PM),
			strconv.Itoa(counts.ED),
		})
	}
	return table
}

func buildExportFilename(prisonCode string, date time.Time, format ExportFormat) string {
	prison := sanitizeFilename(strings.ToLower(prisonCode))
	return fmt.Sprintf("%s/daily-summary-%s.%s", prison, date.Format("2006-01-02"), format)
}

func sanitizeFilename(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	if b.Len() == 0 {
		return "export"
	}
	return b.String()
}
