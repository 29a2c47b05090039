package service

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justice-digital/activities-api/internal/models"
	appErrors "github.com/justice-digital/activities-api/pkg/errors"
	"github.com/justice-digital/activities-api/pkg/export"
	"github.com/justice-digital/activities-api/pkg/storage"
)

type stubSummaryProvider struct {
	summary *models.DailyAttendanceSummary
}

func (s *stubSummaryProvider) Daily(_ context.Context, prisonCode string, date time.Time) (*models.DailyAttendanceSummary, bool, error) {
	out := *s.summary
	out.PrisonCode = prisonCode
	out.SummaryDate = date
	return &out, false, nil
}

func newExportFixture(t *testing.T) *ExportService {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	summary := &models.DailyAttendanceSummary{}
	summary.TotalAttended.Add(models.TimeSlotAM, 3)
	summary.TotalAbsences.Add(models.TimeSlotPM, 1)

	svc := NewExportService(
		&stubSummaryProvider{summary: summary},
		export.NewCSVExporter(),
		export.NewPDFExporter(),
		store,
		storage.NewSignedURLSigner("test-secret", time.Hour),
		ExportQueueConfig{Workers: 1},
		nil,
	)
	ctx, cancel := context.WithCancel(context.Background())
	svc.Start(ctx)
	t.Cleanup(func() {
		cancel()
		svc.Stop()
	})
	return svc
}

func waitForExport(t *testing.T, svc *ExportService, id string) *ExportRecord {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		record, err := svc.Status(id)
		require.NoError(t, err)
		if record.Status != ExportStatusPending {
			return record
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("export did not finish in time")
	return nil
}

func TestExportCSVEndToEnd(t *testing.T) {
	svc := newExportFixture(t)

	record, err := svc.Request(context.Background(), ExportRequest{
		PrisonCode: "MDI",
		Date:       time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		Format:     ExportFormatCSV,
	})
	require.NoError(t, err)
	assert.Equal(t, ExportStatusPending, record.Status)

	done := waitForExport(t, svc, record.ID)
	require.Equal(t, ExportStatusCompleted, done.Status)
	assert.Equal(t, "mdi/daily-summary-2024-03-04.csv", done.Filename)
	require.NotEmpty(t, done.Token)

	file, relPath, err := svc.Open(done.Token)
	require.NoError(t, err)
	defer file.Close()
	assert.Equal(t, done.Filename, relPath)

	content, err := io.ReadAll(file)
	require.NoError(t, err)
	text := string(content)
	assert.True(t, strings.HasPrefix(text, "Measure,DAY,AM,PM,ED\n"))
	assert.Contains(t, text, "totalAttended,3,3,0,0")
	assert.Contains(t, text, "totalAbsences,1,0,1,0")

	lines := strings.Split(strings.TrimSpace(text), "\n")
	assert.Len(t, lines, 1+len(models.SummaryBucketOrder))
}

func TestExportPDFEndToEnd(t *testing.T) {
	svc := newExportFixture(t)

	record, err := svc.Request(context.Background(), ExportRequest{
		PrisonCode: "MDI",
		Date:       time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		Format:     ExportFormatPDF,
	})
	require.NoError(t, err)

	done := waitForExport(t, svc, record.ID)
	require.Equal(t, ExportStatusCompleted, done.Status)
	assert.True(t, strings.HasSuffix(done.Filename, ".pdf"))
}

func TestExportRequestValidation(t *testing.T) {
	svc := newExportFixture(t)

	_, err := svc.Request(context.Background(), ExportRequest{Date: time.Now(), Format: ExportFormatCSV})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Request(context.Background(), ExportRequest{PrisonCode: "MDI", Format: ExportFormatCSV})
	require.Error(t, err)

	_, err = svc.Request(context.Background(), ExportRequest{PrisonCode: "MDI", Date: time.Now(), Format: "xlsx"})
	require.Error(t, err)
}

func TestExportStatusUnknownID(t *testing.T) {
	svc := newExportFixture(t)

	_, err := svc.Status("missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestExportOpenRejectsBadToken(t *testing.T) {
	svc := newExportFixture(t)

	_, _, err := svc.Open("bogus")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}
