package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/justice-digital/activities-api/internal/models"
	"github.com/justice-digital/activities-api/internal/service"
)

type fakeSummaryAttendance struct {
	records    []models.AttendanceRecord
	lastPrison string
}

func (f *fakeSummaryAttendance) ListForDate(_ context.Context, prisonCode string, _ time.Time) ([]models.AttendanceRecord, error) {
	f.lastPrison = prisonCode
	return f.records, nil
}

type fakeSummarySessions struct{}

func (f *fakeSummarySessions) ListCancelledSessions(context.Context, string, time.Time) ([]models.SessionInstance, error) {
	return nil, nil
}

func newSummaryHandlerFixture() (*SummaryHandler, *fakeSummaryAttendance) {
	attendance := &fakeSummaryAttendance{}
	svc := service.NewSummaryService(attendance, &fakeSummarySessions{}, nil, nil, 0, nil)
	return NewSummaryHandler(svc, nil), attendance
}

func TestSummaryHandlerDailyInvalidDate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newSummaryHandlerFixture()

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/summary/daily?prisonCode=MDI&date=99-99-9999", nil)

	handler.Daily(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSummaryHandlerDailyMissingPrison(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newSummaryHandlerFixture()

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/summary/daily?date=2024-03-04", nil)

	handler.Daily(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSummaryHandlerDailySuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, attendance := newSummaryHandlerFixture()

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/summary/daily?prisonCode=MDI&date=2024-03-04", nil)

	handler.Daily(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "MDI", attendance.lastPrison)

	var envelope responseEnvelope
	_ = json.Unmarshal(rec.Body.Bytes(), &envelope)
	assert.Equal(t, "MDI", envelope.Data["prisonCode"])
	assert.Equal(t, false, envelope.Meta["cached"])
}

func TestSummaryHandlerExportsDisabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newSummaryHandlerFixture()

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/summary/exports/download?token=abc", nil)

	handler.Download(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

type responseEnvelope struct {
	Data map[string]interface{} `json:"data"`
	Meta map[string]interface{} `json:"meta"`
}
