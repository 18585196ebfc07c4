package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/statelink/statelink-backend/internal/app/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubBusinessService struct {
	service.BusinessService
	days     int
	now      time.Time
	affected int64
	err      error
}

func (s *stubBusinessService) RefreshNewFlags(days int, now time.Time) (int64, error) {
	s.days = days
	s.now = now
	return s.affected, s.err
}

type stubExportService struct {
	from, to time.Time
	err      error
}

func (s *stubExportService) ExportPaidOrders(_ context.Context, from, to time.Time) (*service.ExportResult, error) {
	s.from = from
	s.to = to
	if s.err != nil {
		return nil, s.err
	}
	return &service.ExportResult{Key: "exports/2024/06/paid-orders-x.xlsx", Rows: 3, From: from, To: to}, nil
}

var fixedNow = time.Date(2024, 6, 3, 3, 30, 0, 0, time.UTC)

func newTestScheduler(businesses *stubBusinessService, exports service.ExportService) *BusinessScheduler {
	s := NewBusinessScheduler(businesses, exports, 30)
	s.now = func() time.Time { return fixedNow }
	return s
}

func TestBusinessScheduler_RefreshNewFlags(t *testing.T) {
	businesses := &stubBusinessService{affected: 4}
	s := newTestScheduler(businesses, nil)

	affected, err := s.RefreshNewFlags()
	require.NoError(t, err)
	assert.Equal(t, int64(4), affected)
	assert.Equal(t, 30, businesses.days)
	assert.Equal(t, fixedNow, businesses.now)
}

func TestBusinessScheduler_RefreshNewFlags_Error(t *testing.T) {
	businesses := &stubBusinessService{err: errors.New("database is locked")}
	s := newTestScheduler(businesses, nil)

	_, err := s.RefreshNewFlags()
	assert.Error(t, err)
}

func TestBusinessScheduler_ExportPreviousDay(t *testing.T) {
	exports := &stubExportService{}
	s := newTestScheduler(&stubBusinessService{}, exports)

	result, err := s.ExportPreviousDay(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, result.Rows)
	assert.Equal(t, time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC), exports.from)
	assert.Equal(t, time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC), exports.to)
}

func TestBusinessScheduler_Start(t *testing.T) {
	tests := []struct {
		name       string
		flagSpec   string
		exportSpec string
		exports    service.ExportService
		wantErr    bool
	}{
		{"valid specs", "0 3 * * *", "30 3 * * *", &stubExportService{}, false},
		{"export disabled ignores its spec", "0 3 * * *", "not a spec", nil, false},
		{"invalid flag spec", "every day", "30 3 * * *", &stubExportService{}, true},
		{"invalid export spec", "0 3 * * *", "61 * * * *", &stubExportService{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestScheduler(&stubBusinessService{}, tt.exports)
			err := s.Start(tt.flagSpec, tt.exportSpec)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			s.Stop()
		})
	}
}
