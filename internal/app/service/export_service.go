package service

import (
	"context"
	"errors"
	"time"

	"github.com/statelink/statelink-backend/internal/app/repository"
	"github.com/statelink/statelink-backend/internal/storage"
	"github.com/statelink/statelink-backend/pkg/logger"
)

var ErrInvalidExportRange = errors.New("export range is empty or inverted")

type ExportResult struct {
	Key         string    `json:"key"`
	DownloadURL string    `json:"download_url"`
	Rows        int       `json:"rows"`
	From        time.Time `json:"from"`
	To          time.Time `json:"to"`
}

type ExportService interface {
	// ExportPaidOrders writes requests paid in [from, to) to an XLSX object.
	ExportPaidOrders(ctx context.Context, from, to time.Time) (*ExportResult, error)
}

type exportService struct {
	requestRepo repository.ComplianceRequestRepository
	objects     storage.ObjectStore
	prefix      string
}

func NewExportService(requestRepo repository.ComplianceRequestRepository, objects storage.ObjectStore, prefix string) ExportService {
	return &exportService{
		requestRepo: requestRepo,
		objects:     objects,
		prefix:      prefix,
	}
}

func (s *exportService) ExportPaidOrders(ctx context.Context, from, to time.Time) (*ExportResult, error) {
	if !from.Before(to) {
		return nil, ErrInvalidExportRange
	}

	logger.Info("Exporting paid orders", map[string]interface{}{
		"from": from,
		"to":   to,
	})

	requests, err := s.requestRepo.FindPaidBetween(from, to)
	if err != nil {
		return nil, err
	}

	body, err := BuildPaidOrdersWorkbook(requests)
	if err != nil {
		logger.Error("Failed to build paid order workbook", err, map[string]interface{}{
			"rows": len(requests),
		})
		return nil, err
	}

	key := storage.ExportKey(s.prefix, "paid-orders", from)
	if err := s.objects.Upload(ctx, key, storage.XLSXContentType, body); err != nil {
		logger.Error("Failed to upload paid order export", err, map[string]interface{}{
			"key": key,
		})
		return nil, err
	}

	url, err := s.objects.DownloadURL(ctx, key)
	if err != nil {
		return nil, err
	}

	logger.Info("Paid orders exported", map[string]interface{}{
		"key":  key,
		"rows": len(requests),
	})
	return &ExportResult{
		Key:         key,
		DownloadURL: url,
		Rows:        len(requests),
		From:        from,
		To:          to,
	}, nil
}
