package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"efris-bridge/internal/domain/model"
	"efris-bridge/internal/domain/ports"
	"efris-bridge/internal/metrics"
	"efris-bridge/pkg/logger"

	"github.com/google/uuid"
)

// ItemSyncer asks the ERP to start an EFRIS item sync and announces the job.
// A nil publisher skips the announcement.
type ItemSyncer struct {
	queue     ports.ItemSyncQueue
	publisher ports.JobPublisher
	defaults  model.ItemSyncRequest
	log       *logger.Logger
	metrics   *metrics.Metrics
}

func NewItemSyncer(queue ports.ItemSyncQueue, publisher ports.JobPublisher, pageSize, chunkSize int, log *logger.Logger, m *metrics.Metrics) *ItemSyncer {
	return &ItemSyncer{
		queue:     queue,
		publisher: publisher,
		defaults:  model.ItemSyncRequest{PageSize: pageSize, ChunkSize: chunkSize},
		log:       log,
		metrics:   m,
	}
}

func (s *ItemSyncer) Enqueue(ctx context.Context, req model.ItemSyncRequest) (*model.ItemSyncJob, error) {
	req.CompanyName = strings.TrimSpace(req.CompanyName)
	if req.CompanyName == "" {
		return nil, ErrMissingCompany
	}
	if req.PageSize == 0 {
		req.PageSize = s.defaults.PageSize
	}
	if req.ChunkSize == 0 {
		req.ChunkSize = s.defaults.ChunkSize
	}

	status, err := s.queue.EnqueueSyncEfrisItems(ctx, req)
	if err != nil {
		s.log.Error("Failed to enqueue EFRIS item sync", "error", err, "company", req.CompanyName)
		return nil, fmt.Errorf("%w: %v", ErrExternalAPIFailure, err)
	}
	s.metrics.ItemSyncJobsEnqueued.Inc()

	job := &model.ItemSyncJob{
		ID:          uuid.NewString(),
		CompanyName: req.CompanyName,
		PageSize:    req.PageSize,
		ChunkSize:   req.ChunkSize,
		Status:      status,
		RequestedAt: time.Now().UTC(),
	}
	s.log.Info("EFRIS item sync enqueued", "job_id", job.ID, "company", job.CompanyName, "status", status)

	if s.publisher != nil {
		if err := s.publisher.PublishItemSync(ctx, *job); err != nil {
			// the ERP already accepted the job
			s.log.Error("Failed to publish item sync job", "error", err, "job_id", job.ID)
		}
	}
	return job, nil
}
