package processor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"compsengine/server/config"
	"compsengine/server/internal/database"
	"compsengine/server/internal/models"
	"compsengine/server/internal/queue"
)

// BatchProcessor drains the ingest queue and writes each batch inside a
// transaction with retry. The comps engine itself never writes; this is the
// only write path in the service.
type BatchProcessor struct {
	db        *gorm.DB
	logger    *logrus.Logger
	config    *config.Config
	queue     *queue.IngestQueue
	work      chan *models.IngestBatch
	waitGroup sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewBatchProcessor creates a new batch processor instance
func NewBatchProcessor(db *gorm.DB, queue *queue.IngestQueue, config *config.Config, logger *logrus.Logger) *BatchProcessor {
	ctx, cancel := context.WithCancel(context.Background())
	return &BatchProcessor{
		db:     db,
		queue:  queue,
		config: config,
		logger: logger,
		work:   make(chan *models.IngestBatch, config.BatchProcessing.QueueSize),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start subscribes to the queue once and begins processing batches
func (p *BatchProcessor) Start() {
	p.queue.Subscribe(func(batch *models.IngestBatch) error {
		select {
		case p.work <- batch:
			return nil
		case <-p.ctx.Done():
			return p.ctx.Err()
		}
	})

	for i := 0; i < p.config.BatchProcessing.ProcessorCount; i++ {
		p.waitGroup.Add(1)
		go p.processLoop()
	}
}

// Stop gracefully shuts down the processor
func (p *BatchProcessor) Stop() {
	p.cancel()
	p.waitGroup.Wait()
}

// processLoop handles the continuous processing of batches
func (p *BatchProcessor) processLoop() {
	defer p.waitGroup.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case batch := <-p.work:
			if err := p.processBatch(batch); err != nil {
				p.logger.WithError(err).Error("Giving up on ingest batch")
			}
		}
	}
}

// processBatch handles a single ingest batch with transaction and retry logic
func (p *BatchProcessor) processBatch(batch *models.IngestBatch) error {
	var err error
	for attempt := 0; attempt <= p.config.BatchProcessing.MaxRetries; attempt++ {
		if attempt > 0 {
			p.logger.Infof("Retrying batch processing, attempt %d of %d", attempt, p.config.BatchProcessing.MaxRetries)
			time.Sleep(time.Duration(p.config.BatchProcessing.RetryDelay) * time.Second)
		}

		err = p.db.Transaction(func(tx *gorm.DB) error {
			if batch.Properties != nil {
				if err := database.UpsertProperties(tx, batch.Properties); err != nil {
					return fmt.Errorf("failed to upsert properties batch: %w", err)
				}
			}
			if batch.Research != nil {
				if err := database.UpsertResearch(tx, batch.Research); err != nil {
					return fmt.Errorf("failed to upsert research batch: %w", err)
				}
			}
			return nil
		})

		if err == nil {
			p.logger.WithFields(logrus.Fields{
				"properties": len(batch.Properties),
				"research":   batch.Research != nil,
			}).Info("Successfully processed ingest batch")
			return nil
		}

		p.logger.Errorf("Batch processing failed: %v", err)
	}

	return fmt.Errorf("failed to process batch after %d attempts: %w", p.config.BatchProcessing.MaxRetries, err)
}
