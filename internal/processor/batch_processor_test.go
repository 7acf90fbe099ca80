package processor

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"compsengine/server/config"
	"compsengine/server/internal/database"
	"compsengine/server/internal/models"
	"compsengine/server/internal/queue"
)

func testSetup(t *testing.T) (*gorm.DB, *database.Database) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "processor_test.db")

	db, err := database.NewDatabase(path)
	assert.NoError(t, err)
	assert.NoError(t, db.RunMigrations())
	t.Cleanup(func() { db.Close() })

	gormDB, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	assert.NoError(t, err)

	return gormDB, db
}

func testProcessorConfig() *config.Config {
	cfg := &config.Config{}
	cfg.BatchProcessing.QueueSize = 10
	cfg.BatchProcessing.ProcessorCount = 2
	cfg.BatchProcessing.MaxRetries = 1
	cfg.BatchProcessing.RetryDelay = 0
	return cfg
}

func TestNewBatchProcessor(t *testing.T) {
	gormDB, _ := testSetup(t)
	logger := logrus.New()
	cfg := testProcessorConfig()
	q := queue.NewIngestQueue(10, logger)

	p := NewBatchProcessor(gormDB, q, cfg, logger)

	assert.NotNil(t, p)
	assert.Equal(t, gormDB, p.db)
	assert.Equal(t, q, p.queue)
	assert.Equal(t, cfg, p.config)
	assert.Equal(t, logger, p.logger)
}

func TestBatchProcessor_ProcessPropertiesBatch(t *testing.T) {
	gormDB, _ := testSetup(t)
	logger := logrus.New()
	q := queue.NewIngestQueue(10, logger)
	p := NewBatchProcessor(gormDB, q, testProcessorConfig(), logger)

	price := 450000.0
	batch := &models.IngestBatch{
		Properties: []*models.Property{
			{Address: "12 Elm St", City: "Austin", State: "TX", ListPrice: &price, Status: "active"},
			{Address: "34 Oak Ave", City: "Austin", State: "TX", Status: "active"},
		},
	}

	assert.NoError(t, p.processBatch(batch))

	var count int64
	assert.NoError(t, gormDB.Model(&models.Property{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)

	// Re-upserting the same addresses must not duplicate rows
	newPrice := 475000.0
	batch.Properties[0].ID = 0
	batch.Properties[0].ListPrice = &newPrice
	batch.Properties[1].ID = 0
	assert.NoError(t, p.processBatch(batch))

	assert.NoError(t, gormDB.Model(&models.Property{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)

	var updated models.Property
	assert.NoError(t, gormDB.Where("address = ?", "12 Elm St").First(&updated).Error)
	assert.InDelta(t, 475000, *updated.ListPrice, 1e-6)
}

func TestBatchProcessor_ProcessResearchBatch(t *testing.T) {
	gormDB, db := testSetup(t)
	logger := logrus.New()
	q := queue.NewIngestQueue(10, logger)
	p := NewBatchProcessor(gormDB, q, testProcessorConfig(), logger)

	date := "2024-05-10"
	batch := &models.IngestBatch{
		Research: &models.ResearchBatch{
			Record: models.ResearchRecord{Address: "12 Elm St", City: "Austin", State: "TX"},
			Sales: []models.ResearchCompSale{
				{Address: "40 Birch Way", SalePrice: 820000, SaleDate: &date, SimilarityScore: 0.878},
				{Address: "8 Cedar Ct", SalePrice: 795000, SimilarityScore: 0.81},
			},
			Rentals: []models.ResearchCompRental{
				{Address: "3 Pine Loop", MonthlyRent: 2400, SimilarityScore: 0.8},
			},
		},
	}

	assert.NoError(t, p.processBatch(batch))

	record, err := db.FindResearchByAddress("12 Elm St")
	assert.NoError(t, err)
	if assert.NotNil(t, record) {
		sales, err := db.GetResearchCompSales(record.ID, 20)
		assert.NoError(t, err)
		assert.Len(t, sales, 2)
		assert.Equal(t, "40 Birch Way", sales[0].Address)

		rentals, err := db.GetResearchCompRentals(record.ID, 20)
		assert.NoError(t, err)
		assert.Len(t, rentals, 1)
	}

	// A re-run for the same address replaces the rows instead of appending
	rerun := &models.IngestBatch{
		Research: &models.ResearchBatch{
			Record: models.ResearchRecord{Address: "12 ELM ST", City: "Austin", State: "TX"},
			Sales: []models.ResearchCompSale{
				{Address: "1 Fresh Ct", SalePrice: 810000, SimilarityScore: 0.9},
			},
		},
	}
	assert.NoError(t, p.processBatch(rerun))

	record, err = db.FindResearchByAddress("12 Elm St")
	assert.NoError(t, err)
	if assert.NotNil(t, record) {
		sales, err := db.GetResearchCompSales(record.ID, 20)
		assert.NoError(t, err)
		assert.Len(t, sales, 1)
		assert.Equal(t, "1 Fresh Ct", sales[0].Address)

		rentals, err := db.GetResearchCompRentals(record.ID, 20)
		assert.NoError(t, err)
		assert.Empty(t, rentals)
	}
}

func TestBatchProcessor_ProcessesEachBatchOnce(t *testing.T) {
	gormDB, _ := testSetup(t)
	logger := logrus.New()
	q := queue.NewIngestQueue(10, logger)
	p := NewBatchProcessor(gormDB, q, testProcessorConfig(), logger)

	// Count actual insert statements; upsert idempotence would otherwise
	// hide a batch being written once per worker.
	var mu sync.Mutex
	writes := 0
	err := gormDB.Callback().Create().After("gorm:create").Register("count_writes", func(tx *gorm.DB) {
		mu.Lock()
		writes++
		mu.Unlock()
	})
	assert.NoError(t, err)

	p.Start()
	q.Start()

	batch := &models.IngestBatch{
		Properties: []*models.Property{
			{Address: "7 Single Pass Rd", City: "Austin", State: "TX", Status: "active"},
		},
	}
	assert.NoError(t, q.Push(batch))

	time.Sleep(200 * time.Millisecond)

	mu.Lock()
	assert.Equal(t, 1, writes)
	mu.Unlock()

	p.Stop()
	q.Close()
}

func TestBatchProcessor_StartStop(t *testing.T) {
	gormDB, _ := testSetup(t)
	logger := logrus.New()
	q := queue.NewIngestQueue(10, logger)
	p := NewBatchProcessor(gormDB, q, testProcessorConfig(), logger)

	p.Start()
	q.Start()

	batch := &models.IngestBatch{
		Properties: []*models.Property{
			{Address: "1 Async Way", City: "Austin", State: "TX", Status: "active"},
		},
	}
	assert.NoError(t, q.Push(batch))

	// Give time for the queue handler to run
	time.Sleep(200 * time.Millisecond)

	var count int64
	assert.NoError(t, gormDB.Model(&models.Property{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	p.Stop()
	q.Close()
	assert.True(t, q.IsClosed())
}
