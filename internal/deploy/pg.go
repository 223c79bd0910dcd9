package deploy

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type PGConfig struct {
	DSN       string `json:"dsn" env:"TXPIPELINE_PG_DSN"`
	BatchSize int    `json:"batch_size" env:"TXPIPELINE_PG_BATCH_SIZE"`
}

type TransactionRow struct {
	ID         int64 `gorm:"primaryKey;autoIncrement:false"`
	PageNumber int   `gorm:"index"`
	Country    string
	Status     string
	Amount     float64
}

func (TransactionRow) TableName() string {
	return "transactions"
}

type CountrySummaryRow struct {
	Country            string `gorm:"primaryKey"`
	AverageOutstanding float64
	TotalCompleted     float64
	CriticalRate       float64
	ErrorRate          float64
}

func (CountrySummaryRow) TableName() string {
	return "country_summaries"
}

func OpenPostgres(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres dsn is not configured")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("gorm open error: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sqlDB initialization error: %w", err)
	}
	sqlDB.SetMaxOpenConns(4)
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}

func CloseDatabase(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("error closing database connection: %w", err)
	}
	return nil
}

// PGSink replaces the contents of the transactions and country_summaries
// tables with the bundle inside a single database transaction.
type PGSink struct {
	DB        *gorm.DB
	BatchSize int
}

func (PGSink) Name() OutputType {
	return OutputPG
}

func (s PGSink) Write(ctx context.Context, bundle Bundle) (Report, error) {
	batchSize := s.BatchSize
	if batchSize <= 0 {
		batchSize = 1000
	}
	db := s.DB.WithContext(ctx)

	err := db.AutoMigrate(&TransactionRow{}, &CountrySummaryRow{})
	if err != nil {
		return Report{}, fmt.Errorf("migrate: %w", err)
	}

	txRows := make([]TransactionRow, len(bundle.Records))
	for i, r := range bundle.Records {
		txRows[i] = TransactionRow{
			ID:         r.ID,
			PageNumber: r.Page,
			Country:    r.Country,
			Status:     r.Status,
			Amount:     r.Amount,
		}
	}
	summaryRows := make([]CountrySummaryRow, len(bundle.Summary))
	for i, r := range bundle.Summary {
		summaryRows[i] = CountrySummaryRow{
			Country:            r.Country,
			AverageOutstanding: r.AverageOutstanding,
			TotalCompleted:     r.TotalCompleted,
			CriticalRate:       r.CriticalRate,
			ErrorRate:          r.ErrorRate,
		}
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		all := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		if err := all.Delete(&TransactionRow{}).Error; err != nil {
			return err
		}
		if err := all.Delete(&CountrySummaryRow{}).Error; err != nil {
			return err
		}
		if len(txRows) > 0 {
			if err := tx.CreateInBatches(&txRows, batchSize).Error; err != nil {
				return err
			}
		}
		if len(summaryRows) > 0 {
			if err := tx.Create(&summaryRows).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Report{}, fmt.Errorf("write rows: %w", err)
	}

	return Report{
		Location: fmt.Sprintf("%s, %s", TransactionRow{}.TableName(), CountrySummaryRow{}.TableName()),
		Pages:    len(bundle.Pages),
		Rows:     len(txRows),
		Files:    0,
	}, nil
}
