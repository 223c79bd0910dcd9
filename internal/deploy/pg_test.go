package deploy

import (
	"context"
	"path/filepath"
	"testing"
	"txpipeline/lib/testutil"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openSqliteGorm(t testing.TB) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "pg.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		CloseDatabase(db)
	})
	return db
}

func checkPGContents(t testing.TB, db *gorm.DB, bundle Bundle) {
	var txRows []TransactionRow
	require.NoError(t, db.Order("id").Find(&txRows).Error)
	require.Len(t, txRows, len(bundle.Records))
	for i, r := range bundle.Records {
		require.Equal(t, TransactionRow{
			ID:         r.ID,
			PageNumber: r.Page,
			Country:    r.Country,
			Status:     r.Status,
			Amount:     r.Amount,
		}, txRows[i])
	}

	var summaryRows []CountrySummaryRow
	require.NoError(t, db.Order("country").Find(&summaryRows).Error)
	require.Len(t, summaryRows, len(bundle.Summary))
	for i, s := range bundle.Summary {
		require.Equal(t, s.Country, summaryRows[i].Country)
		require.InDelta(t, s.AverageOutstanding, summaryRows[i].AverageOutstanding, 1e-9)
		require.InDelta(t, s.TotalCompleted, summaryRows[i].TotalCompleted, 1e-9)
		require.InDelta(t, s.CriticalRate, summaryRows[i].CriticalRate, 1e-9)
		require.InDelta(t, s.ErrorRate, summaryRows[i].ErrorRate, 1e-9)
	}
}

func TestPGSinkReplacesContents(t *testing.T) {
	db := openSqliteGorm(t)
	ctx := context.Background()
	sink := PGSink{DB: db, BatchSize: 3}

	// a previous deploy with more rows
	bigger := t.TempDir()
	testutil.WriteDataset(t, bigger, testPages[0], testPages[1], "id,country,status,amount\n5,Belgium,pending,1\n")
	first, err := Load(ctx, bigger)
	require.NoError(t, err)
	_, err = Run(ctx, sink, first)
	require.NoError(t, err)
	checkPGContents(t, db, first)

	bundle := loadBundle(t)
	report, err := Run(ctx, sink, bundle)
	require.NoError(t, err)
	require.Equal(t, 4, report.Rows)
	require.Equal(t, 2, report.Pages)
	checkPGContents(t, db, bundle)

	// redeploying the same bundle is idempotent
	_, err = Run(ctx, sink, bundle)
	require.NoError(t, err)
	checkPGContents(t, db, bundle)
}

func TestOpenPostgresRequiresDSN(t *testing.T) {
	_, err := OpenPostgres("")
	require.Error(t, err)

	_, _, err = DefaultRegistry().Open(context.Background(), OutputPG, Config{})
	require.Error(t, err)
}

func TestPGSinkPostgres(t *testing.T) {
	dsn := testutil.StartPostgres(t)
	ctx := context.Background()

	sink, closeSink, err := DefaultRegistry().Open(ctx, OutputPG, Config{PG: PGConfig{DSN: dsn, BatchSize: 2}})
	require.NoError(t, err)
	defer closeSink()

	bundle := loadBundle(t)
	_, err = Run(ctx, sink, bundle)
	require.NoError(t, err)
	checkPGContents(t, sink.(PGSink).DB, bundle)
}
