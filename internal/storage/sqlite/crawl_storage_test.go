package sqlite

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/novis10813/mops-financial-api/internal/models"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(arbor.NewLogger(), Config{Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestCrawlRepository_RevenueRoundTrip(t *testing.T) {
	repo := NewCrawlRepository(newTestDB(t))
	ctx := context.Background()

	row := models.RevenueRow{StockID: "2330", CompanyName: "台積電", Year: 113, Month: 7, Market: "sii",
		Revenue: decimal.NewFromInt(100000)}
	require.NoError(t, repo.SaveRevenueRows(ctx, []models.RevenueRow{row}))

	got, err := repo.GetRevenueRows(ctx, 113, 7, "sii")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "2330", got[0].StockID)
	require.True(t, got[0].Revenue.Equal(decimal.NewFromInt(100000)))

	row.Revenue = decimal.NewFromInt(200000)
	require.NoError(t, repo.SaveRevenueRows(ctx, []models.RevenueRow{row}))
	got, err = repo.GetRevenueRows(ctx, 113, 7, "sii")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.True(t, got[0].Revenue.Equal(decimal.NewFromInt(200000)))
}

func TestCrawlRepository_DividendRoundTrip_NullableQuarter(t *testing.T) {
	repo := NewCrawlRepository(newTestDB(t))
	ctx := context.Background()

	rows := []models.DividendRow{
		{StockID: "2330", Year: 112, Quarter: nil, CashDividend: decimal.NewFromFloat(11.0)},
	}
	require.NoError(t, repo.SaveDividendRows(ctx, rows))

	got, err := repo.GetDividendRows(ctx, "2330", 112, 112)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Nil(t, got[0].Quarter)
}

func TestCrawlRepository_DisclosureRoundTrip(t *testing.T) {
	repo := NewCrawlRepository(newTestDB(t))
	ctx := context.Background()

	rows := []models.DisclosureRow{
		{StockID: "2330", Year: 113, Month: 7, Kind: "funds_lending", Entity: models.DisclosureEntitySelf,
			HasBalance: true, CurrentMonth: decimal.NewFromInt(100)},
	}
	require.NoError(t, repo.SaveDisclosureRows(ctx, rows))

	got, err := repo.GetDisclosureRows(ctx, 113, 7, "funds_lending")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, models.DisclosureEntitySelf, got[0].Entity)
	require.True(t, got[0].HasBalance)
}

func TestCrawlRepository_PledgeRoundTrip(t *testing.T) {
	repo := NewCrawlRepository(newTestDB(t))
	ctx := context.Background()

	rows := []models.PledgeRow{
		{StockID: "2330", CompanyName: "台積電", Year: 113, Month: 7, Title: "董事", Name: "張三",
			PledgedShares: decimal.NewFromInt(200000)},
	}
	require.NoError(t, repo.SavePledgeRows(ctx, rows))

	got, err := repo.GetPledgeRows(ctx, 113, 7)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "張三", got[0].Name)
}
