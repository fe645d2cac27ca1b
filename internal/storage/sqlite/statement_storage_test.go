package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novis10813/mops-financial-api/internal/models"
)

func buildTestStatement() *models.Statement {
	key := models.StockPeriodKey{StockID: "2330", Year: 113, Quarter: 3, ReportType: models.ReportIncomeStatement}
	revenue := decimal.NewFromInt(1000)
	costOfSales := decimal.NewFromInt(-400)
	return &models.Statement{
		Key:        key,
		Currency:   "TWD",
		UnitScale:  1000,
		ReportDate: time.Date(2024, 9, 30, 0, 0, 0, 0, time.UTC),
		Verified:   true,
		Items: []*models.StatementItem{
			{
				Concept: "ifrs-full:ProfitLoss",
				LabelZH: "本期淨利",
				LabelEN: "Profit (loss)",
				Weight:  decimal.NewFromInt(1),
				Depth:   0,
				Children: []*models.StatementItem{
					{Concept: "ifrs-full:Revenue", LabelZH: "營業收入", LabelEN: "Revenue", Value: &revenue, Weight: decimal.NewFromInt(1), Depth: 1},
					{Concept: "ifrs-full:CostOfSales", LabelZH: "營業成本", LabelEN: "Cost of sales", Value: &costOfSales, Weight: decimal.NewFromInt(-1), Depth: 1},
				},
			},
		},
	}
}

func TestStatementRepository_RoundTrip(t *testing.T) {
	repo := NewStatementRepository(newTestDB(t))
	ctx := context.Background()

	stmt := buildTestStatement()
	require.NoError(t, repo.SaveReport(ctx, stmt))

	got, err := repo.GetReport(ctx, stmt.Key)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, stmt.Key, got.Key)
	assert.Equal(t, stmt.Currency, got.Currency)
	assert.Equal(t, stmt.UnitScale, got.UnitScale)
	assert.True(t, stmt.ReportDate.Equal(got.ReportDate))
	assert.False(t, got.Empty)
	assert.True(t, got.Verified)
	assert.False(t, got.FetchedAt.IsZero())

	require.Len(t, got.Items, 1)
	root := got.Items[0]
	assert.Equal(t, "ifrs-full:ProfitLoss", root.Concept)
	require.Len(t, root.Children, 2)
	assert.Equal(t, "ifrs-full:Revenue", root.Children[0].Concept)
	require.NotNil(t, root.Children[0].Value)
	assert.True(t, root.Children[0].Value.Equal(decimal.NewFromInt(1000)))
	assert.True(t, root.Children[0].Weight.Equal(decimal.NewFromInt(1)))

	assert.Equal(t, "ifrs-full:CostOfSales", root.Children[1].Concept)
	require.NotNil(t, root.Children[1].Value)
	assert.True(t, root.Children[1].Value.Equal(decimal.NewFromInt(-400)))
	assert.True(t, root.Children[1].Weight.Equal(decimal.NewFromInt(-1)))
}

func TestStatementRepository_GetReport_AbsentReturnsNilNil(t *testing.T) {
	repo := NewStatementRepository(newTestDB(t))
	key := models.StockPeriodKey{StockID: "1101", Year: 112, Quarter: 1, ReportType: models.ReportBalanceSheet}

	got, err := repo.GetReport(context.Background(), key)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStatementRepository_SaveReport_UpsertOverwritesPriorSave(t *testing.T) {
	repo := NewStatementRepository(newTestDB(t))
	ctx := context.Background()

	stmt := buildTestStatement()
	require.NoError(t, repo.SaveReport(ctx, stmt))

	stmt.Currency = "USD"
	stmt.Items[0].Children = stmt.Items[0].Children[:1]
	require.NoError(t, repo.SaveReport(ctx, stmt))

	got, err := repo.GetReport(ctx, stmt.Key)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "USD", got.Currency)
	require.Len(t, got.Items[0].Children, 1)
}
