package statement

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novis10813/mops-financial-api/internal/models"
)

func duration(start, end string) models.Period {
	s, _ := time.Parse("2006-01-02", start)
	e, _ := time.Parse("2006-01-02", end)
	return models.Period{Start: s, End: e}
}

func instant(at string) models.Period {
	t, _ := time.Parse("2006-01-02", at)
	return models.Period{Instant: t}
}

func numericFact(concept, contextRef string, value decimal.Decimal) models.Fact {
	return models.Fact{Concept: concept, ContextRef: contextRef, IsNumeric: true, Value: value}
}

func TestBuild_IncomeStatement_BindsFactsAndOrdersChildren(t *testing.T) {
	key := models.StockPeriodKey{StockID: "2330", Year: 113, Quarter: 3, ReportType: models.ReportIncomeStatement}

	contexts := []models.Context{
		{ID: "CurrentYTD", EntityIdentifier: "2330", Period: duration("2024-01-01", "2024-09-30")},
	}
	facts := []models.Fact{
		numericFact("ifrs-full:Revenue", "CurrentYTD", decimal.NewFromInt(1000)),
		numericFact("ifrs-full:CostOfSales", "CurrentYTD", decimal.NewFromInt(-400)),
		numericFact("ifrs-full:ProfitLoss", "CurrentYTD", decimal.NewFromInt(600)),
	}
	pres := map[string][]models.PresentationArc{
		"ifrs-full:ProfitLoss": {
			{From: "ifrs-full:ProfitLoss", To: "ifrs-full:Revenue", Order: decimal.NewFromInt(1)},
			{From: "ifrs-full:ProfitLoss", To: "ifrs-full:CostOfSales", Order: decimal.NewFromInt(2)},
		},
	}
	calc := map[string][]models.CalculationArc{
		"ifrs-full:ProfitLoss": {
			{From: "ifrs-full:ProfitLoss", To: "ifrs-full:Revenue", Weight: decimal.NewFromInt(1)},
			{From: "ifrs-full:ProfitLoss", To: "ifrs-full:CostOfSales", Weight: decimal.NewFromInt(-1)},
		},
	}

	stmt := Build(Input{Key: key, Facts: facts, Contexts: contexts, Presentation: pres, Calculation: calc})
	require.False(t, stmt.Empty)
	require.Len(t, stmt.Items, 1)

	root := stmt.Items[0]
	assert.Equal(t, "ifrs-full:ProfitLoss", root.Concept)
	require.True(t, root.HasValue())
	assert.True(t, root.Value.Equal(decimal.NewFromInt(600)))

	require.Len(t, root.Children, 2)
	assert.Equal(t, "ifrs-full:Revenue", root.Children[0].Concept)
	assert.True(t, root.Children[0].Weight.Equal(decimal.NewFromInt(1)))
	assert.Equal(t, "ifrs-full:CostOfSales", root.Children[1].Concept)
	assert.True(t, root.Children[1].Weight.Equal(decimal.NewFromInt(-1)), "contra-line CostOfSales must carry its calc-arc weight of -1, not the default +1")
}

func TestBuild_BalanceSheet_SelectsInstantContext(t *testing.T) {
	key := models.StockPeriodKey{StockID: "2330", Year: 113, Quarter: 3, ReportType: models.ReportBalanceSheet}
	contexts := []models.Context{
		{ID: "Instant0930", EntityIdentifier: "2330", Period: instant("2024-09-30")},
		{ID: "Instant0630", EntityIdentifier: "2330", Period: instant("2024-06-30")},
	}
	facts := []models.Fact{
		numericFact("ifrs-full:Assets", "Instant0930", decimal.NewFromInt(9000)),
		numericFact("ifrs-full:Assets", "Instant0630", decimal.NewFromInt(8000)),
	}
	pres := map[string][]models.PresentationArc{
		"ifrs-full:Assets": nil,
	}

	stmt := Build(Input{Key: key, Facts: facts, Contexts: contexts, Presentation: map[string][]models.PresentationArc{}, SchemaConcepts: []string{"ifrs-full:Assets"}})
	require.False(t, stmt.Empty)
	require.Len(t, stmt.Items, 1)
	assert.True(t, stmt.Items[0].Value.Equal(decimal.NewFromInt(9000)))
	_ = pres
}

func TestBuild_MissingRole_ReturnsEmptyStatement(t *testing.T) {
	key := models.StockPeriodKey{StockID: "2330", Year: 113, Quarter: 3, ReportType: models.ReportCashFlow}
	stmt := Build(Input{Key: key})
	assert.True(t, stmt.Empty)
}

func TestBuild_InvalidReportType_IsEmpty(t *testing.T) {
	key := models.StockPeriodKey{StockID: "2330", Year: 113, Quarter: 3, ReportType: "bogus"}
	stmt := Build(Input{Key: key})
	assert.True(t, stmt.Empty)
}

func TestBuild_BalanceSheet_OrdersDisconnectedRootsByArcOrderNotName(t *testing.T) {
	key := models.StockPeriodKey{StockID: "2330", Year: 113, Quarter: 3, ReportType: models.ReportBalanceSheet}
	contexts := []models.Context{
		{ID: "Instant0930", EntityIdentifier: "2330", Period: instant("2024-09-30")},
	}
	// "LiabilitiesAndEquity" sorts before "Assets" alphabetically, but
	// the presentation arcs declare Assets first (order 1) — the roots
	// must come out in arc order, not name order.
	pres := map[string][]models.PresentationArc{
		"ifrs-full:Assets": {
			{From: "ifrs-full:Assets", To: "ifrs-full:CurrentAssets", Order: decimal.NewFromInt(1)},
		},
		"ifrs-full:LiabilitiesAndEquity": {
			{From: "ifrs-full:LiabilitiesAndEquity", To: "ifrs-full:CurrentLiabilities", Order: decimal.NewFromInt(2)},
		},
	}

	stmt := Build(Input{Key: key, Contexts: contexts, Presentation: pres})
	require.Len(t, stmt.Items, 2)
	assert.Equal(t, "ifrs-full:Assets", stmt.Items[0].Concept)
	assert.Equal(t, "ifrs-full:LiabilitiesAndEquity", stmt.Items[1].Concept)
}

func TestCalcChildren_PreservesWeights(t *testing.T) {
	calc := map[string][]models.CalculationArc{
		"ifrs-full:ProfitLoss": {
			{From: "ifrs-full:ProfitLoss", To: "ifrs-full:Revenue", Weight: decimal.NewFromInt(1)},
			{From: "ifrs-full:ProfitLoss", To: "ifrs-full:CostOfSales", Weight: decimal.NewFromInt(-1)},
		},
	}
	out := CalcChildren(calc)
	require.Len(t, out["ifrs-full:ProfitLoss"], 2)
	assert.True(t, out["ifrs-full:ProfitLoss"][1].Weight.Equal(decimal.NewFromInt(-1)))
}
