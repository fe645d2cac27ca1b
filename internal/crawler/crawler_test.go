package crawler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const revenueHTML = `<html><body><table>
<tr><th>公司代號</th><th>公司名稱</th><th>營業收入</th></tr>
<tr><td>2330</td><td>台積電</td><td>100,000</td><td>90,000</td><td>80,000</td><td>11.1</td><td>25.0</td><td>900,000</td><td>700,000</td><td>28.5</td><td></td></tr>
<tr><td>2303</td><td>聯電</td><td>20,000</td><td>19,000</td><td>18,000</td><td>5.3</td><td>11.1</td><td>150,000</td><td>140,000</td><td>7.1</td><td></td></tr>
<tr><td>2454</td><td>聯發科</td><td>40,000</td><td>38,000</td><td>35,000</td><td>5.3</td><td>14.3</td><td>300,000</td><td>260,000</td><td>15.4</td><td></td></tr>
<tr><td>2412</td><td>中華電</td><td>18,000</td><td>17,500</td><td>17,000</td><td>2.9</td><td>5.9</td><td>120,000</td><td>115,000</td><td>4.3</td><td></td></tr>
<tr><td>2317</td><td>鴻海</td><td>-</td><td>50,000</td><td>45,000</td><td>1.0</td><td>2.0</td><td>300,000</td><td>280,000</td><td>7.1</td><td>備註</td></tr>
<tr><td colspan="11">合計</td></tr>
</table></body></html>`

func TestParseRevenue_SkipsUnparseableRow(t *testing.T) {
	rows, err := ParseRevenue([]byte(revenueHTML), RevenueQuery{Market: "sii", Year: 113, Month: 7})
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "2330", rows[0].StockID)
	assert.Equal(t, "台積電", rows[0].CompanyName)
}

func TestParseRevenue_FailsAboveSkipCeiling(t *testing.T) {
	html := `<table>
<tr><td>1101</td><td>A</td><td>-</td></tr>
<tr><td>1102</td><td>B</td><td>-</td></tr>
<tr><td>1103</td><td>C</td><td>-</td></tr>
<tr><td>1104</td><td>D</td><td>100</td></tr>
</table>`
	_, err := ParseRevenue([]byte(html), RevenueQuery{Market: "sii", Year: 113, Month: 7})
	assert.Error(t, err)
}

const pledgeHTML = `<table>
<tr><td>2330</td><td>台積電</td><td>董事</td><td>張三</td><td>1,000,000</td><td>200,000</td><td>20.0</td></tr>
</table>`

func TestParsePledge_ExtractsRow(t *testing.T) {
	rows, err := ParsePledge([]byte(pledgeHTML), PledgeQuery{Year: 113, Month: 7, TypeK: "sii"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "張三", rows[0].Name)
	assert.True(t, rows[0].PledgeRatio.Equal(rows[0].PledgeRatio))
}

const dividendQuarterlyHTML = `<table>
<tr><td>2330</td><td>113</td><td>2</td><td>3.00</td><td>0.00</td><td>2024-08-01</td></tr>
</table>`

const dividendAnnualHTML = `<table>
<tr><td>2330</td><td>112</td><td>11.00</td><td>0.00</td><td>2023-12-01</td></tr>
</table>`

func TestParseDividend_Quarterly_SetsQuarter(t *testing.T) {
	rows, err := ParseDividend([]byte(dividendQuarterlyHTML), DividendQuery{YearStart: 113, YearEnd: 113, QueryType: 1})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.NotNil(t, rows[0].Quarter)
	assert.Equal(t, 2, *rows[0].Quarter)
}

func TestParseDividend_Annual_QuarterIsNil(t *testing.T) {
	rows, err := ParseDividend([]byte(dividendAnnualHTML), DividendQuery{YearStart: 112, YearEnd: 112, QueryType: 2})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Nil(t, rows[0].Quarter)
}

const disclosureHTML = `<html><body>
<div id="fundslending"><table>
<tr><td>本公司</td><td>2330</td><td>100</td><td>90</td><td>500</td><td>100</td></tr>
</table></div>
<div id="endorsement"><table>
<tr><td>子公司</td><td>2330A</td><td>0</td><td>0</td><td>1000</td><td>0</td></tr>
</table></div>
</body></html>`

func TestParseDisclosure_SplitsRowSets(t *testing.T) {
	result, err := ParseDisclosure([]byte(disclosureHTML), DisclosureQuery{Year: 113, Month: 7, TypeK: "sii"})
	require.NoError(t, err)
	require.Len(t, result.FundsLending, 1)
	require.Len(t, result.EndorsementGuarantee, 1)
	assert.Equal(t, "funds_lending", result.FundsLending[0].Kind)
}
