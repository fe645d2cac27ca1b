package instance

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ixbrlDoc = `<!DOCTYPE html>
<html>
<body>
  <ix:nonFraction name="ifrs-full:Revenue" contextRef="CurrentYTD" unitRef="TWD" scale="3" decimals="-3">1,234</ix:nonFraction>
  <ix:nonFraction name="ifrs-full:CostOfSales" contextRef="CurrentYTD" unitRef="TWD" sign="-" scale="3" decimals="-3">500</ix:nonFraction>
  <context id="CurrentYTD">
    <entity><identifier>2330</identifier></entity>
    <period><startDate>2024-01-01</startDate><endDate>2024-09-30</endDate></period>
  </context>
</body>
</html>`

const xmlDoc = `<?xml version="1.0"?>
<xbrli:xbrl xmlns:xbrli="http://www.xbrl.org/2003/instance" xmlns:ifrs-full="http://xbrl.ifrs.org/taxonomy/2023-03-23/ifrs-full">
  <xbrli:context id="Instant0930">
    <xbrli:entity><xbrli:identifier>2330</xbrli:identifier></xbrli:entity>
    <xbrli:period><xbrli:instant>2024-09-30</xbrli:instant></xbrli:period>
  </xbrli:context>
  <ifrs-full:Assets contextRef="Instant0930" unitRef="TWD" decimals="-3">9,000</ifrs-full:Assets>
</xbrli:xbrl>`

func TestIXBRLBackend_ExtractFacts_AppliesScaleAndSign(t *testing.T) {
	b := IXBRLBackend{}
	require.True(t, b.Available([]byte(ixbrlDoc)))

	facts, err := b.ExtractFacts([]byte(ixbrlDoc))
	require.NoError(t, err)
	require.Len(t, facts, 2)

	revenue := facts[0]
	assert.Equal(t, "ifrs-full:Revenue", revenue.Concept)
	assert.True(t, revenue.Value.Equal(decimal.NewFromInt(1234000)))

	cost := facts[1]
	assert.True(t, cost.Value.Equal(decimal.NewFromInt(-500000)))
}

func TestIXBRLBackend_ExtractContexts_ParsesDuration(t *testing.T) {
	b := IXBRLBackend{}
	contexts, err := b.ExtractContexts([]byte(ixbrlDoc))
	require.NoError(t, err)
	require.Len(t, contexts, 1)
	assert.Equal(t, "2330", contexts[0].EntityIdentifier)
	assert.True(t, contexts[0].Period.IsDuration())
}

func TestXMLBackend_ExtractFacts_ResolvesPrefix(t *testing.T) {
	b := XMLBackend{}
	require.True(t, b.Available([]byte(xmlDoc)))

	facts, err := b.ExtractFacts([]byte(xmlDoc))
	require.NoError(t, err)
	require.Len(t, facts, 1)
	assert.Equal(t, "ifrs-full:Assets", facts[0].Concept)
	assert.True(t, facts[0].Value.Equal(decimal.NewFromInt(9000)))
}

func TestXMLBackend_ExtractContexts_ParsesInstant(t *testing.T) {
	b := XMLBackend{}
	contexts, err := b.ExtractContexts([]byte(xmlDoc))
	require.NoError(t, err)
	require.Len(t, contexts, 1)
	assert.True(t, contexts[0].Period.IsInstant())
}

func TestExtract_PicksAvailableBackend(t *testing.T) {
	facts, contexts, err := Extract([]byte(ixbrlDoc), Backends())
	require.NoError(t, err)
	assert.Len(t, facts, 2)
	assert.Len(t, contexts, 1)
}
