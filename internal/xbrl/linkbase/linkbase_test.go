package linkbase

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const calcXML = `<?xml version="1.0"?>
<linkbase xmlns:xlink="http://www.w3.org/1999/xlink">
  <calculationLink>
    <loc xlink:type="locator" xlink:href="tifrs.xsd#ifrs-full_ProfitLoss" xlink:label="ProfitLoss"/>
    <loc xlink:type="locator" xlink:href="tifrs.xsd#ifrs-full_Revenue" xlink:label="Revenue"/>
    <loc xlink:type="locator" xlink:href="tifrs.xsd#ifrs-full_CostOfSales" xlink:label="CostOfSales"/>
    <calculationArc xlink:from="ProfitLoss" xlink:to="Revenue" weight="1" order="1"/>
    <calculationArc xlink:from="ProfitLoss" xlink:to="CostOfSales" weight="-1" order="2"/>
  </calculationLink>
</linkbase>`

const cyclicCalcXML = `<?xml version="1.0"?>
<linkbase xmlns:xlink="http://www.w3.org/1999/xlink">
  <calculationLink>
    <loc xlink:type="locator" xlink:href="tifrs.xsd#A" xlink:label="A"/>
    <loc xlink:type="locator" xlink:href="tifrs.xsd#B" xlink:label="B"/>
    <calculationArc xlink:from="A" xlink:to="B" weight="1" order="1"/>
    <calculationArc xlink:from="B" xlink:to="A" weight="1" order="1"/>
  </calculationLink>
</linkbase>`

const presXML = `<?xml version="1.0"?>
<linkbase xmlns:xlink="http://www.w3.org/1999/xlink">
  <presentationLink>
    <loc xlink:type="locator" xlink:href="tifrs.xsd#ifrs-full_ProfitLoss" xlink:label="ProfitLoss"/>
    <loc xlink:type="locator" xlink:href="tifrs.xsd#ifrs-full_Revenue" xlink:label="Revenue"/>
    <presentationArc xlink:from="ProfitLoss" xlink:to="Revenue" order="1" preferredLabel="http://www.xbrl.org/2003/role/terseLabel"/>
  </presentationLink>
</linkbase>`

const labelXML = `<?xml version="1.0"?>
<linkbase xmlns:xlink="http://www.w3.org/1999/xlink">
  <labelLink>
    <loc xlink:type="locator" xlink:href="tifrs.xsd#ifrs-full_Revenue" xlink:label="Revenue"/>
    <label xlink:label="Revenue_lbl_zh" xlink:role="http://www.xbrl.org/2003/role/terseLabel" xml:lang="zh-TW">營業收入</label>
    <label xlink:label="Revenue_lbl_en" xlink:role="http://www.xbrl.org/2003/role/terseLabel" xml:lang="en">Revenue</label>
    <labelArc xlink:from="Revenue" xlink:to="Revenue_lbl_zh"/>
    <labelArc xlink:from="Revenue" xlink:to="Revenue_lbl_en"/>
  </labelLink>
</linkbase>`

func TestParseCalculation_ResolvesLocatorsAndOrder(t *testing.T) {
	arcs, dropped, err := ParseCalculation([]byte(calcXML))
	require.NoError(t, err)
	assert.Empty(t, dropped)

	children := arcs["ifrs-full:ProfitLoss"]
	require.Len(t, children, 2)
	assert.Equal(t, "ifrs-full:Revenue", children[0].To)
	assert.True(t, children[0].Weight.Equal(decimal.NewFromInt(1)))
	assert.Equal(t, "ifrs-full:CostOfSales", children[1].To)
	assert.True(t, children[1].Weight.Equal(decimal.NewFromInt(-1)))
}

func TestParseCalculation_DropsCycles(t *testing.T) {
	arcs, dropped, err := ParseCalculation([]byte(cyclicCalcXML))
	require.NoError(t, err)
	assert.NotEmpty(t, dropped)
	// one direction of the cycle must have been removed
	total := len(arcs["A"]) + len(arcs["B"])
	assert.Equal(t, 1, total)
}

func TestParsePresentation_CarriesPreferredLabel(t *testing.T) {
	arcs, err := ParsePresentation([]byte(presXML))
	require.NoError(t, err)
	children := arcs["ifrs-full:ProfitLoss"]
	require.Len(t, children, 1)
	assert.Equal(t, "ifrs-full:Revenue", children[0].To)
	assert.Equal(t, "http://www.xbrl.org/2003/role/terseLabel", children[0].PreferredLabel)
}

func TestParseLabels_SplitsByLanguage(t *testing.T) {
	set, err := ParseLabels([]byte(labelXML))
	require.NoError(t, err)
	assert.Equal(t, "營業收入", set.ZHLabel("ifrs-full:Revenue", ""))
	assert.Equal(t, "Revenue", set.ENLabel("ifrs-full:Revenue", ""))
}
