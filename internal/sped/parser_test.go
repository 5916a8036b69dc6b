package sped

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const sampleFile = `|0000|017|0|01032024|31032024|ACME|11222333000181||SP|110042490114|
|0200|A|PRODUTO A|||UN||73181500|
|0200|B|PRODUTO B|||UN||73181500|
|C100|1|0|PART|55|00|1|100|CHAVE1|10032024|10032024|121,00|0|
|C170|1|A||2,000|UN|100,00|0,00|0|000|5102|01|100,00|18,00|18,00|
|C170|2|B||1,000|UN|0,00|0,00|0|000|5102|01|0,00|0,00|0,00|
|C100|0|1|PART|55|00|1|200|CHAVE2|10032024|10032024|50,00|0|
|C170|1|A||5,000|UN|50,00|0,00|0|000|1102|01|50,00|9,00|18,00|
`

func TestParseOutboundDocumentsAndItems(t *testing.T) {
	result, err := Parse(strings.NewReader(sampleFile))
	require.NoError(t, err)

	require.NotNil(t, result.Header)
	require.Equal(t, "ACME", result.Header.Name)
	require.Equal(t, "11222333000181", result.Header.CNPJ)
	require.Equal(t, "SP", result.Header.State)

	require.Len(t, result.Products, 2)
	require.Equal(t, "A", result.Products[0].Code)
	require.Equal(t, "73181500", result.Products[0].NCM)

	// The second C100 is inbound, so only one document qualifies and the
	// C170 following it is dropped.
	require.Len(t, result.Documents, 1)
	doc := result.Documents[0]
	require.Equal(t, "100", doc.Number)
	require.Equal(t, "1", doc.Series)
	require.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), doc.Date)
	require.InDelta(t, 121.00, doc.Total, 1e-9)
	require.Equal(t, PaymentCash, doc.PaymentKind)

	require.Len(t, result.Items, 2)
	itemA := result.Items[0]
	require.Equal(t, "A", itemA.ItemCode)
	require.Equal(t, "100", itemA.DocNumber)
	require.InDelta(t, 2.0, itemA.Quantity, 1e-9)
	require.InDelta(t, 50.0, itemA.UnitValue, 1e-9)
	require.InDelta(t, 100.0, itemA.NetValue, 1e-9)
	require.InDelta(t, 100.0, itemA.ICMSBase, 1e-9)
	require.InDelta(t, 18.0, itemA.ICMSValue, 1e-9)

	itemB := result.Items[1]
	require.Equal(t, "B", itemB.ItemCode)
	require.InDelta(t, 0.0, itemB.NetValue, 1e-9)

	require.Equal(t, 2, result.RecordCounts["C100"])
	require.Equal(t, 3, result.RecordCounts["C170"])
}

func TestParseBlankDateDropsDocumentAndItems(t *testing.T) {
	file := `|0000|017|0|01032024|31032024|ACME|11222333000181||SP|IE|
|C100|1|0|PART|55|00|1|300|CHAVE||10032024|80,00|1|
|C170|1|A||1,000|UN|80,00|0,00|0|000|5102|01|
`
	result, err := Parse(strings.NewReader(file))
	require.NoError(t, err)
	require.Empty(t, result.Documents)
	require.Empty(t, result.Items)
}

func TestParseBadDateWarnsAndSkips(t *testing.T) {
	file := `|C100|1|0|PART|55|00|1|300|CHAVE|99999999|10032024|80,00|1|
`
	result, err := Parse(strings.NewReader(file))
	require.NoError(t, err)
	require.Empty(t, result.Documents)
	require.Len(t, result.Warnings, 1)
	require.Contains(t, result.Warnings[0], "line 1")
	require.Contains(t, result.Warnings[0], "C100")
}

func TestParseDefaultsBlankSeries(t *testing.T) {
	file := `|C100|1|0|PART|55|00||400|CHAVE|10032024|10032024|80,00|1|
`
	result, err := Parse(strings.NewReader(file))
	require.NoError(t, err)
	require.Len(t, result.Documents, 1)
	require.Equal(t, "1", result.Documents[0].Series)
}

func TestParseSkipsZeroQuantityAndBlankCodeItems(t *testing.T) {
	file := `|C100|1|0|PART|55|00|1|500|CHAVE|10032024|10032024|80,00|1|
|C170|1|A||0,000|UN|80,00|0,00|
|C170|2|||1,000|UN|80,00|0,00|
`
	result, err := Parse(strings.NewReader(file))
	require.NoError(t, err)
	require.Len(t, result.Documents, 1)
	require.Empty(t, result.Items)
}

func TestParseDecodesLatin1Lines(t *testing.T) {
	// "PARAFUSO AÇO" with ç encoded as Latin-1 byte 0xE7.
	line := []byte("|0200|C|PARAFUSO A\xe7O|||UN||73181500|\n")
	result, err := Parse(strings.NewReader(string(line)))
	require.NoError(t, err)
	require.Len(t, result.Products, 1)
	require.Equal(t, "PARAFUSO AçO", result.Products[0].Description)
}

func TestParseDecimalConventions(t *testing.T) {
	require.InDelta(t, 1234.56, parseDecimal("1.234,56"), 1e-9)
	require.InDelta(t, 0.0, parseDecimal(""), 1e-9)
	require.InDelta(t, 0.0, parseDecimal("abc"), 1e-9)
	require.InDelta(t, 10.0, parseDecimal("10"), 1e-9)
}
