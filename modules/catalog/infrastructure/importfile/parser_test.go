package importfile

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCSV(t *testing.T) {
	input := strings.Join([]string{
		"sku,name,description,category,brand,price,applications,cross_references",
		`bp-1001,Brake Pad,Front axle set,Brakes,Ferodo,24.99,"Toyota|Corolla|2010-2015|1.8L; Honda|Civic|2012","Bosch:0986AB1234; TRW:GDB3331"`,
		"FL-2002,Oil Filter,,Filters,Mann,5.50,,",
	}, "\n")

	rows, err := ParseCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	first := rows[0]
	assert.Equal(t, "BP-1001", first.SKU)
	assert.Equal(t, "Brake Pad", first.Name)
	assert.Equal(t, "Brakes", first.Category)
	assert.True(t, first.Price.Equal(decimal.RequireFromString("24.99")))

	require.Len(t, first.Applications, 2)
	assert.Equal(t, ApplicationSpec{Make: "Toyota", Model: "Corolla", YearFrom: 2010, YearTo: 2015, Engine: "1.8L"}, first.Applications[0])
	assert.Equal(t, ApplicationSpec{Make: "Honda", Model: "Civic", YearFrom: 2012, YearTo: 2012}, first.Applications[1])

	require.Len(t, first.CrossReferences, 2)
	assert.Equal(t, CrossReferenceSpec{CompetitorBrand: "Bosch", CompetitorSKU: "0986AB1234"}, first.CrossReferences[0])

	second := rows[1]
	assert.Equal(t, "FL-2002", second.SKU)
	assert.Empty(t, second.Applications)
	assert.Empty(t, second.CrossReferences)
}

func TestParseCSVHeaderByName(t *testing.T) {
	input := "name,sku\nBrake Pad,bp-1\n"
	rows, err := ParseCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "BP-1", rows[0].SKU)
	assert.Equal(t, "Brake Pad", rows[0].Name)
}

func TestParseCSVErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "missing sku column",
			input: "name,price\nBrake Pad,1.00\n",
			want:  `missing required column "sku"`,
		},
		{
			name:  "unknown column",
			input: "sku,name,color\nBP-1,Brake Pad,red\n",
			want:  `unknown column "color"`,
		},
		{
			name:  "empty sku",
			input: "sku,name\n,Brake Pad\n",
			want:  "line 2: sku is empty",
		},
		{
			name:  "bad price",
			input: "sku,name,price\nBP-1,Brake Pad,abc\n",
			want:  `invalid price "abc"`,
		},
		{
			name:  "negative price",
			input: "sku,name,price\nBP-1,Brake Pad,-2\n",
			want:  "price is negative",
		},
		{
			name:  "bad application",
			input: "sku,name,applications\nBP-1,Brake Pad,Toyota\n",
			want:  "invalid application",
		},
		{
			name:  "inverted year range",
			input: "sku,name,applications\nBP-1,Brake Pad,Toyota|Corolla|2015-2010\n",
			want:  "ends before it starts",
		},
		{
			name:  "bad cross reference",
			input: "sku,name,cross_references\nBP-1,Brake Pad,Bosch\n",
			want:  "invalid cross reference",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCSV(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
