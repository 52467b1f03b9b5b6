package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringArrayScan(t *testing.T) {
	tests := []struct {
		name     string
		src      interface{}
		expected StringArray
	}{
		{"nil", nil, StringArray{}},
		{"bytes", []byte(`["go","sql"]`), StringArray{"go", "sql"}},
		{"string", `["python"]`, StringArray{"python"}},
		{"empty array", []byte(`[]`), StringArray{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a StringArray
			require.NoError(t, a.Scan(tt.src))
			assert.Equal(t, tt.expected, a)
		})
	}
}

func TestStringArrayScanUnsupported(t *testing.T) {
	var a StringArray
	assert.Error(t, a.Scan(42))
}

func TestStringArrayValue(t *testing.T) {
	v, err := StringArray(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, []byte("[]"), v)

	v, err = StringArray{"go"}.Value()
	require.NoError(t, err)
	assert.JSONEq(t, `["go"]`, string(v.([]byte)))
}

func TestPrefixColumns(t *testing.T) {
	result := prefixColumns("j", "id, title,\n\tcompany")
	assert.Equal(t, "j.id, j.title, j.company", result)
}
