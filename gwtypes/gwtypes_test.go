package gwtypes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindNames(t *testing.T) {
	assert.Equal(t, "INTEGER", Integer.String())
	assert.Equal(t, "CURRENCY", Currency.String())
	assert.True(t, Currency.Numeric())
	assert.False(t, String.Numeric())
	assert.True(t, Single.Float())
	assert.False(t, Currency.Float())
}

func TestSuffixKind(t *testing.T) {
	tests := []struct {
		name string
		kind Kind
		ok   bool
	}{
		{"a%", Integer, true},
		{"a&", Long, true},
		{"a!", Single, true},
		{"a#", Double, true},
		{"a@", Currency, true},
		{"a$", String, true},
		{"total", Single, false},
		{"", Single, false},
	}

	for _, tt := range tests {
		k, ok := SuffixKind(tt.name)
		assert.Equalf(t, tt.kind, k, "SuffixKind(%q)", tt.name)
		assert.Equalf(t, tt.ok, ok, "SuffixKind(%q)", tt.name)
	}
}

func TestKindByName(t *testing.T) {
	k, ok := KindByName("long")
	assert.True(t, ok)
	assert.Equal(t, Long, k)

	_, ok = KindByName("POINT")
	assert.False(t, ok)
}

func TestRecordDef(t *testing.T) {
	pt := &RecordDef{Name: "POINT", Fields: []FieldDef{
		{Name: "X", Type: Scalar(Integer)},
		{Name: "Y", Type: Scalar(Integer)},
	}}

	i, ok := pt.Field("y")
	assert.True(t, ok)
	assert.Equal(t, 1, i)

	_, ok = pt.Field("z")
	assert.False(t, ok)

	a := Spec{Kind: Record, Record: pt}
	b := Spec{Kind: Record, Record: &RecordDef{Name: "POINT"}}
	assert.True(t, a.Same(a))
	assert.False(t, a.Same(b))
	assert.Equal(t, "POINT", a.String())
	assert.Equal(t, "STRING *", Spec{Kind: String, Fixed: 8}.String())
}
