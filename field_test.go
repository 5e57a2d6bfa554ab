package bitdex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type address struct {
	City string
	Zip  int
}

type customer struct {
	Name    string
	Status  string
	Age     int
	Address *address
	Tags    []string
}

func TestField_Path(t *testing.T) {
	get := func(c customer) string { return c.Name }

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{name: "simple", path: "Name"},
		{name: "chain", path: "Address.City"},
		{name: "underscore", path: "_private.x1"},
		{name: "unicode", path: "Größe"},
		{name: "empty", path: "", wantErr: true},
		{name: "method call", path: "Name.Len()", wantErr: true},
		{name: "computed", path: "Age+1", wantErr: true},
		{name: "index", path: "Tags[0]", wantErr: true},
		{name: "leading dot", path: ".Name", wantErr: true},
		{name: "trailing dot", path: "Name.", wantErr: true},
		{name: "double dot", path: "Address..City", wantErr: true},
		{name: "leading digit", path: "1Name", wantErr: true},
		{name: "space", path: "Address City", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, err := NewField(tt.path, get).Path()
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnsupportedExpression)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.path, path)
		})
	}
}

func TestField_NilAccessor(t *testing.T) {
	_, err := NewField[customer, string]("Name", nil).Path()
	require.ErrorIs(t, err, ErrUnsupportedExpression)
}

func TestNested(t *testing.T) {
	addr := NewField("Address", func(c customer) *address { return c.Address })
	city := NewField("City", func(a *address) string { return a.City })

	f := Nested(addr, city)

	path, err := f.Path()
	require.NoError(t, err)
	assert.Equal(t, "Address.City", path)

	assert.Equal(t, "Berlin", f.Get(customer{Address: &address{City: "Berlin"}}))
	assert.Equal(t, "", f.Get(customer{}), "nil intermediate yields zero value")

	_, err = Nested(addr, NewField[*address, string]("City", nil)).Path()
	require.ErrorIs(t, err, ErrUnsupportedExpression)
}

func TestIsNil(t *testing.T) {
	var p *address
	var m map[string]int
	var s []int
	var i any

	assert.True(t, isNil(p))
	assert.True(t, isNil(m))
	assert.True(t, isNil(s))
	assert.True(t, isNil(i))
	assert.False(t, isNil(&address{}))
	assert.False(t, isNil(address{}))
	assert.False(t, isNil(0))
	assert.False(t, isNil(""))
}

func TestFormatKey(t *testing.T) {
	assert.Equal(t, "Status.Active", formatKey("Active", "Status"))
	assert.Equal(t, "Address.Zip.10115", formatKey(10115, "Address", "Zip"))
	assert.Equal(t, "Flag.true", formatKey(true, "Flag"))
}
