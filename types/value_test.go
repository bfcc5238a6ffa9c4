package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue_Accessors(t *testing.T) {
	v := Map(
		Field("Name", String("web")),
		Field("Size", Number(50)),
		Field("Encrypted", Bool(true)),
		Field("Ports", List(Int(80), Int(443))),
	)

	s, ok := v.Get("Name").Str()
	assert.True(t, ok)
	assert.Equal(t, "web", s)

	n, ok := v.Get("Size").Int()
	assert.True(t, ok)
	assert.Equal(t, 50, n)

	b, ok := v.Get("Encrypted").Bool()
	assert.True(t, ok)
	assert.True(t, b)

	assert.Len(t, v.Get("Ports").List(), 2)
	assert.True(t, v.Get("Missing").IsAbsent())
	assert.True(t, Absent.Get("anything").IsAbsent())
}

func TestValue_IntCoercion(t *testing.T) {
	tests := []struct {
		name   string
		value  Value
		want   int
		wantOK bool
	}{
		{"string number", String("22"), 22, true},
		{"padded string", String(" 443 "), 443, true},
		{"plain number", Number(9090), 9090, true},
		{"truncated float", Number(2.9), 2, true},
		{"garbage string", String("x"), 0, false},
		{"float string", String("22.5"), 0, false},
		{"bool", Bool(true), 0, false},
		{"absent", Absent, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.value.Int()
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValue_Truthy(t *testing.T) {
	assert.False(t, Absent.Truthy())
	assert.False(t, String("").Truthy())
	assert.False(t, Number(0).Truthy())
	assert.False(t, Bool(false).Truthy())
	assert.False(t, List().Truthy())
	assert.False(t, Map().Truthy())
	assert.True(t, String("x").Truthy())
	assert.True(t, Number(-1).Truthy())
	assert.True(t, Bool(true).Truthy())
	assert.True(t, List(Absent).Truthy())
	assert.True(t, Map(Field("k", Absent)).Truthy())
}

func TestValue_MapOrder(t *testing.T) {
	v := Map(
		Field("c", Int(1)),
		Field("a", Int(2)),
		Field("b", Int(3)),
	)
	assert.Equal(t, []string{"c", "a", "b"}, v.Keys())

	vals := v.Values()
	require.Len(t, vals, 3)
	n, _ := vals[0].Int()
	assert.Equal(t, 1, n)
}

func TestParseYAML(t *testing.T) {
	v := MustParseYAML(`
Encrypted: true
Size: "30"
Tags:
  - Key: application
    Value: prometheus
`)
	require.True(t, v.IsMap())

	b, ok := v.Get("Encrypted").Bool()
	assert.True(t, ok)
	assert.True(t, b)

	n, ok := v.Get("Size").Int()
	assert.True(t, ok)
	assert.Equal(t, 30, n)

	tags := v.Get("Tags").List()
	require.Len(t, tags, 1)
	assert.Equal(t, "application", tags[0].Get("Key").Text())
}

func TestParseYAML_JSONInput(t *testing.T) {
	v, err := ParseYAML([]byte(`{"Statement": [{"Effect": "Deny"}]}`))
	require.NoError(t, err)

	stmts := v.Get("Statement").List()
	require.Len(t, stmts, 1)
	assert.Equal(t, "Deny", stmts[0].Get("Effect").Text())
}

func TestValue_Interface(t *testing.T) {
	v := Map(
		Field("Ports", List(Int(80))),
		Field("Name", String("web")),
	)
	got := v.Interface()
	want := map[string]any{
		"Ports": []any{float64(80)},
		"Name":  "web",
	}
	assert.Equal(t, want, got)
}

func TestResourceDeclaration_Defaults(t *testing.T) {
	r := NewResourceDeclaration("Volume1", "AWS::EC2::Volume", Absent)

	assert.Equal(t, PolicyDelete, r.DeletionPolicy)
	assert.Equal(t, PolicyDelete, r.UpdateReplacePolicy)
	assert.False(t, r.HasProperties())
	assert.True(t, r.Prop("Size").IsAbsent())
}
