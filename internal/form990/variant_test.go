package form990

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVariants_Validate(t *testing.T) {
	assert.NoError(t, Return990().Validate())
	assert.NoError(t, Base().Validate())
}

func TestVariant_ValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(v *Variant)
		errMsg string
	}{
		{"missing form", func(v *Variant) { v.Form = "" }, "invalid"},
		{"empty output", func(v *Variant) { v.Compensation.Fields[0].Output = "" }, "invalid"},
		{"zero type", func(v *Variant) { v.Balance.Fields[0].Type = 0 }, "invalid"},
		{"duplicate output", func(v *Variant) { v.Balance.Fields[1].Output = "total_contrib" }, "invalid"},
		{"missing group", func(v *Variant) { v.Compensation.Group = "" }, "invalid"},
		{"unknown derived input", func(v *Variant) { v.Balance.Derived[0].Left = "nope" }, "unknown inputs"},
		{"derived shadows field", func(v *Variant) { v.Balance.Derived[0].Output = "govt_grants" }, "shadows"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Return990()
			tt.mutate(&v)
			err := v.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestParseForm(t *testing.T) {
	v, err := ParseForm("990")
	require.NoError(t, err)
	assert.Equal(t, Form990, v.Form)
	assert.NotNil(t, v.Balance)

	v, err = ParseForm("base")
	require.NoError(t, err)
	assert.Nil(t, v.Compensation)

	_, err = ParseForm("990T")
	assert.Error(t, err)
}

func TestRemap_Name(t *testing.T) {
	var nilMap Remap
	assert.Equal(t, "org", nilMap.Name("org"))

	m := Remap{"org": "organization_name", "blank": ""}
	assert.Equal(t, "organization_name", m.Name("org"))
	assert.Equal(t, "ein", m.Name("ein"))
	assert.Equal(t, "blank", m.Name("blank"))
}

func TestRemap_Merge(t *testing.T) {
	var empty Remap
	assert.Nil(t, empty.Merge(nil))

	m := Remap{"org": "a", "ein": "tax_id"}.Merge(Remap{"org": "b"})
	assert.Equal(t, Remap{"org": "b", "ein": "tax_id"}, m)
}

func TestParseRemap(t *testing.T) {
	m, err := ParseRemap([]string{"org=organization_name", " ein = tax_id "})
	require.NoError(t, err)
	assert.Equal(t, Remap{"org": "organization_name", "ein": "tax_id"}, m)

	m, err = ParseRemap(nil)
	require.NoError(t, err)
	assert.Nil(t, m)

	for _, bad := range []string{"org", "=x", "org="} {
		_, err := ParseRemap([]string{bad})
		assert.Error(t, err, bad)
	}
}

func TestLoadRemap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "remap.yaml")
	require.NoError(t, os.WriteFile(path, []byte("org: organization_name\nstate: state_code\n"), 0o644))

	m, err := LoadRemap(path)
	require.NoError(t, err)
	assert.Equal(t, Remap{"org": "organization_name", "state": "state_code"}, m)

	_, err = LoadRemap(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("- just\n- a list\n"), 0o644))
	_, err = LoadRemap(bad)
	assert.Error(t, err)
}
