package sheetstable

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type studentRow struct {
	Name     string  `sheet:"ФИО"`
	SVO      int     `sheet:"СВО"`
	Distance float64 `sheet:"Расстояние"`
	Active   bool    `sheet:"Активен"`
}

func TestHeaders(t *testing.T) {
	headers, err := Headers(studentRow{})
	require.NoError(t, err)
	assert.Equal(t, []string{"ФИО", "СВО", "Расстояние", "Активен"}, headers)
}

func TestHeaders_MissingTag(t *testing.T) {
	type bad struct {
		Name string
	}
	_, err := Headers(bad{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
}

func TestDecode(t *testing.T) {
	values := [][]interface{}{
		{"ФИО", "СВО", "Расстояние", "Активен"},
		{"Иванов И.И.", float64(1), float64(250), true},
		{"Петров П.П.", "0", "33,5", "false"},
	}

	var rows []studentRow
	err := Decode(values, &rows)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, studentRow{Name: "Иванов И.И.", SVO: 1, Distance: 250, Active: true}, rows[0])
	assert.Equal(t, studentRow{Name: "Петров П.П.", SVO: 0, Distance: 33.5, Active: false}, rows[1])
}

func TestDecode_ColumnsReordered(t *testing.T) {
	values := [][]interface{}{
		{"Расстояние", "ФИО", "Активен", "СВО"},
		{float64(10), "Иванов И.И.", false, float64(1)},
	}

	var rows []studentRow
	err := Decode(values, &rows)
	require.NoError(t, err)
	assert.Equal(t, studentRow{Name: "Иванов И.И.", SVO: 1, Distance: 10}, rows[0])
}

func TestDecode_ShortRowPadded(t *testing.T) {
	values := [][]interface{}{
		{"ФИО", "СВО", "Расстояние", "Активен"},
		{"Иванов И.И."},
	}

	var rows []studentRow
	err := Decode(values, &rows)
	require.NoError(t, err)
	assert.Equal(t, studentRow{Name: "Иванов И.И."}, rows[0])
}

func TestDecode_MissingColumn(t *testing.T) {
	values := [][]interface{}{
		{"ФИО", "СВО"},
		{"Иванов И.И.", float64(1)},
	}

	var rows []studentRow
	err := Decode(values, &rows)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Расстояние")
}

func TestDecode_EmptyValues(t *testing.T) {
	var rows []studentRow
	err := Decode(nil, &rows)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no header row")
}

func TestEncode(t *testing.T) {
	rows, err := Encode([]studentRow{
		{Name: "Иванов И.И.", SVO: 1, Distance: 250, Active: true},
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []interface{}{"Иванов И.И.", 1, 250.0, true}, rows[0])
}

func TestSetFieldValue_String(t *testing.T) {
	type testStruct struct {
		Name string
	}

	var s testStruct
	field := reflect.ValueOf(&s).Elem().Field(0)

	err := setFieldValue(field, "  test value ")
	require.NoError(t, err)
	assert.Equal(t, "test value", s.Name)
}

func TestSetFieldValue_EmptyInt(t *testing.T) {
	type testStruct struct {
		Count int
	}

	var s testStruct
	field := reflect.ValueOf(&s).Elem().Field(0)

	err := setFieldValue(field, "")
	require.NoError(t, err)
	assert.Equal(t, 0, s.Count)
}

func TestSetFieldValue_InvalidInt(t *testing.T) {
	type testStruct struct {
		Count int
	}

	var s testStruct
	field := reflect.ValueOf(&s).Elem().Field(0)

	err := setFieldValue(field, "not a number")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse int")
}
