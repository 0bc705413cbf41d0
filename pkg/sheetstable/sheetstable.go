// Package sheetstable maps Google Sheets value ranges onto tagged Go structs.
//
// The first row of a range is treated as the header row; struct fields carry a
// `sheet:"<header>"` tag naming the column they bind to. Columns are matched
// by header name, not position, so sheets can be reordered without breaking
// decoding.
package sheetstable

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// tagName is the struct tag binding a field to a sheet column header.
const tagName = "sheet"

// Headers returns the column headers for a model struct, in field order.
func Headers(model interface{}) ([]string, error) {
	t := reflect.TypeOf(model)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("model must be a struct, got %s", t.Kind())
	}

	headers := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get(tagName)
		if tag == "" {
			return nil, fmt.Errorf("field %s.%s missing %q tag", t.Name(), t.Field(i).Name, tagName)
		}
		headers = append(headers, tag)
	}

	if len(headers) == 0 {
		return nil, fmt.Errorf("struct %s has no fields", t.Name())
	}
	return headers, nil
}

// Decode parses a raw value range (header row first) into dest, which must be
// a pointer to a slice of structs. Rows shorter than the header row are
// padded with empty cells, matching how the Sheets API trims trailing blanks.
func Decode(values [][]interface{}, dest interface{}) error {
	destVal := reflect.ValueOf(dest)
	if destVal.Kind() != reflect.Ptr || destVal.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("dest must be a pointer to a slice, got %T", dest)
	}

	sliceVal := destVal.Elem()
	elemType := sliceVal.Type().Elem()
	if elemType.Kind() != reflect.Struct {
		return fmt.Errorf("dest element must be a struct, got %s", elemType.Kind())
	}

	if len(values) == 0 {
		return fmt.Errorf("no header row found")
	}

	// Build header -> column index map
	columnIndex := make(map[string]int, len(values[0]))
	for i, cell := range values[0] {
		columnIndex[strings.TrimSpace(cellString(cell))] = i
	}

	// Every tagged field must have a matching column
	fieldColumns := make([]int, elemType.NumField())
	for i := 0; i < elemType.NumField(); i++ {
		tag := elemType.Field(i).Tag.Get(tagName)
		if tag == "" {
			return fmt.Errorf("field %s.%s missing %q tag", elemType.Name(), elemType.Field(i).Name, tagName)
		}
		idx, ok := columnIndex[tag]
		if !ok {
			return fmt.Errorf("column %q for field %s.%s not found in header row", tag, elemType.Name(), elemType.Field(i).Name)
		}
		fieldColumns[i] = idx
	}

	out := reflect.MakeSlice(sliceVal.Type(), 0, len(values)-1)
	for rowIdx, row := range values[1:] {
		elem := reflect.New(elemType).Elem()
		for i := 0; i < elemType.NumField(); i++ {
			col := fieldColumns[i]
			var cell interface{}
			if col < len(row) {
				cell = row[col]
			}
			if err := setFieldValue(elem.Field(i), cell); err != nil {
				return fmt.Errorf("row %d column %q: %w", rowIdx+1, elemType.Field(i).Tag.Get(tagName), err)
			}
		}
		out = reflect.Append(out, elem)
	}

	sliceVal.Set(out)
	return nil
}

// Encode converts a slice of tagged structs into raw rows, without the header
// row. Pair with Headers to write a full table.
func Encode(src interface{}) ([][]interface{}, error) {
	srcVal := reflect.ValueOf(src)
	if srcVal.Kind() != reflect.Slice {
		return nil, fmt.Errorf("src must be a slice, got %T", src)
	}

	elemType := srcVal.Type().Elem()
	if elemType.Kind() != reflect.Struct {
		return nil, fmt.Errorf("src element must be a struct, got %s", elemType.Kind())
	}

	rows := make([][]interface{}, 0, srcVal.Len())
	for i := 0; i < srcVal.Len(); i++ {
		elem := srcVal.Index(i)
		row := make([]interface{}, elemType.NumField())
		for j := 0; j < elemType.NumField(); j++ {
			if elemType.Field(j).Tag.Get(tagName) == "" {
				return nil, fmt.Errorf("field %s.%s missing %q tag", elemType.Name(), elemType.Field(j).Name, tagName)
			}
			row[j] = elem.Field(j).Interface()
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// setFieldValue assigns a raw sheet cell to a struct field, converting from
// the string or numeric representation the Sheets API returns.
func setFieldValue(field reflect.Value, cell interface{}) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(strings.TrimSpace(cellString(cell)))

	case reflect.Int, reflect.Int64:
		switch v := cell.(type) {
		case float64:
			field.SetInt(int64(v))
		default:
			s := strings.TrimSpace(cellString(cell))
			if s == "" {
				field.SetInt(0)
				return nil
			}
			n, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return fmt.Errorf("failed to parse int from %q: %w", s, err)
			}
			field.SetInt(n)
		}

	case reflect.Float64:
		switch v := cell.(type) {
		case float64:
			field.SetFloat(v)
		default:
			s := strings.TrimSpace(cellString(cell))
			if s == "" {
				field.SetFloat(0)
				return nil
			}
			// Sheets in some locales render decimals with a comma
			s = strings.ReplaceAll(s, ",", ".")
			f, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return fmt.Errorf("failed to parse float from %q: %w", s, err)
			}
			field.SetFloat(f)
		}

	case reflect.Bool:
		switch v := cell.(type) {
		case bool:
			field.SetBool(v)
		default:
			s := strings.TrimSpace(cellString(cell))
			if s == "" {
				field.SetBool(false)
				return nil
			}
			b, err := strconv.ParseBool(s)
			if err != nil {
				return fmt.Errorf("failed to parse bool from %q: %w", s, err)
			}
			field.SetBool(b)
		}

	default:
		return fmt.Errorf("unsupported field kind %s", field.Kind())
	}

	return nil
}

// cellString renders a raw cell as a string regardless of its wire type.
func cellString(cell interface{}) string {
	switch v := cell.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
