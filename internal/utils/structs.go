package utils

import (
	"reflect"
)

var ColumnTag = "db"

// StructTagValues lists the column names of a row struct in field order.
func StructTagValues(input any) []string {
	result := make([]string, 0)
	eachColumn(input, func(column string, _ reflect.Value) {
		result = append(result, column)
	})
	return result
}

// StructToMap maps column names to field values, skipping the named columns.
func StructToMap(input any, skip ...string) map[string]any {
	result := make(map[string]any)
	eachColumn(input, func(column string, value reflect.Value) {
		for _, s := range skip {
			if s == column {
				return
			}
		}
		result[column] = value.Interface()
	})
	return result
}

func eachColumn(input any, fn func(column string, value reflect.Value)) {
	value := reflect.ValueOf(input)
	if value.Kind() == reflect.Ptr {
		value = value.Elem()
	}

	if value.Kind() != reflect.Struct {
		panic("input must be a pointer to a struct or a struct")
	}

	valueType := value.Type()
	for i := 0; i < value.NumField(); i++ {
		field := valueType.Field(i)
		if field.PkgPath != "" {
			continue
		}

		column := field.Tag.Get(ColumnTag)
		if column == "" || column == "-" {
			continue
		}

		fn(column, value.Field(i))
	}
}
