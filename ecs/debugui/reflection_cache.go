package debugui

import "reflect"

// FieldInfo describes one exported field of a component struct.
type FieldInfo struct {
	Name      string
	Type      reflect.Type
	Index     int
	IsPointer bool
	IsStruct  bool
	// ReadOnly fields are shown but have no editor: functions, channels, slices and maps.
	ReadOnly bool
}

// fieldCache memoizes FieldInfo per component type. It is only used from the frame loop, so it
// needs no locking.
type fieldCache map[reflect.Type][]FieldInfo

func (c fieldCache) fields(t reflect.Type) []FieldInfo {
	if cached, ok := c[t]; ok {
		return cached
	}

	var fields []FieldInfo
	if t.Kind() == reflect.Struct {
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)
			if !field.IsExported() {
				continue
			}

			fieldType := field.Type
			isPointer := fieldType.Kind() == reflect.Ptr
			if isPointer {
				fieldType = fieldType.Elem()
			}

			switch fieldType.Kind() {
			case reflect.Func, reflect.Chan, reflect.Slice, reflect.Map, reflect.UnsafePointer:
				fields = append(fields, FieldInfo{Name: field.Name, Type: fieldType, Index: i, IsPointer: isPointer, ReadOnly: true})
			default:
				fields = append(fields, FieldInfo{
					Name:      field.Name,
					Type:      fieldType,
					Index:     i,
					IsPointer: isPointer,
					IsStruct:  fieldType.Kind() == reflect.Struct,
				})
			}
		}
	}

	c[t] = fields
	return fields
}
