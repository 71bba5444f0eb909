package types

import (
	"fmt"
	"strings"
)

// DataType represents a column data type.
type DataType uint8

const (
	TypeUInt8 DataType = iota
	TypeUInt16
	TypeUInt32
	TypeUInt64
	TypeInt8
	TypeInt16
	TypeInt32
	TypeInt64
	TypeFloat32
	TypeFloat64
	TypeString
	TypeDate     // calendar date, day precision
	TypeDateTime // date and time-of-day, second precision
)

// TypeInfo holds metadata about a data type.
type TypeInfo struct {
	Type DataType
	Name string
}

var typeInfoList = []TypeInfo{
	{TypeUInt8, "UInt8"},
	{TypeUInt16, "UInt16"},
	{TypeUInt32, "UInt32"},
	{TypeUInt64, "UInt64"},
	{TypeInt8, "Int8"},
	{TypeInt16, "Int16"},
	{TypeInt32, "Int32"},
	{TypeInt64, "Int64"},
	{TypeFloat32, "Float32"},
	{TypeFloat64, "Float64"},
	{TypeString, "String"},
	{TypeDate, "Date"},
	{TypeDateTime, "DateTime"},
}

// TypeInfoMap maps DataType to its TypeInfo.
var TypeInfoMap map[DataType]TypeInfo

// typeNameMap maps lowercase type name to DataType for parsing.
var typeNameMap map[string]DataType

func init() {
	TypeInfoMap = make(map[DataType]TypeInfo, len(typeInfoList))
	typeNameMap = make(map[string]DataType, len(typeInfoList))
	for _, ti := range typeInfoList {
		TypeInfoMap[ti.Type] = ti
		typeNameMap[strings.ToLower(ti.Name)] = ti.Type
	}
}

// ParseDataType converts a type name string (case-insensitive) to DataType.
func ParseDataType(name string) (DataType, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	dt, ok := typeNameMap[n]
	if !ok {
		return 0, fmt.Errorf("unknown data type: %s", name)
	}
	return dt, nil
}

// Name returns the string name of the DataType.
func (dt DataType) Name() string {
	if ti, ok := TypeInfoMap[dt]; ok {
		return ti.Name
	}
	return "Unknown"
}

// IsTime returns true for the types usable as a time partition key.
func (dt DataType) IsTime() bool {
	return dt == TypeDate || dt == TypeDateTime
}

// IsNumeric returns true for integer and float types.
func (dt DataType) IsNumeric() bool {
	switch dt {
	case TypeUInt8, TypeUInt16, TypeUInt32, TypeUInt64,
		TypeInt8, TypeInt16, TypeInt32, TypeInt64,
		TypeFloat32, TypeFloat64:
		return true
	}
	return false
}
