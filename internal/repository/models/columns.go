package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"exam-hub/internal/domain"
)

// StringSlice stores a list of ids or tags as a JSON array in a CLOB column.
type StringSlice []string

// Value implements the driver.Valuer interface
func (s StringSlice) Value() (driver.Value, error) {
	if s == nil {
		// nil is stored as "[]" so reads never see NULL
		return "[]", nil
	}
	return jsonValue(s)
}

// Scan implements the sql.Scanner interface
func (s *StringSlice) Scan(value interface{}) error {
	*s = StringSlice{}
	return scanJSON(value, s)
}

// OptionList stores question options as JSON.
type OptionList []domain.Option

func (o OptionList) Value() (driver.Value, error) {
	if o == nil {
		return "[]", nil
	}
	return jsonValue(o)
}

func (o *OptionList) Scan(value interface{}) error {
	*o = OptionList{}
	return scanJSON(value, o)
}

// ResourceList stores topic resources as JSON.
type ResourceList []domain.Resource

func (r ResourceList) Value() (driver.Value, error) {
	if r == nil {
		return "[]", nil
	}
	return jsonValue(r)
}

func (r *ResourceList) Scan(value interface{}) error {
	*r = ResourceList{}
	return scanJSON(value, r)
}

func jsonValue(v interface{}) (driver.Value, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// scanJSON decodes a JSON column. NULL, "" and "null" leave dest untouched.
func scanJSON(value interface{}, dest interface{}) error {
	if value == nil {
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("json column Scan: unsupported type " + fmt.Sprintf("%T", value))
	}

	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	return json.Unmarshal(data, dest)
}

// BoolToNumber maps a bool onto an Oracle NUMBER(1) flag.
func BoolToNumber(b bool) int {
	if b {
		return 1
	}
	return 0
}
