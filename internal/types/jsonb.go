package types

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Compile-time interface assertions.
// These ensure all JSONB types implement both sql.Scanner and driver.Valuer,
// catching any method signature drift at compile time rather than at runtime.
// Scan is on pointer receivers; Value is on value receivers.
var (
	_ sql.Scanner   = (*RecommendationList)(nil)
	_ driver.Valuer = RecommendationList(nil)
	_ sql.Scanner   = (*StringList)(nil)
	_ driver.Valuer = StringList(nil)
)

// scanJSONB is a generic helper that scans a JSONB database value into a Go pointer.
// It handles nil values, []byte, and string representations from different database drivers.
func scanJSONB(dest interface{}, value interface{}) error {
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
		return fmt.Errorf("jsonb: unsupported scan type %T", value)
	}
	return json.Unmarshal(data, dest)
}

// Scan implements the sql.Scanner interface for reading JSONB from the database.
func (rl *RecommendationList) Scan(value interface{}) error {
	if value == nil {
		*rl = nil
		return nil
	}
	return scanJSONB(rl, value)
}

// Value implements the driver.Valuer interface for writing JSONB to the database.
func (rl RecommendationList) Value() (driver.Value, error) {
	if rl == nil {
		return nil, nil
	}
	return json.Marshal(rl)
}

// Scan implements the sql.Scanner interface for reading JSONB from the database.
func (sl *StringList) Scan(value interface{}) error {
	if value == nil {
		*sl = nil
		return nil
	}
	return scanJSONB(sl, value)
}

// Value implements the driver.Valuer interface for writing JSONB to the database.
func (sl StringList) Value() (driver.Value, error) {
	if sl == nil {
		return nil, nil
	}
	return json.Marshal(sl)
}
