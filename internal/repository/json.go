package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
)

// marshalJSONColumn serializes a value into a nullable TEXT column.
func marshalJSONColumn(v interface{}) (sql.NullString, error) {
	switch t := v.(type) {
	case map[string]interface{}:
		if t == nil {
			return sql.NullString{}, nil
		}
	case []string:
		if t == nil {
			return sql.NullString{}, nil
		}
	case nil:
		return sql.NullString{}, nil
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("failed to marshal json column: %v", err)
	}
	return sql.NullString{String: string(raw), Valid: true}, nil
}

// unmarshalJSONColumn decodes a nullable TEXT column into dst, leaving dst
// untouched for NULL.
func unmarshalJSONColumn(src sql.NullString, dst interface{}) error {
	if !src.Valid || src.String == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(src.String), dst); err != nil {
		return fmt.Errorf("failed to unmarshal json column: %v", err)
	}
	return nil
}
