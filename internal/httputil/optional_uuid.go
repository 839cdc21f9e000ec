package httputil

import (
	"bytes"
	"encoding/json"

	"github.com/google/uuid"
)

// OptionalUUID tracks presence and value of a nullable id field:
//   - Present=false: field absent from JSON
//   - Present=true, Value=nil: field is JSON null
//   - Present=true, Value=&id: field holds an id
type OptionalUUID struct {
	Present bool
	Value   *uuid.UUID
}

// UnmarshalJSON implements json.Unmarshaler.
// When this method is called, the field was present in the JSON.
func (o *OptionalUUID) UnmarshalJSON(data []byte) error {
	o.Present = true

	if string(bytes.TrimSpace(data)) == "null" {
		o.Value = nil
		return nil
	}

	var id uuid.UUID
	if err := json.Unmarshal(data, &id); err != nil {
		return err
	}
	o.Value = &id
	return nil
}
