package userstore

import (
	"errors"

	jsoniter "github.com/json-iterator/go"
)

// User is one row of a tenant's user table: the backend-assigned id plus the
// open property bag formed by the tenant's current schema.
type User struct {
	Project    string         `json:"project"`
	ID         int64          `json:"id"`
	Properties map[string]any `json:"properties"`
}

// ToJSON serializes the user for transport.
func (u User) ToJSON() ([]byte, error) {
	return jsoniter.ConfigFastest.Marshal(u)
}

// PropertiesFromJSON decodes a JSON object into a property map, as accepted
// by bulk property writes.
func PropertiesFromJSON(payload []byte) (map[string]any, error) {
	if !jsoniter.ConfigFastest.Valid(payload) {
		return nil, ErrInvalidPropertiesJSON
	}

	properties := make(map[string]any)
	if err := jsoniter.ConfigFastest.Unmarshal(payload, &properties); err != nil {
		return nil, errors.Join(ErrInvalidPropertiesJSON, err)
	}

	return properties, nil
}
