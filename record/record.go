package record

import (
	"encoding/json"
	"fmt"
	"time"
)

// Record is the common trait of every business entity: a client-generated
// unique id within its collection and an optional tenant scope. All
// concrete record types implement it with pointer receivers.
type Record interface {
	// RecordID returns the entity's unique identifier within its collection.
	RecordID() string

	// Organization returns the tenant id, or "" when unscoped.
	Organization() string

	// SetOrganization stamps the tenant id. The coordinator calls it
	// before a record is sent to the remote gateway.
	SetOrganization(orgID string)

	// ModifiedAt returns the last modification time, used by the
	// PreferNewer conflict policy.
	ModifiedAt() time.Time

	// Touch updates the modification time. The coordinator calls it on
	// every update.
	Touch()
}

// Tenant is the embeddable tenant-scope trait.
type Tenant struct {
	OrganizationID string `json:"organization_id,omitempty"`
}

// Organization implements Record.
func (t Tenant) Organization() string { return t.OrganizationID }

// SetOrganization implements Record.
func (t *Tenant) SetOrganization(orgID string) { t.OrganizationID = orgID }

// EncodeList serializes a record slice as a JSON array. A nil or empty
// slice encodes as "[]" so a persisted collection is never JSON null.
func EncodeList[T Record](records []T) ([]byte, error) {
	if len(records) == 0 {
		return []byte("[]"), nil
	}
	data, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("record: encode list: %w", err)
	}
	return data, nil
}

// DecodeList parses a JSON array into a record slice.
func DecodeList[T Record](data []byte) ([]T, error) {
	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("record: decode list: %w", err)
	}
	return records, nil
}
