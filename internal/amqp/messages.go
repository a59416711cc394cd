package amqp

import (
	"encoding/json"
	"time"
)

// IngestionJobMessage asks the worker to ingest a statement file for a
// property. The worker reads the file itself; the message stays small.
type IngestionJobMessage struct {
	RunID      string    `json:"run_id"`
	PropertyID string    `json:"property_id"`
	Path       string    `json:"path"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewIngestionJobMessage creates a job message for one statement file.
func NewIngestionJobMessage(runID, propertyID, path string) *IngestionJobMessage {
	return &IngestionJobMessage{
		RunID:      runID,
		PropertyID: propertyID,
		Path:       path,
		Timestamp:  time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *IngestionJobMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// IngestionJobMessageFromJSON decodes a job message.
func IngestionJobMessageFromJSON(data []byte) (*IngestionJobMessage, error) {
	var msg IngestionJobMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// IngestionCompletedMessage announces a committed ingestion run so
// downstream consumers (dashboards, sync jobs) can refresh.
type IngestionCompletedMessage struct {
	RunID               string    `json:"run_id"`
	PropertyID          string    `json:"property_id"`
	AccountsUpserted    int       `json:"accounts_upserted"`
	MonthlyDataUpserted int       `json:"monthly_data_upserted"`
	Timestamp           time.Time `json:"timestamp"`
}

// NewIngestionCompletedMessage creates a completion event for one run.
func NewIngestionCompletedMessage(runID, propertyID string, accounts, facts int) *IngestionCompletedMessage {
	return &IngestionCompletedMessage{
		RunID:               runID,
		PropertyID:          propertyID,
		AccountsUpserted:    accounts,
		MonthlyDataUpserted: facts,
		Timestamp:           time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *IngestionCompletedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}
