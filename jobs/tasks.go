package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeReceiptEmail is the task type for mailing a sale receipt.
	TaskTypeReceiptEmail = "receipt:email"
	// TaskTypeSalesRecap is the task type for the nightly sales recap.
	TaskTypeSalesRecap = "sales:recap"
)

// ReceiptEmailPayload names the sale whose receipt should go out.
type ReceiptEmailPayload struct {
	Invoice string `json:"invoice"`
}

// NewReceiptEmailTask constructs an Asynq task.
func NewReceiptEmailTask(payload ReceiptEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeReceiptEmail, data), nil
}

// SalesRecapPayload selects the day to recap; empty means yesterday.
type SalesRecapPayload struct {
	Date string `json:"date"`
}

// NewSalesRecapTask constructs an Asynq task.
func NewSalesRecapTask(payload SalesRecapPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSalesRecap, data), nil
}
