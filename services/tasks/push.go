package tasks

import (
	"encoding/json"
	"time"

	"campusbook/models"

	"github.com/hibiken/asynq"
)

const TypeSendPush = "push:send"

// NewPushTask builds an asynq task carrying a push delivery. A zero
// fireAt enqueues for immediate processing.
func NewPushTask(payload models.PushPayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeSendPush, b)

	var opts []asynq.Option
	if !fireAt.IsZero() {
		opts = append(opts, asynq.ProcessAt(fireAt))
	}
	// The dedup ledger upstream already guarantees at-most-once firing;
	// a failed delivery stays failed.
	opts = append(opts, asynq.MaxRetry(0))

	return task, opts, nil
}
