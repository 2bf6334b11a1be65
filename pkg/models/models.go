package models

import (
	"time"
)

// SlotStatus defines the lifecycle states of a slot.
type SlotStatus string

const (
	Available SlotStatus = "AVAILABLE"
	Reserved  SlotStatus = "RESERVED"
	Consumed  SlotStatus = "CONSUMED"
)

// Slot represents a single unit of inventory in a pool.
// Status is always stored. The DynamoDB store also writes an avail_pool_id
// attribute. That attribute is removed whenever the slot leaves AVAILABLE,
// which keeps the available-slots GSI sparse. See pkg/storage/dynamodb for
// the query this enables.
type Slot struct {
	Id       string     `dynamodbav:"id"`
	PoolId   string     `dynamodbav:"pool_id"`
	Status   SlotStatus `dynamodbav:"status,omitempty"`
	LockedBy *string    `dynamodbav:"locked_by,omitempty"`
	LockedAt *time.Time `dynamodbav:"locked_at,omitempty"`
}

// PoolConfig holds the per-pool runtime parameters consumed by the Bridge
// worker. The Reaper does not read it; its threshold comes from process
// configuration.
type PoolConfig struct {
	PoolId               string `dynamodbav:"pool_id"`
	BatchSize            int32  `dynamodbav:"batch_size"`
	VisibilityTimeout    int32  `dynamodbav:"visibility_timeout"`
	MaxRetries           int32  `dynamodbav:"max_retries"`
	IsActive             bool   `dynamodbav:"is_active"`
	ValidationWebhookURL string `dynamodbav:"validation_webhook_url,omitempty"`
	CommitRPCName        string `dynamodbav:"commit_rpc_name"`
	CommitWebhookURL     string `dynamodbav:"commit_webhook_url,omitempty"`
}

// DefaultPoolConfig returns the spec-mandated defaults for a pool that has
// never had its configuration set explicitly.
func DefaultPoolConfig(poolID string) PoolConfig {
	return PoolConfig{
		PoolId:            poolID,
		BatchSize:         100,
		VisibilityTimeout: 45,
		MaxRetries:        10,
		IsActive:          true,
		CommitRPCName:     "finalize_transaction",
	}
}

// MessageState is the state machine embedded in every intake message
// payload. Keeping it in the payload (rather than a side table) avoids a
// second synchronization surface across redeliveries.
type MessageState string

const (
	StateQueued    MessageState = "queued"
	StateValidated MessageState = "validated"
	StateCommitted MessageState = "committed"
)

// IntakePayload is the body of a message on intake_queue / intake_dlq.
type IntakePayload struct {
	PoolId     string       `json:"pool_id" dynamodbav:"pool_id"`
	ResourceId string       `json:"resource_id" dynamodbav:"resource_id"`
	UserId     string       `json:"user_id" dynamodbav:"user_id"`
	State      MessageState `json:"state" dynamodbav:"state"`
}

// Envelope wraps a payload with the bookkeeping fields the queue attaches on
// delivery.
type Envelope struct {
	MsgId      int64         `dynamodbav:"msg_id"`
	Payload    IntakePayload `dynamodbav:"payload"`
	ReadCt     int32         `dynamodbav:"read_ct"`
	EnqueuedAt time.Time     `dynamodbav:"enqueued_at"`
	VisibleAt  time.Time     `dynamodbav:"visible_at"`
}

// DLQMessage is an Envelope enriched with provenance once it is routed to
// the dead-letter queue.
type DLQMessage struct {
	Envelope
	OriginalMsgId int64     `dynamodbav:"original_msg_id"`
	FinalReadCt   int32     `dynamodbav:"final_read_ct"`
	RoutedToDLQAt time.Time `dynamodbav:"routed_to_dlq_at"`
	Reason        string    `dynamodbav:"reason,omitempty"`
}

// LedgerRecord is the authoritative confirmed-record shape in the external
// ledger datastore, keyed by resource_id.
type LedgerRecord struct {
	ResourceId  string    `db:"resource_id"`
	PoolId      string    `db:"pool_id"`
	UserId      string    `db:"user_id"`
	ConfirmedAt time.Time `db:"confirmed_at"`
}

// DrainSummary is the structured result of one Bridge worker invocation.
type DrainSummary struct {
	Processed int `json:"processed"`
	DLQ       int `json:"dlq"`
	Total     int `json:"total"`
}
