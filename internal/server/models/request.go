package models

import "time"

// RequestType identifies the account-lifecycle operation a request asks for.
type RequestType string

const (
	TypeCreateUser    RequestType = "create_user"
	TypeChangePubkey  RequestType = "change_pubkey"
	TypeRenewPassword RequestType = "renew_password"
)

// RequestStatus is the request state machine:
//
//	new --[claim]--> in_progress --[worker]--> succeeded | failed
type RequestStatus string

const (
	StatusNew        RequestStatus = "new"
	StatusInProgress RequestStatus = "in_progress"
	StatusSucceeded  RequestStatus = "succeeded"
	StatusFailed     RequestStatus = "failed"
)

// Request is a pending or processed account-change request. RandomTag is
// fixed at creation and never changes, so the derived worker assignment is
// stable across retries.
type Request struct {
	ID          string
	IssuerID    string
	Type        RequestType
	Status      RequestStatus
	RandomTag   uint64
	FailureCode *int32
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedBy   string
	UpdatedAt   time.Time
}

// WorkerIndex derives the worker assignment. It is a pure function of
// immutable request data, so a re-dispatch after a rollback reproduces the
// same index.
func (r *Request) WorkerIndex(workerCount int) int {
	return int(r.RandomTag % uint64(workerCount))
}

// Payload is the type-specific content of a request. Exactly one payload row
// exists per request, keyed by the request ID, immutable once written.
type Payload interface {
	RequestType() RequestType
}

// CreateUserPayload asks for a new user account.
type CreateUserPayload struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	PubKey   []byte `json:"pubkey"`
}

func (CreateUserPayload) RequestType() RequestType { return TypeCreateUser }

// ChangePubkeyPayload rotates the public key of an existing user.
type ChangePubkeyPayload struct {
	UserID string `json:"user_id"`
	PubKey []byte `json:"pubkey"`
}

func (ChangePubkeyPayload) RequestType() RequestType { return TypeChangePubkey }

// RenewPasswordPayload resets the password of an existing user.
type RenewPasswordPayload struct {
	UserID string `json:"user_id"`
}

func (RenewPasswordPayload) RequestType() RequestType { return TypeRenewPassword }
