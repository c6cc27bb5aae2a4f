package domain

import "context"

// Operation names used for authorization checks. Each operation declares the
// role set allowed to perform it; the check is a capability lookup against
// the caller's explicitly fetched role.
const (
	OperationUpload   = "evidence:upload"
	OperationConfirm  = "evidence:confirm"
	OperationRetrieve = "evidence:retrieve"
	OperationSync     = "evidence:sync"
	OperationExport   = "evidence:export"
)

type Principal struct {
	Subject string
	Role    string
}

type Authorizer interface {
	Require(ctx context.Context, principal Principal, operation string) error
}
