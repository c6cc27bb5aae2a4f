package rbac

import (
	"context"
	"errors"

	"github.com/aggarwalhardik2005/forensic-ledger-guardian-sub002/internal/domain"
)

// Role names as stored in the user directory.
const (
	RoleCourt    = "court"
	RoleOfficer  = "officer"
	RoleForensic = "forensic"
	RoleLawyer   = "lawyer"
)

// operationRoles declares, per operation, the roles allowed to perform it.
// Confirmation is reserved to the court; field roles submit, every case role
// may retrieve.
var operationRoles = map[string]map[string]bool{
	domain.OperationUpload: {
		RoleOfficer:  true,
		RoleForensic: true,
	},
	domain.OperationConfirm: {
		RoleCourt: true,
	},
	domain.OperationRetrieve: {
		RoleCourt:    true,
		RoleOfficer:  true,
		RoleForensic: true,
		RoleLawyer:   true,
	},
	domain.OperationSync: {
		RoleCourt: true,
	},
	domain.OperationExport: {
		RoleCourt:  true,
		RoleLawyer: true,
	},
}

type AuthzError struct {
	Code string
	Err  error
}

func (e *AuthzError) Error() string {
	if e == nil {
		return ""
	}
	return e.Code
}

func (e *AuthzError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

type Authorizer struct{}

func NewAuthorizer() *Authorizer {
	return &Authorizer{}
}

func (a *Authorizer) Require(_ context.Context, principal domain.Principal, operation string) error {
	if principal.Subject == "" {
		return domain.ErrUnauthorized
	}
	if operation == "" {
		return nil
	}
	allowed, known := operationRoles[operation]
	if !known {
		return &AuthzError{Code: "UNKNOWN_OPERATION", Err: domain.ErrForbidden}
	}
	if principal.Role == "" || !allowed[principal.Role] {
		return &AuthzError{Code: "MISSING_ROLE", Err: domain.ErrForbidden}
	}
	return nil
}

func IsAuthzError(err error) (*AuthzError, bool) {
	var authz *AuthzError
	if errors.As(err, &authz) {
		return authz, true
	}
	return nil, false
}

var _ domain.Authorizer = (*Authorizer)(nil)
