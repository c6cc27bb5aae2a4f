package policyopa

import (
	"context"
	"encoding/json"
	"errors"
	"sort"

	"github.com/open-policy-agent/opa/rego"

	"github.com/aggarwalhardik2005/forensic-ledger-guardian-sub002/internal/domain"
)

const defaultQuery = "data.guardian.policy.result"

// defaultPolicy mirrors the built-in role capability table in Rego so
// deployments can override authorization without a rebuild.
const defaultPolicy = `package guardian.policy

import rego.v1

operation_roles := {
	"evidence:upload": {"officer", "forensic"},
	"evidence:confirm": {"court"},
	"evidence:retrieve": {"court", "officer", "forensic", "lawyer"},
	"evidence:sync": {"court"},
	"evidence:export": {"court", "lawyer"},
}

default allow := false

allow if {
	input.subject != ""
	input.role in operation_roles[input.operation]
}

deny contains {"code": "MISSING_SUBJECT", "message": "subject is required"} if {
	input.subject == ""
}

deny contains {"code": "MISSING_ROLE", "message": "role not allowed for operation"} if {
	input.subject != ""
	not allow
}

result := {"allow": allow, "deny": deny}
`

// Engine evaluates role policy with OPA. It implements the same authorization
// contract as the static rbac table, selected by config.
type Engine struct {
	query rego.PreparedEvalQuery
}

// NewEngine prepares the embedded policy. NewEngineFromPath loads an operator
// supplied override instead.
func NewEngine(ctx context.Context) (*Engine, error) {
	return prepare(ctx, rego.Module("guardian_policy.rego", defaultPolicy))
}

func NewEngineFromPath(ctx context.Context, policyPath string) (*Engine, error) {
	if policyPath == "" {
		return nil, errors.New("policy path is required")
	}
	return prepare(ctx, rego.Load([]string{policyPath}, nil))
}

func prepare(ctx context.Context, source func(*rego.Rego)) (*Engine, error) {
	r := rego.New(
		rego.Query(defaultQuery),
		rego.StrictBuiltinErrors(true),
		source,
	)
	prepared, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, err
	}
	return &Engine{query: prepared}, nil
}

func (e *Engine) Evaluate(ctx context.Context, input domain.PolicyInput) (domain.PolicyResult, error) {
	if e == nil {
		return domain.PolicyResult{}, errors.New("policy engine is nil")
	}
	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return domain.PolicyResult{}, err
	}
	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return domain.PolicyResult{}, errors.New("empty policy result")
	}
	result, err := decodePolicyResult(results[0].Expressions[0].Value)
	if err != nil {
		return domain.PolicyResult{}, err
	}
	sort.Slice(result.Deny, func(i, j int) bool {
		if result.Deny[i].Code == result.Deny[j].Code {
			return result.Deny[i].Message < result.Deny[j].Message
		}
		return result.Deny[i].Code < result.Deny[j].Code
	})
	return result, nil
}

// Require adapts policy evaluation to the authorization contract used by the
// HTTP layer.
func (e *Engine) Require(ctx context.Context, principal domain.Principal, operation string) error {
	if principal.Subject == "" {
		return domain.ErrUnauthorized
	}
	result, err := e.Evaluate(ctx, domain.PolicyInput{
		Operation: operation,
		Role:      principal.Role,
		Subject:   principal.Subject,
	})
	if err != nil {
		return err
	}
	if !result.Allow {
		return domain.ErrForbidden
	}
	return nil
}

func decodePolicyResult(value any) (domain.PolicyResult, error) {
	payload, err := json.Marshal(value)
	if err != nil {
		return domain.PolicyResult{}, err
	}
	var result domain.PolicyResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return domain.PolicyResult{}, err
	}
	return result, nil
}

var _ domain.Authorizer = (*Engine)(nil)
