package domain

// PolicyInput is the document handed to the role policy engine for one
// authorization decision.
type PolicyInput struct {
	Operation string `json:"operation"`
	Role      string `json:"role"`
	Subject   string `json:"subject,omitempty"`
	CaseID    string `json:"case_id,omitempty"`
}

type PolicyDeny struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}

type PolicyResult struct {
	Allow bool         `json:"allow"`
	Deny  []PolicyDeny `json:"deny,omitempty"`
}
