package policy

import (
	"github.com/xbcsmith/xzepr-sub005/types"
)

// wire schema of the external policy engine. Every evaluation posts one
// input document and reads back one result document.

type evalInput struct {
	Input inputBody `json:"input"`
}

type inputBody struct {
	User     wireUser     `json:"user"`
	Action   string       `json:"action"`
	Resource wireResource `json:"resource"`
}

type wireUser struct {
	UserID string   `json:"user_id"`
	Roles  []string `json:"roles"`
	Groups []string `json:"groups"`
}

type wireResource struct {
	ResourceType string   `json:"resource_type"`
	ResourceID   string   `json:"resource_id"`
	OwnerID      string   `json:"owner_id"`
	GroupID      *string  `json:"group_id"`
	Members      []string `json:"members"`
}

type evalOutput struct {
	Result *resultBody `json:"result"`
}

// resultBody uses pointers for required fields: a missing field must be
// rejected as malformed, never defaulted.
type resultBody struct {
	Allow    *bool         `json:"allow"`
	Reason   *string       `json:"reason"`
	Metadata *wireMetadata `json:"metadata"`
}

type wireMetadata struct {
	EvaluatedAt   *int64  `json:"evaluated_at"`
	PolicyVersion *string `json:"policy_version"`
	ResourceType  string  `json:"resource_type"`
	Action        string  `json:"action"`
}

func newEvalInput(req types.Request, facts types.ResourceFacts) evalInput {
	roles := make([]string, 0, len(req.Subject.Roles))
	for _, r := range req.Subject.Roles {
		roles = append(roles, string(r))
	}
	groups := make([]string, 0, len(req.Subject.GroupIDs))
	for _, g := range req.Subject.GroupIDs {
		groups = append(groups, string(g))
	}
	members := make([]string, 0, len(facts.Members))
	for m := range facts.Members {
		members = append(members, string(m))
	}

	var group *string
	if facts.Group != "" {
		s := string(facts.Group)
		group = &s
	}

	return evalInput{Input: inputBody{
		User: wireUser{
			UserID: string(req.Subject.UserID),
			Roles:  roles,
			Groups: groups,
		},
		Action: req.Action.String(),
		Resource: wireResource{
			ResourceType: string(req.Resource.Type),
			ResourceID:   string(req.Resource.ID),
			OwnerID:      string(facts.Owner),
			GroupID:      group,
			Members:      members,
		},
	}}
}

// decision validates the result document and maps it onto a Decision.
// Responses missing required fields are rejected, never defaulted or
// silently turned into an allow or a deny.
func (o evalOutput) decision() (types.Decision, error) {
	r := o.Result
	if r == nil || r.Allow == nil || r.Reason == nil || r.Metadata == nil {
		return types.Decision{}, ErrMalformed
	}
	if r.Metadata.EvaluatedAt == nil || r.Metadata.PolicyVersion == nil {
		return types.Decision{}, ErrMalformed
	}

	reason, e := parseReason(*r.Reason)
	if e != nil {
		return types.Decision{}, e
	}

	return types.Decision{
		Allow:         *r.Allow,
		Reason:        reason,
		EvaluatedAt:   timeFromUnixNano(*r.Metadata.EvaluatedAt),
		PolicyVersion: *r.Metadata.PolicyVersion,
	}, nil
}

func parseReason(s string) (types.Reason, error) {
	switch types.Reason(s) {
	case types.AdminOverride, types.OwnerMatch, types.GroupMemberMatch, types.Denied:
		return types.Reason(s), nil
	}
	return "", ErrMalformed
}
