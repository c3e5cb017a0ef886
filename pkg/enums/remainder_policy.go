package enums

import (
	"fmt"
	"strings"
)

// RemainderPolicy selects who absorbs the leftover cents when an amount does not split evenly.
type RemainderPolicy string

const (
	RemainderPolicyMemberOrder RemainderPolicy = "member_order"
	RemainderPolicyPayer       RemainderPolicy = "payer"
)

var validRemainderPolicies = []RemainderPolicy{
	RemainderPolicyMemberOrder,
	RemainderPolicyPayer,
}

// IsValid reports whether the policy is recognized.
func (p RemainderPolicy) IsValid() bool {
	for _, candidate := range validRemainderPolicies {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseRemainderPolicy converts raw input into a RemainderPolicy.
func ParseRemainderPolicy(value string) (RemainderPolicy, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validRemainderPolicies {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid remainder policy %q", value)
}
