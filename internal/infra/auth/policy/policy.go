package policy

import (
	"errors"
	"fmt"
	"strings"

	"giftstore/internal/domain"
)

type Outcome int

const (
	Allow Outcome = iota
	Unauthenticated
	Forbidden
)

func (o Outcome) String() string {
	switch o {
	case Allow:
		return "allow"
	case Unauthenticated:
		return "unauthenticated"
	case Forbidden:
		return "forbidden"
	}
	return "unknown"
}

// NoRule marks a decision taken by the implicit "must be authenticated"
// default.
const NoRule = -1

type Decision struct {
	Outcome Outcome
	Rule    int
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

func IsAuthzError(err error) (*AuthzError, bool) {
	var authz *AuthzError
	if errors.As(err, &authz) {
		return authz, true
	}
	return nil, false
}

// Err converts a non-allow decision into an error callers can map to a
// status code.
func (d Decision) Err() error {
	switch d.Outcome {
	case Allow:
		return nil
	case Unauthenticated:
		return domain.ErrUnauthorized
	default:
		return &AuthzError{Code: "MISSING_AUTHORITY", Err: domain.ErrForbidden}
	}
}

// Policy is an immutable, ordered rule table. The first rule matching the
// request method and path governs it.
type Policy struct {
	rules []Rule
}

func New(rules []Rule) (*Policy, error) {
	compiled := make([]Rule, len(rules))
	for i, r := range rules {
		r.Methods = append([]string(nil), r.Methods...)
		r.Patterns = append([]string(nil), r.Patterns...)
		r.Authorities = append([]string(nil), r.Authorities...)
		if err := r.compile(); err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		compiled[i] = r
	}
	return &Policy{rules: compiled}, nil
}

func Default() *Policy {
	p, err := New(DefaultRules())
	if err != nil {
		panic(fmt.Sprintf("default access policy: %v", err))
	}
	return p
}

// Match returns the index of the first rule matching the request, or NoRule.
func (p *Policy) Match(method, path string) int {
	method = strings.ToUpper(method)
	for i := range p.rules {
		if p.rules[i].matches(method, path) {
			return i
		}
	}
	return NoRule
}

func (p *Policy) Decide(method, path string, sc domain.SecurityContext) Decision {
	idx := p.Match(method, path)
	if idx == NoRule {
		if sc.IsAuthenticated() {
			return Decision{Outcome: Allow, Rule: NoRule}
		}
		return Decision{Outcome: Unauthenticated, Rule: NoRule}
	}
	rule := &p.rules[idx]
	switch rule.Access {
	case AccessPublic:
		return Decision{Outcome: Allow, Rule: idx}
	case AccessAuthenticated:
		if !sc.IsAuthenticated() {
			return Decision{Outcome: Unauthenticated, Rule: idx}
		}
		return Decision{Outcome: Allow, Rule: idx}
	}
	if !sc.IsAuthenticated() {
		return Decision{Outcome: Unauthenticated, Rule: idx}
	}
	if !rule.satisfiedBy(sc.Authorities) {
		return Decision{Outcome: Forbidden, Rule: idx}
	}
	return Decision{Outcome: Allow, Rule: idx}
}

func (p *Policy) Rules() []Rule {
	out := make([]Rule, len(p.rules))
	copy(out, p.rules)
	return out
}
