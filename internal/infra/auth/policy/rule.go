package policy

import (
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/gobwas/glob"
)

type Access string

const (
	AccessPublic        Access = "public"
	AccessAuthenticated Access = "authenticated"
	AccessAuthority     Access = "authority"
)

type Mode string

const (
	ModeAny Mode = "any"
	ModeAll Mode = "all"
)

// Rule is one row of the access table. An empty Methods list matches every
// method. Patterns are Ant-style: "*" matches one path segment, a trailing
// "/**" matches the prefix itself and anything below it.
type Rule struct {
	Methods     []string `yaml:"methods,omitempty"`
	Patterns    []string `yaml:"patterns"`
	Access      Access   `yaml:"access"`
	Authorities []string `yaml:"authorities,omitempty"`
	Mode        Mode     `yaml:"mode,omitempty"`

	matchers []glob.Glob
}

func (r *Rule) compile() error {
	if len(r.Patterns) == 0 {
		return fmt.Errorf("rule has no patterns")
	}
	switch r.Access {
	case AccessPublic, AccessAuthenticated:
		if len(r.Authorities) > 0 {
			return fmt.Errorf("%s rule must not list authorities", r.Access)
		}
	case AccessAuthority:
		if len(r.Authorities) == 0 {
			return fmt.Errorf("authority rule needs at least one authority")
		}
	default:
		return fmt.Errorf("unknown access %q", r.Access)
	}
	if r.Mode == "" {
		r.Mode = ModeAny
	}
	if r.Mode != ModeAny && r.Mode != ModeAll {
		return fmt.Errorf("unknown mode %q", r.Mode)
	}
	for i, m := range r.Methods {
		m = strings.ToUpper(strings.TrimSpace(m))
		if m == "" {
			return fmt.Errorf("empty method")
		}
		r.Methods[i] = m
	}
	r.matchers = make([]glob.Glob, 0, len(r.Patterns))
	for _, p := range r.Patterns {
		g, err := compilePattern(p)
		if err != nil {
			return fmt.Errorf("pattern %q: %w", p, err)
		}
		r.matchers = append(r.matchers, g)
	}
	return nil
}

func compilePattern(pattern string) (glob.Glob, error) {
	pattern = strings.TrimSpace(pattern)
	if !strings.HasPrefix(pattern, "/") {
		return nil, fmt.Errorf("must start with /")
	}
	if pattern == "/**" {
		return glob.Compile(pattern, '/')
	}
	if base, ok := strings.CutSuffix(pattern, "/**"); ok {
		return glob.Compile("{"+base+","+base+"/**}", '/')
	}
	return glob.Compile(pattern, '/')
}

func (r *Rule) matches(method, path string) bool {
	if len(r.Methods) > 0 && !slices.Contains(r.Methods, method) {
		return false
	}
	for _, m := range r.matchers {
		if m.Match(path) {
			return true
		}
	}
	return false
}

func (r *Rule) satisfiedBy(authorities []string) bool {
	if r.Access != AccessAuthority {
		return true
	}
	if r.Mode == ModeAll {
		for _, want := range r.Authorities {
			if !slices.Contains(authorities, want) {
				return false
			}
		}
		return true
	}
	for _, want := range r.Authorities {
		if slices.Contains(authorities, want) {
			return true
		}
	}
	return false
}

func (r Rule) String() string {
	methods := "*"
	if len(r.Methods) > 0 {
		methods = strings.Join(r.Methods, ",")
	}
	out := fmt.Sprintf("%-8s %-40s %s", methods, strings.Join(r.Patterns, ","), r.Access)
	if r.Access == AccessAuthority {
		out += fmt.Sprintf(" %s(%s)", r.Mode, strings.Join(r.Authorities, ","))
	}
	return out
}

var anyMethod []string

// DefaultRules reproduces the storefront route matrix. Order matters.
func DefaultRules() []Rule {
	const (
		user  = "ROLE_USER"
		admin = "ROLE_ADMIN"
	)
	return []Rule{
		{Methods: anyMethod, Patterns: []string{"/upload/**"}, Access: AccessPublic},
		{Methods: []string{http.MethodPost}, Patterns: []string{"/signup", "/logout", "/login", "/upload/*"}, Access: AccessPublic},
		{Methods: []string{http.MethodGet}, Patterns: []string{"/tags/**", "/certificates/**"}, Access: AccessPublic},
		{Methods: []string{http.MethodGet}, Patterns: []string{"/orders/**", "/token/**"}, Access: AccessAuthority, Authorities: []string{user, admin}, Mode: ModeAny},
		{Methods: []string{http.MethodPost}, Patterns: []string{"/orders/**"}, Access: AccessAuthority, Authorities: []string{user, admin}, Mode: ModeAny},
		{Methods: []string{http.MethodPost}, Patterns: []string{"/users/**"}, Access: AccessAuthority, Authorities: []string{admin}, Mode: ModeAny},
		{Methods: anyMethod, Patterns: []string{"/**"}, Access: AccessAuthority, Authorities: []string{admin}, Mode: ModeAny},
		{Methods: anyMethod, Patterns: []string{"/**"}, Access: AccessAuthenticated},
	}
}
