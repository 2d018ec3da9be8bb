// Package web implements the HTTP surface of the console: routing, the
// ordered route-authorization table, principal resolution, and the handlers.
package web

import (
	"strings"

	"github.com/dmitrijs2005/poseidon/internal/server/models"
)

// Decision is the outcome of authorizing a request path.
type Decision int

const (
	// DecisionPermit lets the request through to its handler.
	DecisionPermit Decision = iota
	// DecisionRedirectLogin means no valid principal is present on a gated
	// path; the caller is sent to the login form with a return hint.
	DecisionRedirectLogin
	// DecisionForbidden means the principal is authenticated but lacks the
	// required authority. No redirect: the credentials are fine, the
	// privilege is not.
	DecisionForbidden
)

// Requirement states what a rule demands of the current principal.
// Public permits anonymously. Otherwise, Authorities lists the accepted
// authorities; an empty list admits any authenticated principal.
type Requirement struct {
	Public      bool
	Authorities []string
}

// Rule pairs a path pattern with its requirement. A pattern is either an
// exact path or a subtree pattern ending in "/*"; the special pattern "/**"
// matches everything.
type Rule struct {
	Pattern  string
	Requires Requirement
}

// Policy is an ordered rule table. Rules are evaluated top to bottom and the
// first matching pattern wins, so overlapping patterns behave predictably:
// put the specific ones first.
type Policy struct {
	rules []Rule
}

// NewPolicy builds a Policy from an ordered rule list.
func NewPolicy(rules []Rule) *Policy {
	return &Policy{rules: rules}
}

// DefaultPolicy is the console's route table:
//  1. public paths (home, login/logout, error page, static assets);
//  2. reference-data paths for any USER or ADMIN authority;
//  3. user management for ADMIN only;
//  4. everything else requires authentication.
func DefaultPolicy() *Policy {
	userOrAdmin := []string{
		models.AuthorityPrefix + models.RoleUser,
		models.AuthorityPrefix + models.RoleAdmin,
	}
	adminOnly := []string{models.AuthorityPrefix + models.RoleAdmin}

	return NewPolicy([]Rule{
		{Pattern: "/", Requires: Requirement{Public: true}},
		{Pattern: "/login", Requires: Requirement{Public: true}},
		{Pattern: "/logout", Requires: Requirement{Public: true}},
		{Pattern: "/error", Requires: Requirement{Public: true}},
		{Pattern: "/static/*", Requires: Requirement{Public: true}},
		{Pattern: "/css/*", Requires: Requirement{Public: true}},
		{Pattern: "/api/login", Requires: Requirement{Public: true}},

		{Pattern: "/bidList/*", Requires: Requirement{Authorities: userOrAdmin}},
		{Pattern: "/curvePoint/*", Requires: Requirement{Authorities: userOrAdmin}},
		{Pattern: "/rating/*", Requires: Requirement{Authorities: userOrAdmin}},
		{Pattern: "/ruleName/*", Requires: Requirement{Authorities: userOrAdmin}},
		{Pattern: "/trade/*", Requires: Requirement{Authorities: userOrAdmin}},

		{Pattern: "/user/*", Requires: Requirement{Authorities: adminOnly}},

		{Pattern: "/**", Requires: Requirement{}},
	})
}

// Authorize evaluates the table for the given path and principal (nil for
// anonymous). Paths matching no rule are denied, but DefaultPolicy ends with
// a catch-all so that case only arises with custom tables.
func (p *Policy) Authorize(path string, principal *models.User) Decision {
	for _, rule := range p.rules {
		if !matches(rule.Pattern, path) {
			continue
		}
		return decide(rule.Requires, principal)
	}
	if principal == nil {
		return DecisionRedirectLogin
	}
	return DecisionForbidden
}

func decide(req Requirement, principal *models.User) Decision {
	if req.Public {
		return DecisionPermit
	}
	if principal == nil {
		return DecisionRedirectLogin
	}
	if len(req.Authorities) == 0 {
		return DecisionPermit
	}
	if principal.HasAnyAuthority(req.Authorities...) {
		return DecisionPermit
	}
	return DecisionForbidden
}

func matches(pattern, path string) bool {
	if pattern == "/**" {
		return true
	}
	if prefix, ok := strings.CutSuffix(pattern, "/*"); ok {
		return path == prefix || strings.HasPrefix(path, prefix+"/")
	}
	return path == pattern
}
