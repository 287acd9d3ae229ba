// Package routeguard classifies client-side routes and decides navigation
// policy. The decision is a pure function of (path, authenticated) and the
// static table below; clients fetch it so there is one source of truth.
package routeguard

import "strings"

type Class string

const (
	// ClassProtected requires an authenticated session.
	ClassProtected Class = "protected"
	// ClassPublicOnly is for auth pages that signed-in users should skip.
	ClassPublicOnly Class = "publicOnly"
	// ClassPublic is reachable by anyone.
	ClassPublic Class = "public"
)

type Action string

const (
	ActionAllow             Action = "allow"
	ActionRedirectLogin     Action = "redirect-to-login"
	ActionRedirectDashboard Action = "redirect-to-dashboard"
)

var exactRoutes = map[string]Class{
	"/":                ClassPublic,
	"/about":           ClassPublic,
	"/contact":         ClassPublic,
	"/privacy":         ClassPublic,
	"/terms":           ClassPublic,
	"/plans":           ClassPublic,
	"/signin":          ClassPublicOnly,
	"/signup":          ClassPublicOnly,
	"/verify":          ClassPublicOnly,
	"/forgot-password": ClassPublicOnly,
	"/reset-password":  ClassPublicOnly,
}

var prefixRoutes = []struct {
	prefix string
	class  Class
}{
	{"/dashboard", ClassProtected},
	{"/chat", ClassProtected},
	{"/friends", ClassProtected},
	{"/notifications", ClassProtected},
	{"/settings", ClassProtected},
	{"/profile", ClassProtected},
}

// Classify returns the route class for path. Unknown paths are protected.
func Classify(path string) Class {
	path = normalize(path)
	if class, ok := exactRoutes[path]; ok {
		return class
	}
	for _, rule := range prefixRoutes {
		if path == rule.prefix || strings.HasPrefix(path, rule.prefix+"/") {
			return rule.class
		}
	}
	return ClassProtected
}

// Decide maps (path, authenticated) to a navigation action.
func Decide(path string, authenticated bool) Action {
	switch Classify(path) {
	case ClassProtected:
		if !authenticated {
			return ActionRedirectLogin
		}
	case ClassPublicOnly:
		if authenticated {
			return ActionRedirectDashboard
		}
	}
	return ActionAllow
}

func normalize(path string) string {
	if path == "" {
		return "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	return path
}
