package cnst

import "strings"

const (
	// ActorSystem stamps rows created without a known user
	ActorSystem = "System"
	// ActorPublic stamps inspections submitted through the public QR flow
	ActorPublic = "public"
	// ActorAdmin stamps inspections submitted from the admin area without a user name
	ActorAdmin = "admin"
	// DefaultInspectorName is used when an inspection is submitted without an inspector name
	DefaultInspectorName = "Anonymous"
)

// ContextKeyActor is the gin context key holding the authenticated user name
const ContextKeyActor = "actor"

// ActorOr returns actor, or fallback when actor is blank.
func ActorOr(actor, fallback string) string {
	if actor = strings.TrimSpace(actor); actor != "" {
		return actor
	}
	return fallback
}
