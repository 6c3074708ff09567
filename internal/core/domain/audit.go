package domain

import "time"

// AuthEventKind names a security-relevant outcome.
type AuthEventKind string

const (
	AuthEventRegistered     AuthEventKind = "registered"
	AuthEventLoginSucceeded AuthEventKind = "login_succeeded"
	AuthEventLoginFailed    AuthEventKind = "login_failed"
	AuthEventRolePromoted   AuthEventKind = "role_promoted"
)

// AuthEvent is one entry of the audit trail.
type AuthEvent struct {
	Kind      AuthEventKind
	Username  string
	UserID    string
	Role      Role
	ActorID   string
	Timestamp time.Time
}
