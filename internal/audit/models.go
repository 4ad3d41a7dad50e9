package audit

import "time"

// Action identifies an auditable registration lifecycle step.
type Action string

const (
	ActionSubmitted     Action = "registration.submitted"
	ActionRedeemed      Action = "registration.confirmed"
	ActionResent        Action = "registration.resent"
	ActionApproved      Action = "registration.approved"
	ActionRevoked       Action = "registration.revoked"
	ActionRoleChanged   Action = "registration.role_changed"
	ActionDirectCreated Action = "registration.direct_created"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID        string
	Timestamp time.Time
	Action    Action
	Email     string
	// Actor is the authenticated admin driving the action, empty for
	// self-service steps like submit and confirm.
	Actor     string
	Role      string
	RequestID string
	ClientIP  string
	Detail    string
}
