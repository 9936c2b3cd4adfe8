// Package ownership decides which side of a demo conversation a message
// belongs to. The answer depends on the active role, so it is computed on
// every render and never cached per message.
package ownership

import "github.com/EmpoweredVote/MidwifeMatch-Backend/internal/models"

const (
	PatientSenderID = "patient-anna"
	MidwifeSenderID = "midwife-maria"
)

// senderByRole is the only place a role is bound to a sender id. Guest has
// no entry and owns nothing.
var senderByRole = map[models.Role]string{
	models.RolePatient: PatientSenderID,
	models.RoleMidwife: MidwifeSenderID,
}

// SenderID returns the canonical sender id of role.
func SenderID(role models.Role) (string, bool) {
	id, ok := senderByRole[role]
	return id, ok
}

// IsOwnMessage reports whether msg was written by the active role.
func IsOwnMessage(msg models.Message, activeRole models.Role) bool {
	id, ok := senderByRole[activeRole]
	return ok && msg.SenderID == id
}

// Row is a message ready for rendering.
type Row struct {
	models.Message
	Own bool `json:"own"`
}

// Annotate pairs each message with its ownership under activeRole.
func Annotate(msgs []models.Message, activeRole models.Role) []Row {
	rows := make([]Row, len(msgs))
	for i, m := range msgs {
		rows[i] = Row{Message: m, Own: IsOwnMessage(m, activeRole)}
	}
	return rows
}
