package ownership_test

import (
	"testing"

	"github.com/EmpoweredVote/MidwifeMatch-Backend/internal/auth"
	"github.com/EmpoweredVote/MidwifeMatch-Backend/internal/models"
	"github.com/EmpoweredVote/MidwifeMatch-Backend/internal/ownership"
)

func TestIsOwnMessage(t *testing.T) {
	fromMaria := models.Message{ID: "m1", SenderID: "midwife-maria"}
	fromAnna := models.Message{ID: "m2", SenderID: "patient-anna"}

	tests := []struct {
		name string
		msg  models.Message
		role models.Role
		want bool
	}{
		{"midwife owns her message", fromMaria, models.RoleMidwife, true},
		{"patient does not own midwife message", fromMaria, models.RolePatient, false},
		{"patient owns her message", fromAnna, models.RolePatient, true},
		{"guest owns nothing", fromAnna, models.RoleGuest, false},
		{"guest owns nothing from midwife", fromMaria, models.RoleGuest, false},
		{"unknown role owns nothing", fromAnna, "admin", false},
		{"match is exact", models.Message{SenderID: "Patient-Anna"}, models.RolePatient, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ownership.IsOwnMessage(tt.msg, tt.role); got != tt.want {
				t.Errorf("IsOwnMessage(%s, %s) = %v, want %v", tt.msg.SenderID, tt.role, got, tt.want)
			}
		})
	}
}

func TestAnnotateFlipsWithRole(t *testing.T) {
	msgs := []models.Message{
		{ID: "1", SenderID: ownership.PatientSenderID},
		{ID: "2", SenderID: ownership.MidwifeSenderID},
	}

	asPatient := ownership.Annotate(msgs, models.RolePatient)
	asMidwife := ownership.Annotate(msgs, models.RoleMidwife)

	for i := range msgs {
		if asPatient[i].Own == asMidwife[i].Own {
			t.Errorf("message %s: ownership did not flip between roles", msgs[i].ID)
		}
	}
	if !asPatient[0].Own || !asMidwife[1].Own {
		t.Errorf("unexpected ownership: patient=%+v midwife=%+v", asPatient, asMidwife)
	}
}

// The demo profiles and the sender table must agree, otherwise switching
// accounts would show every message as foreign.
func TestSenderIDsMatchDemoProfiles(t *testing.T) {
	for _, role := range []models.Role{models.RolePatient, models.RoleMidwife} {
		p, ok := auth.DemoProfile(role)
		if !ok {
			t.Fatalf("no demo profile for %s", role)
		}
		id, _ := ownership.SenderID(role)
		if p.ID != id {
			t.Errorf("%s: profile id %q != sender id %q", role, p.ID, id)
		}
	}
}
