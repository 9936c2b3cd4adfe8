package auth

import (
	_ "embed"
	"fmt"
	"maps"

	"github.com/EmpoweredVote/MidwifeMatch-Backend/internal/models"
	"github.com/goccy/go-yaml"
)

//go:embed data/profiles.yaml
var profilesYAML []byte

var demoProfiles = mustParseProfiles(profilesYAML)

func mustParseProfiles(raw []byte) map[models.Role]models.User {
	var parsed map[string]models.User
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		panic(fmt.Sprintf("auth: bad embedded demo profiles: %v", err))
	}
	out := make(map[models.Role]models.User, len(parsed))
	for _, role := range []models.Role{models.RolePatient, models.RoleMidwife} {
		p, ok := parsed[string(role)]
		if !ok || p.ID == "" || p.Role != role {
			panic(fmt.Sprintf("auth: embedded demo profile %q missing or inconsistent", role))
		}
		out[role] = p
	}
	return out
}

// DemoProfile returns a fresh copy of the canned identity for role. Guest has none.
func DemoProfile(role models.Role) (*models.User, bool) {
	p, ok := demoProfiles[role]
	if !ok {
		return nil, false
	}
	p.Details = maps.Clone(p.Details)
	return &p, true
}
