package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/khidmah/backend/internal/models"
)

func TestUserRole(t *testing.T) {
	cases := []struct {
		name     string
		client   bool
		provider bool
		want     models.Role
	}{
		{"neither flag", false, false, models.RoleUnknown},
		{"client only", true, false, models.RoleClient},
		{"provider only", false, true, models.RoleProvider},
		{"both flags", true, true, models.RoleBoth},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			u := &models.User{IsClient: tc.client, IsProvider: tc.provider}
			assert.Equal(t, tc.want, u.Role())
		})
	}
}

func TestDefaultLocation(t *testing.T) {
	loc := models.DefaultLocation()
	assert.Equal(t, "Point", loc.Type)
	assert.Equal(t, []float64{0, 0}, loc.Coordinates)
}
