package authz

import (
	"testing"

	"github.com/google/uuid"

	"github.com/gatehouse-dev/gatehouse/internal/models"
)

func TestDecidePrecedence(t *testing.T) {
	owner := uuid.New()
	member := uuid.New()
	stranger := uuid.New()
	clientID := uuid.New()
	otherClient := uuid.New()

	ws := &models.Workspace{ID: uuid.New(), UserID: owner, ClientID: clientID}

	cases := []struct {
		name     string
		actor    uuid.UUID
		client   uuid.UUID
		granted  map[string]bool
		action   string
		want     Decision
	}{
		{"owner allowed without grants", owner, clientID, nil, ActionTeamsDelete, Allow},
		{"owner allowed for any action", owner, clientID, nil, ActionMembersCreate, Allow},
		{"cross-client hidden", member, otherClient, map[string]bool{ActionTeamsView: true}, ActionTeamsView, DenyNotFound},
		{"granted slug allowed", member, clientID, map[string]bool{ActionTeamsCreate: true}, ActionTeamsCreate, Allow},
		{"missing slug forbidden", member, clientID, map[string]bool{ActionTeamsView: true}, ActionTeamsCreate, DenyForbidden},
		{"no grants forbidden", stranger, clientID, nil, ActionTeamsView, DenyForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Decide(tc.actor, tc.client, ws, tc.granted, tc.action)
			if got != tc.want {
				t.Errorf("Decide() = %v, want %v", got, tc.want)
			}
		})
	}
}

// Ownership wins even over a client mismatch: rule 1 is evaluated first.
func TestDecideOwnershipBeforeClientBoundary(t *testing.T) {
	owner := uuid.New()
	ws := &models.Workspace{ID: uuid.New(), UserID: owner, ClientID: uuid.New()}
	if got := Decide(owner, uuid.New(), ws, nil, ActionTeamsView); got != Allow {
		t.Errorf("Decide() = %v, want Allow", got)
	}
}
