package authz

import (
	"testing"

	"pet-adoption-api/internal/domain/identity"
)

func TestEvaluate_AdminBypass(t *testing.T) {
	// publish no entra acá: su guard de estado aplica también a admins
	actions := []Action{
		ActionPetCreate, ActionPetRead, ActionPetUpdate,
		ActionPetWithdraw, ActionPetSetApproval, ActionShelterUpdate,
		ActionShelterVerify, ActionApplicationCreate, ActionApplicationRead,
		ActionApplicationDecide, ActionMessageSend, ActionMessageRead,
		ActionRoleGrant, ActionRoleRevoke,
	}
	for _, action := range actions {
		dec := Evaluate(Input{
			ActorID: "admin-1",
			Roles:   []identity.Role{identity.RoleAdmin},
			Action:  action,
		})
		if !dec.Allowed {
			t.Fatalf("admin denied on %s: %s", action, dec.Reason)
		}
	}
}

func TestEvaluate_AdminPublish_KeepsResourceStateGuard(t *testing.T) {
	admin := []identity.Role{identity.RoleAdmin}
	pet := func(approved, verified bool) Resource {
		return Resource{
			Kind:            KindPet,
			OwnerUserID:     "shelter-owner",
			PetApproved:     approved,
			PetStatus:       "unlisted",
			ShelterVerified: verified,
		}
	}

	// shelter sin verificar: ni el admin publica
	dec := Evaluate(Input{ActorID: "admin-1", Roles: admin, Action: ActionPetPublish, Resource: pet(true, false)})
	if dec.Allowed {
		t.Fatalf("expected admin publish denied for unverified shelter")
	}
	if dec.Reason != ReasonResourceState {
		t.Fatalf("expected resource-state-invalid, got %s", dec.Reason)
	}

	if dec := Evaluate(Input{ActorID: "admin-1", Roles: admin, Action: ActionPetPublish, Resource: pet(false, true)}); dec.Allowed {
		t.Fatalf("expected admin publish denied for unapproved pet")
	}

	// con approved + verificado, el admin sí saltea ownership
	if dec := Evaluate(Input{ActorID: "admin-1", Roles: admin, Action: ActionPetPublish, Resource: pet(true, true)}); !dec.Allowed {
		t.Fatalf("expected admin publish allowed on valid state, got %s", dec.Reason)
	}
}

func TestEvaluate_Unauthenticated_OnlyPublicPetRead(t *testing.T) {
	publicPet := Resource{Kind: KindPet, PetApproved: true, PetStatus: "available"}

	if dec := Evaluate(Input{Action: ActionPetRead, Resource: publicPet}); !dec.Allowed {
		t.Fatalf("expected anonymous read of public pet allowed, got %s", dec.Reason)
	}

	hiddenPet := Resource{Kind: KindPet, PetApproved: false, PetStatus: "available"}
	if dec := Evaluate(Input{Action: ActionPetRead, Resource: hiddenPet}); dec.Allowed {
		t.Fatalf("expected anonymous read of unapproved pet denied")
	}

	if dec := Evaluate(Input{Action: ActionApplicationCreate, Resource: publicPet}); dec.Allowed {
		t.Fatalf("expected anonymous application create denied")
	}
}

func TestEvaluate_DefaultDeny_UnknownAction(t *testing.T) {
	dec := Evaluate(Input{
		ActorID: "u-1",
		Roles:   []identity.Role{identity.RoleAdopter},
		Action:  Action("pet:transmogrify"),
	})
	if dec.Allowed {
		t.Fatalf("expected unknown action denied")
	}
	if dec.Reason != ReasonRoleInsufficient {
		t.Fatalf("expected role-insufficient, got %s", dec.Reason)
	}
}

func TestEvaluate_PolicyTable(t *testing.T) {
	shelterRoles := []identity.Role{identity.RoleShelter}
	adopterRoles := []identity.Role{identity.RoleAdopter}

	ownPet := func(approved bool, status string, verified bool) Resource {
		return Resource{
			Kind:            KindPet,
			OwnerUserID:     "shelter-owner",
			PetApproved:     approved,
			PetStatus:       status,
			ShelterVerified: verified,
		}
	}

	cases := []struct {
		name    string
		in      Input
		allowed bool
		reason  Reason
	}{
		{
			name:    "shelter updates own pet",
			in:      Input{ActorID: "shelter-owner", Roles: shelterRoles, Action: ActionPetUpdate, Resource: ownPet(false, "unlisted", false)},
			allowed: true,
		},
		{
			name:   "shelter updates foreign pet",
			in:     Input{ActorID: "other-shelter", Roles: shelterRoles, Action: ActionPetUpdate, Resource: ownPet(true, "available", true)},
			reason: ReasonNotOwner,
		},
		{
			name:   "adopter cannot update pet",
			in:     Input{ActorID: "adopter-1", Roles: adopterRoles, Action: ActionPetUpdate, Resource: ownPet(true, "available", true)},
			reason: ReasonRoleInsufficient,
		},
		{
			name:    "publish approved pet from verified shelter",
			in:      Input{ActorID: "shelter-owner", Roles: shelterRoles, Action: ActionPetPublish, Resource: ownPet(true, "unlisted", true)},
			allowed: true,
		},
		{
			name:   "publish unapproved pet",
			in:     Input{ActorID: "shelter-owner", Roles: shelterRoles, Action: ActionPetPublish, Resource: ownPet(false, "unlisted", true)},
			reason: ReasonResourceState,
		},
		{
			name:   "publish from unverified shelter",
			in:     Input{ActorID: "shelter-owner", Roles: shelterRoles, Action: ActionPetPublish, Resource: ownPet(true, "unlisted", false)},
			reason: ReasonResourceState,
		},
		{
			name:    "shelter reads own unlisted pet",
			in:      Input{ActorID: "shelter-owner", Roles: shelterRoles, Action: ActionPetRead, Resource: ownPet(false, "unlisted", false)},
			allowed: true,
		},
		{
			name:   "adopter reads unlisted pet",
			in:     Input{ActorID: "adopter-1", Roles: adopterRoles, Action: ActionPetRead, Resource: ownPet(true, "unlisted", true)},
			reason: ReasonResourceState,
		},
		{
			name:    "adopter applies to available pet",
			in:      Input{ActorID: "adopter-1", Roles: adopterRoles, Action: ActionApplicationCreate, Resource: ownPet(true, "available", true)},
			allowed: true,
		},
		{
			name:   "adopter applies to adopted pet",
			in:     Input{ActorID: "adopter-1", Roles: adopterRoles, Action: ActionApplicationCreate, Resource: ownPet(true, "adopted", true)},
			reason: ReasonResourceState,
		},
		{
			name:   "shelter cannot apply",
			in:     Input{ActorID: "shelter-owner", Roles: shelterRoles, Action: ActionApplicationCreate, Resource: ownPet(true, "available", true)},
			reason: ReasonRoleInsufficient,
		},
		{
			name:    "shelter decides application on own pet",
			in:      Input{ActorID: "shelter-owner", Roles: shelterRoles, Action: ActionApplicationDecide, Resource: Resource{Kind: KindApplication, OwnerUserID: "shelter-owner", AdopterUserID: "adopter-1"}},
			allowed: true,
		},
		{
			name:   "adopter cannot decide own application",
			in:     Input{ActorID: "adopter-1", Roles: adopterRoles, Action: ActionApplicationDecide, Resource: Resource{Kind: KindApplication, OwnerUserID: "shelter-owner", AdopterUserID: "adopter-1"}},
			reason: ReasonRoleInsufficient,
		},
		{
			name:    "adopter reads own application",
			in:      Input{ActorID: "adopter-1", Roles: adopterRoles, Action: ActionApplicationRead, Resource: Resource{Kind: KindApplication, OwnerUserID: "shelter-owner", AdopterUserID: "adopter-1"}},
			allowed: true,
		},
		{
			name:   "third party cannot read application",
			in:     Input{ActorID: "adopter-2", Roles: adopterRoles, Action: ActionApplicationRead, Resource: Resource{Kind: KindApplication, OwnerUserID: "shelter-owner", AdopterUserID: "adopter-1"}},
			reason: ReasonNotOwner,
		},
		{
			name:    "adopter messages on own application",
			in:      Input{ActorID: "adopter-1", Roles: adopterRoles, Action: ActionMessageSend, Resource: Resource{Kind: KindApplication, OwnerUserID: "shelter-owner", AdopterUserID: "adopter-1"}},
			allowed: true,
		},
		{
			name:    "shelter messages on application for own pet",
			in:      Input{ActorID: "shelter-owner", Roles: shelterRoles, Action: ActionMessageSend, Resource: Resource{Kind: KindApplication, OwnerUserID: "shelter-owner", AdopterUserID: "adopter-1"}},
			allowed: true,
		},
		{
			name:   "third party cannot message",
			in:     Input{ActorID: "stranger", Roles: adopterRoles, Action: ActionMessageRead, Resource: Resource{Kind: KindApplication, OwnerUserID: "shelter-owner", AdopterUserID: "adopter-1"}},
			reason: ReasonNotOwner,
		},
		{
			name:   "shelter cannot verify shelters",
			in:     Input{ActorID: "shelter-owner", Roles: shelterRoles, Action: ActionShelterVerify, Resource: Resource{Kind: KindShelter, OwnerUserID: "shelter-owner"}},
			reason: ReasonRoleInsufficient,
		},
		{
			name:   "shelter cannot approve pets",
			in:     Input{ActorID: "shelter-owner", Roles: shelterRoles, Action: ActionPetSetApproval, Resource: ownPet(false, "unlisted", true)},
			reason: ReasonRoleInsufficient,
		},
		{
			name:   "adopter cannot grant roles",
			in:     Input{ActorID: "adopter-1", Roles: adopterRoles, Action: ActionRoleGrant},
			reason: ReasonRoleInsufficient,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dec := Evaluate(tc.in)
			if dec.Allowed != tc.allowed {
				t.Fatalf("allowed=%v, expected %v (reason=%s)", dec.Allowed, tc.allowed, dec.Reason)
			}
			if !tc.allowed && dec.Reason != tc.reason {
				t.Fatalf("reason=%s, expected %s", dec.Reason, tc.reason)
			}
		})
	}
}
