// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"testing"

	"vivabem/internal/models"
)

func TestUserStoreUpsert(t *testing.T) {
	db := testDB(t)
	s := NewUserStore(db)
	ctx := context.Background()

	openID := "store-test-owner"
	t.Cleanup(func() { db.Exec("DELETE FROM users WHERE open_id = $1", openID) })

	// Not found case.
	u, err := s.FindByOpenID(ctx, openID)
	if err != nil {
		t.Fatalf("FindByOpenID (not found): %v", err)
	}
	if u != nil {
		t.Fatal("expected nil for missing user")
	}

	first, err := s.Upsert(ctx, models.User{OpenID: openID, Name: strPtr("Dellano")})
	if err != nil {
		t.Fatalf("Upsert insert: %v", err)
	}
	if first.ID == 0 {
		t.Error("expected generated id")
	}
	if first.Role != models.RoleUser {
		t.Errorf("role: got %q, want %q", first.Role, models.RoleUser)
	}
	if first.LastSignedIn.IsZero() {
		t.Error("expected last_signed_in to default to now")
	}

	second, err := s.Upsert(ctx, models.User{
		OpenID:      openID,
		LoginMethod: strPtr("password"),
		Role:        models.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("Upsert update: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("upsert created a second row: %d != %d", second.ID, first.ID)
	}
	if second.Name == nil || *second.Name != "Dellano" {
		t.Errorf("name should survive an update that omits it, got %v", second.Name)
	}
	if second.LoginMethod == nil || *second.LoginMethod != "password" {
		t.Errorf("login method: got %v", second.LoginMethod)
	}
	if !second.IsAdmin() {
		t.Errorf("role: got %q, want admin", second.Role)
	}
	if second.LastSignedIn.Before(first.LastSignedIn) {
		t.Error("last_signed_in should move forward")
	}

	found, err := s.FindByOpenID(ctx, openID)
	if err != nil || found == nil {
		t.Fatalf("FindByOpenID: %v, %v", found, err)
	}
	if found.ID != first.ID {
		t.Errorf("found id %d, want %d", found.ID, first.ID)
	}
}

func TestUserStoreUpsertRequiresOpenID(t *testing.T) {
	db := testDB(t)
	s := NewUserStore(db)

	if _, err := s.Upsert(context.Background(), models.User{}); err == nil {
		t.Error("expected error for empty open id")
	}
}
