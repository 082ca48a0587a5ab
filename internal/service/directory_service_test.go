package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
)

func TestRegisterUserDefaultsToUserRole(t *testing.T) {
	store := newMemStore()
	svc := newDirectoryService(store)

	profile, err := svc.RegisterUser(context.Background(), RegisterInput{
		FullName: "Maria Silva",
		Email:    "Maria@Example.COM",
		Password: "secret1",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if profile.Role != domain.RoleUser {
		t.Fatalf("expected default role user, got %s", profile.Role)
	}

	identity, err := (&memIdentityRepo{store: store}).GetByEmail(context.Background(), "maria@example.com")
	if err != nil {
		t.Fatalf("expected identity stored under lowercased email: %v", err)
	}
	if err := auth.ComparePassword(identity.PasswordHash, "secret1"); err != nil {
		t.Fatalf("stored hash does not verify: %v", err)
	}
	if _, ok := store.profiles[identity.ID]; !ok {
		t.Fatalf("expected profile provisioned alongside identity")
	}
}

func TestRegisterUserValidation(t *testing.T) {
	store := newMemStore()
	svc := newDirectoryService(store)

	_, err := svc.RegisterUser(context.Background(), RegisterInput{
		FullName: "Maria",
		Email:    "maria@example.com",
		Password: "short",
	})
	assertErrorStatus(t, err, http.StatusBadRequest)

	_, err = svc.RegisterUser(context.Background(), RegisterInput{
		FullName: "Maria",
		Email:    "maria@example.com",
		Password: "secret1",
		Role:     domain.Role("superuser"),
	})
	assertErrorStatus(t, err, http.StatusBadRequest)

	if _, err := svc.RegisterUser(context.Background(), RegisterInput{
		FullName: "Maria",
		Email:    "maria@example.com",
		Password: "secret1",
	}); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	_, err = svc.RegisterUser(context.Background(), RegisterInput{
		FullName: "Maria Again",
		Email:    "MARIA@example.com",
		Password: "secret1",
	})
	assertErrorStatus(t, err, http.StatusConflict)
}

func TestUpdateProfile(t *testing.T) {
	store := newMemStore()
	svc := newDirectoryService(store)
	profile := store.addProfile("Maria Silva", domain.RoleUser)

	avatar := "https://cdn.example.com/avatars/maria.png"
	updated, err := svc.UpdateProfile(context.Background(), profile.ID, "  Maria S. Oliveira  ", &avatar)
	if err != nil {
		t.Fatalf("update profile failed: %v", err)
	}
	if updated.FullName != "Maria S. Oliveira" {
		t.Fatalf("expected trimmed name, got %q", updated.FullName)
	}
	if updated.AvatarURL == nil || *updated.AvatarURL != avatar {
		t.Fatalf("avatar not stored: %+v", updated.AvatarURL)
	}
	stored := store.profiles[profile.ID]
	if stored.FullName != "Maria S. Oliveira" || stored.AvatarURL == nil {
		t.Fatalf("update not persisted: %+v", stored)
	}
	if stored.Role != domain.RoleUser {
		t.Fatalf("profile update must not touch the role, got %s", stored.Role)
	}

	// A null avatar clears it.
	updated, err = svc.UpdateProfile(context.Background(), profile.ID, "Maria S. Oliveira", nil)
	if err != nil {
		t.Fatalf("update profile failed: %v", err)
	}
	if updated.AvatarURL != nil {
		t.Fatalf("expected avatar cleared, got %v", *updated.AvatarURL)
	}

	_, err = svc.UpdateProfile(context.Background(), profile.ID, "   ", nil)
	assertErrorStatus(t, err, http.StatusBadRequest)

	_, err = svc.UpdateProfile(context.Background(), "profile-missing", "Someone", nil)
	assertErrorStatus(t, err, http.StatusNotFound)
}

func TestUpdateRole(t *testing.T) {
	store := newMemStore()
	svc := newDirectoryService(store)
	admin := store.addProfile("Root Admin", domain.RoleAdmin)
	target := store.addProfile("Maria Silva", domain.RoleUser)

	updated, err := svc.UpdateRole(context.Background(), admin, target.ID, domain.RoleAgent)
	if err != nil {
		t.Fatalf("update role failed: %v", err)
	}
	if updated.Role != domain.RoleAgent {
		t.Fatalf("expected agent, got %s", updated.Role)
	}
	if store.profiles[target.ID].Role != domain.RoleAgent {
		t.Fatalf("role not persisted")
	}

	_, err = svc.UpdateRole(context.Background(), admin, target.ID, domain.Role("owner"))
	assertErrorStatus(t, err, http.StatusBadRequest)

	_, err = svc.UpdateRole(context.Background(), admin, "profile-missing", domain.RoleAgent)
	assertErrorStatus(t, err, http.StatusNotFound)
}

func TestSetupFlow(t *testing.T) {
	store := newMemStore()
	svc := newDirectoryService(store)

	configured, err := svc.SetupConfigured(context.Background())
	if err != nil {
		t.Fatalf("setup status failed: %v", err)
	}
	if configured {
		t.Fatalf("fresh install must report setup available")
	}

	profile, err := svc.SetupAdmin(context.Background(), "First Admin", "admin@example.com", "secret1")
	if err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	if profile.Role != domain.RoleAdmin {
		t.Fatalf("expected admin role, got %s", profile.Role)
	}

	configured, err = svc.SetupConfigured(context.Background())
	if err != nil {
		t.Fatalf("setup status failed: %v", err)
	}
	if !configured {
		t.Fatalf("setup must be reported configured after bootstrap")
	}

	_, err = svc.SetupAdmin(context.Background(), "Second Admin", "admin2@example.com", "secret1")
	assertErrorStatus(t, err, http.StatusConflict)
}

func TestSetupUnavailableWhenAdminExists(t *testing.T) {
	store := newMemStore()
	svc := newDirectoryService(store)
	store.addProfile("Existing Admin", domain.RoleAdmin)

	configured, err := svc.SetupConfigured(context.Background())
	if err != nil {
		t.Fatalf("setup status failed: %v", err)
	}
	if !configured {
		t.Fatalf("setup must be unavailable when an admin profile exists")
	}

	_, err = svc.SetupAdmin(context.Background(), "Late Admin", "late@example.com", "secret1")
	assertErrorStatus(t, err, http.StatusConflict)
}

func TestListStaff(t *testing.T) {
	store := newMemStore()
	svc := newDirectoryService(store)
	store.addProfile("Plain User", domain.RoleUser)
	store.addProfile("Ana Costa", domain.RoleAgent)
	store.addProfile("Root Admin", domain.RoleAdmin)

	staff, err := svc.ListStaff(context.Background())
	if err != nil {
		t.Fatalf("list staff failed: %v", err)
	}
	if len(staff) != 2 {
		t.Fatalf("expected 2 staff profiles, got %d", len(staff))
	}
	for _, profile := range staff {
		if !profile.Role.IsStaff() {
			t.Fatalf("non-staff profile leaked into staff list: %+v", profile)
		}
	}
}
