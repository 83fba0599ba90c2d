package tenants

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lastros/pos-backend/pkg/db/dbtest"
)

func TestRepositoryCreateAndFind(t *testing.T) {
	client := dbtest.Open(t, "tenants_repo")
	repo := NewRepository(client.DB())
	ctx := context.Background()

	tenant, err := repo.Create(ctx, "Restaurante Demo", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if tenant.Slug != "restaurante-demo" {
		t.Fatalf("unexpected slug %q", tenant.Slug)
	}

	byID, err := repo.FindByID(ctx, tenant.ID)
	if err != nil || byID.Name != "Restaurante Demo" {
		t.Fatalf("find by id: %v %+v", err, byID)
	}
	bySlug, err := repo.FindBySlug(ctx, " Restaurante-Demo ")
	if err != nil || bySlug.ID != tenant.ID {
		t.Fatalf("find by slug: %v", err)
	}

	if _, err := repo.FindByID(ctx, uuid.New()); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := repo.Create(ctx, "  ", ""); err == nil {
		t.Fatalf("expected error for blank name")
	}
}

func TestEnsureBySlugIsIdempotent(t *testing.T) {
	client := dbtest.Open(t, "tenants_ensure")
	repo := NewRepository(client.DB())
	ctx := context.Background()

	first, err := repo.EnsureBySlug(ctx, "Restaurante Demo", "restaurante-demo")
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	second, err := repo.EnsureBySlug(ctx, "Other Name", "restaurante-demo")
	if err != nil {
		t.Fatalf("ensure again: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected the same tenant")
	}
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Restaurante Demo":     "restaurante-demo",
		"  Bar  do   Zé!! ":    "bar-do-z",
		"already-slugged":      "already-slugged",
		"***":                  "",
		"Lanchonete 24h / Rio": "lanchonete-24h-rio",
	}
	for in, want := range cases {
		if got := Slugify(in); got != want {
			t.Fatalf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}
