package repo

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type scopedRow struct {
	ID       int
	TenantID uuid.UUID
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file:repo_base_"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&scopedRow{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

func TestBaseDB_BindsContext(t *testing.T) {
	db := newTestDB(t)
	base := NewBase(db)

	ctx := context.WithValue(context.Background(), struct{}{}, "value")
	withCtx := base.DB(ctx)
	if withCtx.Statement == nil || withCtx.Statement.Context != ctx {
		t.Fatalf("expected context to flow through")
	}

	if base.DB(nil) != db {
		t.Fatalf("expected nil context to return raw connection")
	}
}

func TestTenantScopesRows(t *testing.T) {
	db := newTestDB(t)
	base := NewBase(db)
	mine, theirs := uuid.New(), uuid.New()
	rows := []scopedRow{{TenantID: mine}, {TenantID: mine}, {TenantID: theirs}}
	if err := db.Create(&rows).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	var count int64
	if err := base.Tenant(context.Background(), mine).Model(&scopedRow{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 rows for tenant, got %d", count)
	}

	var other []scopedRow
	if err := db.Scopes(TenantScope(theirs)).Find(&other).Error; err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(other) != 1 {
		t.Fatalf("expected 1 row for other tenant, got %d", len(other))
	}
}
