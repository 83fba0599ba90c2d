package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Primary keys are generated client side so the same models work against
// Postgres and the SQLite test databases.
func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func (t *Tenant) BeforeCreate(*gorm.DB) error {
	ensureID(&t.ID)
	return nil
}

func (u *User) BeforeCreate(*gorm.DB) error {
	ensureID(&u.ID)
	return nil
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	return nil
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	ensureID(&o.ID)
	return nil
}

func (i *OrderItem) BeforeCreate(*gorm.DB) error {
	ensureID(&i.ID)
	return nil
}

func (e *Expense) BeforeCreate(*gorm.DB) error {
	ensureID(&e.ID)
	return nil
}

func (e *OutboxEvent) BeforeCreate(*gorm.DB) error {
	ensureID(&e.ID)
	return nil
}
