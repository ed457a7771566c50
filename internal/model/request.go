package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Request status values
const (
	RequestStatusPending  = "pending"
	RequestStatusApproved = "approved"
	RequestStatusRejected = "rejected"
)

// Request is an employee's ask for a quantity of a named item.
// ItemName is free text; it is resolved against the inventory only at approval time.
type Request struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	EmployeeName string    `gorm:"type:varchar(255);not null" json:"employee_name"`
	Department   string    `gorm:"type:varchar(255);not null" json:"department"`
	ItemName     string    `gorm:"type:varchar(255);not null;index" json:"item_name"`
	Quantity     int       `gorm:"type:int;not null;check:chk_requests_quantity,quantity > 0" json:"quantity"`
	Reason       string    `gorm:"type:text;not null" json:"reason"`
	Status       string    `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	CreatedAt    time.Time `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (r *Request) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// IsValidRequestStatus reports whether s is one of the defined statuses.
func IsValidRequestStatus(s string) bool {
	switch s {
	case RequestStatusPending, RequestStatusApproved, RequestStatusRejected:
		return true
	}
	return false
}

// CanTransition reports whether a request may move from one status to another.
// Status only moves forward: pending -> approved | rejected.
func CanTransition(from, to string) bool {
	return from == RequestStatusPending && (to == RequestStatusApproved || to == RequestStatusRejected)
}
