package domain

import "time"

// Client is a coached person managed by an admin.
type Client struct {
	ID        ID         `json:"id"`
	Name      string     `json:"name" validate:"required,min=2,max=100"`
	Email     string     `json:"email" validate:"required,email"`
	Phone     string     `json:"phone,omitempty" validate:"omitempty,max=30"`
	Goal      string     `json:"goal,omitempty"`
	Status    int        `json:"status" validate:"gte=0,lte=2"`
	PlanID    *ID        `json:"planId,omitempty"`
	EmpresaID int64      `json:"empresaId,omitempty"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// Key implements Entity.
func (c Client) Key() string { return c.ID.String() }

// User is a platform account (admin or client role).
type User struct {
	ID        ID         `json:"id"`
	Name      string     `json:"name" validate:"required,min=2,max=100"`
	Email     string     `json:"email" validate:"required,email"`
	Role      string     `json:"role" validate:"required,oneof=admin client"`
	Active    bool       `json:"active"`
	EmpresaID int64      `json:"empresaId,omitempty"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// Key implements Entity.
func (u User) Key() string { return u.ID.String() }

// Plan is a subscription plan offered to clients.
type Plan struct {
	ID           ID      `json:"id"`
	Name         string  `json:"name" validate:"required,max=100"`
	Description  string  `json:"description,omitempty"`
	Price        float64 `json:"price" validate:"gte=0"`
	DurationDays int     `json:"durationDays" validate:"gt=0"`
	Active       bool    `json:"active"`
}

// Key implements Entity.
func (p Plan) Key() string { return p.ID.String() }
