// Package models defines server-side data models persisted in the database.
package models

import (
	"time"

	"github.com/sayedsafi2000/pixelsbee/internal/common"
)

// Role tags an account with the capability set it is evaluated against.
type Role string

const (
	RoleUser   Role = "user"
	RoleVendor Role = "vendor"
	RoleAdmin  Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleVendor, RoleAdmin:
		return true
	}
	return false
}

// Status is the account lifecycle state.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusBlocked  Status = "blocked"
)

// transitions lists the allowed status moves; any other move is rejected.
var transitions = map[Status][]Status{
	StatusPending:  {StatusApproved, StatusBlocked},
	StatusApproved: {StatusBlocked},
	StatusBlocked:  {StatusApproved},
}

// CanTransition reports whether an account may move from s to next.
// Staying in the same state is always allowed.
func (s Status) CanTransition(next Status) bool {
	if s == next {
		return true
	}
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// InitialStatus is the status an account of role r is created with.
func InitialStatus(r Role) Status {
	if r == RoleVendor {
		return StatusPending
	}
	return StatusApproved
}

// Account is any registered identity.
type Account struct {
	ID            string
	Name          string
	Email         string
	PasswordHash  string
	Role          Role
	Status        Status
	ProfilePicURL *string
	CreatedAt     time.Time
}

// ValidateTransition checks whether the account may be moved to next.
// Admin accounts are never transitioned.
func (a *Account) ValidateTransition(next Status) error {
	if a.Role == RoleAdmin {
		return common.NewError(common.ErrorForbidden, "Admin accounts cannot change status")
	}
	if !a.Status.CanTransition(next) {
		return common.NewError(common.ErrorConflict, "Cannot change status from "+string(a.Status)+" to "+string(next))
	}
	return nil
}

// AccountView is the sanitized account representation returned to clients.
// It never carries the password hash.
type AccountView struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Role          Role      `json:"role"`
	Status        Status    `json:"status"`
	ProfilePicURL *string   `json:"profile_pic_url"`
	CreatedAt     time.Time `json:"created_at"`
}

// View returns the sanitized representation of a.
func (a *Account) View() AccountView {
	return AccountView{
		ID:            a.ID,
		Name:          a.Name,
		Email:         a.Email,
		Role:          a.Role,
		Status:        a.Status,
		ProfilePicURL: a.ProfilePicURL,
		CreatedAt:     a.CreatedAt,
	}
}
