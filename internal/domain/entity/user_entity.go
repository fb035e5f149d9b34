package entity

import (
	"time"
)

type AddressType string

const (
	AddressHome  AddressType = "Home"
	AddressWork  AddressType = "Work"
	AddressOther AddressType = "Other"
)

// User is the aggregate root for the profile and follow-graph domain.
// Passwords are stored as bcrypt hashes in PasswordHash.
//
// Followers and Following are the two sides of the follow graph and are only
// changed together by the follow repository methods.
type User struct {
	ID           string
	Email        string
	PhoneNumber  string
	PasswordHash string
	Name         string
	Username     string
	UserImage    string
	Bio          string
	AddressLine1 string
	AddressLine2 string
	AddressType  AddressType
	DateOfBirth  *time.Time
	Followers    IDSet
	Following    IDSet
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsFollowedBy reports whether viewerID is among the user's followers.
func (u *User) IsFollowedBy(viewerID string) bool {
	return u.Followers.Contains(viewerID)
}

// Follows reports whether the user follows targetID.
func (u *User) Follows(targetID string) bool {
	return u.Following.Contains(targetID)
}

// Clone returns a deep copy so stores can hand out values without sharing sets.
func (u *User) Clone() *User {
	c := *u
	c.Followers = u.Followers.Clone()
	c.Following = u.Following.Clone()
	if u.DateOfBirth != nil {
		dob := *u.DateOfBirth
		c.DateOfBirth = &dob
	}
	return &c
}
