// Package domain contains the core business entities for the Sunset
// digital marketplace. These are pure Go structs with no dependencies
// beyond ID and time primitives.
package domain

import (
	"strings"
	"time"
)

// SocialMedia holds the social profile links shown on a seller page.
type SocialMedia struct {
	Twitter   string `json:"twitter"`
	Instagram string `json:"instagram"`
	LinkedIn  string `json:"linkedin"`
}

// User represents a registered marketplace user.
// The identity key is assigned externally at registration (the upstream
// identity provider's subject), never generated here.
type User struct {
	// ID is the externally assigned identity key.
	ID string `json:"id"`

	// Email is the user's email address.
	Email string `json:"email"`

	// Username is the display handle, defaulted from the email local part.
	Username string `json:"username"`

	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`

	// Profile metadata, all optional.
	Organization string      `json:"organization"`
	Country      string      `json:"country"`
	Website      string      `json:"website"`
	SocialMedia  SocialMedia `json:"socialMedia"`
	Bio          string      `json:"bio"`

	// ProfilePicture is the content key of the stored profile image.
	// Nil when the user has not uploaded one.
	ProfilePicture *string `json:"profilePicture"`

	// CreatedAt is the timestamp when the user record was created.
	CreatedAt time.Time `json:"createdAt"`

	// UpdatedAt is the timestamp when the user record was last updated.
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewUser creates a User with the provisioning defaults applied on the
// first authentication event: username from the email local part and
// the display name split into first/last.
func NewUser(id, email, displayName string) *User {
	now := time.Now().UTC()

	username := email
	if at := strings.Index(email, "@"); at >= 0 {
		username = email[:at]
	}

	var firstName, lastName string
	if displayName != "" {
		parts := strings.Fields(displayName)
		firstName = parts[0]
		if len(parts) > 1 {
			lastName = strings.Join(parts[1:], " ")
		}
	}

	return &User{
		ID:        id,
		Email:     email,
		Username:  username,
		FirstName: firstName,
		LastName:  lastName,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
