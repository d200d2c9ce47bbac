package domain

import (
	"strings"

	"github.com/google/uuid"
)

// Identity is the caller as resolved by the auth service.
type Identity struct {
	ID         uuid.UUID
	Email      string
	FirstName  string
	LastName   string
	AvatarURL  *string
	IsActive   bool
	IsVerified bool
	// Host is set when the caller has a host profile.
	Host *HostInfo
}

type HostInfo struct {
	Status string
}

// HostID returns the caller's id when it has a host profile.
func (i Identity) HostID() (uuid.UUID, bool) {
	if i.Host == nil {
		return uuid.Nil, false
	}
	return i.ID, true
}

func (i Identity) DisplayName() string {
	return DisplayName(i.FirstName, i.LastName)
}

// HostProfile is the subset of a host's profile copied onto their properties.
type HostProfile struct {
	ID        uuid.UUID
	Name      string
	Email     string
	AvatarURL *string
}

// DisplayName joins first and last name, falling back to "Host".
func DisplayName(first, last string) string {
	n := strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
	if n == "" {
		return "Host"
	}
	return n
}
