package authsvc

import (
	"strings"

	"github.com/google/uuid"

	"property_listing/internal/domain"
)

// Field aliases seen across auth service versions. First non-empty wins.
var identityAliases = map[string][]string{
	"id":         {"id", "user_id", "uuid", "user.id"},
	"email":      {"email", "user.email"},
	"first_name": {"first_name", "firstName", "user.first_name"},
	"last_name":  {"last_name", "lastName", "user.last_name"},
	"avatar":     {"avatar", "avatar_url", "profile_picture", "user.avatar"},
}

var hostAliases = map[string][]string{
	"email":      {"user_info.email", "email"},
	"first_name": {"user_info.first_name", "first_name"},
	"last_name":  {"user_info.last_name", "last_name"},
	"avatar":     {"user_info.avatar", "user_info.avatar_url", "avatar", "avatar_url"},
}

// keys that carry role information; a payload with none of them predates roles.
var hostMarkers = []string{"host_profile", "host_info", "host", "is_host", "roles", "user_type"}

func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

func lookupStr(m map[string]any, path string) string {
	if v := lookupAny(m, path); v != nil {
		if s, ok := v.(string); ok {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

func firstNonEmptyAlias(m map[string]any, aliases map[string][]string, key string) string {
	for _, p := range aliases[key] {
		if s := lookupStr(m, p); s != "" {
			return s
		}
	}
	return ""
}

func lookupBool(m map[string]any, path string, def bool) bool {
	if b, ok := lookupAny(m, path).(bool); ok {
		return b
	}
	return def
}

func ptrStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// toIdentity maps a /me payload. is_active defaults to true and is_verified to false.
func toIdentity(m map[string]any) (domain.Identity, error) {
	id, err := uuid.Parse(firstNonEmptyAlias(m, identityAliases, "id"))
	if err != nil {
		return domain.Identity{}, domain.ErrUnauthenticated
	}
	ident := domain.Identity{
		ID:         id,
		Email:      firstNonEmptyAlias(m, identityAliases, "email"),
		FirstName:  firstNonEmptyAlias(m, identityAliases, "first_name"),
		LastName:   firstNonEmptyAlias(m, identityAliases, "last_name"),
		AvatarURL:  ptrStr(firstNonEmptyAlias(m, identityAliases, "avatar")),
		IsActive:   lookupBool(m, "is_active", true),
		IsVerified: lookupBool(m, "is_verified", false),
	}
	ident.Host = hostInfo(m)
	return ident, nil
}

// hostInfo decides whether the caller may host. Payloads without any role field
// treat every user as a host, matching the auth service's older contract.
func hostInfo(m map[string]any) *domain.HostInfo {
	seen := false
	for _, k := range hostMarkers {
		if _, ok := m[k]; ok {
			seen = true
			break
		}
	}
	if !seen {
		return &domain.HostInfo{Status: "implicit"}
	}
	for _, k := range []string{"host_profile", "host_info", "host"} {
		if obj, ok := m[k].(map[string]any); ok {
			status := lookupStr(obj, "status")
			if status == "" {
				status = "active"
			}
			return &domain.HostInfo{Status: status}
		}
	}
	if lookupBool(m, "is_host", false) {
		return &domain.HostInfo{Status: "active"}
	}
	if strings.EqualFold(lookupStr(m, "user_type"), "host") {
		return &domain.HostInfo{Status: "active"}
	}
	if roles, ok := m["roles"].([]any); ok {
		for _, r := range roles {
			if s, ok := r.(string); ok && strings.EqualFold(s, "host") {
				return &domain.HostInfo{Status: "active"}
			}
		}
	}
	return nil
}

// toHostProfile maps a host profile payload. The profile's own id differs from the
// user id properties are keyed by, so the requested id is kept.
func toHostProfile(m map[string]any, id uuid.UUID) domain.HostProfile {
	return domain.HostProfile{
		ID:        id,
		Name:      domain.DisplayName(firstNonEmptyAlias(m, hostAliases, "first_name"), firstNonEmptyAlias(m, hostAliases, "last_name")),
		Email:     firstNonEmptyAlias(m, hostAliases, "email"),
		AvatarURL: ptrStr(firstNonEmptyAlias(m, hostAliases, "avatar")),
	}
}
