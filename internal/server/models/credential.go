// Package models holds the persisted domain types shared by the minauth
// server components.
package models

import "encoding/json"

// AccessEffect is the outcome of a matching access rule.
type AccessEffect string

const (
	AccessAllow AccessEffect = "allow"
	AccessDeny  AccessEffect = "deny"
)

// AccessRule grants or denies access to a single service. The service name
// "*" matches any service.
type AccessRule struct {
	Effect  AccessEffect `json:"effect"`
	Service string       `json:"service"`
}

// Credential is the durable identity record used for password verification.
// PasswordHash is the hex-encoded digest of secret||salt||password. Rules are
// evaluated in order, first match wins, absence of a match denies.
type Credential struct {
	ID           string       `json:"id"`
	Salt         string       `json:"salt"`
	PasswordHash string       `json:"pwhash"`
	Rules        []AccessRule `json:"rules,omitempty"`
}

// Allowed evaluates the ordered access rules against a service name.
func (c *Credential) Allowed(service string) bool {
	for _, rule := range c.Rules {
		if rule.Service == "*" || rule.Service == service {
			return rule.Effect == AccessAllow
		}
	}
	return false
}

// MarshalBinary lets the credential be stored directly as a cache value.
func (c *Credential) MarshalBinary() ([]byte, error) {
	return json.Marshal(c)
}

// UnmarshalBinary restores a credential from its cached form.
func (c *Credential) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, c)
}
