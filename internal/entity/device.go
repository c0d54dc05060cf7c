package entity

import "github.com/google/uuid"

const _unknownDeviceName = "Unknown Device"

// Device is a registered push endpoint belonging to a user. Only devices
// with Active true participate in dispatch; Token may be empty or stale.
type Device struct {
	ID     uuid.UUID `json:"id"`
	UserID uuid.UUID `json:"user_id"`
	Token  string    `json:"token"`
	Name   string    `json:"name,omitempty"`
	Active bool      `json:"active"`
}

// DisplayName returns the device name, substituting a placeholder when the
// name was never set.
func (d Device) DisplayName() string {
	if d.Name == "" {
		return _unknownDeviceName
	}
	return d.Name
}
