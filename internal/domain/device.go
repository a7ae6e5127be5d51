package domain

// DeviceRegistration enables out-of-band push delivery to one device.
// A registration is owned by the identity that registered it; the
// (DeviceToken, Platform) pair is unique within that identity's set.
type DeviceRegistration struct {
	DeviceToken string `json:"deviceToken"`
	Platform    string `json:"platform"`
}
