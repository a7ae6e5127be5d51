package dto

// DeviceRegisterRequest is the POST /devices/register payload.
type DeviceRegisterRequest struct {
	DeviceToken string `json:"deviceToken"`
	Platform    string `json:"platform"`
}

// DeviceUnregisterRequest is the DELETE /devices payload.
type DeviceUnregisterRequest struct {
	DeviceToken string `json:"deviceToken"`
	Platform    string `json:"platform"`
}

// SendNotificationRequest is the POST /notifications/send payload.
type SendNotificationRequest struct {
	UserID  string `json:"userId"`
	Title   string `json:"title"`
	Message string `json:"message"`
}
