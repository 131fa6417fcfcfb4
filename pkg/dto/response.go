package dto

// Notification is a toast the browser shows once.
type Notification struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Response wraps every visitor-facing payload together with the visitor's
// pending notifications.
type Response struct {
	Data          interface{}    `json:"data,omitempty"`
	Error         string         `json:"error,omitempty"`
	Notifications []Notification `json:"notifications"`
}
