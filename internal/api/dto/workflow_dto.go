package dto

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// TransitionResponse is returned by apply and shortlist. Warning is set when
// the transition persisted but a side effect did not complete.
type TransitionResponse struct {
	Message              string `json:"message"`
	EmailSent            bool   `json:"email_sent"`
	NotificationRecorded bool   `json:"notification_recorded"`
	Warning              string `json:"warning,omitempty"`
}

// CloseResponse lists who was notified. Failed and Warning are set when some
// applicants' notifications could not be recorded.
type CloseResponse struct {
	Message  string  `json:"message"`
	Notified []int64 `json:"notified"`
	Failed   []int64 `json:"failed,omitempty"`
	Warning  string  `json:"warning,omitempty"`
}
