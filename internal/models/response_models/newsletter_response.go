package response_models

type SubscribeResponse struct {
	Email             string `json:"email"`
	AlreadySubscribed bool   `json:"already_subscribed"`
	Resubscribed      bool   `json:"resubscribed"`
}

type NewsletterSendResult struct {
	NewsletterID string `json:"newsletter_id"`
	Recipients   int    `json:"recipients"`
	Sent         int    `json:"sent"`
}
