package request_models

type ContactRequest struct {
	Name    string `json:"name" binding:"required,max=100"`
	Email   string `json:"email" binding:"required,email"`
	Subject string `json:"subject" binding:"required,max=100"`
	Message string `json:"message" binding:"required"`
}

type SubscribeRequest struct {
	Email     string `json:"email" binding:"required,email"`
	FirstName string `json:"first_name" binding:"omitempty,max=100"`
	LastName  string `json:"last_name" binding:"omitempty,max=100"`
}

type SendNewsletterRequest struct {
	Subject string `json:"subject" binding:"required,max=200"`
	Content string `json:"content" binding:"required"`
}
