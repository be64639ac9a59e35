package db_models

type Subscriber struct {
	BaseModel
	Email      string `gorm:"uniqueIndex;not null" json:"email"`
	FirstName  string `gorm:"size:100" json:"first_name"`
	LastName   string `gorm:"size:100" json:"last_name"`
	Subscribed bool   `gorm:"default:true" json:"subscribed"`
}

type Newsletter struct {
	BaseModel
	Subject string `gorm:"size:200;not null" json:"subject"`
	Content string `gorm:"type:text;not null" json:"content"`
	SentAt  *int64 `json:"sent_at,omitempty"`
	IsSent  bool   `gorm:"default:false" json:"is_sent"`
}
