package db_models

type ContactMessage struct {
	BaseModel
	Name    string `gorm:"size:100;not null" json:"name"`
	Email   string `gorm:"not null" json:"email"`
	Subject string `gorm:"size:100;not null" json:"subject"`
	Message string `gorm:"type:text;not null" json:"message"`
	IsRead  bool   `gorm:"default:false" json:"is_read"`
}
