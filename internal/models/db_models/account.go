package db_models

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type Account struct {
	BaseModel
	Name         string `json:"name"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `gorm:"unique" json:"email"`
	PasswordHash string `json:"-"`
	Role         string `gorm:"default:'user'" json:"role"`
}
