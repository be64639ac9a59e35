package db_models

import "github.com/google/uuid"

type GalleryImage struct {
	BaseModel
	MemorialID uuid.UUID `gorm:"type:uuid;index;not null" json:"memorial_id"`
	ObjectKey  string    `gorm:"size:300;not null" json:"-"`
	URL        string    `json:"url"`
	Caption    string    `gorm:"size:255" json:"caption"`
	Order      int       `gorm:"column:sort_order;default:0" json:"order"`
}
