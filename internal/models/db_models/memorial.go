package db_models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type BannerType string

const (
	BannerColor BannerType = "color"
	BannerImage BannerType = "image"

	DefaultBannerValue = "#f7e8c9"
)

func (b BannerType) Valid() bool {
	return b == BannerColor || b == BannerImage
}

type Memorial struct {
	BaseModel
	OwnerID uuid.UUID `gorm:"type:uuid;index;not null" json:"owner_id"`

	BannerType  BannerType `gorm:"size:10;default:'color'" json:"banner_type"`
	BannerValue string     `gorm:"size:255" json:"banner_value"`

	FirstName   string     `gorm:"size:100;not null" json:"first_name"`
	MiddleName  string     `gorm:"size:100" json:"middle_name,omitempty"`
	LastName    string     `gorm:"size:100;not null" json:"last_name"`
	DateOfBirth time.Time  `json:"date_of_birth"`
	DateOfDeath *time.Time `json:"date_of_death,omitempty"`
	Quote       string     `json:"quote,omitempty"`
	Biography   string     `json:"biography,omitempty"`

	// Object store references. Keys are the identity used for purging.
	ProfileKey string `gorm:"size:300" json:"-"`
	ProfileURL string `json:"profile_picture_url,omitempty"`
	AudioKey   string `gorm:"size:300" json:"-"`
	AudioURL   string `json:"audio_url,omitempty"`
	QRCodeKey  string `gorm:"size:300" json:"-"`
	QRCodeURL  string `json:"qr_code_url,omitempty"`

	PlanID               *uuid.UUID `gorm:"type:uuid;index" json:"plan_id,omitempty"`
	Plan                 *Plan      `gorm:"foreignKey:PlanID" json:"plan,omitempty"`
	StripeSubscriptionID *string    `gorm:"index" json:"-"`
}

func (m *Memorial) FullName() string {
	parts := []string{m.FirstName}
	if m.MiddleName != "" {
		parts = append(parts, m.MiddleName)
	}
	parts = append(parts, m.LastName)
	return strings.TrimSpace(strings.Join(parts, " "))
}

func (m *Memorial) IsOwnedBy(accountID uuid.UUID) bool {
	return accountID != uuid.Nil && m.OwnerID == accountID
}

// Namespace is the object store prefix that holds every asset of the memorial.
func (m *Memorial) Namespace() string {
	return MemorialNamespace(m.ID)
}

func MemorialNamespace(id uuid.UUID) string {
	return fmt.Sprintf("memorials/%s", id)
}

type AssetKind string

const (
	AssetProfilePictures AssetKind = "profile_pictures"
	AssetAudio           AssetKind = "audio"
	AssetGallery         AssetKind = "gallery"
	AssetQRCodes         AssetKind = "qr_codes"
)

func AssetPrefix(memorialID uuid.UUID, kind AssetKind) string {
	return fmt.Sprintf("%s/%s", MemorialNamespace(memorialID), kind)
}
