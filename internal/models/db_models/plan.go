package db_models

import "strings"

type BillingCycle string

const (
	CycleNone     BillingCycle = "none"
	CycleMonthly  BillingCycle = "monthly"
	CycleYearly   BillingCycle = "yearly"
	CycleLifetime BillingCycle = "lifetime"
)

func (c BillingCycle) Valid() bool {
	switch c {
	case CycleNone, CycleMonthly, CycleYearly, CycleLifetime:
		return true
	}
	return false
}

const (
	FreePlanName = "free"

	FreeGalleryLimit    = 3
	PremiumGalleryLimit = 9
)

type Plan struct {
	BaseModel
	Name          string       `gorm:"uniqueIndex;size:50;not null" json:"name"`
	Description   string       `json:"description"`
	PriceMinor    int64        `gorm:"default:0" json:"price"` // 999 = $9.99
	Currency      string       `gorm:"size:3;default:'USD'" json:"currency"`
	BillingCycle  BillingCycle `gorm:"size:10;default:'none'" json:"billing_cycle"`
	StripePriceID string       `json:"-"`
	IsActive      bool         `gorm:"default:true" json:"is_active"`

	AllowGallery      bool `gorm:"default:false" json:"allow_gallery"`
	AllowMusic        bool `gorm:"default:false" json:"allow_music"`
	AllowCustomBanner bool `gorm:"default:false" json:"allow_custom_banner"`
}

func (p *Plan) IsFree() bool {
	return p != nil && p.PriceMinor == 0
}

func (p *Plan) IsFreePlan() bool {
	return p != nil && strings.EqualFold(p.Name, FreePlanName)
}

// GalleryLimit is the plan-derived gallery ceiling. A memorial without a plan
// gets the free allowance.
func (p *Plan) GalleryLimit() int {
	if p != nil && p.AllowGallery {
		return PremiumGalleryLimit
	}
	return FreeGalleryLimit
}

func (p *Plan) CanUseMusic() bool {
	return p != nil && p.AllowMusic
}

func (p *Plan) CanUseCustomBanner() bool {
	return p != nil && p.AllowCustomBanner
}
