package response_models

type Entitlements struct {
	Gallery      bool `json:"gallery"`
	Music        bool `json:"music"`
	CustomBanner bool `json:"custom_banner"`
	GalleryLimit int  `json:"gallery_limit"`
}

type PlanResponse struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Description  string       `json:"description"`
	Price        int64        `json:"price"`
	Currency     string       `json:"currency"`
	BillingCycle string       `json:"billing_cycle"`
	IsFree       bool         `json:"is_free"`
	Entitlements Entitlements `json:"entitlements"`
}

type CheckoutResponse struct {
	// RedirectURL is empty when a free plan was applied directly.
	RedirectURL string `json:"redirect_url,omitempty"`
	Applied     bool   `json:"applied"`
	MemorialID  string `json:"memorial_id"`
}

type PaymentSuccessResponse struct {
	MemorialID string        `json:"memorial_id,omitempty"`
	Memorial   *MemorialCard `json:"memorial,omitempty"`
	Message    string        `json:"message"`
}
