package response_models

type MemorialCard struct {
	ID                string `json:"id"`
	FullName          string `json:"full_name"`
	DateOfBirth       string `json:"date_of_birth"`
	DateOfDeath       string `json:"date_of_death,omitempty"`
	ProfilePictureURL string `json:"profile_picture_url,omitempty"`
	PlanName          string `json:"plan_name,omitempty"`
}

type MemorialDetail struct {
	ID                string        `json:"id"`
	OwnerID           string        `json:"owner_id"`
	FirstName         string        `json:"first_name"`
	MiddleName        string        `json:"middle_name,omitempty"`
	LastName          string        `json:"last_name"`
	FullName          string        `json:"full_name"`
	DateOfBirth       string        `json:"date_of_birth"`
	DateOfDeath       string        `json:"date_of_death,omitempty"`
	LifeSpan          string        `json:"life_span"`
	Quote             string        `json:"quote,omitempty"`
	Biography         string        `json:"biography,omitempty"`
	BannerType        string        `json:"banner_type"`
	BannerValue       string        `json:"banner_value"`
	ProfilePictureURL string        `json:"profile_picture_url,omitempty"`
	AudioURL          string        `json:"audio_url,omitempty"`
	QRCodeURL         string        `json:"qr_code_url,omitempty"`
	Plan              *PlanResponse `json:"plan,omitempty"`
	Entitlements      Entitlements  `json:"entitlements"`
	GalleryCount      int           `json:"gallery_count"`
	RemainingSlots    int           `json:"remaining_gallery_slots"`
	IsOwner           bool          `json:"is_owner"`
	CreatedAt         int64         `json:"created_at"`
}

type MemorialPage struct {
	Items      []MemorialCard `json:"items"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	Total      int64          `json:"total"`
	TotalPages int            `json:"total_pages"`
}

type GalleryImageResponse struct {
	ID      string `json:"id"`
	URL     string `json:"url"`
	Caption string `json:"caption"`
	Order   int    `json:"order"`
}

type GalleryUploadResult struct {
	Accepted       []GalleryImageResponse `json:"new_images"`
	Skipped        int                    `json:"skipped"`
	RemainingSlots int                    `json:"remaining_slots"`
	Message        string                 `json:"message"`
}
