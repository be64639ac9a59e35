package response_models

type ContributionResponse struct {
	ID           string `json:"id"`
	Kind         string `json:"kind"`
	AuthorName   string `json:"author_name"`
	Title        string `json:"title,omitempty"`
	Content      string `json:"content"`
	Status       string `json:"status"`
	CreatedAt    int64  `json:"created_at"`
	CreatedLabel string `json:"created_label"`
	CanEdit      bool   `json:"can_edit"`
}

type ContributionPage struct {
	Items   []ContributionResponse `json:"items"`
	Offset  int                    `json:"offset"`
	Limit   int                    `json:"limit"`
	Total   int64                  `json:"total"`
	HasMore bool                   `json:"has_more"`
	IsOwner bool                   `json:"is_owner"`
}
