package request_models

type ContributionRequest struct {
	AuthorName string `json:"author_name" binding:"required,max=100"`
	Title      string `json:"title" binding:"omitempty,max=200"`
	Content    string `json:"content" binding:"required"`
}

type ListContributionsRequest struct {
	Offset int `form:"offset" binding:"min=0"`
	Limit  int `form:"limit" binding:"omitempty,min=1,max=50"`
}
