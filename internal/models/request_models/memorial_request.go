package request_models

// Dates travel as YYYY-MM-DD strings; the service parses and range-checks
// them so errors can name the offending field.
type CreateMemorialRequest struct {
	FirstName   string `json:"first_name" binding:"required,max=100"`
	MiddleName  string `json:"middle_name" binding:"omitempty,max=100"`
	LastName    string `json:"last_name" binding:"required,max=100"`
	DateOfBirth string `json:"date_of_birth" binding:"required,notfuture"`
	DateOfDeath string `json:"date_of_death" binding:"omitempty,notfuture"`
	Quote       string `json:"quote" binding:"omitempty,max=500"`
	Biography   string `json:"biography"`
}

type UpdateNameRequest struct {
	FirstName  string `json:"first_name" binding:"required,max=100"`
	MiddleName string `json:"middle_name" binding:"omitempty,max=100"`
	LastName   string `json:"last_name" binding:"required,max=100"`
}

type UpdateDatesRequest struct {
	DateOfBirth string `json:"date_of_birth" binding:"required,notfuture"`
	DateOfDeath string `json:"date_of_death" binding:"omitempty,notfuture"`
}

type UpdateQuoteRequest struct {
	Quote string `json:"quote" binding:"max=500"`
}

type UpdateBiographyRequest struct {
	Biography string `json:"biography"`
}

type UpdateBannerRequest struct {
	BannerType  string `json:"banner_type" binding:"required"`
	BannerValue string `json:"banner_value" binding:"required,max=255"`
}

type BrowseMemorialsRequest struct {
	Name        string `form:"name"`
	DateOfBirth string `form:"dob"`
	DateOfDeath string `form:"dod"`
	Page        int    `form:"page"`
}
