package handler

// ============================================================================
// Lead Request DTOs
// ============================================================================

// SubmitLeadRequest is the public contact form
// @Description Contact form submission
type SubmitLeadRequest struct {
	Name            string `json:"name" binding:"required,min=1,max=200" example:"Jan Novák"`
	Email           string `json:"email" binding:"omitempty,email,max=254" example:"jan@firma.cz"`
	Phone           string `json:"phone" binding:"omitempty,phone" example:"+420 777 123 456"`
	Company         string `json:"company" binding:"max=200"`
	Website         string `json:"website" binding:"max=500"`
	Message         string `json:"message" binding:"max=5000"`
	ServiceInterest string `json:"service_interest" binding:"omitempty,slug"`
	CitySlug        string `json:"city_slug" binding:"omitempty,slug"`
	Source          string `json:"source" binding:"omitempty,oneof=contact_form landing audit" example:"contact_form"`
	Locale          string `json:"locale" binding:"omitempty,locale" example:"cs"`
	Consent         bool   `json:"consent" example:"true"`
	// WebsiteURL2 is a hidden field that people never fill in
	WebsiteURL2 string `json:"website_url2"`
}

// SubmitLeadResponse confirms a public submission
// @Description Submission confirmation
type SubmitLeadResponse struct {
	Received bool   `json:"received" example:"true"`
	Message  string `json:"message"`
}

// CreateLeadRequest is a lead entered by staff
// @Description Create lead request
type CreateLeadRequest struct {
	Name            string `json:"name" binding:"required,min=1,max=200"`
	Email           string `json:"email" binding:"omitempty,email,max=254"`
	Phone           string `json:"phone" binding:"omitempty,phone"`
	Company         string `json:"company" binding:"max=200"`
	Website         string `json:"website" binding:"max=500"`
	Message         string `json:"message" binding:"max=5000"`
	ServiceInterest string `json:"service_interest" binding:"omitempty,slug"`
	CitySlug        string `json:"city_slug" binding:"omitempty,slug"`
	Locale          string `json:"locale" binding:"omitempty,locale"`
}

// UpdateLeadRequest replaces contact and interest fields
// @Description Update lead request
type UpdateLeadRequest struct {
	Name            string `json:"name" binding:"required,min=1,max=200"`
	Email           string `json:"email" binding:"omitempty,email,max=254"`
	Phone           string `json:"phone" binding:"omitempty,phone"`
	Company         string `json:"company" binding:"max=200"`
	Website         string `json:"website" binding:"max=500"`
	Message         string `json:"message" binding:"max=5000"`
	ServiceInterest string `json:"service_interest" binding:"omitempty,slug"`
	CitySlug        string `json:"city_slug" binding:"omitempty,slug"`
}

// ChangeLeadStatusRequest moves a lead in the pipeline
// @Description Status change request
type ChangeLeadStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=new contacted qualified won lost" example:"contacted"`
}

// AppendNoteRequest adds a note line
// @Description Note request
type AppendNoteRequest struct {
	Note string `json:"note" binding:"required,min=1,max=2000"`
}

// ListLeadsQuery represents query parameters for listing leads
// @Description Lead list filters
type ListLeadsQuery struct {
	Status   string `form:"status" binding:"omitempty,oneof=new contacted qualified won lost"`
	Source   string `form:"source" binding:"omitempty,oneof=contact_form audit landing manual"`
	Locale   string `form:"locale" binding:"omitempty,locale"`
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}
