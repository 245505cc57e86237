package handler

// ============================================================================
// Audit Request DTOs
// ============================================================================

// RunAuditRequest starts an audit from the admin
// @Description Admin audit request
type RunAuditRequest struct {
	URL          string `json:"url" binding:"required,max=2048" example:"https://pekarna-novak.cz"`
	CompanyName  string `json:"company_name" binding:"max=200"`
	ContactEmail string `json:"contact_email" binding:"omitempty,email,max=254"`
	ContactPhone string `json:"contact_phone" binding:"omitempty,phone"`
	Locale       string `json:"locale" binding:"omitempty,locale" example:"cs"`
}

// PublicAuditRequest is the "check my website" form
// @Description Public audit request
type PublicAuditRequest struct {
	URL     string `json:"url" binding:"required,max=2048" example:"https://pekarna-novak.cz"`
	Name    string `json:"name" binding:"max=200"`
	Company string `json:"company" binding:"max=200"`
	Email   string `json:"email" binding:"omitempty,email,max=254"`
	Phone   string `json:"phone" binding:"omitempty,phone"`
	Locale  string `json:"locale" binding:"omitempty,locale"`
	Consent bool   `json:"consent"`
}

// BatchAuditRequest queues audits for many prospect sites
// @Description Batch audit request
type BatchAuditRequest struct {
	URLs   []string `json:"urls" binding:"required,min=1,dive,max=2048"`
	Locale string   `json:"locale" binding:"omitempty,locale"`
}

// GenerateOutreachRequest asks for a sales message about an audit
// @Description Outreach generation request
type GenerateOutreachRequest struct {
	Channel string `json:"channel" binding:"required,oneof=email whatsapp pdf" example:"email"`
	Locale  string `json:"locale" binding:"omitempty,locale"`
	Variant *int   `json:"variant" binding:"omitempty,min=0"`
}

// WhatsAppLinkRequest builds a click-to-chat link
// @Description WhatsApp link request
type WhatsAppLinkRequest struct {
	Phone string `json:"phone" binding:"required,phone" example:"+420777123456"`
	Text  string `json:"text" binding:"required,max=4000"`
}

// WhatsAppLinkResponse is a wa.me link
// @Description WhatsApp link
type WhatsAppLinkResponse struct {
	URL string `json:"url" example:"https://wa.me/420777123456?text=Dobr%C3%BD%20den"`
}

// ListAuditsQuery represents query parameters for listing audits
// @Description Audit list filters
type ListAuditsQuery struct {
	Search   string `form:"search"`
	Status   string `form:"status" binding:"omitempty,oneof=pending completed failed"`
	Grade    string `form:"grade" binding:"omitempty,oneof=A B C D F"`
	BatchID  string `form:"batch_id" binding:"omitempty,uuid"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}
