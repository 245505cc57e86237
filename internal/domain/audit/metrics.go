package audit

// PageMetrics are the facts collected from one fetched page
type PageMetrics struct {
	FinalURL       string `json:"final_url"`
	StatusCode     int    `json:"status_code"`
	HTTPS          bool   `json:"https"`
	ResponseTimeMs int64  `json:"response_time_ms"`
	HTMLBytes      int64  `json:"html_bytes"`

	Title                 string `json:"title"`
	TitleLength           int    `json:"title_length"`
	MetaDescription       string `json:"meta_description"`
	MetaDescriptionLength int    `json:"meta_description_length"`
	HasViewport           bool   `json:"has_viewport"`
	HasCanonical          bool   `json:"has_canonical"`
	HasOpenGraph          bool   `json:"has_open_graph"`
	HasStructuredData     bool   `json:"has_structured_data"`
	HasFavicon            bool   `json:"has_favicon"`
	HasLangAttr           bool   `json:"has_lang_attr"`
	NoIndex               bool   `json:"no_index"`

	H1Count          int `json:"h1_count"`
	ImageCount       int `json:"image_count"`
	ImagesWithoutAlt int `json:"images_without_alt"`
	WordCount        int `json:"word_count"`

	ScriptCount         int `json:"script_count"`
	ExternalScriptCount int `json:"external_script_count"`
	StylesheetCount     int `json:"stylesheet_count"`
	InlineStyleCount    int `json:"inline_style_count"`

	UsesTablesForLayout bool `json:"uses_tables_for_layout"`
	HasFixedWidth       bool `json:"has_fixed_width"`
	SmallFontDeclared   bool `json:"small_font_declared"`

	InternalLinks  int  `json:"internal_links"`
	ExternalLinks  int  `json:"external_links"`
	HasContactForm bool `json:"has_contact_form"`
	HasPhoneLink   bool `json:"has_phone_link"`
}
