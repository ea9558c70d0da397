package models

// ContentSettings stores storefront support and legal content managed via
// the admin panel. There should be only one row (singleton pattern).
type ContentSettings struct {
	BaseModel
	SupportPhone  string `json:"support_phone"`
	SupportEmail  string `json:"support_email"`
	SupportHours  string `json:"support_hours"`
	LicenseNumber string `json:"license_number"`
	LicenseeText  string `json:"licensee_text"`
	DrinkWiseText string `json:"drink_wise_text"`
	CopyrightText string `json:"copyright_text"`

	// Social links
	Instagram string `json:"instagram"`
	Facebook  string `json:"facebook"`
	TikTok    string `json:"tiktok"`

	// Toggle social link visibility
	InstagramEnabled bool `json:"instagram_enabled"`
	FacebookEnabled  bool `json:"facebook_enabled"`
	TikTokEnabled    bool `json:"tiktok_enabled"`
}
