package domain

import "time"

// SiteSettings is the singleton configuration row for the storefront.
// It always lives at ID 1.
type SiteSettings struct {
	ID         int       `json:"-" db:"id"`
	SiteName   string    `json:"site_name" db:"site_name"`
	WhatsApp   string    `json:"whatsapp" db:"whatsapp"`
	Instagram  string    `json:"instagram" db:"instagram"`
	PixKey     string    `json:"pix_key" db:"pix_key"`
	BannerText string    `json:"banner_text" db:"banner_text"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}
