package models

import "time"

// PageView stores aggregated page view counts per day (YYYY-MM-DD) and path.
type PageView struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Day       string    `gorm:"size:10;uniqueIndex:idx_pv_day_path;not null" json:"day"`
	Path      string    `gorm:"size:255;uniqueIndex:idx_pv_day_path;not null" json:"path"`
	Count     int64     `gorm:"not null;default:0" json:"count"`
	UpdatedAt time.Time `json:"updated_at"`
}
