package models

type City struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"size:100;not null;index" json:"name"`
	IsActive bool   `gorm:"not null;index" json:"-"`
}

// CityOption is one autocomplete suggestion.
type CityOption struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}
