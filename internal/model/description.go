package model

import "time"

// Description is a generated text cached per (city, language)
type Description struct {
	ID          int       `db:"id" json:"id"`
	InseeCode   string    `db:"insee_code" json:"inseeCode"`
	Language    string    `db:"language" json:"language"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// DescriptionSections is the structured form of a generated description
type DescriptionSections struct {
	Description string   `json:"description"`
	History     string   `json:"history"`
	Attractions []string `json:"attractions"`
}

// DescriptionResponse is returned by the description endpoint
type DescriptionResponse struct {
	Description
	Sections *DescriptionSections `json:"sections,omitempty"`
}

// Image is a transient image reference produced by the image search
type Image struct {
	URL         string  `json:"url"`
	Description *string `json:"description"`
	Primary     bool    `json:"-"`
}

// ImagesResponse wraps the images of a city
type ImagesResponse struct {
	Images []Image `json:"images"`
}

// ForecastDay is one day of a weather forecast
type ForecastDay struct {
	Date        string  `json:"date"`
	TempMin     float64 `json:"temp_min"`
	TempMax     float64 `json:"temp_max"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
}

// Weather is the reshaped forecast for a coordinate
type Weather struct {
	Location string        `json:"location"`
	Region   string        `json:"region"`
	Country  string        `json:"country"`
	Forecast []ForecastDay `json:"forecast"`
}
