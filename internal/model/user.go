package model

// User is an account linked to an external identity provider subject
type User struct {
	UserID     int    `db:"user_id" json:"userId"`
	ExternalID string `db:"external_id" json:"externalId"`
	Username   string `db:"username" json:"username"`
	Email      string `db:"email" json:"email"`
}

// UserUpdate carries optional profile changes
type UserUpdate struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
}

// Bookmark marks a city as saved by a user
type Bookmark struct {
	ID        int    `db:"id" json:"id"`
	UserID    int    `db:"user_id" json:"userId"`
	InseeCode string `db:"insee_code" json:"inseeCode"`
}

// BookmarkedCity is a bookmark joined with its city
type BookmarkedCity struct {
	Bookmark Bookmark `json:"bookmarks"`
	City     City     `json:"cities"`
}

// Rating is a user's 1-5 score for a city
type Rating struct {
	ID        int    `db:"id" json:"id"`
	InseeCode string `db:"insee_code" json:"inseeCode"`
	UserID    int    `db:"user_id" json:"userId"`
	Rating    int    `db:"rating" json:"rating"`
}

// RatingSummary aggregates the ratings of a city
type RatingSummary struct {
	InseeCode string  `json:"inseeCode"`
	Average   float64 `json:"average"`
	Count     int     `json:"count"`
}

// HeatmapPoint is the average rating at a city's coordinate
type HeatmapPoint struct {
	Lat    float64 `db:"lat" json:"lat"`
	Lng    float64 `db:"lng" json:"lng"`
	Weight float64 `db:"weight" json:"weight"`
}
