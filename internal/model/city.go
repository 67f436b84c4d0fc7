package model

// City represents a French commune in the database
type City struct {
	CodeInsee       string   `db:"code_insee" json:"codeInsee"`
	NomStandard     string   `db:"nom_standard" json:"nomStandard"`
	RegCode         string   `db:"reg_code" json:"regCode"`
	RegNom          string   `db:"reg_nom" json:"regNom"`
	DepCode         string   `db:"dep_code" json:"depCode"`
	DepNom          string   `db:"dep_nom" json:"depNom"`
	AcademieNom     *string  `db:"academie_nom" json:"academieNom"`
	Population      *int64   `db:"population" json:"population"`
	SuperficieKm2   *float64 `db:"superficie_km2" json:"superficieKm2"`
	Densite         *float64 `db:"densite" json:"densite"`
	AltitudeMoyenne *float64 `db:"altitude_moyenne" json:"altitudeMoyenne"`
	LatitudeMairie  *float64 `db:"latitude_mairie" json:"latitudeMairie"`
	LongitudeMairie *float64 `db:"longitude_mairie" json:"longitudeMairie"`
	URLWikipedia    *string  `db:"url_wikipedia" json:"urlWikipedia"`
	URLVilledereve  *string  `db:"url_villedereve" json:"urlVilledereve"`
}

// Coordinate represents geographic coordinates
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Facets lists the distinct categorical values usable as city filters
type Facets struct {
	Regions     []string `json:"regions"`
	Departments []string `json:"departments"`
	Academies   []string `json:"academies"`
}
