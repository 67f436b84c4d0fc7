package model

// Range is an inclusive numeric interval. A nil bound is unbounded.
type Range struct {
	Min *float64
	Max *float64
}

// IsSet reports whether either bound is present
func (r Range) IsSet() bool {
	return r.Min != nil || r.Max != nil
}

// CityFilter is the normalized filter record for city listing. Every field is
// optional; absence means "do not filter on this attribute".
type CityFilter struct {
	Insee      *string
	Location   *string
	Population Range
	Altitude   Range
	Density    Range
	Region     *string
	Department *string
	Academie   *string
	Point      *Coordinate
}

// IsEmpty reports whether no predicate is active
func (f CityFilter) IsEmpty() bool {
	return f.Insee == nil &&
		f.Location == nil &&
		!f.Population.IsSet() &&
		!f.Altitude.IsSet() &&
		!f.Density.IsSet() &&
		f.Region == nil &&
		f.Department == nil &&
		f.Academie == nil &&
		f.Point == nil
}
