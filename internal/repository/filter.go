package repository

import (
	"math"
	"strings"

	"github.com/alexivanou/communes-api/internal/model"
)

// cityConditions is the dialect-neutral part of a city listing predicate.
// Placeholders are '?' and get rebound by sqlx.
type cityConditions struct {
	clauses []string
	args    []interface{}
	point   *model.Coordinate
}

// likeFunc renders a case-insensitive pattern match of column against a placeholder
type likeFunc func(column string) string

func buildCityConditions(f model.CityFilter, like likeFunc) cityConditions {
	var c cityConditions

	if f.Location != nil {
		c.add(like("nom_standard"), *f.Location)
	}

	c.addIntRange("population", f.Population)
	c.addRange("altitude_moyenne", f.Altitude)
	c.addRange("densite", f.Density)

	if f.Region != nil {
		c.add("reg_nom = ?", *f.Region)
	}
	if f.Department != nil {
		c.add("dep_nom = ?", *f.Department)
	}
	if f.Academie != nil {
		c.add("academie_nom = ?", *f.Academie)
	}

	c.point = f.Point
	return c
}

func (c *cityConditions) add(clause string, args ...interface{}) {
	c.clauses = append(c.clauses, clause)
	c.args = append(c.args, args...)
}

func (c *cityConditions) addRange(column string, r model.Range) {
	if r.Min != nil {
		c.add(column+" >= ?", *r.Min)
	}
	if r.Max != nil {
		c.add(column+" <= ?", *r.Max)
	}
}

// addIntRange narrows bounds to whole numbers for integer columns
func (c *cityConditions) addIntRange(column string, r model.Range) {
	if r.Min != nil {
		c.add(column+" >= ?", int64(math.Ceil(*r.Min)))
	}
	if r.Max != nil {
		c.add(column+" <= ?", int64(math.Floor(*r.Max)))
	}
}

func (c *cityConditions) where() string {
	if len(c.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(c.clauses, " AND ")
}

// escapeLike makes every character of s match literally in a LIKE pattern
// using backslash as the escape character.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
