package domain

import (
	"slices"
	"time"
)

// Diet is a nutrition plan assigned to a client. A diet owns its meals.
type Diet struct {
	ID          ID         `json:"id"`
	ClientID    ID         `json:"clientId" validate:"required"`
	Name        string     `json:"name" validate:"required,max=120"`
	Description string     `json:"description,omitempty"`
	Status      int        `json:"status" validate:"gte=0,lte=2"`
	Calories    float64    `json:"calories,omitempty" validate:"gte=0"`
	StartDate   *time.Time `json:"startDate,omitempty"`
	EndDate     *time.Time `json:"endDate,omitempty"`
	Meals       []Meal     `json:"meals,omitempty" validate:"dive"`
}

// Key implements Entity.
func (d Diet) Key() string { return d.ID.String() }

// Clone implements Cloner.
func (d Diet) Clone() Diet {
	if d.Meals != nil {
		meals := make([]Meal, len(d.Meals))
		for i, m := range d.Meals {
			meals[i] = m.Clone()
		}
		d.Meals = meals
	}
	return d
}

// Meal is one meal of a diet (breakfast, lunch, ...). A meal owns its foods.
type Meal struct {
	ID     ID         `json:"id"`
	DietID ID         `json:"dietId"`
	Name   string     `json:"name" validate:"required,max=80"`
	Time   string     `json:"time,omitempty"`
	Foods  []MealFood `json:"foods,omitempty" validate:"dive"`
}

// Clone implements Cloner.
func (m Meal) Clone() Meal {
	m.Foods = slices.Clone(m.Foods)
	return m
}

// Key implements Entity.
func (m Meal) Key() string { return m.ID.String() }

// MealFood is a food portion inside a meal.
type MealFood struct {
	ID       ID      `json:"id"`
	Name     string  `json:"name" validate:"required"`
	Quantity float64 `json:"quantity" validate:"gt=0"`
	Unit     string  `json:"unit,omitempty"`
	Calories float64 `json:"calories,omitempty" validate:"gte=0"`
	Protein  float64 `json:"protein,omitempty" validate:"gte=0"`
	Carbs    float64 `json:"carbs,omitempty" validate:"gte=0"`
	Fat      float64 `json:"fat,omitempty" validate:"gte=0"`
}
