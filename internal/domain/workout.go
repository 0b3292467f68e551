package domain

import "slices"

// Workout is a training session assigned to a client.
type Workout struct {
	ID              ID                `json:"id"`
	ClientID        ID                `json:"clientId" validate:"required"`
	Name            string            `json:"name" validate:"required,min=2,max=120"`
	Description     string            `json:"description,omitempty"`
	Type            string            `json:"type" validate:"required"`
	Difficulty      string            `json:"difficulty" validate:"omitempty,oneof=beginner intermediate advanced"`
	DurationMinutes int               `json:"durationMinutes" validate:"gt=0,lte=600"`
	Status          int               `json:"status" validate:"gte=0,lte=2"`
	Exercises       []WorkoutExercise `json:"exercises,omitempty" validate:"dive"`
}

// Key implements Entity.
func (w Workout) Key() string { return w.ID.String() }

// Clone implements Cloner.
func (w Workout) Clone() Workout {
	w.Exercises = slices.Clone(w.Exercises)
	return w
}

// WorkoutExercise is one exercise prescription inside a workout.
type WorkoutExercise struct {
	Name        string  `json:"name" validate:"required"`
	Sets        int     `json:"sets" validate:"gte=0"`
	Repetitions int     `json:"repetitions" validate:"gte=0"`
	LoadKg      float64 `json:"loadKg,omitempty" validate:"gte=0"`
	RestSeconds int     `json:"restSeconds,omitempty" validate:"gte=0"`
}

// Course is an educational course published on the platform.
type Course struct {
	ID            ID      `json:"id"`
	Title         string  `json:"title" validate:"required,max=150"`
	Description   string  `json:"description,omitempty"`
	Category      string  `json:"category,omitempty"`
	Instructor    string  `json:"instructor,omitempty"`
	Status        int     `json:"status" validate:"gte=0,lte=2"`
	Price         float64 `json:"price" validate:"gte=0"`
	DurationHours float64 `json:"durationHours,omitempty" validate:"gte=0"`
}

// Key implements Entity.
func (c Course) Key() string { return c.ID.String() }
