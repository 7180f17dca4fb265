package types

import (
	"github.com/google/uuid"
)

type TagRead struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Color string    `json:"color"`
	Slug  string    `json:"slug"`
}

type TagWrite struct {
	Name  string `json:"name" binding:"required,max=200"`
	Color string `json:"color" binding:"omitempty,hexcolor,len=7"`
	Slug  string `json:"slug" binding:"required,max=200"`
}

type IngredientRead struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	MeasurementUnit string    `json:"measurement_unit"`
}

type IngredientWrite struct {
	Name            string `json:"name" binding:"required,max=200"`
	MeasurementUnit string `json:"measurement_unit" binding:"required,max=200"`
}
