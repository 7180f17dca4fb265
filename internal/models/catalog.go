package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const DefaultTagColor = "#FFFFFF"

// Unit is a measurement unit such as "g" or "pcs".
type Unit struct {
	ID   uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	Name string    `gorm:"size:200;not null;uniqueIndex" json:"name"`
}

func (Unit) TableName() string {
	return "units"
}

func (u *Unit) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

type Ingredient struct {
	ID     uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	Name   string    `gorm:"size:200;not null;uniqueIndex:idx_ingredient_name_unit" json:"name"`
	UnitID uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex:idx_ingredient_name_unit" json:"unit_id"`
	Unit   Unit      `gorm:"constraint:OnDelete:RESTRICT" json:"unit"`
}

func (Ingredient) TableName() string {
	return "ingredients"
}

func (i *Ingredient) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

type Tag struct {
	ID    uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	Name  string    `gorm:"size:200;not null" json:"name"`
	Color string    `gorm:"size:7;not null;default:'#FFFFFF'" json:"color"`
	Slug  string    `gorm:"size:200;not null;uniqueIndex" json:"slug"`
}

func (Tag) TableName() string {
	return "tags"
}

func (t *Tag) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Color == "" {
		t.Color = DefaultTagColor
	}
	return nil
}
