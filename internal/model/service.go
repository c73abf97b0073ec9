package model

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type ServiceCategory string

const (
	CategoryGeneral      ServiceCategory = "general"
	CategoryOrthodontics ServiceCategory = "orthodontics"
	CategorySurgery      ServiceCategory = "surgery"
	CategoryCosmetic     ServiceCategory = "cosmetic"
	CategoryPediatric    ServiceCategory = "pediatric"
	CategoryOther        ServiceCategory = "other"
)

func (c ServiceCategory) Valid() bool {
	switch c {
	case CategoryGeneral, CategoryOrthodontics, CategorySurgery, CategoryCosmetic, CategoryPediatric, CategoryOther:
		return true
	}
	return false
}

type Service struct {
	ID                uuid.UUID       `db:"id" json:"id"`
	Name              string          `db:"name" json:"name"`
	Description       string          `db:"description" json:"description"`
	Duration          int             `db:"duration" json:"duration"`
	Price             decimal.Decimal `db:"price" json:"price"`
	Category          ServiceCategory `db:"category" json:"category"`
	Active            bool            `db:"active" json:"active"`
	RequiredEquipment pq.StringArray  `db:"required_equipment" json:"requiredEquipment"`
	Notes             string          `db:"notes" json:"notes,omitempty"`
	Timestamps
}

type ServiceInput struct {
	Name              string          `json:"name" binding:"required"`
	Description       string          `json:"description" binding:"required"`
	Duration          int             `json:"duration" binding:"omitempty,min=1"`
	Price             decimal.Decimal `json:"price"`
	Category          ServiceCategory `json:"category" binding:"required,oneof=general orthodontics surgery cosmetic pediatric other"`
	Active            *bool           `json:"active"`
	RequiredEquipment []string        `json:"requiredEquipment"`
	Notes             string          `json:"notes"`
}
