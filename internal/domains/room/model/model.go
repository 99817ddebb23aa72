package model

import (
	"pousada/shared/model"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

const (
	TableName  = "rooms"
	EntityName = "room"

	FieldID                  = "id"
	FieldTitle               = "title"
	FieldDescription         = "description"
	FieldPricePerNight       = "price_per_night"
	FieldBeds                = "beds"
	FieldBedTypes            = "bed_types"
	FieldMaxPeople           = "max_people"
	FieldFloor               = "floor"
	FieldSmokingAllowed      = "smoking_allowed"
	FieldPetAllowed          = "pet_allowed"
	FieldBreakfastIncluded   = "breakfast_included"
	FieldTags                = "tags"
	FieldAddressCEP          = "address_cep"
	FieldAddressStreet       = "address_street"
	FieldAddressNeighborhood = "address_neighborhood"
	FieldAddressCity         = "address_city"
	FieldAddressState        = "address_state"
	FieldImageURL            = "image_url"
)

type Room struct {
	ID                  string          `db:"id"`
	Title               string          `db:"title"`
	Description         string          `db:"description"`
	PricePerNight       decimal.Decimal `db:"price_per_night"`
	Beds                int             `db:"beds"`
	BedTypes            string          `db:"bed_types"`
	MaxPeople           int             `db:"max_people"`
	Floor               int             `db:"floor"`
	SmokingAllowed      bool            `db:"smoking_allowed"`
	PetAllowed          bool            `db:"pet_allowed"`
	BreakfastIncluded   bool            `db:"breakfast_included"`
	Tags                pq.StringArray  `db:"tags"`
	AddressCEP          string          `db:"address_cep"`
	AddressStreet       string          `db:"address_street"`
	AddressNeighborhood string          `db:"address_neighborhood"`
	AddressCity         string          `db:"address_city"`
	AddressState        string          `db:"address_state"`
	ImageURL            string          `db:"image_url"`
	model.Metadata
}
