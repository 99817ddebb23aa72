package dto

import (
	"mime/multipart"
	"net/http"

	"pousada/infras/cep"
	"pousada/internal/domains/room/model"
	"pousada/shared"
	"pousada/shared/constant"
	gDto "pousada/shared/dto"
	"pousada/shared/failure"
	gModel "pousada/shared/model"
	"pousada/shared/timezone"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type CreateRoomRequest struct {
	Title             string                `json:"title"              validate:"required,min=2,max=150"`
	Description       string                `json:"description"        validate:"omitempty,max=2000"`
	PricePerNight     decimal.Decimal       `json:"price_per_night"    swaggertype:"string"`
	Beds              int                   `json:"beds"               validate:"omitempty,gte=1"`
	BedTypes          string                `json:"bed_types"          validate:"omitempty,max=100"`
	MaxPeople         int                   `json:"max_people"         validate:"omitempty,gte=1"`
	Floor             int                   `json:"floor"              validate:"omitempty,gte=0"`
	SmokingAllowed    bool                  `json:"smoking_allowed"`
	PetAllowed        bool                  `json:"pet_allowed"`
	BreakfastIncluded bool                  `json:"breakfast_included"`
	Tags              []string              `json:"tags"               validate:"omitempty,dive,min=1,max=50"`
	AddressCEP        string                `json:"address_cep"        validate:"omitempty,max=10"`
	Image             *multipart.FileHeader `json:"-"                  swaggerignore:"true" validate:"omitempty,mimetypes=image/png image/jpg image/jpeg,maxfilesize=5"`
	ImageFile         multipart.File        `json:"-"`
}

// FromForm fills the request from a multipart form. The image part is
// optional; everything else arrives as plain form values, with tags as a
// comma separated list.
func (r *CreateRoomRequest) FromForm(req *http.Request) error {
	r.Title = req.FormValue("title")
	r.Description = req.FormValue("description")
	r.BedTypes = req.FormValue("bed_types")
	r.AddressCEP = req.FormValue("address_cep")
	r.Tags = shared.SplitTags(req.FormValue("tags"))

	price, err := decimal.NewFromString(req.FormValue("price_per_night"))
	if err != nil {
		return failure.BadRequestFromString("price_per_night must be a decimal number")
	}

	if !price.IsPositive() {
		return failure.BadRequestFromString("price_per_night must be positive")
	}

	r.PricePerNight = price

	r.Beds = formInt(req, "beds", 1)
	r.MaxPeople = formInt(req, "max_people", 2)
	r.Floor = formInt(req, "floor", 1)
	r.SmokingAllowed = formBool(req, "smoking_allowed")
	r.PetAllowed = formBool(req, "pet_allowed")
	r.BreakfastIncluded = formBool(req, "breakfast_included")

	file, header, err := req.FormFile("image")
	if err == nil {
		r.Image = header
		r.ImageFile = file
	}

	return nil
}

func (r *CreateRoomRequest) ToModel(username, imageURL string, address *cep.Address) model.Room {
	room := model.Room{
		ID:                uuid.NewString(),
		Title:             r.Title,
		Description:       r.Description,
		PricePerNight:     r.PricePerNight,
		Beds:              r.Beds,
		BedTypes:          r.BedTypes,
		MaxPeople:         r.MaxPeople,
		Floor:             r.Floor,
		SmokingAllowed:    r.SmokingAllowed,
		PetAllowed:        r.PetAllowed,
		BreakfastIncluded: r.BreakfastIncluded,
		Tags:              pq.StringArray(r.Tags),
		AddressCEP:        r.AddressCEP,
		ImageURL:          imageURL,
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  username,
			ModifiedBy: username,
		},
	}

	if address != nil {
		room.AddressStreet = address.Street
		room.AddressNeighborhood = address.Neighborhood
		room.AddressCity = address.City
		room.AddressState = address.State
	}

	return room
}

type UpdateRoomRequest struct {
	Title             *string               `db:"title"              json:"title"              validate:"omitempty,min=2,max=150"`
	Description       *string               `db:"description"        json:"description"        validate:"omitempty,max=2000"`
	PricePerNight     *decimal.Decimal      `db:"price_per_night"    json:"price_per_night"    swaggertype:"string"`
	Beds              *int                  `db:"beds"               json:"beds"               validate:"omitempty,gte=1"`
	BedTypes          *string               `db:"bed_types"          json:"bed_types"          validate:"omitempty,max=100"`
	MaxPeople         *int                  `db:"max_people"         json:"max_people"         validate:"omitempty,gte=1"`
	Floor             *int                  `db:"floor"              json:"floor"              validate:"omitempty,gte=0"`
	SmokingAllowed    *bool                 `db:"smoking_allowed"    json:"smoking_allowed"`
	PetAllowed        *bool                 `db:"pet_allowed"        json:"pet_allowed"`
	BreakfastIncluded *bool                 `db:"breakfast_included" json:"breakfast_included"`
	Tags              pq.StringArray        `db:"tags"               json:"tags"               validate:"omitempty,dive,min=1,max=50"`
	AddressCEP        *string               `db:"address_cep"        json:"address_cep"        validate:"omitempty,max=10"`
	Image             *multipart.FileHeader `json:"-"                swaggerignore:"true"      validate:"omitempty,mimetypes=image/png image/jpg image/jpeg,maxfilesize=5"`
	ImageFile         multipart.File        `json:"-"`
}

// FromForm fills the request from a multipart form. Absent form values stay
// nil and leave the stored column untouched.
func (r *UpdateRoomRequest) FromForm(req *http.Request) error {
	if v := req.FormValue("title"); v != constant.Empty {
		r.Title = &v
	}

	if v := req.FormValue("description"); v != constant.Empty {
		r.Description = &v
	}

	if v := req.FormValue("price_per_night"); v != constant.Empty {
		price, err := decimal.NewFromString(v)
		if err != nil {
			return failure.BadRequestFromString("price_per_night must be a decimal number")
		}

		if !price.IsPositive() {
			return failure.BadRequestFromString("price_per_night must be positive")
		}

		r.PricePerNight = &price
	}

	if v := req.FormValue("bed_types"); v != constant.Empty {
		r.BedTypes = &v
	}

	if v := req.FormValue("address_cep"); v != constant.Empty {
		r.AddressCEP = &v
	}

	r.Tags = pq.StringArray(shared.SplitTags(req.FormValue("tags")))

	for name, dst := range map[string]**int{"beds": &r.Beds, "max_people": &r.MaxPeople, "floor": &r.Floor} {
		if v := req.FormValue(name); v != constant.Empty {
			intValue, err := shared.ConvertStringToInt(v)
			if err != nil {
				return failure.BadRequestFromString(name + " must be an integer")
			}

			*dst = &intValue
		}
	}

	for name, dst := range map[string]**bool{"smoking_allowed": &r.SmokingAllowed, "pet_allowed": &r.PetAllowed, "breakfast_included": &r.BreakfastIncluded} {
		if v := req.FormValue(name); v != constant.Empty {
			boolValue := shared.ConvertStringToBool(v)
			if boolValue == nil {
				return failure.BadRequestFromString(name + " must be a boolean")
			}

			*dst = boolValue
		}
	}

	file, header, err := req.FormFile("image")
	if err == nil {
		r.Image = header
		r.ImageFile = file
	}

	return nil
}

type RoomResponse struct {
	ID                  string          `json:"id"`
	Title               string          `json:"title"`
	Description         string          `json:"description"`
	PricePerNight       decimal.Decimal `json:"price_per_night"    swaggertype:"string"`
	Beds                int             `json:"beds"`
	BedTypes            string          `json:"bed_types"`
	MaxPeople           int             `json:"max_people"`
	Floor               int             `json:"floor"`
	SmokingAllowed      bool            `json:"smoking_allowed"`
	PetAllowed          bool            `json:"pet_allowed"`
	BreakfastIncluded   bool            `json:"breakfast_included"`
	Tags                []string        `json:"tags"`
	AddressCEP          string          `json:"address_cep"`
	AddressStreet       string          `json:"address_street"`
	AddressNeighborhood string          `json:"address_neighborhood"`
	AddressCity         string          `json:"address_city"`
	AddressState        string          `json:"address_state"`
	ImageURL            string          `json:"image_url"`
	gDto.Metadata
}

func (r *RoomResponse) FromModel(room model.Room) {
	r.ID = room.ID
	r.Title = room.Title
	r.Description = room.Description
	r.PricePerNight = room.PricePerNight
	r.Beds = room.Beds
	r.BedTypes = room.BedTypes
	r.MaxPeople = room.MaxPeople
	r.Floor = room.Floor
	r.SmokingAllowed = room.SmokingAllowed
	r.PetAllowed = room.PetAllowed
	r.BreakfastIncluded = room.BreakfastIncluded
	r.Tags = []string(room.Tags)
	r.AddressCEP = room.AddressCEP
	r.AddressStreet = room.AddressStreet
	r.AddressNeighborhood = room.AddressNeighborhood
	r.AddressCity = room.AddressCity
	r.AddressState = room.AddressState
	r.ImageURL = room.ImageURL
	r.Metadata.FromModel(room.Metadata)
}

type GetRoomsResponse struct {
	Rooms     []RoomResponse `json:"rooms"`
	TotalPage int            `json:"total_page"`
	TotalData int            `json:"total_data"`
}

func (r *GetRoomsResponse) FromModels(models []model.Room, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Rooms = make([]RoomResponse, len(models))
	for i, mod := range models {
		r.Rooms[i].FromModel(mod)
	}
}

func formInt(req *http.Request, name string, fallback int) int {
	v := req.FormValue(name)
	if v == constant.Empty {
		return fallback
	}

	intValue, err := shared.ConvertStringToInt(v)
	if err != nil {
		return fallback
	}

	return intValue
}

func formBool(req *http.Request, name string) bool {
	boolValue := shared.ConvertStringToBool(req.FormValue(name))

	return boolValue != nil && *boolValue
}
