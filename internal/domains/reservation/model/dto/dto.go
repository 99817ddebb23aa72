package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"pousada/internal/domains/reservation/model"
	"pousada/shared"
	"pousada/shared/constant"
	"pousada/shared/failure"
	gModel "pousada/shared/model"
	"pousada/shared/timezone"
)

type CreateReservationRequest struct {
	RoomID   string `json:"room_id"   validate:"required"`
	CheckIn  string `json:"check_in"  validate:"required"`
	CheckOut string `json:"check_out" validate:"required"`
}

type UpdateReservationRequest struct {
	CheckIn  string `json:"check_in"  validate:"required"`
	CheckOut string `json:"check_out" validate:"required"`
}

// ParseStay turns the date-only strings into times. Date ordering is
// checked by the service, after the referenced entities are resolved.
func ParseStay(checkIn, checkOut string) (in, out time.Time, err error) {
	in, err = timezone.Parse(constant.DateOnlyFormat, checkIn)
	if err != nil {
		return in, out, failure.BadRequestFromString("check_in must be a date in YYYY-MM-DD format")
	}

	out, err = timezone.Parse(constant.DateOnlyFormat, checkOut)
	if err != nil {
		return in, out, failure.BadRequestFromString("check_out must be a date in YYYY-MM-DD format")
	}

	return in, out, nil
}

func (r *CreateReservationRequest) ToModel(userID string, checkIn, checkOut time.Time, totalPrice decimal.Decimal) model.Reservation {
	return model.Reservation{
		ID:         uuid.NewString(),
		UserID:     userID,
		RoomID:     r.RoomID,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		TotalPrice: totalPrice,
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  userID,
			ModifiedBy: userID,
		},
	}
}

type ReservationResponse struct {
	ID         string          `json:"id"`
	UserID     string          `json:"user_id"`
	RoomID     string          `json:"room_id"`
	CheckIn    string          `json:"check_in"`
	CheckOut   string          `json:"check_out"`
	TotalPrice decimal.Decimal `json:"total_price" swaggertype:"string"`

	RoomTitle         string           `json:"room_title,omitempty"`
	RoomPricePerNight *decimal.Decimal `json:"room_price_per_night,omitempty" swaggertype:"string"`
	RoomImageURL      *string          `json:"room_image_url,omitempty"`
	UserName          *string          `json:"user_name,omitempty"`
	UserEmail         *string          `json:"user_email,omitempty"`

	CreatedAt string `json:"created_at"`
}

func (r *ReservationResponse) FromModel(reservation model.Reservation) {
	r.ID = reservation.ID
	r.UserID = reservation.UserID
	r.RoomID = reservation.RoomID
	r.CheckIn = reservation.CheckIn.Format(constant.DateOnlyFormat)
	r.CheckOut = reservation.CheckOut.Format(constant.DateOnlyFormat)
	r.TotalPrice = reservation.TotalPrice
	r.RoomTitle = reservation.RoomTitle
	r.RoomPricePerNight = reservation.RoomPricePerNight
	r.RoomImageURL = reservation.RoomImageURL
	r.UserName = reservation.UserName
	r.UserEmail = reservation.UserEmail
	r.CreatedAt = reservation.CreatedAt.Format(constant.DateFormat)
}

type GetReservationsResponse struct {
	Reservations []ReservationResponse `json:"reservations"`
	TotalPage    int                   `json:"total_page"`
	TotalData    int                   `json:"total_data"`
}

func (r *GetReservationsResponse) FromModels(models []model.Reservation, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Reservations = make([]ReservationResponse, len(models))
	for i, mod := range models {
		r.Reservations[i].FromModel(mod)
	}
}
