package model

import (
	"time"

	"github.com/shopspring/decimal"

	"pousada/shared/model"
)

const (
	TableName  = "reservations"
	EntityName = "reservation"

	FieldID         = "id"
	FieldUserID     = "user_id"
	FieldRoomID     = "room_id"
	FieldCheckIn    = "check_in"
	FieldCheckOut   = "check_out"
	FieldTotalPrice = "total_price"
)

type Reservation struct {
	ID         string          `db:"id"`
	UserID     string          `db:"user_id"`
	RoomID     string          `db:"room_id"`
	CheckIn    time.Time       `db:"check_in"`
	CheckOut   time.Time       `db:"check_out"`
	TotalPrice decimal.Decimal `db:"total_price"`

	RoomTitle         string           `db:"room_title"           table:"rooms" column:"title"`
	RoomPricePerNight *decimal.Decimal `db:"room_price_per_night" table:"rooms" column:"price_per_night"`
	RoomImageURL      *string          `db:"room_image_url"       table:"rooms" column:"image_url"`
	UserName          *string          `db:"user_name"            table:"users" column:"name"`
	UserEmail         *string          `db:"user_email"           table:"users" column:"email"`

	model.Metadata
}

func (Reservation) GetJoinQuery() string {
	return "LEFT JOIN rooms ON rooms.id = reservations.room_id LEFT JOIN users ON users.id = reservations.user_id"
}
