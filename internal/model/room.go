package model

import (
    "time"

    "github.com/shopspring/decimal"
)

// Room types offered by the hotel.
const (
    RoomSingle = "single"
    RoomDouble = "double"
    RoomSuite  = "suite"
)

// Room is a bookable unit of the hotel inventory.
//
// Fields:
//  ID           – primary key identifier.
//  Number       – unique door number, e.g. "204".
//  Type         – single, double or suite.
//  Capacity     – maximum number of guests.
//  Price        – nightly rate.
//  Description  – free text shown to guests.
//  Available    – false while the room is out of service.
//  DateCreation – creation timestamp.
type Room struct {
    ID           uint64          `json:"id"`
    Number       string          `json:"number"`
    Type         string          `json:"type"`
    Capacity     int             `json:"capacity"`
    Price        decimal.Decimal `json:"price"`
    Description  string          `json:"description"`
    Available    bool            `json:"available"`
    DateCreation time.Time       `json:"date_creation"`
}
