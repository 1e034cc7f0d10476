package ticket

import (
	"errors"
	"strings"
)

// Class is the requested ticket class. The value doubles as the train_type
// the upstream API reports, compared case-insensitively.
type Class string

const (
	ClassHighSpeed Class = "high-speed"
	ClassBullet    Class = "bullet"
	ClassNormal    Class = "normal"
)

// ClassFromKeyword maps a leading query token to a ticket class.
func ClassFromKeyword(tok string) (Class, bool) {
	switch strings.ToLower(tok) {
	case "high-speed", "highspeed":
		return ClassHighSpeed, true
	case "bullet":
		return ClassBullet, true
	case "normal":
		return ClassNormal, true
	}
	return "", false
}

// Query is the canonical form every input shape normalizes into. Date is
// always set (defaults to the current date); TimeOfDay is empty when the
// user gave none and zero-padded HH:MM otherwise.
type Query struct {
	Class       Class  `validate:"required"`
	Origin      string `validate:"required"`
	Destination string `validate:"required,nefield=Origin"`
	Date        string `validate:"required,datetime=2006-01-02"`
	TimeOfDay   string `validate:"omitempty,datetime=15:04"`
}

// RawTicket mirrors one entry of the upstream search payload.
type RawTicket struct {
	TrainNumber   string    `json:"trainumber"`
	TrainType     string    `json:"traintype"`
	DepartStation string    `json:"departstation"`
	ArriveStation string    `json:"arrivestation"`
	DepartTime    string    `json:"departtime"`
	ArriveTime    string    `json:"arrivetime"`
	RunTime       string    `json:"runtime"`
	Seats         []RawSeat `json:"ticket_info"`
}

type RawSeat struct {
	SeatName      string `json:"seatname"`
	SeatPrice     string `json:"seatprice"`
	SeatInventory int    `json:"seatinventory"`
}

// Record is a processed, deduplicated ticket entry.
// Identity key is (TrainNumber, DepartTime, ArriveTime).
type Record struct {
	TrainNumber   string
	TrainType     string
	DepartStation string
	ArriveStation string
	DepartTime    string
	ArriveTime    string
	RunTime       string
	PriceRange    string
	Seats         []SeatOption
}

type SeatOption struct {
	Name      string
	Price     string // decimal string, or "unknown"
	Inventory int
}

var (
	ErrParameterCount      = errors.New("wrong number of query parameters")
	ErrDateTimeFormat      = errors.New("invalid date or time format")
	ErrNoData              = errors.New("no usable ticket data")
	ErrUpstreamUnavailable = errors.New("ticket service unavailable")
)
