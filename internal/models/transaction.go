package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the day/month/year form the upstream dataset uses for purchase dates.
// Day and month may be written with or without a leading zero.
const DateLayout = "2/1/2006"

type Transaction struct {
	Product      string
	Category     string
	Price        decimal.Decimal
	Freight      decimal.Decimal
	PurchaseDate time.Time
	Seller       string
	State        string
	Rating       int
	PaymentType  string
	Installments int
	Lat          float64
	Lon          float64
}

type StateRevenue struct {
	State   string          `json:"state"`
	Lat     float64         `json:"lat"`
	Lon     float64         `json:"lon"`
	Revenue decimal.Decimal `json:"revenue"`
}

type StateCount struct {
	State string  `json:"state"`
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	Count int     `json:"count"`
}

type MonthRevenue struct {
	Year      int             `json:"year"`
	Month     time.Month      `json:"month"`
	MonthName string          `json:"month_name"`
	Revenue   decimal.Decimal `json:"revenue"`
}

type MonthCount struct {
	Year      int        `json:"year"`
	Month     time.Month `json:"month"`
	MonthName string     `json:"month_name"`
	Count     int        `json:"count"`
}

type CategoryRevenue struct {
	Category string          `json:"category"`
	Revenue  decimal.Decimal `json:"revenue"`
}

type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

type SellerTotal struct {
	Seller  string          `json:"seller"`
	Revenue decimal.Decimal `json:"revenue"`
	Count   int             `json:"count"`
}

// SellerMetric selects the column TopSellers ranks by.
type SellerMetric string

const (
	BySum   SellerMetric = "sum"
	ByCount SellerMetric = "count"
)

func ParseSellerMetric(s string) (SellerMetric, bool) {
	switch SellerMetric(s) {
	case BySum, "":
		return BySum, true
	case ByCount:
		return ByCount, true
	default:
		return "", false
	}
}
