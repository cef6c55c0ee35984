package models

import "fmt"

// Option is a selectable menu entry: an opaque identifier plus a display label.
type Option struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// CarListing is an immutable projection of a catalog row.
type CarListing struct {
	Make     string `bson:"make" json:"make"`
	Model    string `bson:"model" json:"model"`
	Variant  string `bson:"variant" json:"variant"`
	CarType  string `bson:"type" json:"type"`
	Year     int    `bson:"manufacturing_year" json:"manufacturingYear"`
	FuelType string `bson:"fuel_type" json:"fuelType"`
	Price    int64  `bson:"estimated_selling_price" json:"estimatedSellingPrice"`
	ImageID  string `bson:"image_id,omitempty" json:"imageId,omitempty"`
}

// Label returns the display name used in captions and booking summaries.
func (c CarListing) Label() string {
	return fmt.Sprintf("%s %s %s", c.Make, c.Model, c.Variant)
}

// Caption renders the listing card text shown alongside the car image.
func (c CarListing) Caption() string {
	return fmt.Sprintf("🚗 %s\n📅 Year: %d\n⛽ Fuel: %s\n💰 Price: ₹%d",
		c.Label(), c.Year, c.FuelType, c.Price)
}
