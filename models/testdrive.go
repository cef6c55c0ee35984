package models

import "time"

// TestDriveRecord is a confirmed test-drive booking. Records are append-only:
// exactly one is written per completed funnel, and they are never updated.
type TestDriveRecord struct {
	ID          string    `bson:"id" json:"id"`
	UserID      string    `bson:"user_id" json:"userId"`
	CarRef      string    `bson:"car_ref" json:"carRef"`
	Car         string    `bson:"car" json:"car"`
	ScheduledAt time.Time `bson:"scheduled_at" json:"scheduledAt"`
	Name        string    `bson:"name" json:"name"`
	Phone       string    `bson:"phone" json:"phone"`
	HasLicense  bool      `bson:"has_license" json:"hasLicense"`
	CreatedAt   time.Time `bson:"created_at" json:"createdAt"`
}
