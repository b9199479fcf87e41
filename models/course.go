package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Course is the catalog projection the checkout path reads: current
// price and discount at order-creation time. Authoring fields live
// elsewhere.
type Course struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CourseID  string             `bson:"course_id" json:"course_id"`
	Title     string             `bson:"title" json:"title"`
	Slug      string             `bson:"slug,omitempty" json:"slug,omitempty"`
	Price     int64              `bson:"price" json:"price"`
	SalePrice *int64             `bson:"sale_price,omitempty" json:"sale_price,omitempty"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}
