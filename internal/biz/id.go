package biz

import "go.mongodb.org/mongo-driver/bson/primitive"

// IDLength is the fixed width of every identifier.
const IDLength = 24

// NewID returns a fresh 24 character hex identifier.
func NewID() string {
	return primitive.NewObjectID().Hex()
}

// ValidID reports whether id has the identifier shape.
func ValidID(id string) bool {
	return len(id) == IDLength && primitive.IsValidObjectID(id)
}
