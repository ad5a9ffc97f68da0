package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a staff or HOD account. The signature image path is referenced by
// marksheet snapshots taken at verification/approval time.
type User struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email          string             `bson:"email" json:"email"`
	Name           string             `bson:"name" json:"name"`
	Role           string             `bson:"role" json:"role"`
	Department     string             `bson:"department" json:"department"`
	PasswordHash   string             `bson:"passwordHash" json:"-"`
	SignatureImage string             `bson:"signatureImage,omitempty" json:"signature_image,omitempty"`
	Active         bool               `bson:"active" json:"active"`
	CreatedAt      time.Time          `bson:"createdAt" json:"created_at"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updated_at"`
}
