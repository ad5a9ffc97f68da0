package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	helper "github.com/princekumar-dev/MSEC-Academics-sub001/internals/helpers"

	"github.com/princekumar-dev/MSEC-Academics-sub001/internals/constants"
	marksvc "github.com/princekumar-dev/MSEC-Academics-sub001/internals/features/marksheets/marksheet/service"
	"github.com/princekumar-dev/MSEC-Academics-sub001/internals/features/users/model"
)

type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database, collection string) *UserRepository {
	return &UserRepository{col: db.Collection(collection)}
}

// The lifecycle service resolves HOD contacts through this repository.
var _ marksvc.Directory = (*UserRepository)(nil)

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	err := r.col.FindOne(ctx, bson.M{"email": email, "active": true}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: user %s", helper.ErrNotFound, email)
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid user id", helper.ErrNotFound)
	}
	var u model.User
	err = r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: user %s", helper.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// HodEmail resolves the active HOD account of a department.
func (r *UserRepository) HodEmail(ctx context.Context, department string) (string, error) {
	var u model.User
	err := r.col.FindOne(ctx, bson.M{
		"role":       constants.RoleHod,
		"department": department,
		"active":     true,
	}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", fmt.Errorf("%w: no HOD for department %s", helper.ErrNotFound, department)
	}
	if err != nil {
		return "", err
	}
	return u.Email, nil
}

func (r *UserRepository) Insert(ctx context.Context, u *model.User) (*model.User, error) {
	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now
	u.Active = true
	res, err := r.col.InsertOne(ctx, u)
	if err != nil {
		return nil, err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		u.ID = oid
	}
	return u, nil
}

func (r *UserRepository) UpdateSignature(ctx context.Context, id, path string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: invalid user id", helper.ErrNotFound)
	}
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"signatureImage": path, "updatedAt": time.Now()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: user %s", helper.ErrNotFound, id)
	}
	return nil
}
