package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	helper "github.com/princekumar-dev/MSEC-Academics-sub001/internals/helpers"

	"github.com/princekumar-dev/MSEC-Academics-sub001/internals/features/notifications/model"
)

type NotificationRepository struct {
	notifications *mongo.Collection
	subscriptions *mongo.Collection
}

func NewNotificationRepository(db *mongo.Database, notificationCol, subscriptionCol string) *NotificationRepository {
	return &NotificationRepository{
		notifications: db.Collection(notificationCol),
		subscriptions: db.Collection(subscriptionCol),
	}
}

func (r *NotificationRepository) InsertNotification(ctx context.Context, n *model.Notification) error {
	n.CreatedAt = time.Now()
	_, err := r.notifications.InsertOne(ctx, n)
	return err
}

func (r *NotificationRepository) ListByUser(ctx context.Context, email string, offset, limit int) ([]model.Notification, int64, error) {
	q := bson.M{"userEmail": email}
	total, err := r.notifications.CountDocuments(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))
	cur, err := r.notifications.Find(ctx, q, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	var out []model.Notification
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, email, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: invalid notification id", helper.ErrNotFound)
	}
	res, err := r.notifications.UpdateOne(ctx,
		bson.M{"_id": oid, "userEmail": email},
		bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: notification %s", helper.ErrNotFound, id)
	}
	return nil
}

// SaveSubscription upserts by endpoint so browsers re-registering the same
// subscription do not pile up duplicates.
func (r *NotificationRepository) SaveSubscription(ctx context.Context, s *model.PushSubscription) error {
	now := time.Now()
	_, err := r.subscriptions.UpdateOne(ctx,
		bson.M{"endpoint": s.Endpoint},
		bson.M{
			"$set": bson.M{
				"userEmail": s.UserEmail,
				"keys":      s.Keys,
				"active":    true,
				"updatedAt": now,
			},
			"$setOnInsert": bson.M{"createdAt": now},
		},
		options.Update().SetUpsert(true))
	return err
}

func (r *NotificationRepository) ActiveSubscriptions(ctx context.Context, email string) ([]model.PushSubscription, error) {
	cur, err := r.subscriptions.Find(ctx, bson.M{"userEmail": email, "active": true})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []model.PushSubscription
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *NotificationRepository) DeactivateSubscription(ctx context.Context, endpoint string) error {
	res, err := r.subscriptions.UpdateOne(ctx,
		bson.M{"endpoint": endpoint},
		bson.M{"$set": bson.M{"active": false, "updatedAt": time.Now()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return errors.New("subscription not found")
	}
	return nil
}
