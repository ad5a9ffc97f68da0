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

	"github.com/princekumar-dev/MSEC-Academics-sub001/internals/features/marksheets/marksheet/model"
	"github.com/princekumar-dev/MSEC-Academics-sub001/internals/features/marksheets/marksheet/service"
)

// MarksheetRepository is the Mongo-backed marksheet store. All lifecycle
// mutations go through targeted $set updates, never whole-document saves.
type MarksheetRepository struct {
	col *mongo.Collection
}

func NewMarksheetRepository(db *mongo.Database, collection string) *MarksheetRepository {
	return &MarksheetRepository{col: db.Collection(collection)}
}

var _ service.Store = (*MarksheetRepository)(nil)

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: invalid marksheet id %q", helper.ErrNotFound, id)
	}
	return oid, nil
}

func wrapStoreErr(err error) error {
	// The unique (registerNumber, examName) index turns a duplicate create
	// into a validation error, not a server fault.
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: a marksheet for this student and exam already exists", helper.ErrValidation)
	}
	if errors.Is(err, context.DeadlineExceeded) || mongo.IsTimeout(err) || mongo.IsNetworkError(err) {
		return fmt.Errorf("%w: %v", helper.ErrStoreUnavailable, err)
	}
	return err
}

func (r *MarksheetRepository) FindByID(ctx context.Context, id string) (*model.Marksheet, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	var m model.Marksheet
	err = r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: marksheet %s", helper.ErrNotFound, id)
	}
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	return &m, nil
}

func (r *MarksheetRepository) Insert(ctx context.Context, m *model.Marksheet) (*model.Marksheet, error) {
	res, err := r.col.InsertOne(ctx, m)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		m.ID = oid
	}
	return m, nil
}

func (r *MarksheetRepository) InsertMany(ctx context.Context, ms []model.Marksheet) (int, error) {
	if len(ms) == 0 {
		return 0, nil
	}
	docs := make([]interface{}, len(ms))
	for i := range ms {
		docs[i] = ms[i]
	}
	res, err := r.col.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	if res != nil && err != nil {
		// Unordered insert: report what made it in.
		return len(res.InsertedIDs), wrapStoreErr(err)
	}
	if err != nil {
		return 0, wrapStoreErr(err)
	}
	return len(res.InsertedIDs), nil
}

func (r *MarksheetRepository) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) (*model.Marksheet, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return r.findOneAndSet(ctx, bson.M{"_id": oid}, fields, id)
}

func (r *MarksheetRepository) UpdateFieldsWhere(ctx context.Context, id string, guard map[string]interface{}, fields map[string]interface{}) (*model.Marksheet, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	filter := bson.M{"_id": oid}
	for k, v := range guard {
		filter[k] = v
	}
	m, err := r.findOneAndSet(ctx, filter, fields, id)
	if errors.Is(err, helper.ErrNotFound) {
		// The document exists but the guard no longer holds.
		if exists, xerr := r.exists(ctx, oid); xerr == nil && exists {
			return nil, service.ErrNoMatch
		}
		return nil, err
	}
	return m, err
}

func (r *MarksheetRepository) findOneAndSet(ctx context.Context, filter bson.M, fields map[string]interface{}, id string) (*model.Marksheet, error) {
	set := bson.M{}
	for k, v := range fields {
		set[k] = v
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var m model.Marksheet
	err := r.col.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: marksheet %s", helper.ErrNotFound, id)
	}
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	return &m, nil
}

func (r *MarksheetRepository) exists(ctx context.Context, oid primitive.ObjectID) (bool, error) {
	n, err := r.col.CountDocuments(ctx, bson.M{"_id": oid}, options.Count().SetLimit(1))
	if err != nil {
		return false, wrapStoreErr(err)
	}
	return n > 0, nil
}

func (r *MarksheetRepository) CountDrafts(ctx context.Context, staffID, department string, year int) (int64, error) {
	n, err := r.col.CountDocuments(ctx, bson.M{
		"status":             model.StatusDraft,
		"staff.id":           staffID,
		"student.department": department,
		"student.year":       year,
	})
	if err != nil {
		return 0, wrapStoreErr(err)
	}
	return n, nil
}

func (r *MarksheetRepository) UpcomingDispatches(ctx context.Context, from, until time.Time) ([]model.Marksheet, error) {
	return r.findAll(ctx, bson.M{
		"dispatchRequest.status": bson.M{"$in": []model.HodResponse{
			model.HodResponseApproved, model.HodResponseRescheduled,
		}},
		"dispatchRequest.scheduledDispatchDate":       bson.M{"$gte": from, "$lte": until},
		"dispatchRequest.preDispatchNotificationSent": bson.M{"$ne": true},
	}, nil)
}

func (r *MarksheetRepository) DueDispatches(ctx context.Context, now time.Time) ([]model.Marksheet, error) {
	return r.findAll(ctx, bson.M{
		"dispatchRequest.status": bson.M{"$in": []model.HodResponse{
			model.HodResponseApproved, model.HodResponseRescheduled,
		}},
		"dispatchRequest.scheduledDispatchDate": bson.M{"$lte": now},
		"dispatchRequest.autoDispatched":        bson.M{"$ne": true},
	}, nil)
}

// ListFilter is the controller-facing query surface.
type ListFilter struct {
	Status     string
	Department string
	Year       int
	Section    string
	StaffID    string
	ExamName   string
}

func (f ListFilter) toBson() (bson.M, error) {
	q := bson.M{}
	if f.Status != "" {
		st, err := model.ParseStatus(f.Status)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", helper.ErrValidation, err)
		}
		q["status"] = st
	}
	if f.Department != "" {
		q["student.department"] = f.Department
	}
	if f.Year != 0 {
		q["student.year"] = f.Year
	}
	if f.Section != "" {
		q["student.section"] = f.Section
	}
	if f.StaffID != "" {
		q["staff.id"] = f.StaffID
	}
	if f.ExamName != "" {
		q["examName"] = f.ExamName
	}
	return q, nil
}

// List returns a page of marksheets plus the total match count.
func (r *MarksheetRepository) List(ctx context.Context, filter ListFilter, offset, limit int) ([]model.Marksheet, int64, error) {
	q, err := filter.toBson()
	if err != nil {
		return nil, 0, err
	}
	total, err := r.col.CountDocuments(ctx, q)
	if err != nil {
		return nil, 0, wrapStoreErr(err)
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))
	ms, err := r.findAll(ctx, q, opts)
	if err != nil {
		return nil, 0, err
	}
	return ms, total, nil
}

func (r *MarksheetRepository) findAll(ctx context.Context, q bson.M, opts *options.FindOptions) ([]model.Marksheet, error) {
	var cur *mongo.Cursor
	var err error
	if opts != nil {
		cur, err = r.col.Find(ctx, q, opts)
	} else {
		cur, err = r.col.Find(ctx, q)
	}
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	defer cur.Close(ctx)

	var out []model.Marksheet
	if err := cur.All(ctx, &out); err != nil {
		return nil, wrapStoreErr(err)
	}
	return out, nil
}
