package mongo

import (
	"context"
	"errors"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Anantbhardwaj2003/Event-Management/internal/domain"
)

// eventDoc is the persisted shape of an event.
type eventDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	OwnerID     string             `bson:"owner_id"`
	Name        string             `bson:"name"`
	Description string             `bson:"description"`
	Category    string             `bson:"category"`
	Location    string             `bson:"location"`
	Date        time.Time          `bson:"date"`
	Attendees   []string           `bson:"attendees"`
	Image       string             `bson:"image,omitempty"`
	Tags        []string           `bson:"tags"`
	CreatedAt   time.Time          `bson:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at"`
}

func (d *eventDoc) toDomain() *domain.Event {
	e := &domain.Event{
		ID:          d.ID.Hex(),
		OwnerID:     d.OwnerID,
		Name:        d.Name,
		Description: d.Description,
		Category:    d.Category,
		Location:    d.Location,
		Date:        d.Date,
		Attendees:   d.Attendees,
		Image:       d.Image,
		Tags:        d.Tags,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
	if e.Attendees == nil {
		e.Attendees = []string{}
	}
	if e.Tags == nil {
		e.Tags = []string{}
	}
	return e
}

type eventRepository struct {
	coll *mongo.Collection
}

// NewEventRepository returns an EventRepository backed by a MongoDB collection.
// Attendee mutations use $addToSet/$pull guarded by a membership filter, so
// the set invariant is enforced by a single atomic document update.
func NewEventRepository(db *mongo.Database) domain.EventRepository {
	return &eventRepository{
		coll: db.Collection("events"),
	}
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	doc := &eventDoc{
		OwnerID:     e.OwnerID,
		Name:        e.Name,
		Description: e.Description,
		Category:    e.Category,
		Location:    e.Location,
		Date:        e.Date,
		Attendees:   e.Attendees,
		Image:       e.Image,
		Tags:        e.Tags,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
	if doc.Attendees == nil {
		doc.Attendees = []string{}
	}
	if doc.Tags == nil {
		doc.Tags = []string{}
	}
	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return err
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return errors.New("unexpected inserted id type")
	}
	e.ID = oid.Hex()
	return nil
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}
	var doc eventDoc
	err = r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

func (r *eventRepository) List(ctx context.Context, filter domain.EventFilter) ([]*domain.Event, error) {
	query := bson.M{}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	if filter.Timeframe != "" {
		if filter.Timeframe == domain.TimeframePast {
			query["date"] = bson.M{"$lte": time.Now()}
		} else {
			query["date"] = bson.M{"$gt": time.Now()}
		}
	}
	if filter.Search != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(filter.Search), Options: "i"}
		query["$or"] = bson.A{
			bson.M{"name": re},
			bson.M{"description": re},
			bson.M{"location": re},
		}
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	events := make([]*domain.Event, 0)
	for cur.Next(ctx) {
		var doc eventDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		events = append(events, doc.toDomain())
	}
	return events, cur.Err()
}

func (r *eventRepository) Update(ctx context.Context, id string, update domain.EventUpdate) (*domain.Event, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}
	set := bson.M{"updated_at": time.Now()}
	if update.Name != nil {
		set["name"] = *update.Name
	}
	if update.Description != nil {
		set["description"] = *update.Description
	}
	if update.Category != nil {
		set["category"] = *update.Category
	}
	if update.Location != nil {
		set["location"] = *update.Location
	}
	if update.Date != nil {
		set["date"] = *update.Date
	}
	if update.Image != nil {
		set["image"] = *update.Image
	}
	if update.Tags != nil {
		set["tags"] = *update.Tags
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc eventDoc
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrNotFound
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *eventRepository) AddAttendee(ctx context.Context, eventID, userID string) (int, error) {
	oid, err := primitive.ObjectIDFromHex(eventID)
	if err != nil {
		return 0, domain.ErrNotFound
	}
	filter := bson.M{"_id": oid, "attendees": bson.M{"$ne": userID}}
	update := bson.M{
		"$addToSet": bson.M{"attendees": userID},
		"$set":      bson.M{"updated_at": time.Now()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc eventDoc
	err = r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, r.attendeeMiss(ctx, oid, domain.ErrAlreadyJoined)
		}
		return 0, err
	}
	return len(doc.Attendees), nil
}

func (r *eventRepository) RemoveAttendee(ctx context.Context, eventID, userID string) (int, error) {
	oid, err := primitive.ObjectIDFromHex(eventID)
	if err != nil {
		return 0, domain.ErrNotFound
	}
	filter := bson.M{"_id": oid, "attendees": userID}
	update := bson.M{
		"$pull": bson.M{"attendees": userID},
		"$set":  bson.M{"updated_at": time.Now()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc eventDoc
	err = r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, r.attendeeMiss(ctx, oid, domain.ErrNotJoined)
		}
		return 0, err
	}
	return len(doc.Attendees), nil
}

// attendeeMiss disambiguates a zero-match conditional attendee update: the
// document is either missing (ErrNotFound) or the membership filter failed.
func (r *eventRepository) attendeeMiss(ctx context.Context, oid primitive.ObjectID, memberErr error) error {
	count, err := r.coll.CountDocuments(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if count == 0 {
		return domain.ErrNotFound
	}
	return memberErr
}
