package models

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	SessionsColName = "sessions"

	SessionActive   = 1
	SessionInactive = 0
)

// Session is one row of append-only login history. Records are only ever
// flipped active -> inactive (logout, expiry detection, supersession), never
// deleted and never reactivated.
type Session struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Token     string             `bson:"token" json:"-"`
	LoginTime time.Time          `bson:"loginTime" json:"loginTime"`
	Status    int                `bson:"status" json:"status"`
}

type SessionRepo interface {
	CreateSession(ctx context.Context, session *Session) (*Session, error)
	GetActiveByUser(ctx context.Context, userID primitive.ObjectID) (*Session, error)
	GetActiveByToken(ctx context.Context, token string) (*Session, error)
	// DeactivateByToken flips an active record to inactive; returns false
	// when no active record matched (already inactive or unknown token).
	DeactivateByToken(ctx context.Context, token string) (bool, error)
	DeactivateByUser(ctx context.Context, userID primitive.ObjectID) error
}

func (mdb *MongodbRepo) CreateSession(ctx context.Context, session *Session) (*Session, error) {
	col, err := mdb.GetCollection(ctx, SessionsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	if session.ID.IsZero() {
		session.ID = primitive.NewObjectID()
	}
	if _, err := col.InsertOne(ctx, session); err != nil {
		return nil, fmt.Errorf("error inserting session: %v", err)
	}
	return session, nil
}

func (mdb *MongodbRepo) GetActiveByUser(ctx context.Context, userID primitive.ObjectID) (*Session, error) {
	col, err := mdb.GetCollection(ctx, SessionsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	var session Session
	err = col.FindOne(ctx, bson.M{"userId": userID, "status": SessionActive}).Decode(&session)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("error finding active session: %v", err)
	}
	return &session, nil
}

func (mdb *MongodbRepo) GetActiveByToken(ctx context.Context, token string) (*Session, error) {
	col, err := mdb.GetCollection(ctx, SessionsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	var session Session
	err = col.FindOne(ctx, bson.M{"token": token, "status": SessionActive}).Decode(&session)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("error finding session by token: %v", err)
	}
	return &session, nil
}

func (mdb *MongodbRepo) DeactivateByToken(ctx context.Context, token string) (bool, error) {
	col, err := mdb.GetCollection(ctx, SessionsColName)
	if err != nil {
		return false, fmt.Errorf("error getting collection: %v", err)
	}

	// Conditional update: a concurrent logout loses the race cleanly
	// instead of rewriting the record.
	res, err := col.UpdateOne(ctx,
		bson.M{"token": token, "status": SessionActive},
		bson.M{"$set": bson.M{"status": SessionInactive}},
	)
	if err != nil {
		return false, fmt.Errorf("error deactivating session: %v", err)
	}
	return res.ModifiedCount > 0, nil
}

func (mdb *MongodbRepo) DeactivateByUser(ctx context.Context, userID primitive.ObjectID) error {
	col, err := mdb.GetCollection(ctx, SessionsColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	_, err = col.UpdateMany(ctx,
		bson.M{"userId": userID, "status": SessionActive},
		bson.M{"$set": bson.M{"status": SessionInactive}},
	)
	if err != nil {
		return fmt.Errorf("error deactivating user sessions: %v", err)
	}
	return nil
}

// EnsureSessionIndexes backs the two lookup paths: by exact token and by
// user for the one-active-per-user invariant.
func (mdb *MongodbRepo) EnsureSessionIndexes(ctx context.Context) error {
	col, err := mdb.GetCollection(ctx, SessionsColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "token", Value: 1}},
			Options: options.Index().SetName("token_idx"),
		},
		{
			Keys: bson.D{
				{Key: "userId", Value: 1},
				{Key: "status", Value: 1},
			},
			Options: options.Index().SetName("user_status_idx"),
		},
	}
	if _, err := col.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("error creating session indexes: %v", err)
	}
	return nil
}
