// Package mongo persists the deck state as a single MongoDB document.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/syntrixbase/itemdeck/internal/state"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const stateDocID = "current"

// Store keeps the state in one document of a collection. Every write is a
// single atomic findAndModify.
type Store struct {
	client     *mongo.Client
	coll       *mongo.Collection
	ownsClient bool
	logger     *slog.Logger
}

var _ state.Store = (*Store)(nil)

type stateDoc struct {
	ID          string `bson:"_id"`
	SelectedIDs []int  `bson:"selected_ids"`
	SortedOrder []int  `bson:"sorted_order"`
	Version     uint64 `bson:"version"`
	UpdatedAt   int64  `bson:"updated_at"`
}

// Connect dials uri and returns a store using database dbName and the given
// collection.
func Connect(ctx context.Context, uri, dbName, collection string, logger *slog.Logger) (*Store, error) {
	clientOpts := options.Client().ApplyURI(uri)
	if clientOpts.ConnectTimeout == nil {
		clientOpts.SetConnectTimeout(10 * time.Second)
	}

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", state.ErrStorageUnavailable, err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("%w: %v", state.ErrStorageUnavailable, err)
	}

	s := NewStore(client.Database(dbName), collection, logger)
	s.client = client
	s.ownsClient = true
	s.logger.Info("Connected to MongoDB", "database", dbName, "collection", s.coll.Name())
	return s, nil
}

// NewStore returns a store on an existing database handle. Close does not
// disconnect the client.
func NewStore(db *mongo.Database, collection string, logger *slog.Logger) *Store {
	if collection == "" {
		collection = "deck_state"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		client: db.Client(),
		coll:   db.Collection(collection),
		logger: logger.With("component", "state-mongo"),
	}
}

func (s *Store) Read(ctx context.Context) (state.State, error) {
	var doc stateDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": stateDocID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return state.Empty(), nil
	}
	if err != nil {
		return state.State{}, wrapErr(err)
	}
	return doc.toState(), nil
}

func (s *Store) Replace(ctx context.Context, next state.State) (state.State, error) {
	n := state.Normalize(next)
	update := bson.M{
		"$set": bson.M{
			"selected_ids": n.SelectedIDs,
			"sorted_order": n.SortedOrder,
			"updated_at":   time.Now().UnixMilli(),
		},
		"$inc": bson.M{"version": 1},
	}
	return s.findAndModify(ctx, bson.M{"_id": stateDocID}, update, true)
}

func (s *Store) ReplaceIf(ctx context.Context, next state.State, expected uint64) (state.State, error) {
	n := state.Normalize(next)
	update := bson.M{
		"$set": bson.M{
			"selected_ids": n.SelectedIDs,
			"sorted_order": n.SortedOrder,
			"version":      expected + 1,
			"updated_at":   time.Now().UnixMilli(),
		},
	}
	// Only a never-written state may be created here. For expected == 0 an
	// existing document misses the filter and the upsert collides with its
	// _id; otherwise a mismatch finds no document at all.
	out, err := s.findAndModify(ctx, bson.M{"_id": stateDocID, "version": expected}, update, expected == 0)
	if errors.Is(err, errDuplicate) || errors.Is(err, errNoMatch) {
		return state.State{}, state.ErrVersionConflict
	}
	return out, err
}

func (s *Store) Close(ctx context.Context) error {
	if !s.ownsClient || s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}

var (
	errDuplicate = errors.New("duplicate state document")
	errNoMatch   = errors.New("state document not matched")
)

func (s *Store) findAndModify(ctx context.Context, filter, update bson.M, upsert bool) (state.State, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(upsert).
		SetReturnDocument(options.After)

	var doc stateDoc
	err := s.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return state.State{}, errDuplicate
		}
		if errors.Is(err, mongo.ErrNoDocuments) {
			return state.State{}, errNoMatch
		}
		return state.State{}, wrapErr(err)
	}
	s.logger.Debug("State written", "version", doc.Version)
	return doc.toState(), nil
}

func (d stateDoc) toState() state.State {
	return state.State{
		SelectedIDs: d.SelectedIDs,
		SortedOrder: d.SortedOrder,
		Version:     d.Version,
	}.Clone()
}

func wrapErr(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %v", state.ErrStorageUnavailable, err)
}
