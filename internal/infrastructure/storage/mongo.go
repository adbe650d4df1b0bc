package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoConfig locates the orders collection.
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
}

// MongoStore reads orders from a MongoDB collection.
// It implements the OrderStore interface.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
	logger     *slog.Logger
}

// Compile-time check that MongoStore implements OrderStore
var _ OrderStore = (*MongoStore)(nil)

// NewMongoStore connects to MongoDB and verifies the primary is reachable.
func NewMongoStore(ctx context.Context, cfg MongoConfig, logger *slog.Logger) (*MongoStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.URI == "" {
		return nil, fmt.Errorf("mongo uri is required")
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	logger.Info("connected to order store",
		slog.String("driver", "mongo"),
		slog.String("database", cfg.Database),
		slog.String("collection", cfg.Collection),
	)

	return &MongoStore{
		client:     client,
		collection: client.Database(cfg.Database).Collection(cfg.Collection),
		logger:     logger,
	}, nil
}

// Close disconnects the client.
func (m *MongoStore) Close() error {
	return m.client.Disconnect(context.Background())
}

// Acquire starts a client session for one report.
func (m *MongoStore) Acquire(ctx context.Context) (OrderSession, error) {
	sess, err := m.client.StartSession()
	if err != nil {
		return nil, fmt.Errorf("failed to start mongo session: %w", err)
	}
	return &mongoSession{session: sess, collection: m.collection, logger: m.logger}, nil
}

type mongoSession struct {
	session    mongo.Session
	collection *mongo.Collection
	logger     *slog.Logger
}

func (s *mongoSession) Release() error {
	s.session.EndSession(context.Background())
	return nil
}

func (s *mongoSession) FindOrders(ctx context.Context, q OrderQuery) ([]OrderRecord, error) {
	sctx := mongo.NewSessionContext(ctx, s.session)

	cursor, err := s.collection.Aggregate(sctx, ordersPipeline(q))
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate orders: %w", err)
	}
	defer cursor.Close(sctx)

	orders := []OrderRecord{}
	for cursor.Next(sctx) {
		orders = s.appendOrder(orders, cursor.Current)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("order cursor failed: %w", err)
	}
	return orders, nil
}

// appendOrder decodes one aggregation result. A malformed order is logged
// and left out so it cannot sink the whole report.
func (s *mongoSession) appendOrder(orders []OrderRecord, raw bson.Raw) []OrderRecord {
	rec, err := decodeOrder(raw)
	if err != nil {
		s.logger.Warn("skipping undecodable order",
			slog.String("order_id", rawValueText(raw.Lookup("_id"))),
			slog.String("error", err.Error()),
		)
		return orders
	}
	return append(orders, rec)
}

func decodeOrder(raw bson.Raw) (OrderRecord, error) {
	var doc mongoOrder
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return OrderRecord{}, fmt.Errorf("failed to decode order: %w", err)
	}
	return doc.record()
}

func (s *mongoSession) CountPaymentGroups(ctx context.Context, q PaymentGroupQuery) (map[string]int, error) {
	sctx := mongo.NewSessionContext(ctx, s.session)

	cursor, err := s.collection.Aggregate(sctx, paymentGroupPipeline(q))
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate payment groups: %w", err)
	}
	defer cursor.Close(sctx)

	counts := map[string]int{}
	for cursor.Next(sctx) {
		var row paymentGroupCount
		if err := cursor.Decode(&row); err != nil {
			return nil, fmt.Errorf("failed to decode payment group count: %w", err)
		}
		counts[row.key()] += row.Count
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("payment group cursor failed: %w", err)
	}
	return counts, nil
}

func ordersPipeline(q OrderQuery) mongo.Pipeline {
	states := bson.A{}
	for _, st := range q.States {
		states = append(states, st)
	}
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.D{
			{Key: "orderCapturedDate", Value: bson.D{
				{Key: "$gte", Value: q.CapturedFrom},
				{Key: "$lt", Value: q.CapturedTo},
			}},
			{Key: "state", Value: bson.D{{Key: "$in", Value: states}}},
		}}},
		{{Key: "$sort", Value: bson.D{
			{Key: "orderCapturedDate", Value: 1},
			{Key: "_id", Value: 1},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: 1},
			{Key: "country", Value: 1},
			{Key: "state", Value: 1},
			{Key: "orderCapturedDate", Value: 1},
			{Key: "updatedAt", Value: 1},
			{Key: "maoJson", Value: 1},
		}}},
	}
}

func paymentGroupPipeline(q PaymentGroupQuery) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.D{
			{Key: "updatedAt", Value: bson.D{
				{Key: "$gte", Value: q.UpdatedFrom},
				{Key: "$lt", Value: q.UpdatedTo},
			}},
			{Key: "country", Value: q.Country},
		}}},
		{{Key: "$unwind", Value: "$paymentGroups"}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$paymentGroups.type"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
}

type mongoOrder struct {
	ID           bson.RawValue `bson:"_id"`
	Country      string        `bson:"country"`
	State        string        `bson:"state"`
	CapturedDate time.Time     `bson:"orderCapturedDate"`
	UpdatedAt    time.Time     `bson:"updatedAt"`
	Document     bson.RawValue `bson:"maoJson"`
}

func (o mongoOrder) record() (OrderRecord, error) {
	rec := OrderRecord{
		ID:           rawValueText(o.ID),
		Country:      o.Country,
		State:        o.State,
		CapturedDate: o.CapturedDate.UTC(),
		UpdatedAt:    o.UpdatedAt.UTC(),
	}

	doc, err := documentFromRaw(o.Document)
	if err != nil {
		return OrderRecord{}, fmt.Errorf("failed to render document for order %s: %w", rec.Key(), err)
	}
	rec.Document = doc
	return rec, nil
}

// documentFromRaw renders maoJson as JSON bytes. String values already hold
// JSON text; embedded documents are rendered as relaxed extended JSON.
// Anything else yields no document, which the reports treat as unparseable.
func documentFromRaw(rv bson.RawValue) (json.RawMessage, error) {
	switch rv.Type {
	case bsontype.String:
		return json.RawMessage(rv.StringValue()), nil
	case bsontype.EmbeddedDocument:
		out, err := bson.MarshalExtJSON(rv.Document(), false, false)
		if err != nil {
			return nil, err
		}
		return json.RawMessage(out), nil
	default:
		return nil, nil
	}
}

func rawValueText(rv bson.RawValue) string {
	switch rv.Type {
	case bsontype.String:
		return rv.StringValue()
	case bsontype.ObjectID:
		return rv.ObjectID().Hex()
	case bsontype.Int32:
		return fmt.Sprintf("%d", rv.Int32())
	case bsontype.Int64:
		return fmt.Sprintf("%d", rv.Int64())
	case 0, bsontype.Null, bsontype.Undefined:
		return ""
	default:
		return rv.String()
	}
}

type paymentGroupCount struct {
	ID    bson.RawValue `bson:"_id"`
	Count int           `bson:"count"`
}

func (p paymentGroupCount) key() string {
	if k := rawValueText(p.ID); k != "" {
		return k
	}
	return UnknownPaymentGroupType
}
