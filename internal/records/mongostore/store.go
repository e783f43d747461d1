// Package mongostore stores transactions in a MongoDB collection.
package mongostore

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"salesboard/internal/core"
)

type document struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Price       float64            `bson:"price"`
	Category    string             `bson:"category"`
	Image       string             `bson:"image"`
	Sold        bool               `bson:"sold"`
	DateOfSale  time.Time          `bson:"dateOfSale"`
}

func (d document) toCore() core.Transaction {
	return core.Transaction{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Description: d.Description,
		Price:       d.Price,
		Category:    d.Category,
		Image:       d.Image,
		Sold:        d.Sold,
		DateOfSale:  d.DateOfSale.UTC(),
	}
}

// Store implements records.Store over one collection.
type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// Connect dials uri, checks the primary is reachable and ensures indexes.
func Connect(ctx context.Context, uri, database, collection string) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	s := &Store{client: client, coll: client.Database(database).Collection(collection)}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "dateOfSale", Value: 1}, {Key: "_id", Value: 1}}},
		{Keys: bson.D{{Key: "category", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create indexes: %w", err)
	}
	return nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *Store) InsertMany(ctx context.Context, txs []core.Transaction) (int, error) {
	if len(txs) == 0 {
		return 0, nil
	}
	docs := make([]interface{}, 0, len(txs))
	for _, t := range txs {
		docs = append(docs, document{
			ID:          primitive.NewObjectID(),
			Title:       t.Title,
			Description: t.Description,
			Price:       t.Price,
			Category:    t.Category,
			Image:       t.Image,
			Sold:        t.Sold,
			DateOfSale:  t.DateOfSale.UTC(),
		})
	}
	res, err := s.coll.InsertMany(ctx, docs)
	if err != nil {
		return 0, fmt.Errorf("insert transactions: %w", err)
	}
	slog.InfoContext(ctx, "Transactions saved", "component", "storage", "backend", "mongo", "count", len(res.InsertedIDs))
	return len(res.InsertedIDs), nil
}

func (s *Store) List(ctx context.Context, q core.ListQuery) ([]core.Transaction, error) {
	q = q.Normalize()
	out := []core.Transaction{}
	if q.Range.IsEmpty() {
		return out, nil
	}

	filter := monthFilter(q.Range)
	if q.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(q.Search), Options: "i"}
		or := bson.A{
			bson.M{"title": pattern},
			bson.M{"description": pattern},
		}
		if price, ok := q.SearchPrice(); ok {
			or = append(or, bson.M{"price": price})
		}
		filter["$or"] = or
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "dateOfSale", Value: 1}, {Key: "_id", Value: 1}}).
		SetSkip(int64(q.Offset())).
		SetLimit(int64(q.PerPage))

	cur, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find transactions: %w", err)
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var d document
		if err := cur.Decode(&d); err != nil {
			return nil, fmt.Errorf("decode transaction: %w", err)
		}
		out = append(out, d.toCore())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

func (s *Store) Statistics(ctx context.Context, r core.MonthRange) (core.Statistics, error) {
	var st core.Statistics
	if r.IsEmpty() {
		return st, nil
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: monthFilter(r)}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "totalSold", Value: bson.D{{Key: "$sum", Value: bson.D{{Key: "$cond", Value: bson.A{"$sold", 1, 0}}}}}},
			{Key: "totalNotSold", Value: bson.D{{Key: "$sum", Value: bson.D{{Key: "$cond", Value: bson.A{"$sold", 0, 1}}}}}},
			{Key: "totalSaleAmount", Value: bson.D{{Key: "$sum", Value: bson.D{{Key: "$cond", Value: bson.A{"$sold", "$price", 0}}}}}},
		}}},
	}
	cur, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return st, fmt.Errorf("aggregate statistics: %w", err)
	}
	defer cur.Close(ctx)

	var rows []struct {
		TotalSold       int64   `bson:"totalSold"`
		TotalNotSold    int64   `bson:"totalNotSold"`
		TotalSaleAmount float64 `bson:"totalSaleAmount"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return st, fmt.Errorf("decode statistics: %w", err)
	}
	if len(rows) > 0 {
		st.TotalSold = rows[0].TotalSold
		st.TotalNotSold = rows[0].TotalNotSold
		st.TotalSaleAmount = rows[0].TotalSaleAmount
	}
	return st, nil
}

func (s *Store) CountInPriceRange(ctx context.Context, r core.MonthRange, p core.PriceRange) (int64, error) {
	if r.IsEmpty() {
		return 0, nil
	}
	price := bson.M{"$gte": p.Min}
	if !p.Open {
		price["$lte"] = p.Max
	}
	filter := monthFilter(r)
	filter["price"] = price
	n, err := s.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("count price range %s: %w", p.Label, err)
	}
	return n, nil
}

func (s *Store) CategoryCounts(ctx context.Context, r core.MonthRange) ([]core.CategoryCount, error) {
	out := []core.CategoryCount{}
	if r.IsEmpty() {
		return out, nil
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: monthFilter(r)}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$category"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}
	cur, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate categories: %w", err)
	}
	defer cur.Close(ctx)

	var rows []struct {
		Category string `bson:"_id"`
		Count    int64  `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}
	for _, row := range rows {
		out = append(out, core.CategoryCount{Category: row.Category, Count: row.Count})
	}
	return out, nil
}

func (s *Store) Count(ctx context.Context) (int64, error) {
	n, err := s.coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return n, nil
}

func monthFilter(r core.MonthRange) bson.M {
	return bson.M{"dateOfSale": bson.M{"$gte": r.Start, "$lt": r.End}}
}
