package osm

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MemStore is an in-memory ObjStore, suitable for tests and small extracts
// where the object map comfortably fits in RAM.
type MemStore struct {
	mu    sync.RWMutex
	nodes map[int64]Node
	ways  map[int64]Way
}

// NewMemStore returns an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{nodes: make(map[int64]Node), ways: make(map[int64]Way)}
}

func (s *MemStore) PutNode(n Node) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes[n.ID] = n
	return nil
}

func (s *MemStore) PutWay(w Way) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ways[w.ID] = w
	return nil
}

func (s *MemStore) GetNode(id int64) (Node, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.nodes[id]
	return n, ok, nil
}

func (s *MemStore) GetWay(id int64) (Way, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.ways[id]
	return w, ok, nil
}

func (s *MemStore) ForEachFilter(kind string, fn func(Way) error) error {
	s.mu.RLock()
	ways := make([]Way, 0, len(s.ways))
	for _, w := range s.ways {
		if kind == "" || w.Tags["highway"] == kind {
			ways = append(ways, w)
		}
	}
	s.mu.RUnlock()
	for _, w := range ways {
		if err := fn(w); err != nil {
			return err
		}
	}
	return nil
}

func (s *MemStore) ForEachNode(fn func(Node) error) error {
	s.mu.RLock()
	nodes := make([]Node, 0, len(s.nodes))
	for _, n := range s.nodes {
		nodes = append(nodes, n)
	}
	s.mu.RUnlock()
	for _, n := range nodes {
		if err := fn(n); err != nil {
			return err
		}
	}
	return nil
}

func (s *MemStore) Close() error { return nil }

// mongoNodeDoc and mongoWayDoc are the persisted shapes for MongoStore.
// Node/way ids double as the Mongo _id so PutNode/PutWay are natural upserts.
type mongoNodeDoc struct {
	ID   int64             `bson:"_id"`
	Lon  float64           `bson:"lon"`
	Lat  float64           `bson:"lat"`
	Tags map[string]string `bson:"tags,omitempty"`
}

type mongoWayDoc struct {
	ID      int64             `bson:"_id"`
	NodeIDs []int64           `bson:"node_ids"`
	Tags    map[string]string `bson:"tags,omitempty"`
}

// MongoStore is a spill-to-disk ObjStore backed by MongoDB, used when the
// object map for a planetary or country-sized extract would not fit in
// memory (§9's design note on the spill-to-disk object store).
type MongoStore struct {
	client *mongo.Client
	nodes  *mongo.Collection
	ways   *mongo.Collection
	ctx    context.Context
}

// NewMongoStore connects to uri and prepares the nodes/ways collections in
// database dbName, dropping any pre-existing contents so a store is always
// fresh for a single ingestion run.
func NewMongoStore(ctx context.Context, uri, dbName string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("osm: connect object store: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		return nil, fmt.Errorf("osm: ping object store: %w", err)
	}

	db := client.Database(dbName)
	nodes := db.Collection("osm_nodes")
	ways := db.Collection("osm_ways")
	if err := nodes.Drop(ctx); err != nil {
		return nil, fmt.Errorf("osm: reset node store: %w", err)
	}
	if err := ways.Drop(ctx); err != nil {
		return nil, fmt.Errorf("osm: reset way store: %w", err)
	}
	if _, err := ways.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "tags.highway", Value: 1}},
	}); err != nil {
		return nil, fmt.Errorf("osm: index way store: %w", err)
	}

	return &MongoStore{client: client, nodes: nodes, ways: ways, ctx: ctx}, nil
}

func (s *MongoStore) PutNode(n Node) error {
	doc := mongoNodeDoc{ID: n.ID, Lon: n.Lon, Lat: n.Lat, Tags: n.Tags}
	opts := options.Replace().SetUpsert(true)
	_, err := s.nodes.ReplaceOne(s.ctx, bson.M{"_id": n.ID}, doc, opts)
	return err
}

func (s *MongoStore) PutWay(w Way) error {
	doc := mongoWayDoc{ID: w.ID, NodeIDs: w.NodeIDs, Tags: w.Tags}
	opts := options.Replace().SetUpsert(true)
	_, err := s.ways.ReplaceOne(s.ctx, bson.M{"_id": w.ID}, doc, opts)
	return err
}

func (s *MongoStore) GetNode(id int64) (Node, bool, error) {
	var doc mongoNodeDoc
	err := s.nodes.FindOne(s.ctx, bson.M{"_id": id}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return Node{}, false, nil
	}
	if err != nil {
		return Node{}, false, err
	}
	return Node{ID: doc.ID, Lon: doc.Lon, Lat: doc.Lat, Tags: doc.Tags}, true, nil
}

func (s *MongoStore) GetWay(id int64) (Way, bool, error) {
	var doc mongoWayDoc
	err := s.ways.FindOne(s.ctx, bson.M{"_id": id}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return Way{}, false, nil
	}
	if err != nil {
		return Way{}, false, err
	}
	return Way{ID: doc.ID, NodeIDs: doc.NodeIDs, Tags: doc.Tags}, true, nil
}

func (s *MongoStore) ForEachFilter(kind string, fn func(Way) error) error {
	filter := bson.M{}
	if kind != "" {
		filter["tags.highway"] = kind
	}
	cur, err := s.ways.Find(s.ctx, filter)
	if err != nil {
		return err
	}
	defer cur.Close(s.ctx)
	for cur.Next(s.ctx) {
		var doc mongoWayDoc
		if err := cur.Decode(&doc); err != nil {
			return err
		}
		if err := fn(Way{ID: doc.ID, NodeIDs: doc.NodeIDs, Tags: doc.Tags}); err != nil {
			return err
		}
	}
	return cur.Err()
}

func (s *MongoStore) ForEachNode(fn func(Node) error) error {
	cur, err := s.nodes.Find(s.ctx, bson.M{})
	if err != nil {
		return err
	}
	defer cur.Close(s.ctx)
	for cur.Next(s.ctx) {
		var doc mongoNodeDoc
		if err := cur.Decode(&doc); err != nil {
			return err
		}
		if err := fn(Node{ID: doc.ID, Lon: doc.Lon, Lat: doc.Lat, Tags: doc.Tags}); err != nil {
			return err
		}
	}
	return cur.Err()
}

func (s *MongoStore) Close() error {
	return s.client.Disconnect(s.ctx)
}
