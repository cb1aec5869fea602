package archive

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	flowerrors "github.com/matzehuels/flowprof/pkg/errors"
	"github.com/matzehuels/flowprof/pkg/report"
)

// Collection names.
const (
	DefaultDatabase   = "flowprof"
	ReportsCollection = "reports"
)

// MongoConfig configures a Mongo archive.
type MongoConfig struct {
	URI      string // mongodb://...
	Database string // default DefaultDatabase
	Timeout  time.Duration
}

// Mongo stores entries in a MongoDB collection. The report body is kept
// as its canonical JSON string so archived documents stay byte-identical
// to what `flowprof report --format json` writes.
type Mongo struct {
	client *mongo.Client
	coll   *mongo.Collection
	now    func() time.Time
}

// NewMongo connects to cfg.URI and ensures the created_at index.
func NewMongo(ctx context.Context, cfg MongoConfig) (*Mongo, error) {
	if cfg.URI == "" {
		return nil, flowerrors.New(flowerrors.ErrCodeInvalidInput, "mongo uri is required")
	}
	if cfg.Database == "" {
		cfg.Database = DefaultDatabase
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, flowerrors.Wrap(flowerrors.ErrCodeInternal, err, "connect to mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, flowerrors.Wrap(flowerrors.ErrCodeInternal, err, "ping mongo")
	}

	coll := client.Database(cfg.Database).Collection(ReportsCollection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: -1}},
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, flowerrors.Wrap(flowerrors.ErrCodeInternal, err, "create index")
	}
	return &Mongo{client: client, coll: coll, now: time.Now}, nil
}

// document is the stored form of an Entry.
type document struct {
	ID        string    `bson:"_id"`
	CreatedAt time.Time `bson:"created_at"`
	Title     string    `bson:"title,omitempty"`
	LogPath   string    `bson:"log_path,omitempty"`
	SpecPath  string    `bson:"spec_path,omitempty"`
	LogHash   string    `bson:"log_hash,omitempty"`
	SpecHash  string    `bson:"spec_hash,omitempty"`
	Totals    totalsDoc `bson:"totals"`
	Report    string    `bson:"report,omitempty"`
}

type totalsDoc struct {
	Names                  int     `bson:"names"`
	OperatorsInLog         int     `bson:"operators_in_log"`
	OperatorsMapped        int     `bson:"operators_mapped"`
	TotalMappedMs          float64 `bson:"total_mapped_ms"`
	TotalMappedActivations int64   `bson:"total_mapped_activations"`
}

func toDocument(e Entry) (document, error) {
	d := document{
		ID:        e.ID,
		CreatedAt: e.CreatedAt,
		Title:     e.Title,
		LogPath:   e.LogPath,
		SpecPath:  e.SpecPath,
		LogHash:   e.LogHash,
		SpecHash:  e.SpecHash,
		Totals: totalsDoc{
			Names:                  e.Totals.Names,
			OperatorsInLog:         e.Totals.OperatorsInLog,
			OperatorsMapped:        e.Totals.OperatorsMapped,
			TotalMappedMs:          e.Totals.TotalMappedMs,
			TotalMappedActivations: int64(e.Totals.TotalMappedActivations),
		},
	}
	if e.Report != nil {
		raw, err := report.Marshal(e.Report)
		if err != nil {
			return document{}, err
		}
		d.Report = string(raw)
	}
	return d, nil
}

func fromDocument(d document) (*Entry, error) {
	e := &Entry{
		ID:        d.ID,
		CreatedAt: d.CreatedAt,
		Title:     d.Title,
		LogPath:   d.LogPath,
		SpecPath:  d.SpecPath,
		LogHash:   d.LogHash,
		SpecHash:  d.SpecHash,
		Totals:    d.Totals.totals(),
	}
	if d.Report != "" {
		r, err := report.Unmarshal([]byte(d.Report))
		if err != nil {
			return nil, flowerrors.Wrap(flowerrors.ErrCodeInternal, err, "decode archived report %s", d.ID)
		}
		e.Report = r
	}
	return e, nil
}

func (t totalsDoc) totals() report.Totals {
	return report.Totals{
		Names:                  t.Names,
		OperatorsInLog:         t.OperatorsInLog,
		OperatorsMapped:        t.OperatorsMapped,
		TotalMappedMs:          t.TotalMappedMs,
		TotalMappedActivations: uint64(t.TotalMappedActivations),
	}
}

func (m *Mongo) Put(ctx context.Context, e Entry) (string, error) {
	prepare(&e, m.now())
	doc, err := toDocument(e)
	if err != nil {
		return "", err
	}
	if _, err := m.coll.InsertOne(ctx, doc); err != nil {
		return "", flowerrors.Wrap(flowerrors.ErrCodeInternal, err, "insert report %s", e.ID)
	}
	return e.ID, nil
}

func (m *Mongo) Get(ctx context.Context, id string) (*Entry, error) {
	var doc document
	err := m.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, flowerrors.Wrap(flowerrors.ErrCodeInternal, err, "find report %s", id)
	}
	return fromDocument(doc)
}

// List skips the report bodies.
func (m *Mongo) List(ctx context.Context, limit int) ([]Summary, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(listLimit(limit))).
		SetProjection(bson.M{"report": 0})

	cur, err := m.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, flowerrors.Wrap(flowerrors.ErrCodeInternal, err, "list reports")
	}
	var docs []document
	if err := cur.All(ctx, &docs); err != nil {
		return nil, flowerrors.Wrap(flowerrors.ErrCodeInternal, err, "decode report list")
	}

	out := make([]Summary, 0, len(docs))
	for _, d := range docs {
		out = append(out, Summary{ID: d.ID, CreatedAt: d.CreatedAt, Title: d.Title, LogPath: d.LogPath, Totals: d.Totals.totals()})
	}
	return out, nil
}

func (m *Mongo) Close(ctx context.Context) error { return m.client.Disconnect(ctx) }

var _ Store = (*Mongo)(nil)
