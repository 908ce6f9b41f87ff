package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/mamadbah2/shopsim/internal/domain/models"
	"github.com/mamadbah2/shopsim/internal/repository"
)

const (
	stateCollection   = "cart_state"
	receiptCollection = "receipts"
)

// MongoDBRepository stores cart state and receipts in MongoDB.
type MongoDBRepository struct {
	client *mongo.Client
	dbName string
}

// NewMongoDBRepository creates a new MongoDB repository.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string) (*MongoDBRepository, error) {
	clientOptions := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(5 * time.Second)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := verifyConnection(ctx, client); err != nil {
		return nil, err
	}

	return &MongoDBRepository{
		client: client,
		dbName: dbName,
	}, nil
}

type pinger interface {
	Ping(ctx context.Context, rp *readpref.ReadPref) error
	Disconnect(ctx context.Context) error
}

// verifyConnection pings the server and disconnects the client when it is unreachable.
func verifyConnection(ctx context.Context, client pinger) error {
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return fmt.Errorf("failed to ping mongodb: %w", err)
	}
	return nil
}

type stateDocument struct {
	Key       string    `bson:"_id"`
	Value     string    `bson:"value"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// Get returns the value stored under key or repository.ErrNotFound.
func (r *MongoDBRepository) Get(ctx context.Context, key string) (string, error) {
	var doc stateDocument
	err := r.collection(stateCollection).FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", repository.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read key %s: %w", key, err)
	}
	return doc.Value, nil
}

// Set upserts the value under key.
func (r *MongoDBRepository) Set(ctx context.Context, key, value string) error {
	doc := stateDocument{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	_, err := r.collection(stateCollection).ReplaceOne(ctx, bson.M{"_id": key}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to write key %s: %w", key, err)
	}
	return nil
}

type receiptLineDocument struct {
	ProductID string `bson:"product_id"`
	Title     string `bson:"title"`
	Quantity  int    `bson:"qty"`
	UnitPrice string `bson:"unit_price"`
	LineTotal string `bson:"line_total"`
}

type receiptDocument struct {
	ID           string                `bson:"_id"`
	BuyerName    string                `bson:"buyer_name"`
	BuyerEmail   string                `bson:"buyer_email"`
	BuyerAddress string                `bson:"buyer_address"`
	Lines        []receiptLineDocument `bson:"lines"`
	Units        int                   `bson:"units"`
	Total        string                `bson:"total"`
	CreatedAt    time.Time             `bson:"created_at"`
}

// SaveReceipt inserts a completed checkout receipt.
func (r *MongoDBRepository) SaveReceipt(ctx context.Context, receipt models.Receipt) error {
	_, err := r.collection(receiptCollection).InsertOne(ctx, toReceiptDocument(receipt))
	if err != nil {
		return fmt.Errorf("failed to insert receipt: %w", err)
	}
	return nil
}

// ListReceipts returns receipts created within [start, end], oldest first.
func (r *MongoDBRepository) ListReceipts(ctx context.Context, start, end time.Time) ([]models.Receipt, error) {
	filter := bson.M{"created_at": bson.M{"$gte": start, "$lte": end}}
	cursor, err := r.collection(receiptCollection).Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query receipts: %w", err)
	}
	defer func() { _ = cursor.Close(ctx) }()

	var docs []receiptDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode receipts: %w", err)
	}

	receipts := make([]models.Receipt, 0, len(docs))
	for _, doc := range docs {
		receipt, err := fromReceiptDocument(doc)
		if err != nil {
			return nil, err
		}
		receipts = append(receipts, receipt)
	}
	return receipts, nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func (r *MongoDBRepository) collection(name string) *mongo.Collection {
	return r.client.Database(r.dbName).Collection(name)
}

func toReceiptDocument(receipt models.Receipt) receiptDocument {
	lines := make([]receiptLineDocument, 0, len(receipt.Lines))
	for _, l := range receipt.Lines {
		lines = append(lines, receiptLineDocument{
			ProductID: l.ProductID,
			Title:     l.Title,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice.String(),
			LineTotal: l.LineTotal.String(),
		})
	}
	return receiptDocument{
		ID:           receipt.ID,
		BuyerName:    receipt.Buyer.Name,
		BuyerEmail:   receipt.Buyer.Email,
		BuyerAddress: receipt.Buyer.Address,
		Lines:        lines,
		Units:        receipt.Units,
		Total:        receipt.Total.String(),
		CreatedAt:    receipt.CreatedAt,
	}
}

func fromReceiptDocument(doc receiptDocument) (models.Receipt, error) {
	total, err := decimal.NewFromString(doc.Total)
	if err != nil {
		return models.Receipt{}, fmt.Errorf("receipt %s has invalid total %q: %w", doc.ID, doc.Total, err)
	}

	lines := make([]models.ReceiptLine, 0, len(doc.Lines))
	for _, l := range doc.Lines {
		unit, err := decimal.NewFromString(l.UnitPrice)
		if err != nil {
			return models.Receipt{}, fmt.Errorf("receipt %s has invalid unit price: %w", doc.ID, err)
		}
		lineTotal, err := decimal.NewFromString(l.LineTotal)
		if err != nil {
			return models.Receipt{}, fmt.Errorf("receipt %s has invalid line total: %w", doc.ID, err)
		}
		lines = append(lines, models.ReceiptLine{
			ProductID: l.ProductID,
			Title:     l.Title,
			Quantity:  l.Quantity,
			UnitPrice: unit,
			LineTotal: lineTotal,
		})
	}

	return models.Receipt{
		ID:        doc.ID,
		Buyer:     models.BuyerInfo{Name: doc.BuyerName, Email: doc.BuyerEmail, Address: doc.BuyerAddress},
		Lines:     lines,
		Units:     doc.Units,
		Total:     total,
		CreatedAt: doc.CreatedAt,
	}, nil
}
