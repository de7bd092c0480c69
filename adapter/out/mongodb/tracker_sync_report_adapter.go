package mongodb

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/goccy/go-json"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"jobtracker_server/core/domain"
	"jobtracker_server/core/port/out"
)

// =============================================================================
// MongoDB Sync Report Adapter
// =============================================================================

const (
	collectionSyncReports = "sync_reports"

	// Debug payloads above this size are gzipped
	debugCompressionThreshold = 512

	reportRetention = 30 * 24 * time.Hour
)

// SyncReportAdapter implements out.SyncReportRepository using MongoDB.
type SyncReportAdapter struct {
	collection *mongo.Collection
}

func NewSyncReportAdapter(db *mongo.Database) *SyncReportAdapter {
	return &SyncReportAdapter{collection: db.Collection(collectionSyncReports)}
}

// EnsureIndexes creates necessary indexes for the collection.
func (a *SyncReportAdapter) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "started_at", Value: -1}},
		},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0), // TTL index
		},
	}

	_, err := a.collection.Indexes().CreateMany(ctx, indexes)
	return err
}

// =============================================================================
// Document Model
// =============================================================================

type syncReportDocument struct {
	ID              string `bson:"id"`
	MailboxIdentity string `bson:"mailbox_identity"`
	Outcome         string `bson:"outcome"`
	Connected       bool   `bson:"connected"`
	SuggestionCount int    `bson:"suggestion_count"`
	Error           string `bson:"error,omitempty"`

	// Debug counters (potentially compressed JSON)
	Debug        []byte `bson:"debug,omitempty"`
	IsCompressed bool   `bson:"is_compressed"`

	StartedAt  time.Time `bson:"started_at"`
	FinishedAt time.Time `bson:"finished_at"`
	DurationMS int64     `bson:"duration_ms"`
	ExpiresAt  time.Time `bson:"expires_at"`
}

// =============================================================================
// Operations
// =============================================================================

func (a *SyncReportAdapter) Save(ctx context.Context, report *domain.SyncReport) error {
	doc, err := toDocument(report)
	if err != nil {
		return fmt.Errorf("failed to convert report to document: %w", err)
	}

	opts := options.Replace().SetUpsert(true)
	if _, err := a.collection.ReplaceOne(ctx, bson.M{"id": report.ID}, doc, opts); err != nil {
		return fmt.Errorf("failed to save sync report: %w", err)
	}
	return nil
}

// Recent returns the latest reports, newest first.
func (a *SyncReportAdapter) Recent(ctx context.Context, limit int) ([]*domain.SyncReport, error) {
	findOpts := options.Find().SetSort(bson.D{{Key: "started_at", Value: -1}})
	if limit > 0 {
		findOpts.SetLimit(int64(limit))
	}

	cursor, err := a.collection.Find(ctx, bson.M{}, findOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to list sync reports: %w", err)
	}
	defer cursor.Close(ctx)

	reports := []*domain.SyncReport{}
	for cursor.Next(ctx) {
		var doc syncReportDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode sync report: %w", err)
		}
		report, err := toReport(&doc)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	return reports, cursor.Err()
}

// =============================================================================
// Conversion
// =============================================================================

func toDocument(r *domain.SyncReport) (*syncReportDocument, error) {
	doc := &syncReportDocument{
		ID:              r.ID,
		MailboxIdentity: r.MailboxIdentity,
		Outcome:         r.Outcome,
		Connected:       r.Connected,
		SuggestionCount: r.SuggestionCount,
		Error:           r.Error,
		StartedAt:       r.StartedAt,
		FinishedAt:      r.FinishedAt,
		DurationMS:      r.Duration.Milliseconds(),
		ExpiresAt:       r.FinishedAt.Add(reportRetention),
	}

	if r.Debug != nil {
		raw, err := json.Marshal(r.Debug)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal debug: %w", err)
		}
		if len(raw) > debugCompressionThreshold {
			compressed, err := compress(raw)
			if err != nil {
				return nil, fmt.Errorf("failed to compress debug: %w", err)
			}
			raw = compressed
			doc.IsCompressed = true
		}
		doc.Debug = raw
	}
	return doc, nil
}

func toReport(doc *syncReportDocument) (*domain.SyncReport, error) {
	report := &domain.SyncReport{
		ID:              doc.ID,
		MailboxIdentity: doc.MailboxIdentity,
		Outcome:         doc.Outcome,
		Connected:       doc.Connected,
		SuggestionCount: doc.SuggestionCount,
		Error:           doc.Error,
		StartedAt:       doc.StartedAt,
		FinishedAt:      doc.FinishedAt,
		Duration:        time.Duration(doc.DurationMS) * time.Millisecond,
	}

	if len(doc.Debug) > 0 {
		raw := doc.Debug
		if doc.IsCompressed {
			decompressed, err := decompress(raw)
			if err != nil {
				return nil, fmt.Errorf("failed to decompress debug: %w", err)
			}
			raw = decompressed
		}
		report.Debug = &domain.SyncDebug{}
		if err := json.Unmarshal(raw, report.Debug); err != nil {
			return nil, fmt.Errorf("failed to unmarshal debug: %w", err)
		}
	}
	return report, nil
}

func compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write(data); err != nil {
		return nil, err
	}
	if err := gz.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decompress(data []byte) ([]byte, error) {
	gz, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer gz.Close()
	return io.ReadAll(gz)
}

var _ out.SyncReportRepository = (*SyncReportAdapter)(nil)
