// Package milvus wraps the Milvus SDK for the chunk vector index.
//
// Collections use explicit string primary keys so chunk identities stay
// stable across refreshes, and cosine similarity to rank retrieval.
package milvus

import (
	"context"
	"fmt"
	"strconv"

	"github.com/milvus-io/milvus/client/v2/column"
	"github.com/milvus-io/milvus/client/v2/entity"
	"github.com/milvus-io/milvus/client/v2/index"
	"github.com/milvus-io/milvus/client/v2/milvusclient"

	milvusopts "github.com/vivekpraj/website-to-chatbot/pkg/options/milvus"
)

// Client wraps the Milvus SDK client.
type Client struct {
	client *milvusclient.Client
	opts   *milvusopts.Options
}

// New creates a new Milvus client.
func New(opts *milvusopts.Options) (*Client, error) {
	if opts == nil {
		return nil, fmt.Errorf("milvus options is nil")
	}

	ctx, cancel := context.WithTimeout(context.Background(), opts.Timeout)
	defer cancel()

	c, err := milvusclient.New(ctx, &milvusclient.ClientConfig{
		Address:  opts.Address,
		Username: opts.Username,
		Password: opts.Password,
		DBName:   opts.Database,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to milvus: %w", err)
	}

	return &Client{
		client: c,
		opts:   opts,
	}, nil
}

// Close closes the Milvus client connection.
func (c *Client) Close(ctx context.Context) error {
	return c.client.Close(ctx)
}

// RawClient returns the underlying Milvus client.
func (c *Client) RawClient() *milvusclient.Client {
	return c.client
}

// CollectionSchema defines the schema for a chunk collection.
type CollectionSchema struct {
	Name        string
	Description string
	Dimension   int
	MetaFields  []MetaField
}

// MetaField defines a metadata field in the collection.
type MetaField struct {
	Name     string
	DataType entity.FieldType
	MaxLen   int // For VARCHAR type
}

// EnsureCollection creates the collection if it does not exist yet.
// The primary key is an explicit VarChar field named "chunk_id".
func (c *Client) EnsureCollection(ctx context.Context, schema *CollectionSchema) error {
	exists, err := c.client.HasCollection(ctx, milvusclient.NewHasCollectionOption(schema.Name))
	if err != nil {
		return fmt.Errorf("failed to check collection existence: %w", err)
	}
	if exists {
		return nil
	}

	collSchema := entity.NewSchema().
		WithName(schema.Name).
		WithDescription(schema.Description)

	// Explicit primary key: chunk ids are assigned by the ingestion
	// pipeline, not by Milvus.
	collSchema.WithField(
		entity.NewField().
			WithName("chunk_id").
			WithDataType(entity.FieldTypeVarChar).
			WithMaxLength(128).
			WithIsPrimaryKey(true),
	)

	collSchema.WithField(
		entity.NewField().
			WithName("embedding").
			WithDataType(entity.FieldTypeFloatVector).
			WithDim(int64(schema.Dimension)),
	)

	for _, f := range schema.MetaFields {
		field := entity.NewField().
			WithName(f.Name).
			WithDataType(f.DataType)
		if f.DataType == entity.FieldTypeVarChar && f.MaxLen > 0 {
			field.WithMaxLength(int64(f.MaxLen))
		}
		collSchema.WithField(field)
	}

	if err := c.client.CreateCollection(ctx, milvusclient.NewCreateCollectionOption(schema.Name, collSchema)); err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	// Cosine similarity matches the retrieval contract.
	idx := index.NewIvfFlatIndex(entity.COSINE, 128)
	createIdxTask, err := c.client.CreateIndex(ctx, milvusclient.NewCreateIndexOption(schema.Name, "embedding", idx))
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	if err := createIdxTask.Await(ctx); err != nil {
		return fmt.Errorf("failed to wait for index creation: %w", err)
	}

	loadTask, err := c.client.LoadCollection(ctx, milvusclient.NewLoadCollectionOption(schema.Name))
	if err != nil {
		return fmt.Errorf("failed to load collection: %w", err)
	}
	if err := loadTask.Await(ctx); err != nil {
		return fmt.Errorf("failed to wait for collection loading: %w", err)
	}

	return nil
}

// HasCollection reports whether the collection exists.
func (c *Client) HasCollection(ctx context.Context, collectionName string) (bool, error) {
	exists, err := c.client.HasCollection(ctx, milvusclient.NewHasCollectionOption(collectionName))
	if err != nil {
		return false, fmt.Errorf("failed to check collection existence: %w", err)
	}
	return exists, nil
}

// InsertData represents chunk rows to be inserted into a collection.
type InsertData struct {
	IDs        []string
	Embeddings [][]float32
	Metadata   map[string][]any
}

// Insert inserts chunk vectors with their explicit ids and metadata.
func (c *Client) Insert(ctx context.Context, collectionName string, data *InsertData) error {
	if len(data.IDs) == 0 {
		return nil
	}
	if len(data.IDs) != len(data.Embeddings) {
		return fmt.Errorf("id/embedding count mismatch: %d vs %d", len(data.IDs), len(data.Embeddings))
	}

	columns := make([]column.Column, 0, len(data.Metadata)+2)
	columns = append(columns, column.NewColumnVarChar("chunk_id", data.IDs))
	columns = append(columns, column.NewColumnFloatVector("embedding", len(data.Embeddings[0]), data.Embeddings))

	for name, values := range data.Metadata {
		if len(values) != len(data.IDs) {
			return fmt.Errorf("metadata field %s has %d values, want %d", name, len(values), len(data.IDs))
		}
		switch values[0].(type) {
		case string:
			strVals := make([]string, len(values))
			for i, val := range values {
				strVals[i] = val.(string)
			}
			columns = append(columns, column.NewColumnVarChar(name, strVals))
		case int64:
			intVals := make([]int64, len(values))
			for i, val := range values {
				intVals[i] = val.(int64)
			}
			columns = append(columns, column.NewColumnInt64(name, intVals))
		default:
			return fmt.Errorf("unsupported metadata type: %T for field %s", values[0], name)
		}
	}

	if _, err := c.client.Insert(ctx, milvusclient.NewColumnBasedInsertOption(collectionName, columns...)); err != nil {
		return fmt.Errorf("failed to insert data: %w", err)
	}

	// Flush so newly ingested chunks are immediately searchable.
	flushTask, err := c.client.Flush(ctx, milvusclient.NewFlushOption(collectionName))
	if err != nil {
		return fmt.Errorf("failed to flush collection: %w", err)
	}
	if err := flushTask.Await(ctx); err != nil {
		return fmt.Errorf("failed to wait for flush: %w", err)
	}

	return nil
}

// SearchResult represents a single search result.
type SearchResult struct {
	ID       string
	Score    float32
	Metadata map[string]any
}

// Search performs a cosine similarity search over the collection.
func (c *Client) Search(ctx context.Context, collectionName string, vector []float32, topK int, outputFields []string) ([]SearchResult, error) {
	loadTask, err := c.client.LoadCollection(ctx, milvusclient.NewLoadCollectionOption(collectionName))
	if err != nil {
		return nil, fmt.Errorf("failed to load collection: %w", err)
	}
	if err := loadTask.Await(ctx); err != nil {
		return nil, fmt.Errorf("failed to wait for collection loading: %w", err)
	}

	searchVectors := []entity.Vector{entity.FloatVector(vector)}

	results, err := c.client.Search(ctx, milvusclient.NewSearchOption(
		collectionName,
		topK,
		searchVectors,
	).WithANNSField("embedding").
		WithSearchParam("nprobe", "16").
		WithOutputFields(outputFields...))
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	if len(results) == 0 {
		return []SearchResult{}, nil
	}

	searchResults := make([]SearchResult, 0, results[0].ResultCount)
	for i := 0; i < results[0].ResultCount; i++ {
		result := SearchResult{
			Score:    results[0].Scores[i],
			Metadata: make(map[string]any),
		}

		if idCol, ok := results[0].IDs.(*column.ColumnVarChar); ok {
			result.ID = idCol.Data()[i]
		}

		for _, field := range results[0].Fields {
			switch col := field.(type) {
			case *column.ColumnVarChar:
				result.Metadata[col.Name()] = col.Data()[i]
			case *column.ColumnInt64:
				result.Metadata[col.Name()] = col.Data()[i]
			}
		}

		searchResults = append(searchResults, result)
	}

	return searchResults, nil
}

// DropCollection drops a collection. Dropping a collection that does
// not exist is not an error.
func (c *Client) DropCollection(ctx context.Context, collectionName string) error {
	if err := c.client.DropCollection(ctx, milvusclient.NewDropCollectionOption(collectionName)); err != nil {
		return fmt.Errorf("failed to drop collection: %w", err)
	}
	return nil
}

// CountRows returns the number of entities in a collection.
func (c *Client) CountRows(ctx context.Context, collectionName string) (int64, error) {
	stats, err := c.client.GetCollectionStats(ctx, milvusclient.NewGetCollectionStatsOption(collectionName))
	if err != nil {
		return 0, fmt.Errorf("failed to get collection stats: %w", err)
	}

	if val, ok := stats["row_count"]; ok {
		return strconv.ParseInt(val, 10, 64)
	}
	return 0, nil
}
