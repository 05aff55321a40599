package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/milvus-io/milvus/client/v2/entity"

	"github.com/vivekpraj/website-to-chatbot/pkg/component/milvus"
)

// MilvusIndex 实现基于 Milvus 的向量索引。
// 每个 bot 对应一个独立集合，集合名由 bot ID 派生。
type MilvusIndex struct {
	client    *milvus.Client
	dimension int
}

// NewMilvusIndex 创建 Milvus 索引实例。
func NewMilvusIndex(client *milvus.Client, dimension int) *MilvusIndex {
	return &MilvusIndex{client: client, dimension: dimension}
}

// collectionName 将 bot ID 转换为合法的 Milvus 集合名。
func collectionName(botID string) string {
	return "sitebot_" + strings.ReplaceAll(botID, "-", "_")
}

// Upsert 写入一个 bot 的块向量，必要时先创建集合。
func (s *MilvusIndex) Upsert(ctx context.Context, botID string, chunks []*ChunkRecord) error {
	if len(chunks) == 0 {
		return nil
	}

	name := collectionName(botID)
	schema := &milvus.CollectionSchema{
		Name:        name,
		Description: "chunk vectors for bot " + botID,
		Dimension:   s.dimension,
		MetaFields: []milvus.MetaField{
			{Name: "bot_id", DataType: entity.FieldTypeVarChar, MaxLen: 64},
			{Name: "page_url", DataType: entity.FieldTypeVarChar, MaxLen: 512},
			{Name: "ordinal", DataType: entity.FieldTypeInt64},
			{Name: "content", DataType: entity.FieldTypeVarChar, MaxLen: 65535},
		},
	}
	if err := s.client.EnsureCollection(ctx, schema); err != nil {
		return fmt.Errorf("failed to ensure collection: %w", err)
	}

	ids := make([]string, len(chunks))
	embeddings := make([][]float32, len(chunks))
	metadata := map[string][]any{
		"bot_id":   make([]any, len(chunks)),
		"page_url": make([]any, len(chunks)),
		"ordinal":  make([]any, len(chunks)),
		"content":  make([]any, len(chunks)),
	}

	for i, chunk := range chunks {
		ids[i] = chunk.ID
		embeddings[i] = chunk.Embedding
		metadata["bot_id"][i] = chunk.BotID
		metadata["page_url"][i] = chunk.PageURL
		metadata["ordinal"][i] = chunk.Ordinal
		metadata["content"][i] = chunk.Content
	}

	if err := s.client.Insert(ctx, name, &milvus.InsertData{
		IDs:        ids,
		Embeddings: embeddings,
		Metadata:   metadata,
	}); err != nil {
		return fmt.Errorf("failed to insert into milvus: %w", err)
	}

	return nil
}

// Query 返回相似度降序的 topK 命中。集合不存在时返回空结果。
func (s *MilvusIndex) Query(ctx context.Context, botID string, embedding []float32, topK int) ([]*Hit, error) {
	name := collectionName(botID)

	exists, err := s.client.HasCollection(ctx, name)
	if err != nil {
		return nil, err
	}
	if !exists {
		return []*Hit{}, nil
	}

	results, err := s.client.Search(ctx, name, embedding, topK,
		[]string{"page_url", "ordinal", "content"})
	if err != nil {
		return nil, fmt.Errorf("failed to search milvus: %w", err)
	}

	hits := make([]*Hit, len(results))
	for i, r := range results {
		hit := &Hit{
			ID:    r.ID,
			Score: r.Score,
		}
		if v, ok := r.Metadata["page_url"].(string); ok {
			hit.PageURL = v
		}
		if v, ok := r.Metadata["content"].(string); ok {
			hit.Content = v
		}
		if v, ok := r.Metadata["ordinal"].(int64); ok {
			hit.Ordinal = v
		}
		hits[i] = hit
	}

	return hits, nil
}

// Reset 删除一个 bot 的集合。集合不存在时直接返回。
func (s *MilvusIndex) Reset(ctx context.Context, botID string) error {
	name := collectionName(botID)

	exists, err := s.client.HasCollection(ctx, name)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}

	return s.client.DropCollection(ctx, name)
}

// Count 返回一个 bot 已索引的块数量。
func (s *MilvusIndex) Count(ctx context.Context, botID string) (int64, error) {
	name := collectionName(botID)

	exists, err := s.client.HasCollection(ctx, name)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, nil
	}

	return s.client.CountRows(ctx, name)
}

// Close 关闭 Milvus 连接。
func (s *MilvusIndex) Close(ctx context.Context) error {
	return s.client.Close(ctx)
}

// 确保 MilvusIndex 实现了 VectorIndex 接口。
var _ VectorIndex = (*MilvusIndex)(nil)
