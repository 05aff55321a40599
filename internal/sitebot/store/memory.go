package store

import (
	"context"
	"math"
	"sort"
	"sync"
)

// MemoryIndex 是 VectorIndex 的进程内实现。
// 用于本地运行和测试，语义与 Milvus 实现保持一致。
type MemoryIndex struct {
	mu   sync.RWMutex
	data map[string][]*ChunkRecord
}

// NewMemoryIndex 创建内存向量索引。
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{
		data: make(map[string][]*ChunkRecord),
	}
}

// Upsert 追加一个 bot 的块向量。
func (m *MemoryIndex) Upsert(_ context.Context, botID string, chunks []*ChunkRecord) error {
	if len(chunks) == 0 {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	copies := make([]*ChunkRecord, len(chunks))
	for i, c := range chunks {
		cc := *c
		copies[i] = &cc
	}
	m.data[botID] = append(m.data[botID], copies...)
	return nil
}

// Query 返回余弦相似度降序的 topK 命中。
func (m *MemoryIndex) Query(_ context.Context, botID string, embedding []float32, topK int) ([]*Hit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	records := m.data[botID]
	if len(records) == 0 {
		return []*Hit{}, nil
	}

	hits := make([]*Hit, 0, len(records))
	for _, r := range records {
		hits = append(hits, &Hit{
			ID:      r.ID,
			PageURL: r.PageURL,
			Content: r.Content,
			Ordinal: r.Ordinal,
			Score:   cosine(embedding, r.Embedding),
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	if topK < len(hits) {
		hits = hits[:topK]
	}
	return hits, nil
}

// Reset 清空一个 bot 的全部向量。
func (m *MemoryIndex) Reset(_ context.Context, botID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, botID)
	return nil
}

// Count 返回一个 bot 已索引的块数量。
func (m *MemoryIndex) Count(_ context.Context, botID string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.data[botID])), nil
}

// Close 释放资源。
func (m *MemoryIndex) Close(_ context.Context) error {
	return nil
}

// cosine 计算余弦相似度。零向量相似度为 0。
func cosine(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}

// 确保 MemoryIndex 实现了 VectorIndex 接口。
var _ VectorIndex = (*MemoryIndex)(nil)
