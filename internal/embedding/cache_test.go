package embedding

import (
	"context"
	"fmt"
	"testing"
	"time"

	"ResuMatch/pkg/logger"

	"github.com/sirupsen/logrus"
)

// countingModel is a fake Embedding that records how it was called.
type countingModel struct {
	embedCalls int
	batchCalls int
	lastBatch  []string
}

func (f *countingModel) Embed(ctx context.Context, text string) ([]float32, error) {
	f.embedCalls++
	return vecFor(text), nil
}

func (f *countingModel) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	f.batchCalls++
	f.lastBatch = append([]string(nil), texts...)
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = vecFor(t)
	}
	return out, nil
}

func vecFor(text string) []float32 {
	return []float32{float32(len(text)), 0.5}
}

func newTestCache(t *testing.T, inner Embedding) *CachedModel {
	t.Helper()
	logger.Init(logrus.ErrorLevel)
	c, err := NewCachedModel(inner, "test-model", nil, time.Minute, logger.New("embedding-test", "test"))
	if err != nil {
		t.Fatalf("NewCachedModel returned error: %v", err)
	}
	return c
}

func TestCachedModelServesRepeatsFromCache(t *testing.T) {
	inner := &countingModel{}
	cache := newTestCache(t, inner)
	ctx := context.Background()

	first, err := cache.Embed(ctx, "golang developer")
	if err != nil {
		t.Fatalf("Embed returned error: %v", err)
	}
	second, err := cache.Embed(ctx, "golang developer")
	if err != nil {
		t.Fatalf("Embed returned error: %v", err)
	}

	if inner.embedCalls != 1 {
		t.Errorf("expected 1 call to the inner model, got %d", inner.embedCalls)
	}
	if fmt.Sprint(first) != fmt.Sprint(second) {
		t.Errorf("cached vector %v differs from original %v", second, first)
	}
}

func TestCachedModelBatchOnlySendsMisses(t *testing.T) {
	inner := &countingModel{}
	cache := newTestCache(t, inner)
	ctx := context.Background()

	if _, err := cache.Embed(ctx, "python"); err != nil {
		t.Fatalf("warm-up Embed returned error: %v", err)
	}

	texts := []string{"java", "python", "kubernetes"}
	vecs, err := cache.EmbedBatch(ctx, texts)
	if err != nil {
		t.Fatalf("EmbedBatch returned error: %v", err)
	}

	if inner.batchCalls != 1 {
		t.Fatalf("expected 1 batch call, got %d", inner.batchCalls)
	}
	if len(inner.lastBatch) != 2 {
		t.Fatalf("expected 2 misses sent to the inner model, got %v", inner.lastBatch)
	}
	for i, text := range texts {
		want := vecFor(text)
		if fmt.Sprint(vecs[i]) != fmt.Sprint(want) {
			t.Errorf("vector for %q = %v, want %v", text, vecs[i], want)
		}
	}
}

func TestCachedModelBatchAllHitsSkipsModel(t *testing.T) {
	inner := &countingModel{}
	cache := newTestCache(t, inner)
	ctx := context.Background()

	texts := []string{"react", "terraform"}
	if _, err := cache.EmbedBatch(ctx, texts); err != nil {
		t.Fatalf("EmbedBatch returned error: %v", err)
	}
	if _, err := cache.EmbedBatch(ctx, texts); err != nil {
		t.Fatalf("EmbedBatch returned error: %v", err)
	}

	if inner.batchCalls != 1 {
		t.Errorf("expected the second batch to be served from cache, inner saw %d calls", inner.batchCalls)
	}
}
