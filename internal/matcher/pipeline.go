package matcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/gobwas/glob"
	"golang.org/x/sync/errgroup"

	"ResuMatch/pkg/logger"
)

// IndexingPipeline walks directories and indexes every supported resume
// file: extract, sectionize, embed, upsert. Every file fails individually;
// a bad file never aborts the batch.
type IndexingPipeline struct {
	extractor Extractor
	builder   *RecordBuilder
	store     Store
	hooks     []IndexHook
	workers   int
	excludes  []glob.Glob
	log       *logger.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// PipelineOption configures an IndexingPipeline.
type PipelineOption func(*IndexingPipeline)

// WithWorkers bounds the worker pool for distinct files.
func WithWorkers(n int) PipelineOption {
	return func(p *IndexingPipeline) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithHooks attaches indexing observers. Nil hooks are dropped.
func WithHooks(hooks ...IndexHook) PipelineOption {
	return func(p *IndexingPipeline) {
		for _, hook := range hooks {
			if hook != nil {
				p.hooks = append(p.hooks, hook)
			}
		}
	}
}

// WithExcludePatterns skips files whose base name matches any glob pattern.
// Invalid patterns are logged and ignored.
func WithExcludePatterns(patterns ...string) PipelineOption {
	return func(p *IndexingPipeline) {
		for _, pattern := range patterns {
			g, err := glob.Compile(pattern)
			if err != nil {
				p.log.WithError(err).WithField("pattern", pattern).Warn("ignoring invalid exclude pattern")
				continue
			}
			p.excludes = append(p.excludes, g)
		}
	}
}

// NewIndexingPipeline creates a pipeline over the injected collaborators.
func NewIndexingPipeline(extractor Extractor, builder *RecordBuilder, store Store, log *logger.Logger, opts ...PipelineOption) *IndexingPipeline {
	p := &IndexingPipeline{
		extractor: extractor,
		builder:   builder,
		store:     store,
		workers:   4,
		log:       log,
		locks:     make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run walks dir recursively and indexes every supported file. Files with
// unsupported extensions are silently excluded; they count neither as
// skipped nor as failed.
func (p *IndexingPipeline) Run(ctx context.Context, dir string) (*IndexSummary, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrDirectoryNotFound, dir)
		}
		return nil, fmt.Errorf("failed to stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrDirectoryNotFound, dir)
	}

	var files []string
	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if p.excluded(d.Name()) {
			return nil
		}
		if !p.extractor.Supports(path) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", dir, walkErr)
	}

	summary := &IndexSummary{Failures: make(map[string]string)}
	if len(files) == 0 {
		p.log.WithField("directory", dir).Info("no supported files found")
		return summary, nil
	}

	p.log.WithFields(map[string]interface{}{
		"directory": dir,
		"files":     len(files),
	}).Info("indexing directory")

	var mu sync.Mutex
	var group errgroup.Group
	group.SetLimit(p.workers)
	for _, path := range files {
		group.Go(func() error {
			err := p.IndexFile(ctx, path)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				summary.Indexed++
			case errors.Is(err, ErrExtractionFailed), errors.Is(err, ErrEmptyContent):
				summary.Skipped++
			default:
				summary.Failed++
				summary.Failures[filepath.Base(path)] = err.Error()
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return summary, err
	}

	p.log.WithFields(map[string]interface{}{
		"indexed": summary.Indexed,
		"skipped": summary.Skipped,
		"failed":  summary.Failed,
	}).Info("indexing finished")

	return summary, nil
}

// IndexFile indexes one file. Extraction failures and empty documents are
// warnings; embed and store errors are failures. All of them are reported
// through the hooks.
func (p *IndexingPipeline) IndexFile(ctx context.Context, path string) error {
	filename := filepath.Base(path)

	text, err := p.extractor.Extract(ctx, path)
	if err != nil {
		err = fmt.Errorf("%w: %v", ErrExtractionFailed, err)
		p.log.WithError(err).WithField("file", filename).Warn("skipping file, extraction failed")
		p.notifySkipped(ctx, path, err.Error())
		return err
	}

	record, err := p.builder.Build(ctx, path, Sectionize(text))
	if err != nil {
		if errors.Is(err, ErrEmptyContent) {
			p.log.WithField("file", filename).Warn("skipping file, no embeddable content")
			p.notifySkipped(ctx, path, "no embeddable content")
			return err
		}
		p.log.WithError(err).WithField("file", filename).Error("failed to build record")
		p.notifyFailed(ctx, path, err)
		return err
	}
	record.RawText = text

	if err := p.upsertSerialized(ctx, record); err != nil {
		p.log.WithError(err).WithField("file", filename).Error("failed to upsert record")
		p.notifyFailed(ctx, path, err)
		return err
	}

	p.notifyIndexed(ctx, record)
	return nil
}

// upsertSerialized runs the delete-then-insert pair under a per-filename
// lock. Workers hitting the same filename queue behind each other; distinct
// filenames do not contend.
func (p *IndexingPipeline) upsertSerialized(ctx context.Context, record *DocumentRecord) error {
	lock := p.filenameLock(record.Filename)
	lock.Lock()
	defer lock.Unlock()
	return p.store.Upsert(ctx, record)
}

func (p *IndexingPipeline) filenameLock(filename string) *sync.Mutex {
	p.mu.Lock()
	defer p.mu.Unlock()
	lock, ok := p.locks[filename]
	if !ok {
		lock = &sync.Mutex{}
		p.locks[filename] = lock
	}
	return lock
}

func (p *IndexingPipeline) excluded(name string) bool {
	for _, g := range p.excludes {
		if g.Match(name) {
			return true
		}
	}
	return false
}

func (p *IndexingPipeline) notifyIndexed(ctx context.Context, record *DocumentRecord) {
	for _, hook := range p.hooks {
		hook.DocumentIndexed(ctx, record)
	}
}

func (p *IndexingPipeline) notifySkipped(ctx context.Context, path, reason string) {
	for _, hook := range p.hooks {
		hook.DocumentSkipped(ctx, path, reason)
	}
}

func (p *IndexingPipeline) notifyFailed(ctx context.Context, path string, err error) {
	for _, hook := range p.hooks {
		hook.DocumentFailed(ctx, path, err)
	}
}
