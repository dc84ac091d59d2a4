// Package pipeline runs the selected stages (create, merge, load) in that
// order for one invocation and collects their results.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"recordpipe/internal/charset"
	"recordpipe/internal/config"
	"recordpipe/internal/datasource/file"
	"recordpipe/internal/fileset"
	"recordpipe/internal/loader"
	"recordpipe/internal/merge"
	"recordpipe/internal/metrics"
	"recordpipe/internal/record"
	"recordpipe/internal/storage"
)

// DefaultJob labels metrics when Runner.Job is empty.
const DefaultJob = "recordpipe"

// Stage names used in logs and metrics.
const (
	StageCreate = "create"
	StageMerge  = "merge"
	StageLoad   = "load"
)

// Hooks receive per-item progress from the stages. Any of them may be nil.
type Hooks struct {
	OnFileCreated func(index int, path string)
	OnFileMerged  func(merge.FileOutcome)
	OnProgress    func(loader.Progress)
}

// Report holds the result of every stage that ran. A nil field means the
// stage was not selected.
type Report struct {
	RunID  string
	Create *fileset.Result
	Merge  *merge.Result
	Load   *loader.Result
	// TableRows is the destination row count after a completed load, or -1.
	TableRows int64
}

// Runner executes the stages selected in Config.
type Runner struct {
	Config config.Config
	Hooks  Hooks
	Open   loader.OpenFunc // defaults to storage.New
	Job    string
}

// New returns a Runner for cfg.
func New(cfg config.Config, hooks Hooks) *Runner {
	return &Runner{Config: cfg, Hooks: hooks, Open: storage.New, Job: DefaultJob}
}

// Run executes create, merge and load in order, skipping unselected stages.
// The first failing stage stops the run; the report still holds the results
// of the stages before it.
func (r *Runner) Run(ctx context.Context) (Report, error) {
	rep := Report{RunID: uuid.NewString(), TableRows: -1}
	job := r.Job
	if job == "" {
		job = DefaultJob
	}
	open := r.Open
	if open == nil {
		open = storage.New
	}
	cfg := r.Config

	if cfg.Create {
		res, err := stage(rep.RunID, job, StageCreate, func() (fileset.Result, error) {
			return r.create(ctx)
		})
		if err != nil {
			return rep, err
		}
		rep.Create = &res
		metrics.RecordRow(job, metrics.KindGenerated, int64(res.Files)*int64(res.LinesPerFile))
	}

	if cfg.RunMerge() {
		res, err := stage(rep.RunID, job, StageMerge, func() (merge.Result, error) {
			return r.merge(ctx)
		})
		if err != nil {
			return rep, err
		}
		rep.Merge = &res
		metrics.RecordRow(job, metrics.KindKept, int64(res.Kept))
		metrics.RecordRow(job, metrics.KindRemoved, int64(res.Removed))
	}

	if cfg.SQL {
		res, err := stage(rep.RunID, job, StageLoad, func() (loader.Result, error) {
			return r.load(ctx, job, open)
		})
		rep.Load = &res
		if err != nil {
			return rep, err
		}
		if res.Status == loader.StatusOK {
			rep.TableRows = r.countRows(ctx, open)
		}
	}
	return rep, nil
}

// stage wraps fn with start/finish log lines and step metrics.
func stage[T any](runID, job, name string, fn func() (T, error)) (T, error) {
	log.Printf("stage=%s run=%s started", name, runID)
	start := time.Now()
	res, err := fn()
	d := time.Since(start)
	metrics.RecordStep(job, name, err, d)
	if err != nil {
		log.Printf("stage=%s run=%s failed after %s: %v", name, runID, d.Truncate(time.Millisecond), err)
		return res, fmt.Errorf("%s: %w", name, err)
	}
	log.Printf("stage=%s run=%s finished in %s", name, runID, d.Truncate(time.Millisecond))
	return res, nil
}

func (r *Runner) create(ctx context.Context) (fileset.Result, error) {
	cfg := r.Config
	enc, err := charset.Lookup(cfg.Encoding)
	if err != nil {
		return fileset.Result{}, err
	}
	var opts []record.Option
	if cfg.Seed != 0 {
		opts = append(opts, record.WithSeed(cfg.Seed))
	}
	w := &fileset.Writer{
		Dir:       cfg.Dir,
		Encoding:  enc,
		Generator: record.NewGenerator(opts...),
		OnFile:    r.Hooks.OnFileCreated,
	}
	return w.CreateFiles(ctx, cfg.Files, cfg.Strings)
}

func (r *Runner) merge(ctx context.Context) (merge.Result, error) {
	cfg := r.Config
	fallback, err := charset.Lookup(cfg.FallbackEncoding)
	if err != nil {
		return merge.Result{}, err
	}
	flush, err := merge.ParseFlush(cfg.MergeFlush)
	if err != nil {
		return merge.Result{}, err
	}
	return merge.FilterAndMerge(ctx, merge.Options{
		Dir:      cfg.Dir,
		Artifact: cfg.Artifact,
		Exclude:  cfg.Remove,
		Fallback: fallback,
		Flush:    flush,
		OnFile:   r.Hooks.OnFileMerged,
	})
}

func (r *Runner) load(ctx context.Context, job string, open loader.OpenFunc) (loader.Result, error) {
	cfg := r.Config
	mode, err := storage.ParseMode(cfg.LoadMode)
	if err != nil {
		return loader.Result{}, err
	}
	return loader.Load(ctx, loader.Options{
		Source:     file.NewLocal(cfg.Artifact),
		Storage:    r.storageConfig(),
		ChunkSize:  cfg.Chunk,
		Mode:       mode,
		OnProgress: r.Hooks.OnProgress,
		Job:        job,
		Verbose:    cfg.Verbose,
	}, open)
}

// countRows returns the table row count, or -1 when it cannot be read.
func (r *Runner) countRows(ctx context.Context, open loader.OpenFunc) int64 {
	repo, err := open(ctx, r.storageConfig())
	if err != nil {
		log.Printf("count rows: %v", err)
		return -1
	}
	defer repo.Close()
	n, err := repo.CountRows(ctx)
	if err != nil {
		log.Printf("count rows: %v", err)
		return -1
	}
	return n
}

func (r *Runner) storageConfig() storage.Config {
	return storage.Config{
		Kind:    r.Config.DBDriver,
		DSN:     r.Config.DSN,
		Table:   r.Config.Table,
		Columns: record.Columns,
	}
}
