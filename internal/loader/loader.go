// Package loader streams a delimited artifact into a storage.Repository in
// fixed-size batches and reports progress after every batch.
//
// The destination table is prepared once, before the first batch, using the
// requested storage.Mode; every batch after that appends. There is no
// transaction spanning batches, so a failure leaves earlier batches in place.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"time"

	"recordpipe/internal/datasource"
	"recordpipe/internal/datasource/file"
	"recordpipe/internal/metrics"
	"recordpipe/internal/parser/delimited"
	"recordpipe/internal/record"
	"recordpipe/internal/storage"
)

// Status tags the outcome of a load.
type Status string

const (
	StatusOK Status = "ok"
	// StatusNoSource means the artifact does not exist; nothing was opened.
	StatusNoSource Status = "no_source"
)

// DefaultChunkSize is used when Options.ChunkSize is not positive.
const DefaultChunkSize = 10000

// OpenFunc opens the sink described by cfg. storage.New satisfies it.
type OpenFunc func(ctx context.Context, cfg storage.Config) (storage.Repository, error)

// Progress is emitted after each batch is written.
type Progress struct {
	Batch int   // 1-based batch number
	Rows  int64 // rows in this batch
	Count int64 // rows loaded so far
	Size  int64 // rows remaining
}

// Options configures Load.
type Options struct {
	Source    datasource.Source
	Storage   storage.Config // Kind, DSN, Table, Columns
	Delimiter string         // defaults to record.Delimiter
	ChunkSize int
	Mode      storage.Mode

	OnProgress func(Progress)

	Job     string // metrics label
	Verbose bool   // per-batch log lines
}

// Result summarizes a load.
type Result struct {
	Status  Status
	Batches int
	Count   int64 // rows written
	Size    int64 // rows counted but not written; 0 after a full load
	Total   int64 // non-blank lines in the source
}

// Load counts the source lines, opens the sink with open, prepares the table
// and copies the source in batches of opts.ChunkSize rows.
func Load(ctx context.Context, opts Options, open OpenFunc) (Result, error) {
	if opts.Source == nil {
		return Result{}, fmt.Errorf("loader: source must not be nil")
	}
	if open == nil {
		return Result{}, fmt.Errorf("loader: open func must not be nil")
	}
	if len(opts.Storage.Columns) == 0 {
		return Result{}, fmt.Errorf("loader: columns must not be empty")
	}
	chunk := opts.ChunkSize
	if chunk <= 0 {
		chunk = DefaultChunkSize
	}
	delim := opts.Delimiter
	if delim == "" {
		delim = record.Delimiter
	}
	mode := opts.Mode
	if mode == "" {
		mode = storage.ModeReplace
	}

	total, err := file.CountLines(ctx, opts.Source)
	if errors.Is(err, fs.ErrNotExist) {
		return Result{Status: StatusNoSource}, nil
	}
	if err != nil {
		return Result{}, fmt.Errorf("loader: count lines: %w", err)
	}

	rc, err := opts.Source.Open(ctx)
	if errors.Is(err, fs.ErrNotExist) {
		return Result{Status: StatusNoSource}, nil
	}
	if err != nil {
		return Result{}, fmt.Errorf("loader: %w", err)
	}
	defer rc.Close()

	repo, err := open(ctx, opts.Storage)
	if err != nil {
		return Result{}, fmt.Errorf("loader: open sink: %w", err)
	}
	defer repo.Close()

	if err := storage.PrepareTable(ctx, repo, opts.Storage, mode); err != nil {
		return Result{}, fmt.Errorf("loader: prepare table %s (%s): %w", opts.Storage.Table, mode, err)
	}
	if opts.Verbose {
		log.Printf("loader: started with table=%s mode=%s chunk=%d total=%d", opts.Storage.Table, mode, chunk, total)
	}

	res := Result{Status: StatusOK, Total: total, Size: total}
	rd := delimited.NewReader(rc, delim, len(opts.Storage.Columns))
	batch := make([][]any, 0, chunk)
	start := time.Now()

	for {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		var rerr error
		batch, rerr = rd.ReadBatch(batch, chunk)
		if rerr != nil && rerr != io.EOF {
			return res, fmt.Errorf("loader: %w", rerr)
		}
		if len(batch) > 0 {
			n, err := repo.CopyFrom(ctx, opts.Storage.Columns, batch)
			if err != nil {
				log.Printf("loader: copy failed batch=%d total_inserted=%d err=%v", res.Batches+1, res.Count, err)
				return res, fmt.Errorf("loader: batch %d: %w", res.Batches+1, err)
			}
			res.Batches++
			res.Count += n
			res.Size -= n
			metrics.RecordRow(opts.Job, metrics.KindLoaded, n)
			metrics.RecordBatches(opts.Job, 1)

			if opts.Verbose {
				elapsed := time.Since(start).Truncate(time.Millisecond)
				rps := float64(0)
				if s := elapsed.Seconds(); s > 0 {
					rps = float64(res.Count) / s
				}
				log.Printf("batch #%d: rps=%.0f inserted=%d total_inserted=%d remaining=%d elapsed=%s",
					res.Batches, rps, n, res.Count, res.Size, elapsed)
			}
			if opts.OnProgress != nil {
				opts.OnProgress(Progress{Batch: res.Batches, Rows: n, Count: res.Count, Size: res.Size})
			}
		}
		if rerr == io.EOF {
			return res, nil
		}
	}
}
