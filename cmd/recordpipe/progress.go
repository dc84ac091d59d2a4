package main

import (
	"fmt"
	"io"

	"github.com/schollz/progressbar/v3"

	"recordpipe/internal/loader"
	"recordpipe/internal/merge"
	"recordpipe/internal/pipeline"
)

// reporter renders stage progress as a progress bar, plain lines or nothing.
type reporter struct {
	mode  string
	out   io.Writer
	files int

	bar      *progressbar.ProgressBar
	barStage string
}

func newReporter(mode string, out io.Writer, files int) *reporter {
	return &reporter{mode: mode, out: out, files: files}
}

func (r *reporter) hooks() pipeline.Hooks {
	switch r.mode {
	case "none":
		return pipeline.Hooks{}
	case "lines":
		return pipeline.Hooks{
			OnFileCreated: func(_ int, path string) {
				fmt.Fprintf(r.out, "created %s\n", path)
			},
			OnFileMerged: func(o merge.FileOutcome) {
				if o.Err != nil {
					fmt.Fprintf(r.out, "skipped %s: %v\n", o.Path, o.Err)
					return
				}
				fmt.Fprintf(r.out, "merged %s: kept=%d removed=%d\n", o.Path, o.Kept, o.Removed)
			},
			OnProgress: func(p loader.Progress) {
				fmt.Fprintf(r.out, "batch %d: loaded %d rows, %d remaining\n", p.Batch, p.Count, p.Size)
			},
		}
	}
	return pipeline.Hooks{
		OnFileCreated: func(int, string) {
			r.step(pipeline.StageCreate, int64(r.files), "creating files", 1)
		},
		OnFileMerged: func(merge.FileOutcome) {
			r.step(pipeline.StageMerge, -1, "merging files", 1)
		},
		OnProgress: func(p loader.Progress) {
			r.step(pipeline.StageLoad, p.Count+p.Size, "loading rows", p.Rows)
		},
	}
}

// step advances the bar for stage, replacing the bar of a previous stage.
// A total of -1 renders a spinner.
func (r *reporter) step(stage string, total int64, desc string, n int64) {
	if r.barStage != stage {
		r.finish()
		r.bar = progressbar.NewOptions64(total,
			progressbar.OptionSetWriter(r.out),
			progressbar.OptionSetDescription(desc),
			progressbar.OptionShowCount(),
		)
		r.barStage = stage
	}
	_ = r.bar.Add64(n)
}

// finish completes the current bar, if any.
func (r *reporter) finish() {
	if r.bar == nil {
		return
	}
	_ = r.bar.Finish()
	fmt.Fprintln(r.out)
	r.bar = nil
	r.barStage = ""
}
