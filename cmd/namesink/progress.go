package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"

	"github.com/Nomadcxx/namesink/internal/batch"
	"github.com/Nomadcxx/namesink/internal/store"
)

// progressRenamer ticks a progress bar after every attempted rename.
// progressbar.ProgressBar locks internally, so workers may share it.
type progressRenamer struct {
	next batch.Renamer
	bar  *progressbar.ProgressBar
}

func (p *progressRenamer) Rename(ctx context.Context, src store.SourceFile, candidate string) error {
	err := p.next.Rename(ctx, src, candidate)
	if p.bar != nil {
		_ = p.bar.Add(1)
	}
	return err
}

// start shows a bar for total renames on w
func (p *progressRenamer) start(total int, w io.Writer) {
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetDescription("Renaming"),
		progressbar.OptionSetWriter(w),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(w, "\n")
		}),
		progressbar.OptionSetRenderBlankState(true),
	)
}

func (p *progressRenamer) finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
