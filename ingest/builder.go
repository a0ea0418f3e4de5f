package ingest

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/rominf/conceptnet-lite/db"
	"github.com/rominf/conceptnet-lite/domain"
)

// Builder turns an assertions dump into a graph store.
type Builder struct {
	client *db.Client
	cfg    *Config
}

func NewBuilder(client *db.Client, cfg *Config) *Builder {
	if cfg == nil {
		cfg = NewConfig()
	}
	cfg.normalize()
	b := &Builder{
		client: client,
		cfg:    cfg,
	}
	return b
}

// Build ingests the assertions file at path.
func (b *Builder) Build(ctx context.Context, path string) (*domain.BuildInfo, error) {
	r, err := OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return b.BuildFrom(ctx, r, path)
}

// BuildFrom ingests every line of r.  A reader goroutine parses and filters
// assertions while a single writer goroutine commits one transaction per
// batch.  When ctx is cancelled the build stops after the batch in flight;
// everything committed so far remains valid and the returned BuildInfo
// describes it.
func (b *Builder) BuildFrom(ctx context.Context, r *Reader, source string) (*domain.BuildInfo, error) {
	info := &domain.BuildInfo{
		ID:        uuid.New().String(),
		Source:    source,
		StartedAt: time.Now().UnixNano(),
	}

	log.WithField("source", source).WithField("languages", b.cfg.Languages).WithField("batch-size", b.cfg.BatchSize).Info("Build starting")

	var (
		batches           = make(chan []*domain.Assertion, 2)
		g, gctx           = errgroup.WithContext(ctx)
		readCtx, stopRead = context.WithCancel(gctx)
	)
	defer stopRead()

	g.Go(func() error {
		defer close(batches)
		return b.read(readCtx, gctx, r, info, batches)
	})

	g.Go(func() error {
		defer stopRead()
		return b.write(gctx, info, batches, stopRead)
	})

	err := g.Wait()
	info.FinishedAt = time.Now().UnixNano()
	info.EdgesSkipped += info.Duplicates

	if langs, langErr := b.client.Languages(); langErr == nil {
		info.Languages = make([]string, 0, len(langs))
		for _, lang := range langs {
			info.Languages = append(info.Languages, lang.Code)
		}
	} else if err == nil {
		err = langErr
	}

	if saveErr := b.client.BuildInfoSave(info); saveErr != nil && err == nil {
		err = errors.Wrap(saveErr, "saving build info")
	}

	log.WithField("lines", info.LinesRead).
		WithField("edges", info.EdgesWritten).
		WithField("skipped", info.EdgesSkipped).
		WithField("duplicates", info.Duplicates).
		WithField("concepts", info.Concepts).
		WithField("labels", info.Labels).
		WithField("duration", time.Duration(info.FinishedAt-info.StartedAt)).
		Info("Build finished")

	return info, err
}

// read parses lines into batches.  Cancellation of readCtx alone means the
// writer has all it needs and isn't an error.
func (b *Builder) read(readCtx context.Context, gctx context.Context, r *Reader, info *domain.BuildInfo, batches chan<- []*domain.Assertion) error {
	batch := make([]*domain.Assertion, 0, b.cfg.BatchSize)

	send := func() error {
		select {
		case batches <- batch:
			batch = make([]*domain.Assertion, 0, b.cfg.BatchSize)
			return nil
		case <-readCtx.Done():
			return gctx.Err()
		}
	}

	for {
		if readCtx.Err() != nil {
			return gctx.Err()
		}
		err := r.Next()
		if err == io.EOF {
			break
		}
		tooLong := errors.Cause(err) == ErrLineTooLong
		if err != nil && !tooLong {
			return err
		}
		info.LinesRead++
		linesTotal.Inc()

		if b.cfg.ProgressEvery > 0 && info.LinesRead%uint64(b.cfg.ProgressEvery) == 0 {
			log.WithField("lines", info.LinesRead).WithField("skipped", info.EdgesSkipped).Info("Build progress")
		}

		var (
			a      *domain.Assertion
			reason = skipMalformed
		)
		if tooLong {
			log.WithField("line", r.LineNo()).Warnf("Skipping assertion: %s", err)
		} else {
			a, reason = b.parse(r.Line())
		}
		if a == nil {
			info.EdgesSkipped++
			edgesSkippedTotal.WithLabelValues(reason).Inc()
			continue
		}

		batch = append(batch, a)
		if len(batch) >= b.cfg.BatchSize {
			if err := send(); err != nil {
				return err
			}
		}
	}

	if len(batch) > 0 {
		return send()
	}
	return nil
}

// parse returns nil and the skip reason for lines which aren't kept.
func (b *Builder) parse(line string) (*domain.Assertion, string) {
	a, err := domain.ParseAssertion(line)
	if err != nil {
		if domain.IsMalformed(err) {
			log.WithField("line", truncate(line, 200)).Debugf("Skipping malformed assertion: %s", err)
			return nil, skipMalformed
		}
		return nil, skipNotConcept
	}
	if !b.keep(a) {
		return nil, skipLanguage
	}
	return a, ""
}

// keep applies the language filter.  Both ends must match.
func (b *Builder) keep(a *domain.Assertion) bool {
	return b.cfg.keepLanguage(a.Start.Language) && b.cfg.keepLanguage(a.End.Language)
}

func (b *Builder) write(ctx context.Context, info *domain.BuildInfo, batches <-chan []*domain.Assertion, stop func()) error {
	for batch := range batches {
		if err := ctx.Err(); err != nil {
			return err
		}

		var limitReached bool
		stats, err := b.client.WriteBatch(func(w *db.Writer) error {
			for _, a := range batch {
				if b.cfg.MaxEdges >= 0 && int(info.EdgesWritten)+w.Stats().Edges >= b.cfg.MaxEdges {
					limitReached = true
					return nil
				}
				if _, err := w.AddAssertion(a); err != nil {
					return errors.Wrapf(err, "adding %v", a.URI)
				}
			}
			return nil
		})
		if err != nil {
			return errors.Wrap(err, "writing batch")
		}

		info.EdgesWritten += uint64(stats.Edges)
		info.Duplicates += uint64(stats.Duplicates)
		info.Concepts += uint64(stats.Concepts)
		info.Labels += uint64(stats.Labels)
		edgesWrittenTotal.Add(float64(stats.Edges))
		edgesSkippedTotal.WithLabelValues(skipDuplicate).Add(float64(stats.Duplicates))

		log.WithField("edges", info.EdgesWritten).WithField("batch-edges", stats.Edges).Debug("Committed batch")

		if limitReached {
			log.WithField("max-edges", b.cfg.MaxEdges).Info("Edge limit reached, stopping")
			stop()
			// Drain so the reader isn't blocked on a full channel.
			for range batches {
			}
			return nil
		}
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
