package ch

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// InserterQuantum is the metadata returned by one Inserter commit: rows and
// bytes written since the previous commit, elapsed wall time, and a
// monotonically increasing id.
type InserterQuantum struct {
	ID      uint64
	Rows    int
	Bytes   int64
	Elapsed time.Duration
}

// InserterThresholds bounds how long an Inserter accumulates rows before
// committing. A zero field means that threshold never fires on its own.
type InserterThresholds struct {
	MaxRows     int
	MaxBytes    int64
	MaxInterval time.Duration
}

// Inserter drives an InsertWriter with size/row/time thresholds, the
// spec's batching Inserter: write(row) records the row, commit() happens
// implicitly whenever a threshold is crossed, and on any error the
// Inserter enters a terminal state; it never retries a failed batch
// itself, that policy is left to the caller.
type Inserter[T any] struct {
	client     *Client
	table      string
	refl       RowReflection[T]
	opt        InsertOptions
	thresholds InserterThresholds

	writer       *InsertWriter[T]
	rowsInBatch  int
	bytesInBatch int64
	lastCommit   time.Time
	quantumID    uint64

	failed bool
	err    error
}

// NewInserter opens the first InsertWriter and returns a ready Inserter.
func NewInserter[T any](ctx context.Context, c *Client, table string, refl RowReflection[T], opt InsertOptions, thresholds InserterThresholds) (*Inserter[T], error) {
	ins := &Inserter[T]{client: c, table: table, refl: refl, opt: opt, thresholds: thresholds}
	if err := ins.openWriter(ctx); err != nil {
		return nil, err
	}
	return ins, nil
}

func (ins *Inserter[T]) openWriter(ctx context.Context) error {
	w, err := Insert(ctx, ins.client, ins.table, ins.refl, ins.opt)
	if err != nil {
		return err
	}
	ins.writer = w
	ins.rowsInBatch = 0
	ins.bytesInBatch = 0
	ins.lastCommit = time.Now()
	return nil
}

// Write records row and triggers an implicit Commit if any threshold is
// now crossed. It returns the committed InserterQuantum when a commit
// happened, or a zero quantum and committed=false otherwise.
func (ins *Inserter[T]) Write(ctx context.Context, row *T) (quantum InserterQuantum, committed bool, err error) {
	if ins.failed {
		return InserterQuantum{}, false, ins.err
	}
	if err := ins.writer.Write(row); err != nil {
		ins.fail(err)
		return InserterQuantum{}, false, err
	}
	ins.rowsInBatch++
	ins.bytesInBatch = ins.writer.BytesWritten()

	if ins.thresholdCrossed() {
		q, err := ins.Commit(ctx)
		if err != nil {
			return InserterQuantum{}, false, err
		}
		return q, true, nil
	}
	return InserterQuantum{}, false, nil
}

func (ins *Inserter[T]) thresholdCrossed() bool {
	t := ins.thresholds
	if t.MaxRows > 0 && ins.rowsInBatch >= t.MaxRows {
		return true
	}
	if t.MaxBytes > 0 && ins.bytesInBatch >= t.MaxBytes {
		return true
	}
	if t.MaxInterval > 0 && time.Since(ins.lastCommit) >= t.MaxInterval {
		return true
	}
	return false
}

// Commit ends the current writer, records a quantum, and opens a fresh
// writer against the same table. On error the Inserter enters a terminal
// state: subsequent Write/Commit calls return the same error without
// touching the transport again.
func (ins *Inserter[T]) Commit(ctx context.Context) (InserterQuantum, error) {
	if ins.failed {
		return InserterQuantum{}, ins.err
	}
	started := ins.lastCommit
	rows, bytes := ins.rowsInBatch, ins.bytesInBatch

	if _, err := ins.writer.End(ctx); err != nil {
		ins.fail(err)
		return InserterQuantum{}, err
	}
	if err := ins.openWriter(ctx); err != nil {
		ins.fail(err)
		return InserterQuantum{}, err
	}

	ins.quantumID++
	return InserterQuantum{
		ID:      ins.quantumID,
		Rows:    rows,
		Bytes:   bytes,
		Elapsed: time.Since(started),
	}, nil
}

func (ins *Inserter[T]) fail(err error) {
	ins.failed = true
	ins.err = errors.Wrap(err, "inserter")
}

// Close aborts any in-flight batch without committing it.
func (ins *Inserter[T]) Close() {
	if ins.writer != nil {
		ins.writer.Abort()
	}
}
