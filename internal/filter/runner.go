// Package filter implements the request-evaluate-respond cycle: an unbounded
// loop reading one scenario record per line, evaluating it, and emitting one
// verdict line. Processing is strictly sequential and FIFO; every failure is
// fatal to the loop because a malformed record means the caller violated the
// protocol, and the process is meant to be supervised and restarted.
package filter

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"solana-arb-filter/internal/codec"
	"solana-arb-filter/internal/domain"
	"solana-arb-filter/internal/evaluator"
	"solana-arb-filter/internal/observability"
)

// ErrTransport is returned when the input stream cannot be read or the
// output stream cannot be written.
var ErrTransport = errors.New("transport failure")

// maxLineBytes bounds a single scenario record. Records are small JSON
// objects; anything near this limit is a protocol violation anyway.
const maxLineBytes = 1 << 20

// Journal receives every evaluated scenario. Implementations must tolerate
// repeated identical scenarios.
type Journal interface {
	Record(ctx context.Context, req *domain.ScenarioRequest, v *domain.Verdict) error
}

// RunnerOptions configures a Runner.
type RunnerOptions struct {
	In  io.Reader
	Out io.Writer

	// Journal, when set, receives each evaluation. Journal errors are
	// logged and do not terminate the loop; persistence is supplemental
	// to the filter contract.
	Journal Journal

	// Logger for journal diagnostics. Defaults to the standard logger.
	Logger *log.Logger
}

// Runner drives the decode → evaluate → encode loop over a line stream.
type Runner struct {
	in      io.Reader
	out     io.Writer
	journal Journal
	logger  *log.Logger
}

// NewRunner creates a new Runner.
func NewRunner(opts RunnerOptions) *Runner {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		in:      opts.In,
		out:     opts.Out,
		journal: opts.Journal,
		logger:  logger,
	}
}

// Run processes records until end-of-input or the first error. A nil return
// is a clean shutdown (EOF with no pending error); any non-nil return means
// the caller must terminate the process with a non-zero exit code.
func (r *Runner) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(r.in)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		if err := r.process(ctx, line); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("%w: read input: %v", ErrTransport, err)
	}
	return nil
}

// process runs one record through decode → evaluate → encode → emit.
func (r *Runner) process(ctx context.Context, line string) error {
	start := time.Now()

	req, err := codec.Decode([]byte(line))
	if err != nil {
		observability.RecordDecodeFailure()
		return err
	}

	verdict, err := evaluator.Evaluate(req)
	if err != nil {
		return err
	}

	out, err := codec.Encode(verdict)
	if err != nil {
		return err
	}

	if _, err := r.out.Write(append(out, '\n')); err != nil {
		return fmt.Errorf("%w: write output: %v", ErrTransport, err)
	}

	observability.RecordScenarioEvaluated(verdict.Profitable, time.Since(start).Seconds())

	if r.journal != nil {
		if err := r.journal.Record(ctx, req, verdict); err != nil {
			r.logger.Printf("journal record failed: %v", err)
		}
	}

	return nil
}
