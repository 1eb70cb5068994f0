package qlock

import (
	"context"
	"errors"
	"fmt"

	"github.com/theapemachine/errnie"
	"golang.org/x/sync/errgroup"

	"github.com/theapemachine/qlock/circuit"
	"github.com/theapemachine/qlock/dist"
	"github.com/theapemachine/qlock/qasm"
	"github.com/theapemachine/qlock/sim"
)

// Comparison is a baseline run and a watermarked run of the same circuit.
type Comparison struct {
	Name         string      `json:"name"`
	IdentityHash string      `json:"identity_hash"`
	Shots        int         `json:"shots"`
	Perturbed    int         `json:"perturbed_gates"`
	Bound        float64     `json:"perturbation_bound"`
	Baseline     dist.Counts `json:"baseline"`
	Locked       dist.Counts `json:"locked"`
	LockedQASM   string      `json:"locked_qasm,omitempty"`
	Report       dist.Report `json:"report"`
}

// NamedCircuit labels a circuit within a batch.
type NamedCircuit struct {
	Name    string
	Circuit *circuit.Circuit
}

/*
Compare locks c with engine and samples the original and the locked circuit
on backend concurrently, shots times each. Backend errors are returned as
the backend reported them.
*/
func Compare(
	ctx context.Context, engine *Engine, backend sim.Backend, name string, c *circuit.Circuit, shots int,
) (*Comparison, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: nil circuit %q", ErrInvalidArgument, name)
	}

	locked := engine.Lock(c)

	var baseline, watermarked dist.Counts
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		baseline, err = backend.Run(gctx, c, shots)
		return err
	})
	g.Go(func() (err error) {
		watermarked, err = backend.Run(gctx, locked, shots)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &Comparison{
		Name:         name,
		IdentityHash: engine.IdentityHash(),
		Shots:        shots,
		Perturbed:    countRotations(c),
		Bound:        engine.Bound(c),
		Baseline:     baseline,
		Locked:       watermarked,
		Report:       dist.Compare(baseline, watermarked),
	}
	if src, err := qasm.Dump(locked); err == nil {
		out.LockedQASM = src
	} else {
		errnie.Info("Compare - %s has no QASM form: %v", name, err)
	}
	return out, nil
}

/*
Retryable reports whether a failed comparison might succeed if run again.
Bad input and circuits the simulator cannot run fail the same way every time.
*/
func Retryable(err error) bool {
	for _, permanent := range []error{
		ErrInvalidArgument,
		circuit.ErrInvalidCircuit,
		sim.ErrTooManyQubits,
		sim.ErrUnsupportedGate,
		sim.ErrMidCircuitMeasurement,
		sim.ErrInvalidShots,
		context.Canceled,
	} {
		if errors.Is(err, permanent) {
			return false
		}
	}
	return err != nil
}

func countRotations(c *circuit.Circuit) int {
	n := 0
	for _, g := range c.Gates {
		if circuit.IsRotation(g.Name) && len(g.Params) > 0 {
			n++
		}
	}
	return n
}

/*
CompareBatch runs Compare for every input on the pool q and returns the
comparisons in input order. A failed input leaves a nil entry; all failures
are joined into the returned error.
*/
func CompareBatch(
	ctx context.Context, q *Q, engine *Engine, backend sim.Backend, inputs []NamedCircuit, shots int, opts ...JobOption,
) ([]*Comparison, error) {
	pending := make([]chan Result, len(inputs))
	for i, in := range inputs {
		pending[i] = q.Schedule(fmt.Sprintf("compare/%d/%s", i, in.Name), func(jobCtx context.Context) (any, error) {
			runCtx, cancel := context.WithCancel(jobCtx)
			defer cancel()
			stop := context.AfterFunc(ctx, cancel)
			defer stop()

			return Compare(runCtx, engine, backend, in.Name, in.Circuit, shots)
		}, opts...)
	}

	out := make([]*Comparison, len(inputs))
	var errs []error
	for i, ch := range pending {
		select {
		case <-ctx.Done():
			return out, ctx.Err()
		case r := <-ch:
			if r.Error != nil {
				errs = append(errs, fmt.Errorf("%s: %w", inputs[i].Name, r.Error))
				continue
			}
			out[i] = r.Value.(*Comparison)
		}
	}
	return out, errors.Join(errs...)
}
