package qlock

import (
	"slices"

	"github.com/theapemachine/errnie"

	"github.com/theapemachine/qlock/circuit"
	"github.com/theapemachine/qlock/qasm"
)

/*
Engine watermarks circuits for one identity. The identity embedding and the
identity-only signature are computed once, at construction, and never change
afterwards, so an Engine is safe for concurrent use.
*/
type Engine struct {
	identityHash string
	cfg          Config
	embedding    []float64
	signature    []float64
	audit        *AuditLog
	metrics      *Metrics
}

// EngineOption configures optional collaborators of an Engine.
type EngineOption func(*Engine)

// WithAudit records one AuditRecord per Lock call into log.
func WithAudit(log *AuditLog) EngineOption {
	return func(e *Engine) {
		e.audit = log
	}
}

// WithMetrics counts locks and perturbed gates into m.
func WithMetrics(m *Metrics) EngineOption {
	return func(e *Engine) {
		e.metrics = m
	}
}

/*
NewEngine embeds identity under cfg and derives its signature.

Parameters:
  - identity: the watermark owner, arbitrary UTF-8
  - cfg: watermark configuration, NewConfig() when nil

Returns:
  - *Engine: ready to lock circuits
  - error: ErrInvalidArgument for a bad identity or configuration
*/
func NewEngine(identity string, cfg *Config, opts ...EngineOption) (*Engine, error) {
	if cfg == nil {
		cfg = NewConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	embedding, err := Embed(identity, cfg.Dimension, WithSalt(cfg.Salt))
	if err != nil {
		return nil, err
	}

	e := &Engine{
		identityHash: IdentityHash(identity),
		cfg:          *cfg,
		embedding:    embedding,
	}
	e.signature = e.transform(embedding)

	for _, opt := range opts {
		opt(e)
	}

	errnie.Info(
		"NewEngine - identity %s, dimension %d, epsilon %g, mode %s, transform %s",
		e.identityHash, cfg.Dimension, cfg.Epsilon, cfg.Mode, cfg.Transform,
	)
	return e, nil
}

func (e *Engine) transform(latent []float64) []float64 {
	if e.cfg.Transform == TransformLatent {
		return LatentTransform(latent)
	}
	return Reweight(latent)
}

func (e *Engine) IdentityHash() string { return e.identityHash }

func (e *Engine) Config() Config { return e.cfg }

// Signature returns a copy of the identity-only signature.
func (e *Engine) Signature() []float64 {
	return slices.Clone(e.signature)
}

/*
SignatureFor returns the signature Lock applies to c. Without feature mixing
this is the identity signature; with FeatureMix m the circuit's features are
blended in as (1-m)·embedding + m·features before the transform.
*/
func (e *Engine) SignatureFor(c *circuit.Circuit) []float64 {
	m := e.cfg.FeatureMix
	if m == 0 {
		return e.Signature()
	}
	features := CircuitFeatures(c, len(e.embedding))
	latent := make([]float64, len(e.embedding))
	for i := range latent {
		latent[i] = (1-m)*e.embedding[i] + m*features[i]
	}
	return e.transform(latent)
}

// Bound is the largest shift Lock applies to any angle of c, in either mode.
func (e *Engine) Bound(c *circuit.Circuit) float64 {
	return PerturbationBound(e.SignatureFor(c), e.cfg.Epsilon)
}

/*
Lock returns a watermarked copy of c. The k-th rx, ry or rz gate that carries
a parameter has its first angle shifted by δ = Perturb(signature, k, epsilon),
or in multiplicative mode by θ·δ clamped to ±Bound(c), so no angle ever moves
further than Bound(c). Every other gate, the wiring and the registers are
copied unchanged. The
caller's circuit is never modified. A nil circuit yields nil.
*/
func (e *Engine) Lock(c *circuit.Circuit) *circuit.Circuit {
	if c == nil {
		return nil
	}

	signature := e.SignatureFor(c)
	bound := PerturbationBound(signature, e.cfg.Epsilon)
	out := c.Clone()

	k := 0
	for i := range out.Gates {
		g := &out.Gates[i]
		if !circuit.IsRotation(g.Name) || len(g.Params) == 0 {
			continue
		}
		delta := Perturb(signature, k, e.cfg.Epsilon)
		if e.cfg.Mode == ModeMultiplicative {
			delta = min(bound, max(-bound, g.Params[0]*delta))
		}
		g.Params[0] += delta
		k++
	}

	if e.metrics != nil {
		e.metrics.recordLock(k)
	}
	if e.audit != nil {
		if _, err := e.audit.Append(AuditRecord{
			IdentityHash: e.identityHash,
			GatesBefore:  len(c.Gates),
			GatesAfter:   len(out.Gates),
			Perturbed:    k,
			Mode:         e.cfg.Mode,
		}); err != nil {
			errnie.Info("Lock - audit sink failed: %v", err)
		}
	}
	return out
}

/*
LockQASM watermarks an OpenQASM 2.0 program. Source that cannot be parsed, or
a result that cannot be written back, leaves src unchanged.
*/
func (e *Engine) LockQASM(src string) string {
	c, err := qasm.Parse(src)
	if err != nil {
		errnie.Info("LockQASM - returning input unchanged: %v", err)
		return src
	}
	out, err := qasm.Dump(e.Lock(c))
	if err != nil {
		errnie.Info("LockQASM - returning input unchanged: %v", err)
		return src
	}
	return out
}

/*
LockAny watermarks whatever circuit representation it is handed: a
*circuit.Circuit, a circuit.Circuit, or OpenQASM source as string or []byte.
Anything else is returned as is.
*/
func (e *Engine) LockAny(v any) any {
	switch t := v.(type) {
	case *circuit.Circuit:
		return e.Lock(t)
	case circuit.Circuit:
		return *e.Lock(&t)
	case string:
		return e.LockQASM(t)
	case []byte:
		if out := e.LockQASM(string(t)); out != string(t) {
			return []byte(out)
		}
		return t
	}
	errnie.Info("LockAny - unsupported input %T, returning it unchanged", v)
	return v
}
