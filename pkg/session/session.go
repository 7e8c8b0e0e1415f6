package session

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/hyperscene/pkg/cache"
	"github.com/matzehuels/hyperscene/pkg/errors"
	"github.com/matzehuels/hyperscene/pkg/layout"
	"github.com/matzehuels/hyperscene/pkg/model"
	"github.com/matzehuels/hyperscene/pkg/reconcile"
	"github.com/matzehuels/hyperscene/pkg/scene"
)

// Session is one editing session over a model.
type Session struct {
	model   model.Store
	engine  *reconcile.Engine
	sim     *layout.Simulator
	reg     *scene.Registry
	filters reconcile.Filters
	logger  *log.Logger

	positions cache.Cache
	keyer     cache.Keyer
	modelKey  string
	ttl       time.Duration

	dirty       bool
	reconciling bool
	pending     reconcile.Changes
	lastErr     error
}

// Option configures a [Session].
type Option func(*Session)

// WithEngine sets the reconciliation engine.
func WithEngine(e *reconcile.Engine) Option {
	return func(s *Session) {
		if e != nil {
			s.engine = e
		}
	}
}

// WithSimulator sets the layout simulator.
func WithSimulator(sim *layout.Simulator) Option {
	return func(s *Session) {
		if sim != nil {
			s.sim = sim
		}
	}
}

// WithFilters sets the initial display filters.
func WithFilters(f reconcile.Filters) Option { return func(s *Session) { s.filters = f } }

// WithLogger sets the logger. The default is log.Default().
func WithLogger(l *log.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithPositionCache enables position persistence. modelKey identifies the
// model across runs, typically its file path.
func WithPositionCache(c cache.Cache, keyer cache.Keyer, modelKey string) Option {
	return func(s *Session) {
		if keyer == nil {
			keyer = cache.NewDefaultKeyer()
		}
		s.positions, s.keyer, s.modelKey = c, keyer, modelKey
	}
}

// WithPositionTTL sets how long saved positions live. Zero keeps them
// until the cache is cleared.
func WithPositionTTL(d time.Duration) Option { return func(s *Session) { s.ttl = d } }

// New creates a session over m and runs the first reconciliation. A failed
// first pass is logged and leaves the scene empty; see [Session.Err].
func New(m model.Store, opts ...Option) *Session {
	s := &Session{
		model:   m,
		reg:     scene.NewRegistry(),
		filters: reconcile.DefaultFilters(),
		logger:  log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.engine == nil {
		s.engine = reconcile.New(reconcile.WithLogger(s.logger))
	}
	if s.sim == nil {
		s.sim = layout.NewSimulator(layout.WithLogger(s.logger))
	}
	s.engine.SetEquilibrium(s.sim.EquilibriumDistance())
	_, _ = s.Refresh()
	return s
}

// Model returns the underlying model.
func (s *Session) Model() model.Store { return s.model }

// Registry returns the scene. Callers may read it and change node
// positions, but topology belongs to the session.
func (s *Session) Registry() *scene.Registry { return s.reg }

// Engine returns the reconciliation engine.
func (s *Session) Engine() *reconcile.Engine { return s.engine }

// Simulator returns the layout simulator.
func (s *Session) Simulator() *layout.Simulator { return s.sim }

// Err returns the error of the most recent failed pass, or nil once a pass
// succeeds.
func (s *Session) Err() error { return s.lastErr }

// Subscribe registers fn for scene change events.
func (s *Session) Subscribe(fn func(reconcile.Event)) { s.engine.Subscribe(fn) }

// Refresh reconciles the scene with the model and returns what changed.
// Called while a pass is running, it only schedules another pass.
func (s *Session) Refresh() (reconcile.Changes, error) {
	s.dirty = true
	if s.reconciling {
		return reconcile.Changes{}, nil
	}
	s.reconciling = true
	defer func() { s.reconciling = false }()

	var total reconcile.Changes
	for s.dirty {
		s.dirty = false
		snap, err := s.model.Snapshot()
		if err != nil {
			s.lastErr = err
			s.logger.Warn("model snapshot failed, scene unchanged", "err", err)
			return total, err
		}
		_, ch, err := s.engine.Reconcile(s.reg, snap, s.filters)
		if err != nil {
			s.lastErr = err
			if errors.Is(err, errors.ErrCodeBusy) {
				s.logger.Debug("reconciliation busy, pass deferred")
				continue
			}
			s.logger.Warn("reconciliation skipped", "err", err)
			return total, err
		}
		s.lastErr = nil
		total.Add(ch)
	}
	return total, nil
}

func (s *Session) refreshAfter(err error) error {
	if err != nil {
		return err
	}
	_, _ = s.Refresh()
	return nil
}

// Create adds a concept and reconciles. It returns the concept id.
func (s *Session) Create(id, label string) (string, error) {
	id, err := s.model.Create(id, label)
	return id, s.refreshAfter(err)
}

// Destroy removes a model element and reconciles.
func (s *Session) Destroy(id string) error {
	return s.refreshAfter(s.model.Destroy(id))
}

// Relabel renames a model element and reconciles.
func (s *Session) Relabel(id, label string) error {
	return s.refreshAfter(s.model.Relabel(id, label))
}

// Connect relates two concepts and reconciles. It returns the fact id.
func (s *Session) Connect(from, to, relation, label string) (string, error) {
	id, err := s.model.Connect(from, to, relation, label)
	return id, s.refreshAfter(err)
}

// Tick runs one layout step.
func (s *Session) Tick() layout.Result { return s.sim.Step(s.reg) }

// Move places node id at scene position p, converting to the parent's frame
// for nested nodes. It reports whether the node exists.
func (s *Session) Move(id string, p scene.Vec) bool {
	n, ok := s.reg.Node(id)
	if !ok {
		return false
	}
	if parent := n.Parent(); parent != nil {
		p = p.Sub(parent.ScenePos())
	}
	n.Pos = p
	return true
}

// SetViewCenter makes new nodes appear around c.
func (s *Session) SetViewCenter(c scene.Vec) {
	p := s.engine.Placement()
	p.Center = c
	s.engine.SetPlacement(p)
}

// Stats returns model statistics when the model can report them.
func (s *Session) Stats() (model.Stats, bool) {
	if st, ok := s.model.(interface{ Stats() model.Stats }); ok {
		return st.Stats(), true
	}
	return model.Stats{}, false
}
