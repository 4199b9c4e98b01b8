package coordinator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"customer-analytics/index"
	"customer-analytics/models"
	"customer-analytics/parser"
	"customer-analytics/services"
	"customer-analytics/utils"
)

// Error kinds surfaced through Err. All are recoverable: the next
// successful load or valid search clears them.
var (
	ErrLoadFailure      = errors.New("table source fetch failed")
	ErrParseFailure     = errors.New("table parse failed")
	ErrCustomerNotFound = errors.New("customer not found")
)

// State is the coordinator's load state.
type State int

const (
	StateEmpty State = iota
	StateLoading
	StateReady
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "Loading"
	case StateReady:
		return "Ready"
	default:
		return "Empty"
	}
}

// TableSource supplies raw table text on demand.
type TableSource interface {
	Fetch(ctx context.Context) (string, error)
}

// Coordinator accepts customer-id searches that may arrive before the
// table is loaded and resolves them against the customer index once it
// is ready. A single run-loop goroutine serializes deferred work; only
// the most recent search survives while a load is in flight.
type Coordinator struct {
	logger     *utils.Logger
	summarizer *services.Summarizer

	mu        sync.Mutex
	state     State
	idx       *index.Index
	summary   *models.CustomerSummary
	err       error
	pendingID string
	query     string
	loadGen   uuid.UUID

	// AutoSelectFirst resolves the first customer id after a load
	// that completes with no search queued.
	AutoSelectFirst bool

	tasks     chan func()
	closeOnce sync.Once
}

// New creates a Coordinator and starts its run loop.
func New(summarizer *services.Summarizer, logger *utils.Logger) *Coordinator {
	c := &Coordinator{
		logger:     logger,
		summarizer: summarizer,
		tasks:      make(chan func(), 64),
	}
	go c.run()
	return c
}

func (c *Coordinator) run() {
	for task := range c.tasks {
		task()
	}
}

func (c *Coordinator) post(task func()) {
	c.tasks <- task
}

// Close stops the run loop. No calls may follow it.
func (c *Coordinator) Close() {
	c.closeOnce.Do(func() { close(c.tasks) })
}

// Load fetches the table from src, parses it and installs a fresh
// customer index. It returns once the state transition has been
// applied; a search queued during the load is resolved afterwards, on
// the next run-loop turn, using the index this load produced.
func (c *Coordinator) Load(ctx context.Context, src TableSource) error {
	gen := uuid.New()

	c.mu.Lock()
	c.loadGen = gen
	c.state = StateLoading
	c.err = nil
	c.mu.Unlock()

	c.logger.Info("[coordinator] loading table (generation %s)", gen)

	var (
		loadErr error
		idxNew  *index.Index
	)
	text, err := src.Fetch(ctx)
	if err != nil {
		loadErr = fmt.Errorf("%w: %v", ErrLoadFailure, err)
	} else {
		records, perr := parser.Parse(text)
		if perr != nil {
			loadErr = fmt.Errorf("%w: %v", ErrParseFailure, perr)
		} else {
			idxNew = index.Build(records)
		}
	}

	applied := make(chan struct{})
	c.post(func() {
		defer close(applied)

		c.mu.Lock()
		if c.loadGen != gen {
			// A newer load superseded this one; drop the result.
			c.mu.Unlock()
			return
		}
		if loadErr != nil {
			c.state = StateEmpty
			c.idx = nil
			c.err = loadErr
			c.mu.Unlock()
			c.logger.Error("[coordinator] load failed: %v", loadErr)
			return
		}
		c.idx = idxNew
		c.state = StateReady
		c.err = nil
		c.mu.Unlock()
		c.logger.Info("[coordinator] table ready: %d customers", idxNew.Size())

		// Resolve a queued search on the next run-loop turn, never
		// inside the completion handler itself.
		c.post(func() { c.resolvePending(gen) })
	})
	<-applied
	return loadErr
}

func (c *Coordinator) resolvePending(gen uuid.UUID) {
	c.mu.Lock()
	if c.state != StateReady || c.loadGen != gen {
		c.mu.Unlock()
		return
	}
	id := c.pendingID
	c.pendingID = ""
	if id == "" && c.AutoSelectFirst && c.summary == nil {
		if ids := c.idx.IDs(); len(ids) > 0 {
			id = ids[0]
		}
	}
	c.mu.Unlock()

	if id != "" {
		c.resolve(id)
	}
}

// Search looks up a customer id. Before the index is ready the id is
// stored as the single pending request, overwriting any earlier one;
// once ready it resolves immediately.
func (c *Coordinator) Search(id string) {
	id = NormalizeID(id)
	if id == "" {
		return
	}

	c.mu.Lock()
	c.query = id
	if c.state != StateReady {
		c.pendingID = id
		c.mu.Unlock()
		c.logger.Debug("[coordinator] queued search for %s (state %s)", id, c.state)
		return
	}
	c.mu.Unlock()

	c.resolve(id)
}

func (c *Coordinator) resolve(id string) {
	c.mu.Lock()
	idx := c.idx
	c.mu.Unlock()
	if idx == nil {
		return
	}

	records, ok := idx.Records(id)
	if !ok {
		c.mu.Lock()
		c.summary = nil
		c.err = fmt.Errorf("%w: %s", ErrCustomerNotFound, id)
		c.mu.Unlock()
		c.logger.Warn("[coordinator] customer %s not found in dataset", id)
		return
	}

	summary := c.summarizer.Summarize(id, records)
	c.mu.Lock()
	c.summary = summary
	c.err = nil
	c.mu.Unlock()
}

// Clear resets the active summary and the query input. Load state is
// unaffected.
func (c *Coordinator) Clear() {
	c.mu.Lock()
	c.summary = nil
	c.query = ""
	c.mu.Unlock()
}

// Summary returns the active summary, or nil when none is displayed.
func (c *Coordinator) Summary() *models.CustomerSummary {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.summary
}

// Err returns the recorded error, or nil.
func (c *Coordinator) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// CustomerIDs returns the sorted customer ids of the current index.
// Callers must not mutate the returned slice.
func (c *Coordinator) CustomerIDs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.idx == nil {
		return nil
	}
	return c.idx.IDs()
}

// Records returns one customer's grouped order lines from the current
// index — the read path the batch report uses. The records are owned
// by the index and must not be mutated.
func (c *Coordinator) Records(id string) ([]models.OrderLineRecord, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.idx == nil {
		return nil, false
	}
	return c.idx.Records(id)
}

// Ready reports whether a loaded index is installed.
func (c *Coordinator) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == StateReady
}

// State returns the current load state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Query returns the current search input.
func (c *Coordinator) Query() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query
}

// SetQuery sets the search input without triggering a lookup.
func (c *Coordinator) SetQuery(q string) {
	c.mu.Lock()
	c.query = q
	c.mu.Unlock()
}

// NormalizeID trims and upper-cases a customer id so that "abc1",
// "ABC1" and " abc1 " resolve identically.
func NormalizeID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}
