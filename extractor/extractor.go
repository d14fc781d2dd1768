// Package extractor drives a browser session to load a page and run a
// fixed set of named extraction routines, collecting field values into
// a shared map and recording which routines failed.
//
// A routine's failure never stops the others: every registered routine
// runs exactly once per navigate+extract cycle. Fatal conditions
// (session acquisition, navigation) surface to the caller as typed
// errors; per-routine failures are logged and appended to the failure
// list instead.
package extractor

import (
	"fmt"
	"log/slog"

	"github.com/go-rod/rod"
	"github.com/use-agent/pagelift/browser"
	"github.com/use-agent/pagelift/models"
)

// Routine is a single named extraction step. Fn queries the current
// page through the extractor's session and stores what it finds via
// Set; it returns nil on success or a human-readable error. Fn must
// only call Set once the value is in hand, so a failed routine leaves
// no key in the result map.
type Routine struct {
	// Name identifies the routine.
	Name string

	// Doc is a one-line description used in logs. Falls back to Name.
	Doc string

	Fn func() error
}

// Options configures a new Extractor.
type Options struct {
	// Session is an already-open browser session. Optional.
	Session browser.Session

	// Factory produces a session when none is held at navigation time.
	// Defaults to the standard local-browser factory.
	Factory browser.Factory

	// Routines is the initial ordered routine list. More can be added
	// with Add.
	Routines []Routine

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Extractor is the base page extractor. Site packages embed it and add
// their routines as closures over their own state.
type Extractor struct {
	session  browser.Session
	factory  browser.Factory
	routines []Routine
	data     map[string]string
	failures []string
	address  string
	log      *slog.Logger
}

// New creates an Extractor. No session is opened until the first
// navigation.
func New(opts Options) *Extractor {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Extractor{
		session:  opts.Session,
		factory:  opts.Factory,
		routines: opts.Routines,
		data:     map[string]string{},
		log:      log,
	}
}

// FromAddress constructs an extractor, loads the address and runs all
// routines — the construct-with-URL shorthand. The session is closed
// again if navigation fails.
func FromAddress(address string, opts Options) (*Extractor, error) {
	e := New(opts)
	if err := e.Extract(address); err != nil {
		_ = e.Close()
		return nil, err
	}
	return e, nil
}

// Add appends routines to the execution list. Registration order is
// execution order, which keeps the failure list deterministic.
func (e *Extractor) Add(routines ...Routine) {
	e.routines = append(e.routines, routines...)
}

// Session returns the current session handle, or nil before the first
// navigation.
func (e *Extractor) Session() browser.Session {
	return e.session
}

// Set stores an extracted field value.
func (e *Extractor) Set(field, value string) {
	e.data[field] = value
}

// Data returns the result map of the current cycle. A field whose
// routine failed is absent.
func (e *Extractor) Data() map[string]string {
	return e.data
}

// Failures returns the failure messages of the current cycle, in
// routine registration order.
func (e *Extractor) Failures() []string {
	return e.failures
}

// Address returns the address of the current page.
func (e *Extractor) Address() string {
	return e.address
}

// Navigate starts a fresh cycle: it acquires a session if none is
// held, clears the result map and failure list, and loads the address.
// Session acquisition and navigation failures are fatal and returned
// as typed errors.
func (e *Extractor) Navigate(address string) error {
	if e.session == nil {
		factory := e.factory
		if factory == nil {
			factory = browser.Default()
		}
		s, err := factory()
		if err != nil {
			return models.NewExtractError(
				models.ErrCodeSession,
				"failed to acquire browser session",
				err,
			)
		}
		e.session = s
	}

	e.data = map[string]string{}
	e.failures = nil
	e.address = address

	if err := e.session.Navigate(address); err != nil {
		e.log.Warn("page load failed", "url", address, "error", err)
		return models.NewExtractError(
			models.ErrCodeNavigation,
			"failed to load "+address,
			err,
		)
	}
	e.log.Info("page loaded", "url", address)
	return nil
}

// RunAll invokes every registered routine exactly once, in order, and
// returns the number of failures. A routine that returns an error is
// recorded verbatim; a routine that panics (rod throws on driver
// errors) is caught and recorded with a synthesized message naming the
// routine. RunAll itself never panics.
func (e *Extractor) RunAll() int {
	failed := 0
	for _, r := range e.routines {
		label := r.Doc
		if label == "" {
			label = r.Name
		}

		var routineErr error
		if panicErr := rod.Try(func() { routineErr = r.Fn() }); panicErr != nil {
			e.failures = append(e.failures,
				fmt.Sprintf("%s: unexpected error: %v", label, panicErr))
			e.log.Info("extraction routine aborted",
				"routine", r.Name, "doc", label, "error", panicErr)
			failed++
			continue
		}

		if routineErr != nil {
			e.failures = append(e.failures, routineErr.Error())
			e.log.Warn("extraction routine failed",
				"routine", r.Name, "doc", label, "error", routineErr)
			failed++
			continue
		}

		e.log.Info("extraction routine ok", "routine", r.Name, "doc", label)
	}
	return failed
}

// Extract is the navigate-then-run-all composition. Routine failures
// do not produce an error; inspect Failures and Data afterwards.
func (e *Extractor) Extract(address string) error {
	if err := e.Navigate(address); err != nil {
		return err
	}
	e.RunAll()
	return nil
}

// Close releases the session and drops the handle. A later Navigate
// re-acquires one through the factory.
func (e *Extractor) Close() error {
	if e.session == nil {
		return nil
	}
	err := e.session.Close()
	e.session = nil
	return err
}
