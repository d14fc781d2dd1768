package extractor

import (
	"errors"
	"strings"
	"testing"

	"github.com/use-agent/pagelift/browser"
	"github.com/use-agent/pagelift/models"
)

type fakeSession struct {
	navErr   error
	navCount int
	lastURL  string
	closed   bool
	html     string
}

func (f *fakeSession) Navigate(url string) error {
	f.navCount++
	f.lastURL = url
	return f.navErr
}

func (f *fakeSession) TextX(string) (string, error) {
	return "", errors.New("cannot find element")
}

func (f *fakeSession) AttributeX(string, string) (string, error) {
	return "", errors.New("cannot find element")
}

func (f *fakeSession) HTML() (string, error) { return f.html, nil }

func (f *fakeSession) Eval(string) (string, error) { return "", nil }

func (f *fakeSession) Close() error {
	f.closed = true
	return nil
}

func TestRunAll_EveryRoutineRunsOnce(t *testing.T) {
	e := New(Options{Session: &fakeSession{}})

	calls := make([]int, 3)
	e.Add(
		Routine{Name: "a", Fn: func() error { calls[0]++; return errors.New("a failed") }},
		Routine{Name: "b", Fn: func() error { calls[1]++; panic("boom") }},
		Routine{Name: "c", Fn: func() error { calls[2]++; return nil }},
	)

	failed := e.RunAll()
	if failed != 2 {
		t.Errorf("expected 2 failures, got %d", failed)
	}
	for i, n := range calls {
		if n != 1 {
			t.Errorf("routine %d ran %d times, want exactly 1", i, n)
		}
	}
}

func TestRunAll_SuccessAndFailureAggregation(t *testing.T) {
	e := New(Options{Session: &fakeSession{}})
	e.Add(
		Routine{Name: "title", Fn: func() error {
			e.Set("title", "Book A")
			return nil
		}},
		Routine{Name: "cover", Fn: func() error {
			return errors.New("Cover url not found.")
		}},
	)

	e.RunAll()

	if got := e.Data()["title"]; got != "Book A" {
		t.Errorf("title = %q, want %q", got, "Book A")
	}
	if _, ok := e.Data()["cover_url"]; ok {
		t.Error("failed routine must not leave a value in the result map")
	}
	failures := e.Failures()
	if len(failures) != 1 || failures[0] != "Cover url not found." {
		t.Errorf("failures = %v, want exactly [Cover url not found.]", failures)
	}
}

func TestRunAll_PanicIsIsolatedAndSynthesized(t *testing.T) {
	e := New(Options{Session: &fakeSession{}})
	ran := false
	e.Add(
		Routine{Name: "explode", Doc: "parses something fragile", Fn: func() error {
			panic("driver went away")
		}},
		Routine{Name: "after", Fn: func() error { ran = true; return nil }},
	)

	failed := e.RunAll() // must not panic out
	if failed != 1 {
		t.Errorf("expected 1 failure, got %d", failed)
	}
	if !ran {
		t.Error("routine after the panicking one did not run")
	}
	failures := e.Failures()
	if len(failures) != 1 {
		t.Fatalf("failures = %v, want exactly one entry", failures)
	}
	// The synthesized entry identifies the routine by its doc string.
	if want := "parses something fragile"; !strings.Contains(failures[0], want) {
		t.Errorf("synthesized failure %q does not identify the routine by %q", failures[0], want)
	}
}

func TestNavigate_ResetsCycleState(t *testing.T) {
	s := &fakeSession{}
	e := New(Options{Session: s})
	e.Add(Routine{Name: "fail", Fn: func() error { return errors.New("nope") }})

	if err := e.Navigate("https://example.com/1"); err != nil {
		t.Fatalf("navigate: %v", err)
	}
	e.Set("stale", "value")
	e.RunAll()
	if len(e.Failures()) != 1 {
		t.Fatalf("failures = %v, want one entry", e.Failures())
	}

	if err := e.Navigate("https://example.com/2"); err != nil {
		t.Fatalf("navigate: %v", err)
	}
	if len(e.Failures()) != 0 {
		t.Errorf("failure list not reset by navigation: %v", e.Failures())
	}
	if len(e.Data()) != 0 {
		t.Errorf("result map not reset by navigation: %v", e.Data())
	}
	if e.Address() != "https://example.com/2" {
		t.Errorf("address = %q", e.Address())
	}
}

func TestNavigate_SessionAcquisitionFailureIsFatal(t *testing.T) {
	e := New(Options{Factory: func() (browser.Session, error) {
		return nil, errors.New("chrome not installed")
	}})

	err := e.Navigate("https://example.com")
	if err == nil {
		t.Fatal("expected error")
	}
	var xerr *models.ExtractError
	if !errors.As(err, &xerr) || xerr.Code != models.ErrCodeSession {
		t.Errorf("error = %v, want code %s", err, models.ErrCodeSession)
	}
}

func TestExtract_NavigationFailureSkipsRoutines(t *testing.T) {
	s := &fakeSession{navErr: errors.New("dns error")}
	ran := false
	e := New(Options{Session: s})
	e.Add(Routine{Name: "never", Fn: func() error { ran = true; return nil }})

	err := e.Extract("http://unreachable.invalid")
	if err == nil {
		t.Fatal("expected navigation error")
	}
	var xerr *models.ExtractError
	if !errors.As(err, &xerr) || xerr.Code != models.ErrCodeNavigation {
		t.Errorf("error = %v, want code %s", err, models.ErrCodeNavigation)
	}
	if ran {
		t.Error("routines must not run when navigation fails")
	}
}

func TestExtract_LazySessionAcquisition(t *testing.T) {
	s := &fakeSession{}
	acquired := 0
	e := New(Options{Factory: func() (browser.Session, error) {
		acquired++
		return s, nil
	}})

	if e.Session() != nil {
		t.Fatal("session must not be acquired before first navigation")
	}
	if err := e.Extract("https://example.com"); err != nil {
		t.Fatalf("extract: %v", err)
	}
	if acquired != 1 {
		t.Errorf("factory called %d times, want 1", acquired)
	}

	// Close drops the handle; the next navigation re-acquires.
	if err := e.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !s.closed {
		t.Error("session was not closed")
	}
	if err := e.Navigate("https://example.com/again"); err != nil {
		t.Fatalf("navigate: %v", err)
	}
	if acquired != 2 {
		t.Errorf("factory called %d times after re-navigation, want 2", acquired)
	}
}

func TestFromAddress_ClosesSessionOnFatalError(t *testing.T) {
	s := &fakeSession{navErr: errors.New("tls handshake failed")}
	_, err := FromAddress("https://example.com", Options{Session: s})
	if err == nil {
		t.Fatal("expected error")
	}
	if !s.closed {
		t.Error("session leaked after fatal construction error")
	}
}
