package manager_test

import (
	"bytes"
	"context"
	"os"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/Phillezi/apphost/pkg/cancel"
	"github.com/Phillezi/apphost/pkg/manager"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
)

// capturedLog collects funcr output lines.
type capturedLog struct {
	mu    sync.Mutex
	lines []string
}

func newCapturedLog() (*capturedLog, logr.Logger) {
	c := &capturedLog{}
	return c, funcr.New(func(prefix, args string) {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.lines = append(c.lines, prefix+" "+args)
	}, funcr.Options{Verbosity: 1})
}

func (c *capturedLog) Contains(msg string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, l := range c.lines {
		if strings.Contains(l, `"msg"="`+msg+`"`) {
			return true
		}
	}
	return false
}

func (c *capturedLog) Lines() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.lines...)
}

type safeBuffer struct {
	mu sync.Mutex
	b  *bytes.Buffer
}

func (s *safeBuffer) Write(p []byte) (n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Write(p)
}

func (s *safeBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.String()
}

var (
	_ manager.Manager = (*manager.InProcess)(nil)
	_ manager.Manager = (*manager.Signal)(nil)
)

func TestInProcess_StopReleasesWaiters(t *testing.T) {
	m := manager.NewInProcess()
	if !m.Running() {
		t.Fatal("expected new manager to be running")
	}

	before := m.Wait()
	go func() {
		time.Sleep(20 * time.Millisecond)
		m.Stop()
	}()

	select {
	case <-before:
	case <-time.After(200 * time.Millisecond):
		t.Fatal("waiter registered before stop was not released")
	}
	if m.Running() {
		t.Fatal("expected Running() to be false after Stop()")
	}

	select {
	case <-m.Wait():
	default:
		t.Fatal("waiter registered after stop must be released immediately")
	}

	select {
	case <-m.Context().Done():
	default:
		t.Fatal("context not cancelled after stop")
	}
}

func TestInProcess_StopIsIdempotent(t *testing.T) {
	m := manager.NewInProcess()
	var wg sync.WaitGroup
	for range 10 {
		wg.Go(m.Stop)
	}
	wg.Wait()
	m.Stop()

	if m.Running() {
		t.Fatal("expected manager to be stopped")
	}
}

func TestInProcess_SharedSignal(t *testing.T) {
	s := cancel.New()
	a := manager.NewInProcess(manager.WithSignal(s))
	b := manager.NewInProcess(manager.WithSignal(s))

	a.Stop()

	select {
	case <-b.Wait():
	case <-time.After(100 * time.Millisecond):
		t.Fatal("managers sharing a signal must stop together")
	}
}

func TestWaitForStop(t *testing.T) {
	m := manager.NewInProcess()

	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()
	if err := manager.WaitForStop(ctx, m); err != context.DeadlineExceeded {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}

	m.Stop()
	if err := manager.WaitForStop(t.Context(), m); err != nil {
		t.Fatalf("expected nil after stop, got %v", err)
	}
}

func TestSignal_StopsOnSignal(t *testing.T) {
	sigCh := make(chan os.Signal, 1)
	logs, logger := newCapturedLog()
	m := manager.NewSignal(manager.WithSignalChannel(sigCh), manager.WithLogger(logger))
	defer m.Close()

	sigCh <- syscall.SIGINT

	select {
	case <-m.Wait():
	case <-time.After(500 * time.Millisecond):
		t.Fatal("manager not stopped on signal")
	}
	if m.Running() {
		t.Fatal("expected Running() to be false")
	}

	m.Close()
	if !logs.Contains("received shutdown signal") {
		t.Fatalf("expected signal to be logged, got %v", logs.Lines())
	}
}

func TestSignal_ContextCancelledOnOSSignal(t *testing.T) {
	m := manager.NewSignal(manager.WithOnExit(func(code int) {
		t.Logf("exitcode: %d", code)
	}))
	defer m.Close()
	ctx := m.Context()

	go func() {
		time.Sleep(50 * time.Millisecond)
		t.Log("sending SIGTERM...")
		p, _ := os.FindProcess(os.Getpid())
		_ = p.Signal(syscall.SIGTERM)
	}()

	select {
	case <-ctx.Done():
		t.Log("context cancelled (expected)")
	case <-time.After(2 * time.Second):
		t.Fatal("context not cancelled on signal")
	}
}

func TestSignal_PromptOutput(t *testing.T) {
	buf := &safeBuffer{b: &bytes.Buffer{}}
	sigCh := make(chan os.Signal, 1)

	m := manager.NewSignal(
		manager.WithPrompt(true, buf),
		manager.WithSignalChannel(sigCh),
	)

	sigCh <- syscall.SIGINT
	<-m.Wait()
	m.Close() // ensure the listener is done before reading from buf

	out := buf.String()
	if out == "" {
		t.Fatal("expected prompt output, got none")
	}
	if want := "Press Ctrl+C"; !bytes.Contains([]byte(out), []byte(want)) {
		t.Fatalf("expected output to contain %q, got %q", want, out)
	}
}

func TestSignal_NoPromptOnProgrammaticStop(t *testing.T) {
	buf := &safeBuffer{b: &bytes.Buffer{}}
	m := manager.NewSignal(
		manager.WithPrompt(true, buf),
		manager.WithSignalChannel(make(chan os.Signal)),
	)

	m.Stop()
	time.Sleep(10 * time.Millisecond)
	m.Close()

	if out := buf.String(); out != "" {
		t.Fatalf("expected no prompt, got %q", out)
	}
}

func TestSignal_SecondSignalForcesExit(t *testing.T) {
	sigCh := make(chan os.Signal, 2)
	codes := make(chan int, 1)

	m := manager.NewSignal(
		manager.WithSignalChannel(sigCh),
		manager.WithOnExit(func(code int) { codes <- code }),
	)
	defer m.Close()

	sigCh <- syscall.SIGINT
	<-m.Wait()
	sigCh <- syscall.SIGINT

	select {
	case code := <-codes:
		if code != 1 {
			t.Fatalf("expected exit code 1, got %d", code)
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatal("second signal did not force exit")
	}
}

func TestSignal_FirstSignalAfterProgrammaticStopDoesNotExit(t *testing.T) {
	sigCh := make(chan os.Signal, 2)
	codes := make(chan int, 1)
	buf := &safeBuffer{b: &bytes.Buffer{}}
	logs, logger := newCapturedLog()

	m := manager.NewSignal(
		manager.WithSignalChannel(sigCh),
		manager.WithLogger(logger),
		manager.WithPrompt(true, buf),
		manager.WithOnExit(func(code int) { codes <- code }),
	)
	defer m.Close()

	m.Stop()
	// let the listener observe the programmatic stop first
	deadline := time.Now().Add(500 * time.Millisecond)
	for !logs.Contains("stopped programmatically") {
		if time.Now().After(deadline) {
			t.Fatal("listener did not observe the programmatic stop")
		}
		time.Sleep(time.Millisecond)
	}

	sigCh <- syscall.SIGINT
	select {
	case code := <-codes:
		t.Fatalf("a single signal after a programmatic stop forced exit with code %d", code)
	case <-time.After(100 * time.Millisecond):
	}
	if !logs.Contains("received shutdown signal") {
		t.Fatalf("expected the signal to be logged as the first one, got %v", logs.Lines())
	}
	if !strings.Contains(buf.String(), "Press Ctrl+C") {
		t.Fatalf("expected prompt after the first signal, got %q", buf.String())
	}

	sigCh <- syscall.SIGINT
	select {
	case code := <-codes:
		if code != 1 {
			t.Fatalf("expected exit code 1, got %d", code)
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatal("second signal did not force exit")
	}
}

func TestSignal_ClosedChannelStops(t *testing.T) {
	sigCh := make(chan os.Signal)
	m := manager.NewSignal(manager.WithSignalChannel(sigCh))
	defer m.Close()

	close(sigCh)

	select {
	case <-m.Wait():
	case <-time.After(200 * time.Millisecond):
		t.Fatal("closing the signal channel must stop the manager")
	}
}

func TestSignal_CloseDoesNotStop(t *testing.T) {
	m := manager.NewSignal(manager.WithSignalChannel(make(chan os.Signal)))
	if err := m.Close(); err != nil {
		t.Fatalf("Close() returned %v", err)
	}
	_ = m.Close() // should be safe

	if !m.Running() {
		t.Fatal("Close must not stop the application")
	}
}

func TestSignal_UsesNopLoggerByDefault(t *testing.T) {
	m := manager.NewSignal(manager.WithSignalChannel(make(chan os.Signal)))
	defer m.Close()
	if m == nil {
		t.Fatal("expected manager to be created")
	}
}
