package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
)

type httpServer struct {
	srv *http.Server

	mu   sync.Mutex
	addr net.Addr
	errc chan error
}

// HTTPServer hosts srv. The listener is bound during OnStart so address
// errors fail the start phase. OnStop shuts the server down gracefully.
func HTTPServer(srv *http.Server) Service {
	return &httpServer{srv: srv}
}

func (h *httpServer) Name() string {
	return "http-server " + h.srv.Addr
}

// Addr returns the bound address once started.
func (h *httpServer) Addr() net.Addr {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.addr
}

func (h *httpServer) OnStart(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", h.srv.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", h.srv.Addr, err)
	}

	h.mu.Lock()
	h.addr = ln.Addr()
	h.errc = make(chan error, 1)
	errc := h.errc
	h.mu.Unlock()

	go func() {
		if err := h.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()
	return nil
}

func (h *httpServer) OnStop(ctx context.Context) error {
	h.mu.Lock()
	errc := h.errc
	h.mu.Unlock()
	if errc == nil {
		return ErrNotStarted
	}

	if err := h.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown %s: %w", h.srv.Addr, err)
	}
	return <-errc
}
