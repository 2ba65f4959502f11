// Package admin is the shared debug/metrics surface exposed by both
// cmd/coopsort and cmd/ufsadmin: a Prometheus scrape endpoint plus a
// lightweight JSON state dump, grounded on aistore's convention of every
// daemon exposing HTTP debug/stats endpoints (stats/*, cmd/cli's
// performance.go scrapes them the same way).
package admin

import (
	"net"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"golang.org/x/sync/singleflight"

	"github.com/nechda/cooptools/cmn/nlog"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// StateFunc produces the current debug snapshot. Implementations are
// expected to be cheap-ish but not free (e.g. walking a file table); the
// server coalesces concurrent callers via singleflight rather than
// assuming the caller already debounces.
type StateFunc func() (any, error)

// Server exposes /metrics (Prometheus text format, across all registries
// passed to New) and /debug/state (JSON, from state).
type Server struct {
	ln     net.Listener
	srv    *fasthttp.Server
	state  StateFunc
	group  singleflight.Group
	regs   []*prometheus.Registry
	gather prometheus.Gatherer
}

// New builds a Server. regs may be empty (no /metrics data, but the
// endpoint still responds 200 with nothing registered) and state may be
// nil (disables /debug/state, returning 404).
func New(state StateFunc, regs ...*prometheus.Registry) *Server {
	gatherers := make(prometheus.Gatherers, len(regs))
	for i, r := range regs {
		gatherers[i] = r
	}
	s := &Server{state: state, regs: regs, gather: gatherers}
	s.srv = &fasthttp.Server{Handler: s.handler}
	return s
}

// Serve listens on addr (":0" for an ephemeral port, useful in tests) and
// blocks until the listener is closed.
func (s *Server) Serve(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "listen %s", addr)
	}
	s.ln = ln
	nlog.Infof("admin server listening on %s", ln.Addr())
	return s.srv.Serve(ln)
}

// Addr returns the listener's address; valid only after Serve has started.
func (s *Server) Addr() net.Addr {
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

func (s *Server) Close() error {
	return s.srv.Shutdown()
}

func (s *Server) handler(ctx *fasthttp.RequestCtx) {
	switch string(ctx.Path()) {
	case "/metrics":
		s.serveMetrics(ctx)
	case "/debug/state":
		s.serveState(ctx)
	default:
		ctx.SetStatusCode(fasthttp.StatusNotFound)
	}
}

// serveMetrics adapts promhttp's standard net/http handler onto fasthttp
// via fasthttpadaptor, rather than reimplementing Prometheus text-format
// exposition.
func (s *Server) serveMetrics(ctx *fasthttp.RequestCtx) {
	h := promhttp.HandlerFor(s.gather, promhttp.HandlerOpts{})
	fasthttpadaptor.NewFastHTTPHandler(h)(ctx)
}

func (s *Server) serveState(ctx *fasthttp.RequestCtx) {
	if s.state == nil {
		ctx.SetStatusCode(fasthttp.StatusNotFound)
		return
	}
	// concurrent scrapers collapse onto a single state computation;
	// a second request mid-flight gets the first one's result.
	v, err, _ := s.group.Do("state", func() (any, error) { return s.state() })
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		ctx.SetBodyString(err.Error())
		return
	}
	buf, err := jsonAPI.Marshal(v)
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		ctx.SetBodyString(err.Error())
		return
	}
	ctx.SetContentType("application/json")
	ctx.SetBody(buf)
}
