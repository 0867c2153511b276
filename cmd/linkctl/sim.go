package main

import (
	"fmt"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/danmuck/linkctl/internal/config"
	"github.com/danmuck/linkctl/internal/link"
	"github.com/danmuck/linkctl/internal/network"
	"github.com/danmuck/linkctl/internal/observability"
	"github.com/danmuck/linkctl/internal/transport"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

const (
	alphaAddr uint32 = 1
	betaAddr  uint32 = 2

	// Extra ticks after the last unacknowledged send so in-flight
	// frames can drain before an unreliable run reports its tally.
	drainTicks = 50
)

// simulator drives two link endpoints over a lossy in-memory pipe:
// alpha offers a scripted sequence of messages, beta fields them. With
// use_hosts enabled both endpoints sit under network hosts and the
// messages travel as addressed packets.
type simulator struct {
	cfg    simConfig
	logger zerolog.Logger

	alpha    *link.Link
	beta     *link.Link
	alphaEnd *transport.Endpoint
	betaEnd  *transport.Endpoint

	alphaHost *network.Host
	betaHost  *network.Host

	mu        sync.Mutex
	started   time.Time
	offered   int
	delivered []string
}

func newSimulator(cfg simConfig) (*simulator, error) {
	logger := observability.InitLogger("linkctl")
	observability.RegisterMetrics()

	linkCfg, err := config.ToLink(cfg.Link)
	if err != nil {
		return nil, err
	}

	s := &simulator{cfg: cfg, logger: logger}

	alphaEnd, betaEnd := transport.Pair()
	plan := transport.FaultPlan{DropRate: cfg.DropRate, CorruptRate: cfg.CorruptRate}
	alphaEnd.SetFaults(plan, rand.New(rand.NewSource(cfg.FaultSeed)))
	betaEnd.SetFaults(plan, rand.New(rand.NewSource(cfg.FaultSeed+1)))
	s.alphaEnd, s.betaEnd = alphaEnd, betaEnd

	alphaClient := link.ClientFunc(func(p []byte) { s.record(p) })
	betaClient := link.ClientFunc(func(p []byte) { s.record(p) })
	if cfg.UseHosts {
		alphaClient = func(p []byte) { s.alphaHost.Receive(p) }
		betaClient = func(p []byte) { s.betaHost.Receive(p) }
	}

	s.alpha, err = link.New(linkCfg, alphaEnd, alphaClient,
		link.WithEvents(observability.NewMeteredEvents("alpha", observability.NewLogEvents(logger, "alpha"))))
	if err != nil {
		return nil, err
	}
	s.beta, err = link.New(linkCfg, betaEnd, betaClient,
		link.WithEvents(observability.NewMeteredEvents("beta", observability.NewLogEvents(logger, "beta"))))
	if err != nil {
		return nil, err
	}
	alphaEnd.Bind(s.alpha.Receive)
	betaEnd.Bind(s.beta.Receive)

	if cfg.UseHosts {
		s.alphaHost, err = network.NewHost(alphaAddr, []network.Sender{s.alpha},
			randomChooser(cfg.FaultSeed+2), hostClient{s}, logger)
		if err != nil {
			return nil, err
		}
		s.betaHost, err = network.NewHost(betaAddr, []network.Sender{s.beta},
			randomChooser(cfg.FaultSeed+3), hostClient{s}, logger)
		if err != nil {
			return nil, err
		}
	}

	logger.Info().
		Str("link", config.Describe(cfg.Link)).
		Float64("drop_rate", cfg.DropRate).
		Float64("corrupt_rate", cfg.CorruptRate).
		Int64("fault_seed", cfg.FaultSeed).
		Bool("hosts", cfg.UseHosts).
		Msg("simulator configured")
	return s, nil
}

// randomChooser spreads outbound packets across links uniformly. Link
// selection policy belongs to the caller, so it lives here and not in
// the network package.
func randomChooser(seed int64) network.Chooser {
	rng := rand.New(rand.NewSource(seed))
	return network.ChooserFunc(func(_ uint32, numLinks int) int {
		return rng.Intn(numLinks)
	})
}

// hostClient records host-level deliveries back into the simulator.
type hostClient struct{ s *simulator }

func (h hostClient) Receive(data []byte) { h.s.record(data) }

func (s *simulator) record(p []byte) {
	s.mu.Lock()
	s.delivered = append(s.delivered, string(p))
	s.mu.Unlock()
}

func (s *simulator) deliveredCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.delivered)
}

// offer hands the next scripted message to alpha. Reliable links
// refuse while a frame is outstanding; the message is re-offered on a
// later tick.
func (s *simulator) offer(msg []byte) bool {
	if s.cfg.UseHosts {
		accepted, err := s.alphaHost.Send(betaAddr, msg)
		if err != nil {
			s.logger.Error().Err(err).Msg("host send failed")
			return false
		}
		return accepted
	}
	return s.alpha.Send(msg)
}

// Run executes the scripted conversation until every message is
// delivered, or the drain window closes, or the run limit elapses.
func (s *simulator) Run() error {
	s.mu.Lock()
	s.started = time.Now()
	s.mu.Unlock()

	if s.cfg.DebugListenAddr != "" {
		go func() {
			if err := s.serveDebug(); err != nil {
				s.logger.Error().Err(err).Msg("debug server exited")
			}
		}()
	}

	ticker := time.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()
	deadline := time.Now().Add(s.cfg.RunLimit)
	drain := drainTicks

	for range ticker.C {
		s.mu.Lock()
		offered := s.offered
		s.mu.Unlock()

		if offered < s.cfg.MessageCount {
			msg := fmt.Sprintf("%s %d", s.cfg.MessagePrefix, offered)
			if s.offer([]byte(msg)) {
				s.mu.Lock()
				s.offered++
				s.mu.Unlock()
			}
		}

		s.alpha.Poll()
		s.beta.Poll()

		done := s.deliveredCount() >= s.cfg.MessageCount
		if !done && offered >= s.cfg.MessageCount && !s.alpha.Busy() {
			// Everything offered and nothing outstanding; give the
			// pipe a bounded window to flush, then settle.
			drain--
			done = drain <= 0
		}
		if done || time.Now().After(deadline) {
			break
		}
	}

	return s.report()
}

func (s *simulator) report() error {
	s.mu.Lock()
	offered := s.offered
	delivered := len(s.delivered)
	elapsed := time.Since(s.started)
	s.mu.Unlock()

	sent, dropped, corrupted := s.alphaEnd.Stats()
	bSent, bDropped, bCorrupted := s.betaEnd.Stats()
	s.logger.Info().
		Int("offered", offered).
		Int("delivered", delivered).
		Dur("elapsed", elapsed).
		Int("alpha_frames", sent).
		Int("alpha_dropped", dropped).
		Int("alpha_corrupted", corrupted).
		Int("beta_frames", bSent).
		Int("beta_dropped", bDropped).
		Int("beta_corrupted", bCorrupted).
		Msg("run complete")

	if delivered < offered {
		return fmt.Errorf("delivered %d of %d offered messages within %s", delivered, offered, s.cfg.RunLimit)
	}
	return nil
}

func (s *simulator) serveDebug() error {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(s.logger))
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	r.GET("/health", func(c *gin.Context) {
		s.mu.Lock()
		uptime := time.Since(s.started).String()
		s.mu.Unlock()
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  uptime,
			"service": "linkctl",
			"version": "0.0.1",
		})
	})

	r.GET("/status", func(c *gin.Context) {
		s.mu.Lock()
		offered := s.offered
		delivered := len(s.delivered)
		s.mu.Unlock()
		sent, dropped, corrupted := s.alphaEnd.Stats()
		c.JSON(http.StatusOK, gin.H{
			"offered":         offered,
			"delivered":       delivered,
			"alpha_busy":      s.alpha.Busy(),
			"beta_busy":       s.beta.Busy(),
			"alpha_frames":    sent,
			"alpha_dropped":   dropped,
			"alpha_corrupted": corrupted,
		})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r.Run(s.cfg.DebugListenAddr)
}
