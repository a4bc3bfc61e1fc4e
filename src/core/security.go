package main

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// TPS random walk bounds for the simulated network telemetry.
const (
	tpsFloor   = 8
	tpsCeiling = 60
)

// SecurityMonitor owns the mock post-quantum security posture and the
// simulated network throughput. It ticks in the background, drifting the TPS
// reading every tick and occasionally asking the oracle to re-evaluate the
// protocol.
type SecurityMonitor struct {
	mu       sync.RWMutex
	protocol SecurityProtocol
	tps      int

	oracle   Oracle
	events   *LedgerEvents
	interval time.Duration
	rng      *rand.Rand

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewSecurityMonitor creates a monitor in the default boot posture.
func NewSecurityMonitor(oracle Oracle, events *LedgerEvents, interval time.Duration) *SecurityMonitor {
	return &SecurityMonitor{
		protocol: defaultSecurityProtocol(),
		tps:      tpsFloor + rand.Intn(tpsCeiling-tpsFloor),
		oracle:   oracle,
		events:   events,
		interval: interval,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the background loop.
func (m *SecurityMonitor) Start() {
	go m.loop()
	logger.Info("Security monitor started", "interval", m.interval)
}

// Stop halts the loop and waits for it to exit. Safe to call more than once.
func (m *SecurityMonitor) Stop() {
	m.stopOnce.Do(func() {
		close(m.stop)
		<-m.done
	})
}

func (m *SecurityMonitor) loop() {
	defer close(m.done)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.tick()
		}
	}
}

// tick drifts the TPS reading and, with low probability, runs an oracle
// security check. Oracle failures keep the previous posture.
func (m *SecurityMonitor) tick() {
	m.mu.Lock()
	m.tps += m.rng.Intn(11) - 5
	if m.tps < tpsFloor {
		m.tps = tpsFloor
	}
	if m.tps > tpsCeiling {
		m.tps = tpsCeiling
	}
	tps := m.tps
	current := m.protocol
	entropy := m.rng.Float64()
	runCheck := m.rng.Float64() < 0.05
	m.mu.Unlock()

	UpdateNetworkTPS(tps)

	if !runCheck {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), m.interval*10)
	defer cancel()

	next, err := m.oracle.MonitorSecurity(ctx, current, entropy)
	if err != nil {
		logger.Warn("Security check failed, keeping current posture", "error", err)
		return
	}

	m.mu.Lock()
	changed := next.Version != m.protocol.Version || next.ThreatLevel != m.protocol.ThreatLevel
	m.protocol = next
	m.mu.Unlock()

	if changed {
		logger.Info("Security protocol updated", "version", next.Version, "threatLevel", next.ThreatLevel)
		m.events.publishSecurityUpdated(next)
	}
}

// Protocol returns the current security posture.
func (m *SecurityMonitor) Protocol() SecurityProtocol {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.protocol
}

// TPS returns the current simulated throughput.
func (m *SecurityMonitor) TPS() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tps
}
