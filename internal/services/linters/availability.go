package linters

import (
	"context"
	"os/exec"
	"regexp"
	"strings"
	"sync"
	"time"
)

const probeTimeout = 5 * time.Second

var versionPattern = regexp.MustCompile(`\d+\.\d+(\.\d+)?`)

type probeResult struct {
	available bool
	version   string
}

// prober checks whether linter executables are installed by running
// `exe --version`. Results are cached for the process lifetime; the
// installed tool set does not change under a running server.
type prober struct {
	mu      sync.Mutex
	results map[string]probeResult
}

func newProber() *prober {
	return &prober{results: make(map[string]probeResult)}
}

// Probe returns availability and the reported version for an executable
func (p *prober) Probe(ctx context.Context, executable string) (bool, string) {
	p.mu.Lock()
	if r, ok := p.results[executable]; ok {
		p.mu.Unlock()
		return r.available, r.version
	}
	p.mu.Unlock()

	r := p.run(ctx, executable)

	p.mu.Lock()
	p.results[executable] = r
	p.mu.Unlock()

	return r.available, r.version
}

func (p *prober) run(ctx context.Context, executable string) probeResult {
	if _, err := exec.LookPath(executable); err != nil {
		return probeResult{}
	}

	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	out, err := exec.CommandContext(probeCtx, executable, "--version").CombinedOutput()
	if err != nil {
		// On PATH but the probe failed; report available without a version
		return probeResult{available: true}
	}

	version := versionPattern.FindString(strings.TrimSpace(string(out)))
	return probeResult{available: true, version: version}
}

// Reset clears the probe cache
func (p *prober) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.results = make(map[string]probeResult)
}
