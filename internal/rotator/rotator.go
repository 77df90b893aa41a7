package rotator

import (
	"log/slog"
	"sync"
	"time"
)

const (
	// DefaultQuota is the GitHub core API hourly quota assumed after a reset
	DefaultQuota = 5000
	// ReserveRequests is the buffer kept unused before a token is blocked
	ReserveRequests = 10
	// MaxConsecutiveFailures blocks a token after this many failures in a row
	MaxConsecutiveFailures = 3
	// IdleBonusCap limits the idle-minutes bonus added to selection priority
	IdleBonusCap = 100
)

// State tracks quota and health for a single token
type State struct {
	Remaining           int
	ResetAt             time.Time
	LastUsed            time.Time
	Blocked             bool
	ConsecutiveFailures int
}

// TokenStatus is the masked per-token view exposed for monitoring
type TokenStatus struct {
	RemainingRequests   int    `json:"remaining_requests"`
	ResetTime           string `json:"reset_time,omitempty"`
	LastUsed            string `json:"last_used,omitempty"`
	IsBlocked           bool   `json:"is_blocked"`
	ConsecutiveFailures int    `json:"consecutive_failures"`
}

// Pool manages a set of GitHub tokens and picks the healthiest one per request
type Pool struct {
	mu     sync.Mutex
	tokens map[string]*State
	now    func() time.Time
}

// NewPool creates a pool from the given tokens, skipping blanks
func NewPool(tokens []string) *Pool {
	p := &Pool{
		tokens: make(map[string]*State),
		now:    time.Now,
	}

	for _, t := range tokens {
		if t == "" {
			continue
		}
		// ResetAt stays zero until the first response headers report it
		p.tokens[t] = &State{
			Remaining: DefaultQuota,
		}
	}

	if len(p.tokens) == 0 {
		slog.Warn("No GitHub tokens provided, rate limiting will be severe")
	} else {
		slog.Info("Token rotator initialized", "tokens", len(p.tokens))
	}

	return p
}

// Size returns the number of tokens in the pool
func (p *Pool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.tokens)
}

// Select returns the best available token, or "" when none is usable.
// Tokens whose reset window has passed are unblocked and restored first.
func (p *Pool) Select() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.tokens) == 0 {
		return ""
	}

	now := p.now()
	p.unblockExpiredLocked(now)

	var best string
	var bestState *State
	bestPriority := -1.0

	for token, state := range p.tokens {
		if state.Blocked {
			continue
		}

		priority := float64(state.Remaining)

		// Idle tokens get a small boost so usage spreads across the pool
		if !state.LastUsed.IsZero() {
			idleMinutes := now.Sub(state.LastUsed).Minutes()
			if idleMinutes > IdleBonusCap {
				idleMinutes = IdleBonusCap
			}
			priority += idleMinutes
		}

		if priority > bestPriority {
			bestPriority = priority
			best = token
			bestState = state
		}
	}

	if best == "" {
		slog.Warn("No available tokens, all are rate limited or blocked")
		return ""
	}

	bestState.LastUsed = now
	slog.Debug("Selected token", "token", mask(best), "remaining", bestState.Remaining)
	return best
}

// Record updates token state from response headers after an API request.
// remaining and resetUnix are nil when the corresponding header was absent.
func (p *Pool) Record(token string, remaining *int, resetUnix *int64, success bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	state, ok := p.tokens[token]
	if !ok {
		return
	}

	state.LastUsed = p.now()

	if success {
		state.ConsecutiveFailures = 0
	} else {
		state.ConsecutiveFailures++
		if state.ConsecutiveFailures >= MaxConsecutiveFailures {
			state.Blocked = true
			slog.Warn("Token blocked due to repeated failures", "token", mask(token))
		}
	}

	if remaining != nil {
		state.Remaining = *remaining
		if *remaining <= ReserveRequests {
			state.Blocked = true
			slog.Info("Token rate limited", "token", mask(token), "remaining", *remaining)
		}
	}

	if resetUnix != nil {
		state.ResetAt = time.Unix(*resetUnix, 0)
	}
}

// Capacity returns total remaining requests and count of unblocked tokens
func (p *Pool) Capacity() (int, int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	totalRemaining := 0
	unblocked := 0
	for _, state := range p.tokens {
		if !state.Blocked {
			totalRemaining += state.Remaining
			unblocked++
		}
	}
	return totalRemaining, unblocked
}

// EarliestReset returns the soonest reset time among blocked tokens
func (p *Pool) EarliestReset() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()

	var earliest time.Time
	for _, state := range p.tokens {
		if !state.Blocked || state.ResetAt.IsZero() {
			continue
		}
		if earliest.IsZero() || state.ResetAt.Before(earliest) {
			earliest = state.ResetAt
		}
	}
	return earliest
}

// Status returns masked per-token state for the observability endpoint
func (p *Pool) Status() map[string]TokenStatus {
	p.mu.Lock()
	defer p.mu.Unlock()

	status := make(map[string]TokenStatus, len(p.tokens))
	for token, state := range p.tokens {
		entry := TokenStatus{
			RemainingRequests:   state.Remaining,
			IsBlocked:           state.Blocked,
			ConsecutiveFailures: state.ConsecutiveFailures,
		}
		if !state.ResetAt.IsZero() {
			entry.ResetTime = state.ResetAt.Format(time.RFC3339)
		}
		if !state.LastUsed.IsZero() {
			entry.LastUsed = state.LastUsed.Format(time.RFC3339)
		}
		status[mask(token)] = entry
	}
	return status
}

// unblockExpiredLocked restores tokens whose reset window has passed.
// Caller must hold p.mu.
func (p *Pool) unblockExpiredLocked(now time.Time) {
	for token, state := range p.tokens {
		if !state.ResetAt.IsZero() && !now.Before(state.ResetAt) {
			if state.Blocked || state.Remaining < DefaultQuota {
				state.Blocked = false
				state.Remaining = DefaultQuota
				state.ConsecutiveFailures = 0
				state.ResetAt = now.Add(time.Hour)
				slog.Info("Rate limit reset for token", "token", mask(token))
			}
		}
	}
}

func mask(token string) string {
	if len(token) <= 4 {
		return "..." + token
	}
	return "..." + token[len(token)-4:]
}
