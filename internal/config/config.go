package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"sync"
)

const (
	DefaultStartingScore = 501
	MinStartingScore     = 101
	MaxStartingScore     = 1001
)

// Env keys read from the Nakama runtime environment.
const (
	EnvStartingScore = "x01_starting_score"
	EnvDoubleOut     = "x01_double_out"
	EnvTotalLegs     = "x01_total_legs"
	EnvRotateLead    = "x01_rotate_lead"
)

// Rules holds the house rules applied to new scoring sessions.
type Rules struct {
	StartingScore int  `json:"starting_score"`
	DoubleOut     bool `json:"double_out"`
	TotalLegs     int  `json:"total_legs"`
	// RotateLead hands the first throw of each new leg to the player after the previous winner.
	RotateLead bool `json:"rotate_lead"`
}

// DefaultRules returns 501, double-out, a single leg with a rotating lead.
func DefaultRules() Rules {
	return Rules{
		StartingScore: DefaultStartingScore,
		DoubleOut:     true,
		TotalLegs:     1,
		RotateLead:    true,
	}
}

var (
	rules    *Rules
	loadOnce sync.Once
	loadErr  error
)

// LoadRulesConfig loads the rules configuration from the given path.
func LoadRulesConfig(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read rules config: %w", err)
			return
		}
		r, err := ParseRules(data)
		if err != nil {
			loadErr = err
			return
		}
		rules = &r
	})
	return loadErr
}

// GetRules returns the loaded rules, or the defaults if nothing was loaded.
func GetRules() Rules {
	if rules == nil {
		return DefaultRules()
	}
	return *rules
}

// ParseRules decodes a JSON rules document over the defaults.
// Fields missing from the document keep their default values.
func ParseRules(data []byte) (Rules, error) {
	r := DefaultRules()
	if err := json.Unmarshal(data, &r); err != nil {
		return Rules{}, fmt.Errorf("failed to unmarshal rules config: %w", err)
	}
	return r.Normalize(), nil
}

// Normalize clamps the starting score into the supported range and
// guarantees at least one leg.
func (r Rules) Normalize() Rules {
	switch {
	case r.StartingScore <= 0:
		r.StartingScore = DefaultStartingScore
	case r.StartingScore < MinStartingScore:
		r.StartingScore = MinStartingScore
	case r.StartingScore > MaxStartingScore:
		r.StartingScore = MaxStartingScore
	}
	if r.TotalLegs < 1 {
		r.TotalLegs = 1
	}
	return r
}

// WithEnv overlays values from a runtime environment map. Unparseable
// values are skipped.
func (r Rules) WithEnv(env map[string]string) Rules {
	if v, ok := env[EnvStartingScore]; ok {
		if i, err := strconv.Atoi(v); err == nil {
			r.StartingScore = i
		}
	}
	if v, ok := env[EnvDoubleOut]; ok {
		if b, err := strconv.ParseBool(v); err == nil {
			r.DoubleOut = b
		}
	}
	if v, ok := env[EnvTotalLegs]; ok {
		if i, err := strconv.Atoi(v); err == nil {
			r.TotalLegs = i
		}
	}
	if v, ok := env[EnvRotateLead]; ok {
		if b, err := strconv.ParseBool(v); err == nil {
			r.RotateLead = b
		}
	}
	return r.Normalize()
}
