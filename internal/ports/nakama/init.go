package nakama

import (
	"context"
	"database/sql"

	"dartscore/internal/config"

	"github.com/heroiclabs/nakama-common/runtime"
)

// InitModule wires RPCs and match handlers for Nakama runtime.
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	if err := config.LoadRulesConfig(RulesConfigPath); err != nil {
		logger.Warn("InitModule: Could not load rules config, using defaults: %v", err)
	}

	if err := RegisterRPCs(initializer); err != nil {
		return err
	}

	if err := initializer.RegisterMatch(MatchNameScorer, NewMatch); err != nil {
		return err
	}

	logger.Info("X01 scorer Go module loaded.")
	return nil
}
