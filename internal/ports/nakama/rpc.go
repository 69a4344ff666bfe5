package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"dartscore/internal/config"
	"dartscore/internal/domain"

	"github.com/heroiclabs/nakama-common/runtime"
)

// EvaluateTurnRequest is the payload of RpcEvaluateTurn.
// DoubleOut defaults to the configured rules when omitted.
type EvaluateTurnRequest struct {
	Score     int            `json:"score"`
	Throws    []throwMessage `json:"throws"`
	DoubleOut *bool          `json:"double_out,omitempty"`
}

// CreateSessionRequest carries optional rule overrides for a new session.
// With Resume set, the caller's unfinished session is returned instead when
// one is still running.
type CreateSessionRequest struct {
	StartingScore *int  `json:"starting_score,omitempty"`
	DoubleOut     *bool `json:"double_out,omitempty"`
	TotalLegs     *int  `json:"total_legs,omitempty"`
	RotateLead    *bool `json:"rotate_lead,omitempty"`
	Resume        bool  `json:"resume,omitempty"`
}

// CreateSessionResponse is returned to clients after creating or resuming a session.
type CreateSessionResponse struct {
	MatchID string `json:"match_id"`
	IsNew   bool   `json:"is_new"`
}

// RegisterRPCs registers Nakama RPC endpoints.
func RegisterRPCs(initializer runtime.Initializer) error {
	if err := initializer.RegisterRpc(RpcEvaluateTurn, rpcEvaluateTurn); err != nil {
		return err
	}
	return initializer.RegisterRpc(RpcCreateSession, rpcCreateSession)
}

// rpcEvaluateTurn scores a visit without touching any session state.
func rpcEvaluateTurn(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	var req EvaluateTurnRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return "", runtime.NewError("invalid evaluate turn payload", rpcCodeInvalidArgument)
	}

	doubleOut := config.GetRules().DoubleOut
	if req.DoubleOut != nil {
		doubleOut = *req.DoubleOut
	}

	res, err := domain.EvaluateTurn(req.Score, throwsFromMessages(req.Throws), doubleOut)
	if err != nil {
		logger.Debug("rpcEvaluateTurn: Rejected visit: %v", err)
		return "", runtime.NewError(err.Error(), rpcCodeInvalidArgument)
	}

	b, err := json.Marshal(res)
	if err != nil {
		logger.Error("rpcEvaluateTurn: Failed to marshal result: %v", err)
		return "", runtime.NewError("internal error", rpcCodeInternal)
	}
	return string(b), nil
}

// rpcCreateSession creates a scorer session owned by the calling user.
func rpcCreateSession(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if userID == "" {
		return "", runtime.NewError("no user in context", rpcCodeUnauthenticated)
	}

	var req CreateSessionRequest
	if payload != "" {
		if err := json.Unmarshal([]byte(payload), &req); err != nil {
			return "", runtime.NewError("invalid create session payload", rpcCodeInvalidArgument)
		}
	}

	if req.Resume {
		matchID, err := findOwnedSession(ctx, nk, userID)
		if err != nil {
			logger.Error("rpcCreateSession [User:%s]: MatchList error: %v", userID, err)
			return "", err
		}
		if matchID != "" {
			logger.Info("rpcCreateSession [User:%s]: Resuming session %s", userID, matchID)
			b, _ := json.Marshal(CreateSessionResponse{MatchID: matchID, IsNew: false})
			return string(b), nil
		}
	}

	params := map[string]interface{}{"owner_id": userID}
	if req.StartingScore != nil {
		params["starting_score"] = *req.StartingScore
	}
	if req.DoubleOut != nil {
		params["double_out"] = *req.DoubleOut
	}
	if req.TotalLegs != nil {
		params["total_legs"] = *req.TotalLegs
	}
	if req.RotateLead != nil {
		params["rotate_lead"] = *req.RotateLead
	}

	matchID, err := nk.MatchCreate(ctx, MatchNameScorer, params)
	if err != nil {
		logger.Error("rpcCreateSession [User:%s]: MatchCreate error: %v", userID, err)
		return "", err
	}
	logger.Info("rpcCreateSession [User:%s]: Created session %s", userID, matchID)

	b, _ := json.Marshal(CreateSessionResponse{MatchID: matchID, IsNew: true})
	return string(b), nil
}

// findOwnedSession returns the id of a running, unfinished scorer session
// owned by userID, or "" if there is none.
func findOwnedSession(ctx context.Context, nk runtime.NakamaModule, userID string) (string, error) {
	query := fmt.Sprintf(`+label.game:x01 +label.owner:"%s" -label.phase:complete`, userID)

	limit := 1
	authoritative := true

	matches, err := nk.MatchList(ctx, limit, authoritative, "", nil, nil, query)
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", nil
	}
	return matches[0].MatchId, nil
}
