package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"dartscore/internal/app"
	"dartscore/internal/config"
	"dartscore/internal/domain"
	"dartscore/internal/ports"

	"github.com/google/uuid"
	"github.com/heroiclabs/nakama-common/runtime"
)

const (
	tickRate = 1
	// reconnectGraceTicks is how long a session survives without its owner.
	reconnectGraceTicks = 120
	maxGuestNameLength  = 32
)

// MatchState holds the authoritative runtime state of a scorer session.
// A session is driven by one device: the owner's presence.
type MatchState struct {
	OwnerID string
	// Presence is the owner's presence, nil while disconnected.
	Presence runtime.Presence
	Rules    config.Rules
	// Roster lists players in turn order for the next match or leg.
	Roster []domain.RosterEntry
	// Match is nil while in the lobby.
	Match *domain.Match
	Tick  int64
	// DetachedSinceTick is the first tick seen without an owner presence,
	// 0 while attached.
	DetachedSinceTick int64

	App      *app.Service
	Archive  ports.LegArchive
	Accounts ports.AccountPort
}

// Phase returns "lobby", "playing" or "complete".
func (ms *MatchState) Phase() string {
	switch {
	case ms.Match == nil:
		return "lobby"
	case ms.Match.Complete:
		return "complete"
	default:
		return "playing"
	}
}

// rosterEditable reports whether players may be added or removed: in the
// lobby, between legs, or once the match is complete.
func (ms *MatchState) rosterEditable() bool {
	return ms.Match == nil || ms.Match.Complete || ms.Match.CurrentLeg == nil || ms.Match.CurrentLeg.Finished
}

// LabelPayload is the advertised match label.
type LabelPayload struct {
	Open  bool   `json:"open"`
	Game  string `json:"game"`
	Phase string `json:"phase"`
	Owner string `json:"owner"`
}

// ComputeLabel derives the advertised label from match state.
func ComputeLabel(s *MatchState) LabelPayload {
	return LabelPayload{Open: s.OwnerID == "", Game: "x01", Phase: s.Phase(), Owner: s.OwnerID}
}

// NewMatch is the factory function registered with Nakama.
func NewMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
	return &matchHandler{}, nil
}

type matchHandler struct{}

var _ runtime.Match = (*matchHandler)(nil)

type addGuestRequest struct {
	Name string `json:"name"`
}

type removePlayerRequest struct {
	ID string `json:"id"`
}

type submitVisitRequest struct {
	Throws []throwMessage `json:"throws"`
}

type nextLegRequest struct {
	StartingScore int `json:"starting_score"`
}

// MatchInit is called when the match is created.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	logger.Debug("MatchInit: Initializing scorer session.")

	rules := config.GetRules()
	if env, ok := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string); ok {
		rules = rules.WithEnv(env)
	}
	rules = rulesFromParams(rules, params)

	lead := app.LeadRotate
	if !rules.RotateLead {
		lead = app.LeadFixed
	}

	state := &MatchState{
		Rules:    rules,
		App:      app.NewService(lead),
		Archive:  NewNakamaLegArchive(nk),
		Accounts: NewNakamaAccountAdapter(nk),
	}
	if owner, ok := params["owner_id"].(string); ok {
		state.OwnerID = owner
	}

	label, err := encodeLabel(state)
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}

	logger.Info("MatchInit: Session rules start=%d double_out=%t legs=%d rotate=%t",
		rules.StartingScore, rules.DoubleOut, rules.TotalLegs, rules.RotateLead)
	return state, tickRate, label
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}

	userID := presence.GetUserId()
	switch {
	case matchState.OwnerID == "":
		return matchState, true, ""
	case matchState.OwnerID != userID:
		return matchState, false, "scorer session belongs to another user"
	case matchState.Presence != nil:
		return matchState, false, "scorer session already attached"
	}
	return matchState, true, ""
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		if matchState.OwnerID == "" {
			matchState.OwnerID = p.GetUserId()
		}
		if p.GetUserId() != matchState.OwnerID {
			logger.Warn("MatchJoin: Ignoring non-owner presence %s.", p.GetUserId())
			continue
		}
		matchState.Presence = p
		matchState.DetachedSinceTick = 0
		logger.Debug("MatchJoin: Owner %s attached.", p.GetUserId())

		if matchState.Match == nil && !rosterHas(matchState.Roster, p.GetUserId()) {
			name := p.GetUsername()
			if matchState.Accounts != nil {
				if dn, err := matchState.Accounts.DisplayName(ctx, p.GetUserId()); err != nil {
					logger.Warn("MatchJoin: Could not resolve display name for %s: %v", p.GetUserId(), err)
				} else if dn != "" {
					name = dn
				}
			}
			matchState.Roster = append(matchState.Roster, domain.RosterEntry{ID: p.GetUserId(), DisplayName: name})
		}
	}

	mh.updateLabel(matchState, dispatcher, logger)
	mh.broadcastMatchState(matchState, dispatcher, logger)

	return matchState
}

// MatchLeave is called when the owner disconnects.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		if p.GetUserId() == matchState.OwnerID {
			matchState.Presence = nil
			matchState.DetachedSinceTick = tick
			logger.Debug("MatchLeave: Owner %s detached at tick %d.", p.GetUserId(), tick)
		}
	}
	return matchState
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}

	matchState.Tick = tick

	// Sessions the owner never attached to expire like abandoned ones.
	if matchState.Presence == nil {
		if matchState.DetachedSinceTick == 0 {
			matchState.DetachedSinceTick = tick
		} else if tick-matchState.DetachedSinceTick >= reconnectGraceTicks {
			logger.Info("MatchLoop: Terminating session abandoned by %q.", matchState.OwnerID)
			return nil
		}
	}

	for _, msg := range messages {
		if msg.GetUserId() != matchState.OwnerID {
			logger.Warn("MatchLoop: Dropping opcode %d from non-owner %s", msg.GetOpCode(), msg.GetUserId())
			continue
		}
		switch msg.GetOpCode() {
		case OpAddGuest:
			mh.handleAddGuest(matchState, dispatcher, logger, msg)
		case OpRemovePlayer:
			mh.handleRemovePlayer(matchState, dispatcher, logger, msg)
		case OpStartMatch:
			mh.handleStartMatch(matchState, dispatcher, logger)
		case OpSubmitVisit:
			mh.handleSubmitVisit(ctx, matchState, dispatcher, logger, msg)
		case OpNextLeg:
			mh.handleNextLeg(matchState, dispatcher, logger, msg)
		default:
			logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
		}
	}

	return matchState
}

func (mh *matchHandler) handleAddGuest(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	if !state.rosterEditable() {
		mh.sendError(state, dispatcher, logger, ErrCodeConflict, "roster is locked while a leg is in progress")
		return
	}
	var req addGuestRequest
	if err := json.Unmarshal(msg.GetData(), &req); err != nil {
		mh.sendError(state, dispatcher, logger, ErrCodeBadRequest, "invalid add guest payload")
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" || len(name) > maxGuestNameLength {
		mh.sendError(state, dispatcher, logger, ErrCodeBadRequest, "guest name must be 1-32 characters")
		return
	}
	if len(state.Roster) >= app.MaxPlayersPerMatch {
		mh.sendError(state, dispatcher, logger, ErrCodeConflict, "roster is full")
		return
	}

	guest := domain.RosterEntry{ID: uuid.NewString(), DisplayName: name}
	state.Roster = append(state.Roster, guest)
	logger.Debug("handleAddGuest: Added guest %s (%s).", guest.DisplayName, guest.ID)
	mh.broadcastMatchState(state, dispatcher, logger)
}

func (mh *matchHandler) handleRemovePlayer(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	if !state.rosterEditable() {
		mh.sendError(state, dispatcher, logger, ErrCodeConflict, "roster is locked while a leg is in progress")
		return
	}
	var req removePlayerRequest
	if err := json.Unmarshal(msg.GetData(), &req); err != nil {
		mh.sendError(state, dispatcher, logger, ErrCodeBadRequest, "invalid remove player payload")
		return
	}
	for i, r := range state.Roster {
		if r.ID == req.ID {
			state.Roster = append(state.Roster[:i:i], state.Roster[i+1:]...)
			mh.broadcastMatchState(state, dispatcher, logger)
			return
		}
	}
	mh.sendError(state, dispatcher, logger, ErrCodeBadRequest, "player not in roster")
}

func (mh *matchHandler) handleStartMatch(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	if state.Match != nil && !state.Match.Complete {
		mh.sendError(state, dispatcher, logger, ErrCodeConflict, "match already running")
		return
	}
	if len(state.Roster) < app.MinPlayersToStartMatch {
		mh.sendError(state, dispatcher, logger, ErrCodeBadRequest, "not enough players to start")
		return
	}

	match, events, err := state.App.CreateMatch(state.Rules.StartingScore, state.Roster, state.Rules.TotalLegs)
	if err != nil {
		logger.Warn("handleStartMatch: Failed to create match: %v", err)
		mh.sendError(state, dispatcher, logger, errorCode(err), err.Error())
		return
	}
	state.Match = match
	logger.Info("handleStartMatch: Started %d-leg match from %d with %d players.", match.TotalLegs, state.Rules.StartingScore, len(state.Roster))

	for _, ev := range events {
		mh.broadcastEvent(state, dispatcher, logger, ev)
	}
	mh.updateLabel(state, dispatcher, logger)
	mh.broadcastMatchState(state, dispatcher, logger)
}

func (mh *matchHandler) handleSubmitVisit(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	if state.Match == nil {
		mh.sendError(state, dispatcher, logger, ErrCodeConflict, "match not started")
		return
	}
	if state.Match.Complete {
		mh.sendError(state, dispatcher, logger, ErrCodeConflict, "match is complete")
		return
	}
	var req submitVisitRequest
	if err := json.Unmarshal(msg.GetData(), &req); err != nil {
		mh.sendError(state, dispatcher, logger, ErrCodeBadRequest, "invalid visit payload")
		return
	}

	leg := state.Match.CurrentLeg
	outcome, events, err := state.App.PlayVisit(leg, throwsFromMessages(req.Throws), state.Rules.DoubleOut)
	if err != nil {
		logger.Warn("handleSubmitVisit: Rejected visit: %v", err)
		mh.sendError(state, dispatcher, logger, errorCode(err), err.Error())
		return
	}
	if outcome.Stale {
		logger.Debug("handleSubmitVisit: Ignoring visit on leg already won by %s.", outcome.WinnerID)
		mh.broadcastMatchState(state, dispatcher, logger)
		return
	}

	for _, ev := range events {
		mh.broadcastEvent(state, dispatcher, logger, ev)
	}

	if outcome.LegEnded && state.Archive != nil {
		rec := ports.LegRecord{
			SessionID: matchIDFromContext(ctx),
			OwnerID:   state.OwnerID,
			// Legs are numbered by play order; CurrentLegNumber stops at the planned total.
			LegNumber: state.Match.LegsPlayed + 1,
			DoubleOut: state.Rules.DoubleOut,
			Leg:       leg,
		}
		if err := state.Archive.RecordLeg(ctx, rec); err != nil {
			logger.Error("handleSubmitVisit: Failed to archive leg %d: %v", rec.LegNumber, err)
		}
	}

	mh.broadcastMatchState(state, dispatcher, logger)
}

func (mh *matchHandler) handleNextLeg(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	if state.Match == nil {
		mh.sendError(state, dispatcher, logger, ErrCodeConflict, "match not started")
		return
	}
	if state.Match.Complete {
		mh.sendError(state, dispatcher, logger, ErrCodeConflict, "match is complete")
		return
	}
	var req nextLegRequest
	if data := msg.GetData(); len(data) > 0 {
		if err := json.Unmarshal(data, &req); err != nil {
			mh.sendError(state, dispatcher, logger, ErrCodeBadRequest, "invalid next leg payload")
			return
		}
	}
	if req.StartingScore < 0 {
		mh.sendError(state, dispatcher, logger, ErrCodeBadRequest, "starting score must not be negative")
		return
	}
	if req.StartingScore != 0 {
		req.StartingScore = config.Rules{StartingScore: req.StartingScore}.Normalize().StartingScore
	}

	events, err := state.App.AdvanceToNextLeg(state.Match, state.Roster, req.StartingScore)
	if err != nil {
		logger.Warn("handleNextLeg: Failed to advance: %v", err)
		mh.sendError(state, dispatcher, logger, errorCode(err), err.Error())
		return
	}

	for _, ev := range events {
		mh.broadcastEvent(state, dispatcher, logger, ev)
	}
	mh.updateLabel(state, dispatcher, logger)
	mh.broadcastMatchState(state, dispatcher, logger)
}

// broadcastMatchState sends the full session snapshot to the owner.
func (mh *matchHandler) broadcastMatchState(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	snapshot := map[string]interface{}{
		"phase": state.Phase(),
		"tick":  state.Tick,
		"rules": map[string]interface{}{
			"starting_score": state.Rules.StartingScore,
			"double_out":     state.Rules.DoubleOut,
			"total_legs":     state.Rules.TotalLegs,
			"rotate_lead":    state.Rules.RotateLead,
		},
		"roster": rosterToList(state.Roster),
	}
	if state.Match != nil {
		snapshot["match"] = matchToMap(state.Match, state.Rules.DoubleOut)
	}

	bytes, err := encodeStruct(snapshot)
	if err != nil {
		logger.Error("broadcastMatchState: Failed to marshal snapshot: %v", err)
		return
	}
	mh.send(state, dispatcher, logger, OpState, bytes)
}

// broadcastEvent handles the conversion and dispatching of app events to Nakama.
func (mh *matchHandler) broadcastEvent(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, ev app.Event) {
	var opCode int64
	var payload map[string]interface{}

	switch ev.Kind {
	case app.EventLegStarted:
		opCode = OpLegStarted
		p := ev.Payload.(app.LegStartedPayload)
		payload = map[string]interface{}{
			"leg_number":     p.LegNumber,
			"starting_score": p.StartingScore,
			"turn_order":     stringsToList(p.TurnOrder),
		}
	case app.EventVisitScored, app.EventVisitBust:
		opCode = OpVisitPlayed
		p := ev.Payload.(app.VisitPayload)
		payload = map[string]interface{}{
			"player_id":       p.PlayerID,
			"throws":          throwsToList(p.Throws),
			"result":          turnResultToMap(p.Result),
			"next_thrower_id": p.NextThrowerID,
			"remaining":       p.RemainingAfter,
		}
	case app.EventLegWon:
		opCode = OpLegWon
		p := ev.Payload.(app.LegWonPayload)
		payload = map[string]interface{}{
			"winner_id":       p.WinnerID,
			"checkout_points": p.CheckoutPoints,
			"darts_thrown":    p.DartsThrown,
		}
	case app.EventMatchCompleted:
		opCode = OpMatchCompleted
		p := ev.Payload.(app.MatchCompletedPayload)
		payload = map[string]interface{}{
			"winner_id": p.WinnerID,
			"legs_won":  tallyToMap(p.LegsWon),
		}
		logger.Info("broadcastEvent: Match complete, winner=%q legs=%v", p.WinnerID, p.LegsWon)
	default:
		logger.Warn("Unknown event kind: %v", ev.Kind)
		return
	}

	bytes, err := encodeStruct(payload)
	if err != nil {
		logger.Error("Failed to marshal event %v: %v", ev.Kind, err)
		return
	}
	mh.send(state, dispatcher, logger, opCode, bytes)
}

// sendError sends an error payload to the owner.
func (mh *matchHandler) sendError(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, code int, message string) {
	bytes, err := encodeStruct(map[string]interface{}{
		"code":    code,
		"message": message,
	})
	if err != nil {
		logger.Error("Failed to marshal error payload: %v", err)
		return
	}
	mh.send(state, dispatcher, logger, OpError, bytes)
}

func (mh *matchHandler) send(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, opCode int64, data []byte) {
	if state.Presence == nil {
		logger.Debug("send: Owner detached, dropping opcode %d.", opCode)
		return
	}
	if err := dispatcher.BroadcastMessage(opCode, data, []runtime.Presence{state.Presence}, nil, true); err != nil {
		logger.Error("send: Failed to dispatch opcode %d: %v", opCode, err)
	}
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	label, err := encodeLabel(state)
	if err != nil {
		logger.Error("UpdateLabel: Failed to marshal: %v", err)
		return
	}
	if err := dispatcher.MatchLabelUpdate(label); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
	}
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, graceSeconds int) interface{} {
	logger.Debug("MatchTerminate: Session terminated with %d grace seconds", graceSeconds)
	return state
}

func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, ""
}

func encodeLabel(state *MatchState) (string, error) {
	label := ComputeLabel(state)
	bytes, err := encodeStruct(map[string]interface{}{
		"open":  label.Open,
		"game":  label.Game,
		"phase": label.Phase,
		"owner": label.Owner,
	})
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// errorCode maps core errors onto client error codes.
func errorCode(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidThrow),
		errors.Is(err, domain.ErrTooManyThrows),
		errors.Is(err, domain.ErrInvalidScore),
		errors.Is(err, domain.ErrEmptyRoster),
		errors.Is(err, domain.ErrDuplicatePlayer),
		errors.Is(err, app.ErrTooManyPlayers):
		return ErrCodeBadRequest
	case errors.Is(err, app.ErrLegInProgress):
		return ErrCodeConflict
	default:
		return ErrCodeInternal
	}
}

func rosterHas(roster []domain.RosterEntry, id string) bool {
	for _, r := range roster {
		if r.ID == id {
			return true
		}
	}
	return false
}

func matchIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(runtime.RUNTIME_CTX_MATCH_ID).(string)
	return id
}

// rulesFromParams overlays match-create params. Values may arrive as Go
// numbers from RPCs or as JSON-decoded float64 and strings.
func rulesFromParams(rules config.Rules, params map[string]interface{}) config.Rules {
	if v, ok := paramInt(params, "starting_score"); ok {
		rules.StartingScore = v
	}
	if v, ok := paramInt(params, "total_legs"); ok {
		rules.TotalLegs = v
	}
	if v, ok := paramBool(params, "double_out"); ok {
		rules.DoubleOut = v
	}
	if v, ok := paramBool(params, "rotate_lead"); ok {
		rules.RotateLead = v
	}
	return rules.Normalize()
}

func paramInt(params map[string]interface{}, key string) (int, bool) {
	switch v := params[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	case string:
		i, err := strconv.Atoi(v)
		return i, err == nil
	default:
		return 0, false
	}
}

func paramBool(params map[string]interface{}, key string) (bool, bool) {
	switch v := params[key].(type) {
	case bool:
		return v, true
	case string:
		b, err := strconv.ParseBool(v)
		return b, err == nil
	default:
		return false, false
	}
}
