package game

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"goban/internal/domain/board"
	gamemodel "goban/internal/domain/game"
	"goban/internal/domain/sgf"
	goerrors "goban/internal/errors"
	"goban/internal/metrics"
	"goban/internal/statuses"
)

type GameStore interface {
	GenerateGameKey(ctx context.Context) (string, error)
	SaveSnapshot(ctx context.Context, key string, snap gamemodel.Snapshot) error
	LoadSnapshot(ctx context.Context, key string) (gamemodel.Snapshot, error)
	DeleteSnapshot(ctx context.Context, key string) error
	PutGameRecord(ctx context.Context, rec gamemodel.Game) error
	GetGameRecord(ctx context.Context, key string) (gamemodel.Game, error)
	ListGameRecords(ctx context.Context, status string, page int) ([]gamemodel.Game, error)
}

// CommitFunc observes every accepted command. It runs while the game is still
// locked, so calls for one game arrive in the order the commands took effect.
type CommitFunc func(key string, kind CommandKind, state gamemodel.GameState)

// liveGame is a session held in memory together with its record and the last
// snapshot the store accepted. Commands on one game are serialized by mu.
type liveGame struct {
	mu      sync.Mutex
	session *Session
	record  gamemodel.Game
	saved   gamemodel.Snapshot
}

type GameUseCase struct {
	store    GameStore
	log      *zap.SugaredLogger
	onCommit CommitFunc

	mu        sync.Mutex
	games     map[string]*liveGame
	restoring singleflight.Group
}

func NewGameUseCase(store GameStore, log *zap.SugaredLogger) *GameUseCase {
	return &GameUseCase{store: store, log: log, games: make(map[string]*liveGame)}
}

// OnCommit installs the observer of accepted commands. Call it before serving.
func (g *GameUseCase) OnCommit(fn CommitFunc) {
	g.onCommit = fn
}

// PrepareRootMetadata builds the properties of the root node of a new game.
func PrepareRootMetadata(rec gamemodel.Game, comment string) []sgf.Token {
	tokens := []sgf.Token{
		sgf.MetadataToken("FF", "4"),
		sgf.MetadataToken("GM", "1"),
		sgf.MetadataToken("SZ", strconv.Itoa(board.Size)),
		sgf.MetadataToken("PB", rec.PlayerBlack),
		sgf.MetadataToken("PW", rec.PlayerWhite),
		sgf.MetadataToken("DT", rec.CreatedAt.Format("2006-01-02")),
		sgf.MetadataToken("KM", strconv.FormatFloat(rec.Komi, 'f', 1, 64)),
		sgf.MetadataToken("RU", "Japanese"),
	}
	if comment != "" {
		tokens = append(tokens, sgf.MetadataToken("C", comment))
	}
	return tokens
}

func (g *GameUseCase) CreateGame(ctx context.Context, req gamemodel.CreateGameRequest) (gamemodel.Game, error) {
	key, err := g.store.GenerateGameKey(ctx)
	if err != nil {
		return gamemodel.Game{}, fmt.Errorf("%w: %w", goerrors.ErrCreateGameFailed, err)
	}

	rec := gamemodel.Game{
		GameKey:     key,
		Status:      statuses.StatusActive,
		CreatedAt:   time.Now().UTC(),
		BoardSize:   board.Size,
		PlayerBlack: req.PlayerBlack,
		PlayerWhite: req.PlayerWhite,
		Komi:        req.Komi,
	}
	session := NewSessionWithMetadata(PrepareRootMetadata(rec, req.Comment))

	snap, err := g.persist(ctx, rec, session)
	if err != nil {
		return gamemodel.Game{}, fmt.Errorf("%w: %w", goerrors.ErrCreateGameFailed, err)
	}
	g.keep(key, &liveGame{session: session, record: rec, saved: snap})
	g.log.Infof("game %s created", key)
	return rec, nil
}

// ImportGame opens a new game from a complete tree. Player names and komi are
// taken from the root properties when present.
func (g *GameUseCase) ImportGame(ctx context.Context, tree *sgf.GameTree) (gamemodel.Game, error) {
	session, err := g.load(tree)
	if err != nil {
		return gamemodel.Game{}, err
	}

	key, err := g.store.GenerateGameKey(ctx)
	if err != nil {
		return gamemodel.Game{}, fmt.Errorf("%w: %w", goerrors.ErrCreateGameFailed, err)
	}
	rec := gamemodel.Game{
		GameKey:   key,
		Status:    statuses.StatusActive,
		CreatedAt: time.Now().UTC(),
		BoardSize: board.Size,
		MoveCount: tree.CountMoves(),
	}
	for _, tok := range session.Metadata() {
		if len(tok.Values) == 0 {
			continue
		}
		switch tok.Ident {
		case "PB":
			rec.PlayerBlack = tok.Values[0]
		case "PW":
			rec.PlayerWhite = tok.Values[0]
		case "KM":
			if komi, err := strconv.ParseFloat(tok.Values[0], 64); err == nil {
				rec.Komi = komi
			}
		}
	}

	snap, err := g.persist(ctx, rec, session)
	if err != nil {
		return gamemodel.Game{}, fmt.Errorf("%w: %w", goerrors.ErrCreateGameFailed, err)
	}
	g.keep(key, &liveGame{session: session, record: rec, saved: snap})
	g.log.Infof("game %s imported with %d moves", key, rec.MoveCount)
	return rec, nil
}

// Apply runs one command on the game and returns the resulting position.
// Rejected moves come back as board errors wrapping board.ErrIllegalMove.
// When the new position cannot be stored the session goes back to the last
// stored one and ErrInternal is returned.
func (g *GameUseCase) Apply(ctx context.Context, key string, cmd Command) (gamemodel.GameState, error) {
	lg, err := g.live(ctx, key)
	if err != nil {
		return gamemodel.GameState{}, err
	}

	lg.mu.Lock()
	defer lg.mu.Unlock()

	if lg.record.Status != statuses.StatusActive {
		return gamemodel.GameState{}, goerrors.ErrGameArchived
	}

	turn := lg.session.Board().Turn()
	nodes := lg.session.History().Len()
	changed, err := lg.session.Apply(cmd)
	if err != nil {
		if errors.Is(err, board.ErrIllegalMove) {
			metrics.IllegalMoves.WithLabelValues(illegalReason(err)).Inc()
		}
		return gamemodel.GameState{}, err
	}
	metrics.Commands.WithLabelValues(string(cmd.Kind), strconv.FormatBool(changed)).Inc()

	if changed {
		snap := snapshotOf(lg.session)
		if err := g.store.SaveSnapshot(ctx, key, snap); err != nil {
			g.log.Errorf("failed to save snapshot of game %s: %v", key, err)
			g.rollback(key, lg)
			return gamemodel.GameState{}, fmt.Errorf("%w: %w", goerrors.ErrInternal, err)
		}
		lg.saved = snap
	}
	if lg.session.History().Len() > nodes {
		metrics.MovesPlayed.WithLabelValues(turn.String()).Inc()
	}

	state := stateOf(key, lg.session)
	if g.onCommit != nil {
		g.onCommit(key, cmd.Kind, state)
	}
	return state, nil
}

// rollback rebuilds the session from the last stored snapshot.
func (g *GameUseCase) rollback(key string, lg *liveGame) {
	session, err := Load(lg.saved.Tree)
	if err == nil {
		err = session.Seek(lg.saved.Cursor)
	}
	if err != nil {
		g.log.Errorf("failed to roll game %s back to its stored position: %v", key, err)
		return
	}
	lg.session = session
}

func (g *GameUseCase) State(ctx context.Context, key string) (gamemodel.GameState, error) {
	lg, err := g.live(ctx, key)
	if err != nil {
		return gamemodel.GameState{}, err
	}
	lg.mu.Lock()
	defer lg.mu.Unlock()
	return stateOf(key, lg.session), nil
}

func (g *GameUseCase) GetGame(ctx context.Context, key string) (gamemodel.Game, error) {
	lg, err := g.live(ctx, key)
	if err != nil {
		return gamemodel.Game{}, err
	}
	lg.mu.Lock()
	defer lg.mu.Unlock()
	return lg.record, nil
}

func (g *GameUseCase) ExportTree(ctx context.Context, key string) (*sgf.GameTree, error) {
	lg, err := g.live(ctx, key)
	if err != nil {
		return nil, err
	}
	lg.mu.Lock()
	defer lg.mu.Unlock()
	return Dump(lg.session), nil
}

func (g *GameUseCase) ExportSGF(ctx context.Context, key string) (string, error) {
	tree, err := g.ExportTree(ctx, key)
	if err != nil {
		return "", err
	}
	return sgf.Serialize(tree), nil
}

// ArchiveGame completes the game: the record gets the final tree and its SGF
// text, and the hot snapshot is dropped. Archiving twice is a no-op.
func (g *GameUseCase) ArchiveGame(ctx context.Context, key string) (gamemodel.Game, error) {
	lg, err := g.live(ctx, key)
	if err != nil {
		return gamemodel.Game{}, err
	}
	lg.mu.Lock()
	defer lg.mu.Unlock()

	if lg.record.Status == statuses.StatusCompleted {
		return lg.record, nil
	}

	rec := lg.record
	now := time.Now().UTC()
	rec.Status = statuses.StatusCompleted
	rec.ArchivedAt = &now
	rec.Tree = Dump(lg.session)
	rec.Sgf = sgf.Serialize(rec.Tree)
	rec.MoveCount = rec.Tree.CountMoves()

	if err := g.store.PutGameRecord(ctx, rec); err != nil {
		g.log.Errorf("failed to archive game %s: %v", key, err)
		return gamemodel.Game{}, fmt.Errorf("%w: %w", goerrors.ErrInternal, err)
	}
	if err := g.store.DeleteSnapshot(ctx, key); err != nil {
		g.log.Warnf("failed to drop snapshot of archived game %s: %v", key, err)
	}
	lg.record = rec
	g.log.Infof("game %s archived with %d moves", key, rec.MoveCount)
	return rec, nil
}

func (g *GameUseCase) ListGames(ctx context.Context, status string, page int) (gamemodel.GamesPage, error) {
	if page < 1 {
		page = 1
	}
	games, err := g.store.ListGameRecords(ctx, status, page)
	if err != nil {
		return gamemodel.GamesPage{}, fmt.Errorf("%w: %w", goerrors.ErrInternal, err)
	}
	return gamemodel.GamesPage{Page: page, Games: games}, nil
}

// Forget drops the in-memory session of a game. The next access restores it
// from the store.
func (g *GameUseCase) Forget(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.games[key]; ok {
		delete(g.games, key)
		metrics.ActiveSessions.Dec()
	}
}

func (g *GameUseCase) keep(key string, lg *liveGame) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.games[key]; !ok {
		metrics.ActiveSessions.Inc()
	}
	g.games[key] = lg
}

// live returns the in-memory game, restoring it from the store on first use.
// Restores run outside g.mu; concurrent restores of one key share a result.
func (g *GameUseCase) live(ctx context.Context, key string) (*liveGame, error) {
	g.mu.Lock()
	lg, ok := g.games[key]
	g.mu.Unlock()
	if ok {
		return lg, nil
	}

	v, err, _ := g.restoring.Do(key, func() (any, error) {
		restored, err := g.restore(ctx, key)
		if err != nil {
			return nil, err
		}
		g.mu.Lock()
		defer g.mu.Unlock()
		if existing, ok := g.games[key]; ok {
			return existing, nil
		}
		g.games[key] = restored
		metrics.ActiveSessions.Inc()
		return restored, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*liveGame), nil
}

func (g *GameUseCase) restore(ctx context.Context, key string) (*liveGame, error) {
	rec, err := g.store.GetGameRecord(ctx, key)
	if err != nil {
		return nil, err
	}

	var snap gamemodel.Snapshot
	if rec.Status == statuses.StatusCompleted {
		snap.Tree = rec.Tree
	} else if snap, err = g.store.LoadSnapshot(ctx, key); err != nil {
		return nil, err
	}

	session, err := g.load(snap.Tree)
	if err != nil {
		g.log.Errorf("stored tree of game %s does not replay: %v", key, err)
		return nil, fmt.Errorf("%w: %w", goerrors.ErrInternal, err)
	}
	if err := session.Seek(snap.Cursor); err != nil {
		g.log.Warnf("cursor of game %s is stale, starting at the root: %v", key, err)
	}
	g.log.Infof("game %s restored at ply %d", key, session.Board().Ply())
	return &liveGame{session: session, record: rec, saved: snapshotOf(session)}, nil
}

func (g *GameUseCase) load(tree *sgf.GameTree) (*Session, error) {
	start := time.Now()
	session, err := Load(tree)
	metrics.LoadDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.TreeLoads.WithLabelValues("malformed").Inc()
		return nil, err
	}
	metrics.TreeLoads.WithLabelValues("ok").Inc()
	return session, nil
}

func (g *GameUseCase) persist(ctx context.Context, rec gamemodel.Game, s *Session) (gamemodel.Snapshot, error) {
	if err := g.store.PutGameRecord(ctx, rec); err != nil {
		return gamemodel.Snapshot{}, err
	}
	snap := snapshotOf(s)
	if err := g.store.SaveSnapshot(ctx, rec.GameKey, snap); err != nil {
		return gamemodel.Snapshot{}, err
	}
	return snap, nil
}

func snapshotOf(s *Session) gamemodel.Snapshot {
	return gamemodel.Snapshot{Tree: Dump(s), Cursor: s.Cursor()}
}

func stateOf(key string, s *Session) gamemodel.GameState {
	b := s.Board()
	next := s.PossibleNextPoints()
	if next == nil {
		next = []board.Point{}
	}
	return gamemodel.GameState{
		GameKey:       key,
		Rows:          b.Rows(),
		Turn:          b.Turn(),
		LastMove:      b.LastMove(),
		Ko:            b.Ko(),
		Ply:           b.Ply(),
		NextPoints:    next,
		CapturesBlack: b.Captures(board.Black),
		CapturesWhite: b.Captures(board.White),
		CanUndo:       s.History().Depth() > 0,
		CanRedo:       s.History().HasNext(),
	}
}

func illegalReason(err error) string {
	switch {
	case errors.Is(err, board.ErrOccupied):
		return "occupied"
	case errors.Is(err, board.ErrSuicide):
		return "suicide"
	case errors.Is(err, board.ErrKo):
		return "ko"
	case errors.Is(err, board.ErrOffBoard):
		return "off_board"
	}
	return "other"
}
