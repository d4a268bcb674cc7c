package game

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"goban/internal/bootstrap"
	"goban/internal/domain/board"
	"goban/internal/domain/game"
	"goban/internal/domain/sgf"
	goerrors "goban/internal/errors"
	"goban/internal/httpresponse"
	gameuc "goban/internal/usecase/game"
	"goban/internal/utils"
)

// GameService is the part of the game usecase the handlers depend on.
type GameService interface {
	CreateGame(ctx context.Context, req game.CreateGameRequest) (game.Game, error)
	ImportGame(ctx context.Context, tree *sgf.GameTree) (game.Game, error)
	Apply(ctx context.Context, key string, cmd gameuc.Command) (game.GameState, error)
	State(ctx context.Context, key string) (game.GameState, error)
	GetGame(ctx context.Context, key string) (game.Game, error)
	ExportTree(ctx context.Context, key string) (*sgf.GameTree, error)
	ExportSGF(ctx context.Context, key string) (string, error)
	ArchiveGame(ctx context.Context, key string) (game.Game, error)
	ListGames(ctx context.Context, status string, page int) (game.GamesPage, error)
	OnCommit(fn gameuc.CommitFunc)
}

type GameHandler struct {
	cfg    bootstrap.Config
	log    *zap.SugaredLogger
	gameUC GameService
	hub    *hub
}

// NewGameHandler subscribes the socket hub to every accepted command, so
// watchers get positions in the order they were reached.
func NewGameHandler(cfg bootstrap.Config, log *zap.SugaredLogger, gameUC GameService) *GameHandler {
	h := &GameHandler{
		cfg:    cfg,
		log:    log,
		gameUC: gameUC,
		hub:    newHub(log),
	}
	gameUC.OnCommit(func(key string, kind gameuc.CommandKind, state game.GameState) {
		h.hub.broadcast(key, game.GameStateResponse{Kind: string(kind), State: &state})
	})
	return h
}

type GameResponse struct {
	Game  game.Game      `json:"game"`
	State game.GameState `json:"state"`
}

func (g *GameHandler) Routes(r chi.Router) {
	r.Route("/games", func(r chi.Router) {
		r.Get("/", g.HandleListGames)
		r.Post("/", g.HandleNewGame)
		r.Post("/import", g.HandleImportGame)
		r.Route("/{key}", func(r chi.Router) {
			r.Get("/", g.HandleGetGame)
			r.Post("/play", g.HandlePlay)
			r.Post("/undo", g.HandleUndo)
			r.Post("/redo", g.HandleRedo)
			r.Post("/variation", g.HandleSelectVariation)
			r.Post("/archive", g.HandleArchive)
			r.Get("/tree", g.HandleGetTree)
			r.Get("/sgf", g.HandleGetSgf)
			r.Get("/ws", g.HandleGameSocket)
		})
	})
}

func (g *GameHandler) HandleNewGame(w http.ResponseWriter, r *http.Request) {
	var req game.CreateGameRequest
	if err := utils.DecodeJSONRequest(r, &req); err != nil {
		g.log.Error("JSON decode error:", err)
		httpresponse.WriteErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	rec, err := g.gameUC.CreateGame(r.Context(), req)
	if err != nil {
		g.writeError(w, err)
		return
	}

	g.log.Info("New Game Created with key: " + rec.GameKey)
	httpresponse.WriteResponseWithStatus(w, http.StatusCreated, game.GameCreateResponse{GameKey: rec.GameKey})
}

func (g *GameHandler) HandleImportGame(w http.ResponseWriter, r *http.Request) {
	var req game.ImportGameRequest
	if err := utils.DecodeJSONRequest(r, &req); err != nil {
		g.log.Error("JSON decode error:", err)
		httpresponse.WriteErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Tree == nil {
		httpresponse.WriteErrorResponse(w, http.StatusBadRequest, "tree is required")
		return
	}

	rec, err := g.gameUC.ImportGame(r.Context(), req.Tree)
	if err != nil {
		g.writeError(w, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusCreated, game.GameCreateResponse{GameKey: rec.GameKey})
}

func (g *GameHandler) HandleListGames(w http.ResponseWriter, r *http.Request) {
	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			httpresponse.WriteErrorResponse(w, http.StatusBadRequest, "page must be a positive number")
			return
		}
		page = n
	}

	resp, err := g.gameUC.ListGames(r.Context(), r.URL.Query().Get("status"), page)
	if err != nil {
		g.writeError(w, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, resp)
}

func (g *GameHandler) HandleGetGame(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	key := chi.URLParam(r, "key")

	rec, err := g.gameUC.GetGame(ctx, key)
	if err != nil {
		g.writeError(w, err)
		return
	}
	state, err := g.gameUC.State(ctx, key)
	if err != nil {
		g.writeError(w, err)
		return
	}
	rec.Tree = nil
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, GameResponse{Game: rec, State: state})
}

func (g *GameHandler) HandlePlay(w http.ResponseWriter, r *http.Request) {
	p, ok := g.decodePoint(w, r)
	if !ok {
		return
	}
	g.apply(w, r, gameuc.PlayCommand(p))
}

func (g *GameHandler) HandleSelectVariation(w http.ResponseWriter, r *http.Request) {
	p, ok := g.decodePoint(w, r)
	if !ok {
		return
	}
	g.apply(w, r, gameuc.SelectVariationCommand(p))
}

func (g *GameHandler) HandleUndo(w http.ResponseWriter, r *http.Request) {
	g.apply(w, r, gameuc.Command{Kind: gameuc.CommandUndo})
}

func (g *GameHandler) HandleRedo(w http.ResponseWriter, r *http.Request) {
	g.apply(w, r, gameuc.Command{Kind: gameuc.CommandRedo})
}

func (g *GameHandler) HandleArchive(w http.ResponseWriter, r *http.Request) {
	rec, err := g.gameUC.ArchiveGame(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		g.writeError(w, err)
		return
	}
	rec.Tree = nil
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, rec)
}

func (g *GameHandler) HandleGetTree(w http.ResponseWriter, r *http.Request) {
	tree, err := g.gameUC.ExportTree(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		g.writeError(w, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, tree)
}

func (g *GameHandler) HandleGetSgf(w http.ResponseWriter, r *http.Request) {
	text, err := g.gameUC.ExportSGF(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		g.writeError(w, err)
		return
	}
	httpresponse.WriteTextResponse(w, "application/x-go-sgf", text)
}

func (g *GameHandler) apply(w http.ResponseWriter, r *http.Request, cmd gameuc.Command) {
	key := chi.URLParam(r, "key")
	state, err := g.gameUC.Apply(r.Context(), key, cmd)
	if err != nil {
		g.writeError(w, err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, state)
}

func (g *GameHandler) decodePoint(w http.ResponseWriter, r *http.Request) (board.Point, bool) {
	var move game.Move
	if err := utils.DecodeJSONRequest(r, &move); err != nil {
		httpresponse.WriteErrorResponse(w, http.StatusBadRequest, err.Error())
		return board.Point{}, false
	}
	p, err := move.Resolve()
	if err != nil {
		httpresponse.WriteErrorResponse(w, http.StatusBadRequest, err.Error())
		return board.Point{}, false
	}
	return p, true
}

// statusOf maps usecase errors to HTTP statuses.
func statusOf(err error) int {
	switch {
	case errors.Is(err, goerrors.ErrInternal):
		return http.StatusInternalServerError
	case errors.Is(err, goerrors.ErrGameNotFound):
		return http.StatusNotFound
	case errors.Is(err, goerrors.ErrInvalidRequest),
		errors.Is(err, gameuc.ErrMalformedTree),
		errors.Is(err, gameuc.ErrUnknownCommand),
		errors.Is(err, gameuc.ErrUnknownBranch):
		return http.StatusBadRequest
	case errors.Is(err, board.ErrIllegalMove),
		errors.Is(err, goerrors.ErrGameArchived):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func (g *GameHandler) writeError(w http.ResponseWriter, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		g.log.Error(err)
		httpresponse.WriteInternalErrorResponse(w)
		return
	}
	g.log.Debugf("request rejected with %d: %v", status, err)
	httpresponse.WriteErrorResponse(w, status, err.Error())
}
