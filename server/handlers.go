package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/notnil/chess"
	"github.com/rs/zerolog/log"

	"chess-bot/engine"
	"chess-bot/position"
)

type moveRequest struct {
	FEN        string `json:"fen" binding:"required"`
	MoveTimeMS int    `json:"movetime_ms" binding:"min=0"`
	MaxNodes   uint64 `json:"max_nodes"`
	MaxDepth   int    `json:"max_depth" binding:"min=0,max=96"`
	WTimeMS    int    `json:"wtime_ms" binding:"min=0"`
	WIncMS     int    `json:"winc_ms" binding:"min=0"`
}

type moveResponse struct {
	Move      string   `json:"move"`
	SAN       string   `json:"san"`
	Score     int      `json:"score"`
	ScoreText string   `json:"score_text"`
	Depth     int      `json:"depth"`
	Nodes     uint64   `json:"nodes"`
	PV        []string `json:"pv"`
	PVSAN     []string `json:"pv_san"`
	Source    string   `json:"source"`
	ElapsedMS int64    `json:"elapsed_ms"`
}

type evaluateRequest struct {
	FEN string `json:"fen" binding:"required"`
}

type evaluateResponse struct {
	Score     int            `json:"score"`
	ScoreText string         `json:"score_text"`
	Terms     map[string]int `json:"terms"`
	Moves     int            `json:"legal_moves"`
}

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// Move searches the posted position and returns the chosen move.
func (s *Server) Move(c *gin.Context) {
	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	b, err := position.FromFEN(req.FEN)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := s.eng.ChooseMove(c.Request.Context(), b, s.budgetFor(b, req))
	if errors.Is(err, engine.ErrNoLegalMoves) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		log.Error().Err(err).Str("fen", req.FEN).Msg("search-failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
		return
	}

	pv := make([]string, len(res.Line))
	for i, m := range res.Line {
		pv[i] = m.String()
	}
	pvSAN := sanLine(req.FEN, pv)
	san := ""
	if len(pvSAN) > 0 {
		san = pvSAN[0]
	}

	c.JSON(http.StatusOK, moveResponse{
		Move:      res.Move.String(),
		SAN:       san,
		Score:     int(res.Score),
		ScoreText: engine.FormatScore(res.Score),
		Depth:     res.Depth,
		Nodes:     res.Stats.Nodes,
		PV:        pv,
		PVSAN:     pvSAN,
		Source:    string(res.Source),
		ElapsedMS: res.Stats.Elapsed.Milliseconds(),
	})
}

func (s *Server) budgetFor(b *position.Board, req moveRequest) engine.Budget {
	switch {
	case req.MoveTimeMS > 0 || req.MaxNodes > 0 || req.MaxDepth > 0:
		return engine.Budget{
			MaxNodes: req.MaxNodes,
			MaxDepth: req.MaxDepth,
			MoveTime: time.Duration(req.MoveTimeMS) * time.Millisecond,
		}
	case req.WTimeMS > 0:
		return engine.ClockBudget(b,
			time.Duration(req.WTimeMS)*time.Millisecond,
			time.Duration(req.WIncMS)*time.Millisecond)
	}
	return s.budget
}

// Evaluate returns the static evaluation of the posted position and its terms.
func (s *Server) Evaluate(c *gin.Context) {
	var req evaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	b, err := position.FromFEN(req.FEN)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ev := s.eng.Evaluator(b)
	score, moves := ev.Evaluate(0)
	resp := evaluateResponse{
		Score:     int(score),
		ScoreText: engine.FormatScore(score),
		Moves:     len(moves),
	}
	if len(moves) > 0 && score != engine.DrawScore {
		bd := ev.Explain()
		resp.Terms = map[string]int{
			"material":       int(bd.Material),
			"pawn_push":      int(bd.PawnPush),
			"mobility":       int(bd.Mobility),
			"center":         int(bd.Center),
			"pawn_center":    int(bd.PawnCenter),
			"castling":       int(bd.Castling),
			"king_safety":    int(bd.KingSafety),
			"king_centering": int(bd.KingCentering),
			"in_check":       int(bd.InCheck),
			"white":          int(bd.White),
		}
	}
	c.JSON(http.StatusOK, resp)
}

// sanLine renders UCI moves in SAN, stopping at the first move it cannot replay.
func sanLine(fen string, uci []string) []string {
	opt, err := chess.FEN(fen)
	if err != nil {
		return nil
	}
	game := chess.NewGame(opt)
	out := make([]string, 0, len(uci))
	for _, s := range uci {
		pos := game.Position()
		m, err := chess.UCINotation{}.Decode(pos, s)
		if err != nil {
			break
		}
		out = append(out, chess.AlgebraicNotation{}.Encode(pos, m))
		if err := game.Move(m); err != nil {
			break
		}
	}
	return out
}

// requestLogger logs one line per request through zerolog.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("http-request")
	}
}
