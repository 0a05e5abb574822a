package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"casino_ledger/internal/account"
	"casino_ledger/internal/leaderboard"
	"casino_ledger/internal/ledger"
	"casino_ledger/internal/roulette"
)

const (
	defaultLeaderboardSize = 10
	maxLeaderboardSize     = 100
)

type AmountRequest struct {
	Amount *int64 `json:"amount" binding:"required"`
}

type RouletteRequest struct {
	Bet    string `json:"bet" binding:"required"`
	Amount *int64 `json:"amount" binding:"required"`
}

type Server struct {
	ledger *ledger.Service
	wagers *roulette.Service
	board  *leaderboard.Service
	secret []byte
	now    func() time.Time
	log    *zap.Logger
}

func NewServer(l *ledger.Service, w *roulette.Service, b *leaderboard.Service, secret []byte, log *zap.Logger) *Server {
	return &Server{
		ledger: l,
		wagers: w,
		board:  b,
		secret: secret,
		now:    time.Now,
		log:    log,
	}
}

// WithClock replaces the clock used to derive the daily-claim date.
func (s *Server) WithClock(now func() time.Time) *Server {
	s.now = now
	return s
}

func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/leaderboard", s.leaderboard)

	protected := r.Group("/api")
	protected.Use(AuthMiddleware(s.secret))
	{
		protected.GET("/balance", s.balance)
		protected.POST("/deposit", s.deposit)
		protected.POST("/withdraw", s.withdraw)
		protected.POST("/daily", s.daily)
		protected.POST("/roulette", s.roulette)
	}
	return r
}

func (s *Server) balance(c *gin.Context) {
	b, err := s.ledger.Balance(c.Request.Context(), c.GetInt64(accountIDKey))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (s *Server) deposit(c *gin.Context) {
	var req AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	b, err := s.ledger.Deposit(c.Request.Context(), c.GetInt64(accountIDKey), *req.Amount)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Deposited " + strconv.FormatInt(*req.Amount, 10) + " coins to bank.",
		"balance": b,
	})
}

func (s *Server) withdraw(c *gin.Context) {
	var req AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	b, err := s.ledger.Withdraw(c.Request.Context(), c.GetInt64(accountIDKey), *req.Amount)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Withdrew " + strconv.FormatInt(*req.Amount, 10) + " coins from bank.",
		"balance": b,
	})
}

func (s *Server) daily(c *gin.Context) {
	res, err := s.ledger.ClaimDaily(c.Request.Context(), c.GetInt64(accountIDKey), s.now().UTC())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "You received your daily reward of " + strconv.FormatInt(res.Credited, 10) + " coins!",
		"claim":   res,
	})
}

func (s *Server) roulette(c *gin.Context) {
	var req RouletteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := s.wagers.PlaceWager(c.Request.Context(), c.GetInt64(accountIDKey), req.Bet, *req.Amount)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) leaderboard(c *gin.Context) {
	n := defaultLeaderboardSize
	if raw := c.Query("n"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "n must be a non-negative integer"})
			return
		}
		n = min(v, maxLeaderboardSize)
	}

	entries, err := s.board.TopN(c.Request.Context(), n)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"leaderboard": entries})
}

func (s *Server) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	switch {
	case errors.Is(err, ledger.ErrInvalidAmount):
		status, message = http.StatusBadRequest, "You can't move 0 or negative coins!"
	case errors.Is(err, roulette.ErrInvalidBet):
		status, message = http.StatusBadRequest, "Invalid bet! Example: {\"bet\": \"red\", \"amount\": 100}"
	case errors.Is(err, ledger.ErrInsufficientCash):
		status, message = http.StatusPaymentRequired, "Not enough cash!"
	case errors.Is(err, ledger.ErrInsufficientBank):
		status, message = http.StatusPaymentRequired, "Not enough coins in bank!"
	case errors.Is(err, ledger.ErrAlreadyClaimed):
		status, message = http.StatusConflict, "You already claimed your daily reward today!"
	case errors.Is(err, account.ErrStorage):
		status, message = http.StatusServiceUnavailable, "storage unavailable, try again later"
	}

	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.JSON(status, gin.H{"error": err.Error(), "message": message})
}
