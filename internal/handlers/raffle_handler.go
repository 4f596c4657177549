package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Get-Your-GreenBack-Tompkins/gygb-backend/internal/apierr"
	"github.com/Get-Your-GreenBack-Tompkins/gygb-backend/internal/quiz"
)

// RaffleHandler handles raffle endpoints
type RaffleHandler struct {
	quizService *quiz.Service
}

// NewRaffleHandler creates a new RaffleHandler
func NewRaffleHandler(quizService *quiz.Service) *RaffleHandler {
	return &RaffleHandler{quizService: quizService}
}

// GetRaffle returns the public view of the current raffle
func (h *RaffleHandler) GetRaffle(c *gin.Context) {
	public, err := h.quizService.PublicRaffle(c.Request.Context())
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, public)
}

// GetRaffleEdit returns the full current raffle for the admin panel
func (h *RaffleHandler) GetRaffleEdit(c *gin.Context) {
	raffle, err := h.quizService.CurrentRaffle(c.Request.Context(), false, true)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, raffle)
}

// EnterRaffle grades a submission and enters the sender when they pass
func (h *RaffleHandler) EnterRaffle(c *gin.Context) {
	var body struct {
		Answers   map[string]int `json:"answers" binding:"required"`
		FirstName string         `json:"firstName" binding:"required"`
		LastName  string         `json:"lastName" binding:"required"`
		Email     string         `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apierr.Respond(c, apierr.InvalidRequest("missing or invalid entry data: %v", err))
		return
	}

	ctx := c.Request.Context()

	score, err := h.quizService.ScoreAnswers(ctx, body.Answers)
	if err != nil {
		apierr.Respond(c, err)
		return
	}

	raffle, err := h.quizService.CurrentRaffle(ctx, true, true)
	if err != nil {
		apierr.Respond(c, err)
		return
	}

	if score.Total == 0 || float64(score.Correct)/float64(score.Total) <= raffle.Requirement {
		apierr.Respond(c, apierr.InvalidRequest("not enough correct answers to enter the raffle"))
		return
	}

	err = h.quizService.AddEntrant(ctx, raffle.ID, body.FirstName, body.LastName, body.Email)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Entered into the raffle!", "score": score})
}

// NewRaffle creates this month's raffle
func (h *RaffleHandler) NewRaffle(c *gin.Context) {
	var body struct {
		Prize       string  `json:"prize" binding:"required"`
		Requirement float64 `json:"requirement" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apierr.Respond(c, apierr.InvalidRequest("missing raffle data: %v", err))
		return
	}

	raffle, err := h.quizService.NewRaffle(c.Request.Context(), body.Prize, body.Requirement)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, raffle)
}

// EditRaffle updates the current raffle's prize and requirement
func (h *RaffleHandler) EditRaffle(c *gin.Context) {
	var body struct {
		Prize       string  `json:"prize" binding:"required"`
		Requirement float64 `json:"requirement" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apierr.Respond(c, apierr.InvalidRequest("missing raffle data: %v", err))
		return
	}

	if err := h.quizService.EditRaffle(c.Request.Context(), body.Prize, body.Requirement); err != nil {
		apierr.Respond(c, err)
		return
	}
	c.Status(http.StatusOK)
}

// ListRaffles lists every raffle of the quiz
func (h *RaffleHandler) ListRaffles(c *gin.Context) {
	raffles, err := h.quizService.Raffles(c.Request.Context())
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, raffles)
}

// ListEntrants lists everyone entered in the current raffle
func (h *RaffleHandler) ListEntrants(c *gin.Context) {
	entrants, err := h.quizService.Entrants(c.Request.Context())
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, entrants)
}

// SelectWinner draws and records the current raffle's winner
func (h *RaffleHandler) SelectWinner(c *gin.Context) {
	winner, err := h.quizService.SelectWinner(c.Request.Context())
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, winner)
}
