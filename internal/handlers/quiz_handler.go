package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Get-Your-GreenBack-Tompkins/gygb-backend/internal/apierr"
	"github.com/Get-Your-GreenBack-Tompkins/gygb-backend/internal/models"
	"github.com/Get-Your-GreenBack-Tompkins/gygb-backend/internal/quiz"
)

// QuizHandler handles quiz content and grading endpoints
type QuizHandler struct {
	quizService *quiz.Service
}

// NewQuizHandler creates a new QuizHandler
func NewQuizHandler(quizService *quiz.Service) *QuizHandler {
	return &QuizHandler{quizService: quizService}
}

// GetQuiz serves a randomized question subset to a quiz taker
func (h *QuizHandler) GetQuiz(c *gin.Context) {
	q, err := h.quizService.Quiz(c.Request.Context())
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, q.Serve())
}

// GetQuizEdit returns the full quiz, grading fields included
func (h *QuizHandler) GetQuizEdit(c *gin.Context) {
	q, err := h.quizService.QuizUncached(c.Request.Context())
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

// UpdateQuiz merges edited quiz metadata
func (h *QuizHandler) UpdateQuiz(c *gin.Context) {
	var q models.Quiz
	if err := c.ShouldBindJSON(&q); err != nil {
		apierr.Respond(c, apierr.InvalidRequest("invalid quiz payload: %v", err))
		return
	}

	if err := h.quizService.UpdateQuiz(c.Request.Context(), &q); err != nil {
		apierr.Respond(c, err)
		return
	}
	c.Status(http.StatusOK)
}

// GetTutorial returns the quiz tutorial content
func (h *QuizHandler) GetTutorial(c *gin.Context) {
	tutorial, err := h.quizService.Tutorial(c.Request.Context())
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, tutorial)
}

// VerifyAnswers grades a full submission
func (h *QuizHandler) VerifyAnswers(c *gin.Context) {
	var body struct {
		Answers map[string]int `json:"answers" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apierr.Respond(c, apierr.InvalidRequest("invalid answer map: %v", err))
		return
	}

	score, err := h.quizService.ScoreAnswers(c.Request.Context(), body.Answers)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, score)
}

// VerifyAnswer grades a single choice and returns its feedback message
func (h *QuizHandler) VerifyAnswer(c *gin.Context) {
	answerID, err := strconv.Atoi(c.Param("answerId"))
	if err != nil {
		apierr.Respond(c, apierr.InvalidRequest("answer id must be a number"))
		return
	}

	answer, err := h.quizService.Answer(c.Request.Context(), c.Param("id"), answerID)
	if err != nil {
		apierr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"correct": answer.Correct,
		"message": answer.Message,
	})
}

// GetQuestion returns one question, grading fields included
func (h *QuizHandler) GetQuestion(c *gin.Context) {
	question, err := h.quizService.Question(c.Request.Context(), c.Param("id"))
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, question)
}

// AddQuestion creates a blank question
func (h *QuizHandler) AddQuestion(c *gin.Context) {
	question, err := h.quizService.AddQuestion(c.Request.Context())
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, question)
}

// UpdateQuestion merges an edited question
func (h *QuizHandler) UpdateQuestion(c *gin.Context) {
	var question models.Question
	if err := c.ShouldBindJSON(&question); err != nil {
		apierr.Respond(c, apierr.InvalidRequest("invalid question payload: %v", err))
		return
	}
	question.ID = c.Param("id")

	if err := h.quizService.UpdateQuestion(c.Request.Context(), &question); err != nil {
		apierr.Respond(c, err)
		return
	}
	c.Status(http.StatusOK)
}

// DeleteQuestion removes a question
func (h *QuizHandler) DeleteQuestion(c *gin.Context) {
	if err := h.quizService.DeleteQuestion(c.Request.Context(), c.Param("id")); err != nil {
		apierr.Respond(c, err)
		return
	}
	c.Status(http.StatusOK)
}

// AddAnswer appends a blank answer to a question and returns its id
func (h *QuizHandler) AddAnswer(c *gin.Context) {
	id, err := h.quizService.AddAnswer(c.Request.Context(), c.Param("id"))
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id})
}

// DeleteAnswer removes one answer from a question
func (h *QuizHandler) DeleteAnswer(c *gin.Context) {
	answerID, err := strconv.Atoi(c.Param("answerId"))
	if err != nil {
		apierr.Respond(c, apierr.InvalidRequest("answer id must be a number"))
		return
	}

	if err := h.quizService.DeleteAnswer(c.Request.Context(), c.Param("id"), answerID); err != nil {
		apierr.Respond(c, err)
		return
	}
	c.Status(http.StatusOK)
}
