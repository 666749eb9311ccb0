package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/mock-exam/internal/model"
	"github.com/stemsi/mock-exam/internal/response"
	"github.com/stemsi/mock-exam/internal/service"
	"github.com/stemsi/mock-exam/internal/validator"
)

const (
	defaultResultsLimit = 20
	maxResultsLimit     = 100
)

// ExamHandler exposes the exam session intents over HTTP.
type ExamHandler struct {
	sessionService *service.ExamSessionService
	results        service.ResultLister
	cache          service.ResultCache
}

// NewExamHandler creates a new ExamHandler. results may be nil when no
// database is configured, cache when Redis is not.
func NewExamHandler(sessionService *service.ExamSessionService, results service.ResultLister, cache service.ResultCache) *ExamHandler {
	return &ExamHandler{
		sessionService: sessionService,
		results:        results,
		cache:          cache,
	}
}

// StartExam godoc
// POST /api/v1/exam/start
// Loads a fresh question paper and starts the countdown.
func (h *ExamHandler) StartExam(c *gin.Context) {
	snap, err := h.sessionService.Start(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, snap)
}

// GetState godoc
// GET /api/v1/exam/state
func (h *ExamHandler) GetState(c *gin.Context) {
	response.Success(c, http.StatusOK, h.sessionService.Snapshot())
}

// SelectOption godoc
// POST /api/v1/exam/select
// Records a tentative choice on the current question.
func (h *ExamHandler) SelectOption(c *gin.Context) {
	var req model.SelectOptionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	h.respond(c)(h.sessionService.SelectOption(*req.OptionIndex))
}

// Navigate godoc
// POST /api/v1/exam/navigate
// Jumps to a question from the palette.
func (h *ExamHandler) Navigate(c *gin.Context) {
	var req model.NavigateRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	h.respond(c)(h.sessionService.NavigateTo(*req.Position))
}

// SaveAndNext godoc
// POST /api/v1/exam/save-next
func (h *ExamHandler) SaveAndNext(c *gin.Context) {
	h.respond(c)(h.sessionService.SaveAndNext())
}

// SaveAndMarkForReview godoc
// POST /api/v1/exam/save-mark-review
func (h *ExamHandler) SaveAndMarkForReview(c *gin.Context) {
	h.respond(c)(h.sessionService.SaveAndMarkForReview())
}

// MarkForReviewAndNext godoc
// POST /api/v1/exam/mark-review-next
func (h *ExamHandler) MarkForReviewAndNext(c *gin.Context) {
	h.respond(c)(h.sessionService.MarkForReviewAndNext())
}

// ClearResponse godoc
// POST /api/v1/exam/clear
func (h *ExamHandler) ClearResponse(c *gin.Context) {
	h.respond(c)(h.sessionService.ClearResponse())
}

// SubmitExam godoc
// POST /api/v1/exam/submit
// Ends the exam. Submitting an already submitted exam returns its state.
func (h *ExamHandler) SubmitExam(c *gin.Context) {
	h.respond(c)(h.sessionService.Submit())
}

// RestartExam godoc
// POST /api/v1/exam/restart
// Discards the session and returns to the start screen.
func (h *ExamHandler) RestartExam(c *gin.Context) {
	response.Success(c, http.StatusOK, h.sessionService.Restart())
}

// GetResult godoc
// GET /api/v1/exam/result
// Returns the score and review of the submitted session.
func (h *ExamHandler) GetResult(c *gin.Context) {
	res, err := h.sessionService.Result()
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, res)
}

// ListResults godoc
// GET /api/v1/results?limit=
// Lists recently archived results, newest first.
func (h *ExamHandler) ListResults(c *gin.Context) {
	if h.results == nil {
		response.Fail(c, http.StatusServiceUnavailable, response.ErrArchiveUnavailable)
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultResultsLimit)))
	if err != nil || limit < 1 {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
			map[string]string{"limit": "limit must be a positive integer"})
		return
	}
	if limit > maxResultsLimit {
		limit = maxResultsLimit
	}

	results, err := h.results.ListRecent(c.Request.Context(), limit)
	if err != nil {
		log := response.Logger(c)
		log.Error().Err(err).Msg("List archived results failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if results == nil {
		results = []model.ArchivedResult{}
	}

	response.Success(c, http.StatusOK, gin.H{"results": results})
}

// GetArchivedResult godoc
// GET /api/v1/results/:session_id
// Returns the full result of a recently submitted session from the cache.
func (h *ExamHandler) GetArchivedResult(c *gin.Context) {
	if h.cache == nil {
		response.Fail(c, http.StatusServiceUnavailable, response.ErrArchiveUnavailable)
		return
	}

	res, err := h.cache.Lookup(c.Request.Context(), c.Param("session_id"))
	if errors.Is(err, service.ErrResultNotFound) {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}
	if err != nil {
		log := response.Logger(c)
		log.Error().Err(err).Msg("Cached result lookup failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, res)
}

func (h *ExamHandler) respond(c *gin.Context) func(model.SessionSnapshot, error) {
	return func(snap model.SessionSnapshot, err error) {
		if err != nil {
			h.fail(c, err)
			return
		}
		response.Success(c, http.StatusOK, snap)
	}
}

func (h *ExamHandler) fail(c *gin.Context, err error) {
	status, code := sessionError(err)
	log := response.Logger(c)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Msg("Exam intent failed")
	} else {
		log.Debug().Err(err).Str("code", string(code)).Msg("Exam intent rejected")
	}
	response.Fail(c, status, code)
}
