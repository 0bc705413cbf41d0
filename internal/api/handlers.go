package api

import (
	"encoding/json"
	"errors"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ntsvetkov/campus-manager/pkg/core/engine"
	"github.com/ntsvetkov/campus-manager/pkg/core/services"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, OkMessage("ok", map[string]interface{}{
		"app":     "campus-manager",
		"version": Version,
	}))
}

// studentView is the wire form of a roster entry
type studentView struct {
	Name        string  `json:"name"`
	Gender      string  `json:"gender"`
	Institute   string  `json:"institute"`
	SVO         int     `json:"svo"`
	ChAES       int     `json:"chaes"`
	Disability  int     `json:"disability"`
	Smoking     int     `json:"smoking"`
	Distance    float64 `json:"distance"`
	LargeFamily int     `json:"large_family"`
}

func (s *Server) handleListStudents(w http.ResponseWriter, r *http.Request) {
	logger := s.requestLogger(r)

	students, err := services.ListStudents(r.Context(), s.store, logger)
	if err != nil {
		logger.Error("Failed to list students", zap.Error(err))
		render.Status(r, http.StatusBadGateway)
		render.JSON(w, r, Error("failed to fetch students"))
		return
	}

	views := make([]studentView, len(students))
	for i, student := range students {
		views[i] = studentView{
			Name:        student.Name,
			Gender:      student.Gender,
			Institute:   student.Institute,
			SVO:         student.SVO,
			ChAES:       student.ChAES,
			Disability:  student.Disability,
			Smoking:     student.Smoking,
			Distance:    student.Distance,
			LargeFamily: student.LargeFamily,
		}
	}

	render.JSON(w, r, Ok(map[string]interface{}{
		"students": views,
		"count":    len(views),
	}))
}

func (s *Server) handleSubmission(w http.ResponseWriter, r *http.Request) {
	logger := s.requestLogger(r)

	var submission services.Submission
	if err := json.NewDecoder(r.Body).Decode(&submission); err != nil {
		logger.Warn("Failed to decode submission body", zap.Error(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, Error("invalid request body"))
		return
	}

	submissionID, err := services.SubmitStudent(r.Context(), s.store, logger, submission)
	if err != nil {
		// An invalid payload is the submitter's fault; a failed append is ours
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			logger.Warn("Submission rejected", zap.Error(err))
			render.Status(r, http.StatusUnprocessableEntity)
			render.JSON(w, r, Error(err.Error()))
			return
		}

		logger.Error("Failed to save submission", zap.Error(err))
		render.Status(r, http.StatusBadGateway)
		render.JSON(w, r, Error("failed to save student"))
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, OkMessage("student saved", map[string]interface{}{
		"submission_id": submissionID,
	}))
}

func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	logger := s.requestLogger(r)
	dryRun := r.URL.Query().Get("dry_run") == "true"

	result, err := s.runCalculation(r.Context(), dryRun)
	if err != nil {
		var cfgErr *engine.ConfigurationError
		if errors.As(err, &cfgErr) {
			logger.Error("Distribution misconfigured", zap.Error(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, Error(cfgErr.Error()))
			return
		}

		var valErrs *engine.ValidationErrors
		if errors.As(err, &valErrs) {
			logger.Warn("Distribution rejected invalid rows", zap.Int("rows", len(valErrs.Rows)))
			render.Status(r, http.StatusUnprocessableEntity)
			render.JSON(w, r, ErrorData("student data failed validation", map[string]interface{}{
				"rows": valErrs.Rows,
			}))
			return
		}

		logger.Error("Distribution calculation failed", zap.Error(err))
		render.Status(r, http.StatusBadGateway)
		render.JSON(w, r, Error("distribution calculation failed"))
		return
	}

	render.JSON(w, r, OkMessage("distribution calculated", map[string]interface{}{
		"run_id":             result.Distribution.RunID,
		"count":              result.Distribution.Count,
		"skipped":            len(result.Distribution.Skipped),
		"unknown_institutes": result.UnknownInstitutes,
		"saved":              result.Saved,
	}))
}

// requestLogger attaches the request ID so log lines can be tied to responses
func (s *Server) requestLogger(r *http.Request) *zap.Logger {
	return s.logger.With(zap.String("request_id", chimiddleware.GetReqID(r.Context())))
}
