// package http implements the HTTP transport layer for the service.
// It handles incoming requests, decodes them, calls the appropriate service methods,
// and encodes the responses.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/avoronov/scrumboard-service/internal/apperrors"
	"github.com/avoronov/scrumboard-service/internal/domain"
	"github.com/avoronov/scrumboard-service/internal/service"
	"github.com/avoronov/scrumboard-service/internal/validation"
	"github.com/avoronov/scrumboard-service/pkg/logger/sl"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server holds the dependencies for the HTTP server, including the logger and service interfaces.
type Server struct {
	log               *slog.Logger
	jwtSecret         []byte
	milestoneService  service.MilestoneService
	submissionService service.SubmissionService
	evaluationService service.EvaluationService
}

// NewServer creates a new instance of the HTTP server.
func NewServer(
	log *slog.Logger,
	jwtSecret string,
	ms service.MilestoneService,
	ss service.SubmissionService,
	es service.EvaluationService,
) *Server {
	return &Server{
		log:               log,
		jwtSecret:         []byte(jwtSecret),
		milestoneService:  ms,
		submissionService: ss,
		evaluationService: es,
	}
}

// Routes sets up the router with all middleware and API endpoints.
func (s *Server) Routes() http.Handler {
	mux := chi.NewRouter()

	mux.Use(s.requestID)
	mux.Use(s.logRequest)
	mux.Use(s.metricsMiddleware)

	mux.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		s.respond(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.Handle("/metrics", promhttp.Handler())

	mux.Group(func(r chi.Router) {
		r.Use(s.authenticate)

		r.Route("/milestones", func(r chi.Router) {
			r.Post("/", s.CreateMilestone)
			r.Get("/{milestoneID}", s.GetMilestone)
			r.Patch("/{milestoneID}", s.UpdateMilestone)
			r.Delete("/{milestoneID}", s.DeleteMilestone)
			r.Put("/{milestoneID}/user-stories", s.LinkUserStories)
			r.Delete("/{milestoneID}/user-stories/{storyID}", s.UnlinkUserStory)
			r.Post("/{milestoneID}/submissions", s.CreateSubmission)
			r.Get("/{milestoneID}/submissions", s.ListSubmissions)
		})

		r.Route("/submissions", func(r chi.Router) {
			r.Post("/{submissionID}/evaluation", s.CreateEvaluation)
			r.Get("/{submissionID}/evaluation", s.GetEvaluation)
		})

		r.Route("/evaluations", func(r chi.Router) {
			r.Patch("/{evaluationID}", s.UpdateEvaluation)
			r.Delete("/{evaluationID}", s.DeleteEvaluation)
		})
	})

	return mux
}

func (s *Server) CreateMilestone(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.CreateMilestone"

	caller, err := callerFromContext(r.Context())
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	var req createMilestoneRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	milestone, err := s.milestoneService.Create(r.Context(), caller.ID, service.CreateMilestoneInput{
		ProjectID: req.ProjectID,
		Name:      req.Name,
		Deadline:  req.Deadline,
		RubricID:  req.RubricID,
		Status:    domain.MilestoneStatus(req.Status),
	})
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	s.respond(w, http.StatusCreated, map[string]milestoneResponse{"milestone": toMilestoneResponse(milestone)})
}

func (s *Server) GetMilestone(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.GetMilestone"

	caller, err := callerFromContext(r.Context())
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	milestoneID, err := urlParamID(r, "milestoneID")
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	details, err := s.milestoneService.GetWithDetails(r.Context(), caller.ID, milestoneID)
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	s.respond(w, http.StatusOK, map[string]milestoneDetailsResponse{"milestone": toMilestoneDetailsResponse(details)})
}

func (s *Server) UpdateMilestone(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.UpdateMilestone"

	caller, err := callerFromContext(r.Context())
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	milestoneID, err := urlParamID(r, "milestoneID")
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	var req updateMilestoneRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	upd := domain.MilestoneUpdate{
		Name:     req.Name,
		Deadline: req.Deadline,
		RubricID: req.RubricID,
	}
	if req.Status != nil {
		status := domain.MilestoneStatus(*req.Status)
		upd.Status = &status
	}

	milestone, err := s.milestoneService.Update(r.Context(), caller.ID, milestoneID, upd)
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	s.respond(w, http.StatusOK, map[string]milestoneResponse{"milestone": toMilestoneResponse(milestone)})
}

func (s *Server) DeleteMilestone(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.DeleteMilestone"

	caller, err := callerFromContext(r.Context())
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	milestoneID, err := urlParamID(r, "milestoneID")
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	if err := s.milestoneService.Delete(r.Context(), caller.ID, milestoneID); err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	s.respond(w, http.StatusNoContent, nil)
}

func (s *Server) LinkUserStories(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.LinkUserStories"

	caller, err := callerFromContext(r.Context())
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	milestoneID, err := urlParamID(r, "milestoneID")
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	var req linkUserStoriesRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	if err := s.milestoneService.LinkUserStories(r.Context(), caller.ID, milestoneID, req.UserStoryIDs); err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	s.respond(w, http.StatusOK, map[string]int{"linked_count": len(req.UserStoryIDs)})
}

func (s *Server) UnlinkUserStory(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.UnlinkUserStory"

	caller, err := callerFromContext(r.Context())
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	milestoneID, err := urlParamID(r, "milestoneID")
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	storyID, err := urlParamID(r, "storyID")
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	if err := s.milestoneService.UnlinkUserStory(r.Context(), caller.ID, milestoneID, storyID); err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	s.respond(w, http.StatusNoContent, nil)
}

func (s *Server) CreateSubmission(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.CreateSubmission"

	caller, err := callerFromContext(r.Context())
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	milestoneID, err := urlParamID(r, "milestoneID")
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	var req submitRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	submission, err := s.submissionService.Submit(r.Context(), caller.ID, service.SubmitInput{
		MilestoneID: milestoneID,
		TeamID:      req.TeamID,
		FilePath:    req.FilePath,
		Notes:       req.Notes,
	})
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	s.respond(w, http.StatusCreated, map[string]submissionResponse{"submission": toSubmissionResponse(submission)})
}

func (s *Server) ListSubmissions(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.ListSubmissions"

	caller, err := callerFromContext(r.Context())
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	milestoneID, err := urlParamID(r, "milestoneID")
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	submissions, err := s.submissionService.ListForMilestone(r.Context(), caller.ID, milestoneID)
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	resp := make([]submissionResponse, len(submissions))
	for i := range submissions {
		resp[i] = toSubmissionResponse(&submissions[i])
	}

	s.respond(w, http.StatusOK, map[string][]submissionResponse{"submissions": resp})
}

func (s *Server) CreateEvaluation(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.CreateEvaluation"

	caller, err := callerFromContext(r.Context())
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	submissionID, err := urlParamID(r, "submissionID")
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	var req createEvaluationRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	scores, err := s.validateCriteriaScores(req.CriteriaScores)
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	evaluation, err := s.evaluationService.Create(r.Context(), caller.ID, service.CreateEvaluationInput{
		SubmissionID:    submissionID,
		OverallScore:    req.OverallScore,
		GeneralFeedback: req.GeneralFeedback,
		Scores:          scores,
	})
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	s.respond(w, http.StatusCreated, map[string]evaluationResponse{"evaluation": toEvaluationResponse(evaluation)})
}

func (s *Server) GetEvaluation(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.GetEvaluation"

	caller, err := callerFromContext(r.Context())
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	submissionID, err := urlParamID(r, "submissionID")
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	evaluation, err := s.evaluationService.GetBySubmission(r.Context(), caller.ID, submissionID)
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	s.respond(w, http.StatusOK, map[string]evaluationResponse{"evaluation": toEvaluationResponse(evaluation)})
}

func (s *Server) UpdateEvaluation(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.UpdateEvaluation"

	caller, err := callerFromContext(r.Context())
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	evaluationID, err := urlParamID(r, "evaluationID")
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	var req updateEvaluationRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	upd := domain.EvaluationUpdate{
		OverallScore:    req.OverallScore,
		GeneralFeedback: req.GeneralFeedback,
	}

	// nil slice pointer: the key was absent, the stored scores stay as they
	// are. Non-nil (even pointing at an empty slice): replace wholesale.
	if req.CriteriaScores != nil {
		scores, err := s.validateCriteriaScores(*req.CriteriaScores)
		if err != nil {
			s.handleServiceError(w, op, err)
			return
		}

		upd.ReplaceScores = true
		upd.Scores = scores
	}

	evaluation, err := s.evaluationService.Update(r.Context(), caller.ID, evaluationID, upd)
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	s.respond(w, http.StatusOK, map[string]evaluationResponse{"evaluation": toEvaluationResponse(evaluation)})
}

func (s *Server) DeleteEvaluation(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.DeleteEvaluation"

	caller, err := callerFromContext(r.Context())
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	evaluationID, err := urlParamID(r, "evaluationID")
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	if err := s.evaluationService.Delete(r.Context(), caller.ID, evaluationID); err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	s.respond(w, http.StatusNoContent, nil)
}

// validateCriteriaScores checks every entry before anything is written: one
// malformed element rejects the whole set.
func (s *Server) validateCriteriaScores(inputs []criterionScoreInput) ([]domain.CriterionScore, error) {
	scores := make([]domain.CriterionScore, len(inputs))

	for i, in := range inputs {
		if err := validation.ValidateStruct(in); err != nil {
			return nil, fmt.Errorf("criteria score at index %d: %w", i, err)
		}

		scores[i] = domain.CriterionScore{
			RubricCriterionID: *in.RubricCriteriaID,
			Score:             *in.Score,
			Feedback:          in.Feedback,
		}
	}

	return scores, nil
}

// respond is a helper function to encode data to JSON and write it to the response.
// It centralizes setting the Content-Type header and writing the status code.
func (s *Server) respond(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)

	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			s.log.Error("failed to encode response", sl.Err(err))
		}
	}
}

// respondError is a convenience wrapper around respond for sending simple error messages.
func (s *Server) respondError(w http.ResponseWriter, code int, message string) {
	s.respond(w, code, map[string]string{"error": message})
}

// decodeAndValidate is a helper that deserializes a JSON request body into a struct
// and then runs validation checks on it.
func (s *Server) decodeAndValidate(r *http.Request, v interface{}) error {
	if err := s.decode(r.Body, v); err != nil {
		return err
	}

	if err := validation.ValidateStruct(v); err != nil {
		return err
	}

	return nil
}

// decode is a helper function to decode a JSON request body.
func (s *Server) decode(body io.ReadCloser, v interface{}) error {
	defer body.Close()

	if err := json.NewDecoder(body).Decode(v); err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrInvalidRequest, err)
	}

	return nil
}

// urlParamID parses a positive integer id out of a chi route parameter.
func urlParamID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid %s", apperrors.ErrInvalidRequest, name)
	}

	return id, nil
}

// handleServiceError provides centralized error handling for all HTTP handlers.
// It logs the internal error and maps it to a user-friendly HTTP response.
// Existence checks run before permission checks in the services, so a 404 here
// always means the entity is genuinely absent.
func (s *Server) handleServiceError(w http.ResponseWriter, op string, err error) {
	log := s.log.With(slog.String("op", op))
	log.Error("service error occurred", sl.Err(err))

	var (
		evalExistsErr *apperrors.EvaluationExistsError
		validationErr *validation.ValidationError
	)

	switch {
	case errors.As(err, &validationErr):
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("%s: %s", apperrors.ErrValidation, validationErr.Error()))
	case errors.Is(err, apperrors.ErrValidation):
		s.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, apperrors.ErrTeamMismatch):
		s.respondError(w, http.StatusBadRequest, apperrors.ErrTeamMismatch.Error())
	case errors.Is(err, apperrors.ErrInvalidRequest):
		s.respondError(w, http.StatusBadRequest, "invalid request body")
	case errors.Is(err, apperrors.ErrNoSession):
		s.respondError(w, http.StatusUnauthorized, apperrors.ErrNoSession.Error())
	case errors.Is(err, apperrors.ErrForbidden):
		s.respondError(w, http.StatusForbidden, apperrors.ErrForbidden.Error())
	case errors.Is(err, apperrors.ErrNotFound):
		s.respondError(w, http.StatusNotFound, apperrors.ErrNotFound.Error())
	case errors.As(err, &evalExistsErr):
		s.respondError(w, http.StatusConflict, "submission already has an evaluation, use the update path")
	case errors.Is(err, apperrors.ErrMilestoneNotOpen):
		s.respondError(w, http.StatusConflict, apperrors.ErrMilestoneNotOpen.Error())
	default:
		s.respondError(w, http.StatusInternalServerError, "internal server error")
	}
}
