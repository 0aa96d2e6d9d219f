package http

import (
	"github.com/mentor-bridge/mentor-bridge-hub/internal/application/command"
	"github.com/mentor-bridge/mentor-bridge-hub/internal/application/query"
	"github.com/mentor-bridge/mentor-bridge-hub/internal/domain/availability"
	"github.com/mentor-bridge/mentor-bridge-hub/internal/domain/matching"
	"github.com/mentor-bridge/mentor-bridge-hub/internal/domain/profile"
	"github.com/mentor-bridge/mentor-bridge-hub/internal/domain/session"
	"github.com/mentor-bridge/mentor-bridge-hub/internal/domain/shared"
	"github.com/mentor-bridge/mentor-bridge-hub/pkg/logger"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// validate checks request payload shape before anything reaches the domain.
// Domain rules (id formats, interval invariants, role checks) stay in the
// domain; these tags only catch obviously malformed bodies early.
var validate = validator.New(validator.WithRequiredStructEnabled())

// decodeJSON reads and decodes a request body with a size cap.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	body := r.Body
	if s.config.MaxBodyBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, s.config.MaxBodyBytes)
	}

	data, err := io.ReadAll(body)
	if err != nil {
		writeJSONError(w, http.StatusRequestEntityTooLarge, "body_too_large", "Request body is too large")
		return false
	}

	if err := json.Unmarshal(data, dst); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_json", "Request body is not valid JSON")
		return false
	}

	if err := validate.Struct(dst); err != nil {
		writeJSONError(w, http.StatusBadRequest, "validation_error", err.Error())
		return false
	}

	return true
}

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH & STATUS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleRoot serves the root endpoint with basic API information.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	info := map[string]interface{}{
		"name":        "Mentor Bridge Hub API",
		"version":     "v1",
		"description": "Mentor matching and session booking for the Mentor Bridge community",
		"endpoints": map[string]string{
			"health":   "/health",
			"matches":  "/api/v1/matches",
			"slots":    "/api/v1/mentors/{id}/slots",
			"sessions": "/api/v1/sessions",
		},
	}

	writeJSON(w, http.StatusOK, info)
}

// handleHealth handles the health check endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker != nil {
		status := s.deps.HealthChecker.Check(r.Context())
		if !status.Healthy {
			writeJSON(w, http.StatusServiceUnavailable, status)
			return
		}
		writeJSON(w, http.StatusOK, status)
		return
	}

	// Default health response
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"uptime":  s.Uptime().String(),
		"version": "v1",
	})
}

// handleReady handles the readiness probe endpoint (for Kubernetes).
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker != nil {
		status := s.deps.HealthChecker.Check(r.Context())
		if !status.Ready {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not_ready",
				"reason": status.Message,
			})
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleLive handles the liveness probe endpoint (for Kubernetes).
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// ══════════════════════════════════════════════════════════════════════════════
// MATCHING HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type weightsPayload struct {
	Goals           float64 `json:"goals" validate:"gte=0"`
	Communication   float64 `json:"communication" validate:"gte=0"`
	Availability    float64 `json:"availability" validate:"gte=0"`
	Style           float64 `json:"style" validate:"gte=0"`
	Neurodivergence float64 `json:"neurodivergence" validate:"gte=0"`
}

type matchRequest struct {
	Student          profile.RawStudentProfile  `json:"student" validate:"required"`
	Mentors          []profile.RawMentorProfile `json:"mentors,omitempty"`
	Weights          *weightsPayload            `json:"weights,omitempty"`
	MinResults       int                        `json:"min_results,omitempty" validate:"gte=0"`
	MaxResults       int                        `json:"max_results,omitempty" validate:"gte=0"`
	QualityThreshold float64                    `json:"quality_threshold,omitempty" validate:"gte=0,lte=100"`
}

type matchPayload struct {
	MentorID     string             `json:"mentor_id"`
	DisplayName  string             `json:"display_name"`
	Score        float64            `json:"score"`
	Reasons      []string           `json:"reasons"`
	Breakdown    matching.Breakdown `json:"breakdown"`
	RankPosition int                `json:"rank_position"`
}

type matchMetaPayload struct {
	Weights          weightsPayload `json:"weights"`
	WeightsFellBack  bool           `json:"weights_fell_back,omitempty"`
	QualityThreshold float64        `json:"quality_threshold"`
	Considered       int            `json:"considered"`
	Returned         int            `json:"returned"`
	Disclaimer       string         `json:"disclaimer,omitempty"`
	GeneratedAt      time.Time      `json:"generated_at"`
}

type matchResponse struct {
	Matches []matchPayload   `json:"matches"`
	Meta    matchMetaPayload `json:"meta"`
}

func toMatchResponse(result *query.FindMatchesResult) matchResponse {
	matches := make([]matchPayload, 0, len(result.Matches))
	for _, m := range result.Matches {
		matches = append(matches, matchPayload{
			MentorID:     m.MentorID.String(),
			DisplayName:  m.DisplayName,
			Score:        float64(m.Score),
			Reasons:      m.Reasons,
			Breakdown:    m.Breakdown,
			RankPosition: m.RankPosition,
		})
	}

	return matchResponse{
		Matches: matches,
		Meta: matchMetaPayload{
			Weights: weightsPayload{
				Goals:           result.Meta.Weights.Goals,
				Communication:   result.Meta.Weights.Communication,
				Availability:    result.Meta.Weights.Availability,
				Style:           result.Meta.Weights.Style,
				Neurodivergence: result.Meta.Weights.Neurodivergence,
			},
			WeightsFellBack:  result.Meta.WeightsFellBack,
			QualityThreshold: result.Meta.QualityThreshold,
			Considered:       result.Meta.Considered,
			Returned:         result.Meta.Returned,
			Disclaimer:       result.Meta.Disclaimer,
			GeneratedAt:      result.Meta.GeneratedAt,
		},
	}
}

// handleFindMatches handles POST /api/v1/matches
func (s *Server) handleFindMatches(w http.ResponseWriter, r *http.Request) {
	if s.deps.FindMatchesHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Matching handler not configured")
		return
	}

	var req matchRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	q := query.FindMatchesQuery{
		Student:          req.Student,
		Mentors:          req.Mentors,
		MinResults:       req.MinResults,
		MaxResults:       req.MaxResults,
		QualityThreshold: req.QualityThreshold,
	}
	if req.Weights != nil {
		q.Weights = &matching.Weights{
			Goals:           req.Weights.Goals,
			Communication:   req.Weights.Communication,
			Availability:    req.Weights.Availability,
			Style:           req.Weights.Style,
			Neurodivergence: req.Weights.Neurodivergence,
		}
	}

	result, err := s.deps.FindMatchesHandler.Handle(r.Context(), q)
	if err != nil {
		s.logger.Error("failed to find matches", logger.Err(err), logger.StudentID(req.Student.ID))
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toMatchResponse(result))
}

// ══════════════════════════════════════════════════════════════════════════════
// PROFILE HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleRegisterStudent handles POST /api/v1/students
func (s *Server) handleRegisterStudent(w http.ResponseWriter, r *http.Request) {
	if s.deps.RegisterProfileHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Profile handler not configured")
		return
	}

	var raw profile.RawStudentProfile
	if !s.decodeJSON(w, r, &raw) {
		return
	}

	result, err := s.deps.RegisterProfileHandler.HandleStudent(r.Context(), command.RegisterStudentProfileCommand{Profile: raw})
	if err != nil {
		s.logger.Error("failed to register student", logger.Err(err), logger.StudentID(raw.ID))
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// handleRegisterMentor handles POST /api/v1/mentors
func (s *Server) handleRegisterMentor(w http.ResponseWriter, r *http.Request) {
	if s.deps.RegisterProfileHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Profile handler not configured")
		return
	}

	var raw profile.RawMentorProfile
	if !s.decodeJSON(w, r, &raw) {
		return
	}

	result, err := s.deps.RegisterProfileHandler.HandleMentor(r.Context(), command.RegisterMentorProfileCommand{Profile: raw})
	if err != nil {
		s.logger.Error("failed to register mentor", logger.Err(err), logger.MentorID(raw.ID))
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// ══════════════════════════════════════════════════════════════════════════════
// AVAILABILITY HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type slotsPayload struct {
	MentorID        string                  `json:"mentor_id"`
	Date            string                  `json:"date"`
	Timezone        string                  `json:"timezone"`
	DurationMinutes int                     `json:"duration_minutes"`
	Slots           []availability.TimeSlot `json:"slots"`
}

// handleGetSlots handles GET /api/v1/mentors/{id}/slots?date=YYYY-MM-DD&duration=45
func (s *Server) handleGetSlots(w http.ResponseWriter, r *http.Request) {
	if s.deps.GetAvailableSlotsHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Slots handler not configured")
		return
	}

	mentorID := r.PathValue("id")
	date, err := availability.ParseDate(getQueryParam(r, "date", ""))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "date must be in YYYY-MM-DD format")
		return
	}

	q := query.GetAvailableSlotsQuery{
		MentorID:        mentorID,
		Date:            date,
		DurationMinutes: getQueryParamInt(r, "duration", 0),
	}

	result, err := s.deps.GetAvailableSlotsHandler.Handle(r.Context(), q)
	if err != nil {
		s.logger.Error("failed to get slots", logger.Err(err), logger.MentorID(mentorID))
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, slotsPayload{
		MentorID:        result.MentorID.String(),
		Date:            result.Date.String(),
		Timezone:        string(result.Timezone),
		DurationMinutes: result.DurationMinutes,
		Slots:           result.Slots,
	})
}

type timeRangePayload struct {
	Start string `json:"start" validate:"required"`
	End   string `json:"end" validate:"required"`
}

type weeklyBlockPayload struct {
	Day   int    `json:"day" validate:"gte=0,lte=6"`
	Start string `json:"start" validate:"required"`
	End   string `json:"end" validate:"required"`
}

type exceptionPayload struct {
	Date   string             `json:"date" validate:"required"`
	Kind   string             `json:"kind" validate:"required,oneof=blocked override"`
	Blocks []timeRangePayload `json:"blocks,omitempty"`
}

type availabilityRequest struct {
	Timezone          string               `json:"timezone" validate:"required"`
	Durations         []int                `json:"durations" validate:"required,min=1,dive,gt=0"`
	BufferMinutes     int                  `json:"buffer_minutes" validate:"gte=0"`
	MaxSessionsPerDay int                  `json:"max_sessions_per_day" validate:"gte=0"`
	WeeklyBlocks      []weeklyBlockPayload `json:"weekly_blocks"`
	Exceptions        []exceptionPayload   `json:"exceptions,omitempty"`
}

// toDomain converts the request payload into the domain schedule.
func (req availabilityRequest) toDomain(mentorID string) (availability.MentorAvailability, error) {
	avail := availability.MentorAvailability{
		MentorID:          shared.MentorID(mentorID),
		Timezone:          shared.Timezone(req.Timezone),
		Durations:         req.Durations,
		BufferMinutes:     req.BufferMinutes,
		MaxSessionsPerDay: req.MaxSessionsPerDay,
	}

	for _, b := range req.WeeklyBlocks {
		start, err := shared.ParseTimeOfDay(b.Start)
		if err != nil {
			return avail, err
		}
		end, err := shared.ParseTimeOfDay(b.End)
		if err != nil {
			return avail, err
		}
		avail.WeeklyBlocks = append(avail.WeeklyBlocks, availability.WeeklyBlock{
			Day:   time.Weekday(b.Day),
			Range: availability.TimeRange{Start: start, End: end},
		})
	}

	for _, e := range req.Exceptions {
		date, err := availability.ParseDate(e.Date)
		if err != nil {
			return avail, err
		}
		exception := availability.Exception{
			Date: date,
			Kind: availability.ExceptionKind(e.Kind),
		}
		for _, b := range e.Blocks {
			start, err := shared.ParseTimeOfDay(b.Start)
			if err != nil {
				return avail, err
			}
			end, err := shared.ParseTimeOfDay(b.End)
			if err != nil {
				return avail, err
			}
			exception.Blocks = append(exception.Blocks, availability.TimeRange{Start: start, End: end})
		}
		avail.Exceptions = append(avail.Exceptions, exception)
	}

	return avail, nil
}

// handleSaveAvailability handles PUT /api/v1/mentors/{id}/availability
func (s *Server) handleSaveAvailability(w http.ResponseWriter, r *http.Request) {
	if s.deps.SaveAvailabilityHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Availability handler not configured")
		return
	}

	mentorID := r.PathValue("id")

	var req availabilityRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	avail, err := req.toDomain(mentorID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	cmd := command.SaveAvailabilityCommand{
		Actor:        actorFromRequest(r),
		Availability: avail,
	}

	result, err := s.deps.SaveAvailabilityHandler.Handle(r.Context(), cmd)
	if err != nil {
		s.logger.Error("failed to save availability", logger.Err(err), logger.MentorID(mentorID))
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ══════════════════════════════════════════════════════════════════════════════
// SESSION HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type sessionPayload struct {
	ID                string                     `json:"id"`
	StudentID         string                     `json:"student_id"`
	MentorID          string                     `json:"mentor_id"`
	Status            string                     `json:"status"`
	RequestedStart    time.Time                  `json:"requested_start"`
	RequestedEnd      time.Time                  `json:"requested_end"`
	ConfirmedStart    *time.Time                 `json:"confirmed_start,omitempty"`
	ConfirmedEnd      *time.Time                 `json:"confirmed_end,omitempty"`
	StudentTimezone   string                     `json:"student_timezone"`
	MentorTimezone    string                     `json:"mentor_timezone"`
	Connection        string                     `json:"connection"`
	RescheduleOptions []session.RescheduleOption `json:"reschedule_options,omitempty"`
	Note              string                     `json:"note,omitempty"`
	StatusReason      string                     `json:"status_reason,omitempty"`
	CreatedAt         time.Time                  `json:"created_at"`
	UpdatedAt         time.Time                  `json:"updated_at"`
}

func toSessionPayload(s *session.Session) sessionPayload {
	return sessionPayload{
		ID:                s.ID.String(),
		StudentID:         s.StudentID.String(),
		MentorID:          s.MentorID.String(),
		Status:            string(s.Status),
		RequestedStart:    s.RequestedStart,
		RequestedEnd:      s.RequestedEnd,
		ConfirmedStart:    s.ConfirmedStart,
		ConfirmedEnd:      s.ConfirmedEnd,
		StudentTimezone:   string(s.StudentTimezone),
		MentorTimezone:    string(s.MentorTimezone),
		Connection:        string(s.Connection),
		RescheduleOptions: s.RescheduleOptions,
		Note:              s.Note,
		StatusReason:      s.StatusReason,
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
	}
}

type bookSessionRequest struct {
	MentorID   string    `json:"mentor_id" validate:"required"`
	Start      time.Time `json:"start" validate:"required"`
	End        time.Time `json:"end" validate:"required"`
	Connection string    `json:"connection" validate:"required"`
	Note       string    `json:"note,omitempty"`
}

// handleBookSession handles POST /api/v1/sessions
func (s *Server) handleBookSession(w http.ResponseWriter, r *http.Request) {
	if s.deps.BookSessionHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Booking handler not configured")
		return
	}

	actor := actorFromRequest(r)
	if !actor.IsValid() {
		writeJSONError(w, http.StatusUnauthorized, "unauthorized", "X-Actor-ID and X-Actor-Role headers are required")
		return
	}
	if !actor.IsStudent() {
		writeJSONError(w, http.StatusForbidden, "forbidden", "Only students can request sessions")
		return
	}

	var req bookSessionRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	cmd := command.BookSessionCommand{
		StudentID:  actor.ID,
		MentorID:   req.MentorID,
		Start:      req.Start,
		End:        req.End,
		Connection: session.ConnectionPreference(req.Connection),
		Note:       req.Note,
	}

	result, err := s.deps.BookSessionHandler.Handle(r.Context(), cmd)
	if err != nil {
		s.logger.Error("failed to book session",
			logger.Err(err),
			logger.StudentID(actor.ID),
			logger.MentorID(req.MentorID),
		)
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// handleListSessions handles GET /api/v1/sessions
func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	if s.deps.ListSessionsHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Sessions handler not configured")
		return
	}

	statuses, err := parseStatuses(getQueryParam(r, "status", ""))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	q := query.ListSessionsQuery{
		Actor:           actorFromRequest(r),
		ParticipantID:   getQueryParam(r, "participant_id", ""),
		ParticipantRole: shared.Role(getQueryParam(r, "participant_role", "")),
		Statuses:        statuses,
		Limit:           getQueryParamInt(r, "limit", 50),
		Offset:          getQueryParamInt(r, "offset", 0),
	}

	result, err := s.deps.ListSessionsHandler.Handle(r.Context(), q)
	if err != nil {
		s.logger.Error("failed to list sessions", logger.Err(err))
		writeDomainError(w, err)
		return
	}

	payload := make([]sessionPayload, 0, len(result.Sessions))
	for _, sess := range result.Sessions {
		payload = append(payload, toSessionPayload(sess))
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"sessions": payload})
}

type rescheduleOptionPayload struct {
	Start time.Time `json:"start" validate:"required"`
	End   time.Time `json:"end" validate:"required"`
}

type transitionRequest struct {
	Kind        string                    `json:"kind" validate:"required"`
	Reason      string                    `json:"reason,omitempty"`
	Options     []rescheduleOptionPayload `json:"options,omitempty"`
	OptionIndex int                       `json:"option_index,omitempty" validate:"gte=0"`
}

// handleTransitionSession handles POST /api/v1/sessions/{id}/transitions
func (s *Server) handleTransitionSession(w http.ResponseWriter, r *http.Request) {
	if s.deps.TransitionSessionHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Transition handler not configured")
		return
	}

	sessionID := r.PathValue("id")

	var req transitionRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	kind, err := session.ParseTransitionKind(req.Kind)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	options := make([]session.RescheduleOption, 0, len(req.Options))
	for _, o := range req.Options {
		options = append(options, session.RescheduleOption{Start: o.Start, End: o.End})
	}

	cmd := command.TransitionSessionCommand{
		SessionID:   sessionID,
		Actor:       actorFromRequest(r),
		Kind:        kind,
		Reason:      req.Reason,
		Options:     options,
		OptionIndex: req.OptionIndex,
	}

	result, err := s.deps.TransitionSessionHandler.Handle(r.Context(), cmd)
	if err != nil {
		s.logger.Error("failed to transition session",
			logger.Err(err),
			logger.SessionID(sessionID),
			logger.String("kind", string(kind)),
		)
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ══════════════════════════════════════════════════════════════════════════════
// SESSION NOTE HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type notePayload struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

type addNoteRequest struct {
	Body string `json:"body" validate:"required"`
}

// handleGetSessionNotes handles GET /api/v1/sessions/{id}/notes
func (s *Server) handleGetSessionNotes(w http.ResponseWriter, r *http.Request) {
	if s.deps.GetSessionNotesHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Notes handler not configured")
		return
	}

	sessionID := r.PathValue("id")

	q := query.GetSessionNotesQuery{
		Actor:     actorFromRequest(r),
		SessionID: sessionID,
	}

	result, err := s.deps.GetSessionNotesHandler.Handle(r.Context(), q)
	if err != nil {
		s.logger.Error("failed to get session notes", logger.Err(err), logger.SessionID(sessionID))
		writeDomainError(w, err)
		return
	}

	notes := make([]notePayload, 0, len(result.Notes))
	for _, n := range result.Notes {
		notes = append(notes, notePayload{
			ID:        n.ID,
			SessionID: n.SessionID.String(),
			Body:      n.Body,
			CreatedAt: n.CreatedAt,
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"notes": notes})
}

// handleAddSessionNote handles POST /api/v1/sessions/{id}/notes
func (s *Server) handleAddSessionNote(w http.ResponseWriter, r *http.Request) {
	if s.deps.AddSessionNoteHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Notes handler not configured")
		return
	}

	sessionID := r.PathValue("id")

	var req addNoteRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	cmd := command.AddSessionNoteCommand{
		Actor:     actorFromRequest(r),
		SessionID: sessionID,
		Body:      req.Body,
	}

	result, err := s.deps.AddSessionNoteHandler.Handle(r.Context(), cmd)
	if err != nil {
		s.logger.Error("failed to add session note", logger.Err(err), logger.SessionID(sessionID))
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// ══════════════════════════════════════════════════════════════════════════════
// PARSING HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// parseStatuses parses a comma-separated status filter.
func parseStatuses(raw string) ([]session.Status, error) {
	if raw == "" {
		return nil, nil
	}

	parts := strings.Split(raw, ",")
	statuses := make([]session.Status, 0, len(parts))
	for _, part := range parts {
		status, err := session.ParseStatus(part)
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}
