package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/pollcard/pkg/errors"
	"github.com/matzehuels/pollcard/pkg/pipeline"
	"github.com/matzehuels/pollcard/pkg/render/card"
	"github.com/matzehuels/pollcard/pkg/results"
	"github.com/matzehuels/pollcard/pkg/survey"
)

type healthResponse struct {
	Status string `json:"status"`
}

type questionResponse struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Date      string `json:"date"`
	CreatedAt string `json:"created_at"`
}

type responseRequest struct {
	QuestionID string `json:"question_id"`
	Choice     string `json:"choice"`
}

type responseCreated struct {
	ID string `json:"id"`
}

type errorResponse struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

func (s *Server) latestQuestion(w http.ResponseWriter, r *http.Request) {
	q, err := s.survey.LatestQuestion(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, questionResponse{
		ID:        q.ID,
		Text:      q.Text,
		Date:      q.Date(),
		CreatedAt: q.CreatedAt.UTC().Format(time.RFC3339),
	})
}

// createResponse records an anonymous response.
func (s *Server) createResponse(w http.ResponseWriter, r *http.Request) {
	var req responseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.QuestionID == "" {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "question_id is required"))
		return
	}
	choice, err := survey.ParseChoice(req.Choice)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp, err := s.survey.RecordResponse(r.Context(), "", req.QuestionID, choice)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, responseCreated{ID: resp.ID})
}

// render draws an arbitrary card request.
func (s *Server) render(w http.ResponseWriter, r *http.Request) {
	kind, err := kindParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req card.Request
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeImage(w, r, req, kind)
}

// resultsImage draws the current results of a stored question.
func (s *Server) resultsImage(w http.ResponseWriter, r *http.Request) {
	kind, err := kindParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var selected survey.Choice
	if opt := r.URL.Query().Get("option"); opt != "" && opt != results.NoOptionName {
		if selected, err = survey.ParseChoice(opt); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	req, err := s.survey.BuildRequest(r.Context(), chi.URLParam(r, "id"), selected)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeImage(w, r, req, kind)
}

func (s *Server) writeImage(w http.ResponseWriter, r *http.Request, req card.Request, kind pipeline.Kind) {
	data, hit, err := s.renderImage(r.Context(), req, kind)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	if hit {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) renderImage(ctx context.Context, req card.Request, kind pipeline.Kind) ([]byte, bool, error) {
	opts := pipeline.Options{Glitch: s.Glitch}
	if !s.Persist {
		return s.runner.RenderWithCacheInfo(ctx, req, kind, opts)
	}
	opts.Kinds = []pipeline.Kind{kind}
	opts.Persist = true
	res, err := s.runner.Execute(ctx, req, opts)
	if err != nil {
		return nil, false, err
	}
	return res.Image(kind), res.CacheHit, nil
}

func kindParam(r *http.Request) (pipeline.Kind, error) {
	k := r.URL.Query().Get("kind")
	if k == "" {
		return pipeline.KindMain, nil
	}
	return pipeline.ParseKind(k)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	msg := errors.UserMessage(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
		if status == http.StatusInternalServerError {
			msg = "internal error"
		}
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
