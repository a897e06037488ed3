package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"mime"
	"net/http"
	"strings"
	"time"

	"articlegen/internal/application/port/output"
	"articlegen/internal/domain/entity"

	"github.com/go-chi/chi/v5"
)

const emptyTopicMessage = "Please enter a topic."

type apiResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

type acceptedRun struct {
	ID     string           `json:"id"`
	Status entity.RunStatus `json:"status"`
}

type runView struct {
	*entity.PipelineRun
	HTML        template.HTML `json:"html,omitempty"`
	DownloadURL string        `json:"downloadUrl,omitempty"`
	Filename    string        `json:"filename,omitempty"`
}

func encode(w http.ResponseWriter, statusCode int, data any, err error) {
	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		w.WriteHeader(statusCode)
		_ = json.NewEncoder(w).Encode(apiResponse{Status: "ERROR", Message: err.Error()})
		return
	}
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(apiResponse{Status: "OK", Data: data})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	active, busy := s.runs.Active()
	if err := indexTemplate.Execute(w, struct {
		ActiveRun string
		Busy      bool
	}{active, busy}); err != nil {
		s.logger.Error("Render index failed", "error", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	encode(w, http.StatusOK, map[string]string{"status": "ok"}, nil)
}

func (s *Server) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	topic, err := readTopic(w, r)
	if err != nil {
		encode(w, http.StatusBadRequest, nil, err)
		return
	}
	if topic == "" {
		encode(w, http.StatusBadRequest, nil, errors.New(emptyTopicMessage))
		return
	}

	run, err := s.runs.Start(topic)
	if err != nil {
		if errors.Is(err, entity.ErrRunInFlight) {
			encode(w, http.StatusConflict, nil, errors.New("an article is already being generated, please wait for it to finish"))
			return
		}
		encode(w, http.StatusInternalServerError, nil, err)
		return
	}

	s.logger.Info("Run accepted", "run", run.ID, "topic", topic)
	s.wg.Add(1)
	go s.execute(run.ID, topic)

	w.Header().Set("Location", "/api/runs/"+run.ID)
	encode(w, http.StatusAccepted, acceptedRun{ID: run.ID, Status: run.Status}, nil)
}

// execute runs the pipeline detached from the request and records the
// outcome in the registry.
func (s *Server) execute(id, topic string) {
	defer s.wg.Done()
	log := s.logger.WithFields(map[string]any{"run": id, "topic": topic})
	defer func() {
		if r := recover(); r != nil {
			log.Error("Run panicked", "panic", r)
			s.runs.Fail(id, fmt.Errorf("internal error: %v", r))
		}
	}()

	progress := output.ProgressFunc(func(ev entity.ProgressEvent) {
		s.runs.AppendEvent(id, ev)
	})

	start := time.Now()
	article, err := s.generator.Generate(s.baseCtx, topic, progress)
	if err != nil {
		log.Error("Run failed", "error", err, "duration", time.Since(start).String())
		s.runs.Fail(id, err)
		return
	}

	log.Info("Run completed", "duration", time.Since(start).String())
	s.runs.Complete(id, article)
}

func readTopic(w http.ResponseWriter, r *http.Request) (string, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var body struct {
			Topic string `json:"topic"`
		}
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&body); err != nil {
			return "", fmt.Errorf("invalid JSON body: %w", err)
		}
		return strings.TrimSpace(body.Topic), nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<16)
	if err := r.ParseForm(); err != nil {
		return "", fmt.Errorf("invalid form: %w", err)
	}
	return strings.TrimSpace(r.PostForm.Get("topic")), nil
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.runs.Get(chi.URLParam(r, "id"))
	if err != nil {
		encode(w, http.StatusNotFound, nil, err)
		return
	}

	view := runView{PipelineRun: run}
	if run.Status == entity.RunStatusCompleted && run.Article != nil {
		html, err := s.render(run.Article.Markdown())
		if err != nil {
			encode(w, http.StatusInternalServerError, nil, err)
			return
		}
		view.HTML = html
		view.DownloadURL = "/api/runs/" + run.ID + "/article.md"
		view.Filename = run.Article.Filename()
	}
	encode(w, http.StatusOK, view, nil)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	run, err := s.runs.Get(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if run.Status != entity.RunStatusCompleted || run.Article == nil {
		http.Error(w, "no article available for this run", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": run.Article.Filename(),
	}))
	_, _ = w.Write([]byte(run.Article.Markdown()))
}
