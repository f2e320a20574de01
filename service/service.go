// Package service exposes the extraction and simulation pipeline over HTTP
// and MCP. Operations work on stored sessions: a document is uploaded and
// extracted once, then analyzed and simulated by session id.
package service

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/hazyhaar/surveypipe/chunker"
	"github.com/hazyhaar/surveypipe/docload"
	"github.com/hazyhaar/surveypipe/extract"
	"github.com/hazyhaar/surveypipe/pathsim"
	"github.com/hazyhaar/surveypipe/session"
	"github.com/hazyhaar/surveypipe/skiplogic"
	"github.com/hazyhaar/surveypipe/survey"
)

// Service ties the document loaders, the extraction pipeline, and the
// session store together.
type Service struct {
	cfg       *Config
	store     *session.Store
	extractor *extract.Extractor
	logger    *slog.Logger
}

// Option customises Service construction.
type Option func(*Service)

// WithLogger sets the structured logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithCompleter overrides the LLM client, bypassing the config-derived one.
func WithCompleter(c extract.Completer) Option {
	return func(s *Service) {
		s.extractor = extract.New(c, extract.WithLogger(s.logger))
	}
}

// New creates the service and initialises the session store schema.
func New(cfg *Config, db *sql.DB, opts ...Option) (*Service, error) {
	s := &Service{
		cfg:    cfg,
		store:  session.NewStore(db),
		logger: slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	if s.extractor == nil {
		client := extract.NewClient(extract.ClientConfig{
			Endpoint: cfg.LLM.Endpoint,
			Model:    cfg.LLM.Model,
			APIKey:   cfg.LLM.APIKey,
			Timeout:  cfg.LLMTimeout(),
			Logger:   s.logger,
		})
		s.extractor = extract.New(client, extract.WithLogger(s.logger))
	}
	if err := s.store.Init(); err != nil {
		return nil, fmt.Errorf("init session store: %w", err)
	}
	return s, nil
}

// ExtractFile parses an uploaded questionnaire document, runs the
// extraction pipeline, and stores the result as a new session.
// Supported extensions: .docx, .pdf.
func (s *Service) ExtractFile(ctx context.Context, filename string, r io.Reader) (*session.Record, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	tmp, err := os.CreateTemp("", "surveypipe-*"+ext)
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write upload: %w", err)
	}
	tmp.Close()

	var sections []survey.Section
	switch ext {
	case ".docx":
		sections, err = docload.ParseDOCX(tmp.Name())
	case ".pdf":
		sections, err = docload.ParsePDF(tmp.Name())
	default:
		return nil, fmt.Errorf("unsupported file type %q (use .docx or .pdf)", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}

	chunks := chunker.ChunkSections(sections, s.cfg.ChunkChars)
	questions, err := s.extractor.Extract(ctx, chunks)
	if err != nil {
		return nil, err
	}

	rec := &session.Record{Filename: filepath.Base(filename), Questions: questions}
	if err := s.store.Save(ctx, rec); err != nil {
		return nil, err
	}
	s.logger.Info("document extracted",
		"session", rec.ID,
		"filename", rec.Filename,
		"sections", len(sections),
		"chunks", len(chunks),
		"questions", len(questions))
	return rec, nil
}

// Session returns a stored session by id.
func (s *Service) Session(ctx context.Context, id string) (*session.Record, error) {
	return s.store.Get(ctx, id)
}

// Sessions lists stored sessions, most recently updated first.
func (s *Service) Sessions(ctx context.Context) ([]session.Summary, error) {
	return s.store.List(ctx)
}

// DeleteSession removes a stored session.
func (s *Service) DeleteSession(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

func (s *Service) questions(ctx context.Context, id string) ([]survey.Question, error) {
	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return rec.Questions, nil
}

// GraphResult is the graph view of one session.
type GraphResult struct {
	Graph   *skiplogic.Graph      `json:"graph"`
	DOT     string                `json:"dot"`
	Details []skiplogic.DetailRow `json:"skip_rule_details"`
}

// Graph builds the skip-logic graph for a session. mode is "skip_only" or
// "full_flow", orientation "TB" or "LR".
func (s *Service) Graph(ctx context.Context, id string, mode skiplogic.ViewMode, orientation string) (*GraphResult, error) {
	questions, err := s.questions(ctx, id)
	if err != nil {
		return nil, err
	}
	if mode == "" {
		mode = skiplogic.ViewFullFlow
	}
	if orientation == "" {
		orientation = "TB"
	}
	g := skiplogic.BuildGraph(questions)
	return &GraphResult{
		Graph:   g,
		DOT:     skiplogic.DOT(g, mode, orientation),
		Details: skiplogic.DetailRows(questions, g),
	}, nil
}

// Analyze runs the structural analysis for a session.
func (s *Service) Analyze(ctx context.Context, id string) (*skiplogic.Analysis, error) {
	questions, err := s.questions(ctx, id)
	if err != nil {
		return nil, err
	}
	g := skiplogic.BuildGraph(questions)
	a := skiplogic.Analyze(g, questions)
	return &a, nil
}

// Simulate runs the full simulation pipeline for a session.
func (s *Service) Simulate(ctx context.Context, id string) (*pathsim.SimulationResult, error) {
	questions, err := s.questions(ctx, id)
	if err != nil {
		return nil, err
	}
	return pathsim.Simulate(questions), nil
}

// Trace follows the single respondent path for the given answer selections.
func (s *Service) Trace(ctx context.Context, id string, selections map[string]string) (*pathsim.Path, error) {
	questions, err := s.questions(ctx, id)
	if err != nil {
		return nil, err
	}
	g := skiplogic.BuildGraph(questions)
	p := pathsim.TracePath(questions, g, selections)
	return &p, nil
}

// Scenarios synthesizes the branch-covering test scenarios for a session.
func (s *Service) Scenarios(ctx context.Context, id string) ([]pathsim.TestScenario, error) {
	questions, err := s.questions(ctx, id)
	if err != nil {
		return nil, err
	}
	g := skiplogic.BuildGraph(questions)
	return pathsim.GenerateScenarios(questions, g), nil
}
