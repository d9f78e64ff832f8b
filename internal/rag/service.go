// Package rag answers questions with retrieval-augmented generation:
// retrieve similar chunks, build a prompt, call the generative model, store the exchange.
package rag

import (
	"context"
	"errors"
	"strings"

	"github.com/hyperjump/tanya/internal/apperr"
	"github.com/hyperjump/tanya/internal/config"
	"github.com/hyperjump/tanya/internal/embedding"
	"github.com/hyperjump/tanya/internal/generator"
	"github.com/hyperjump/tanya/internal/models"
	"github.com/hyperjump/tanya/internal/storage"
	"github.com/hyperjump/tanya/internal/vector"
	"go.uber.org/zap"
)

const opAnswer = "rag.answer"

// Store is the persistence the service needs.
type Store interface {
	GetUser(ctx context.Context, id int64) (*models.User, error)
	CreateMessage(ctx context.Context, m *models.Message) error
}

// Service answers user queries.
type Service struct {
	store     Store
	embedder  embedding.Embedder
	index     vector.VectorIndex
	generator generator.Generator
	cfg       config.RAGConfig
	logger    *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets a logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService creates a query service. Zero values in cfg fall back to the config defaults.
func NewService(store Store, embedder embedding.Embedder, index vector.VectorIndex, gen generator.Generator, cfg config.RAGConfig, opts ...Option) *Service {
	if cfg.TopK <= 0 {
		cfg.TopK = config.DefaultTopK
	}
	if cfg.EmptyContext == "" {
		cfg.EmptyContext = config.DefaultEmptyContext
	}
	if cfg.Scope == "" {
		cfg.Scope = config.ScopeShared
	}
	s := &Service{
		store:     store,
		embedder:  embedder,
		index:     index,
		generator: gen,
		cfg:       cfg,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Answer validates the request, retrieves context, generates an answer and records it in the user's history.
// Nothing is recorded when validation, retrieval or generation fails.
func (s *Service) Answer(ctx context.Context, userID int64, query string) (*models.Answer, error) {
	if strings.TrimSpace(query) == "" {
		return nil, apperr.New(apperr.KindValidation, opAnswer, "Query cannot be empty.")
	}
	if userID <= 0 {
		return nil, apperr.New(apperr.KindValidation, opAnswer, "user_id is required")
	}
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperr.New(apperr.KindNotFound, opAnswer, "User not found.")
		}
		return nil, apperr.Wrap(apperr.KindInternal, opAnswer, err)
	}

	retrieved, err := s.Retrieve(ctx, userID, query)
	if err != nil {
		return nil, err
	}

	answer, err := s.generator.Generate(ctx, BuildPrompt(query, retrieved))
	if err != nil {
		return nil, apperr.WrapMsg(apperr.KindGeneration, opAnswer, "Error generating answer", err)
	}
	if strings.TrimSpace(answer) == "" {
		return nil, apperr.New(apperr.KindGeneration, opAnswer, "Error generating answer: empty response")
	}

	msg := &models.Message{UserID: userID, Question: query, Answer: answer}
	if err := s.store.CreateMessage(ctx, msg); err != nil {
		s.logger.Warn("failed to save chat history", zap.Int64("user_id", userID), zap.Error(err))
	}
	s.logger.Debug("query answered",
		zap.Int64("user_id", userID),
		zap.Int("context_len", len(retrieved)),
		zap.String("model", s.generator.Model()))

	return &models.Answer{Query: query, Context: retrieved, Answer: answer}, nil
}

// Retrieve returns the texts of the top-k chunks for query joined by newlines,
// or the empty-context sentinel when nothing matches.
func (s *Service) Retrieve(ctx context.Context, userID int64, query string) (string, error) {
	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return "", apperr.WrapMsg(apperr.KindRetrieval, opAnswer, "Error fetching context",
			apperr.Wrap(apperr.KindEmbedding, opAnswer, err))
	}
	var filter *vector.Filter
	if s.cfg.Scope == config.ScopeOwner {
		filter = &vector.Filter{OwnerID: userID}
	}
	results, err := s.index.Search(ctx, vec, s.cfg.TopK, filter)
	if err != nil {
		if errors.Is(err, vector.ErrModelMismatch) {
			return "", apperr.WrapMsg(apperr.KindModelMismatch, opAnswer, "Error fetching context", err)
		}
		return "", apperr.WrapMsg(apperr.KindRetrieval, opAnswer, "Error fetching context", err)
	}
	var b strings.Builder
	for _, r := range results {
		b.WriteString(r.Text)
		b.WriteByte('\n')
	}
	if text := strings.TrimSpace(b.String()); text != "" {
		return text, nil
	}
	return s.cfg.EmptyContext, nil
}

