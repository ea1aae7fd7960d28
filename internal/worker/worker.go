package worker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
	"unicode"

	"crusty-text/internal/ingest"
	"crusty-text/internal/model"
	"crusty-text/internal/store"
	"crusty-text/internal/textbuf"
	"crusty-text/internal/wordfreq"

	"github.com/go-shiori/go-readability"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Scraper defines the interface for downloading web pages.
// This allows us to mock the "Download" step in tests.
type Scraper interface {
	Scrape(url string, timeout time.Duration) (*readability.Article, error)
}

// DefaultScraper is the real implementation that uses the internet
type DefaultScraper struct{}

func (s *DefaultScraper) Scrape(url string, timeout time.Duration) (*readability.Article, error) {
	art, err := readability.FromURL(url, timeout)
	return &art, err
}

// Backend is everything the worker needs from storage: metadata, the job
// queue, and document bodies as an ingest.Source.
type Backend interface {
	store.Store
	ingest.Source
	PopQueue(ctx context.Context) (uuid.UUID, error)
}

type Worker struct {
	backend Backend
	logger  *zap.Logger
	scraper Scraper
	timeout time.Duration
}

// NewWorker initializes the worker with the DefaultScraper
func NewWorker(backend Backend, logger *zap.Logger) *Worker {
	return &Worker{
		backend: backend,
		logger:  logger,
		scraper: &DefaultScraper{},
		timeout: 30 * time.Second,
	}
}

// Start runs the worker loop until ctx is cancelled.
func (w *Worker) Start(ctx context.Context) {
	w.logger.Info("Worker started. Waiting for jobs...")

	for {
		id, err := w.backend.PopQueue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				w.logger.Info("Worker shutting down")
				return
			}
			w.logger.Error("Queue error", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}

		w.processJob(ctx, id)
	}
}

func (w *Worker) processJob(ctx context.Context, id uuid.UUID) {
	logger := w.logger.With(zap.String("job_id", id.String()))
	logger.Info("Processing started")

	doc, err := w.backend.Get(ctx, id)
	if err != nil {
		logger.Error("Job failed: document not found", zap.Error(err))
		return
	}

	buf, err := w.load(doc, logger)
	if err != nil {
		logger.Error("Ingestion failed", zap.Error(err))
		w.failJob(ctx, doc, err.Error())
		return
	}

	words, last := analyze(buf)
	if err := w.backend.SaveWords(ctx, doc.ID, words); err != nil {
		logger.Error("Failed to save word counts", zap.Error(err))
		w.failJob(ctx, doc, err.Error())
		return
	}

	doc.TokenCount = words.Total()
	doc.LastToken = last
	doc.Status = model.StatusAnalyzed
	doc.ErrorMessage = ""
	now := time.Now()
	doc.AnalyzedAt = &now

	if err := w.backend.Save(ctx, doc); err != nil {
		logger.Error("Failed to save result", zap.Error(err))
		return
	}

	logger.Info("Analysis complete",
		zap.String("name", doc.Name),
		zap.Int("tokens", doc.TokenCount),
		zap.Int("distinct", len(words)))
}

// load reads the document body. URL documents without a body are fetched
// first and the read is retried once.
func (w *Worker) load(doc *model.Document, logger *zap.Logger) (*textbuf.Buffer, error) {
	buf, err := ingest.ReadAll(w.backend, doc.Name)
	if err == nil || doc.URL == "" || !errors.Is(err, ingest.ErrNotFound) {
		return buf, err
	}

	logger.Info("Downloading", zap.String("url", doc.URL))
	article, err := w.scraper.Scrape(doc.URL, w.timeout)
	if err != nil {
		return nil, err
	}
	doc.Title = article.Title
	doc.Excerpt = article.Excerpt

	if err := w.writeBody(doc.Name, article.TextContent); err != nil {
		return nil, err
	}
	return ingest.ReadAll(w.backend, doc.Name)
}

func (w *Worker) writeBody(name, text string) error {
	wc, err := w.backend.Create(name)
	if err != nil {
		return fmt.Errorf("failed to create body: %w", err)
	}
	if _, err := io.WriteString(wc, text); err != nil {
		wc.Close()
		return fmt.Errorf("failed to write body: %w", err)
	}
	return wc.Close()
}

// analyze counts the words of buf and finds its last whitespace-separated
// token, ignoring trailing whitespace.
func analyze(buf *textbuf.Buffer) (wordfreq.Table, string) {
	words := wordfreq.CountBuffer(buf)

	whole := buf.Borrow()
	defer whole.Release()

	body := textbuf.TrimRightFunc(whole, unicode.IsSpace)
	return words, textbuf.LastTokenFunc(body, unicode.IsSpace).String()
}

func (w *Worker) failJob(ctx context.Context, doc *model.Document, msg string) {
	doc.Status = model.StatusFailed
	doc.ErrorMessage = msg
	if err := w.backend.Save(ctx, doc); err != nil {
		w.logger.Error("Failed to record failure", zap.String("job_id", doc.ID.String()), zap.Error(err))
	}
}
