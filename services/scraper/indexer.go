// File: services/scraper/indexer.go
package scraper

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/Elegant-AI-Elsa/Fuzzy-Backend-updated/database/repository/knowledge"
	"github.com/Elegant-AI-Elsa/Fuzzy-Backend-updated/models"

	"github.com/philippgille/chromem-go"
	"go.uber.org/zap"
)

// Pipeline runs the full scrape-chunk-index flow: page text into Mongo as
// the canonical copy, embeddings into the vector index.
type Pipeline struct {
	Scraper *SitemapScraper
	Repo    knowledgeRepo.KnowledgeRepository
	Index   *chromem.Collection
	Logger  *zap.Logger
}

// NewPipeline wires the ingestion pipeline.
func NewPipeline(scraper *SitemapScraper, repo knowledgeRepo.KnowledgeRepository, index *chromem.Collection, logger *zap.Logger) *Pipeline {
	return &Pipeline{Scraper: scraper, Repo: repo, Index: index, Logger: logger}
}

// Run scrapes every page in the sitemap and indexes its chunks. Individual
// page failures are logged and skipped so one broken page never aborts the
// whole run.
func (p *Pipeline) Run(ctx context.Context, sitemapURL string) error {
	pages, err := p.Scraper.ListPages(ctx, sitemapURL)
	if err != nil {
		return fmt.Errorf("list sitemap pages: %w", err)
	}

	var indexed int
	for _, pageURL := range pages {
		if err := ctx.Err(); err != nil {
			return err
		}

		page, err := p.Scraper.ScrapePage(ctx, pageURL)
		if err != nil {
			p.Logger.Warn("page scrape failed",
				zap.String("url", pageURL),
				zap.Error(err))
			continue
		}
		if page == nil {
			continue
		}

		n, err := p.ingestPage(ctx, page)
		if err != nil {
			p.Logger.Warn("page indexing failed",
				zap.String("url", pageURL),
				zap.Error(err))
			continue
		}
		indexed += n
	}

	p.Logger.Info("scrape run complete",
		zap.String("sitemap", sitemapURL),
		zap.Int("pages", len(pages)),
		zap.Int("chunks_indexed", indexed))
	return nil
}

func (p *Pipeline) ingestPage(ctx context.Context, page *models.ScrapedPage) (int, error) {
	chunks := ChunkText(page.Content)
	docs := make([]chromem.Document, 0, len(chunks))

	for _, content := range chunks {
		chunk := models.ScrapedChunk{
			ID:        chunkID(page.URL, content),
			URL:       page.URL,
			Title:     page.Title,
			Content:   content,
			WordCount: len(strings.Fields(content)),
			ScrapedAt: time.Now(),
		}
		if _, err := p.Repo.Upsert(ctx, chunk); err != nil {
			return 0, fmt.Errorf("upsert chunk: %w", err)
		}
		docs = append(docs, chromem.Document{
			ID:      chunk.ID,
			Content: chunk.Content,
			Metadata: map[string]string{
				"url":   chunk.URL,
				"title": chunk.Title,
			},
		})
	}

	if len(docs) == 0 {
		return 0, nil
	}
	if err := p.Index.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return 0, fmt.Errorf("add documents to index: %w", err)
	}
	return len(docs), nil
}

// RebuildIfEmpty repopulates the vector index from Mongo when the index is
// empty but the canonical store is not, e.g. after the index directory was
// wiped.
func (p *Pipeline) RebuildIfEmpty(ctx context.Context) error {
	if p.Index.Count() > 0 {
		return nil
	}

	chunks, err := p.Repo.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("list stored chunks: %w", err)
	}
	if len(chunks) == 0 {
		return nil
	}

	docs := make([]chromem.Document, 0, len(chunks))
	for _, chunk := range chunks {
		docs = append(docs, chromem.Document{
			ID:      chunk.ID,
			Content: chunk.Content,
			Metadata: map[string]string{
				"url":   chunk.URL,
				"title": chunk.Title,
			},
		})
	}
	if err := p.Index.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("rebuild index: %w", err)
	}
	p.Logger.Info("vector index rebuilt from store", zap.Int("chunks", len(docs)))
	return nil
}

// chunkID is deterministic over url+content so re-runs never duplicate
// index entries.
func chunkID(url, content string) string {
	sum := sha256.Sum256([]byte(url + "\x00" + content))
	return hex.EncodeToString(sum[:])
}
