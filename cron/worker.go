package cron

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/Elegant-AI-Elsa/Fuzzy-Backend-updated/config"
	"github.com/Elegant-AI-Elsa/Fuzzy-Backend-updated/services/scraper"

	"github.com/hibiken/asynq"
)

const TypeScrapeRun = "scrape:run"

// ScrapePayload is the queued scrape job.
type ScrapePayload struct {
	SitemapURL string `json:"sitemapUrl"`
}

func queueRedisOpts() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// EnqueueScrape queues a background scrape of the given sitemap.
func EnqueueScrape(sitemapURL string) error {
	client := asynq.NewClient(queueRedisOpts())
	defer client.Close()

	payload, err := json.Marshal(ScrapePayload{SitemapURL: sitemapURL})
	if err != nil {
		return err
	}
	task := asynq.NewTask(TypeScrapeRun, payload, asynq.MaxRetry(3), asynq.Timeout(30*time.Minute))
	_, err = client.Enqueue(task)
	return err
}

// InitScrapeWorker runs the async worker in background.
func InitScrapeWorker(pipeline *scraper.Pipeline) {
	srv := asynq.NewServer(
		queueRedisOpts(),
		asynq.Config{
			Concurrency: 1,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeScrapeRun, handleScrapeTask(pipeline))

	// Start async worker with retry logic
	go func() {
		log.Println("[ScrapeWorker] 🚀 Starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[ScrapeWorker] ❌ Attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[ScrapeWorker] ❗ Max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second) // Exponential backoff
			} else {
				break
			}
		}
	}()
}

func handleScrapeTask(pipeline *scraper.Pipeline) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p ScrapePayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[ScrapeHandler] 🔴 Invalid payload: %v", err)
			return err
		}
		if p.SitemapURL == "" {
			p.SitemapURL = config.AppConfig.SitemapURL
		}

		log.Printf("[ScrapeHandler] 🕷️ Starting scrape run for %s", p.SitemapURL)
		if err := pipeline.Run(ctx, p.SitemapURL); err != nil {
			log.Printf("[ScrapeHandler] ❌ Scrape run failed: %v", err)
			return err
		}
		return nil
	}
}
