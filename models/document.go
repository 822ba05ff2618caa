// File: models/document.go
package models

import "time"

// ScrapedChunk is one embedded slice of a scraped page, canonical copy kept
// in Mongo (unique by url+content) and mirrored into the vector index.
type ScrapedChunk struct {
	ID        string    `bson:"id" json:"id"`
	URL       string    `bson:"url" json:"url"`
	Title     string    `bson:"title" json:"title"`
	Content   string    `bson:"content" json:"content"`
	WordCount int       `bson:"wordCount" json:"wordCount"`
	ScrapedAt time.Time `bson:"scrapedAt" json:"scrapedAt"`
}

// ScrapedPage is the raw output of scraping a single URL, before chunking.
type ScrapedPage struct {
	URL       string `json:"url"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	WordCount int    `json:"wordCount"`
}
