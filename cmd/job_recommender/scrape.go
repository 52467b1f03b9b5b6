package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-recommender/internal/config"
	"github.com/jonathan/job-recommender/internal/db"
	"github.com/jonathan/job-recommender/internal/embedding"
	"github.com/jonathan/job-recommender/internal/scrape"
	"github.com/jonathan/job-recommender/internal/skills"
)

var (
	scrapeSource string
	scrapeTerms  []string
	scrapeFeeds  []string
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Run a one-shot scrape-and-ingest pass",
	Long:  `Scrape a job source, normalize the postings and store new ones in the database.`,
	RunE:  runScrape,
}

func init() {
	scrapeCmd.Flags().StringVar(&scrapeSource, "source", "remoteok", "Source to scrape (indeed, remoteok, rss)")
	scrapeCmd.Flags().StringSliceVar(&scrapeTerms, "terms", nil, "Search terms to filter postings")
	scrapeCmd.Flags().StringSliceVar(&scrapeFeeds, "feed", nil, "RSS feed URL (repeatable, rss source only)")
	rootCmd.AddCommand(scrapeCmd)
}

func runScrape(cmd *cobra.Command, _ []string) error {
	cfg, err := config.NewAppConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Minute)
	defer cancel()

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	vocabulary := skills.DefaultVocabulary()
	if cfg.SkillVocabularyPath != "" {
		vocabulary, err = skills.LoadVocabulary(cfg.SkillVocabularyPath)
		if err != nil {
			return fmt.Errorf("failed to load skill vocabulary: %w", err)
		}
	}

	// Embeddings are optional for ingest; postings without them still score
	// on skill overlap
	var embedder scrape.Embedder
	if cfg.EmbeddingAPIURL != "" {
		embedder = embedding.NewClient(embedding.Config{
			APIURL: cfg.EmbeddingAPIURL,
			APIKey: cfg.EmbeddingAPIKey,
			Model:  cfg.EmbeddingModel,
		})
	}

	pipeline := scrape.NewPipeline(database, scrape.NewNormalizer(vocabulary, embedder), cfg.ScrapeMinDelay, scrapeFeeds)

	result, err := pipeline.Run(ctx, scrapeSource, scrapeTerms)
	if err != nil {
		return err
	}

	fmt.Printf("Source:   %s\n", result.Source)
	fmt.Printf("Scraped:  %d\n", result.Scraped)
	fmt.Printf("Inserted: %d\n", result.Inserted)
	fmt.Printf("Skipped:  %d\n", result.Skipped)
	if len(result.Errors) > 0 {
		fmt.Printf("Errors:   %d\n", len(result.Errors))
		for _, e := range result.Errors {
			fmt.Printf("  - %s\n", e)
		}
	}
	return nil
}
