// Package main provides the entry point for the job recommender HTTP API server and CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "job_recommender",
	Short: "AI Job Recommender HTTP API Server",
	Long:  "Job Recommender scrapes job postings, matches them against user resumes with embeddings and skill overlap, and serves recommendations, skill gap analyses and a career advisor chat via REST API.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
