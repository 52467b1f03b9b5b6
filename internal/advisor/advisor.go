// Package advisor implements the chat career advisor: it grounds each reply
// in the postings most similar to the user's question plus recent
// conversation history.
package advisor

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/jonathan/job-recommender/internal/db"
	"github.com/jonathan/job-recommender/internal/embedding"
	"github.com/jonathan/job-recommender/internal/llm"
)

// contextJobLimit caps how many postings are considered for grounding.
const contextJobLimit = 50

// relevantJobLimit caps how many postings make it into the prompt.
const relevantJobLimit = 5

// historyLimit caps how many prior messages are replayed.
const historyLimit = 5

// snippetLen truncates job descriptions in the prompt context.
const snippetLen = 200

const systemPrompt = `You are a helpful career advisor AI assistant. You help users with:
- Career guidance and advice
- Job search strategies
- Skill development recommendations
- Interview preparation
- Career path planning

Be friendly, professional, and provide actionable advice. Reference relevant job opportunities when appropriate.`

const apologyResponse = "I apologize, but I'm having trouble processing your request right now. Please try again later."

// RelevantJob is a posting surfaced as context for a chat reply.
type RelevantJob struct {
	ID         uuid.UUID `json:"id"`
	Title      string    `json:"title"`
	Company    string    `json:"company"`
	Similarity float64   `json:"similarity"`
}

// Store is the persistence surface the advisor reads from.
type Store interface {
	ListActiveJobsWithEmbeddings(ctx context.Context, limit int) ([]db.JobPosting, error)
	GetRecentMessages(ctx context.Context, conversationID uuid.UUID, n int) ([]db.Message, error)
}

// Embedder generates query embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Advisor answers career questions over chat.
type Advisor struct {
	store    Store
	embedder Embedder
	llm      llm.Client
}

// NewAdvisor creates an Advisor with injected collaborators.
func NewAdvisor(store Store, embedder Embedder, llmClient llm.Client) *Advisor {
	return &Advisor{store: store, embedder: embedder, llm: llmClient}
}

// Respond generates a reply to the user's message. conversationID may be nil
// for the first message of a conversation. Context retrieval failures degrade
// to an ungrounded reply; only a failed LLM call produces the apology text.
func (a *Advisor) Respond(ctx context.Context, conversationID *uuid.UUID, message string) (string, []RelevantJob) {
	relevant := a.relevantJobs(ctx, message)

	var history []db.Message
	if conversationID != nil {
		var err error
		history, err = a.store.GetRecentMessages(ctx, *conversationID, historyLimit)
		if err != nil {
			log.Printf("[ADVISOR] history fetch for %s failed: %v", *conversationID, err)
		}
	}

	if a.llm == nil {
		return apologyResponse, summarize(relevant)
	}

	prompt := buildPrompt(message, history, relevant)
	response, err := a.llm.GenerateContent(ctx, prompt, llm.TierStandard)
	if err != nil || strings.TrimSpace(response) == "" {
		if err != nil {
			log.Printf("[ADVISOR] response generation failed: %v", err)
		}
		return apologyResponse, summarize(relevant)
	}
	return strings.TrimSpace(response), summarize(relevant)
}

type scoredContext struct {
	job        db.JobPosting
	similarity float64
}

// relevantJobs embeds the message and ranks active postings by cosine
// similarity, keeping the top few as prompt context.
func (a *Advisor) relevantJobs(ctx context.Context, message string) []scoredContext {
	if a.embedder == nil {
		return nil
	}

	queryEmbedding, err := a.embedder.Embed(ctx, message)
	if err != nil {
		log.Printf("[ADVISOR] query embedding failed: %v", err)
		return nil
	}

	jobs, err := a.store.ListActiveJobsWithEmbeddings(ctx, contextJobLimit)
	if err != nil {
		log.Printf("[ADVISOR] context job fetch failed: %v", err)
		return nil
	}

	scored := make([]scoredContext, 0, len(jobs))
	for _, job := range jobs {
		if job.DescriptionEmbedding == nil {
			continue
		}
		scored = append(scored, scoredContext{
			job:        job,
			similarity: embedding.CosineSimilarity(queryEmbedding, job.DescriptionEmbedding),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].similarity > scored[j].similarity
	})
	if len(scored) > relevantJobLimit {
		scored = scored[:relevantJobLimit]
	}
	return scored
}

func buildPrompt(message string, history []db.Message, relevant []scoredContext) string {
	var context strings.Builder
	if len(relevant) > 0 {
		context.WriteString("\n\nRelevant job opportunities:\n")
		for _, s := range relevant {
			fmt.Fprintf(&context, "- %s at %s: %s\n", s.job.Title, s.job.Company, snippet(s.job.Description))
		}
	}

	var historyText strings.Builder
	for _, msg := range history {
		fmt.Fprintf(&historyText, "%s: %s\n", msg.Role, msg.Content)
	}

	return fmt.Sprintf(`%s

Previous conversation:
%s
User question: %s
%s
Provide a helpful response:`, systemPrompt, historyText.String(), message, context.String())
}

// snippet shortens a description to snippetLen bytes without splitting a
// multi-byte rune.
func snippet(desc string) string {
	if len(desc) <= snippetLen {
		return desc
	}
	cut := snippetLen
	for cut > 0 && !utf8.RuneStart(desc[cut]) {
		cut--
	}
	return desc[:cut]
}

func summarize(relevant []scoredContext) []RelevantJob {
	out := make([]RelevantJob, 0, len(relevant))
	for _, s := range relevant {
		out = append(out, RelevantJob{
			ID:         s.job.ID,
			Title:      s.job.Title,
			Company:    s.job.Company,
			Similarity: s.similarity,
		})
	}
	return out
}
