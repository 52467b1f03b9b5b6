package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/jonathan/job-recommender/internal/advisor"
	"github.com/jonathan/job-recommender/internal/config"
	"github.com/jonathan/job-recommender/internal/db"
	"github.com/jonathan/job-recommender/internal/embedding"
	"github.com/jonathan/job-recommender/internal/llm"
	"github.com/jonathan/job-recommender/internal/recommend"
	"github.com/jonathan/job-recommender/internal/resume"
	"github.com/jonathan/job-recommender/internal/scrape"
	"github.com/jonathan/job-recommender/internal/server/middleware"
	"github.com/jonathan/job-recommender/internal/server/ratelimit"
	"github.com/jonathan/job-recommender/internal/skillgap"
	"github.com/jonathan/job-recommender/internal/skills"
)

// Store is the database surface used by the HTTP handlers.
type Store interface {
	DBClient
	UpdateUserProfile(ctx context.Context, userID uuid.UUID, update db.UserProfileUpdate) (*db.User, error)
	UpdateUserResume(ctx context.Context, userID uuid.UUID, resumeText string, skills []string, experienceYears *int, educationLevel *string) error
	ListUsers(ctx context.Context, limit, offset int) ([]db.User, int, error)

	GetJobPosting(ctx context.Context, id uuid.UUID) (*db.JobPosting, error)
	ListJobPostings(ctx context.Context, opts db.ListJobPostingsOptions) ([]db.JobPosting, int, error)
	UpdateJobPosting(ctx context.Context, id uuid.UUID, update db.JobPostingUpdate) (*db.JobPosting, error)
	DeleteJobPosting(ctx context.Context, id uuid.UUID) error
	GetAdminStats(ctx context.Context) (*db.AdminStats, error)

	SaveJob(ctx context.Context, userID, jobID uuid.UUID, status, notes string) (*db.SavedJob, error)
	UnsaveJob(ctx context.Context, userID, jobID uuid.UUID) (bool, error)
	ListSavedJobs(ctx context.Context, userID uuid.UUID) ([]db.SavedJob, error)

	GetConversation(ctx context.Context, id uuid.UUID) (*db.Conversation, error)
	CreateConversation(ctx context.Context, userID uuid.UUID, title string) (*db.Conversation, error)
	ListConversations(ctx context.Context, userID uuid.UUID) ([]db.Conversation, error)
	AddMessage(ctx context.Context, conversationID uuid.UUID, role, content string) (*db.Message, error)
	ListMessages(ctx context.Context, conversationID uuid.UUID) ([]db.Message, error)
}

// Service interfaces keep handlers testable without live LLM or embedding
// backends.
type recommendService interface {
	Recommend(ctx context.Context, user *db.User, limit int) ([]recommend.ScoredJob, error)
}

type advisorService interface {
	Respond(ctx context.Context, conversationID *uuid.UUID, message string) (string, []advisor.RelevantJob)
}

type gapService interface {
	Analyze(ctx context.Context, user *db.User, job *db.JobPosting) *skillgap.Analysis
}

type resumeService interface {
	Parse(ctx context.Context, text string) *resume.ParsedResume
}

type ingestService interface {
	Run(ctx context.Context, source string, searchTerms []string) (*scrape.IngestResult, error)
}

// Server represents the HTTP server
type Server struct {
	httpServer     *http.Server
	db             *db.DB
	store          Store
	allowedOrigins string
	rateLimiter    *ratelimit.Limiter
	tokens         *TokenService
	userService    *UserService
	authHandler    *AuthHandler
	authMW         func(http.Handler) http.Handler
	validator      *validator.Validate

	recommender  recommendService
	advisor      advisorService
	gapAnalyzer  gapService
	resumeParser resumeService
	pipeline     ingestService
	llm          llm.Client
}

// New creates a new server instance wired against live backends.
func New(cfg *config.AppConfig) (*Server, error) {
	database, err := db.Connect(context.Background(), cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	vocabulary := skills.DefaultVocabulary()
	if cfg.SkillVocabularyPath != "" {
		vocabulary, err = skills.LoadVocabulary(cfg.SkillVocabularyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load skill vocabulary: %w", err)
		}
	}

	// Without an endpoint the embedding-based signals are skipped and
	// scoring degrades to skill overlap
	var recommendEmbedder recommend.Embedder
	var advisorEmbedder advisor.Embedder
	var ingestEmbedder scrape.Embedder
	if cfg.EmbeddingAPIURL != "" {
		embedder := embedding.NewClient(embedding.Config{
			APIURL: cfg.EmbeddingAPIURL,
			APIKey: cfg.EmbeddingAPIKey,
			Model:  cfg.EmbeddingModel,
		})
		recommendEmbedder = embedder
		advisorEmbedder = embedder
		ingestEmbedder = embedder
	} else {
		log.Println("[SERVER] EMBEDDING_API_URL not set; recommendations fall back to skill overlap")
	}

	// Without an API key the LLM-backed features degrade to their fallbacks
	var llmClient llm.Client
	if cfg.GeminiAPIKey != "" {
		llmClient, err = llm.NewClient(context.Background(), llm.DefaultConfig(), cfg.GeminiAPIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create LLM client: %w", err)
		}
	} else {
		log.Println("[SERVER] GEMINI_API_KEY not set; explanations, chat and resume parsing run degraded")
	}

	scoring := recommend.ScoringConfig{
		SimilarityGate:      cfg.SimilarityGate,
		CombinedGate:        cfg.CombinedGate,
		SimilarityFilter:    cfg.SimilarityFilter,
		CombinedFilter:      cfg.CombinedFilter,
		SimilarityWeight:    cfg.SimilarityWeight,
		SkillWeight:         cfg.SkillWeight,
		SkillOnlyMultiplier: cfg.SkillOnlyMultiplier,
	}

	s := &Server{
		db:             database,
		store:          database,
		allowedOrigins: cfg.AllowedOrigins,
		validator:      validator.New(),
		recommender:    recommend.NewRecommender(database, recommendEmbedder, llmClient, scoring),
		advisor:        advisor.NewAdvisor(database, advisorEmbedder, llmClient),
		gapAnalyzer:    skillgap.NewAnalyzer(llmClient),
		resumeParser:   resume.NewParser(llmClient, vocabulary),
		pipeline:       scrape.NewPipeline(database, scrape.NewNormalizer(vocabulary, ingestEmbedder), cfg.ScrapeMinDelay, nil),
		llm:            llmClient,
	}

	s.rateLimiter = ratelimit.NewLimiter(ratelimit.LoadConfig())

	passwordConfig, err := config.NewPasswordConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to create password config: %w", err)
	}
	s.userService = NewUserService(database, passwordConfig)

	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT config: %w", err)
	}
	s.tokens = NewTokenService(jwtConfig)
	s.authMW = middleware.AuthMiddleware(s.tokens.AsTokenValidator())
	s.authHandler = NewAuthHandler(s.userService, s.tokens)

	s.httpServer = &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      s.withRateLimit(s.withLogging(s.withCORS(s.routes()))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // LLM-backed endpoints can be slow
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// routes builds the API router.
func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	protected := func(h http.HandlerFunc) http.Handler {
		return s.authMW(h)
	}

	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("POST /api/auth/register", s.authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", s.authHandler.Login)
	mux.Handle("GET /api/auth/me", protected(s.handleMe))

	mux.HandleFunc("GET /api/jobs", s.handleListJobs)
	mux.Handle("GET /api/jobs/saved/list", protected(s.handleListSavedJobs))
	mux.HandleFunc("GET /api/jobs/{id}", s.handleGetJob)
	mux.Handle("POST /api/jobs/{id}/save", protected(s.handleSaveJob))
	mux.Handle("DELETE /api/jobs/{id}/save", protected(s.handleUnsaveJob))

	mux.Handle("GET /api/recommendations", protected(s.handleRecommendations))

	mux.Handle("POST /api/chat/message", protected(s.handleChatMessage))
	mux.Handle("GET /api/chat/conversations", protected(s.handleListConversations))
	mux.Handle("GET /api/chat/conversations/{id}/messages", protected(s.handleListConversationMessages))

	mux.Handle("GET /api/user/profile", protected(s.handleGetProfile))
	mux.Handle("PATCH /api/user/profile", protected(s.handleUpdateProfile))
	mux.Handle("PUT /api/user/password", protected(s.handleUpdatePassword))
	mux.Handle("POST /api/user/resume", protected(s.handleUploadResume))
	mux.Handle("GET /api/user/skill-gap/{job_id}", protected(s.handleSkillGap))

	mux.Handle("GET /api/admin/stats", protected(s.requireAdmin(s.handleAdminStats)))
	mux.Handle("GET /api/admin/jobs", protected(s.requireAdmin(s.handleAdminListJobs)))
	mux.Handle("GET /api/admin/jobs/{id}", protected(s.requireAdmin(s.handleAdminGetJob)))
	mux.Handle("PATCH /api/admin/jobs/{id}", protected(s.requireAdmin(s.handleAdminUpdateJob)))
	mux.Handle("DELETE /api/admin/jobs/{id}", protected(s.requireAdmin(s.handleAdminDeleteJob)))
	mux.Handle("GET /api/admin/users", protected(s.requireAdmin(s.handleAdminListUsers)))
	mux.Handle("POST /api/admin/jobs/scrape", protected(s.requireAdmin(s.handleAdminScrape)))

	return mux
}

// Start begins listening for requests
func (s *Server) Start() error {
	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	if s.llm != nil {
		if err := s.llm.Close(); err != nil {
			log.Printf("LLM client close failed: %v", err)
		}
	}
	s.db.Close()
	log.Println("Server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := s.allowedOrigins
		if origin == "" {
			origin = "*"
		}
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.rateLimiter.Allow(s.extractClientID(r)) {
			s.errorResponse(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// extractClientID extracts the client identifier from the request.
// For MVP, this uses the IP address from RemoteAddr.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// currentUser loads the authenticated user for the request.
func (s *Server) currentUser(r *http.Request) (*db.User, error) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		return nil, err
	}
	user, err := s.store.GetUser(r.Context(), userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, &ErrUserNotFound{UserID: userID}
	}
	return user, nil
}

// requireAdmin rejects requests from non-admin users with 403.
func (s *Server) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := s.currentUser(r)
		if err != nil {
			s.errorResponse(w, HTTPStatus(err), err.Error())
			return
		}
		if !user.IsAdmin {
			s.errorResponse(w, http.StatusForbidden, "admin access required")
			return
		}
		next(w, r)
	}
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// parseQueryInt reads an integer query parameter, falling back to def when
// absent or invalid.
func parseQueryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// pathUUID parses a UUID path parameter.
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s: %w", name, err)
	}
	return id, nil
}
