package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-recommender/internal/advisor"
	"github.com/jonathan/job-recommender/internal/config"
	"github.com/jonathan/job-recommender/internal/db"
	"github.com/jonathan/job-recommender/internal/recommend"
	"github.com/jonathan/job-recommender/internal/resume"
	"github.com/jonathan/job-recommender/internal/scrape"
	"github.com/jonathan/job-recommender/internal/server/middleware"
	"github.com/jonathan/job-recommender/internal/skillgap"
)

// fakeServerStore is an in-memory Store for handler tests.
type fakeServerStore struct {
	*fakeDBClient
	jobs          map[uuid.UUID]*db.JobPosting
	saved         map[string]*db.SavedJob
	conversations map[uuid.UUID]*db.Conversation
	messages      map[uuid.UUID][]db.Message
	stats         *db.AdminStats
}

func newFakeServerStore() *fakeServerStore {
	return &fakeServerStore{
		fakeDBClient:  newFakeDBClient(),
		jobs:          map[uuid.UUID]*db.JobPosting{},
		saved:         map[string]*db.SavedJob{},
		conversations: map[uuid.UUID]*db.Conversation{},
		messages:      map[uuid.UUID][]db.Message{},
		stats:         &db.AdminStats{JobsBySource: map[string]int{}},
	}
}

func (f *fakeServerStore) UpdateUserProfile(_ context.Context, userID uuid.UUID, update db.UserProfileUpdate) (*db.User, error) {
	u := f.usersByID[userID]
	if u == nil {
		return nil, nil
	}
	if update.FullName != nil {
		u.FullName = *update.FullName
	}
	if update.Skills != nil {
		u.Skills = update.Skills
	}
	if update.OnboardingCompleted != nil {
		u.OnboardingCompleted = *update.OnboardingCompleted
	}
	return u, nil
}

func (f *fakeServerStore) UpdateUserResume(_ context.Context, userID uuid.UUID, resumeText string, skills []string, experienceYears *int, educationLevel *string) error {
	u := f.usersByID[userID]
	if u == nil {
		return nil
	}
	u.ResumeText = &resumeText
	u.Skills = skills
	if experienceYears != nil {
		u.ExperienceYears = experienceYears
	}
	if educationLevel != nil {
		u.EducationLevel = educationLevel
	}
	u.ResumeEmbedding = nil
	return nil
}

func (f *fakeServerStore) ListUsers(_ context.Context, _, _ int) ([]db.User, int, error) {
	var users []db.User
	for _, u := range f.usersByID {
		users = append(users, *u)
	}
	return users, len(users), nil
}

func (f *fakeServerStore) GetJobPosting(_ context.Context, id uuid.UUID) (*db.JobPosting, error) {
	return f.jobs[id], nil
}

func (f *fakeServerStore) ListJobPostings(_ context.Context, opts db.ListJobPostingsOptions) ([]db.JobPosting, int, error) {
	var out []db.JobPosting
	for _, job := range f.jobs {
		if opts.ActiveOnly && !job.IsActive {
			continue
		}
		out = append(out, *job)
	}
	return out, len(out), nil
}

func (f *fakeServerStore) UpdateJobPosting(_ context.Context, id uuid.UUID, update db.JobPostingUpdate) (*db.JobPosting, error) {
	job := f.jobs[id]
	if job == nil {
		return nil, nil
	}
	if update.Title != nil {
		job.Title = *update.Title
	}
	if update.IsActive != nil {
		job.IsActive = *update.IsActive
	}
	return job, nil
}

func (f *fakeServerStore) DeleteJobPosting(_ context.Context, id uuid.UUID) error {
	if _, ok := f.jobs[id]; !ok {
		return &ErrJobNotFound{JobID: id}
	}
	delete(f.jobs, id)
	return nil
}

func (f *fakeServerStore) GetAdminStats(_ context.Context) (*db.AdminStats, error) {
	return f.stats, nil
}

func savedKey(userID, jobID uuid.UUID) string {
	return userID.String() + "/" + jobID.String()
}

func (f *fakeServerStore) SaveJob(_ context.Context, userID, jobID uuid.UUID, status, notes string) (*db.SavedJob, error) {
	s := &db.SavedJob{ID: uuid.New(), UserID: userID, JobID: jobID, Status: status, Notes: notes}
	f.saved[savedKey(userID, jobID)] = s
	return s, nil
}

func (f *fakeServerStore) UnsaveJob(_ context.Context, userID, jobID uuid.UUID) (bool, error) {
	key := savedKey(userID, jobID)
	if _, ok := f.saved[key]; !ok {
		return false, nil
	}
	delete(f.saved, key)
	return true, nil
}

func (f *fakeServerStore) ListSavedJobs(_ context.Context, userID uuid.UUID) ([]db.SavedJob, error) {
	var out []db.SavedJob
	for _, s := range f.saved {
		if s.UserID == userID {
			entry := *s
			entry.Job = f.jobs[s.JobID]
			out = append(out, entry)
		}
	}
	return out, nil
}

func (f *fakeServerStore) GetConversation(_ context.Context, id uuid.UUID) (*db.Conversation, error) {
	return f.conversations[id], nil
}

func (f *fakeServerStore) CreateConversation(_ context.Context, userID uuid.UUID, title string) (*db.Conversation, error) {
	c := &db.Conversation{ID: uuid.New(), UserID: userID, Title: title, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	f.conversations[c.ID] = c
	return c, nil
}

func (f *fakeServerStore) ListConversations(_ context.Context, userID uuid.UUID) ([]db.Conversation, error) {
	var out []db.Conversation
	for _, c := range f.conversations {
		if c.UserID == userID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeServerStore) AddMessage(_ context.Context, conversationID uuid.UUID, role, content string) (*db.Message, error) {
	m := db.Message{ID: uuid.New(), ConversationID: conversationID, Role: role, Content: content, CreatedAt: time.Now()}
	f.messages[conversationID] = append(f.messages[conversationID], m)
	return &m, nil
}

func (f *fakeServerStore) ListMessages(_ context.Context, conversationID uuid.UUID) ([]db.Message, error) {
	return f.messages[conversationID], nil
}

// Fake domain services

type fakeRecommender struct {
	recs []recommend.ScoredJob
	err  error
}

func (f *fakeRecommender) Recommend(_ context.Context, _ *db.User, _ int) ([]recommend.ScoredJob, error) {
	return f.recs, f.err
}

type fakeAdvisorService struct {
	response string
	jobs     []advisor.RelevantJob
}

func (f *fakeAdvisorService) Respond(_ context.Context, _ *uuid.UUID, _ string) (string, []advisor.RelevantJob) {
	return f.response, f.jobs
}

type fakeGapService struct{}

func (f *fakeGapService) Analyze(_ context.Context, user *db.User, job *db.JobPosting) *skillgap.Analysis {
	return &skillgap.Analysis{JobID: job.ID, JobTitle: job.Title, UserSkills: user.Skills}
}

type fakeResumeService struct {
	parsed *resume.ParsedResume
}

func (f *fakeResumeService) Parse(_ context.Context, _ string) *resume.ParsedResume {
	return f.parsed
}

type fakeIngestService struct {
	ran chan string
}

func (f *fakeIngestService) Run(_ context.Context, source string, _ []string) (*scrape.IngestResult, error) {
	f.ran <- source
	return &scrape.IngestResult{Source: source}, nil
}

func newTestServer(store Store) *Server {
	tokens := testTokenService("handlers-secret-0123456789abcdef")
	s := &Server{
		store:          store,
		allowedOrigins: "*",
		validator:      validator.New(),
		tokens:         tokens,
		userService:    NewUserService(store, &config.PasswordConfig{BcryptCost: 10}),
		recommender:    &fakeRecommender{},
		advisor:        &fakeAdvisorService{response: "advice"},
		gapAnalyzer:    &fakeGapService{},
		resumeParser:   &fakeResumeService{parsed: &resume.ParsedResume{Skills: []string{"Python"}}},
	}
	s.authMW = middleware.AuthMiddleware(tokens.AsTokenValidator())
	s.authHandler = NewAuthHandler(s.userService, tokens)
	return s
}

// seedUser creates a user directly in the store and returns it with a valid token.
func seedUser(t *testing.T, s *Server, store *fakeServerStore, admin bool) (*db.User, string) {
	t.Helper()
	u := &db.User{ID: uuid.New(), Email: uuid.NewString() + "@example.com", FullName: "Test User", IsAdmin: admin}
	store.usersByID[u.ID] = u
	store.usersByEmail[u.Email] = u

	token, err := s.tokens.Issue(u.ID)
	require.NoError(t, err)
	return u, token
}

func seedJob(store *fakeServerStore, title string, active bool) *db.JobPosting {
	job := &db.JobPosting{ID: uuid.New(), Title: title, Company: "Test Co", Description: "desc", IsActive: active}
	store.jobs[job.ID] = job
	return job
}

func doRequest(s *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.routes().ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(newFakeServerStore())
	rec := doRequest(s, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(newFakeServerStore())
	rec := doRequest(s, http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegisterThenMe(t *testing.T) {
	s := newTestServer(newFakeServerStore())

	rec := doRequest(s, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":     "jane@example.com",
		"password":  "secret-password",
		"full_name": "Jane Doe",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var registered struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &registered))
	require.NotEmpty(t, registered.Token)

	rec = doRequest(s, http.MethodGet, "/api/auth/me", registered.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "jane@example.com")
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	s := newTestServer(newFakeServerStore())
	rec := doRequest(s, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":     "jane@example.com",
		"password":  "short",
		"full_name": "Jane Doe",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListJobsFiltersInactive(t *testing.T) {
	store := newFakeServerStore()
	s := newTestServer(store)
	seedJob(store, "Active Role", true)
	seedJob(store, "Inactive Role", false)

	rec := doRequest(s, http.MethodGet, "/api/jobs", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Total)
}

func TestGetJobNotFound(t *testing.T) {
	s := newTestServer(newFakeServerStore())
	rec := doRequest(s, http.MethodGet, "/api/jobs/"+uuid.NewString(), "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSaveUnsaveJob(t *testing.T) {
	store := newFakeServerStore()
	s := newTestServer(store)
	_, token := seedUser(t, s, store, false)
	job := seedJob(store, "Role", true)

	rec := doRequest(s, http.MethodPost, "/api/jobs/"+job.ID.String()+"/save", token, map[string]string{"status": "applied"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(s, http.MethodGet, "/api/jobs/saved/list", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total":1`)

	rec = doRequest(s, http.MethodDelete, "/api/jobs/"+job.ID.String()+"/save", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(s, http.MethodDelete, "/api/jobs/"+job.ID.String()+"/save", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSaveJobUnknownPosting(t *testing.T) {
	store := newFakeServerStore()
	s := newTestServer(store)
	_, token := seedUser(t, s, store, false)

	rec := doRequest(s, http.MethodPost, "/api/jobs/"+uuid.NewString()+"/save", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRecommendationsEndpoint(t *testing.T) {
	store := newFakeServerStore()
	s := newTestServer(store)
	_, token := seedUser(t, s, store, false)

	s.recommender = &fakeRecommender{recs: []recommend.ScoredJob{
		{Job: db.JobPosting{Title: "Go Engineer"}, CombinedScore: 0.9, Explanation: "Strong match"},
	}}

	rec := doRequest(s, http.MethodGet, "/api/recommendations?limit=5", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Go Engineer")
	assert.Contains(t, rec.Body.String(), "Strong match")
}

func TestRecommendationsErrorDetailAdminOnly(t *testing.T) {
	store := newFakeServerStore()
	s := newTestServer(store)
	s.recommender = &fakeRecommender{err: errors.New("embedding endpoint unreachable")}

	_, userToken := seedUser(t, s, store, false)
	rec := doRequest(s, http.MethodGet, "/api/recommendations", userToken, nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "failed to generate recommendations")
	assert.NotContains(t, rec.Body.String(), "embedding endpoint unreachable")

	_, adminToken := seedUser(t, s, store, true)
	rec = doRequest(s, http.MethodGet, "/api/recommendations", adminToken, nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "embedding endpoint unreachable")
}

func TestChatMessageStartsConversation(t *testing.T) {
	store := newFakeServerStore()
	s := newTestServer(store)
	_, token := seedUser(t, s, store, false)
	s.advisor = &fakeAdvisorService{response: "Here is some advice."}

	rec := doRequest(s, http.MethodPost, "/api/chat/message", token, map[string]string{
		"message": "How do I become a backend engineer?",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		ConversationID uuid.UUID `json:"conversation_id"`
		Message        struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "assistant", resp.Message.Role)
	assert.Equal(t, "Here is some advice.", resp.Message.Content)

	// Both the user turn and the reply were stored
	assert.Len(t, store.messages[resp.ConversationID], 2)

	// Conversation title derives from the first message
	conv := store.conversations[resp.ConversationID]
	require.NotNil(t, conv)
	assert.Equal(t, "How do I become a backend engineer?", conv.Title)
}

func TestChatMessageTitleTruncatesOnRuneBoundary(t *testing.T) {
	store := newFakeServerStore()
	s := newTestServer(store)
	_, token := seedUser(t, s, store, false)

	// A two-byte rune straddles the 50-byte title cap
	message := strings.Repeat("a", 49) + "é and then some more detail"
	rec := doRequest(s, http.MethodPost, "/api/chat/message", token, map[string]string{
		"message": message,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		ConversationID uuid.UUID `json:"conversation_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	conv := store.conversations[resp.ConversationID]
	require.NotNil(t, conv)
	assert.True(t, utf8.ValidString(conv.Title))
	assert.Equal(t, strings.Repeat("a", 49), conv.Title)
}

func TestChatMessageForeignConversation(t *testing.T) {
	store := newFakeServerStore()
	s := newTestServer(store)
	_, token := seedUser(t, s, store, false)
	other, _ := seedUser(t, s, store, false)

	conv, err := store.CreateConversation(context.Background(), other.ID, "theirs")
	require.NoError(t, err)

	rec := doRequest(s, http.MethodPost, "/api/chat/message", token, map[string]any{
		"message":         "hello",
		"conversation_id": conv.ID,
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUploadResume(t *testing.T) {
	store := newFakeServerStore()
	s := newTestServer(store)
	user, token := seedUser(t, s, store, false)

	years := 4
	s.resumeParser = &fakeResumeService{parsed: &resume.ParsedResume{
		Skills:          []string{"Python", "Go"},
		ExperienceYears: &years,
	}}

	rec := doRequest(s, http.MethodPost, "/api/user/resume", token, map[string]string{
		"text": "Jane Doe. Python and Go developer.",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	stored := store.usersByID[user.ID]
	require.NotNil(t, stored.ResumeText)
	assert.Equal(t, []string{"Python", "Go"}, []string(stored.Skills))
	require.NotNil(t, stored.ExperienceYears)
	assert.Equal(t, 4, *stored.ExperienceYears)
}

func TestSkillGapEndpoint(t *testing.T) {
	store := newFakeServerStore()
	s := newTestServer(store)
	_, token := seedUser(t, s, store, false)
	job := seedJob(store, "Data Engineer", true)

	rec := doRequest(s, http.MethodGet, "/api/user/skill-gap/"+job.ID.String(), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Data Engineer")
}

func TestAdminForbiddenForRegularUser(t *testing.T) {
	store := newFakeServerStore()
	s := newTestServer(store)
	_, token := seedUser(t, s, store, false)

	rec := doRequest(s, http.MethodGet, "/api/admin/stats", token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminStats(t *testing.T) {
	store := newFakeServerStore()
	s := newTestServer(store)
	_, token := seedUser(t, s, store, true)
	store.stats = &db.AdminStats{TotalUsers: 3, ActiveJobs: 7, JobsBySource: map[string]int{"remoteok": 7}}

	rec := doRequest(s, http.MethodGet, "/api/admin/stats", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"active_jobs":7`)
}

func TestAdminUpdateJob(t *testing.T) {
	store := newFakeServerStore()
	s := newTestServer(store)
	_, token := seedUser(t, s, store, true)
	job := seedJob(store, "Role", true)

	rec := doRequest(s, http.MethodPatch, "/api/admin/jobs/"+job.ID.String(), token, map[string]any{
		"is_active": false,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, store.jobs[job.ID].IsActive)
}

func TestAdminScrapeAccepted(t *testing.T) {
	store := newFakeServerStore()
	s := newTestServer(store)
	_, token := seedUser(t, s, store, true)

	ingest := &fakeIngestService{ran: make(chan string, 1)}
	s.pipeline = ingest

	rec := doRequest(s, http.MethodPost, "/api/admin/jobs/scrape", token, map[string]any{
		"source":       "remoteok",
		"search_terms": []string{"golang"},
	})
	require.Equal(t, http.StatusAccepted, rec.Code)

	select {
	case source := <-ingest.ran:
		assert.Equal(t, "remoteok", source)
	case <-time.After(2 * time.Second):
		t.Fatal("scrape run was not triggered")
	}
}

func TestAdminScrapeRejectsUnknownSource(t *testing.T) {
	store := newFakeServerStore()
	s := newTestServer(store)
	_, token := seedUser(t, s, store, true)

	rec := doRequest(s, http.MethodPost, "/api/admin/jobs/scrape", token, map[string]any{
		"source": "linkedin",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
