package server

import (
	"encoding/json"
	"log"
	"net/http"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/jonathan/job-recommender/internal/db"
	"github.com/jonathan/job-recommender/internal/types"
)

// conversationTitleLen caps the title derived from the first message.
const conversationTitleLen = 50

// handleChatMessage processes a chat turn: it resolves or creates the
// conversation, generates the advisor reply and persists both messages.
func (s *Server) handleChatMessage(w http.ResponseWriter, r *http.Request) {
	user, err := s.currentUser(r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	var req types.ChatMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := s.validator.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	conversation, err := s.resolveConversation(r, user.ID, &req)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	// The reply is grounded in history up to this turn; persist the user
	// message after generating it.
	response, relevantJobs := s.advisor.Respond(r.Context(), &conversation.ID, req.Message)

	if _, err := s.store.AddMessage(r.Context(), conversation.ID, "user", req.Message); err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "failed to store message")
		return
	}
	assistantMsg, err := s.store.AddMessage(r.Context(), conversation.ID, "assistant", response)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "failed to store message")
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"conversation_id": conversation.ID,
		"message":         assistantMsg,
		"relevant_jobs":   relevantJobs,
	})
}

// resolveConversation loads the requested conversation, checking ownership,
// or starts a new one titled after the first message.
func (s *Server) resolveConversation(r *http.Request, userID uuid.UUID, req *types.ChatMessageRequest) (*db.Conversation, error) {
	if req.ConversationID != nil {
		conversation, err := s.store.GetConversation(r.Context(), *req.ConversationID)
		if err != nil {
			return nil, err
		}
		if conversation == nil || conversation.UserID != userID {
			return nil, &ErrConversationNotFound{ConversationID: *req.ConversationID}
		}
		return conversation, nil
	}

	title := clipRunes(req.Message, conversationTitleLen)
	conversation, err := s.store.CreateConversation(r.Context(), userID, title)
	if err != nil {
		return nil, err
	}
	log.Printf("[CHAT] user %s started conversation %s", userID, conversation.ID)
	return conversation, nil
}

// clipRunes shortens s to at most max bytes, backing up so a multi-byte
// rune is never split.
func clipRunes(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}

// handleListConversations lists the user's conversations, most recent first.
func (s *Server) handleListConversations(w http.ResponseWriter, r *http.Request) {
	user, err := s.currentUser(r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	conversations, err := s.store.ListConversations(r.Context(), user.ID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "failed to list conversations")
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"conversations": conversations,
		"total":         len(conversations),
	})
}

// handleListConversationMessages lists a conversation's messages in order.
func (s *Server) handleListConversationMessages(w http.ResponseWriter, r *http.Request) {
	user, err := s.currentUser(r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	conversationID, err := pathUUID(r, "id")
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	conversation, err := s.store.GetConversation(r.Context(), conversationID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "failed to get conversation")
		return
	}
	if conversation == nil || conversation.UserID != user.ID {
		notFound := &ErrConversationNotFound{ConversationID: conversationID}
		s.errorResponse(w, HTTPStatus(notFound), notFound.Error())
		return
	}

	messages, err := s.store.ListMessages(r.Context(), conversationID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "failed to list messages")
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"conversation": conversation,
		"messages":     messages,
	})
}
