// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginSetsSessionCookie(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/login", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)

		var req CredentialsRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "a@b.c", req.Email)
		assert.Equal(t, "secret", req.Password)

		http.SetCookie(w, &http.Cookie{Name: "session", Value: "tok123"})
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	err := client.Login(context.Background(), "a@b.c", "secret")
	require.NoError(t, err)

	cookies := client.Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "session", cookies[0].Name)
	assert.Equal(t, "tok123", cookies[0].Value)
}

func TestSessionCookieSurvivesRestart(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/login", func(w http.ResponseWriter, r *http.Request) {
		// No Path attribute: the jar scopes this cookie to /api.
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "tok123"})
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/api/me", func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie("session")
		if err != nil || cookie.Value != "tok123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"user":{"email":"a@b.c","power":42}}`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	first := NewClient(server.URL)
	require.NoError(t, first.Login(context.Background(), "a@b.c", "secret"))
	saved := first.Cookies()
	require.Len(t, saved, 1, "session cookie must be visible for persistence")

	second := NewClient(server.URL)
	second.SetCookies(saved)
	user, err := second.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a@b.c", user.Email)
}

func TestLoginInvalidCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "invalid credentials"})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	err := client.Login(context.Background(), "a@b.c", "wrong")
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
	assert.Contains(t, err.Error(), "invalid credentials")
}

func TestMeSendsCookie(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie("session")
		if err != nil || cookie.Value != "tok123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"user":{"email":"a@b.c","power":42}}`)
	}))
	defer server.Close()

	client := NewClient(server.URL)

	_, err := client.Me(context.Background())
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))

	client.SetCookies([]*http.Cookie{{Name: "session", Value: "tok123"}})

	user, err := client.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a@b.c", user.Email)
	assert.Equal(t, 42, user.Power)
}

func TestLogoutClearsSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	client.SetCookies([]*http.Cookie{{Name: "session", Value: "tok123"}})
	require.Len(t, client.Cookies(), 1)

	require.NoError(t, client.Logout(context.Background()))
	assert.Empty(t, client.Cookies())
}

func TestConversations(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/conversation", r.URL.Path)
		require.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"conversations":[{"id":"c1","title":"hello"},{"id":"c2","title":""}]}`)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	convs, err := client.Conversations(context.Background())
	require.NoError(t, err)
	require.Len(t, convs, 2)
	assert.Equal(t, "c1", convs[0].ID)
	assert.Equal(t, "hello", convs[0].Title)
	assert.Equal(t, "untitled", convs[1].DisplayTitle())
}

func TestCreateConversation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/conversation", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"conversationId":"c9"}`)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	id, err := client.CreateConversation(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "c9", id)
}

func TestMessagesPassesConversationID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/message/list", r.URL.Path)
		require.Equal(t, "c1", r.URL.Query().Get("conversationId"))
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"messages":[{"id":"m1","role":"user","content":"hi"},{"id":"m2","role":"assistant","content":"hello"}]}`)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	msgs, err := client.Messages(context.Background(), "c1")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.True(t, msgs[0].IsUser())
	assert.False(t, msgs[1].IsUser())
}

func TestSend(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/message/send", r.URL.Path)

		var req SendMessageRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "c1", req.ConversationID)
		assert.Equal(t, "hi there", req.Content)

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"reply":"hello back"}`)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	reply, err := client.Send(context.Background(), "c1", "hi there")
	require.NoError(t, err)
	assert.Equal(t, "hello back", reply)
}

func TestSendServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusPaymentRequired)
		json.NewEncoder(w).Encode(map[string]string{"error": "insufficient power"})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.Send(context.Background(), "c1", "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insufficient power")
	assert.False(t, IsUnauthorized(err))
}

func TestUpload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/upload", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "cat.png", header.Filename)

		data, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, "fake png bytes", string(data))

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"url":"/uploads/cat.png"}`)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	u, err := client.Upload(context.Background(), "/tmp/cat.png", strings.NewReader("fake png bytes"))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/cat.png", u)
}

func TestUploadRateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]string{"error": "one image per minute"})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.Upload(context.Background(), "cat.png", strings.NewReader("x"))
	require.Error(t, err)
	assert.True(t, IsRateLimited(err))
	assert.Contains(t, err.Error(), "one image per minute")
}

func TestPreparePayment(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/pay/prepare", r.URL.Path)

		var req PrepareRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 20, req.Amount)
		assert.Equal(t, PayMethodAlipay, req.Method)

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"qrcodeUrl":"https://pay.example.com/qr/abc"}`)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	qr, err := client.PreparePayment(context.Background(), 20, PayMethodAlipay)
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example.com/qr/abc", qr)
}

func TestConnectionError(t *testing.T) {
	client := NewClient("http://127.0.0.1:1")
	_, err := client.Me(context.Background())
	require.Error(t, err)

	var clientErr *ClientError
	require.ErrorAs(t, err, &clientErr)
	assert.Equal(t, ErrTypeConnection, clientErr.Type)
}
