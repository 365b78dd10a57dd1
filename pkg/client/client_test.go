package client_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"notekeeper-be/pkg/client"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	mu     sync.Mutex
	method string
	path   string
	auth   string
	body   map[string]any
}

func newServer(t *testing.T, status int, reply string) (*httptest.Server, *recorded, *int32) {
	t.Helper()
	rec := &recorded{}
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		rec.mu.Lock()
		defer rec.mu.Unlock()
		rec.method, rec.path, rec.auth = r.Method, r.URL.Path, r.Header.Get("Authorization")
		if data, _ := io.ReadAll(r.Body); len(data) > 0 {
			_ = json.Unmarshal(data, &rec.body)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, reply)
	}))
	t.Cleanup(srv.Close)
	return srv, rec, &calls
}

func TestClient_NoteCalls(t *testing.T) {
	id := uuid.New()
	noteJSON := `{"id":"` + id.String() + `","title":"Groceries","body":"milk","category":"personal"}`

	tests := []struct {
		name       string
		status     int
		reply      string
		call       func(c *client.Client) (int, any, error)
		wantMethod string
		wantPath   string
		wantBody   map[string]any
	}{
		{
			name: "list", status: 200, reply: `[` + noteJSON + `]`,
			call: func(c *client.Client) (int, any, error) {
				res, err := c.GetNotes(context.Background())
				if err != nil {
					return 0, nil, err
				}
				return res.Status, res.Data, nil
			},
			wantMethod: http.MethodGet, wantPath: "/api/notes",
		},
		{
			name: "show", status: 200, reply: noteJSON,
			call: func(c *client.Client) (int, any, error) {
				res, err := c.GetNote(context.Background(), id)
				if err != nil {
					return 0, nil, err
				}
				return res.Status, res.Data, nil
			},
			wantMethod: http.MethodGet, wantPath: "/api/notes/" + id.String(),
		},
		{
			name: "create", status: 201, reply: noteJSON,
			call: func(c *client.Client) (int, any, error) {
				res, err := c.CreateNote(context.Background(), &client.Note{Title: "Groceries", Body: "milk", Category: "personal"})
				if err != nil {
					return 0, nil, err
				}
				return res.Status, res.Data, nil
			},
			wantMethod: http.MethodPost, wantPath: "/api/notes",
			wantBody: map[string]any{"title": "Groceries", "body": "milk", "category": "personal"},
		},
		{
			name: "update", status: 200, reply: noteJSON,
			call: func(c *client.Client) (int, any, error) {
				res, err := c.UpdateNote(context.Background(), &client.Note{Id: id, Title: "Groceries", Body: "milk", Category: "personal"})
				if err != nil {
					return 0, nil, err
				}
				return res.Status, res.Data, nil
			},
			wantMethod: http.MethodPatch, wantPath: "/api/notes/" + id.String(),
			wantBody: map[string]any{"title": "Groceries", "body": "milk", "category": "personal"},
		},
		{
			name: "delete", status: 204,
			call: func(c *client.Client) (int, any, error) {
				res, err := c.DeleteNote(context.Background(), id)
				if err != nil {
					return 0, nil, err
				}
				return res.Status, res.Data, nil
			},
			wantMethod: http.MethodDelete, wantPath: "/api/notes/" + id.String(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, rec, _ := newServer(t, tt.status, tt.reply)
			c := client.New(srv.URL, client.WithToken("tok"))

			status, data, err := tt.call(c)
			require.NoError(t, err)
			assert.Equal(t, tt.status, status)
			rec.mu.Lock()
			defer rec.mu.Unlock()
			assert.Equal(t, tt.wantMethod, rec.method)
			assert.Equal(t, tt.wantPath, rec.path)
			assert.Equal(t, "Bearer tok", rec.auth)
			if tt.wantBody != nil {
				assert.Equal(t, tt.wantBody, rec.body)
			}
			if tt.reply != "" {
				assert.NotNil(t, data)
			}
		})
	}
}

func TestClient_StatusIsNotAnError(t *testing.T) {
	srv, _, _ := newServer(t, http.StatusUnprocessableEntity, `{"title":["can't be blank"]}`)
	c := client.New(srv.URL)

	res, err := c.CreateNote(context.Background(), &client.Note{})
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, res.Status)
	assert.False(t, res.OK())
	assert.Nil(t, res.Data)
	assert.Equal(t, map[string][]string{"title": {"can't be blank"}}, res.Errors())
}

func TestClient_NotFound(t *testing.T) {
	srv, _, _ := newServer(t, http.StatusNotFound, `{"error":"not found"}`)
	c := client.New(srv.URL)

	res, err := c.GetNote(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, res.Status)
	assert.Nil(t, res.Data)
	assert.JSONEq(t, `{"error":"not found"}`, string(res.Body))
}

func TestClient_UpdateWithoutIDMakesNoRequest(t *testing.T) {
	srv, _, calls := newServer(t, http.StatusOK, `{}`)
	c := client.New(srv.URL)

	res, err := c.UpdateNote(context.Background(), &client.Note{Title: "x"})
	assert.ErrorIs(t, err, client.ErrMissingNoteID)
	assert.Nil(t, res)

	_, err = c.UpdateNote(context.Background(), nil)
	assert.ErrorIs(t, err, client.ErrMissingNoteID)
	assert.Zero(t, atomic.LoadInt32(calls))
}

func TestClient_CreateNilNoteMakesNoRequest(t *testing.T) {
	srv, _, calls := newServer(t, http.StatusCreated, `{}`)
	c := client.New(srv.URL)

	res, err := c.CreateNote(context.Background(), nil)
	assert.ErrorIs(t, err, client.ErrNilNote)
	assert.Nil(t, res)
	assert.Zero(t, atomic.LoadInt32(calls))
}

func TestClient_TransportFailure(t *testing.T) {
	srv, _, _ := newServer(t, http.StatusOK, `[]`)
	url := srv.URL
	srv.Close()

	res, err := client.New(url).GetNotes(context.Background())
	assert.Error(t, err)
	assert.Nil(t, res)
}

func TestClient_CancelledContext(t *testing.T) {
	srv, _, _ := newServer(t, http.StatusOK, `[]`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.New(srv.URL).GetNotes(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClient_LoginKeepsToken(t *testing.T) {
	userId := uuid.New()
	srv, rec, _ := newServer(t, http.StatusOK,
		`{"success":true,"code":200,"message":"Login successful","data":{"access_token":"jwt","token_type":"Bearer","user_id":"`+userId.String()+`"}}`)
	c := client.New(srv.URL)

	res, err := c.Login(context.Background(), "me@example.com", "secret-pass")
	require.NoError(t, err)
	require.NotNil(t, res.Data)
	assert.Equal(t, userId, res.Data.UserId)
	assert.Equal(t, "jwt", c.AuthToken())
	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Equal(t, "/api/auth/login", rec.path)
	assert.Equal(t, map[string]any{"email": "me@example.com", "password": "secret-pass"}, rec.body)
}

func TestClient_FailedLoginKeepsNoToken(t *testing.T) {
	srv, _, _ := newServer(t, http.StatusUnauthorized, `{"success":false,"code":401,"message":"invalid email or password"}`)
	c := client.New(srv.URL)

	res, err := c.Login(context.Background(), "me@example.com", "wrong")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, res.Status)
	assert.Nil(t, res.Data)
	assert.Empty(t, c.AuthToken())
}
