package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/cristianoliveira/retroshelf/internal/api"
	"github.com/cristianoliveira/retroshelf/internal/catalog"
	"github.com/cristianoliveira/retroshelf/internal/errors"
	"github.com/cristianoliveira/retroshelf/internal/kvstore"
	"github.com/cristianoliveira/retroshelf/internal/logging"
	"github.com/cristianoliveira/retroshelf/internal/prefs"
	"github.com/cristianoliveira/retroshelf/internal/query"
	"github.com/cristianoliveira/retroshelf/internal/session"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

// recordingOutput captures what the CLI handler would print.
type recordingOutput struct {
	mu    sync.Mutex
	lines []string
}

func (r *recordingOutput) add(msgs []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, strings.Join(msgs, " "))
}

func (r *recordingOutput) Error(msgs ...string)   { r.add(msgs) }
func (r *recordingOutput) Warning(msgs ...string) { r.add(msgs) }
func (r *recordingOutput) Info(msgs ...string)    { r.add(msgs) }
func (r *recordingOutput) Success(msgs ...string) { r.add(msgs) }

func (r *recordingOutput) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.lines...)
}

// fakeBackend is a tiny stand-in for the REST API.
type fakeBackend struct {
	mu       sync.Mutex
	requests []*http.Request
	bodies   []string
	status   map[string]int
}

func (b *fakeBackend) last(path string) *http.Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := len(b.requests) - 1; i >= 0; i-- {
		if b.requests[i].URL.Path == path {
			return b.requests[i]
		}
	}
	return nil
}

func (b *fakeBackend) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.requests)
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var body bytes.Buffer
	_, _ = body.ReadFrom(r.Body)
	b.mu.Lock()
	b.requests = append(b.requests, r)
	b.bodies = append(b.bodies, body.String())
	status := b.status[r.URL.Path]
	b.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"code":"NOT_FOUND","message":"missing"}`))
		return
	}
	enc := json.NewEncoder(w)
	switch path := strings.TrimPrefix(r.URL.Path, "/api/"); {
	case path == "auth/login":
		_ = enc.Encode(api.AuthResponse{Token: "tok-1", User: api.User{ID: "u1", Slug: "mario", Email: "mario@retro.test", DisplayName: "Mario"}})
	case path == "auth/me":
		_ = enc.Encode(api.User{ID: "u1", Slug: "mario", Email: "mario@retro.test", DisplayName: "Mario"})
	case path == "auth/logout":
		w.WriteHeader(http.StatusNoContent)
	case path == "collection/items" && r.Method == http.MethodPost:
		_ = enc.Encode(catalog.CollectionItem{ID: 9, Kind: "console", Name: "Mega Drive"})
	case strings.HasPrefix(path, "collection/items/"):
		w.WriteHeader(http.StatusNoContent)
	default:
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		perPage, _ := strconv.Atoi(r.URL.Query().Get("perPage"))
		page, perPage = max(page, 1), max(perPage, 1)
		items := make([]map[string]any, 0, perPage)
		for i := 0; i < perPage && i < 3; i++ {
			n := (page-1)*perPage + i
			items = append(items, map[string]any{"slug": path + "-" + strconv.Itoa(n), "name": "Item " + strconv.Itoa(n), "title": "Item " + strconv.Itoa(n)})
		}
		_ = enc.Encode(map[string]any{"items": items, "total": 150})
	}
}

type testEnv struct {
	app     *app
	load    appLoader
	backend *fakeBackend
	output  *recordingOutput
	store   kvstore.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	backend := &fakeBackend{status: map[string]int{}}
	server := httptest.NewServer(backend)
	t.Cleanup(server.Close)

	store := kvstore.NewMemoryStore()
	client, err := api.NewClient(server.URL)
	require.NoError(t, err)
	sess := session.New(store, client, nil)
	client.SetTokenSource(sess)
	_ = sess.Initialize(context.Background())

	cache := query.New(query.WithGate(sess))
	out := &recordingOutput{}
	a := &app{
		logger:  logging.Noop(),
		store:   store,
		prefs:   prefs.NewStore(store, nil),
		client:  client,
		session: sess,
		cache:   cache,
		catalog: catalog.NewService(client, cache),
		handler: errors.NewCLIHandler(out),
	}
	return &testEnv{
		app:     a,
		load:    func(context.Context) (*app, error) { return a, nil },
		backend: backend,
		output:  out,
		store:   store,
	}
}

// execute runs c with args and returns what it wrote to stdout.
func execute(t *testing.T, c *cobra.Command, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	c.SetOut(&out)
	c.SetErr(&out)
	c.SetIn(strings.NewReader(stdin))
	c.SetArgs(args)
	c.SilenceUsage = true
	c.SilenceErrors = true
	err := c.ExecuteContext(context.Background())
	return out.String(), err
}

func (b *fakeBackend) lastBody(path string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := len(b.requests) - 1; i >= 0; i-- {
		if b.requests[i].URL.Path == path {
			return b.bodies[i]
		}
	}
	return ""
}
