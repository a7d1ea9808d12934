package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"celebrity-trivia/internal/app"
	"celebrity-trivia/internal/infra/files"
	"celebrity-trivia/internal/infra/memory"
	"celebrity-trivia/internal/tmdb"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// fakeTMDb serves The Matrix, one recommendation and a profile image.
func fakeTMDb(t *testing.T) *httptest.Server {
	t.Helper()
	docs := map[string]any{
		"/search/movie": map[string]any{"results": []map[string]any{
			{"id": 603, "title": "The Matrix", "release_date": "1999-03-30"},
		}},
		"/movie/603": map[string]any{"id": 603, "title": "The Matrix", "release_date": "1999-03-30"},
		"/movie/603/credits": map[string]any{"cast": []map[string]any{
			{"id": 1, "name": "Keanu Reeves", "character": "Neo", "profile_path": "/keanu.jpg"},
			{"id": 2, "name": "Laurence Fishburne", "character": "Morpheus"},
			{"id": 3, "name": "Carrie-Anne Moss", "character": "Trinity"},
		}},
		"/movie/603/recommendations": map[string]any{"results": []map[string]any{
			{"id": 245891, "title": "John Wick"},
		}},
		"/movie/245891/credits": map[string]any{"cast": []map[string]any{
			{"id": 20, "name": "Ian McShane"},
			{"id": 21, "name": "Willem Dafoe"},
			{"id": 22, "name": "Adrianne Palicki"},
		}},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/img/keanu.jpg" {
			w.Write([]byte("jpeg"))
			return
		}
		doc, ok := docs[r.URL.Path]
		if !ok {
			http.Error(w, `{"status_message":"The resource you requested could not be found."}`, http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(doc)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

type testEnv struct {
	server *httptest.Server
	scores *memory.ScoreStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	upstream := fakeTMDb(t)
	api := tmdb.NewAPI(memory.NewMetadataCache(tmdb.NewClient(tmdb.Options{
		APIKey:       "test",
		BaseURL:      upstream.URL,
		ImageBaseURL: upstream.URL + "/img",
	}), time.Minute))

	catalog := memory.NewCatalogStore()
	scores := memory.NewScoreStore()
	games := app.NewGameService(catalog, scores, memory.NewRoundStore(time.Minute), api, app.GameOptions{
		NumOptions: 5,
		NumCorrect: 2,
		Seed:       func() int64 { return 1 },
	})
	imageStore, err := files.NewImageStore(t.TempDir())
	if err != nil {
		t.Fatalf("image store: %v", err)
	}
	images := app.NewImageCacher(api, imageStore, catalog)

	reg := prometheus.NewRegistry()
	router := NewRouter(NewHandler(games, images), NewWSHandler(games, images), promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &testEnv{server: srv, scores: scores}
}
