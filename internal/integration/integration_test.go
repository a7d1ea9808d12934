package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"celebrity-trivia/internal/app"
	"celebrity-trivia/internal/domain"
	"celebrity-trivia/internal/infra/postgres"
	infraredis "celebrity-trivia/internal/infra/redis"
	"celebrity-trivia/internal/tmdb"
	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestPlayRoundEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	if err := postgres.Migrate(ctx, pgURL); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	// a second run finds nothing to apply
	if err := postgres.Migrate(ctx, pgURL); err != nil {
		t.Fatalf("re-migrate: %v", err)
	}

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	upstream, hits := fakeTMDb(t)
	client := tmdb.NewClient(tmdb.Options{APIKey: "test", BaseURL: upstream.URL})
	api := tmdb.NewAPI(infraredis.NewMetadataCache(redisClient, client, 5*time.Minute))

	catalog := postgres.NewCatalogStore(pool)
	scores := postgres.NewScoreStore(pool)
	games := app.NewGameService(catalog, scores, infraredis.NewRoundStore(redisClient, 5*time.Minute), api, app.GameOptions{
		NumOptions: 5,
		NumCorrect: 2,
		Seed:       func() int64 { return 7 },
	})

	started, err := games.StartRound(ctx, "603")
	if err != nil || !started.OK {
		t.Fatalf("start round: %+v %v", started, err)
	}
	if len(started.Payload.Options) != 5 {
		t.Fatalf("expected 5 options, got %+v", started.Payload.Options)
	}

	var picked []int
	for _, p := range started.Payload.Options {
		if p.ID <= 3 {
			picked = append(picked, p.ID)
		}
	}
	scored, err := games.SubmitRound(ctx, domain.Submission{RoundID: started.Payload.ID, Selected: picked})
	if err != nil || !scored.OK {
		t.Fatalf("submit round: %+v %v", scored, err)
	}
	if s := scored.Payload.Score; s.NumCorrect != 2 || s.NumIncorrect != 0 || s.NumAnswers != 2 || s.ID == 0 {
		t.Fatalf("unexpected score %+v", s)
	}

	history, err := games.ListScores(ctx)
	if err != nil {
		t.Fatalf("list scores: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected one score record, got %+v", history)
	}

	// the second round is served from the catalog and the response cache
	before := hits.count("/movie/603")
	if _, err := games.StartRound(ctx, "603"); err != nil {
		t.Fatalf("second round: %v", err)
	}
	if hits.count("/movie/603") != before {
		t.Fatalf("movie details fetched again")
	}
}

func TestGetOrCreatePersonConcurrent(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	if err := postgres.Migrate(ctx, pgURL); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()
	catalog := postgres.NewCatalogStore(pool)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, ok, err := catalog.GetOrCreatePerson(ctx, domain.Person{ID: 6384, Name: fmt.Sprintf("Keanu %d", i)})
			if err != nil {
				t.Errorf("get or create: %v", err)
				return
			}
			if ok {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()
	if created != 1 {
		t.Fatalf("expected exactly one creation, got %d", created)
	}

	people, err := catalog.People(ctx, []int{6384})
	if err != nil || len(people) != 1 {
		t.Fatalf("people: %+v %v", people, err)
	}
	again, ok, err := catalog.GetOrCreatePerson(ctx, domain.Person{ID: 6384, Name: "Someone Else"})
	if err != nil || ok || again.Name != people[0].Name {
		t.Fatalf("existing record must win: %+v created=%v err=%v", again, ok, err)
	}
}

type hitCounter struct {
	mu   sync.Mutex
	hits map[string]int
}

func (h *hitCounter) add(path string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hits[path]++
}

func (h *hitCounter) count(path string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.hits[path]
}

func fakeTMDb(t *testing.T) (*httptest.Server, *hitCounter) {
	t.Helper()
	docs := map[string]string{
		"/movie/603": `{"id":603,"title":"The Matrix","release_date":"1999-03-30"}`,
		"/movie/603/credits": `{"cast":[
			{"id":1,"name":"Keanu Reeves","character":"Neo"},
			{"id":2,"name":"Laurence Fishburne","character":"Morpheus"},
			{"id":3,"name":"Carrie-Anne Moss","character":"Trinity"}]}`,
		"/movie/603/recommendations": `{"results":[{"id":604,"title":"The Matrix Reloaded"},{"id":245891,"title":"John Wick"}]}`,
		"/movie/604/credits":         `{"cast":[{"id":2,"name":"Laurence Fishburne"},{"id":10,"name":"Monica Bellucci"}]}`,
		"/movie/245891/credits":      `{"cast":[{"id":1,"name":"Keanu Reeves"},{"id":20,"name":"Ian McShane"},{"id":21,"name":"Willem Dafoe"}]}`,
	}
	hits := &hitCounter{hits: map[string]int{}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.add(r.URL.Path)
		doc, ok := docs[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		var probe json.RawMessage
		if err := json.Unmarshal([]byte(doc), &probe); err != nil {
			t.Errorf("bad fixture for %s: %v", r.URL.Path, err)
		}
		w.Write([]byte(doc))
	}))
	t.Cleanup(srv.Close)
	return srv, hits
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "trivia", "POSTGRES_PASSWORD": "triviapass", "POSTGRES_DB": "triviadb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://trivia:triviapass@%s:%s/triviadb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(opts), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
