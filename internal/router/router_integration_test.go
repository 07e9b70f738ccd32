//go:build integration

package router

// Integration tests against real Postgres + Redis via testcontainers.
// Run with: go test -tags integration ./internal/router/... -v

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/careguardpe-bit/careguard-backend/internal/config"
	"github.com/careguardpe-bit/careguard-backend/internal/infra"
	"github.com/careguardpe-bit/careguard-backend/internal/model"
	"github.com/careguardpe-bit/careguard-backend/internal/repository"
	"github.com/careguardpe-bit/careguard-backend/internal/worker"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"gorm.io/gorm"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), bytes.Repeat([]byte{0}, 64)...)

// ── Test environment ─────────────────────────────────────────────────────────

type testEnv struct {
	server *httptest.Server
	db     *gorm.DB
	rdb    *redis.Client
	cfg    *config.Config
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.Run(ctx, "postgres:16-alpine",
		tcPostgres.WithDatabase("careguard_test"),
		tcPostgres.WithUsername("careguard"),
		tcPostgres.WithPassword("careguard"),
		tcPostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Env:                "test",
		APIVersion:         "1.0.0",
		RateLimitPerMinute: 0,
		DatabaseURL:        pgURL,
		RedisURL:           rdURL,
		WorkerPoolSize:     1,
		UploadDir:          t.TempDir(),
		MaxUploadMB:        1,
		PDFStoragePath:     t.TempDir(),
	}

	require.NoError(t, infra.RunMigrations(cfg.DatabaseURL))
	// second run must be a no-op
	require.NoError(t, infra.RunMigrations(cfg.DatabaseURL))

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	require.NoError(t, err)
	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	engine := New(cfg, db, rdb, worker.NewDispatcher(rdb), nil)
	srv := httptest.NewServer(engine)
	t.Cleanup(srv.Close)

	return &testEnv{server: srv, db: db, rdb: rdb, cfg: cfg}
}

// ── Helpers ──────────────────────────────────────────────────────────────────

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

type usuarioData struct {
	ID             int64     `json:"id"`
	Especialidades *string   `json:"especialidades"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (e *testEnv) doJSON(t *testing.T, method, path string, body any) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, e.server.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	return e.send(t, req)
}

func (e *testEnv) upload(t *testing.T, email, docType, filename, contentType string, content []byte) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("user_email", email))
	require.NoError(t, mw.WriteField("document_type", docType))
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="document"; filename="%s"`, filename))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, e.server.URL+"/api/documents", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return e.send(t, req)
}

func (e *testEnv) send(t *testing.T, req *http.Request) (int, envelope) {
	t.Helper()
	resp, err := e.server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func (e *testEnv) documentFiles(t *testing.T) []string {
	t.Helper()
	entries, err := os.ReadDir(filepath.Join(e.cfg.UploadDir, "documents"))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, en := range entries {
		names = append(names, en.Name())
	}
	return names
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestIntegration(t *testing.T) {
	env := setupTestEnv(t)

	t.Run("paises sembrados", func(t *testing.T) {
		status, body := env.doJSON(t, http.MethodGet, "/api/countries", nil)
		require.Equal(t, http.StatusOK, status)
		var paises []struct {
			ID      int64  `json:"id"`
			Country string `json:"country"`
		}
		require.NoError(t, json.Unmarshal(body.Data, &paises))
		require.Len(t, paises, 6)
		assert.Equal(t, "Perú", paises[0].Country)

		status, body = env.doJSON(t, http.MethodPost, "/api/countries/select", map[string]any{"countryId": 7})
		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, "País no encontrado", body.Message)
	})

	t.Run("upsert de usuario", func(t *testing.T) {
		status, body := env.doJSON(t, http.MethodPost, "/api/users", map[string]any{
			"email": "ana@example.com", "nombre": "Ana", "country_id": 1,
			"especialidades": []string{"enfermería", "pediatría"},
		})
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, "Usuario creado", body.Message)
		var creado usuarioData
		require.NoError(t, json.Unmarshal(body.Data, &creado))

		time.Sleep(10 * time.Millisecond)
		status, body = env.doJSON(t, http.MethodPost, "/api/users", map[string]any{
			"email": "ana@example.com", "nombre": "Ana María", "country_id": "2",
		})
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, "Usuario actualizado", body.Message)
		var actualizado usuarioData
		require.NoError(t, json.Unmarshal(body.Data, &actualizado))
		assert.Equal(t, creado.ID, actualizado.ID)
		assert.True(t, creado.CreatedAt.Equal(actualizado.CreatedAt))
		assert.True(t, actualizado.UpdatedAt.After(creado.UpdatedAt),
			"updated_at %s debe avanzar sobre %s", actualizado.UpdatedAt, creado.UpdatedAt)

		var count int64
		require.NoError(t, env.db.Model(&model.Usuario{}).Where("email = ?", "ana@example.com").Count(&count).Error)
		assert.Equal(t, int64(1), count)

		status, body = env.doJSON(t, http.MethodGet, "/api/users/ana@example.com", nil)
		require.Equal(t, http.StatusOK, status)
		assert.Contains(t, string(body.Data), `"country_name":"Chile"`)
		assert.Contains(t, string(body.Data), `"nombre":"Ana María"`)

		status, body = env.doJSON(t, http.MethodPost, "/api/users", map[string]any{"email": "x@example.com", "country_id": 7})
		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, "País no encontrado", body.Message)
	})

	t.Run("especialidades ida y vuelta", func(t *testing.T) {
		cases := []struct {
			name string
			in   any
			want string
		}{
			{"lista", []string{"enfermería", "pediatría"}, `["enfermería","pediatría"]`},
			{"objeto", map[string]string{"k": "v"}, `{"k":"v"}`},
			{"texto plano", "pediatría", "pediatría"},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				status, _ := env.doJSON(t, http.MethodPost, "/api/users", map[string]any{
					"email": "esp@example.com", "country_id": 1, "especialidades": tc.in,
				})
				require.Equal(t, http.StatusOK, status)

				status, body := env.doJSON(t, http.MethodGet, "/api/users/esp@example.com", nil)
				require.Equal(t, http.StatusOK, status)
				var u usuarioData
				require.NoError(t, json.Unmarshal(body.Data, &u))
				require.NotNil(t, u.Especialidades)
				assert.Equal(t, tc.want, *u.Especialidades)
			})
		}
		require.NoError(t, env.db.Where("email = ?", "esp@example.com").Delete(&model.Usuario{}).Error)
	})

	t.Run("documento reemplazado", func(t *testing.T) {
		status, body := env.upload(t, "ana@example.com", "dni", "dni.png", "image/png", pngBytes)
		require.Equal(t, http.StatusOK, status, body.Message)
		var first struct {
			Filename string `json:"filename"`
		}
		require.NoError(t, json.Unmarshal(body.Data, &first))

		status, _ = env.upload(t, "ana@example.com", "dni", "dni2.png", "image/png", pngBytes)
		require.Equal(t, http.StatusOK, status)

		status, body = env.doJSON(t, http.MethodGet, "/api/documents/ana@example.com", nil)
		require.Equal(t, http.StatusOK, status)
		var docs []struct {
			OriginalName string `json:"original_name"`
		}
		require.NoError(t, json.Unmarshal(body.Data, &docs))
		require.Len(t, docs, 1)
		assert.Equal(t, "dni2.png", docs[0].OriginalName)
		assert.NotContains(t, env.documentFiles(t), first.Filename)
		assert.Len(t, env.documentFiles(t), 1)
	})

	t.Run("documento de usuario inexistente", func(t *testing.T) {
		before := len(env.documentFiles(t))
		status, body := env.upload(t, "nadie@example.com", "dni", "dni.png", "image/png", pngBytes)
		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, "Usuario no encontrado", body.Message)
		assert.Len(t, env.documentFiles(t), before)
	})

	t.Run("documento tipo no permitido", func(t *testing.T) {
		status, body := env.upload(t, "ana@example.com", "cv", "cv.txt", "text/plain", []byte("hola"))
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "Tipo de archivo no permitido", body.Error)
	})

	t.Run("reemplazos concurrentes dejan una fila", func(t *testing.T) {
		repo := repository.NewDocumentoRepository(env.db)
		var u model.Usuario
		require.NoError(t, env.db.Where("email = ?", "ana@example.com").Take(&u).Error)

		var wg sync.WaitGroup
		errs := make(chan error, 8)
		for i := range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := repo.Reemplazar(context.Background(), &model.Documento{
					UserID: u.ID, DocumentType: "antecedentes",
					Filename: fmt.Sprintf("race-%d.pdf", i), OriginalName: "a.pdf",
					FileSize: 1, MimeType: "application/pdf", FilePath: "/dev/null",
				})
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			assert.NoError(t, err)
		}

		var count int64
		require.NoError(t, env.db.Model(&model.Documento{}).
			Where("user_id = ? AND document_type = ?", u.ID, "antecedentes").Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	t.Run("postulación", func(t *testing.T) {
		status, body := env.doJSON(t, http.MethodPost, "/api/submissions", map[string]any{
			"user_email": "ana@example.com", "terms_accepted": true,
		})
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, "Postulación enviada correctamente", body.Message)
		assert.Regexp(t, `"reference_number":"CG-\d{4}-\d{6}"`, string(body.Data))

		n, err := env.rdb.LLen(context.Background(), worker.QueueConfirmacion).Result()
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		status, body = env.doJSON(t, http.MethodGet, "/api/submissions/ana@example.com", nil)
		require.Equal(t, http.StatusOK, status)
		assert.Contains(t, string(body.Data), `"email":"ana@example.com"`)

		status, _ = env.doJSON(t, http.MethodPost, "/api/submissions", map[string]any{"user_email": "nadie@example.com"})
		assert.Equal(t, http.StatusNotFound, status)
	})

	t.Run("stats y diagnóstico", func(t *testing.T) {
		resp, err := env.server.Client().Get(env.server.URL + "/api/stats")
		require.NoError(t, err)
		var stats struct {
			Data struct {
				TotalUsers          int64            `json:"total_users"`
				TotalDocuments      int64            `json:"total_documents"`
				TotalSubmissions    int64            `json:"total_submissions"`
				SubmissionsByStatus map[string]int64 `json:"submissions_by_status"`
			} `json:"data"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
		resp.Body.Close()
		assert.Equal(t, int64(1), stats.Data.TotalUsers)
		assert.Equal(t, int64(2), stats.Data.TotalDocuments)
		assert.Equal(t, int64(1), stats.Data.TotalSubmissions)
		assert.Equal(t, map[string]int64{"pendiente": 1}, stats.Data.SubmissionsByStatus)

		resp, err = env.server.Client().Get(env.server.URL + "/test-db")
		require.NoError(t, err)
		var info map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&info))
		resp.Body.Close()
		assert.Equal(t, "PostgreSQL", info["postgresql_version"])

		resp, err = env.server.Client().Get(env.server.URL + "/health")
		require.NoError(t, err)
		var health map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, true, health["success"])
		assert.Equal(t, "connected", health["db"])

		resp, err = env.server.Client().Get(env.server.URL + "/")
		require.NoError(t, err)
		var root map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&root))
		resp.Body.Close()
		assert.Equal(t, true, root["success"])
	})

	t.Run("ruta inexistente", func(t *testing.T) {
		status, body := env.doJSON(t, http.MethodGet, "/api/nada", nil)
		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, "Endpoint no encontrado", body.Message)
	})
}

type failingHandler struct{}

func (failingHandler) Process(context.Context, json.RawMessage) error {
	return errors.New("smtp unreachable")
}

func TestIntegration_WorkerEnviaAlDLQ(t *testing.T) {
	env := setupTestEnv(t)
	ctx, cancel := context.WithCancel(context.Background())

	wg := worker.StartWorkerPool(ctx, env.rdb, map[string]worker.JobHandler{
		worker.QueueConfirmacion: failingHandler{},
	}, 1)
	require.NoError(t, worker.NewDispatcher(env.rdb).EnqueueConfirmacion(ctx, 42))

	assert.Eventually(t, func() bool {
		n, err := worker.DLQLength(ctx, env.rdb, worker.QueueConfirmacion)
		return err == nil && n == 1
	}, 10*time.Second, 100*time.Millisecond)

	entries, err := worker.ListDLQ(ctx, env.rdb, worker.QueueConfirmacion, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "smtp unreachable", entries[0].Reason)
	assert.JSONEq(t, `{"submission_id":42}`, string(entries[0].Payload))

	cancel()
	wg.Wait()
}
