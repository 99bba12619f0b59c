package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	e "github.com/gurisdeprograma/ProjetoJPA/internal/portal/errors"
	"github.com/gurisdeprograma/ProjetoJPA/internal/portal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeTokens struct {
	token  string
	purged int32
}

func (f *fakeTokens) Token() string { return f.token }
func (f *fakeTokens) Purge() {
	atomic.AddInt32(&f.purged, 1)
	f.token = ""
}

func newTestClient(t *testing.T, handler http.Handler, tokens *fakeTokens) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, tokens, srv.Client(), zaptest.NewLogger(t))
}

func TestClientAttachesBearerToken(t *testing.T) {
	var got string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`[]`))
	}), &fakeTokens{token: "tok-abc"})

	_, err := c.OpenVacancies(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-abc", got)
}

func TestClientSkipsAuthForPublicEndpoints(t *testing.T) {
	var got string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"token": "fresh", "id": 1, "nome": "Ana", "role": "estudante",
		})
	}), &fakeTokens{token: "tok-stale"})

	_, err := c.Login(context.Background(), "ana@x.com", "s3nha")
	require.NoError(t, err)
	assert.Empty(t, got, "login must not carry an Authorization header")
}

func TestClientPurgesCorruptTokenAndOmitsHeader(t *testing.T) {
	var header string
	tokens := &fakeTokens{token: "undefined"}
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`[]`))
	}), tokens)

	_, err := c.OpenVacancies(context.Background())
	require.NoError(t, err)
	assert.Empty(t, header, "corrupt token must never be sent")
	assert.EqualValues(t, 1, tokens.purged, "corrupt token must be purged from storage")
}

func TestClientSetsRequestID(t *testing.T) {
	var got string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("X-Request-Id")
		_, _ = w.Write([]byte(`[]`))
	}), &fakeTokens{token: "tok"})

	_, err := c.OpenVacancies(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, got)
}

func TestClientMapsNotFound(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"vaga não encontrada"}`, http.StatusNotFound)
	}), &fakeTokens{token: "tok"})

	_, err := c.Vacancy(context.Background(), 99)
	assert.ErrorIs(t, err, e.ErrNotFound)
}

func TestClientMapsValidationFailureWithMessage(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"CPF inválido"}`))
	}), &fakeTokens{token: "tok"})

	_, err := c.CreateVacancy(context.Background(), VacancyRequest{Title: "x"})
	assert.ErrorIs(t, err, e.ErrInvalidInput)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "CPF inválido", apiErr.Message("fallback"))
}

func TestClientRejectedCredentialIsPurged(t *testing.T) {
	tokens := &fakeTokens{token: "tok-revoked"}
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}), tokens)

	_, err := c.OpenVacancies(context.Background())
	assert.ErrorIs(t, err, e.ErrUnauthorized)
	assert.EqualValues(t, 1, tokens.purged)
}

func TestClientRetriesTransientGetFailure(t *testing.T) {
	var calls int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}), &fakeTokens{token: "tok"})

	_, err := c.OpenVacancies(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, calls)
}

func TestClientNeverRetriesMutations(t *testing.T) {
	var calls int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}), &fakeTokens{token: "tok"})

	_, err := c.CreateApplication(context.Background(), 1, 42)
	assert.ErrorIs(t, err, e.ErrUnavailable)
	assert.EqualValues(t, 1, calls, "a failing POST must not be replayed")
}

func TestClientMalformedResponse(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id": "not-a-number"`))
	}), &fakeTokens{token: "tok"})

	// POST: no retry loop in the way
	_, err := c.CreateApplication(context.Background(), 1, 42)
	assert.ErrorIs(t, err, e.ErrMalformedResponse)
}

func TestClientMalformedGetResponseIsNotRetried(t *testing.T) {
	var calls int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(`{"id": "not-a-number"`))
	}), &fakeTokens{token: "tok"})

	_, err := c.Vacancy(context.Background(), 1)
	assert.ErrorIs(t, err, e.ErrMalformedResponse)
	assert.EqualValues(t, 1, calls, "an undecodable 2xx body must not be replayed")
}

func TestLoginNormalizesRole(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"token": "tok-new", "id": 3, "nome": "Root", "role": "ADMIN",
		})
	}), &fakeTokens{})

	res, err := c.Login(context.Background(), "root@x.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "tok-new", res.Token)
	assert.Equal(t, models.RoleAdmin, res.Identity.Role)
}

func TestCreateApplicationWireFormat(t *testing.T) {
	var body map[string]any
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/inscricoes", r.URL.Path)
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &body))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":7,"status":"PENDENTE"}`))
	}), &fakeTokens{token: "tok"})

	app, err := c.CreateApplication(context.Background(), 12, 42)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, app.Status)

	student := body["estudante"].(map[string]any)
	vacancy := body["vaga"].(map[string]any)
	assert.EqualValues(t, 12, student["id"])
	assert.EqualValues(t, 42, vacancy["id"])
}

func TestUpdateApplicationStatusWireFormat(t *testing.T) {
	var path string
	var body map[string]any
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &body))
		w.WriteHeader(http.StatusOK)
	}), &fakeTokens{token: "tok"})

	err := c.UpdateApplicationStatus(context.Background(), 7, models.StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, "/inscricoes/7", path)
	assert.Equal(t, "APROVADO", body["status"])
}

func TestCloseVacancyPath(t *testing.T) {
	var method, path string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		w.WriteHeader(http.StatusOK)
	}), &fakeTokens{token: "tok"})

	require.NoError(t, c.CloseVacancy(context.Background(), 10))
	assert.Equal(t, http.MethodPut, method)
	assert.Equal(t, "/vagas-estagio/10/encerrar", path)
}

func TestVacancyStatsDecoding(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/avaliacoes/vaga/10/estatisticas", r.URL.Path)
		_, _ = w.Write([]byte(`{"avaliacoes":[{"id":1,"nota":5},{"id":2,"nota":4}],"mediaNotas":4.5}`))
	}), &fakeTokens{token: "tok"})

	stats, err := c.VacancyStats(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, stats.Ratings, 2)
	assert.Equal(t, 4.5, stats.MeanScore)
}

func TestAPIErrorPlainTextBody(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("campo obrigatório"))
	}), &fakeTokens{token: "tok"})

	err := c.DeleteVacancy(context.Background(), 1)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "campo obrigatório", apiErr.Message(""))
}
