package gateway

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"compass-field-client/internal/config"
	"compass-field-client/internal/session"
	"compass-field-client/internal/store"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(baseURL string) *config.Config {
	cfg := config.Default()
	cfg.API.BaseURL = baseURL
	cfg.API.TimeoutSeconds = 1
	return cfg
}

func TestGateway_BearerInjection(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()

	var gotAuth []string
	r := mux.NewRouter()
	r.HandleFunc("/api/ping", func(w http.ResponseWriter, req *http.Request) {
		gotAuth = append(gotAuth, req.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true}`))
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	g := New(testConfig(srv.URL), st)

	t.Run("No Token Means No Header", func(t *testing.T) {
		require.NoError(t, g.Get(ctx, "/api/ping", nil, nil))
		assert.Equal(t, "", gotAuth[len(gotAuth)-1])
	})

	t.Run("Token Is Read Freshly Per Request", func(t *testing.T) {
		require.NoError(t, st.Set(ctx, store.KeyAuthToken, "tok1"))
		require.NoError(t, g.Get(ctx, "/api/ping", nil, nil))
		assert.Equal(t, "Bearer tok1", gotAuth[len(gotAuth)-1])

		// A token swapped mid-lifetime must show up on the next request.
		require.NoError(t, st.Set(ctx, store.KeyAuthToken, "tok2"))
		require.NoError(t, g.Get(ctx, "/api/ping", nil, nil))
		assert.Equal(t, "Bearer tok2", gotAuth[len(gotAuth)-1])
	})
}

func TestGateway_UnauthorizedEvictsStoredToken(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	require.NoError(t, st.Set(ctx, store.KeyAuthToken, "stale"))
	require.NoError(t, st.Set(ctx, store.KeyUser, `{"id":7,"name":"J. Doe"}`))
	require.NoError(t, st.Set(ctx, store.KeyUserType, "Technician"))

	r := mux.NewRouter()
	r.HandleFunc("/api/SiteVisits/technician/7", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	g := New(testConfig(srv.URL), st)
	err := g.Get(ctx, "/api/SiteVisits/technician/7", nil, nil)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindUnauthorized))

	_, err = st.Get(ctx, store.KeyAuthToken)
	assert.ErrorIs(t, err, store.ErrNotFound, "401 must evict the stored token")

	// The other two keys stay; only the token is evicted. A subsequent
	// hydration (simulated app restart) therefore lands on SignedOut.
	m := session.NewManager(st)
	m.Hydrate(ctx)
	assert.Equal(t, session.StateSignedOut, m.Snapshot().State)
}

func TestGateway_ErrorTaxonomy(t *testing.T) {
	ctx := context.Background()

	t.Run("Timeout", func(t *testing.T) {
		r := mux.NewRouter()
		r.HandleFunc("/api/slow", func(w http.ResponseWriter, req *http.Request) {
			time.Sleep(2 * time.Second)
		})
		srv := httptest.NewServer(r)
		defer srv.Close()

		g := New(testConfig(srv.URL), store.NewMemoryStore())
		err := g.Get(ctx, "/api/slow", nil, nil)
		require.Error(t, err)
		assert.True(t, IsKind(err, KindTimeout), "got: %v", err)
		assert.False(t, IsKind(err, KindNetwork))
	})

	t.Run("Network", func(t *testing.T) {
		// Nothing listens here.
		g := New(testConfig("http://127.0.0.1:1"), store.NewMemoryStore())
		err := g.Get(ctx, "/api/ping", nil, nil)
		require.Error(t, err)
		assert.True(t, IsKind(err, KindNetwork), "got: %v", err)
	})

	t.Run("Validation Prefers Server Message", func(t *testing.T) {
		r := mux.NewRouter()
		r.HandleFunc("/api/Auth/register-company", func(w http.ResponseWriter, req *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"success":false,"message":"GST number already registered"}`))
		})
		srv := httptest.NewServer(r)
		defer srv.Close()

		g := New(testConfig(srv.URL), store.NewMemoryStore())
		err := g.Post(ctx, "/api/Auth/register-company", map[string]string{}, nil)
		require.Error(t, err)
		assert.True(t, IsKind(err, KindValidation))
		assert.Equal(t, "GST number already registered", err.Error())

		var ge *Error
		require.ErrorAs(t, err, &ge)
		assert.Equal(t, http.StatusBadRequest, ge.Status)
	})

	t.Run("Server Error Falls Back To Generic Message", func(t *testing.T) {
		r := mux.NewRouter()
		r.HandleFunc("/api/ping", func(w http.ResponseWriter, req *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("boom"))
		})
		srv := httptest.NewServer(r)
		defer srv.Close()

		g := New(testConfig(srv.URL), store.NewMemoryStore())
		err := g.Get(ctx, "/api/ping", nil, nil)
		require.Error(t, err)
		assert.True(t, IsKind(err, KindServer))
		assert.Equal(t, "Server error, please try again later", err.Error())
	})
}

func TestGateway_TypedDecodingAndQuery(t *testing.T) {
	ctx := context.Background()

	r := mux.NewRouter()
	r.HandleFunc("/api/SiteVisits/{id}", func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "3", req.URL.Query().Get("companyId"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":42,"city":"Pune"}`))
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	g := New(testConfig(srv.URL), store.NewMemoryStore())
	var out struct {
		ID   int32  `json:"id"`
		City string `json:"city"`
	}
	err := g.Get(ctx, "/api/SiteVisits/42", map[string]string{"companyId": "3"}, &out)
	require.NoError(t, err)
	assert.Equal(t, int32(42), out.ID)
	assert.Equal(t, "Pune", out.City)
}

func TestGateway_MultipartUpload(t *testing.T) {
	ctx := context.Background()

	type part struct {
		name    string
		content string
	}
	var got []part
	r := mux.NewRouter()
	r.HandleFunc("/api/SiteVisits/{id}/photos", func(w http.ResponseWriter, req *http.Request) {
		assert.Contains(t, req.Header.Get("Content-Type"), "multipart/form-data")
		require.NoError(t, req.ParseMultipartForm(1<<20))
		for _, fh := range req.MultipartForm.File["photos"] {
			f, err := fh.Open()
			require.NoError(t, err)
			data, err := io.ReadAll(f)
			require.NoError(t, err)
			f.Close()
			got = append(got, part{name: fh.Filename, content: string(data)})
		}
		w.Write([]byte(`{"success":true}`))
	}).Methods(http.MethodPost)
	srv := httptest.NewServer(r)
	defer srv.Close()

	g := New(testConfig(srv.URL), store.NewMemoryStore())
	files := []File{
		{Name: "front.jpg", Reader: strings.NewReader("jpeg-bytes-1")},
		{Name: "junction-box.jpg", Reader: strings.NewReader("jpeg-bytes-2")},
	}
	require.NoError(t, g.Upload(ctx, "/api/SiteVisits/42/photos", "photos", files, nil))

	require.Len(t, got, 2)
	assert.Equal(t, "front.jpg", got[0].name)
	assert.Equal(t, "jpeg-bytes-1", got[0].content)
	assert.Equal(t, "junction-box.jpg", got[1].name)
	assert.Equal(t, "jpeg-bytes-2", got[1].content)
}

func TestGateway_RequestIDHeader(t *testing.T) {
	ctx := context.Background()

	seen := map[string]bool{}
	r := mux.NewRouter()
	r.HandleFunc("/api/ping", func(w http.ResponseWriter, req *http.Request) {
		id := req.Header.Get("X-Request-ID")
		assert.NotEmpty(t, id)
		assert.False(t, seen[id], "request IDs must be unique per request")
		seen[id] = true
		w.Write([]byte(`{}`))
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	g := New(testConfig(srv.URL), store.NewMemoryStore())
	require.NoError(t, g.Get(ctx, "/api/ping", nil, nil))
	require.NoError(t, g.Get(ctx, "/api/ping", nil, nil))
	assert.Len(t, seen, 2)
}
