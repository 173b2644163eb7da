package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/wordbook/internal/entities"
	"github.com/mrlokans/wordbook/internal/library"
	"github.com/mrlokans/wordbook/internal/logging"
	"github.com/mrlokans/wordbook/internal/registry"
	"github.com/mrlokans/wordbook/internal/settingsstore"
	"github.com/mrlokans/wordbook/internal/wordlib"
)

type testServer struct {
	router   *gin.Engine
	registry *registry.Registry
	store    *library.Store
	prefs    *settingsstore.Memory
}

func setupLibrariesServer(t *testing.T, names ...string) *testServer {
	t.Helper()
	store := library.NewStore(t.TempDir(), logging.Discard(), library.Options{})
	for _, name := range names {
		store.Ensure(name)
	}
	prefs := settingsstore.NewMemory()
	reg := registry.New(store, prefs, logging.Discard())
	reg.Init()

	router := NewRouter(RouterConfig{
		Registry:    reg,
		Preferences: prefs,
		StorageDir:  store.Dir(),
		Logger:      logging.Discard(),
	})
	return &testServer{router: router, registry: reg, store: store, prefs: prefs}
}

func (s *testServer) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func TestLibrariesController_List(t *testing.T) {
	t.Run("empty registry", func(t *testing.T) {
		s := setupLibrariesServer(t)

		w := s.do("GET", "/api/libraries", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"libraries":[],"current":{"name":"","source":"none"}}`, w.Body.String())
		assert.NotEmpty(t, w.Header().Get(HeaderRequestID))
	})

	t.Run("names and default selection", func(t *testing.T) {
		s := setupLibrariesServer(t, "b", "a")

		w := s.do("GET", "/api/libraries", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"libraries":["a","b"],"current":{"name":"a","source":"default"}}`, w.Body.String())
	})
}

func TestLibrariesController_Create(t *testing.T) {
	t.Run("creates a library", func(t *testing.T) {
		s := setupLibrariesServer(t)

		w := s.do("POST", "/api/libraries", `{"name":"english"}`)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, []string{"english"}, s.registry.Names())
		assert.True(t, s.store.Exists("english"))
	})

	t.Run("rejects invalid names", func(t *testing.T) {
		s := setupLibrariesServer(t)

		w := s.do("POST", "/api/libraries", `{"name":"../escape"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), CodeInvalidName)
	})

	t.Run("requires a name", func(t *testing.T) {
		s := setupLibrariesServer(t)

		w := s.do("POST", "/api/libraries", `{}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestLibrariesController_SelectCurrent(t *testing.T) {
	t.Run("persists the selection", func(t *testing.T) {
		s := setupLibrariesServer(t, "a", "b")

		w := s.do("PUT", "/api/libraries/current", `{"name":"b"}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"name":"b","source":"preference"}`, w.Body.String())
		stored, _ := s.prefs.CurrentWordLib()
		assert.Equal(t, "b", stored)
	})

	t.Run("unknown library", func(t *testing.T) {
		s := setupLibrariesServer(t, "a")

		w := s.do("PUT", "/api/libraries/current", `{"name":"zzz"}`)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestLibrariesController_Words(t *testing.T) {
	t.Run("put, get and list", func(t *testing.T) {
		s := setupLibrariesServer(t, "demo")

		w := s.do("PUT", "/api/libraries/demo/words/hello", `{"definition":"你好","categories":["interj"]}`)
		require.Equal(t, http.StatusCreated, w.Code)

		w = s.do("GET", "/api/libraries/demo/words/hello", "")
		require.Equal(t, http.StatusOK, w.Code)
		var entry entities.Entry
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entry))
		assert.Equal(t, "你好", entry.Definition)
		assert.Equal(t, []entities.Category{entities.CategoryInterjection}, entry.Categories)

		w = s.do("GET", "/api/libraries/demo", "")
		require.Equal(t, http.StatusOK, w.Code)
		var lib LibraryResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &lib))
		assert.Equal(t, 1, lib.Size)
		assert.Equal(t, "hello", lib.Entries[0].Term)
	})

	t.Run("overwriting a word answers 200", func(t *testing.T) {
		s := setupLibrariesServer(t, "demo")
		require.Equal(t, http.StatusCreated, s.do("PUT", "/api/libraries/demo/words/x", `{"definition":"one"}`).Code)

		w := s.do("PUT", "/api/libraries/demo/words/x", `{"definition":"two"}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"definition":"two"`)
	})

	t.Run("missing word is 404", func(t *testing.T) {
		s := setupLibrariesServer(t, "demo")

		w := s.do("GET", "/api/libraries/demo/words/nothing", "")

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("unknown category is rejected", func(t *testing.T) {
		s := setupLibrariesServer(t, "demo")

		w := s.do("PUT", "/api/libraries/demo/words/x", `{"definition":"y","categories":["bogus"]}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("blank term is rejected", func(t *testing.T) {
		s := setupLibrariesServer(t, "demo")

		w := s.do("PUT", "/api/libraries/demo/words/%20", `{"definition":"y"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), CodeInvalidEntry)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		s := setupLibrariesServer(t, "demo")
		s.do("PUT", "/api/libraries/demo/words/x", `{"definition":"y"}`)

		assert.Equal(t, http.StatusNoContent, s.do("DELETE", "/api/libraries/demo/words/x", "").Code)
		assert.Equal(t, http.StatusNoContent, s.do("DELETE", "/api/libraries/demo/words/x", "").Code)
		assert.Equal(t, http.StatusNotFound, s.do("GET", "/api/libraries/demo/words/x", "").Code)
	})

	t.Run("clear removes every word", func(t *testing.T) {
		s := setupLibrariesServer(t, "demo")
		s.do("PUT", "/api/libraries/demo/words/x", `{"definition":"y"}`)
		s.do("PUT", "/api/libraries/demo/words/z", `{"definition":"w"}`)

		assert.Equal(t, http.StatusNoContent, s.do("DELETE", "/api/libraries/demo/words", "").Code)

		w := s.do("GET", "/api/libraries/demo/terms", "")
		assert.JSONEq(t, `{"name":"demo","terms":[]}`, w.Body.String())
	})

	t.Run("terms are listed in order", func(t *testing.T) {
		s := setupLibrariesServer(t, "demo")
		s.do("PUT", "/api/libraries/demo/words/pear", `{"definition":"fruit"}`)
		s.do("PUT", "/api/libraries/demo/words/apple", `{"definition":"fruit"}`)

		w := s.do("GET", "/api/libraries/demo/terms", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"name":"demo","terms":["apple","pear"]}`, w.Body.String())
	})

	t.Run("unknown library is 404", func(t *testing.T) {
		s := setupLibrariesServer(t)

		w := s.do("GET", "/api/libraries/ghost/words/x", "")

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), CodeUnknownLibrary)
	})
}

func TestLibrariesController_SaveExportImport(t *testing.T) {
	t.Run("save writes to disk", func(t *testing.T) {
		s := setupLibrariesServer(t, "demo")
		s.do("PUT", "/api/libraries/demo/words/hello", `{"definition":"你好"}`)

		w := s.do("POST", "/api/libraries/demo/save", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, s.store.Load("demo").Contains("hello"))
	})

	t.Run("export returns serialized text", func(t *testing.T) {
		s := setupLibrariesServer(t, "demo")
		s.do("PUT", "/api/libraries/demo/words/hello", `{"definition":"world"}`)

		w := s.do("GET", "/api/libraries/demo/export", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, wordlib.Header+"\nhello\tworld\n", w.Body.String())
		assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
	})

	t.Run("import replaces content", func(t *testing.T) {
		s := setupLibrariesServer(t, "demo")

		req := httptest.NewRequest("PUT", "/api/libraries/demo/import", strings.NewReader(wordlib.Header+"\ncat\tmeow\n"))
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"entries":1`)
		assert.Equal(t, http.StatusOK, s.do("GET", "/api/libraries/demo/words/cat", "").Code)
	})

	t.Run("merge import keeps existing words", func(t *testing.T) {
		s := setupLibrariesServer(t, "demo")
		s.do("PUT", "/api/libraries/demo/words/cat", `{"definition":"purr"}`)

		body := wordlib.Header + "\ncat\tmeow\ndog\twoof\n"
		req := httptest.NewRequest("PUT", "/api/libraries/demo/import?mode=merge", strings.NewReader(body))
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"added":1`)
		assert.Contains(t, s.do("GET", "/api/libraries/demo/words/cat", "").Body.String(), "purr")
		assert.True(t, s.store.Load("demo").Contains("dog"))
	})

	t.Run("unknown import mode is rejected", func(t *testing.T) {
		s := setupLibrariesServer(t, "demo")

		req := httptest.NewRequest("PUT", "/api/libraries/demo/import?mode=append", strings.NewReader(wordlib.Header+"\n"))
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("malformed import is rejected", func(t *testing.T) {
		s := setupLibrariesServer(t, "demo")

		req := httptest.NewRequest("PUT", "/api/libraries/demo/import", strings.NewReader("no-tab-here\n"))
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), CodeMalformed)
		assert.Contains(t, w.Body.String(), `"line":1`)
	})
}

func TestLibrariesController_Categories(t *testing.T) {
	s := setupLibrariesServer(t, "demo")
	s.do("PUT", "/api/libraries/demo/words/run", `{"definition":"move","categories":["v","n"]}`)
	s.do("PUT", "/api/libraries/demo/words/bark", `{"definition":"dog sound","categories":["n"]}`)
	s.do("PUT", "/api/libraries/demo/words/plain", `{"definition":"untagged"}`)

	t.Run("counts categories", func(t *testing.T) {
		w := s.do("GET", "/api/libraries/demo", "")

		require.Equal(t, http.StatusOK, w.Code)
		var lib LibraryResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &lib))
		assert.Equal(t, 3, lib.Size)
		assert.Len(t, lib.Entries, 3)
		assert.Equal(t, map[entities.Category]int{entities.CategoryNoun: 2, entities.CategoryVerb: 1}, lib.Categories)
	})

	t.Run("filters entries by category", func(t *testing.T) {
		w := s.do("GET", "/api/libraries/demo?category=v", "")

		require.Equal(t, http.StatusOK, w.Code)
		var lib LibraryResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &lib))
		assert.Equal(t, 3, lib.Size)
		require.Len(t, lib.Entries, 1)
		assert.Equal(t, "run", lib.Entries[0].Term)
	})

	t.Run("unknown category filter is rejected", func(t *testing.T) {
		w := s.do("GET", "/api/libraries/demo?category=bogus", "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestLibrariesController_Current(t *testing.T) {
	t.Run("reports selection and preference source", func(t *testing.T) {
		s := setupLibrariesServer(t, "a", "b")
		s.do("PUT", "/api/libraries/current", `{"name":"b"}`)

		w := s.do("GET", "/api/libraries/current", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"name":"b","source":"preference","preference":{"name":"b","source":"memory"}}`, w.Body.String())
	})

	t.Run("clearing falls back to the default", func(t *testing.T) {
		s := setupLibrariesServer(t, "a", "b")
		s.do("PUT", "/api/libraries/current", `{"name":"b"}`)

		w := s.do("DELETE", "/api/libraries/current", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"name":"a","source":"default","preference":{"name":"","source":"default"}}`, w.Body.String())
		_, ok := s.prefs.CurrentWordLib()
		assert.False(t, ok)
	})
}

type stubAutosave struct {
	running bool
	next    *time.Time
	runs    int
}

func (s *stubAutosave) IsRunning() bool     { return s.running }
func (s *stubAutosave) NextRun() *time.Time { return s.next }
func (s *stubAutosave) RunNow()             { s.runs++ }

func TestLibrariesController_SaveAll(t *testing.T) {
	t.Run("saves synchronously without autosave", func(t *testing.T) {
		s := setupLibrariesServer(t, "demo")
		s.do("PUT", "/api/libraries/demo/words/hello", `{"definition":"world"}`)

		w := s.do("POST", "/api/libraries/save-all", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"saved":1`)
		assert.True(t, s.store.Load("demo").Contains("hello"))
	})

	t.Run("hands off to autosave when configured", func(t *testing.T) {
		s := setupLibrariesServer(t, "demo")
		autosave := &stubAutosave{}
		s.router = NewRouter(RouterConfig{
			Registry:   s.registry,
			Autosave:   autosave,
			StorageDir: s.store.Dir(),
			Logger:     logging.Discard(),
		})

		w := s.do("POST", "/api/libraries/save-all", "")

		assert.Equal(t, http.StatusAccepted, w.Code)
		assert.Equal(t, 1, autosave.runs)
	})
}
