package projects

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voiceclone-ai/voice-clone-backend/internal/auth"
)

type fakeStore struct {
	created []string
	listed  []Project
	got     *Project
	getErr  error
}

func (f *fakeStore) Create(ctx context.Context, userDBID, name, description string) (*Project, error) {
	f.created = append(f.created, userDBID+"/"+name)
	var desc *string
	if description != "" {
		desc = &description
	}
	return &Project{ID: "p1", Name: name, Description: desc}, nil
}

func (f *fakeStore) List(ctx context.Context, userDBID string) ([]Project, error) {
	return f.listed, nil
}

func (f *fakeStore) Get(ctx context.Context, userDBID, id string) (*Project, error) {
	return f.got, f.getErr
}

func newRouter(store Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(auth.CtxUserDBID, "u1")
	})
	Register(r.Group("/projects"), store)
	return r
}

func TestCreateProject(t *testing.T) {
	store := &fakeStore{}
	r := newRouter(store)

	body := bytes.NewBufferString(`{"name":"  My Voice  ","description":"narration"}`)
	req := httptest.NewRequest(http.MethodPost, "/projects", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, []string{"u1/My Voice"}, store.created)

	var out struct {
		OK      bool    `json:"ok"`
		Project Project `json:"project"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.True(t, out.OK)
	assert.Equal(t, "p1", out.Project.ID)
}

func TestCreateProjectInvalidBody(t *testing.T) {
	cases := map[string]string{
		"not json":   `nope`,
		"no name":    `{"description":"x"}`,
		"blank name": `{"name":"   "}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			store := &fakeStore{}
			r := newRouter(store)

			req := httptest.NewRequest(http.MethodPost, "/projects", bytes.NewBufferString(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Empty(t, store.created)
		})
	}
}

func TestListProjects(t *testing.T) {
	store := &fakeStore{listed: []Project{{ID: "p2", Name: "B"}, {ID: "p1", Name: "A"}}}
	r := newRouter(store)

	req := httptest.NewRequest(http.MethodGet, "/projects", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var out struct {
		OK       bool      `json:"ok"`
		Projects []Project `json:"projects"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.Len(t, out.Projects, 2)
	assert.Equal(t, "p2", out.Projects[0].ID)
}

func TestGetProject(t *testing.T) {
	store := &fakeStore{got: &Project{ID: "p1", Name: "Demo"}}
	r := newRouter(store)

	req := httptest.NewRequest(http.MethodGet, "/projects/p1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"Demo"`)
}

func TestGetProjectNotFound(t *testing.T) {
	store := &fakeStore{getErr: ErrNotFound}
	r := newRouter(store)

	req := httptest.NewRequest(http.MethodGet, "/projects/missing", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "project not found")
}
