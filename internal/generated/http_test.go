package generated

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeStore struct {
	inserted  []NewAudio
	insertErr error
	listed    []GeneratedAudio
}

func (f *fakeStore) Insert(ctx context.Context, a NewAudio) (*GeneratedAudio, error) {
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	f.inserted = append(f.inserted, a)
	return &GeneratedAudio{ID: "g1", ProjectID: a.ProjectID, TextInput: a.TextInput, AudioURL: a.AudioURL}, nil
}

func (f *fakeStore) ListByProject(ctx context.Context, projectID string) ([]GeneratedAudio, error) {
	return f.listed, nil
}

type putCall struct {
	bucket, key, contentType string
	data                     []byte
}

type fakeObjects struct {
	puts []putCall
}

func (f *fakeObjects) Put(ctx context.Context, bucket, key string, data []byte, contentType string) (string, error) {
	f.puts = append(f.puts, putCall{bucket, key, contentType, data})
	return "http://storage.local/" + bucket + "/" + key, nil
}

type fakeOutbox struct {
	added   []string
	cleared []string
}

func (f *fakeOutbox) Add(ctx context.Context, bucket, key string) (string, error) {
	f.added = append(f.added, key)
	return "pending-1", nil
}

func (f *fakeOutbox) Clear(ctx context.Context, id string) error {
	f.cleared = append(f.cleared, id)
	return nil
}

type fakeSynth struct {
	calls int
	audio []byte
	err   error
}

func (f *fakeSynth) Synthesize(ctx context.Context, text string) ([]byte, error) {
	f.calls++
	return f.audio, f.err
}

func newGenerateRouter(store *fakeStore, objects *fakeObjects, ob *fakeOutbox, synth *fakeSynth) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(store, objects, ob, synth, "generated-audio", nil, zap.NewNop())
	h.now = func() time.Time { return time.UnixMilli(1700000000000) }
	r := gin.New()
	h.RegisterGenerate(r)
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGenerate(t *testing.T) {
	store := &fakeStore{}
	objects := &fakeObjects{}
	ob := &fakeOutbox{}
	synth := &fakeSynth{audio: []byte("mp3-bytes")}
	r := newGenerateRouter(store, objects, ob, synth)

	w := postJSON(t, r, "/generate-speech", gin.H{
		"projectId": "p1",
		"text":      "Hello world",
		"samples":   []gin.H{{"name": "Take 1", "audioUrl": "http://x/a.wav"}},
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())
	assert.Equal(t, 1, synth.calls)

	require.Len(t, objects.puts, 1)
	put := objects.puts[0]
	assert.Equal(t, "generated-audio", put.bucket)
	assert.Equal(t, "p1/generated/1700000000000_generated.mp3", put.key)
	assert.Equal(t, "audio/mpeg", put.contentType)
	assert.Equal(t, []byte("mp3-bytes"), put.data)

	require.Len(t, store.inserted, 1)
	ins := store.inserted[0]
	assert.Equal(t, "p1", ins.ProjectID)
	assert.Equal(t, "Hello world", ins.TextInput)
	assert.Equal(t, "http://storage.local/generated-audio/"+put.key, ins.AudioURL)

	assert.Equal(t, []string{put.key}, ob.added)
	assert.Equal(t, []string{"pending-1"}, ob.cleared)
}

func TestGenerateMissingFields(t *testing.T) {
	cases := map[string]gin.H{
		"no project": {"text": "Hello"},
		"no text":    {"projectId": "p1"},
		"blank text": {"projectId": "p1", "text": "   "},
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			synth := &fakeSynth{audio: []byte("x")}
			r := newGenerateRouter(&fakeStore{}, &fakeObjects{}, &fakeOutbox{}, synth)

			w := postJSON(t, r, "/generate-speech", body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, 0, synth.calls)
		})
	}
}

func TestGenerateSynthesisFailure(t *testing.T) {
	store := &fakeStore{}
	objects := &fakeObjects{}
	ob := &fakeOutbox{}
	synth := &fakeSynth{err: errors.New("failed to generate speech: status 500")}
	r := newGenerateRouter(store, objects, ob, synth)

	w := postJSON(t, r, "/generate-speech", gin.H{"projectId": "p1", "text": "Hello"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "failed to generate speech")
	// Nothing is written when the provider fails.
	assert.Empty(t, objects.puts)
	assert.Empty(t, store.inserted)
	assert.Empty(t, ob.added)
}

func TestGenerateInsertFailureKeepsOutboxEntry(t *testing.T) {
	store := &fakeStore{insertErr: errors.New("db down")}
	objects := &fakeObjects{}
	ob := &fakeOutbox{}
	r := newGenerateRouter(store, objects, ob, &fakeSynth{audio: []byte("x")})

	w := postJSON(t, r, "/generate-speech", gin.H{"projectId": "p1", "text": "Hello"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.Len(t, objects.puts, 1)
	assert.Len(t, ob.added, 1)
	assert.Empty(t, ob.cleared)
}

func TestListGeneratedByProject(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := &fakeStore{listed: []GeneratedAudio{{ID: "g2"}, {ID: "g1"}}}
	r := gin.New()
	RegisterProjectSubroutes(r.Group("/projects"), store)

	req := httptest.NewRequest(http.MethodGet, "/projects/p1/generated", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var out struct {
		OK        bool             `json:"ok"`
		Generated []GeneratedAudio `json:"generated"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.True(t, out.OK)
	require.Len(t, out.Generated, 2)
	assert.Equal(t, "g2", out.Generated[0].ID)
}
