package samples

import (
	"bytes"
	"context"
	"encoding/base64"
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
	inserted  []NewSample
	insertErr error
	listed    []VoiceSample
	listErr   error
}

func (f *fakeStore) Insert(ctx context.Context, s NewSample) (*VoiceSample, error) {
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	f.inserted = append(f.inserted, s)
	return &VoiceSample{ID: "s1", ProjectID: s.ProjectID, Name: s.Name, AudioURL: s.AudioURL}, nil
}

func (f *fakeStore) ListByProject(ctx context.Context, projectID string) ([]VoiceSample, error) {
	return f.listed, f.listErr
}

type putCall struct {
	bucket, key, contentType string
	data                     []byte
}

type fakeObjects struct {
	puts   []putCall
	putErr error
}

func (f *fakeObjects) Put(ctx context.Context, bucket, key string, data []byte, contentType string) (string, error) {
	if f.putErr != nil {
		return "", f.putErr
	}
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

func newUploadRouter(store *fakeStore, objects *fakeObjects, ob *fakeOutbox) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(store, objects, ob, "voice-samples", nil, zap.NewNop())
	h.now = func() time.Time { return time.UnixMilli(1700000000000) }
	r := gin.New()
	h.RegisterUpload(r)
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

func TestUpload(t *testing.T) {
	store := &fakeStore{}
	objects := &fakeObjects{}
	ob := &fakeOutbox{}
	r := newUploadRouter(store, objects, ob)

	audio := []byte("riff-data")
	duration := 12
	w := postJSON(t, r, "/upload-voice-sample", gin.H{
		"projectId": "p1",
		"name":      "My First  Take",
		"audioData": "data:audio/wav;base64," + base64.StdEncoding.EncodeToString(audio),
		"duration":  duration,
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())

	require.Len(t, objects.puts, 1)
	put := objects.puts[0]
	assert.Equal(t, "voice-samples", put.bucket)
	assert.Equal(t, "p1/1700000000000_My_First_Take.wav", put.key)
	assert.Equal(t, "audio/wav", put.contentType)
	assert.Equal(t, audio, put.data)

	require.Len(t, store.inserted, 1)
	ins := store.inserted[0]
	assert.Equal(t, "p1", ins.ProjectID)
	assert.Equal(t, "My First  Take", ins.Name)
	assert.Equal(t, "http://storage.local/voice-samples/"+put.key, ins.AudioURL)
	require.NotNil(t, ins.DurationSeconds)
	assert.Equal(t, 12, *ins.DurationSeconds)

	assert.Equal(t, []string{put.key}, ob.added)
	assert.Equal(t, []string{"pending-1"}, ob.cleared)
}

func TestUploadMissingFields(t *testing.T) {
	cases := map[string]gin.H{
		"no project": {"name": "Take", "audioData": "aGk="},
		"no name":    {"projectId": "p1", "audioData": "aGk="},
		"blank name": {"projectId": "p1", "name": "   ", "audioData": "aGk="},
		"no audio":   {"projectId": "p1", "name": "Take"},
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			store := &fakeStore{}
			objects := &fakeObjects{}
			r := newUploadRouter(store, objects, &fakeOutbox{})

			w := postJSON(t, r, "/upload-voice-sample", body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), "error")
			assert.Empty(t, objects.puts)
			assert.Empty(t, store.inserted)
		})
	}
}

func TestUploadBadBase64(t *testing.T) {
	store := &fakeStore{}
	objects := &fakeObjects{}
	r := newUploadRouter(store, objects, &fakeOutbox{})

	w := postJSON(t, r, "/upload-voice-sample", gin.H{
		"projectId": "p1",
		"name":      "Take",
		"audioData": "data:audio/wav;base64,%%%not-base64%%%",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, objects.puts)
	assert.Empty(t, store.inserted)
}

func TestUploadStorageFailure(t *testing.T) {
	store := &fakeStore{}
	objects := &fakeObjects{putErr: errors.New("bucket unavailable")}
	ob := &fakeOutbox{}
	r := newUploadRouter(store, objects, ob)

	w := postJSON(t, r, "/upload-voice-sample", gin.H{
		"projectId": "p1",
		"name":      "Take",
		"audioData": base64.StdEncoding.EncodeToString([]byte("x")),
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "bucket unavailable")
	assert.Empty(t, store.inserted)
	// The pending entry survives for the sweeper.
	assert.Empty(t, ob.cleared)
}

func TestUploadInsertFailureKeepsOutboxEntry(t *testing.T) {
	store := &fakeStore{insertErr: errors.New("db down")}
	objects := &fakeObjects{}
	ob := &fakeOutbox{}
	r := newUploadRouter(store, objects, ob)

	w := postJSON(t, r, "/upload-voice-sample", gin.H{
		"projectId": "p1",
		"name":      "Take",
		"audioData": base64.StdEncoding.EncodeToString([]byte("x")),
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.Len(t, objects.puts, 1)
	assert.Len(t, ob.added, 1)
	assert.Empty(t, ob.cleared)
}

func TestDecodeDataURL(t *testing.T) {
	audio := []byte("riff")
	enc := base64.StdEncoding.EncodeToString(audio)

	got, err := DecodeDataURL("data:audio/wav;base64," + enc)
	require.NoError(t, err)
	assert.Equal(t, audio, got)

	got, err = DecodeDataURL(enc)
	require.NoError(t, err)
	assert.Equal(t, audio, got)

	_, err = DecodeDataURL("data:audio/wav;base64,")
	assert.Error(t, err)

	_, err = DecodeDataURL("!!!")
	assert.Error(t, err)
}

func TestListSamplesByProject(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := &fakeStore{listed: []VoiceSample{{ID: "s2"}, {ID: "s1"}}}
	r := gin.New()
	RegisterProjectSubroutes(r.Group("/projects"), store)

	req := httptest.NewRequest(http.MethodGet, "/projects/p1/samples", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var out struct {
		OK      bool          `json:"ok"`
		Samples []VoiceSample `json:"samples"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.True(t, out.OK)
	require.Len(t, out.Samples, 2)
	assert.Equal(t, "s2", out.Samples[0].ID)
}
