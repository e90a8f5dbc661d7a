package samples

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/voiceclone-ai/voice-clone-backend/internal/metrics"
)

// Store is what the HTTP layer needs from the repository.
type Store interface {
	Insert(ctx context.Context, s NewSample) (*VoiceSample, error)
	ListByProject(ctx context.Context, projectID string) ([]VoiceSample, error)
}

// ObjectStore writes an object and returns its public URL.
type ObjectStore interface {
	Put(ctx context.Context, bucket, key string, data []byte, contentType string) (string, error)
}

// Outbox records a pending storage write before it happens, so the sweeper
// can reclaim the object if the metadata insert never lands.
type Outbox interface {
	Add(ctx context.Context, bucket, key string) (string, error)
	Clear(ctx context.Context, id string) error
}

type Handler struct {
	store   Store
	objects ObjectStore
	outbox  Outbox
	bucket  string
	metrics *metrics.Metrics
	log     *zap.Logger
	now     func() time.Time
}

func NewHandler(store Store, objects ObjectStore, outbox Outbox, bucket string, m *metrics.Metrics, log *zap.Logger) *Handler {
	return &Handler{
		store:   store,
		objects: objects,
		outbox:  outbox,
		bucket:  bucket,
		metrics: m,
		log:     log,
		now:     time.Now,
	}
}

// RegisterUpload mounts POST /upload-voice-sample.
func (h *Handler) RegisterUpload(r gin.IRouter) {
	r.POST("/upload-voice-sample", h.upload)
}

// RegisterProjectSubroutes mounts GET /:project_id/samples under the
// authenticated projects group.
func RegisterProjectSubroutes(rg *gin.RouterGroup, store Store) {
	rg.GET("/:project_id/samples", func(c *gin.Context) {
		items, err := store.ListByProject(c.Request.Context(), c.Param("project_id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "samples": items})
	})
}

type uploadReq struct {
	ProjectID string `json:"projectId"`
	Name      string `json:"name"`
	AudioData string `json:"audioData"`
	Duration  *int   `json:"duration"`
}

func (h *Handler) upload(c *gin.Context) {
	var req uploadReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	name := strings.TrimSpace(req.Name)
	if req.ProjectID == "" || name == "" || req.AudioData == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "projectId, name and audioData are required"})
		return
	}

	audio, err := DecodeDataURL(req.AudioData)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	key := fmt.Sprintf("%s/%d_%s.wav", req.ProjectID, h.now().UnixMilli(), sanitizeName(name))

	pendingID, err := h.outbox.Add(ctx, h.bucket, key)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	url, err := h.objects.Put(ctx, h.bucket, key, audio, "audio/wav")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := h.store.Insert(ctx, NewSample{
		ProjectID:       req.ProjectID,
		Name:            name,
		AudioURL:        url,
		DurationSeconds: req.Duration,
	}); err != nil {
		// The object stays behind; the outbox row marks it for the sweeper.
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.outbox.Clear(ctx, pendingID); err != nil {
		h.log.Warn("clear outbox entry", zap.String("id", pendingID), zap.Error(err))
	}

	h.metrics.SampleUploaded()
	h.log.Info("voice sample uploaded",
		zap.String("project_id", req.ProjectID),
		zap.String("key", key),
		zap.Int("bytes", len(audio)),
	)

	c.JSON(http.StatusOK, gin.H{"success": true})
}

var whitespace = regexp.MustCompile(`\s+`)

func sanitizeName(name string) string {
	return whitespace.ReplaceAllString(name, "_")
}

// DecodeDataURL decodes a base64 data URL ("data:audio/wav;base64,....").
// Bare base64 without the data: prefix is accepted too.
func DecodeDataURL(s string) ([]byte, error) {
	if i := strings.IndexByte(s, ','); i >= 0 {
		s = s[i+1:]
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid audio data: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("invalid audio data: empty payload")
	}
	return data, nil
}
