package generated

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/voiceclone-ai/voice-clone-backend/internal/metrics"
)

// Store is what the HTTP layer needs from the repository.
type Store interface {
	Insert(ctx context.Context, a NewAudio) (*GeneratedAudio, error)
	ListByProject(ctx context.Context, projectID string) ([]GeneratedAudio, error)
}

// ObjectStore writes an object and returns its public URL.
type ObjectStore interface {
	Put(ctx context.Context, bucket, key string, data []byte, contentType string) (string, error)
}

// Outbox records a pending storage write before it happens.
type Outbox interface {
	Add(ctx context.Context, bucket, key string) (string, error)
	Clear(ctx context.Context, id string) error
}

// Synthesizer converts text to speech audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

type Handler struct {
	store   Store
	objects ObjectStore
	outbox  Outbox
	synth   Synthesizer
	bucket  string
	metrics *metrics.Metrics
	log     *zap.Logger
	now     func() time.Time
}

func NewHandler(store Store, objects ObjectStore, outbox Outbox, synth Synthesizer, bucket string, m *metrics.Metrics, log *zap.Logger) *Handler {
	return &Handler{
		store:   store,
		objects: objects,
		outbox:  outbox,
		synth:   synth,
		bucket:  bucket,
		metrics: m,
		log:     log,
		now:     time.Now,
	}
}

// RegisterGenerate mounts POST /generate-speech.
func (h *Handler) RegisterGenerate(r gin.IRouter) {
	r.POST("/generate-speech", h.generate)
}

// RegisterProjectSubroutes mounts GET /:project_id/generated under the
// authenticated projects group.
func RegisterProjectSubroutes(rg *gin.RouterGroup, store Store) {
	rg.GET("/:project_id/generated", func(c *gin.Context) {
		items, err := store.ListByProject(c.Request.Context(), c.Param("project_id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "generated": items})
	})
}

// SampleRef is the sample metadata the client sends along with a generation
// request. Synthesis currently runs with a fixed voice, so the samples are
// accepted and logged but not consumed.
type SampleRef struct {
	Name     string `json:"name"`
	AudioURL string `json:"audioUrl"`
}

type generateReq struct {
	ProjectID string      `json:"projectId"`
	Text      string      `json:"text"`
	Samples   []SampleRef `json:"samples"`
}

func (h *Handler) generate(c *gin.Context) {
	var req generateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	text := strings.TrimSpace(req.Text)
	if req.ProjectID == "" || text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "projectId and text are required"})
		return
	}

	ctx := c.Request.Context()
	start := h.now()

	audio, err := h.synth.Synthesize(ctx, req.Text)
	if err != nil {
		h.metrics.SynthesisFailed()
		h.log.Warn("synthesis failed", zap.String("project_id", req.ProjectID), zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.metrics.SynthesisSucceeded(time.Since(start))

	key := fmt.Sprintf("%s/generated/%d_generated.mp3", req.ProjectID, h.now().UnixMilli())

	pendingID, err := h.outbox.Add(ctx, h.bucket, key)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	url, err := h.objects.Put(ctx, h.bucket, key, audio, "audio/mpeg")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := h.store.Insert(ctx, NewAudio{
		ProjectID: req.ProjectID,
		TextInput: req.Text,
		AudioURL:  url,
	}); err != nil {
		// The object stays behind; the outbox row marks it for the sweeper.
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.outbox.Clear(ctx, pendingID); err != nil {
		h.log.Warn("clear outbox entry", zap.String("id", pendingID), zap.Error(err))
	}

	h.metrics.SpeechGenerated()
	h.log.Info("speech generated",
		zap.String("project_id", req.ProjectID),
		zap.Int("samples_submitted", len(req.Samples)),
		zap.Int("bytes", len(audio)),
	)

	c.JSON(http.StatusOK, gin.H{"success": true})
}
