package bootstrap

import (
	fbauth "firebase.google.com/go/v4/auth"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	httpapi "github.com/voiceclone-ai/voice-clone-backend/internal/api/http"
	"github.com/voiceclone-ai/voice-clone-backend/internal/api/http/middleware"
	"github.com/voiceclone-ai/voice-clone-backend/internal/auth"
	"github.com/voiceclone-ai/voice-clone-backend/internal/generated"
	"github.com/voiceclone-ai/voice-clone-backend/internal/metrics"
	"github.com/voiceclone-ai/voice-clone-backend/internal/outbox"
	"github.com/voiceclone-ai/voice-clone-backend/internal/projects"
	"github.com/voiceclone-ai/voice-clone-backend/internal/samples"
	"github.com/voiceclone-ai/voice-clone-backend/internal/users"
)

type RouterDeps struct {
	ServiceName string
	Version     string
	DB          *pgxpool.Pool
	AuthClient  *fbauth.Client // nil disables token verification (header fallback)
	Objects     samples.ObjectStore
	Synth       generated.Synthesizer
	Metrics     *metrics.Metrics
	Log         *zap.Logger

	SampleBucket    string
	GeneratedBucket string

	RatePerMinute int
	RateBurst     int
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.Default()

	// The upload/generate endpoints are called straight from the browser.
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{
			"Authorization", "X-Client-Info", "apikey", "Content-Type",
			"X-User-Id", "X-User-Email", "X-User-Name", "X-Request-Id",
		},
	}))

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.DB)
	healthHandler.RegisterRoutes(r)

	if dep.Metrics != nil {
		r.GET("/metrics", gin.WrapH(dep.Metrics.Handler()))
	}

	outboxRepo := outbox.NewRepo(dep.DB)
	sampleRepo := samples.NewRepo(dep.DB)
	generatedRepo := generated.NewRepo(dep.DB)

	// Browser-facing pipeline endpoints.
	pipelines := r.Group("")
	pipelines.Use(middleware.RequestID(dep.Log))
	pipelines.Use(middleware.PerIPRateLimit(dep.RatePerMinute, dep.RateBurst))

	samples.NewHandler(sampleRepo, dep.Objects, outboxRepo, dep.SampleBucket, dep.Metrics, dep.Log).
		RegisterUpload(pipelines)
	generated.NewHandler(generatedRepo, dep.Objects, outboxRepo, dep.Synth, dep.GeneratedBucket, dep.Metrics, dep.Log).
		RegisterGenerate(pipelines)

	// Authenticated read/create API.
	api := r.Group("/api/v1")
	api.Use(middleware.RequestID(dep.Log))
	if dep.AuthClient != nil {
		api.Use(auth.Firebase(dep.AuthClient))
	}
	userRepo := users.NewRepo(dep.DB)
	api.Use(auth.WithUser(userRepo))

	projectRepo := projects.NewRepo(dep.DB)
	projectsGroup := api.Group("/projects")
	projects.Register(projectsGroup, projectRepo)
	samples.RegisterProjectSubroutes(projectsGroup, sampleRepo)
	generated.RegisterProjectSubroutes(projectsGroup, generatedRepo)

	return r
}
