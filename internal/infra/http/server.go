package http

import (
	"context"
	"log"
	"net/http"

	"provelope/internal/config"
	"provelope/internal/infra/db"
	"provelope/internal/infra/keyset"
	"provelope/internal/infra/policy"
	"provelope/internal/usecase"

	"github.com/gin-gonic/gin"
)

type Server struct {
	cfg config.Config
	r   *gin.Engine

	fetcher  keyset.Fetcher
	policy   *policy.Engine
	recorder *usecase.RecordVerification
}

func NewServer(cfg config.Config, store *db.Store) *Server {
	r := gin.New()
	r.Use(gin.Recovery())

	s := &Server{cfg: cfg, r: r}
	s.initDeps(store)
	s.routes()
	return s
}

type ServerDeps struct {
	Fetcher  keyset.Fetcher
	Policy   *policy.Engine
	Recorder *usecase.RecordVerification
}

func NewServerWithDeps(cfg config.Config, deps ServerDeps) *Server {
	r := gin.New()
	r.Use(gin.Recovery())

	s := &Server{
		cfg:      cfg,
		r:        r,
		fetcher:  deps.Fetcher,
		policy:   deps.Policy,
		recorder: deps.Recorder,
	}
	if s.fetcher == nil {
		s.fetcher = keyset.NewHTTPFetcher(nil)
	}
	s.routes()
	return s
}

func (s *Server) initDeps(store *db.Store) {
	httpFetcher := keyset.NewHTTPFetcher(&http.Client{Timeout: s.cfg.FetchTimeout()})
	httpFetcher.Timeout = s.cfg.FetchTimeout()
	var fetcher keyset.Fetcher = httpFetcher
	if s.cfg.RedisAddr != "" {
		if shared, err := keyset.NewRedisCache(s.cfg.RedisAddr, s.cfg.RedisPassword, s.cfg.RedisDB, fetcher, s.cfg.KeySetCacheTTL()); err == nil {
			fetcher = shared
		}
	}
	s.fetcher = keyset.NewCache(fetcher, s.cfg.KeySetCacheTTL(), s.cfg.KeySetCacheMaxStale())

	if s.cfg.PolicyBundlePath != "" {
		engine, err := policy.NewEngineFromBundlePath(context.Background(), s.cfg.PolicyBundlePath)
		if err != nil {
			log.Printf("policy bundle %s not loaded: %v", s.cfg.PolicyBundlePath, err)
		} else {
			s.policy = engine
		}
	}

	if store != nil && store.DB != nil {
		s.recorder = usecase.NewRecordVerification(db.NewReceiptRepository(store.DB))
	}
}

func (s *Server) routes() {
	s.r.GET("/healthz", func(c *gin.Context) {
		mode := "no-db"
		if s.recorder != nil {
			mode = "db"
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "mode": mode})
	})

	v1 := s.r.Group("/v1")
	{
		v1.POST("/verify", s.handleVerify)
		v1.GET("/receipts/:content_id", s.handleListReceipts)
	}
}

func (s *Server) Run() error {
	return s.r.Run(s.cfg.HTTPAddr)
}
