// Package mockbackend is an in-memory stand-in for the provisionR backend.
//
// It serves the same HTTP surface as the real service so the console, CLI
// and provider can be exercised without a database or templating engine.
// Templates are rendered by plain "{{ key }}" substitution.
package mockbackend

import (
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/provisionr/provisionr-console/internal/provisionr/provisioning"
)

// DefaultTemplate is installed as the "default" template by New.
const DefaultTemplate = `# kickstart for {{ mac }}
lang en_US.UTF-8
keyboard us
timezone UTC
network --bootproto=dhcp --hostname={{ hostname }}
rootpw --iscrypted {{ root_password }}
`

type machine struct {
	MAC       string
	UUID      string
	Serial    string
	CreatedAt time.Time
}

// Server holds the backend state behind a fiber app.
type Server struct {
	app    *fiber.App
	logger *zap.Logger

	requests atomic.Int64

	mu        sync.Mutex
	config    provisioning.Config
	templates map[string]string
	machines  []machine
}

type Option func(*Server)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// New returns a server with the default configuration and template.
func New(opts ...Option) *Server {
	s := &Server{
		logger:    zap.NewNop(),
		config:    provisioning.DefaultConfig(),
		templates: map[string]string{provisioning.DefaultTemplateName: DefaultTemplate},
	}
	for _, opt := range opts {
		opt(s)
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "provisionR mock backend",
		DisableStartupMessage: true,
		Immutable:             true,
		ErrorHandler:          s.errorHandler,
	})
	s.app.Use(s.countRequests)

	api := s.app.Group("/api")
	api.Get("/health", HealthHandler)
	api.Get("/v1/config", s.getConfig)
	api.Put("/v1/config", s.updateConfig)
	api.Get("/v1/templates/:name", s.getTemplate)
	api.Post("/v1/templates", s.uploadTemplate)
	api.Get("/v1/ks", s.renderKickstart)
	api.Get("/v1/machines/export", s.exportMachines)

	return s
}

// App exposes the fiber app, for app.Test in tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Start listens on addr and serves in the background. It returns the base URL
// clients should use.
func (s *Server) Start(addr string) (string, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", err
	}

	go func() {
		if err := s.app.Listener(ln); err != nil && !errors.Is(err, net.ErrClosed) {
			s.logger.Error("mock backend stopped", zap.Error(err))
		}
	}()

	s.logger.Info("mock backend listening", zap.String("addr", ln.Addr().String()))
	return "http://" + ln.Addr().String(), nil
}

// Listen serves on addr until Shutdown is called.
func (s *Server) Listen(addr string) error {
	s.logger.Info("mock backend listening", zap.String("addr", addr))
	return s.app.Listen(addr)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// Requests is the number of requests served so far.
func (s *Server) Requests() int64 {
	return s.requests.Load()
}

// Config returns the stored configuration.
func (s *Server) Config() provisioning.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config
}

// SetTemplate stores a template without going through the API.
func (s *Server) SetTemplate(name, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.templates[name] = content
}

// Template returns a stored template.
func (s *Server) Template(name string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	content, ok := s.templates[name]
	return content, ok
}

func (s *Server) countRequests(c *fiber.Ctx) error {
	s.requests.Add(1)
	started := time.Now()
	err := c.Next()
	s.logger.Debug("request",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.String("request_id", c.Get("X-Request-ID")),
		zap.Duration("duration", time.Since(started)),
	)
	return err
}

// errorHandler renders errors the way FastAPI does.
func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{"detail": err.Error()})
}
