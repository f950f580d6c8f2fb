package integration

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/exec"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/Sridhar-Quarlets/model-registry/pkg/audit"
	"github.com/Sridhar-Quarlets/model-registry/pkg/config"
	"github.com/Sridhar-Quarlets/model-registry/pkg/db"
	"github.com/Sridhar-Quarlets/model-registry/pkg/server"
	"github.com/Sridhar-Quarlets/model-registry/pkg/server/endpoints"
	gormstore "github.com/Sridhar-Quarlets/model-registry/pkg/server/store/gorm"
)

// ServerConfig holds the settings a scenario may vary
type ServerConfig struct {
	PageSizeDefault int
	PageSizeMax     int
}

// DefaultServerConfig returns the default server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{PageSizeDefault: 20, PageSizeMax: 100}
}

// ServerInstance represents a running registry server
type ServerInstance struct {
	Server    *server.Server
	ServerURL string
	Config    ServerConfig

	auditor       *audit.Auditor
	serverProcess *exec.Cmd // For binary mode
	cancel        context.CancelFunc
}

// StartServer starts a registry server against the test database, in-process
// or from the binary depending on how the suite was started.
func StartServer(tc *TestContext, cfg ServerConfig) (*ServerInstance, error) {
	if tc.InlineMode {
		return startInlineServerInstance(tc.DatabaseURL, cfg)
	}
	return startBinaryServerInstance(tc.BinaryPath, tc.DatabaseURL, cfg)
}

func registryConfig(dbURL string, cfg ServerConfig) *config.RegistryConfig {
	c := config.Default()
	c.DatabaseURL = dbURL
	c.AuditDatabaseURL = dbURL
	c.SecretKey = testSecret
	c.ListPageSizeDefault = cfg.PageSizeDefault
	c.ListPageSizeMax = cfg.PageSizeMax
	c.LogLevel = "warn"
	return c
}

// startInlineServerInstance starts an in-process server
func startInlineServerInstance(dbURL string, cfg ServerConfig) (*ServerInstance, error) {
	rc := registryConfig(dbURL, cfg)
	if err := rc.Validate(); err != nil {
		return nil, err
	}
	log := zerolog.New(os.Stderr).Level(zerolog.WarnLevel)

	database, err := db.Connect(rc)
	if err != nil {
		return nil, err
	}
	stores := server.Stores{
		Entries:  gormstore.NewEntriesStore(database),
		Users:    gormstore.NewUsersStore(database),
		Policies: gormstore.NewPoliciesStore(database),
		Health:   gormstore.NewHealthStore(database),
	}

	auditor, err := audit.New(rc, log)
	if err != nil {
		return nil, err
	}

	s, err := server.NewServer(rc, stores, auditor, log, "127.0.0.1", "0")
	if err != nil {
		return nil, err
	}
	endpoints.RegisterAll(s)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("failed to create listener: %w", err)
	}

	instance := &ServerInstance{
		Server:    s,
		ServerURL: "http://" + listener.Addr().String(),
		Config:    cfg,
		auditor:   auditor,
	}

	go func() {
		_ = s.StartWithListener(listener)
	}()

	if err := waitForServer(instance.ServerURL, 10*time.Second); err != nil {
		instance.Stop()
		return nil, fmt.Errorf("server failed to become ready: %w", err)
	}
	return instance, nil
}

// freePort asks the kernel for an unused port for the binary to bind.
func freePort() (int, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, err
	}
	defer func() { _ = l.Close() }()
	return l.Addr().(*net.TCPAddr).Port, nil
}

// startBinaryServerInstance starts a server using the registryctl binary
func startBinaryServerInstance(binaryPath, dbURL string, cfg ServerConfig) (*ServerInstance, error) {
	port, err := freePort()
	if err != nil {
		return nil, err
	}
	portStr := strconv.Itoa(port)

	ctx, cancel := context.WithCancel(context.Background())

	// Use --no-migrate since we already ran migrations in the test setup
	cmd := exec.CommandContext(ctx, binaryPath, "server", "--no-migrate", "-b", "127.0.0.1", "-p", portStr)
	cmd.Env = append(os.Environ(),
		"DATABASE_URL="+dbURL,
		"AUDIT_DATABASE_URL="+dbURL,
		"SECRET_KEY="+testSecret,
		"LIST_PAGE_SIZE_DEFAULT="+strconv.Itoa(cfg.PageSizeDefault),
		"LIST_PAGE_SIZE_MAX="+strconv.Itoa(cfg.PageSizeMax),
		"LOG_LEVEL=warn",
	)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to start binary: %w", err)
	}

	instance := &ServerInstance{
		ServerURL:     "http://127.0.0.1:" + portStr,
		Config:        cfg,
		cancel:        cancel,
		serverProcess: cmd,
	}

	if err := waitForServer(instance.ServerURL, 30*time.Second); err != nil {
		instance.Stop()
		return nil, fmt.Errorf("server failed to become ready: %w", err)
	}
	return instance, nil
}

// Stop shuts down the server instance
func (si *ServerInstance) Stop() {
	if si.Server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = si.Server.Shutdown(ctx)
		cancel()
	}
	if si.auditor != nil {
		_ = si.auditor.Close()
	}
	if si.cancel != nil {
		si.cancel()
	}
	if si.serverProcess != nil && si.serverProcess.Process != nil {
		_ = si.serverProcess.Process.Kill()
		_ = si.serverProcess.Wait()
	}
}
