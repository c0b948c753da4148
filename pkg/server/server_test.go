package server

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"surevoucher/webcore/pkg/config"
	tlsx "surevoucher/webcore/pkg/security/tls"
	"surevoucher/webcore/pkg/telemetry/health"
	"surevoucher/webcore/pkg/telemetry/logging"
	"surevoucher/webcore/pkg/telemetry/tracing"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Host = "127.0.0.1"
	cfg.Port = 0
	cfg.HealthHost = "127.0.0.1"
	cfg.HealthPort = 0
	cfg.ShutdownTimeout = 5 * time.Second
	cfg.Metrics.ProcessMetrics = false
	return cfg
}

func helloRouter() http.Handler {
	r := chi.NewRouter()
	r.Get("/hello", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "hello")
	})
	return r
}

func newTestServer(router http.Handler, cfg *config.Config, opts ...Option) *Server {
	opts = append([]Option{WithLogger(logging.Discard())}, opts...)
	return New(router, cfg, opts...)
}

// start runs srv in the background and waits until it serves and the health
// server bind attempt is over.
func start(t *testing.T, srv *Server) <-chan error {
	t.Helper()

	done := make(chan error, 1)
	go func() { done <- srv.Run(context.Background()) }()

	select {
	case <-srv.Ready():
	case err := <-done:
		t.Fatalf("Run() returned before serving: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not become ready")
	}
	select {
	case <-srv.HealthBound():
	case <-time.After(5 * time.Second):
		t.Fatal("health server bind did not complete")
	}
	return done
}

func wait(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(10 * time.Second):
		t.Fatal("Run() did not return")
		return nil
	}
}

func get(t *testing.T, client *http.Client, url string) (int, string) {
	t.Helper()
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read %s: %v", url, err)
	}
	return resp.StatusCode, string(body)
}

func healthURL(srv *Server, path string) string {
	return "http://" + srv.HealthAddr().String() + path
}

func eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal(msg)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestRun_ServeAndShutdown(t *testing.T) {
	srv := newTestServer(helloRouter(), testConfig())

	rec := httptest.NewRecorder()
	srv.health.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, health.PathReadiness, nil))
	if rec.Body.String() != health.BodyStarting {
		t.Errorf("/ready before Run = %q, want %q", rec.Body.String(), health.BodyStarting)
	}
	if srv.State() != Idle {
		t.Errorf("State() before Run = %v, want idle", srv.State())
	}

	done := start(t, srv)

	if srv.State() != Serving {
		t.Errorf("State() = %v, want serving", srv.State())
	}
	if code, body := get(t, nil, "http://"+srv.Addr().String()+"/hello"); code != http.StatusOK || body != "hello" {
		t.Errorf("GET /hello = %d %q", code, body)
	}
	if _, body := get(t, nil, healthURL(srv, health.PathReadiness)); body != health.BodyOK {
		t.Errorf("/ready = %q, want %q", body, health.BodyOK)
	}
	if _, body := get(t, nil, healthURL(srv, health.PathLiveness)); body != health.BodyOK {
		t.Errorf("/healthz = %q, want %q", body, health.BodyOK)
	}
	_, metricsBody := get(t, nil, healthURL(srv, health.PathMetrics))
	for _, want := range []string{
		`surevoucher_http_requests_total{method="GET",route="/hello",status="200"} 1`,
		"surevoucher_ready 1",
	} {
		if !strings.Contains(metricsBody, want) {
			t.Errorf("/metrics lacks %q:\n%s", want, metricsBody)
		}
	}

	srv.Shutdown()
	if err := wait(t, done); err != nil {
		t.Errorf("Run() = %v, want nil", err)
	}
	if srv.State() != Stopped {
		t.Errorf("State() = %v, want stopped", srv.State())
	}
	if srv.Readiness().IsReady() {
		t.Error("readiness still set after shutdown")
	}
}

func TestRun_DrainKeepsHealthServing(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	mux := http.NewServeMux()
	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		close(entered)
		<-release
		_, _ = io.WriteString(w, "done")
	})

	srv := newTestServer(mux, testConfig())
	done := start(t, srv)

	type result struct {
		code int
		body string
		err  error
	}
	slow := make(chan result, 1)
	go func() {
		resp, err := http.Get("http://" + srv.Addr().String() + "/slow")
		if err != nil {
			slow <- result{err: err}
			return
		}
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		slow <- result{code: resp.StatusCode, body: string(body), err: err}
	}()
	<-entered

	srv.Shutdown()
	eventually(t, func() bool { return srv.State() == ShuttingDown }, "server never entered shutting_down")

	if code, body := get(t, nil, healthURL(srv, health.PathLiveness)); code != http.StatusOK || body != health.BodyOK {
		t.Errorf("/healthz during drain = %d %q", code, body)
	}
	if _, body := get(t, nil, healthURL(srv, health.PathReadiness)); body != health.BodyStarting {
		t.Errorf("/ready during drain = %q, want %q", body, health.BodyStarting)
	}

	close(release)
	r := <-slow
	if r.err != nil || r.code != http.StatusOK || r.body != "done" {
		t.Errorf("in-flight request = %d %q %v, want 200 done", r.code, r.body, r.err)
	}
	if err := wait(t, done); err != nil {
		t.Errorf("Run() = %v, want nil", err)
	}
}

func TestRun_DrainTimeoutClosesConnections(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })

	var once sync.Once
	mux := http.NewServeMux()
	mux.HandleFunc("/stuck", func(w http.ResponseWriter, r *http.Request) {
		once.Do(func() { close(entered) })
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})

	cfg := testConfig()
	cfg.ShutdownTimeout = 100 * time.Millisecond
	srv := newTestServer(mux, cfg)
	done := start(t, srv)

	go func() {
		resp, err := http.Get("http://" + srv.Addr().String() + "/stuck")
		if err == nil {
			resp.Body.Close()
		}
	}()
	<-entered

	began := time.Now()
	srv.Shutdown()
	if err := wait(t, done); err != nil {
		t.Errorf("Run() = %v, want nil after forced close", err)
	}
	if elapsed := time.Since(began); elapsed > 3*time.Second {
		t.Errorf("shutdown took %v, want about %v", elapsed, cfg.ShutdownTimeout)
	}
	if srv.State() != Stopped {
		t.Errorf("State() = %v, want stopped", srv.State())
	}
}

func TestRun_ContextCancel(t *testing.T) {
	srv := newTestServer(helloRouter(), testConfig())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()
	<-srv.Ready()

	cancel()
	if err := wait(t, done); err != nil {
		t.Errorf("Run() = %v, want nil", err)
	}
	if srv.State() != Stopped {
		t.Errorf("State() = %v, want stopped", srv.State())
	}
}

func TestRun_InvalidAddress(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*config.Config)
		wantRole string
	}{
		{"main host", func(c *config.Config) { c.Host = "not an ip" }, RoleMain},
		{"main hostname", func(c *config.Config) { c.Host = "localhost" }, RoleMain},
		{"health host", func(c *config.Config) { c.HealthHost = "999.0.0.1" }, RoleHealth},
		{"main port", func(c *config.Config) { c.Port = 70000 }, RoleMain},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(cfg)
			srv := newTestServer(helloRouter(), cfg)

			err := srv.Run(context.Background())
			var addrErr *AddressParseError
			if !errors.As(err, &addrErr) {
				t.Fatalf("Run() = %v, want *AddressParseError", err)
			}
			if addrErr.Role != tt.wantRole {
				t.Errorf("Role = %q, want %q", addrErr.Role, tt.wantRole)
			}
			if srv.State() != Idle {
				t.Errorf("State() = %v, want idle", srv.State())
			}
			if srv.Addr() != nil || srv.HealthAddr() != nil {
				t.Error("a listener was bound")
			}
			select {
			case <-srv.HealthBound():
				t.Error("health server bind was attempted")
			default:
			}
		})
	}
}

func TestRun_MainBindError(t *testing.T) {
	occupied, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer occupied.Close()

	cfg := testConfig()
	cfg.Port = occupied.Addr().(*net.TCPAddr).Port

	var everReady bool
	readiness := health.NewReadiness()
	readiness.OnChange(func(ready bool) { everReady = everReady || ready })

	srv := newTestServer(helloRouter(), cfg, WithReadiness(readiness))
	err = srv.Run(context.Background())

	var bindErr *BindError
	if !errors.As(err, &bindErr) {
		t.Fatalf("Run() = %v, want *BindError", err)
	}
	if bindErr.Role != RoleMain {
		t.Errorf("Role = %q, want main", bindErr.Role)
	}
	if everReady {
		t.Error("readiness was set although the main listener never bound")
	}
	if srv.State() != Stopped {
		t.Errorf("State() = %v, want stopped", srv.State())
	}
}

func TestRun_HealthBindFailureIsNotFatal(t *testing.T) {
	occupied, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer occupied.Close()

	cfg := testConfig()
	cfg.HealthPort = occupied.Addr().(*net.TCPAddr).Port

	srv := newTestServer(helloRouter(), cfg)
	done := start(t, srv)

	if srv.HealthAddr() != nil {
		t.Errorf("HealthAddr() = %v, want nil", srv.HealthAddr())
	}
	if code, _ := get(t, nil, "http://"+srv.Addr().String()+"/hello"); code != http.StatusOK {
		t.Errorf("GET /hello = %d, want 200", code)
	}

	srv.Shutdown()
	if err := wait(t, done); err != nil {
		t.Errorf("Run() = %v, want nil", err)
	}
}

func TestRun_AlreadyStarted(t *testing.T) {
	srv := newTestServer(helloRouter(), testConfig())
	srv.Shutdown()

	if err := srv.Run(context.Background()); err != nil {
		t.Fatalf("first Run() = %v", err)
	}
	if err := srv.Run(context.Background()); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("second Run() = %v, want ErrAlreadyStarted", err)
	}
}

func writeKeyPair(t *testing.T) (certPath, keyPath string, pool *x509.CertPool) {
	t.Helper()

	certPEM, keyPEM, err := tlsx.GenerateSelfSigned(tlsx.SelfSignedOptions{
		Hosts:        []string{"127.0.0.1"},
		Organization: "test",
		Validity:     90 * 24 * time.Hour,
	})
	if err != nil {
		t.Fatalf("GenerateSelfSigned() error = %v", err)
	}

	dir := t.TempDir()
	certPath = filepath.Join(dir, "cert.pem")
	keyPath = filepath.Join(dir, "key.pem")
	for path, data := range map[string][]byte{certPath: certPEM, keyPath: keyPEM} {
		if err := os.WriteFile(path, data, 0o600); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}

	pool = x509.NewCertPool()
	if !pool.AppendCertsFromPEM(certPEM) {
		t.Fatal("generated certificate is not valid PEM")
	}
	return certPath, keyPath, pool
}

func TestRun_TLS(t *testing.T) {
	certPath, keyPath, pool := writeKeyPair(t)

	cfg := testConfig()
	cfg.TLS.CertPath = certPath
	cfg.TLS.KeyPath = keyPath
	srv := newTestServer(helloRouter(), cfg)
	done := start(t, srv)
	addr := srv.Addr().String()

	// A plaintext client is dropped without an HTTP response.
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	_ = conn.SetDeadline(time.Now().Add(5 * time.Second))
	if _, err := fmt.Fprint(conn, "GET /hello HTTP/1.1\r\nHost: x\r\n\r\n"); err != nil {
		t.Fatalf("write: %v", err)
	}
	if data, _ := io.ReadAll(conn); strings.Contains(string(data), "HTTP/1.1") {
		t.Errorf("plaintext client got an HTTP response: %q", data)
	}
	conn.Close()

	client := &http.Client{Transport: &http.Transport{
		TLSClientConfig: &tls.Config{RootCAs: pool, MinVersion: tls.VersionTLS12},
	}}
	defer client.CloseIdleConnections()
	if code, body := get(t, client, "https://"+addr+"/hello"); code != http.StatusOK || body != "hello" {
		t.Errorf("GET https /hello = %d %q", code, body)
	}

	_, metricsBody := get(t, nil, healthURL(srv, health.PathMetrics))
	for _, want := range []string{
		`surevoucher_tls_handshakes_total{outcome="established"} 1`,
		`surevoucher_tls_handshakes_total{outcome="rejected"} 1`,
	} {
		if !strings.Contains(metricsBody, want) {
			t.Errorf("/metrics lacks %q:\n%s", want, metricsBody)
		}
	}

	srv.Shutdown()
	if err := wait(t, done); err != nil {
		t.Errorf("Run() = %v, want nil", err)
	}
}

func TestRun_TLSStalledClientDoesNotBlockOthers(t *testing.T) {
	certPath, keyPath, pool := writeKeyPair(t)

	cfg := testConfig()
	cfg.TLS.CertPath = certPath
	cfg.TLS.KeyPath = keyPath
	cfg.TLS.HandshakeTimeout = 30 * time.Second
	srv := newTestServer(helloRouter(), cfg)
	done := start(t, srv)
	addr := srv.Addr().String()

	// Start a handshake and never finish it.
	stalled, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer stalled.Close()
	if _, err := stalled.Write([]byte{0x16, 0x03, 0x01, 0x01, 0x00, 0x01}); err != nil {
		t.Fatalf("write: %v", err)
	}

	client := &http.Client{
		Timeout: 5 * time.Second,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{RootCAs: pool, MinVersion: tls.VersionTLS12},
		},
	}
	defer client.CloseIdleConnections()
	if code, body := get(t, client, "https://"+addr+"/hello"); code != http.StatusOK || body != "hello" {
		t.Errorf("GET https /hello = %d %q", code, body)
	}

	stalled.Close()
	srv.Shutdown()
	if err := wait(t, done); err != nil {
		t.Errorf("Run() = %v, want nil", err)
	}
}

func TestRun_TLSMissingFiles(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig()
	cfg.TLS.CertPath = filepath.Join(dir, "missing-cert.pem")
	cfg.TLS.KeyPath = filepath.Join(dir, "missing-key.pem")

	var everReady bool
	readiness := health.NewReadiness()
	readiness.OnChange(func(ready bool) { everReady = everReady || ready })

	srv := newTestServer(helloRouter(), cfg, WithReadiness(readiness))
	err := srv.Run(context.Background())

	var certErr *tlsx.CertLoadError
	if !errors.As(err, &certErr) {
		t.Fatalf("Run() = %v, want *tls.CertLoadError", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Run() = %v, want it to wrap os.ErrNotExist", err)
	}
	if everReady {
		t.Error("readiness was set with unusable TLS material")
	}
	if srv.Addr() != nil {
		t.Errorf("main listener bound at %v", srv.Addr())
	}
	if srv.State() != Stopped {
		t.Errorf("State() = %v, want stopped", srv.State())
	}
}

func TestNew_DoesNotModifyConfig(t *testing.T) {
	cfg := &config.Config{}
	srv := New(helloRouter(), cfg, WithLogger(logging.Discard()))

	if cfg.ShutdownTimeout != 0 || cfg.Host != "" {
		t.Errorf("caller config modified: %+v", cfg)
	}
	if srv.cfg.ShutdownTimeout != config.DefaultShutdownTimeout {
		t.Errorf("ShutdownTimeout = %v, want %v", srv.cfg.ShutdownTimeout, config.DefaultShutdownTimeout)
	}
}

func TestState_String(t *testing.T) {
	want := map[State]string{
		Idle:           "idle",
		HealthStarting: "health_starting",
		Serving:        "serving",
		ShuttingDown:   "shutting_down",
		Stopped:        "stopped",
		State(42):      "unknown",
	}
	for st, s := range want {
		if st.String() != s {
			t.Errorf("State(%d).String() = %q, want %q", st, st.String(), s)
		}
	}
}

func TestRun_WithTracer(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tracer, err := tracing.NewWithExporter(&config.TracingConfig{
		ServiceName: "test",
		Sampler:     tracing.SamplerAlways,
	}, "dev", exporter)
	if err != nil {
		t.Fatalf("NewWithExporter() error = %v", err)
	}
	defer func() { _ = tracer.Shutdown(context.Background()) }()

	srv := newTestServer(helloRouter(), testConfig(), WithTracer(tracer))
	done := start(t, srv)

	resp, err := http.Get("http://" + srv.Addr().String() + "/hello")
	if err != nil {
		t.Fatalf("GET /hello: %v", err)
	}
	resp.Body.Close()
	if resp.Header.Get("X-Trace-ID") == "" {
		t.Error("response lacks X-Trace-ID")
	}

	srv.Shutdown()
	if err := wait(t, done); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if err := tracer.ForceFlush(context.Background()); err != nil {
		t.Fatalf("ForceFlush() error = %v", err)
	}
	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("exported %d spans, want 1", len(spans))
	}
	if spans[0].Name != "GET /hello" {
		t.Errorf("span name = %q, want %q", spans[0].Name, "GET /hello")
	}
}
