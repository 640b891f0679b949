package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/exec"
	"time"

	chatpost "github.com/a-h/chatbridge/handlers/chat/post"
	healthget "github.com/a-h/chatbridge/handlers/health/get"
	"github.com/a-h/chatbridge/relay"
	"github.com/rs/cors"
	"github.com/tmc/langchaingo/llms/ollama"
)

type ServeCommand struct {
	ListenAddr    string        `help:"The address to listen on." env:"LISTEN_ADDR" default:"localhost:9020"`
	Backend       string        `help:"How messages reach the model. process runs the executable once per message, ollama uses the Ollama HTTP API." env:"BACKEND" enum:"process,ollama" default:"process"`
	Executable    string        `help:"The inference executable." env:"INFERENCE_EXECUTABLE" default:"ollama"`
	Mode          string        `help:"The run mode argument passed to the inference executable." env:"INFERENCE_MODE" default:"run"`
	Model         string        `help:"The model to chat with." env:"CHAT_MODEL" default:"gemma3:1b"`
	OllamaURL     string        `help:"The URL of the Ollama server, used by the ollama backend." env:"OLLAMA_URL" default:"http://127.0.0.1:11434/"`
	MaxConcurrent int64         `help:"The maximum number of concurrent inference calls, 0 for no limit." env:"MAX_CONCURRENT" default:"0"`
	Timeout       time.Duration `help:"The maximum duration of an inference call, 0 for no limit." env:"TIMEOUT" default:"0s"`
	StrictExit    bool          `help:"Fail the request if the inference executable exits with a non-zero code." env:"STRICT_EXIT" default:"false"`
	TLSCertFile   string        `help:"The TLS certificate file." env:"TLS_CERT_FILE" default:""`
	TLSKeyFile    string        `help:"The TLS key file." env:"TLS_KEY_FILE" default:""`
	LogLevel      string        `help:"The log level to use." env:"LOG_LEVEL" default:"info"`
}

const shutdownTimeout = 10 * time.Second

func (c ServeCommand) relayer(log *slog.Logger) (r relay.Relayer, err error) {
	switch c.Backend {
	case "ollama":
		log.Info("creating LLM client", slog.String("url", c.OllamaURL), slog.String("model", c.Model))
		llmc, err := ollama.New(
			ollama.WithModel(c.Model),
			ollama.WithHTTPClient(&http.Client{}),
			ollama.WithServerURL(c.OllamaURL))
		if err != nil {
			return nil, fmt.Errorf("failed to create LLM: %w", err)
		}
		r = relay.NewModel(log, llmc, c.Timeout)
	case "process", "":
		if _, err := exec.LookPath(c.Executable); err != nil {
			log.Warn("inference executable not found, requests will fail until it is installed", slog.String("executable", c.Executable), slog.Any("error", err))
		}
		r = relay.NewProcess(log, relay.ProcessConfig{
			Path:       c.Executable,
			Args:       []string{c.Mode, c.Model},
			Timeout:    c.Timeout,
			StrictExit: c.StrictExit,
		})
	default:
		return nil, fmt.Errorf("unknown backend %q", c.Backend)
	}
	if c.MaxConcurrent > 0 {
		log.Info("limiting concurrent inference calls", slog.Int64("max", c.MaxConcurrent))
		r = relay.NewGate(r, c.MaxConcurrent)
	}
	return r, nil
}

func (c ServeCommand) handler(log *slog.Logger, r relay.Relayer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("POST /api/chat", chatpost.New(log, r))
	mux.Handle("GET /health", healthget.New())
	return cors.AllowAll().Handler(mux)
}

func (c ServeCommand) Run(ctx context.Context) (err error) {
	log := getLogger(c.LogLevel)

	r, err := c.relayer(log)
	if err != nil {
		return err
	}

	log.Info("Listening", slog.String("addr", c.ListenAddr), slog.String("backend", c.Backend))
	s := &http.Server{
		Addr:    c.ListenAddr,
		Handler: c.handler(log, r),
	}
	if c.TLSCertFile != "" && c.TLSKeyFile != "" {
		log.Info("Enabling TLS mode")
		var cert tls.Certificate
		cert, err = tls.LoadX509KeyPair(c.TLSCertFile, c.TLSKeyFile)
		if err != nil {
			return fmt.Errorf("failed to load cert: %w", err)
		}
		s.TLSConfig = &tls.Config{
			MinVersion:   tls.VersionTLS12,
			Certificates: []tls.Certificate{cert},
		}
	}

	errs := make(chan error, 1)
	go func() {
		if s.TLSConfig != nil {
			errs <- s.ListenAndServeTLS("", "")
			return
		}
		errs <- s.ListenAndServe()
	}()

	select {
	case err = <-errs:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err = s.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	if err = <-errs; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
