package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"

	"github.com/alexanderramin/orgdir/internal/config"
)

// Serve listens on cfg.HTTPAddr until ctx is cancelled, then drains
// in-flight requests for at most cfg.ShutdownTimeout.
func Serve(ctx context.Context, cfg *config.Config, handler http.Handler, logger *slog.Logger) error {
	ln, err := net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		return err
	}
	return ServeListener(ctx, cfg, ln, handler, logger)
}

func ServeListener(ctx context.Context, cfg *config.Config, ln net.Listener, handler http.Handler, logger *slog.Logger) error {
	server := &http.Server{
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	listenErrs := make(chan error, 1)
	go func() {
		listenErrs <- server.Serve(ln)
	}()
	logger.Info("http_listening", "addr", ln.Addr().String(), "api_prefix", cfg.APIPrefix)

	select {
	case err := <-listenErrs:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info("http_shutting_down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		shutdownErr := server.Shutdown(shutdownCtx)
		cancel()
		listenErr := <-listenErrs
		if errors.Is(listenErr, http.ErrServerClosed) {
			listenErr = nil
		}
		return errors.Join(shutdownErr, listenErr)
	}
}
