package shutdown

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// CreateGracefulShutdownChannel returns a channel receiving SIGINT and SIGTERM.
func CreateGracefulShutdownChannel() chan os.Signal {
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	return gracefulShutdown
}

// ListenForShutdown blocks until a signal arrives on gracefulShutdown or a value on done.
// On a signal it runs notify, then waits timeout for in-flight work before returning.
func ListenForShutdown(gracefulShutdown chan os.Signal, done chan bool, notify func(), timeout time.Duration, l *zap.Logger) {
	select {
	case sig := <-gracefulShutdown:
		l.Sugar().Infow("Received shutdown signal", zap.String("signal", sig.String()))
		notify()
		select {
		case <-done:
		case <-time.After(timeout):
			l.Sugar().Warnw("Timed out waiting for shutdown", zap.Duration("timeout", timeout))
		}
	case <-done:
	}
	l.Sugar().Info("Shutdown complete")
}
