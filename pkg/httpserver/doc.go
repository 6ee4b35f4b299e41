// Package httpserver runs an http.Handler until its context is cancelled and
// then drains in-flight requests within a shutdown deadline.
//
// The listener is bound before Run starts serving, so a bad address fails
// fast with ErrStart and [Server.Addr] reports the real port when ":0" is
// used. Signal handling is left to the caller:
//
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
//	defer stop()
//
//	srv := httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log))
//	if err := srv.Run(ctx, router); err != nil {
//		log.Error("server stopped", logger.Error(err))
//	}
//
// LivenessHandler and ReadinessHandler serve the health probes.
package httpserver
