package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/pflag"

	"github.com/Skotchmaster/delivery_platform/gateway/internal/config"
	"github.com/Skotchmaster/delivery_platform/gateway/internal/httpserver"
	"github.com/Skotchmaster/delivery_platform/pkg/authclient"
	pkgconfig "github.com/Skotchmaster/delivery_platform/pkg/config"
	"github.com/Skotchmaster/delivery_platform/pkg/logging"
	"github.com/Skotchmaster/delivery_platform/pkg/tokens"
)

func main() {
	envFile := pflag.String("env-file", ".env", "dotenv file to load before reading the environment")
	help := pflag.BoolP("help", "h", false, "show the environment variables and exit")
	pflag.Parse()
	if *help {
		fmt.Println(pkgconfig.Usage(&config.Config{}))
		return
	}

	cfg := config.Load(*envFile)
	logger := logging.New(cfg.LogLevel, cfg.LogFormat).With("service", cfg.ServiceName)

	codec, err := tokens.NewCodec(tokens.Config{Secret: []byte(cfg.JWTSecret)})
	if err != nil {
		log.Fatalf("token codec: %v", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second

	if err := httpserver.Register(e, &httpserver.Deps{
		AuthURL:     cfg.AuthURL,
		PedidosURL:  cfg.PedidosURL,
		FlotaURL:    cfg.FlotaURL,
		FacturasURL: cfg.FacturasURL,
		Verifier:    codec,
		Revocation:  authclient.NewClient(cfg.AuthURL),
		Logger:      logger,
	}); err != nil {
		log.Fatal(err)
	}

	go func() {
		logger.Info("http_listen", "addr", cfg.ListenAddr)
		if err := e.Start(cfg.ListenAddr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown: %v", err)
	}
}
