package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"autoparts/automation"
	"autoparts/backup"
	"autoparts/config"
	"autoparts/database"
	"autoparts/logger"

	"go.uber.org/zap"
)

func main() {
	envFile := flag.String("env", "", "path to an env file (default .env when present)")
	flag.Parse()

	log := logger.Must(logger.New())
	defer log.Sync()
	zap.ReplaceGlobals(log)

	env, err := config.LoadEnv(*envFile)
	if err != nil {
		log.Fatal("failed to read environment", zap.Error(err))
	}
	if err := config.Init(env.DataDir); err != nil {
		log.Fatal("failed to prepare data directory", zap.Error(err))
	}
	if fileLog, closeLog, err := logger.WithFile(log, filepath.Join(config.LogDir(), logger.FileName)); err != nil {
		log.Warn("logging to stderr only", zap.Error(err))
	} else {
		log = fileLog
		defer closeLog()
		defer log.Sync()
		zap.ReplaceGlobals(log)
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Warn("failed to load config file, using defaults", zap.Error(err))
		cfg = config.GetConfig()
	}

	log.Info("connecting to database", zap.String("path", env.DBPath))
	dbConn, err := database.Open(env.DBPath)
	if err != nil {
		log.Fatal("database open failed", zap.Error(err))
	}
	defer dbConn.Close()

	if err := database.InitDatabase(dbConn); err != nil {
		log.Fatal("database initialization failed", zap.Error(err))
	}
	log.Info("database ready")

	printer, err := automation.NewPrinter()
	if err != nil {
		log.Warn("no browser found, PDF export disabled", zap.Error(err))
		printer = nil
	}

	backups := backup.NewService(dbConn, func() string { return config.GetConfig().BackupDir })
	scheduler := backup.NewScheduler(backups, logger.Named(log, "backup"))
	if err := scheduler.Start(cfg); err != nil {
		log.Warn("automatic backup not scheduled", zap.Error(err))
	}
	defer scheduler.Stop()

	mux := http.NewServeMux()
	if info, err := os.Stat(env.StaticDir); err == nil && info.IsDir() {
		mux.Handle("/", http.FileServer(http.Dir(env.StaticDir)))
	} else {
		log.Warn("static folder not found, serving the API only", zap.String("dir", env.StaticDir))
	}
	SetupRoutes(mux, App{DB: dbConn, Printer: printer, Backups: backups, Scheduler: scheduler})

	srv := &http.Server{
		Addr:              "localhost:" + env.Port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("starting server", zap.String("url", "http://"+srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server start error", zap.Error(err))
		}
	}()

	if env.OpenBrowser {
		openBrowser("http://" + srv.Addr)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown failed", zap.Error(err))
	}
}

func openBrowser(url string) {
	var err error
	switch runtime.GOOS {
	case "windows":
		err = exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	case "darwin":
		err = exec.Command("open", url).Start()
	default:
		err = exec.Command("xdg-open", url).Start()
	}
	if err != nil {
		zap.L().Warn("failed to open browser", zap.Error(err))
	}
}
