package main

import (
	"context"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	log "github.com/sirupsen/logrus"

	"portfolio/internal/client"
	"portfolio/internal/i18n"
	"portfolio/internal/prefs"
	"portfolio/internal/remote"
	"portfolio/internal/session"
	"portfolio/internal/shell"
	"portfolio/internal/stats"
	"portfolio/internal/tui"
	"portfolio/pkg/config"
)

func main() {
	cfg, err := config.LoadClient()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	config.SetupLogging(cfg.LogLevel)

	dir := siteDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Fatalf("Failed to create %s: %v", dir, err)
	}
	// The screen belongs to the UI, so logs go to a file.
	logPath := cfg.LogPath
	if logPath == "" {
		logPath = filepath.Join(dir, "site.log")
	}
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	defer logFile.Close()
	log.SetOutput(logFile)

	prefsPath := cfg.PrefsPath
	if prefsPath == "" {
		prefsPath = filepath.Join(dir, "prefs.db")
	}
	kv, err := prefs.Open(prefsPath)
	if err != nil {
		log.Fatalf("Failed to open preferences: %v", err)
	}
	defer kv.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	api := client.New(cfg.HTTPURL, kv)
	api.OpenURL = openBrowser
	st, err := remote.Dial(cfg.GRPCAddr, api.Token)
	if err != nil {
		log.Fatalf("Failed to connect to content service: %v", err)
	}
	defer st.Close()

	sess := session.New(api, cfg.AdminEmail)
	surface := tui.NewSurface()
	fragment := ""
	if len(os.Args) > 1 {
		fragment = os.Args[1]
	}
	sh := shell.New(ctx, shell.Config{
		Store:     st,
		Session:   sess,
		Prefs:     prefs.New(kv),
		Tracker:   stats.New(st, cfg.AppID),
		Surface:   surface,
		Pages:     shell.Pages(st, func() string { return sess.Identity().UID }),
		Fragment:  fragment,
		Lang:      i18n.ParseLang(cfg.Lang),
		UserAgent: "portfolio-site/" + runtime.GOOS,
	})
	defer sh.Close()
	go func() {
		if err := sh.Start(ctx); err != nil {
			log.WithError(err).Error("Failed to start session")
		}
	}()

	if err := tui.Run(ctx, tui.Config{Shell: sh, Session: sess, Chat: api, Surface: surface}); err != nil {
		log.Fatalf("Error running program: %v", err)
	}
}

func siteDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".portfolio"
	}
	return filepath.Join(home, ".portfolio")
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		log.WithError(err).Warnf("Failed to open browser; visit %s", url)
	}
}
