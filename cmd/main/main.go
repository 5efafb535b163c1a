package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"commission-service/internal/commission/service"
	"commission-service/internal/commission/store"
	"commission-service/internal/config"
)

var (
	cfgFile  string
	logLevel string
	noColor  bool
)

var rootCmd = &cobra.Command{
	Use:   "commission-service",
	Short: "Pazaryeri komisyon arama servisi",
	Long: `Trendyol, Hepsiburada, N11 ve diğer pazaryerlerinin komisyon tablolarını okur,
ürün adına göre en yüksek komisyonlu eşleşmeyi bulur ve HTTP API olarak sunar.
Alt komut verilmezse serve çalışır.`,
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log.level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	addServeFlags(rootCmd)
}

func main() {
	if runtime.GOMAXPROCS(0) < runtime.NumCPU() {
		runtime.GOMAXPROCS(runtime.NumCPU())
	}
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// app собирает общее для всех команд: конфиг, логгер, ядро, хранилище.
type app struct {
	cfg config.Config
	log zerolog.Logger
	svc *service.Service
	st  *store.Store
}

// quietLevel задаёт уровень по умолчанию для интерактивных команд, если --log-level не задан.
func setup(quietLevel string) (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	switch {
	case logLevel != "":
		cfg.Log.Level = logLevel
	case quietLevel != "":
		cfg.Log.Level = quietLevel
	}
	if noColor {
		cfg.Log.NoColor = true
		color.NoColor = true
	}
	logger := config.SetupLogger(cfg.Log)

	svc, err := service.New(cfg.ServiceOptions(), logger)
	if err != nil {
		return nil, err
	}
	st := store.New(svc, store.Options{Dir: cfg.Data.Dir, Profiles: cfg.Marketplaces}, logger)
	return &app{cfg: cfg, log: logger, svc: svc, st: st}, nil
}
