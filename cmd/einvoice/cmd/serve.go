package cmd

import (
	"github.com/jonboulle/clockwork"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yijian0905/erp-einvoice/internal/config"
	"github.com/yijian0905/erp-einvoice/internal/myinvois"
	"github.com/yijian0905/erp-einvoice/internal/server"
	"github.com/yijian0905/erp-einvoice/internal/service"
	"github.com/yijian0905/erp-einvoice/internal/store"
	"github.com/yijian0905/erp-einvoice/internal/vault"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the e-invoice API server",
	Long: `Start the HTTP API server exposing the e-invoice operations:
create, validate, submit, sync, retry, cancel, credential management and a
connectivity test.

Configuration is read from the environment (optionally a .env file):
  EINVOICE_ADDR             listen address (default :8080)
  EINVOICE_ENCRYPTION_KEY   credential encryption key, min 32 bytes
  EINVOICE_ENV              "production" enforces the encryption key
  EINVOICE_RETRY_ATTEMPTS   outbound retry attempts (default 3)`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides EINVOICE_ADDR)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Address = serveAddr
	}
	if verbose {
		cfg.Debug = true
	}

	v, err := vault.New(cfg.EncryptionKey)
	if err != nil {
		return err
	}

	logger := log.StandardLogger()
	clock := clockwork.NewRealClock()

	einvoices := store.NewMemoryEInvoiceStore(clock, logger)
	creds := store.NewMemoryCredentialStore(clock)
	sales := store.NewMemorySalesReader()

	client := myinvois.NewClient(
		service.NewCredentialSource(creds, v),
		myinvois.WithRetry(cfg.RetryAttempts, cfg.RetryBackoff),
	)

	svc := service.New(einvoices, creds, sales, client, v, clock, logger)

	srv := server.NewServer(&server.Config{
		Address:      cfg.Address,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		Debug:        cfg.Debug,
	}, svc)

	log.WithField("addr", cfg.Address).Info("starting e-invoice API server")
	return srv.Run()
}
