package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/kedarnag/invoiceflow/internal/config"
	"github.com/kedarnag/invoiceflow/internal/database"
	"github.com/kedarnag/invoiceflow/internal/export"
	flowHttp "github.com/kedarnag/invoiceflow/internal/http"
	exportHandler "github.com/kedarnag/invoiceflow/internal/http/export"
	invHandler "github.com/kedarnag/invoiceflow/internal/http/invoice"
	profileHandler "github.com/kedarnag/invoiceflow/internal/http/profile"
	"github.com/kedarnag/invoiceflow/internal/invoice"
	invStore "github.com/kedarnag/invoiceflow/internal/invoice/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	var (
		invoiceService = invoice.NewService(invStore.New(db))
		exportService  = export.NewService(invoiceService)
	)

	var (
		invoiceH = invHandler.NewHandler(invoiceService)
		profileH = profileHandler.NewHandler()
		exportH  = exportHandler.NewHandler(exportService)
	)

	router := flowHttp.New(invoiceH, profileH, exportH)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	slog.Info("starting server", "port", port)

	if err := http.ListenAndServe(port, router); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
