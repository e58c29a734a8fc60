package export

import (
	"archive/zip"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kedarnag/invoiceflow/internal/export"
	"github.com/kedarnag/invoiceflow/internal/http/respond"
)

type Handler struct {
	svc *export.Service
}

func NewHandler(svc *export.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/cycle/{cycle}", h.download)
	r.Get("/cycle/{cycle}/summary", h.summary)
}

func cycleParam(r *http.Request) (int, error) {
	cycle, err := strconv.Atoi(chi.URLParam(r, "cycle"))
	if err != nil || cycle < 1 || cycle > 3 {
		return 0, fmt.Errorf("cycle must be 1-3")
	}

	return cycle, nil
}

type summaryResponse struct {
	Cycle    int      `json:"cycle"`
	Invoices int      `json:"invoices"`
	Files    []string `json:"files"`
	Summary  string   `json:"summary"`
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	cycle, err := cycleParam(r)
	if err != nil {
		respond.Err(w, http.StatusBadRequest, err.Error())
		return
	}

	tmpDir, err := os.MkdirTemp("", "invoiceflow-export-*")
	if err != nil {
		respond.Err(w, http.StatusInternalServerError, "internal error")
		return
	}
	defer os.RemoveAll(tmpDir)

	items, err := h.svc.Export(r.Context(), cycle, tmpDir)
	if err != nil {
		respond.Err(w, http.StatusInternalServerError, err.Error())
		return
	}

	files := make([]string, 0, len(items))
	for _, item := range items {
		files = append(files, filepath.Base(item.FilePath))
	}

	respond.OK(w, summaryResponse{
		Cycle:    cycle,
		Invoices: len(items),
		Files:    files,
		Summary:  h.svc.Summary(items),
	})
}

func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	cycle, err := cycleParam(r)
	if err != nil {
		respond.Err(w, http.StatusBadRequest, err.Error())
		return
	}

	tmpDir, err := os.MkdirTemp("", "invoiceflow-export-*")
	if err != nil {
		respond.Err(w, http.StatusInternalServerError, "internal error")
		return
	}
	defer os.RemoveAll(tmpDir)

	items, err := h.svc.Export(r.Context(), cycle, tmpDir)
	if err != nil {
		respond.Err(w, http.StatusInternalServerError, err.Error())
		return
	}

	summary := h.svc.Summary(items)
	if err := os.WriteFile(filepath.Join(tmpDir, "summary.txt"), []byte(summary), 0o644); err != nil {
		respond.Err(w, http.StatusInternalServerError, "internal error")
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=\"cycle_%d_invoices_%s.zip\"", cycle, time.Now().Format("20060102")))

	zipWriter := zip.NewWriter(w)
	defer zipWriter.Close()

	err = filepath.Walk(tmpDir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}

		relPath, _ := filepath.Rel(tmpDir, path)

		zf, err := zipWriter.Create(relPath)
		if err != nil {
			return err
		}

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		_, err = io.Copy(zf, f)

		return err
	})
	if err != nil {
		slog.Error("failed to create zip", "error", err)
	}
}
