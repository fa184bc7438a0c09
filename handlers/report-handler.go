package handlers

import (
	"net/http"

	"taskboard-service/services"
)

type ReportHandler struct {
	service *services.ReportService
}

func NewReportHandler(service *services.ReportService) *ReportHandler {
	return &ReportHandler{service: service}
}

// ExportTasks streams the task report workbook.
func (h *ReportHandler) ExportTasks(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	data, err := h.service.TasksXLSX(r.Context(), actor)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="tasks.xlsx"`)
	w.Write(data)
}
