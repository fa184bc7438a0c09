package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"taskboard-service/logging"
	"taskboard-service/models"

	"github.com/sony/gobreaker"
	"github.com/xuri/excelize/v2"
)

const reportSheet = "Tasks"

// ReportService renders the cross-team task report as an XLSX
// workbook. Rows come pre-sorted from the database in the same
// pending-first/priority/deadline order the task list uses, and the
// display status and urgency columns are derived through the shared
// classifier, never read from storage.
type ReportService struct {
	tasks   TaskRepository
	policy  AccessPolicy
	breaker *gobreaker.CircuitBreaker

	now func() time.Time
}

func NewReportService(tasks TaskRepository, breaker *gobreaker.CircuitBreaker) *ReportService {
	return &ReportService{
		tasks:   tasks,
		breaker: breaker,
		now:     time.Now,
	}
}

// TasksXLSX builds the workbook for actor. Only managers may export.
func (s *ReportService) TasksXLSX(ctx context.Context, actor models.Actor) ([]byte, error) {
	if !s.policy.CanExportReport(actor) {
		return nil, fmt.Errorf("only managers can export reports: %w", models.ErrForbidden)
	}

	tasks, err := execute(s.breaker, func() ([]*models.Task, error) {
		return s.tasks.AllSorted(ctx)
	})
	if err != nil {
		return nil, err
	}

	now := s.now()

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(reportSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create report sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}

	header := []interface{}{"ID", "Title", "Assignee", "Priority", "Deadline", "Status", "Urgency", "Completed At"}
	if err := f.SetSheetRow(reportSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write report header: %w", err)
	}

	for i, task := range tasks {
		display := models.Classify(task, now)

		// Urgency is undefined for completed tasks.
		urgency := ""
		if display != models.DisplayCompleted {
			urgency = fmt.Sprintf("%d", models.UrgencyScore(task, now))
		}
		completedAt := ""
		if task.CompletedAt != nil {
			completedAt = task.CompletedAt.Format(time.RFC3339)
		}

		row := []interface{}{
			task.ID,
			task.Title,
			task.AssigneeName,
			string(task.Priority),
			task.Deadline.Format(time.RFC3339),
			string(display),
			urgency,
			completedAt,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("failed to address report row %d: %w", i+2, err)
		}
		if err := f.SetSheetRow(reportSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write report row %d: %w", i+2, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to serialize report: %w", err)
	}

	logging.Logger.Infof("Event ID: REPORT_EXPORTED, Description: Task report with %d rows exported by manager %d", len(tasks), actor.ID)
	return buf.Bytes(), nil
}
