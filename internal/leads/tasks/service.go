// Package tasks assigns and completes lead tasks. Assigning any task other
// than a follow-up moves the lead to the stage the task belongs to.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"leadflow_backend/internal/events"
	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/internal/leads/repository"
	"leadflow_backend/internal/leads/taxonomy"
	"leadflow_backend/platform/apperr"
	"leadflow_backend/platform/logger"
	"leadflow_backend/platform/metrics"
	"leadflow_backend/platform/sanitize"
)

const dueDateLayout = "02/01/2006"

// TxRunner opens the transaction an assignment runs in.
type TxRunner interface {
	InTx(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error
}

type AssignInput struct {
	VendorID   int64
	LeadID     int64
	ActorID    int64
	AssigneeID int64
	TaskType   string
	DueDate    time.Time
	Remark     string
	// TargetStage is where a non follow-up task moves the lead.
	TargetStage domain.StatusTag
}

type AssignResult struct {
	Task             repository.Task
	Lead             repository.Lead
	PreviousStatusID int64
	StatusChanged    bool
	StatusLog        *repository.StatusLog
	Log              repository.DetailedLog
}

type CompleteInput struct {
	VendorID      int64
	TaskID        int64
	ActorID       int64
	ClosingRemark string
}

type Service struct {
	repo    TxRunner
	bus     events.Bus
	metrics *metrics.Metrics
	log     *logger.Logger
	now     func() time.Time
}

func New(repo TxRunner, bus events.Bus, m *metrics.Metrics, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Discard()
	}
	return &Service{repo: repo, bus: bus, metrics: m, log: log, now: time.Now}
}

func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Assign creates an open task on the lead. Follow-up tasks leave the stage
// alone; every other task type sets the lead to TargetStage and writes a
// status log row, even when the lead is already there.
func (s *Service) Assign(ctx context.Context, in AssignInput) (AssignResult, error) {
	if err := validateAssign(in); err != nil {
		return AssignResult{}, err
	}

	var result AssignResult
	err := s.repo.InTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		var err error
		result, err = s.assign(ctx, tx, in)
		return err
	})
	if err != nil {
		return AssignResult{}, err
	}

	s.log.WithContext(ctx).Info("task assigned",
		"vendorId", in.VendorID, "leadId", in.LeadID, "taskId", result.Task.ID, "advanced", result.StatusChanged)
	if s.metrics != nil {
		s.metrics.TasksAssigned.WithLabelValues(strconv.FormatBool(result.StatusChanged)).Inc()
	}
	if s.bus != nil {
		s.bus.Publish(ctx, events.LeadTaskAssigned{
			BaseEvent:  events.NewBaseEvent(ctx),
			VendorID:   in.VendorID,
			LeadID:     in.LeadID,
			TaskID:     result.Task.ID,
			AssigneeID: in.AssigneeID,
			TaskType:   result.Task.TaskType,
			Advanced:   result.StatusChanged,
		})
	}
	return result, nil
}

func (s *Service) assign(ctx context.Context, tx repository.Tx, in AssignInput) (AssignResult, error) {
	var result AssignResult

	lead, err := tx.GetLead(ctx, in.VendorID, in.LeadID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return result, apperr.NotFound("lead not found")
		}
		return result, err
	}
	result.Lead = lead
	result.PreviousStatusID = lead.StatusID

	assignee, err := tx.GetUser(ctx, in.AssigneeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return result, apperr.NotFound("assignee not found")
		}
		return result, err
	}
	if assignee.VendorID != lead.VendorID {
		return result, apperr.Forbidden("assignee does not belong to this vendor")
	}

	advance := !domain.IsFollowUp(in.TaskType)
	var target repository.TypeMaster
	if advance {
		if target, err = taxonomy.New(tx).ResolveStatus(ctx, in.VendorID, in.TargetStage); err != nil {
			return result, err
		}
	}

	taskType := strings.TrimSpace(in.TaskType)
	if result.Task, err = tx.CreateTask(ctx, repository.CreateTaskParams{
		VendorID:  in.VendorID,
		LeadID:    in.LeadID,
		UserID:    in.AssigneeID,
		CreatedBy: in.ActorID,
		TaskType:  taskType,
		DueDate:   in.DueDate,
		Remark:    remarkPtr(in.Remark),
	}); err != nil {
		return result, err
	}

	if advance {
		if result.Lead, err = tx.UpdateLeadStage(ctx, repository.UpdateLeadStageParams{
			VendorID: in.VendorID,
			LeadID:   in.LeadID,
			StatusID: &target.ID,
		}); err != nil {
			return result, err
		}
		statusLog, err := tx.CreateStatusLog(ctx, repository.CreateStatusLogParams{
			VendorID:  in.VendorID,
			LeadID:    in.LeadID,
			StatusID:  target.ID,
			CreatedBy: in.ActorID,
		})
		if err != nil {
			return result, err
		}
		result.StatusLog = &statusLog
		result.StatusChanged = true
	}

	description := fmt.Sprintf("Task '%s' assigned to %s due %s.", taskType, assignee.Name, in.DueDate.Format(dueDateLayout))
	if advance {
		description += " Lead moved to " + target.Name + "."
	}
	description += " " + remarkSuffix(in.Remark)

	if result.Log, err = tx.CreateDetailedLog(ctx, repository.CreateDetailedLogParams{
		VendorID:    in.VendorID,
		LeadID:      in.LeadID,
		Action:      "task:assign",
		Description: description,
		CreatedBy:   in.ActorID,
	}); err != nil {
		return result, err
	}
	return result, nil
}

// Complete closes one open task of the vendor.
func (s *Service) Complete(ctx context.Context, in CompleteInput) (repository.Task, error) {
	if in.VendorID <= 0 || in.TaskID <= 0 || in.ActorID <= 0 {
		return repository.Task{}, apperr.Validation("vendor, task and actor are required")
	}

	var task repository.Task
	err := s.repo.InTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		current, err := tx.GetTask(ctx, in.VendorID, in.TaskID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apperr.NotFound("task not found")
			}
			return err
		}
		if current.Status == domain.TaskStatusCompleted {
			return apperr.Conflict("task is already completed")
		}

		if task, err = tx.CompleteTask(ctx, repository.CompleteTaskParams{
			VendorID:      in.VendorID,
			TaskID:        in.TaskID,
			ClosedBy:      in.ActorID,
			ClosedAt:      s.now(),
			ClosingRemark: remarkPtr(in.ClosingRemark),
		}); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apperr.Conflict("task is already completed")
			}
			return err
		}

		_, err = tx.CreateDetailedLog(ctx, repository.CreateDetailedLogParams{
			VendorID:    in.VendorID,
			LeadID:      task.LeadID,
			Action:      "task:complete",
			Description: fmt.Sprintf("Task '%s' completed. %s", task.TaskType, remarkSuffix(in.ClosingRemark)),
			CreatedBy:   in.ActorID,
		})
		return err
	})
	if err != nil {
		return repository.Task{}, err
	}
	return task, nil
}

func validateAssign(in AssignInput) error {
	details := make(map[string]string)
	if in.VendorID <= 0 || in.LeadID <= 0 || in.ActorID <= 0 {
		return apperr.Validation("vendor, lead and actor are required")
	}
	if in.AssigneeID <= 0 {
		details["assigneeId"] = "is required"
	}
	if strings.TrimSpace(in.TaskType) == "" {
		details["taskType"] = "is required"
	}
	if in.DueDate.IsZero() {
		details["dueDate"] = "is required"
	}
	if !domain.IsFollowUp(in.TaskType) && !in.TargetStage.Known() {
		details["stage"] = "unknown target stage"
	}
	if len(details) > 0 {
		return apperr.Validation("invalid task assignment").WithDetails(details)
	}
	return nil
}

func remarkPtr(s string) *string {
	s = strings.TrimSpace(sanitize.Text(s))
	if s == "" {
		return nil
	}
	return &s
}

func remarkSuffix(remark string) string {
	if r := remarkPtr(remark); r != nil {
		return "Remark: " + *r
	}
	return "No remark provided"
}
