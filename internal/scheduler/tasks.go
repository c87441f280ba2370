package scheduler

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// TaskDashboardWarm warms the admin dashboard aggregates of one vendor.
const TaskDashboardWarm = "dashboard:warm"

// TaskDashboardWarmAll fans out one TaskDashboardWarm per vendor.
const TaskDashboardWarmAll = "dashboard:warm-all"

type DashboardWarmPayload struct {
	VendorID int64 `json:"vendorId"`
}

func NewDashboardWarmTask(payload DashboardWarmPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDashboardWarm, data), nil
}

func ParseDashboardWarmPayload(task *asynq.Task) (DashboardWarmPayload, error) {
	var payload DashboardWarmPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return DashboardWarmPayload{}, err
	}
	if payload.VendorID <= 0 {
		return DashboardWarmPayload{}, fmt.Errorf("%s: invalid vendor id %d", TaskDashboardWarm, payload.VendorID)
	}
	return payload, nil
}

func NewDashboardWarmAllTask() *asynq.Task {
	return asynq.NewTask(TaskDashboardWarmAll, nil)
}
