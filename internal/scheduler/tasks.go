package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskRecalculateAll = "scoring.recalculate_all"

const TaskCalculateLead = "scoring.calculate_lead"

type RecalculateAllPayload struct {
	Reason      string `json:"reason"`
	RequestedBy string `json:"requestedBy,omitempty"`
}

type CalculateLeadPayload struct {
	LeadID string `json:"leadId"`
	Reason string `json:"reason,omitempty"`
}

func NewRecalculateAllTask(payload RecalculateAllPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskRecalculateAll, data), nil
}

func ParseRecalculateAllPayload(task *asynq.Task) (RecalculateAllPayload, error) {
	var payload RecalculateAllPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return RecalculateAllPayload{}, err
	}
	return payload, nil
}

func NewCalculateLeadTask(payload CalculateLeadPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCalculateLead, data), nil
}

func ParseCalculateLeadPayload(task *asynq.Task) (CalculateLeadPayload, error) {
	var payload CalculateLeadPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return CalculateLeadPayload{}, err
	}
	return payload, nil
}
