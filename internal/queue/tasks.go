package queue

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	"affiliatelink-go/constant"
)

const (
	// TaskClickRecord 点击落库任务
	TaskClickRecord = constant.TaskClickRecord
)

// ClickPayload 点击任务载荷
type ClickPayload struct {
	LinkID    uint      `json:"link_id"`
	IPAddress string    `json:"ip_address"`
	Timestamp time.Time `json:"timestamp"`
}

// NewClickTask 创建点击落库任务
func NewClickTask(payload ClickPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskClickRecord, body), nil
}

// ParseClickPayload 解析点击任务载荷
func ParseClickPayload(task *asynq.Task) (ClickPayload, error) {
	var payload ClickPayload
	err := json.Unmarshal(task.Payload(), &payload)
	return payload, err
}
