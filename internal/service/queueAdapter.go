package service

import (
	"context"
	"time"

	"github.com/ds124wfegd/hotel-booking/pkg/queue"
)

// queueAdapter преобразует задачи сервисного слоя в формат pkg/queue
type queueAdapter struct {
	queue queue.Queue
}

func NewQueueAdapter(q queue.Queue) TaskPublisher {
	return &queueAdapter{queue: q}
}

func (a *queueAdapter) Publish(ctx context.Context, task *Task) error {
	return a.queue.Publish(ctx, &queue.Task{
		ID:         task.ID,
		Type:       queue.TaskType(task.Type),
		Data:       task.Data,
		ExecuteAt:  task.ExecuteAt,
		CreatedAt:  time.Now(),
		Attempts:   task.Attempts,
		MaxRetries: task.MaxRetries,
	})
}
