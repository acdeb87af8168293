package queue

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestShouldRetry тестирует решение о повторе задачи
func TestShouldRetry(t *testing.T) {
	rm := NewRetryManager(3, time.Second)

	tests := []struct {
		name      string
		attempts  int
		err       error
		wantRetry bool
	}{
		{
			name:      "transient error is retried",
			attempts:  1,
			err:       errors.New("connection refused"),
			wantRetry: true,
		},
		{
			name:      "attempts exhausted",
			attempts:  3,
			err:       errors.New("connection refused"),
			wantRetry: false,
		},
		{
			name:      "missing data is not retried",
			attempts:  1,
			err:       errors.New("missing guest_email in task abc"),
			wantRetry: false,
		},
		{
			name:      "invalid task is not retried",
			attempts:  1,
			err:       errors.New("invalid task type: foo"),
			wantRetry: false,
		},
		{
			name:      "nil error is not retried",
			attempts:  1,
			err:       nil,
			wantRetry: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := &Task{ID: "t1", Type: TaskTypeConfirmationEmail, Attempts: tt.attempts, MaxRetries: 3}

			retry, delay := rm.ShouldRetry(task, tt.err)

			assert.Equal(t, tt.wantRetry, retry)
			if retry {
				assert.Greater(t, delay, time.Duration(0))
			}
		})
	}
}

// TestCalculateBackoff тестирует рост задержки и ее потолок
func TestCalculateBackoff(t *testing.T) {
	rm := NewRetryManager(10, time.Second)

	first := rm.calculateBackoff(0)
	assert.Equal(t, time.Second, first)

	// Задержка с джиттером остается в пределах maxDelay
	for attempt := 1; attempt <= 10; attempt++ {
		delay := rm.calculateBackoff(attempt)
		assert.LessOrEqual(t, delay, 16*time.Second)
		assert.Greater(t, delay, time.Duration(0))
	}
}

// TestTaskHelpers тестирует чтение данных задачи
func TestTaskHelpers(t *testing.T) {
	task := &Task{
		ID:   "t1",
		Type: TaskTypeCheckinReminder,
		Data: map[string]interface{}{
			"guest_email": "guest@example.com",
			"booking_id":  float64(42), // после json.Unmarshal числа приходят как float64
		},
	}

	assert.Equal(t, "guest@example.com", task.GetString("guest_email"))
	assert.Equal(t, int64(42), task.GetInt64("booking_id"))
	assert.Equal(t, "", task.GetString("absent"))
	assert.Equal(t, int64(0), task.GetInt64("absent"))

	assert.NoError(t, task.Validate())

	bad := &Task{Type: TaskTypeCheckinReminder}
	assert.Error(t, bad.Validate())
}
