// internal/common/camunda/worker.go
package camunda

import (
	"sync"
	"time"

	"startup-insights/internal/common/config"
	"startup-insights/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// Opener is the part of zbc.Client that opens job workers.
type Opener interface {
	NewJobWorker() worker.JobWorkerBuilderStep1
}

var _ Opener = zbc.Client(nil)

// Registry opens job workers and closes them together on shutdown.
type Registry struct {
	mu      sync.Mutex
	client  Opener
	logger  logger.Logger
	workers map[string]worker.JobWorker
}

func NewRegistry(client Opener, log logger.Logger) *Registry {
	return &Registry{
		client:  client,
		logger:  logger.Component(log, "worker-registry"),
		workers: make(map[string]worker.JobWorker),
	}
}

// Start opens a worker for taskType unless wcfg disables it. It reports
// whether a worker was opened.
func (r *Registry) Start(taskType string, wcfg config.WorkerConfig, handler worker.JobHandler) bool {
	if !wcfg.Enabled {
		r.logger.Info("worker disabled", map[string]interface{}{"taskType": taskType})
		return false
	}

	jobWorker := r.client.NewJobWorker().
		JobType(taskType).
		Handler(handler).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(time.Duration(wcfg.Timeout) * time.Millisecond).
		Name(taskType).
		Open()

	r.mu.Lock()
	if previous, ok := r.workers[taskType]; ok {
		previous.Close()
	}
	r.workers[taskType] = jobWorker
	r.mu.Unlock()

	r.logger.Info("worker started", map[string]interface{}{
		"taskType":      taskType,
		"maxJobsActive": wcfg.MaxJobsActive,
		"timeout_ms":    wcfg.Timeout,
	})
	return true
}

// Running returns the task types with an open worker.
func (r *Registry) Running() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, 0, len(r.workers))
	for taskType := range r.workers {
		out = append(out, taskType)
	}
	return out
}

// Close stops every worker and waits for in-flight jobs.
func (r *Registry) Close() {
	r.mu.Lock()
	workers := r.workers
	r.workers = make(map[string]worker.JobWorker)
	r.mu.Unlock()

	for taskType, w := range workers {
		w.Close()
		w.AwaitClose()
		r.logger.Info("worker stopped", map[string]interface{}{"taskType": taskType})
	}
}
