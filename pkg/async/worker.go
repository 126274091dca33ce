package async

import (
	"context"
	"errors"
	"sync"
	"time"

	"noticias/pkg/logger"
)

// ErrWorkerStopped 工作器已停止，不再接收任务
var ErrWorkerStopped = errors.New("worker stopped")

// Task 表示一个异步任务
type Task struct {
	ID       string
	Handler  func(ctx context.Context) error
	Timeout  time.Duration
	RetryMax int
}

// Result 表示任务执行结果
type Result struct {
	TaskID    string
	Completed bool
	Error     error
	StartTime time.Time
	EndTime   time.Time
}

// Worker 固定并发数的任务处理器
type Worker struct {
	ctx       context.Context
	taskQueue chan Task
	results   map[string]Result
	mu        sync.RWMutex // 保护 results
	stopMu    sync.RWMutex // 保护 stopped 与队列关闭
	stopOnce  sync.Once
	stopped   bool
	logger    *logger.Logger
	wg        sync.WaitGroup
	backoff   time.Duration
}

// NewWorker 创建一个新的工作器，ctx 取消后未开始的任务直接以 ctx.Err() 结束
func NewWorker(ctx context.Context, queueSize int, logger *logger.Logger) *Worker {
	return &Worker{
		ctx:       ctx,
		taskQueue: make(chan Task, queueSize),
		results:   make(map[string]Result),
		logger:    logger,
		backoff:   time.Second,
	}
}

// Start 启动工作器
func (w *Worker) Start(numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		w.wg.Add(1)
		go w.processTask()
	}
}

// Stop 停止接收任务并等待队列中的任务执行完毕
func (w *Worker) Stop() {
	w.stopOnce.Do(func() {
		w.stopMu.Lock()
		w.stopped = true
		close(w.taskQueue)
		w.stopMu.Unlock()
	})
	w.wg.Wait()
}

// AddTask 将任务加入队列，队列满时阻塞
func (w *Worker) AddTask(task Task) error {
	w.stopMu.RLock()
	defer w.stopMu.RUnlock()
	if w.stopped {
		return ErrWorkerStopped
	}
	w.taskQueue <- task
	return nil
}

// GetResult 获取任务结果
func (w *Worker) GetResult(taskID string) (Result, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	result, exists := w.results[taskID]
	return result, exists
}

// Results 获取全部任务结果
func (w *Worker) Results() []Result {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]Result, 0, len(w.results))
	for _, r := range w.results {
		out = append(out, r)
	}
	return out
}

// processTask 处理任务的工作循环
func (w *Worker) processTask() {
	defer w.wg.Done()

	for task := range w.taskQueue {
		w.executeTask(task)
	}
}

// executeTask 执行单个任务
func (w *Worker) executeTask(task Task) {
	result := Result{
		TaskID:    task.ID,
		StartTime: time.Now(),
	}

	ctx := w.ctx
	if task.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, task.Timeout)
		defer cancel()
	}

	// 执行任务，支持重试
	var err error
	for attempt := 0; attempt <= task.RetryMax; attempt++ {
		if err = ctx.Err(); err != nil {
			break
		}
		if attempt > 0 {
			w.logger.Info("Retrying task", "task_id", task.ID, "attempt", attempt)
			time.Sleep(w.backoff * time.Duration(attempt))
		}

		err = task.Handler(ctx)
		if err == nil {
			break
		}

		w.logger.Warn("Task execution failed", "task_id", task.ID, "attempt", attempt, "error", err)
	}

	result.EndTime = time.Now()
	result.Error = err
	result.Completed = err == nil

	// 存储结果
	w.mu.Lock()
	w.results[task.ID] = result
	w.mu.Unlock()

	if err != nil {
		w.logger.Error("Async task failed", "task_id", task.ID, "error", err)
	} else {
		w.logger.Debug("Async task completed", "task_id", task.ID, "duration", result.EndTime.Sub(result.StartTime))
	}
}
