package scheduler

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	StatusRunning = "running"
	StatusSuccess = "success"
	StatusFailed  = "failed"

	defaultTick    = 30 * time.Second
	defaultTimeout = 10 * time.Minute
)

var (
	ErrAlreadyRunning = errors.New("scheduler is already running")
	ErrTaskNotFound   = errors.New("task not found")
)

// Job is the work of a task. The summary is kept with the task result.
type Job func(ctx context.Context) (map[string]any, error)

// RetryPolicy defines how a failed run is retried within the same slot
type RetryPolicy struct {
	MaxRetries    int           `json:"maxRetries"`
	BaseDelay     time.Duration `json:"baseDelay"`
	MaxDelay      time.Duration `json:"maxDelay"`
	BackoffFactor float64       `json:"backoffFactor"`
}

// Delay is the wait before retry number attempt (1 based)
func (p RetryPolicy) Delay(attempt int) time.Duration {
	delay := time.Duration(float64(p.BaseDelay) * math.Pow(p.BackoffFactor, float64(attempt-1)))
	if p.MaxDelay > 0 && delay > p.MaxDelay {
		delay = p.MaxDelay
	}
	return delay
}

// Task is a job run every Interval
type Task struct {
	Name        string        `json:"name"`
	Interval    time.Duration `json:"interval"`
	Timeout     time.Duration `json:"timeout"`
	RetryPolicy RetryPolicy   `json:"retryPolicy"`
	NextRun     time.Time     `json:"nextRun"`
	LastRun     *time.Time    `json:"lastRun,omitempty"`
	LastResult  *Result       `json:"lastResult,omitempty"`

	job Job
}

// Result is the outcome of one run, retries included
type Result struct {
	RunID      string         `json:"runId"`
	Status     string         `json:"status"`
	StartTime  time.Time      `json:"startTime"`
	EndTime    time.Time      `json:"endTime"`
	Duration   time.Duration  `json:"duration"`
	Error      string         `json:"error,omitempty"`
	RetryCount int            `json:"retryCount"`
	Summary    map[string]any `json:"summary,omitempty"`
}

// Status summarises the scheduler
type Status struct {
	Running    bool `json:"running"`
	TotalTasks int  `json:"totalTasks"`
	Succeeded  int  `json:"succeeded"`
	Failed     int  `json:"failed"`
	InFlight   int  `json:"inFlight"`
}

// Scheduler runs background maintenance tasks
type Scheduler struct {
	logger *zap.Logger
	tick   time.Duration
	now    func() time.Time
	sleep  func(ctx context.Context, d time.Duration) error

	mu      sync.RWMutex
	tasks   map[string]*Task
	busy    map[string]bool
	cancel  context.CancelFunc
	running bool
	wg      sync.WaitGroup
}

func New(logger *zap.Logger) *Scheduler {
	return &Scheduler{
		logger: logger.Named("scheduler"),
		tick:   defaultTick,
		now:    time.Now,
		sleep:  sleepCtx,
		tasks:  make(map[string]*Task),
		busy:   make(map[string]bool),
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// AddTask registers job under name; the first run is one interval from now
func (s *Scheduler) AddTask(name string, interval time.Duration, policy RetryPolicy, job Job) error {
	if name == "" || job == nil || interval <= 0 {
		return fmt.Errorf("invalid task %q: name, job and a positive interval are required", name)
	}
	if policy.BackoffFactor <= 0 {
		policy.BackoffFactor = 2
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[name] = &Task{
		Name:        name,
		Interval:    interval,
		Timeout:     defaultTimeout,
		RetryPolicy: policy,
		NextRun:     s.now().Add(interval),
		job:         job,
	}
	s.logger.Info("task added", zap.String("task", name), zap.Duration("interval", interval))
	return nil
}

func (s *Scheduler) RemoveTask(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[name]; !ok {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, name)
	}
	delete(s.tasks, name)
	return nil
}

// GetTask returns a copy of the task
func (s *Scheduler) GetTask(name string) (Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tasks[name]
	if !ok {
		return Task{}, fmt.Errorf("%w: %s", ErrTaskNotFound, name)
	}
	return *t, nil
}

// ListTasks returns copies of the tasks ordered by name
func (s *Scheduler) ListTasks() []Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (s *Scheduler) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := Status{Running: s.running, TotalTasks: len(s.tasks), InFlight: len(s.busy)}
	for _, t := range s.tasks {
		if t.LastResult == nil {
			continue
		}
		switch t.LastResult.Status {
		case StatusSuccess:
			st.Succeeded++
		case StatusFailed:
			st.Failed++
		}
	}
	return st
}

// Start runs due tasks until ctx is cancelled or Stop is called
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return ErrAlreadyRunning
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.running = true
	s.logger.Info("scheduler started", zap.Int("tasks", len(s.tasks)))

	s.wg.Add(1)
	go s.loop(ctx)
	return nil
}

// Stop cancels in-flight runs and waits for them to return
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.cancel()
	s.running = false
	s.mu.Unlock()

	s.wg.Wait()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) loop(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, name := range s.due() {
				s.wg.Add(1)
				go func(name string) {
					defer s.wg.Done()
					_, _ = s.RunNow(ctx, name)
				}(name)
			}
		}
	}
}

func (s *Scheduler) due() []string {
	now := s.now()
	s.mu.RLock()
	defer s.mu.RUnlock()
	var names []string
	for name, t := range s.tasks {
		if !s.busy[name] && !now.Before(t.NextRun) {
			names = append(names, name)
		}
	}
	return names
}

// RunNow runs the task immediately, retrying per its policy, and records the result.
// A task already in flight is not started twice.
func (s *Scheduler) RunNow(ctx context.Context, name string) (*Result, error) {
	s.mu.Lock()
	t, ok := s.tasks[name]
	if !ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, name)
	}
	if s.busy[name] {
		s.mu.Unlock()
		return nil, fmt.Errorf("task %s is already running", name)
	}
	s.busy[name] = true
	job, policy, timeout := t.job, t.RetryPolicy, t.Timeout
	res := &Result{RunID: uuid.New().String(), Status: StatusRunning, StartTime: s.now()}
	t.LastResult = res
	s.mu.Unlock()

	log := s.logger.With(zap.String("task", name), zap.String("run_id", res.RunID))
	log.Debug("task started")

	var (
		summary map[string]any
		err     error
		retries int
	)
	for attempt := 0; ; attempt++ {
		runCtx, cancel := context.WithTimeout(ctx, timeout)
		summary, err = job(runCtx)
		cancel()
		if err == nil || attempt >= policy.MaxRetries || ctx.Err() != nil {
			retries = attempt
			break
		}
		delay := policy.Delay(attempt + 1)
		log.Warn("task failed, retrying", zap.Int("attempt", attempt+1), zap.Duration("delay", delay), zap.Error(err))
		if s.sleep(ctx, delay) != nil {
			retries = attempt
			break
		}
	}

	end := s.now()
	final := &Result{
		RunID:      res.RunID,
		Status:     StatusSuccess,
		StartTime:  res.StartTime,
		EndTime:    end,
		Duration:   end.Sub(res.StartTime),
		RetryCount: retries,
		Summary:    summary,
	}
	if err != nil {
		final.Status = StatusFailed
		final.Error = err.Error()
		log.Error("task failed", zap.Int("retry_count", final.RetryCount), zap.Error(err))
	} else {
		log.Info("task completed", zap.Duration("duration", final.Duration), zap.Any("summary", summary))
	}

	s.mu.Lock()
	delete(s.busy, name)
	if cur, ok := s.tasks[name]; ok {
		cur.LastRun = &end
		cur.LastResult = final
		cur.NextRun = end.Add(cur.Interval)
	}
	s.mu.Unlock()
	return final, err
}
