package queue

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"media-pipeline/internal/logging"
	"media-pipeline/internal/metrics"
)

// TaskType identifies which stage of the pipeline a task belongs to.
type TaskType string

const (
	// TaskTypeUpload marks a freshly staged upload awaiting processing.
	TaskTypeUpload TaskType = "UPLOAD"
	// TaskTypeProcess marks a file ready for hashing, extraction and storage.
	TaskTypeProcess TaskType = "PROCESS"
	// TaskTypeIndex marks a processed asset awaiting index persistence.
	TaskTypeIndex TaskType = "INDEX"
	// TaskTypeScan marks a directory to enumerate for bulk ingestion.
	TaskTypeScan TaskType = "SCAN"
)

// Valid reports whether t is a known task type.
func (t TaskType) Valid() bool {
	switch t {
	case TaskTypeUpload, TaskTypeProcess, TaskTypeIndex, TaskTypeScan:
		return true
	}
	return false
}

// Task is the unit of queued work. Tasks are serialized as single JSON
// lines in the WAL; TaskID is immutable once issued.
type Task struct {
	TaskID string   `json:"taskId"`
	Type   TaskType `json:"type"`
	// ClientHash carries the uploader's declared hash on UPLOAD and
	// PROCESS tasks; on INDEX tasks it carries the verified content hash
	// computed during processing.
	ClientHash string    `json:"clientHash,omitempty"`
	StagedPath string    `json:"stagedPath"`
	UserID     string    `json:"userId"`
	Timestamp  time.Time `json:"timestamp"`
	FileName   string    `json:"fileName,omitempty"`
}

// NewTask creates a task with a freshly generated ID and timestamp.
func NewTask(taskType TaskType, stagedPath, userID, fileName string) Task {
	return Task{
		TaskID:     uuid.New().String(),
		Type:       taskType,
		StagedPath: stagedPath,
		UserID:     userID,
		FileName:   fileName,
		Timestamp:  time.Now(),
	}
}

const (
	walFileName  = "tasks.wal"
	doneFileName = "tasks.done"

	// watchInterval is how often the WAL is checked for records that could
	// not be buffered at enqueue time (or were appended by another handle).
	watchInterval = 1 * time.Second
)

// TaskQueue is a crash-recoverable FIFO work queue. Tasks are appended to
// an on-disk WAL before they become deliverable; completions are appended
// to a separate done file. On restart, WAL records without a completion
// record are re-delivered (at-least-once).
type TaskQueue struct {
	queueDir string
	walFile  string
	doneFile string

	tasks      chan Task
	bufferSize int

	mu          sync.Mutex
	completed   map[string]bool
	delivered   map[string]bool
	walOffset   int64
	initialized bool

	stopWatcher chan struct{}
	watcherDone chan struct{}
}

// New creates a file-backed task queue rooted at queueDir. The directory
// is created if it does not exist.
func New(queueDir string, bufferSize int) (*TaskQueue, error) {
	if err := os.MkdirAll(queueDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create queue directory: %w", err)
	}

	return &TaskQueue{
		queueDir:    queueDir,
		walFile:     filepath.Join(queueDir, walFileName),
		doneFile:    filepath.Join(queueDir, doneFileName),
		tasks:       make(chan Task, bufferSize),
		bufferSize:  bufferSize,
		completed:   make(map[string]bool),
		delivered:   make(map[string]bool),
		stopWatcher: make(chan struct{}),
		watcherDone: make(chan struct{}),
	}, nil
}

// Initialize recovers previously persisted, not-yet-completed tasks into
// the delivery channel and starts the WAL watcher. It is a no-op when
// called twice.
func (q *TaskQueue) Initialize() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.initialized {
		return nil
	}

	for _, path := range []string{q.walFile, q.doneFile} {
		if err := ensureFile(path); err != nil {
			return err
		}
	}

	completed, err := q.loadCompletedTaskIDs()
	if err != nil {
		return fmt.Errorf("failed to load completed tasks: %w", err)
	}
	q.completed = completed

	if err := q.deliverPendingLocked(); err != nil {
		return fmt.Errorf("failed to recover pending tasks: %w", err)
	}

	go q.watchForNewTasks()

	q.initialized = true
	return nil
}

// EnqueueTask durably records the task and makes it available for
// delivery. The WAL append is synced before the task becomes deliverable;
// if persistence fails the task is not delivered and the error is
// returned to the caller.
func (q *TaskQueue) EnqueueTask(task Task) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if task.Timestamp.IsZero() {
		task.Timestamp = time.Now()
	}

	line, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}

	if err := appendLine(q.walFile, string(line)); err != nil {
		return fmt.Errorf("failed to write task to WAL: %w", err)
	}

	metrics.TasksEnqueuedTotal.WithLabelValues(string(task.Type)).Inc()

	// Best-effort immediate delivery. If the buffer is full the watcher
	// picks the record up from the WAL later. Before Initialize (and after
	// Close) the record stays in the WAL only.
	if q.initialized {
		select {
		case q.tasks <- task:
			q.delivered[task.TaskID] = true
			metrics.QueueDepth.Set(float64(len(q.tasks)))
		default:
		}
	}

	return nil
}

// GetTask returns the next buffered task. ok=false means the buffer is
// temporarily empty (or the queue is closed); callers should back off and
// poll rather than exit.
func (q *TaskQueue) GetTask() (Task, bool) {
	select {
	case task, ok := <-q.tasks:
		if ok {
			metrics.QueueDepth.Set(float64(len(q.tasks)))
		}
		return task, ok
	default:
		return Task{}, false
	}
}

// Depth returns the number of tasks currently buffered for delivery.
func (q *TaskQueue) Depth() int {
	return len(q.tasks)
}

// MarkTaskComplete records that a task has finished. It is idempotent:
// marking an already-complete or unknown task is not an error.
func (q *TaskQueue) MarkTaskComplete(taskID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.completed[taskID] {
		return nil
	}

	if err := appendLine(q.doneFile, taskID); err != nil {
		return fmt.Errorf("failed to write task ID to done file: %w", err)
	}

	q.completed[taskID] = true
	delete(q.delivered, taskID)
	return nil
}

// CleanupProcessedTasks compacts the WAL by dropping records for completed
// tasks and truncates the done file. Intended to run periodically from a
// single worker.
func (q *TaskQueue) CleanupProcessedTasks() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.completed) == 0 {
		return nil
	}

	wal, err := os.Open(q.walFile)
	if err != nil {
		return fmt.Errorf("failed to open WAL file: %w", err)
	}
	defer wal.Close()

	tempPath := q.walFile + ".new"
	temp, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create temp WAL file: %w", err)
	}
	defer temp.Close()

	kept := 0
	scanner := bufio.NewScanner(wal)
	for scanner.Scan() {
		line := scanner.Text()
		var task Task
		if err := json.Unmarshal([]byte(line), &task); err != nil {
			// Torn or corrupt record; drop it.
			continue
		}
		if q.completed[task.TaskID] {
			continue
		}
		if _, err := temp.WriteString(line + "\n"); err != nil {
			return fmt.Errorf("failed to write to temp WAL: %w", err)
		}
		kept++
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading WAL: %w", err)
	}

	if err := temp.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp WAL: %w", err)
	}

	wal.Close()
	temp.Close()

	if err := os.Rename(tempPath, q.walFile); err != nil {
		return fmt.Errorf("failed to replace WAL: %w", err)
	}

	if err := os.Truncate(q.doneFile, 0); err != nil {
		return fmt.Errorf("failed to truncate done file: %w", err)
	}

	// The compacted WAL contains only incomplete records; rescanning from
	// the start is safe because the delivered set suppresses duplicates
	// for tasks that are still in flight.
	q.walOffset = 0

	metrics.QueueCleanupRunsTotal.Inc()
	q.updateWALSizeMetric()
	logging.Info("Queue cleanup: compacted WAL, %d task(s) retained", kept)
	return nil
}

// Close stops the watcher and closes the delivery channel. Additional
// calls are no-ops.
func (q *TaskQueue) Close() {
	q.mu.Lock()
	if !q.initialized {
		q.mu.Unlock()
		return
	}
	q.initialized = false
	q.mu.Unlock()

	close(q.stopWatcher)
	<-q.watcherDone

	close(q.tasks)
}

// loadCompletedTaskIDs loads the set of completed task IDs from the done file.
func (q *TaskQueue) loadCompletedTaskIDs() (map[string]bool, error) {
	completed := make(map[string]bool)

	file, err := os.Open(q.doneFile)
	if err != nil {
		if os.IsNotExist(err) {
			return completed, nil
		}
		return nil, fmt.Errorf("failed to open done file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if id := scanner.Text(); id != "" {
			completed[id] = true
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading done file: %w", err)
	}

	return completed, nil
}

// deliverPendingLocked scans the WAL from the current offset and buffers
// every record that is neither completed nor already delivered. The offset
// only advances past records that were handled, so a full buffer never
// loses tasks. Callers must hold q.mu.
func (q *TaskQueue) deliverPendingLocked() error {
	file, err := os.Open(q.walFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to open WAL file: %w", err)
	}
	defer file.Close()

	if _, err := file.Seek(q.walOffset, 0); err != nil {
		return fmt.Errorf("failed to seek in WAL file: %w", err)
	}

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		recordLen := int64(len(scanner.Bytes())) + 1

		var task Task
		if err := json.Unmarshal([]byte(line), &task); err != nil {
			logging.Warn("Skipping unreadable WAL record: %v", err)
			q.walOffset += recordLen
			continue
		}

		if q.completed[task.TaskID] || q.delivered[task.TaskID] {
			q.walOffset += recordLen
			continue
		}

		select {
		case q.tasks <- task:
			q.delivered[task.TaskID] = true
			q.walOffset += recordLen
		default:
			// Buffer full; retry this record on the next pass.
			metrics.QueueDepth.Set(float64(len(q.tasks)))
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading WAL file: %w", err)
	}

	metrics.QueueDepth.Set(float64(len(q.tasks)))
	q.updateWALSizeMetric()
	return nil
}

// watchForNewTasks periodically feeds WAL records that were appended while
// the buffer was full (or by a previous process) into the channel.
func (q *TaskQueue) watchForNewTasks() {
	defer close(q.watcherDone)

	ticker := time.NewTicker(watchInterval)
	defer ticker.Stop()

	for {
		select {
		case <-q.stopWatcher:
			return
		case <-ticker.C:
			q.mu.Lock()
			if err := q.deliverPendingLocked(); err != nil {
				logging.Error("WAL watcher: %v", err)
			}
			q.mu.Unlock()
		}
	}
}

func (q *TaskQueue) updateWALSizeMetric() {
	if info, err := os.Stat(q.walFile); err == nil {
		metrics.QueueWALSizeBytes.Set(float64(info.Size()))
	}
}

// ensureFile creates an empty file at path if it does not exist.
func ensureFile(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", filepath.Base(path), err)
		}
		return f.Close()
	}
	return nil
}

// appendLine appends line plus a newline to the file at path and syncs it
// to disk before returning.
func appendLine(path, line string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteString(line + "\n"); err != nil {
		return err
	}
	return f.Sync()
}
