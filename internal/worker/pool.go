package worker

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"media-pipeline/internal/assets"
	"media-pipeline/internal/filesystem"
	"media-pipeline/internal/logging"
	"media-pipeline/internal/mediatypes"
	"media-pipeline/internal/metrics"
	"media-pipeline/internal/queue"
	"media-pipeline/internal/storage"
	"media-pipeline/internal/workers"
)

const (
	// emptyPollInterval is how long an idle worker waits before asking the
	// queue again.
	emptyPollInterval = 100 * time.Millisecond

	// cleanupInterval is how often worker 1 compacts the queue WAL and
	// sweeps stale staging files.
	cleanupInterval = 24 * time.Hour

	// stagingMaxAge is how old a staged file must be before the sweep
	// considers it abandoned.
	stagingMaxAge = 48 * time.Hour

	// shutdownGrace is how long Stop waits for in-flight tasks.
	shutdownGrace = 3 * time.Second
)

// AssetProcessor is the part of the processor the pool drives.
type AssetProcessor interface {
	ProcessNewAsset(ctx context.Context, stagedPath, userID, fileName, clientHash string) (*assets.Asset, error)
	ProcessExistingAsset(ctx context.Context, filePath, userID, fileName string) (*assets.Asset, error)
}

// MemoryGate blocks task pickup while the process is under memory
// pressure. memory.Monitor implements it; a false return means the gate
// was shut down and the worker should exit.
type MemoryGate interface {
	WaitIfPaused() bool
}

// Pool runs the task pipeline: UPLOAD tasks hand off to PROCESS, PROCESS
// ingests the file and hands off to INDEX, INDEX records the searchable
// entry. SCAN tasks fan a directory out into PROCESS tasks.
type Pool struct {
	queue     *queue.TaskQueue
	processor AssetProcessor
	assets    assets.AssetService
	staging   *storage.StagingArea
	gate      MemoryGate
	count     int

	stop chan struct{}
	wg   sync.WaitGroup
}

// NewPool creates a worker pool. count <= 0 selects a size from the
// machine's CPU count; a nil gate disables memory backpressure.
func NewPool(q *queue.TaskQueue, proc AssetProcessor, svc assets.AssetService, staging *storage.StagingArea, gate MemoryGate, count int) (*Pool, error) {
	if q == nil {
		return nil, fmt.Errorf("task queue is required")
	}
	if proc == nil {
		return nil, fmt.Errorf("asset processor is required")
	}
	if svc == nil {
		return nil, fmt.Errorf("asset service is required")
	}
	if staging == nil {
		return nil, fmt.Errorf("staging area is required")
	}
	if count <= 0 {
		count = workers.ForPool()
	}

	return &Pool{
		queue:     q,
		processor: proc,
		assets:    svc,
		staging:   staging,
		gate:      gate,
		count:     count,
		stop:      make(chan struct{}),
	}, nil
}

// Size returns the number of workers the pool runs.
func (p *Pool) Size() int {
	return p.count
}

// Start launches the workers. Worker 1 additionally owns periodic queue
// compaction and staging cleanup.
func (p *Pool) Start() {
	logging.Info("Starting %d pipeline workers", p.count)
	for i := 1; i <= p.count; i++ {
		p.wg.Add(1)
		go p.run(i)
	}
}

// Stop signals the workers and waits up to the shutdown grace period for
// in-flight tasks to finish.
func (p *Pool) Stop() {
	close(p.stop)

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(shutdownGrace):
		logging.Warn("Worker shutdown grace period expired with tasks still in flight")
	}
}

func (p *Pool) run(id int) {
	defer p.wg.Done()

	var cleanup <-chan time.Time
	if id == 1 {
		ticker := time.NewTicker(cleanupInterval)
		defer ticker.Stop()
		cleanup = ticker.C
	}

	for {
		select {
		case <-p.stop:
			return
		case <-cleanup:
			p.runCleanup()
		default:
		}

		// Under memory pressure the worker parks here instead of picking
		// up a task that would allocate even more.
		if p.gate != nil && !p.gate.WaitIfPaused() {
			return
		}

		task, ok := p.queue.GetTask()
		if !ok {
			select {
			case <-p.stop:
				return
			case <-time.After(emptyPollInterval):
			}
			continue
		}

		p.execute(task)
	}
}

// execute runs one task to completion. Failed tasks are logged and still
// marked complete: the pipeline drops work rather than retrying forever,
// and a SCAN can always re-ingest what an upload lost.
func (p *Pool) execute(task queue.Task) {
	metrics.WorkersBusy.Inc()
	start := time.Now()

	err := p.dispatch(task)

	metrics.WorkersBusy.Dec()
	metrics.TaskDuration.WithLabelValues(string(task.Type)).Observe(time.Since(start).Seconds())

	status := "ok"
	if err != nil {
		status = "error"
		logging.Error("Task %s (%s) failed: %v", task.TaskID, task.Type, err)
	}
	metrics.TasksCompletedTotal.WithLabelValues(string(task.Type), status).Inc()

	if err := p.queue.MarkTaskComplete(task.TaskID); err != nil {
		logging.Error("Failed to mark task %s complete: %v", task.TaskID, err)
	}
}

func (p *Pool) dispatch(task queue.Task) error {
	ctx := context.Background()

	switch task.Type {
	case queue.TaskTypeUpload:
		return p.handleUpload(task)
	case queue.TaskTypeProcess:
		return p.handleProcess(ctx, task)
	case queue.TaskTypeIndex:
		return p.handleIndex(ctx, task)
	case queue.TaskTypeScan:
		return p.handleScan(task)
	default:
		logging.Warn("Dropping task %s with unknown type %q", task.TaskID, task.Type)
		return nil
	}
}

// handleUpload verifies the staged file and promotes the task to PROCESS.
func (p *Pool) handleUpload(task queue.Task) error {
	if _, err := filesystem.StatWithRetry(task.StagedPath, filesystem.DefaultRetryConfig()); err != nil {
		return fmt.Errorf("staged file missing: %w", err)
	}

	next := queue.NewTask(queue.TaskTypeProcess, task.StagedPath, task.UserID, task.FileName)
	next.ClientHash = task.ClientHash
	return p.queue.EnqueueTask(next)
}

// handleProcess ingests the file. Staged files are moved into the
// repository; files found by a scan are ingested in place. The follow-up
// INDEX task carries the content hash.
func (p *Pool) handleProcess(ctx context.Context, task queue.Task) error {
	var (
		asset *assets.Asset
		err   error
	)
	if p.isStaged(task.StagedPath) {
		asset, err = p.processor.ProcessNewAsset(ctx, task.StagedPath, task.UserID, task.FileName, task.ClientHash)
	} else {
		asset, err = p.processor.ProcessExistingAsset(ctx, task.StagedPath, task.UserID, task.FileName)
	}
	if err != nil {
		return err
	}

	next := queue.NewTask(queue.TaskTypeIndex, "", task.UserID, asset.OriginalFilename)
	next.ClientHash = asset.ContentHash
	return p.queue.EnqueueTask(next)
}

// handleIndex records the asset's index entry. The queue's at-least-once
// delivery means this can run twice; the service keeps it idempotent.
func (p *Pool) handleIndex(ctx context.Context, task queue.Task) error {
	if task.ClientHash == "" {
		return fmt.Errorf("index task %s carries no content hash", task.TaskID)
	}
	return p.assets.SaveAssetIndex(ctx, task.TaskID, task.ClientHash)
}

// handleScan walks the directory in StagedPath and enqueues a PROCESS
// task for every recognized media file. Unreadable entries are logged and
// skipped so one bad directory cannot sink the whole scan.
func (p *Pool) handleScan(task queue.Task) error {
	root := task.StagedPath
	if root == "" {
		return fmt.Errorf("scan task %s carries no directory", task.TaskID)
	}

	found := 0
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logging.Warn("Scan skipping %s: %v", path, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if !mediatypes.GetAssetType(filepath.Ext(path)).Valid() {
			return nil
		}

		next := queue.NewTask(queue.TaskTypeProcess, path, task.UserID, filepath.Base(path))
		if err := p.queue.EnqueueTask(next); err != nil {
			return err
		}
		found++
		return nil
	})
	if err != nil {
		return fmt.Errorf("scan of %s failed: %w", root, err)
	}

	logging.Info("Scan of %s enqueued %d files", root, found)
	return nil
}

func (p *Pool) isStaged(path string) bool {
	rel, err := filepath.Rel(p.staging.Root(), filepath.Clean(path))
	if err != nil {
		return false
	}
	return !strings.HasPrefix(rel, "..")
}

func (p *Pool) runCleanup() {
	if err := p.queue.CleanupProcessedTasks(); err != nil {
		logging.Error("Queue compaction failed: %v", err)
	}

	removed, err := p.staging.Cleanup(stagingMaxAge)
	if err != nil {
		logging.Error("Staging cleanup failed: %v", err)
		return
	}
	if removed > 0 {
		logging.Info("Removed %d abandoned staged files", removed)
	}
}
