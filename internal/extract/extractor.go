package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"media-pipeline/internal/logging"
	"media-pipeline/internal/mediatypes"
	"media-pipeline/internal/metrics"
)

// ErrExtractorClosed is returned by operations on a closed extractor.
var ErrExtractorClosed = errors.New("extractor is closed")

// Request describes a single streaming extraction.
type Request struct {
	// Reader supplies the file bytes. It is consumed exactly once.
	Reader io.Reader

	// AssetType selects which tag set is requested from the tool.
	AssetType mediatypes.AssetType

	// Filename is used for logging only.
	Filename string

	// Size is the declared size of the stream in bytes.
	Size int64
}

// Result holds the outcome of one extraction. Err carries tool-level
// failures (exiftool missing, unparseable output); request-level failures
// (validation, cancellation) are returned as function errors instead.
type Result struct {
	AssetType mediatypes.AssetType

	// Metadata is *PhotoMetadata, *VideoMetadata, or *AudioMetadata
	// depending on AssetType. Nil when Err is set.
	Metadata any

	// Raw holds the tool's output fields before typed parsing.
	Raw map[string]string

	Err error
}

// Extractor runs metadata extraction over streams, bounding concurrency
// with a worker slot pool so bursty batches never oversubscribe the host.
type Extractor struct {
	config *Config
	slots  chan struct{}

	mu     sync.Mutex
	closed bool
}

// NewExtractor creates an extractor. A nil config selects DefaultConfig.
func NewExtractor(config *Config) *Extractor {
	if config == nil {
		config = DefaultConfig()
	}
	if config.WorkerCount <= 0 {
		config.WorkerCount = GetOptimalWorkerCount()
	}
	if config.MaxFileSize <= 0 {
		config.MaxFileSize = maxSupportedFileSize
	}

	return &Extractor{
		config: config,
		slots:  make(chan struct{}, config.WorkerCount),
	}
}

// ExtractFromStream streams the request's bytes through the extraction
// tool without buffering the file in memory. The returned error covers
// validation and cancellation; extraction failures land in Result.Err so
// a caller can distinguish "bad request" from "tool could not read it".
func (e *Extractor) ExtractFromStream(ctx context.Context, req *Request) (*Result, error) {
	if err := e.validateRequest(req); err != nil {
		return nil, err
	}

	if ok, reason := CanHandleFileSize(req.Size); !ok {
		return nil, fmt.Errorf("cannot process %s: %s", req.Filename, reason)
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil, ErrExtractorClosed
	}
	e.mu.Unlock()

	select {
	case e.slots <- struct{}{}:
		defer func() { <-e.slots }()
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	start := time.Now()
	result := &Result{AssetType: req.AssetType}
	result.Raw, result.Err = e.runTool(ctx, req)
	if result.Err != nil && ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if result.Err == nil {
		result.Metadata = parseMetadata(result.Raw, req.AssetType)
	}

	status := "success"
	if result.Err != nil {
		status = "error"
		logging.Debug("Metadata extraction failed for %s: %v", req.Filename, result.Err)
	}
	metrics.ExtractionsTotal.WithLabelValues(string(req.AssetType), status).Inc()
	metrics.ExtractionDuration.Observe(time.Since(start).Seconds())

	return result, nil
}

// ExtractBatch runs every request and returns one result per request, in
// order. Partial failures never abort the batch: a request that fails
// validation or extraction yields a result with Err set.
func (e *Extractor) ExtractBatch(ctx context.Context, requests []*Request) ([]*Result, error) {
	if len(requests) == 0 {
		return nil, errors.New("no requests provided")
	}

	results := make([]*Result, len(requests))
	var wg sync.WaitGroup
	for i, req := range requests {
		wg.Add(1)
		go func(i int, req *Request) {
			defer wg.Done()
			res, err := e.ExtractFromStream(ctx, req)
			if err != nil {
				res = &Result{AssetType: req.AssetType, Err: err}
			}
			results[i] = res
		}(i, req)
	}
	wg.Wait()

	return results, nil
}

// Close stops accepting new extractions. In-flight extractions finish.
func (e *Extractor) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	return nil
}

func (e *Extractor) validateRequest(req *Request) error {
	if req == nil || req.Reader == nil {
		return errors.New("reader cannot be nil")
	}
	if req.Size > e.config.MaxFileSize {
		return fmt.Errorf("file size %d exceeds maximum allowed size %d", req.Size, e.config.MaxFileSize)
	}
	if !req.AssetType.Valid() {
		return fmt.Errorf("unsupported asset type: %s", req.AssetType)
	}
	return nil
}

// bufferSizeFor picks the streaming buffer for one request without
// touching shared config, so concurrent requests never fight over it.
func (e *Extractor) bufferSizeFor(size int64) int {
	if IsLargeFile(size) {
		return GetOptimalBufferSize(size)
	}
	if e.config.BufferSize > 0 {
		return e.config.BufferSize
	}
	return defaultBufferSize
}

// timeoutFor widens the configured timeout for large files, again
// per-request rather than by mutating config.
func (e *Extractor) timeoutFor(size int64) time.Duration {
	timeout := e.config.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if IsLargeFile(size) && timeout < 60*time.Second {
		timeout = 120 * time.Second
	}
	return timeout
}

func tagsFor(assetType mediatypes.AssetType) []string {
	switch assetType {
	case mediatypes.AssetTypePhoto:
		return photoTags
	case mediatypes.AssetTypeVideo:
		return videoTags
	case mediatypes.AssetTypeAudio:
		return audioTags
	default:
		return nil
	}
}

func parseMetadata(raw map[string]string, assetType mediatypes.AssetType) any {
	switch assetType {
	case mediatypes.AssetTypePhoto:
		return parsePhotoMetadata(raw)
	case mediatypes.AssetTypeVideo:
		return parseVideoMetadata(raw)
	case mediatypes.AssetTypeAudio:
		return parseAudioMetadata(raw)
	default:
		return nil
	}
}
