// Package extract pulls typed metadata out of media streams using
// exiftool as the extraction engine.
//
// # Streaming
//
// Files are never loaded into memory. [Extractor.ExtractFromStream] pipes
// the reader into exiftool's stdin through a bounded buffer whose size is
// derived from the declared file size (64KB for small files, up to 256KB
// for files over 500MB). This keeps memory usage flat whether the input
// is a 2MB JPEG or a 15GB video.
//
// # Concurrency
//
// Each extraction spawns a subprocess, so the extractor bounds concurrency
// with a worker slot pool sized from the CPU count and capped at 8.
// [Extractor.ExtractBatch] fans requests across the pool and always
// returns one result per request; individual failures are carried in
// [Result.Err] rather than aborting the batch.
//
// # Limits
//
// CanHandleFileSize refuses files over an absolute 20GB ceiling. Below
// that, resource checks are deliberately permissive because the streaming
// path bounds memory regardless of file size. A per-extractor MaxFileSize
// (from [Config]) is enforced on each request.
package extract
