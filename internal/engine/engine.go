// Package engine drives the concurrent chunk pipeline: a single producer
// reads plaintext (encrypt) or wire chunks (decrypt), a pool of workers runs
// each chunk through internal/pipeline, and a single consumer writes
// results back out in strictly ascending order. A single chunk failure
// poisons the whole operation: every stage is cancelled and the first
// error observed is returned to the caller.
package engine

import (
	"context"
	"fmt"
	"io"
	"runtime"

	"golang.org/x/sync/errgroup"
	"lukechampine.com/blake3"

	"github.com/hambosto/sweetbyte/internal/aead"
	"github.com/hambosto/sweetbyte/internal/pipeline"
	"github.com/hambosto/sweetbyte/internal/rscodec"
	"github.com/hambosto/sweetbyte/internal/util"
)

// task is one unit of work handed from the reader to the worker pool.
type task struct {
	index int
	data  []byte
}

// result is a worker's output, keyed by the originating task's index so
// the writer can restore ascending order despite out-of-order completion.
type result struct {
	index int
	data  []byte
}

// Workers returns the fixed worker-pool size used by both Encrypt and
// Decrypt: one per CPU core.
func Workers() int {
	if n := runtime.NumCPU(); n > 0 {
		return n
	}
	return 1
}

// Encrypt reads plaintext from r in fixed util.ChunkSize chunks, runs each
// through pipeline.EncryptOne across a pool of Workers() goroutines, and
// writes the resulting wire chunks to w in ascending chunk order. It
// returns the BLAKE3 hash and byte count of the full plaintext. onProgress,
// if non-nil, is called by the reader after every chunk is read with the
// cumulative count of plaintext bytes read so far.
func Encrypt(ctx context.Context, r io.Reader, w io.Writer, ciphers *aead.Pair, codec *rscodec.Codec, onProgress func(uint64)) ([32]byte, uint64, error) {
	hasher := blake3.New(32, nil)
	var total uint64

	read := func(gctx context.Context, tasks chan<- task) error {
		defer close(tasks)
		index := 0
		for {
			buf := util.GetChunkBuffer()
			n, readErr := io.ReadFull(r, buf)
			if n > 0 {
				chunk := append([]byte(nil), buf[:n]...)
				hasher.Write(chunk)
				total += uint64(n)
				if onProgress != nil {
					onProgress(total)
				}
				select {
				case tasks <- task{index: index, data: chunk}:
					index++
				case <-gctx.Done():
					util.PutChunkBuffer(buf)
					return gctx.Err()
				}
			}
			util.PutChunkBuffer(buf)
			switch readErr {
			case nil:
				continue
			case io.EOF, io.ErrUnexpectedEOF:
				return nil
			default:
				return fmt.Errorf("engine: read plaintext: %w", readErr)
			}
		}
	}

	transform := func(t task) (result, error) {
		wire, err := pipeline.EncryptOne(t.data, ciphers, codec)
		if err != nil {
			return result{}, err
		}
		return result{index: t.index, data: wire}, nil
	}

	if err := run(ctx, read, transform, w, nil); err != nil {
		return [32]byte{}, 0, err
	}

	var sum [32]byte
	hasher.Sum(sum[:0])
	return sum, total, nil
}

// Decrypt reads length-prefixed wire chunks from r until EOF, decrypts
// each through pipeline.DecryptOne across Workers() goroutines, and writes
// the recovered plaintext to w in ascending order while rolling a BLAKE3
// hash of the emitted bytes. maxPlainSize bounds decompression per chunk.
// onProgress, if non-nil, is called after every chunk reaches the writer
// with the cumulative count of plaintext bytes written so far.
func Decrypt(ctx context.Context, r io.Reader, w io.Writer, ciphers *aead.Pair, codec *rscodec.Codec, maxPlainSize int, onProgress func(uint64)) ([32]byte, error) {
	hasher := blake3.New(32, nil)
	hashingWriter := io.MultiWriter(w, hasher)

	read := func(gctx context.Context, tasks chan<- task) error {
		defer close(tasks)
		index := 0
		for {
			chunk, err := pipeline.ReadChunk(r)
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return fmt.Errorf("engine: read wire chunk: %w", err)
			}
			select {
			case tasks <- task{index: index, data: chunk}:
				index++
			case <-gctx.Done():
				return gctx.Err()
			}
		}
	}

	transform := func(t task) (result, error) {
		plain, err := pipeline.DecryptOne(t.data, ciphers, codec, maxPlainSize)
		if err != nil {
			return result{}, err
		}
		return result{index: t.index, data: plain}, nil
	}

	if err := run(ctx, read, transform, hashingWriter, onProgress); err != nil {
		return [32]byte{}, err
	}

	var sum [32]byte
	hasher.Sum(sum[:0])
	return sum, nil
}

// run wires the three stages together: a reader goroutine (readFn), a pool
// of Workers() goroutines each applying transformFn, and a writer that
// reassembles results in ascending index order onto w. The first error
// from any stage cancels the rest; run returns that error.
func run(ctx context.Context, readFn func(context.Context, chan<- task) error, transformFn func(task) (result, error), w io.Writer, onProgress func(uint64)) error {
	workers := Workers()
	tasks := make(chan task, workers)
	results := make(chan result, workers)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return readFn(gctx, tasks) })
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			for {
				select {
				case t, ok := <-tasks:
					if !ok {
						return nil
					}
					res, err := transformFn(t)
					if err != nil {
						return err
					}
					select {
					case results <- res:
					case <-gctx.Done():
						return gctx.Err()
					}
				case <-gctx.Done():
					return gctx.Err()
				}
			}
		})
	}

	groupErr := make(chan error, 1)
	go func() {
		err := g.Wait()
		close(results)
		groupErr <- err
	}()

	writeErr := writeOrdered(gctx, w, results, onProgress)
	if writeErr != nil {
		cancel()
	}

	if err := <-groupErr; err != nil {
		return err
	}
	return writeErr
}

// writeOrdered is the reorder buffer: it tracks next_expected_index and a
// sparse map of out-of-order arrivals, writing to w only in strictly
// ascending order and releasing buffer entries as they are written.
// onProgress, if non-nil, is called after every write with the cumulative
// byte count written so far.
func writeOrdered(ctx context.Context, w io.Writer, results <-chan result, onProgress func(uint64)) error {
	pending := make(map[int][]byte)
	next := 0
	var written uint64
	for {
		select {
		case res, ok := <-results:
			if !ok {
				return nil
			}
			pending[res.index] = res.data
			for {
				data, have := pending[next]
				if !have {
					break
				}
				if _, err := w.Write(data); err != nil {
					return fmt.Errorf("engine: write output: %w", err)
				}
				written += uint64(len(data))
				if onProgress != nil {
					onProgress(written)
				}
				delete(pending, next)
				next++
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
