// Package orchestrator drives the top-level encrypt/decrypt operations: it
// validates inputs, derives keys, writes or reads the container header, runs
// the streaming engine, verifies the content hash, and enforces the output
// file's exclusive-create / ".incomplete" / atomic-rename discipline. This
// is the one package that touches the filesystem directly for the core
// (as opposed to CLI) surface.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hambosto/sweetbyte/internal/aead"
	"github.com/hambosto/sweetbyte/internal/engine"
	"github.com/hambosto/sweetbyte/internal/header"
	"github.com/hambosto/sweetbyte/internal/ioutil"
	"github.com/hambosto/sweetbyte/internal/kdf"
	"github.com/hambosto/sweetbyte/internal/log"
	"github.com/hambosto/sweetbyte/internal/rscodec"
	"github.com/hambosto/sweetbyte/internal/util"
	"github.com/hambosto/sweetbyte/internal/xerrors"
)

// chunkErr classifies an error from the streaming engine: authentication
// failures collapse into a CryptoError (indistinguishable from a header MAC
// mismatch, per the taxonomy's hiding requirement); every other failure
// (RS-unrecoverable, padding, decompression) is passed through with context
// so it stays diagnosable without leaking into the auth-failure category.
func chunkErr(err error) error {
	if errors.Is(err, aead.ErrAuthFailed) {
		return xerrors.NewCryptoError("chunk", err)
	}
	return fmt.Errorf("orchestrator: chunk: %w", err)
}

// Reporter provides progress callbacks for long-running operations.
// Implementations must be safe for concurrent use; methods may be called
// from the engine's internal goroutines as well as this package.
type Reporter interface {
	SetStatus(text string)         // human-readable phase, e.g. "Deriving key..."
	SetProgress(done, total int64) // cumulative bytes processed and the expected total
	SetCanCancel(can bool)         // whether Cancel is currently meaningful
	Update()                       // ask the reporter to redraw
	IsCancelled() bool             // polled to abort between phases
}

// Options carries the tunable parameters for an operation. The zero value
// is not meaningful; use DefaultOptions.
type Options struct {
	// KDFParams overrides the Argon2id cost parameters recorded in the
	// header. DefaultOptions uses kdf.DefaultParams().
	KDFParams kdf.Params
}

// DefaultOptions returns the parameter set this container version always
// writes unless a caller explicitly overrides it (e.g. in tests).
func DefaultOptions() Options {
	return Options{KDFParams: kdf.DefaultParams()}
}

// EncryptRequest names everything needed to encrypt one file into a .swx
// container.
type EncryptRequest struct {
	InputPath  string
	OutputPath string
	Password   string
	Reporter   Reporter
	Options    Options
}

// DecryptRequest names everything needed to decrypt one .swx container
// back to plaintext.
type DecryptRequest struct {
	InputPath  string
	OutputPath string
	Password   string
	Reporter   Reporter
	Options    Options
}

// opState holds the mutable, secret-bearing state of one operation so it
// can be zeroed from a single defer regardless of which phase fails.
type opState struct {
	reporter Reporter
	keys     *kdf.Keys
	out      *os.File
}

func (s *opState) status(text string) {
	if s.reporter != nil {
		s.reporter.SetStatus(text)
		s.reporter.Update()
	}
}

func (s *opState) progress(done, total int64) {
	if s.reporter != nil {
		s.reporter.SetProgress(done, total)
		s.reporter.Update()
	}
}

// close zeros key material and, if the output file is still open (an error
// path reached before Finalize), discards the partial ".incomplete" file.
// Per spec, decrypted or encrypted partial output must never be presented
// as valid, so this is unconditional: there is no force-keep escape hatch.
func (s *opState) close() {
	s.keys.Close()
	if s.out != nil {
		ioutil.DiscardOutput(s.out)
		s.out = nil
	}
}

// cancelContext derives a context that is also cancelled when the reporter
// reports IsCancelled(), so a user-requested cancel reaches the engine's
// reader/worker/writer stages the same way a stage error would.
func cancelContext(parent context.Context, reporter Reporter) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	if reporter == nil {
		return ctx, cancel
	}
	reporter.SetCanCancel(true)
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if reporter.IsCancelled() {
					cancel()
					return
				}
			case <-done:
				return
			}
		}
	}()
	return ctx, func() {
		close(done)
		cancel()
	}
}

// Encrypt reads req.InputPath, encrypts it under req.Password, and writes a
// .swx container to req.OutputPath. On any failure the partial output is
// removed and no file is left at OutputPath.
func Encrypt(ctx context.Context, req *EncryptRequest) error {
	logger := log.GetLogger().WithFields(log.String("op", "encrypt"), log.String("input", req.InputPath))
	logger.Debug("starting encrypt")

	if len(req.Password) < kdf.PasswordMinimumSize {
		return xerrors.ErrPasswordTooShort
	}
	exists, err := ioutil.Exists(req.OutputPath)
	if err != nil {
		return err
	}
	if exists {
		return xerrors.ErrOutputExists
	}

	in, err := os.Open(req.InputPath)
	if err != nil {
		logger.Error("open input failed", log.Err(err))
		return xerrors.NewIOError("open input", req.InputPath, err)
	}
	defer in.Close()

	inInfo, err := in.Stat()
	if err != nil {
		return xerrors.NewIOError("stat input", req.InputPath, err)
	}
	inputSize := inInfo.Size()

	state := &opState{reporter: req.Reporter}
	defer state.close()

	ctx, cancel := cancelContext(ctx, req.Reporter)
	defer cancel()

	state.status("Deriving key...")
	salt, err := kdf.RandomSalt()
	if err != nil {
		return err
	}
	keys, err := kdf.Derive([]byte(req.Password), salt, req.Options.KDFParams)
	if err != nil {
		logger.Error("key derivation failed", log.Err(err))
		return xerrors.NewCryptoError("kdf", err)
	}
	state.keys = keys

	ciphers, err := aead.NewPair(keys.Cipher())
	if err != nil {
		return xerrors.NewCryptoError("aead init", err)
	}
	codec, err := rscodec.New()
	if err != nil {
		return fmt.Errorf("orchestrator: build rs codec: %w", err)
	}

	incomplete := req.OutputPath + ioutil.IncompleteSuffix
	out, err := ioutil.CreateExclusive(incomplete)
	if err != nil {
		return err
	}
	state.out = out

	params := header.DefaultParams()
	params.KDFMemoryKiB = req.Options.KDFParams.MemoryKiB
	params.KDFTime = req.Options.KDFParams.Time
	params.KDFParallelism = req.Options.KDFParams.Parallelism

	name := filepath.Base(req.InputPath)

	// The header is written twice: once as a placeholder (content hash and
	// size are unknown until the stream has been read) so the container has
	// a valid, correctly-sized header to encrypt chunks after, then again
	// in place once the engine reports the final hash and size. The two
	// writes are byte-for-byte the same length because only the *values* of
	// the fixed-width fields (the 32-byte content hash and the u64 original
	// size), never their sizes, change between them.
	state.status("Writing header...")
	placeholder := header.Metadata{Filename: name}
	if err := header.Write(out, codec, salt, params, placeholder, keys.MAC()); err != nil {
		return xerrors.NewHeaderError("write", err)
	}

	state.status("Encrypting...")
	onProgress := func(done uint64) { state.progress(int64(done), inputSize) }
	hash, total, err := engine.Encrypt(ctx, in, out, ciphers, codec, onProgress)
	if err != nil {
		if ctx.Err() != nil {
			logger.Info("encrypt cancelled")
			return xerrors.ErrCancelled
		}
		logger.Error("stream encrypt failed", log.Err(err))
		return chunkErr(err)
	}

	if _, err := out.Seek(0, 0); err != nil {
		return xerrors.NewIOError("seek", incomplete, err)
	}
	final := header.Metadata{Filename: name, OriginalSize: total, ContentHash: hash}
	if err := header.Write(out, codec, salt, params, final, keys.MAC()); err != nil {
		return xerrors.NewHeaderError("rewrite", err)
	}

	state.status("Finalizing...")
	if err := ioutil.FinalizeOutput(out, req.OutputPath); err != nil {
		return err
	}
	state.out = nil // FinalizeOutput already closed it; don't discard on defer

	logger.Info("encrypt complete", log.Int64("bytes", int64(total)))
	state.progress(int64(total), int64(total))
	return nil
}

// Decrypt reads req.InputPath as a .swx container, verifies its header and
// content hash, and writes the recovered plaintext to req.OutputPath. On
// any failure — including a content hash mismatch discovered only after
// every chunk has decrypted successfully — the partial output is removed.
func Decrypt(ctx context.Context, req *DecryptRequest) error {
	logger := log.GetLogger().WithFields(log.String("op", "decrypt"), log.String("input", req.InputPath))
	logger.Debug("starting decrypt")

	exists, err := ioutil.Exists(req.OutputPath)
	if err != nil {
		return err
	}
	if exists {
		return xerrors.ErrOutputExists
	}

	in, err := os.Open(req.InputPath)
	if err != nil {
		logger.Error("open input failed", log.Err(err))
		return xerrors.NewIOError("open input", req.InputPath, err)
	}
	defer in.Close()

	codec, err := rscodec.New()
	if err != nil {
		return fmt.Errorf("orchestrator: build rs codec: %w", err)
	}

	state := &opState{reporter: req.Reporter}
	defer state.close()

	ctx, cancel := cancelContext(ctx, req.Reporter)
	defer cancel()

	state.status("Reading header...")
	parsed, err := header.Read(in, codec)
	if err != nil {
		logger.Error("header read failed", log.Err(err))
		return xerrors.NewHeaderError("read", err)
	}

	if len(req.Password) < kdf.PasswordMinimumSize {
		return xerrors.ErrPasswordTooShort
	}

	state.status("Deriving key...")
	params := kdf.Params{
		MemoryKiB:   parsed.Params.KDFMemoryKiB,
		Time:        parsed.Params.KDFTime,
		Parallelism: parsed.Params.KDFParallelism,
	}
	keys, err := kdf.Derive([]byte(req.Password), parsed.Salt, params)
	if err != nil {
		return xerrors.NewCryptoError("kdf", err)
	}
	state.keys = keys

	if err := parsed.VerifyMAC(keys.MAC()); err != nil {
		logger.Error("header mac verification failed")
		return xerrors.NewCryptoError("header mac", err)
	}

	ciphers, err := aead.NewPair(keys.Cipher())
	if err != nil {
		return xerrors.NewCryptoError("aead init", err)
	}

	incomplete := req.OutputPath + ioutil.IncompleteSuffix
	out, err := ioutil.CreateExclusive(incomplete)
	if err != nil {
		return err
	}
	state.out = out

	state.status("Decrypting...")
	originalSize := int64(parsed.Metadata.OriginalSize)
	onProgress := func(done uint64) { state.progress(int64(done), originalSize) }
	hash, err := engine.Decrypt(ctx, in, out, ciphers, codec, util.ChunkSize, onProgress)
	if err != nil {
		if ctx.Err() != nil {
			logger.Info("decrypt cancelled")
			return xerrors.ErrCancelled
		}
		logger.Error("stream decrypt failed", log.Err(err))
		return chunkErr(err)
	}

	if hash != parsed.Metadata.ContentHash {
		logger.Error("content hash mismatch")
		return xerrors.ErrContentHashMismatch
	}

	state.status("Finalizing...")
	if err := ioutil.FinalizeOutput(out, req.OutputPath); err != nil {
		return err
	}
	state.out = nil

	logger.Info("decrypt complete", log.Int64("bytes", int64(parsed.Metadata.OriginalSize)))
	state.progress(originalSize, originalSize)
	return nil
}
