// Package retrieval fetches paired read files for sequencing accessions
// from the European Nucleotide Archive into a blob store.
//
// Each accession resolves to exactly two files, stored under
// "<accession>_1.fastq.gz" and "<accession>_2.fastq.gz". A file is tried a
// bounded number of times; when every attempt fails the accession is
// abandoned with an error matching errors.ErrRetrievalExhausted.
package retrieval

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/panmap/internal/blob"
	"github.com/agentstation/panmap/internal/cache"
	"github.com/agentstation/panmap/internal/metrics"
	"github.com/agentstation/panmap/internal/transport"
	"github.com/agentstation/panmap/pkg/constants"
	"github.com/agentstation/panmap/pkg/errors"
	"github.com/agentstation/panmap/pkg/logging"
)

// Pair is the stored forward and reverse read files of one accession.
type Pair struct {
	Accession string    `json:"accession" yaml:"accession"`
	Forward   blob.Info `json:"forward" yaml:"forward"`
	Reverse   blob.Info `json:"reverse" yaml:"reverse"`
}

// Fetcher downloads read files into a blob store.
type Fetcher struct {
	store      blob.Store
	client     *transport.Client
	ownsClient bool
	lookups    *cache.Cache[[]string]
	opts       *options
}

// New creates a Fetcher that stores files in store.
func New(store blob.Store, opts ...Option) (*Fetcher, error) {
	if store == nil {
		return nil, &errors.ValidationError{Field: "store", Message: "cannot be nil"}
	}
	o, err := defaultOptions().apply(opts...)
	if err != nil {
		return nil, err
	}

	f := &Fetcher{
		store:   store,
		client:  o.client,
		lookups: cache.New[[]string](constants.CacheTTL, constants.CacheCleanupInterval),
		opts:    o,
	}
	if f.client == nil {
		f.client = transport.New()
		f.ownsClient = true
	}
	return f, nil
}

// Close releases idle connections held by a client the Fetcher created.
func (f *Fetcher) Close() {
	if f.ownsClient {
		f.client.CloseIdleConnections()
	}
	f.lookups.Clear()
}

// Key returns the blob key of an accession's nth read file (1 or 2).
func Key(accession string, n int) string {
	return fmt.Sprintf("%s_%d.fastq.gz", accession, n)
}

// Locate returns the two read-file URLs reported for accession.
func (f *Fetcher) Locate(ctx context.Context, accession string) ([]string, error) {
	accession = strings.TrimSpace(accession)
	if accession == "" {
		return nil, &errors.ValidationError{Field: "accession", Message: "cannot be empty"}
	}
	if links, ok := f.lookups.Get(accession); ok {
		return links, nil
	}
	if logging.FromContext(ctx) == logging.Default() {
		ctx = f.scoped(ctx, accession)
	}

	var links []string
	attempts, err := f.retry(ctx, "file report", f.opts.recorder.ObserveLookup, func(ctx context.Context) error {
		var err error
		links, err = f.fileReport(ctx, accession)
		return err
	})
	if err != nil {
		if transient(err) && !errors.IsCanceled(err) {
			f.opts.recorder.ObserveLookup(metrics.DownloadFailure)
			return nil, errors.NewRetrievalError(accession, "file report", attempts, err)
		}
		return nil, err
	}

	f.opts.recorder.ObserveLookup(metrics.DownloadSuccess)
	f.lookups.Set(accession, links)
	return links, nil
}

func (f *Fetcher) fileReport(ctx context.Context, accession string) ([]string, error) {
	q := url.Values{}
	q.Set("accession", accession)
	q.Set("result", "read_run")
	q.Set("fields", constants.ReadFileFields)

	ctx, cancel := context.WithTimeout(ctx, constants.DefaultHTTPTimeout)
	defer cancel()

	resp, err := f.client.Get(ctx, f.opts.endpoint+"?"+q.Encode())
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	return parseFileReport(resp.Body, accession, f.opts.scheme)
}

// parseFileReport reads the first data row of a file report:
// "<run>\t<link>;<link>".
func parseFileReport(r io.Reader, accession, scheme string) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), constants.ScannerBufferSize)

	line := 0
	for scanner.Scan() {
		line++
		if line == 1 {
			continue
		}
		text := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}
		fields := strings.Split(text, "\t")
		if len(fields) < 2 || strings.TrimSpace(fields[len(fields)-1]) == "" {
			return nil, errors.NewNotFoundError("read files for accession", accession)
		}

		var links []string
		for _, l := range strings.Split(fields[len(fields)-1], ";") {
			if l = strings.TrimSpace(l); l != "" {
				links = append(links, withScheme(l, scheme))
			}
		}
		if len(links) != 2 {
			return nil, &errors.ValidationError{
				Field:   "fastq_ftp",
				Value:   links,
				Message: fmt.Sprintf("accession %s reports %d read files, want 2 (paired)", accession, len(links)),
			}
		}
		return links, nil
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.WrapParse("tsv", "file report", err)
	}
	return nil, errors.NewNotFoundError("accession", accession)
}

func withScheme(link, scheme string) string {
	if strings.Contains(link, "://") {
		return link
	}
	return scheme + "://" + link
}

// Fetch stores both read files of accession and returns their handles.
func (f *Fetcher) Fetch(ctx context.Context, accession string) (Pair, error) {
	accession = strings.TrimSpace(accession)
	ctx = f.scoped(ctx, accession)
	logger := f.loggerFor(ctx)

	links, err := f.Locate(ctx, accession)
	if err != nil {
		return Pair{}, err
	}

	pair := Pair{Accession: accession}
	for i, link := range links {
		info, err := f.fetchFile(ctx, accession, link, Key(accession, i+1))
		if err != nil {
			return Pair{}, err
		}
		if i == 0 {
			pair.Forward = info
		} else {
			pair.Reverse = info
		}
	}

	logger.Info().
		Str("forward", pair.Forward.Key).
		Str("reverse", pair.Reverse.Key).
		Int64("bytes", pair.Forward.Size+pair.Reverse.Size).
		Msg("Fetched read pair")
	return pair, nil
}

// FetchManifest fetches every accession in order and stops at the first
// failure, returning the pairs fetched before it.
func (f *Fetcher) FetchManifest(ctx context.Context, accessions []string) ([]Pair, error) {
	pairs := make([]Pair, 0, len(accessions))
	for _, acc := range accessions {
		pair, err := f.Fetch(ctx, acc)
		if err != nil {
			return pairs, err
		}
		pairs = append(pairs, pair)
	}
	return pairs, nil
}

func (f *Fetcher) fetchFile(ctx context.Context, accession, link, key string) (blob.Info, error) {
	logger := f.loggerFor(ctx)

	if !f.opts.force {
		info, err := f.store.Head(ctx, key)
		if err == nil {
			f.opts.recorder.ObserveDownload(metrics.DownloadSkipped, 0)
			logger.Debug().Str("key", key).Msg("Read file already stored, skipping")
			return info, nil
		}
		if !errors.IsNotFound(err) {
			return blob.Info{}, errors.WrapResource("head", "blob", key, err)
		}
	}

	var staged string
	observeRetry := func(outcome string) { f.opts.recorder.ObserveDownload(outcome, 0) }
	attempts, err := f.retry(ctx, key, observeRetry, func(ctx context.Context) error {
		path, err := f.download(ctx, link)
		if err != nil {
			return err
		}
		staged = path
		return nil
	})
	if err != nil {
		if errors.IsCanceled(err) {
			return blob.Info{}, err
		}
		f.opts.recorder.ObserveDownload(metrics.DownloadFailure, 0)
		return blob.Info{}, errors.NewRetrievalError(accession, key, attempts, err)
	}
	defer func() { _ = os.Remove(staged) }()

	file, err := os.Open(staged)
	if err != nil {
		return blob.Info{}, errors.WrapIO("open", staged, err)
	}
	defer func() { _ = file.Close() }()

	info, err := f.store.Put(ctx, key, file, blob.PutOptions{
		ContentType: "application/gzip",
		Metadata: map[string]string{
			"accession": accession,
			"source":    link,
		},
	})
	if err != nil {
		return blob.Info{}, errors.WrapResource("put", "blob", key, err)
	}
	f.opts.recorder.ObserveDownload(metrics.DownloadSuccess, info.Size)
	return info, nil
}

// download stages link in a temporary file and returns its path.
func (f *Fetcher) download(ctx context.Context, link string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DownloadTimeout)
	defer cancel()

	resp, err := f.client.Get(ctx, link)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	tmp, err := os.CreateTemp(f.opts.tempDir, "panmap-fetch-*")
	if err != nil {
		return "", errors.WrapIO("create", f.opts.tempDir, err)
	}
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}

// retry runs fn until it succeeds, the attempts run out, or the failure is
// not transient. observe is told of every failed transient attempt. It
// returns the number of attempts made.
func (f *Fetcher) retry(ctx context.Context, what string, observe func(outcome string), fn func(context.Context) error) (int, error) {
	logger := f.loggerFor(ctx)

	var err error
	for attempt := 1; attempt <= f.opts.attempts; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return attempt - 1, fmt.Errorf("%w: %w", errors.ErrCanceled, ctxErr)
		}
		if err = fn(ctx); err == nil {
			return attempt, nil
		}
		if !transient(err) {
			return attempt, err
		}
		if ctx.Err() != nil {
			return attempt, fmt.Errorf("%w: %w", errors.ErrCanceled, ctx.Err())
		}

		observe(metrics.DownloadRetry)
		if attempt == f.opts.attempts {
			break
		}
		wait := f.backoff(attempt)
		logger.Warn().
			Err(err).
			Str("target", what).
			Int("attempt", attempt).
			Int("max_attempts", f.opts.attempts).
			Dur("backoff", wait).
			Msg("Attempt failed, retrying")
		if err := sleep(ctx, wait); err != nil {
			return attempt, fmt.Errorf("%w: %w", errors.ErrCanceled, err)
		}
	}
	return f.opts.attempts, err
}

func (f *Fetcher) backoff(attempt int) time.Duration {
	wait := f.opts.backoff
	for range attempt - 1 {
		wait *= 2
		if wait >= f.opts.maxBackoff {
			return f.opts.maxBackoff
		}
	}
	return min(wait, f.opts.maxBackoff)
}

// transient reports whether err may succeed on another attempt.
func transient(err error) bool {
	return !errors.IsNotFound(err) && !errors.IsValidationError(err)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// scoped returns ctx carrying the fetcher's logger tagged with accession.
func (f *Fetcher) scoped(ctx context.Context, accession string) context.Context {
	logger := f.loggerFor(ctx).With().Str("accession", accession).Logger()
	return logging.WithLogger(ctx, &logger)
}

func (f *Fetcher) loggerFor(ctx context.Context) *zerolog.Logger {
	if l := logging.FromContext(ctx); l != logging.Default() {
		return l
	}
	return f.opts.logger
}
