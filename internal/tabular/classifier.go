package tabular

import (
	"bufio"
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/agentstation/panmap/pkg/constants"
	"github.com/agentstation/panmap/pkg/errors"
	"github.com/agentstation/panmap/pkg/logging"
	"github.com/agentstation/panmap/pkg/taxa"
)

// Classifier output columns (tab-separated, no header).
const (
	colRead         = 0
	colGenus        = 4
	colGenusScore   = 5
	colSpecies      = 6
	colSpeciesScore = 7
	minColumns      = 8
)

// cancelCheckInterval is how many lines are read between context checks.
const cancelCheckInterval = 4096

// ClassifierStats describes one pass over a classifier file.
type ClassifierStats struct {
	Lines     int64 `json:"lines" yaml:"lines"`
	Records   int64 `json:"records" yaml:"records"`
	Malformed int64 `json:"malformed" yaml:"malformed"`
}

// ReadClassifications streams classifier output, calling fn once per
// well-formed line. Lines with too few columns or an unparsable score are
// skipped and counted. An error from fn stops the read and is returned.
func ReadClassifications(ctx context.Context, r io.Reader, fn func(taxa.Record) error) (ClassifierStats, error) {
	logger := logging.FromContext(ctx)

	var stats ClassifierStats
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), constants.ScannerBufferSize)

	for scanner.Scan() {
		stats.Lines++
		if stats.Lines%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return stats, err
			}
		}

		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		record, err := parseClassification(line)
		if err != nil {
			stats.Malformed++
			logger.Debug().
				Int64("line", stats.Lines).
				Err(err).
				Msg("Skipping malformed classifier line")
			continue
		}

		stats.Records++
		if err := fn(record); err != nil {
			return stats, err
		}
	}
	if err := scanner.Err(); err != nil {
		return stats, &errors.ParseError{
			Format:  "tsv",
			Line:    int(stats.Lines) + 1,
			Message: err.Error(),
			Err:     err,
		}
	}
	return stats, nil
}

// ReadClassificationsFile reads classifier output from path, which may be
// gzip-compressed.
func ReadClassificationsFile(ctx context.Context, path string, fn func(taxa.Record) error) (ClassifierStats, error) {
	f, err := Open(path)
	if err != nil {
		return ClassifierStats{}, err
	}
	defer func() { _ = f.Close() }()

	stats, err := ReadClassifications(ctx, f, fn)
	if err != nil {
		var pe *errors.ParseError
		if errors.As(err, &pe) {
			pe.File = path
		}
	}
	return stats, err
}

func parseClassification(line string) (taxa.Record, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < minColumns {
		return taxa.Record{}, errors.New("too few columns")
	}

	genus, err := parseAssignment(fields[colGenus], fields[colGenusScore])
	if err != nil {
		return taxa.Record{}, err
	}
	species, err := parseAssignment(fields[colSpecies], fields[colSpeciesScore])
	if err != nil {
		return taxa.Record{}, err
	}

	return taxa.Record{
		Read:    fields[colRead],
		Species: species,
		Genus:   genus,
	}, nil
}

func parseAssignment(label, score string) (taxa.Assignment, error) {
	label = strings.TrimSpace(label)
	conf, err := strconv.ParseFloat(strings.TrimSpace(score), 64)
	if err != nil {
		return taxa.Assignment{}, errors.WrapValidation("score", err)
	}
	return taxa.Assignment{
		Taxon:      label,
		Confidence: conf,
		Ambiguous:  label == constants.AmbiguousLabel,
	}, nil
}
