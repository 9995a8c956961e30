// Package report turns a benchmark dataset's gold queries into a
// delimited statistics file, one line per record.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"spiderstat/internal/hardness"
	"spiderstat/internal/spider"
	"spiderstat/internal/summary"
)

// Record is one benchmark instance: the gold query text, the natural
// language question, and the parsed form of the query.
type Record struct {
	Query    string        `json:"query"`
	Question string        `json:"question"`
	SQL      *spider.Query `json:"sql"`
}

// Reporter writes per-dataset statistics files under a dataset_files
// tree rooted at Root.
type Reporter struct {
	Root      string
	Delimiter rune
	Count     hardness.CounterFunc
}

func New(root string, delimiter rune) *Reporter {
	return &Reporter{
		Root:      root,
		Delimiter: delimiter,
		Count:     hardness.CountComplexity,
	}
}

// InputPath returns the dev split file for a dataset. The spider_dk
// release ships its dev split under a different filename than every
// other dataset.
func (r *Reporter) InputPath(dataset string) string {
	filename := "dev.json"
	if dataset == "spider_dk" {
		filename = "spider-DK.json"
	}
	return filepath.Join(r.Root, "dataset_files", "ori_dataset", dataset, filename)
}

// OutputPath returns where Run writes the statistics for a dataset.
func (r *Reporter) OutputPath(dataset string) string {
	return filepath.Join(r.Root, "dataset_files", "statistics", dataset+".txt")
}

// Run reads a dataset's gold queries, classifies and summarizes each
// one, and writes one report line per record in input order. Any read
// or decode failure aborts before output is written.
func (r *Reporter) Run(dataset string) error {
	records, err := r.load(dataset)
	if err != nil {
		return err
	}

	dist := make(map[hardness.Label]int)
	var out strings.Builder
	for _, rec := range records {
		label := hardness.Evaluate(rec.SQL, r.Count)
		dist[label]++
		out.WriteString(r.formatLine(rec, label))
		out.WriteByte('\n')
	}

	outPath := r.OutputPath(dataset)
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("failed to create statistics directory: %w", err)
	}
	if err := os.WriteFile(outPath, []byte(out.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	for _, label := range []hardness.Label{hardness.Easy, hardness.Medium, hardness.Hard, hardness.Extra} {
		logrus.WithFields(logrus.Fields{
			"dataset":  dataset,
			"hardness": label,
			"queries":  dist[label],
		}).Info("hardness distribution")
	}

	fmt.Printf("Wrote result to %s\n", outPath)
	fmt.Println(`Result can be pasted into Google Sheets with Ctrl-V --> click Paste Options at bottom-right --> Split text to columns --> Change separator --> Custom --> Type "|" --> Enter`)
	return nil
}

func (r *Reporter) load(dataset string) ([]Record, error) {
	path := r.InputPath(dataset)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset %s: %w", dataset, err)
	}

	// Decode record by record so a malformed entry is reported with its
	// index instead of a bare offset into the file.
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	records := make([]Record, 0, len(raw))
	for i, entry := range raw {
		var rec Record
		if err := json.Unmarshal(entry, &rec); err != nil {
			return nil, fmt.Errorf("record %d in %s: %w", i, path, err)
		}
		if rec.SQL == nil {
			return nil, fmt.Errorf("record %d in %s: missing sql object", i, path)
		}
		records = append(records, rec)
	}
	return records, nil
}

// formatLine matches the layout the statistics files have always used:
// padded delimiters between the text fields, then the character lengths
// of query and question each prefixed by an unpadded delimiter.
func (r *Reporter) formatLine(rec Record, label hardness.Label) string {
	d := string(r.Delimiter)
	var b strings.Builder
	b.WriteString(rec.Query)
	b.WriteString(" " + d + " ")
	b.WriteString(rec.Question)
	b.WriteString(" " + d + " ")
	b.WriteString(string(label))
	b.WriteString(" " + d + " ")
	b.WriteString(summary.Summarize(rec.SQL, r.Delimiter))
	b.WriteString(" " + d)
	b.WriteString(strconv.Itoa(utf8.RuneCountInString(rec.Query)))
	b.WriteString(" " + d)
	b.WriteString(strconv.Itoa(utf8.RuneCountInString(rec.Question)))
	return b.String()
}
