// Package predictions converts model prediction dumps into plain .sql
// files the evaluation harness can score.
package predictions

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/xwb1989/sqlparser"
)

// separator splits a raw prediction into segments; only the final
// segment is the SQL string.
const separator = "| "

// outputName is the fixed filename written next to the input file.
const outputName = "predictions.sql"

type prediction struct {
	Prediction string `json:"prediction"`
}

// OutputPath returns where Format writes its result for a given input
// file: predictions.sql in the same directory.
func OutputPath(inPath string) string {
	return filepath.Join(filepath.Dir(inPath), outputName)
}

// Extract keeps the final separator-delimited segment of a raw
// prediction. Predictions without a separator pass through unchanged.
func Extract(raw string) string {
	segments := strings.Split(raw, separator)
	return segments[len(segments)-1]
}

// Format reads a JSON prediction dump and writes one SQL query per line
// to predictions.sql in the input file's directory. It returns the
// formatted queries so callers can post-process them. A malformed input
// file aborts with nothing written.
func Format(inPath string) ([]string, error) {
	data, err := os.ReadFile(inPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read predictions: %w", err)
	}
	var preds []prediction
	if err := json.Unmarshal(data, &preds); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", inPath, err)
	}

	queries := make([]string, 0, len(preds))
	var out strings.Builder
	for _, p := range preds {
		q := Extract(p.Prediction)
		queries = append(queries, q)
		out.WriteString(q)
		out.WriteByte('\n')
	}

	outPath := OutputPath(inPath)
	if err := os.WriteFile(outPath, []byte(out.String()), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", outPath, err)
	}
	return queries, nil
}

// Check parses each formatted query and warns about the ones the parser
// rejects, returning how many failed. Models emit syntactically broken
// SQL from time to time; the harness downstream scores those as wrong
// anyway, so Check reports and never fails the run.
func Check(queries []string) int {
	invalid := 0
	for i, q := range queries {
		if _, err := sqlparser.Parse(q); err != nil {
			invalid++
			logrus.WithFields(logrus.Fields{
				"line":  i + 1,
				"query": q,
			}).Warn("prediction does not parse as SQL")
		}
	}
	return invalid
}
