// Package corpus reads the tabular record source the index is built from.
package corpus

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	apperrors "github.com/Adithya-Monish-Kumar-K/humor-index/pkg/errors"
)

// Record is one corpus row. It is immutable once loaded.
type Record struct {
	ID             string  `json:"id"`
	Text           string  `json:"text"`
	EmojiPresence  bool    `json:"emoji_presence"`
	HumorType      string  `json:"humor_type"`
	HumorTypeScore float64 `json:"humor_type_score"`
}

const (
	colID             = "id"
	colText           = "text"
	colEmojiPresence  = "emoji_presence"
	colHumorType      = "humor_type"
	colHumorTypeScore = "humor_type_score"
)

var requiredColumns = []string{colID, colText, colEmojiPresence, colHumorType, colHumorTypeScore}

// LoadFile opens path and loads it with Load.
func LoadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening corpus %s: %w", path, err)
	}
	defer f.Close()
	return Load(f)
}

// Load parses a CSV corpus with a header row. Extra columns are ignored and
// column order is free. Every required column must be present; a row whose
// boolean or float field does not parse, or whose id repeats an earlier
// row, fails the whole load with an *apperrors.AppError naming the row and
// column. Row numbers are 1-based and
// count the header.
func Load(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, apperrors.New(apperrors.ErrInvalidInput, "corpus is empty: missing header row")
	}
	if err != nil {
		return nil, apperrors.Newf(apperrors.ErrInvalidInput, "reading corpus header: %v", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}
	var missing []string
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, apperrors.Newf(apperrors.ErrMissingColumn, "corpus is missing required columns: %s", strings.Join(missing, ", "))
	}

	var records []Record
	seen := make(map[string]int)
	row := 1
	for {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		row++
		if err != nil {
			return nil, apperrors.Newf(apperrors.ErrInvalidInput, "malformed csv: %v", err).AtRow(row, "")
		}
		rec, err := parseRow(fields, cols, row)
		if err != nil {
			return nil, err
		}
		if first, dup := seen[rec.ID]; dup {
			return nil, apperrors.Newf(apperrors.ErrInvalidInput, "duplicate id %q, first seen at row %d", rec.ID, first).AtRow(row, colID)
		}
		seen[rec.ID] = row
		records = append(records, rec)
	}
	return records, nil
}

func parseRow(fields []string, cols map[string]int, row int) (Record, error) {
	get := func(name string) string {
		i := cols[name]
		if i >= len(fields) {
			return ""
		}
		return fields[i]
	}

	id := strings.TrimSpace(get(colID))
	if id == "" {
		return Record{}, apperrors.New(apperrors.ErrInvalidInput, "empty id").AtRow(row, colID)
	}
	emoji, err := parseBool(get(colEmojiPresence))
	if err != nil {
		return Record{}, apperrors.Newf(apperrors.ErrInvalidInput, "emoji_presence: %v", err).AtRow(row, colEmojiPresence)
	}
	score, err := parseScore(get(colHumorTypeScore))
	if err != nil {
		return Record{}, apperrors.Newf(apperrors.ErrInvalidInput, "humor_type_score: %v", err).AtRow(row, colHumorTypeScore)
	}
	return Record{
		ID:             id,
		Text:           get(colText),
		EmojiPresence:  emoji,
		HumorType:      strings.TrimSpace(get(colHumorType)),
		HumorTypeScore: score,
	}, nil
}

// parseBool accepts the boolean spellings spreadsheet exports produce.
// An empty cell means false.
func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "t", "yes", "y", "1", "1.0":
		return true, nil
	case "false", "f", "no", "n", "0", "0.0", "":
		return false, nil
	}
	return false, fmt.Errorf("not a boolean: %q", s)
}

// parseScore treats an empty cell as zero. NaN and infinities are rejected
// since they cannot be written to the snapshot.
func parseScore(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("not a finite number: %q", s)
	}
	return v, nil
}
