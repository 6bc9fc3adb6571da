package fileio

import (
	"bufio"
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/AssilKherfi/Retention-Dashboard/errors"
	"github.com/AssilKherfi/Retention-Dashboard/models"
)

// Input formats
const (
	FormatCSV   = "csv"
	FormatJSONL = "jsonl"
	FormatJSON  = "json"
)

// numbers are kept as text so amounts reach decimal parsing unrounded
var jsonAPI = sonic.Config{UseNumber: true}.Froze()

// DetectFormat returns the configured format, or guesses it from the
// file extension when none is configured
func DetectFormat(path, configured string) string {
	if f := strings.ToLower(strings.TrimSpace(configured)); f != "" && f != "auto" {
		return f
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl", ".ndjson":
		return FormatJSONL
	case ".json":
		return FormatJSON
	default:
		return FormatCSV
	}
}

// scanRecords feeds every row of r to fn. Rows that cannot be decoded are
// passed with a non-nil error so the caller can count them.
func scanRecords(r io.Reader, format string, cols columnSet, fn func(rec record, err error)) error {
	switch format {
	case FormatCSV:
		return scanCSV(r, cols, fn)
	case FormatJSONL:
		return scanJSONL(r, cols, fn)
	case FormatJSON:
		return scanJSON(r, cols, fn)
	default:
		return errors.New(errors.ErrorTypeConfig, "fileio.scan", fmt.Sprintf("unsupported format %q", format))
	}
}

func scanCSV(r io.Reader, cols columnSet, fn func(rec record, err error)) error {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return errors.Wrap(errors.ErrorTypeDataFormat, "fileio.csv", err)
	}

	idx := cols.resolve(header)
	if missing := cols.missing(idx); len(missing) > 0 {
		return errors.New(errors.ErrorTypeDataFormat, "fileio.csv",
			fmt.Sprintf("missing required columns: %s", strings.Join(missing, ", ")))
	}

	for {
		row, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		var perr *csv.ParseError
		if stderrors.As(err, &perr) {
			fn(nil, err)
			continue
		}
		if err != nil {
			return errors.Wrap(errors.ErrorTypeSource, "fileio.csv", err)
		}
		if isBlank(row) {
			continue
		}
		fn(cols.fromRow(idx, row), nil)
	}
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func scanJSONL(r io.Reader, cols columnSet, fn func(rec record, err error)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024) // 64KB initial, 1MB max

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}

		var obj map[string]interface{}
		if err := jsonAPI.Unmarshal(line, &obj); err != nil {
			fn(nil, fmt.Errorf("line %d: %w", lineNum, err))
			continue
		}
		fn(cols.fromFields(stringify(obj)), nil)
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrapf(errors.ErrorTypeSource, "fileio.jsonl", err, "scanner error at line %d", lineNum)
	}
	return nil
}

func scanJSON(r io.Reader, cols columnSet, fn func(rec record, err error)) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return errors.Wrap(errors.ErrorTypeSource, "fileio.json", err)
	}
	var objs []map[string]interface{}
	if err := jsonAPI.Unmarshal(data, &objs); err != nil {
		return errors.Wrap(errors.ErrorTypeDataFormat, "fileio.json", err)
	}
	for _, obj := range objs {
		fn(cols.fromFields(stringify(obj)), nil)
	}
	return nil
}

func stringify(obj map[string]interface{}) map[string]string {
	out := make(map[string]string, len(obj))
	for k, v := range obj {
		switch v := v.(type) {
		case nil:
			out[k] = ""
		case string:
			out[k] = v
		default:
			out[k] = fmt.Sprint(v)
		}
	}
	return out
}

// ReadOrders decodes orders from r. Undecodable rows are counted as
// malformed and skipped.
func ReadOrders(r io.Reader, format string, opts ParseOptions) ([]models.Order, LoadStats, error) {
	var (
		orders []models.Order
		stats  LoadStats
	)
	err := scanRecords(r, format, orderColumns, func(rec record, err error) {
		stats.Rows++
		if err != nil {
			stats.Malformed++
			return
		}
		o, err := parseOrder(rec, opts)
		if err != nil {
			stats.Malformed++
			return
		}
		orders = append(orders, o)
	})
	stats.Loaded = len(orders)
	return orders, stats, err
}

// ReadUsers decodes users from r
func ReadUsers(r io.Reader, format string, opts ParseOptions) ([]models.User, LoadStats, error) {
	var (
		users []models.User
		stats LoadStats
	)
	err := scanRecords(r, format, userColumns, func(rec record, err error) {
		stats.Rows++
		if err != nil {
			stats.Malformed++
			return
		}
		u, err := parseUser(rec, opts)
		if err != nil {
			stats.Malformed++
			return
		}
		users = append(users, u)
	})
	stats.Loaded = len(users)
	return users, stats, err
}
