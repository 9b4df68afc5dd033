package config

import (
	"errors"
	"strconv"
	"strings"

	"github.com/ConanSherry4869/voltage-control/infra/logger"
)

// csvParser parses the historical flat key,value configuration format into
// the same nested group layout the JSON/YAML files use, so the rest of the
// loader treats both formats identically. Blank lines and lines starting
// with '#' are skipped; unknown keys and malformed lines are warned about
// and skipped, never fatal.
type csvParser struct {
	log logger.Logger
}

func newCSVParser(log logger.Logger) csvParser {
	return csvParser{log: log}
}

// Unmarshal implements koanf.Parser.
func (p csvParser) Unmarshal(b []byte) (map[string]interface{}, error) {
	out := make(map[string]interface{})
	for i, line := range strings.Split(string(b), "\n") {
		lineNum := i + 1
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		parts := strings.Split(trimmed, ",")
		if len(parts) < 2 {
			p.log.Warnf("line %d: malformed entry %q", lineNum, trimmed)
			continue
		}
		key := strings.TrimSpace(parts[0])
		group, known := fieldGroups[key]
		if !known {
			p.log.Warnf("line %d: unknown configuration key %q", lineNum, key)
			continue
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			p.log.Warnf("line %d: bad value for %s: %v", lineNum, key, err)
			continue
		}
		sub, ok := out[group].(map[string]interface{})
		if !ok {
			sub = make(map[string]interface{})
			out[group] = sub
		}
		sub[key] = value
	}
	return out, nil
}

// Marshal implements koanf.Parser. The CSV format is read-only.
func (csvParser) Marshal(map[string]interface{}) ([]byte, error) {
	return nil, errors.New("csv config marshalling not supported")
}
