// Package config loads the small manifest cmd/cursedvm reads before
// assembling and running a program: which object files to link, how
// many cycles to allow, and how verbose the trace sink should be.
package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Manifest struct {
	Entry      string   // path to the assembly source to assemble and run
	Objects    []string // additional object files to link in, in order, after Entry's
	CycleLimit int64    // 0 means unlimited
	Trace      bool     // enable per-instruction debug tracing
}

func LoadManifest(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m := &Manifest{}
	sc := bufio.NewScanner(f)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}

		parts := strings.SplitN(s, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("%s:%d: invalid line", path, lineNo)
		}
		key := strings.TrimSpace(parts[0])
		val := strings.TrimSpace(parts[1])

		switch key {
		case "entry":
			s, err := unquote(val)
			if err != nil {
				return nil, fmt.Errorf("%s:%d: %w", path, lineNo, err)
			}
			m.Entry = s
		case "object":
			s, err := unquote(val)
			if err != nil {
				return nil, fmt.Errorf("%s:%d: %w", path, lineNo, err)
			}
			m.Objects = append(m.Objects, s)
		case "cycle_limit":
			n, err := strconv.ParseInt(val, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%s:%d: cycle_limit must be an integer", path, lineNo)
			}
			m.CycleLimit = n
		case "trace":
			m.Trace = val == "true"
		default:
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return m, nil
}

func unquote(val string) (string, error) {
	if len(val) < 2 || val[0] != '"' || val[len(val)-1] != '"' {
		return "", fmt.Errorf("value must be a quoted string")
	}
	return val[1 : len(val)-1], nil
}
