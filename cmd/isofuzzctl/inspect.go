// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// traceEntry is one parsed line of the tab-separated trace format.
type traceEntry struct {
	ThreadID       string
	EffectiveTrxID string
	Op             string
	Table          string
	Column         string
	RowID          string
	WriterID       string
}

func parseTraceLine(line string) (traceEntry, error) {
	fields := strings.Split(line, "\t")
	if len(fields) != 7 {
		return traceEntry{}, errors.Errorf("expected 7 tab-separated fields, got %d", len(fields))
	}
	return traceEntry{
		ThreadID:       fields[0],
		EffectiveTrxID: fields[1],
		Op:             fields[2],
		Table:          fields[3],
		Column:         fields[4],
		RowID:          fields[5],
		WriterID:       fields[6],
	}, nil
}

type trxSummary struct {
	trxID    string
	ops      map[string]int
	tables   map[string]struct{}
	promoted bool
}

// RunInspectCommand reads a trace file and prints a per-transaction summary:
// op counts and tables touched, grouped by effective_trx_id. Malformed
// lines are skipped with a warning rather than aborting the whole report,
// since the trace file is an append-only best-effort sink (spec §7), so a
// truncated final line from a crash is expected, not exceptional.
func RunInspectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <trace-file>",
		Short: "Summarize a trace file by transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return errors.Wrap(err, "open trace file")
			}
			defer f.Close()

			summaries := map[string]*trxSummary{}
			order := []string{}

			scanner := bufio.NewScanner(f)
			lineNo := 0
			for scanner.Scan() {
				lineNo++
				line := scanner.Text()
				if line == "" {
					continue
				}
				entry, err := parseTraceLine(line)
				if err != nil {
					cmd.PrintErrf("inspect: skipping malformed line %d: %v\n", lineNo, err)
					continue
				}

				s, ok := summaries[entry.EffectiveTrxID]
				if !ok {
					s = &trxSummary{trxID: entry.EffectiveTrxID, ops: map[string]int{}, tables: map[string]struct{}{}}
					summaries[entry.EffectiveTrxID] = s
					order = append(order, entry.EffectiveTrxID)
				}
				s.ops[entry.Op]++
				if entry.Table != "N/A" {
					s.tables[entry.Table] = struct{}{}
				}
				if entry.Op == "PROMOTE" {
					s.promoted = true
				}
			}
			if err := scanner.Err(); err != nil {
				return errors.Wrap(err, "read trace file")
			}

			sort.Strings(order)
			for _, id := range order {
				s := summaries[id]
				tables := make([]string, 0, len(s.tables))
				for t := range s.tables {
					tables = append(tables, t)
				}
				sort.Strings(tables)

				ops := make([]string, 0, len(s.ops))
				for op, n := range s.ops {
					ops = append(ops, fmt.Sprintf("%s=%d", op, n))
				}
				sort.Strings(ops)

				promoted := ""
				if s.promoted {
					promoted = " (promoted)"
				}
				cmd.Printf("trx %s%s: %s | tables: %s\n", id, promoted, strings.Join(ops, " "), strings.Join(tables, ","))
			}
			cmd.Printf("%d transactions, %d lines\n", len(order), lineNo)
			return nil
		},
	}
	return cmd
}
