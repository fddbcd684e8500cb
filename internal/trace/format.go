// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package trace assembles and serializes the tab-separated execution trace
// consumed by an external verifier. Line format:
//
//	<thread_id>\t<effective_trx_id>\t<op_name>\t<table>\t<column>\t<row_id>\t<writer_id>
//
// table/column/row_id are the literal "N/A" when no object is supplied.
package trace

import (
	"strconv"
	"strings"

	"github.com/KamiliArsyad/libisofuzz/pkg/internstr"
)

// OpName enumerates the op_name field of a trace line.
type OpName string

const (
	OpRead    OpName = "READ"
	OpUpdate  OpName = "UPDATE"
	OpInsert  OpName = "INSERT"
	OpDelete  OpName = "DELETE"
	OpPromote OpName = "PROMOTE"
	OpBegin   OpName = "BEGIN"
	OpCommit  OpName = "COMMIT"
	OpUnknown OpName = "UNKNOWN"
)

// na is the placeholder for an absent object field.
const na = "N/A"

// fieldSanitizer strips characters that would corrupt the tab-separated
// format if they leaked in from a caller-supplied table/column/thread name.
var fieldSanitizer = strings.NewReplacer("\t", " ", "\n", " ", "\r", " ")

// Object describes the row a READ/UPDATE/INSERT/DELETE touched. A zero value
// (Table == "") means "no object", rendered as N/A in every field.
type Object struct {
	Table  string
	Column string
	RowID  uint64
	HasRow bool
}

// Record is one fully-resolved trace line, ready to serialize.
type Record struct {
	ThreadID         string
	EffectiveTrxID   uint64
	Op               OpName
	Object           Object
	WriterOrOldLibID uint64
}

// Line renders the record as the single tab-separated line (without a
// trailing newline; the sink appends that).
func (r Record) Line() string {
	table, column, row := na, na, na
	if r.Object.Table != "" {
		table = internstr.Intern(fieldSanitizer.Replace(r.Object.Table))
		column = internstr.InternOrNA(fieldSanitizer.Replace(r.Object.Column))
		if r.Object.HasRow {
			row = strconv.FormatUint(r.Object.RowID, 10)
		}
	}

	var b strings.Builder
	b.Grow(64)
	b.WriteString(fieldSanitizer.Replace(r.ThreadID))
	b.WriteByte('\t')
	b.WriteString(strconv.FormatUint(r.EffectiveTrxID, 10))
	b.WriteByte('\t')
	b.WriteString(string(r.Op))
	b.WriteByte('\t')
	b.WriteString(table)
	b.WriteByte('\t')
	b.WriteString(column)
	b.WriteByte('\t')
	b.WriteString(row)
	b.WriteByte('\t')
	b.WriteString(strconv.FormatUint(r.WriterOrOldLibID, 10))
	return b.String()
}
