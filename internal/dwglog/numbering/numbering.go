// Package numbering implements the drawing-number rules of the log: the
// mapping between the internal sequence index and the user-facing drawing
// number, next-number generation, and part-number synchronization.
package numbering

import (
	"strconv"
	"strings"
)

// IndexToNumber derives the display drawing number from a sequence index.
// The digits after the 4-digit year are stripped of leading zeros and
// re-padded to a minimum of 3, e.g. 202100055 -> "2021055".  Suffixes of
// 1000 and above stay as-is, so the index has more headroom than the
// display number for a given year.
func IndexToNumber(index int64) string {
	s := strconv.FormatInt(index, 10)
	if len(s) <= 4 {
		return s
	}
	return s[:4] + padSuffix(s[4:])
}

// NumberToIndex synthesizes the sequence index encoded by a drawing
// number: zeros are spliced between the year and the suffix so the result
// is 9 digits wide for the common 7- and 8-digit numbers.  Only meaningful
// for all-digit numbers of length >= 7.
func NumberToIndex(number string) int64 {
	zeros := 9 % len(number)
	ix, _ := strconv.ParseInt(number[:4]+strings.Repeat("0", zeros)+number[4:], 10, 64)
	return ix
}

// GenerateNext produces the next drawing number and sequence index for a
// new record, plus the (possibly autofilled) part number.
//
// indexes are recently assigned sequence indexes; only those belonging to
// year are considered.  When none exist this is the first record of the
// year and the number seeds at year*1000 + 1.  A partNo that is a bare
// 4-digit prefix ("0300") or a dash-terminated prefix ("0300-") is
// completed to the synchronized form prefix-year-suffix.
func GenerateNext(indexes []int64, partNo string, year int) (string, string, int64) {
	yearPrefix := strconv.Itoa(year)
	var largest int64
	for _, ix := range indexes {
		s := strconv.FormatInt(ix, 10)
		if len(s) > 4 && s[:4] == yearPrefix && ix > largest {
			largest = ix
		}
	}

	var dwg string
	var newIndex int64
	if largest > 0 {
		newIndex = largest + 1
		dwg = IndexToNumber(newIndex)
	} else {
		dwg = strconv.Itoa(year*1000 + 1)
		newIndex = NumberToIndex(dwg)
	}

	if isPartPrefix(partNo) {
		partNo = partNo[:4] + "-" + yearPrefix + "-" + dwg[4:]
	}
	return dwg, partNo, newIndex
}

// Synchronized reports whether part encodes the drawing number derived
// from index, i.e. has the form prefix-year-suffix with year and suffix
// matching IndexToNumber(index).  The leading prefix is not checked.
func Synchronized(part string, index int64) bool {
	dg := IndexToNumber(index)
	segs := strings.Split(part, "-")
	if len(segs) != 3 || len(dg) < 7 {
		return false
	}
	for _, seg := range segs {
		if seg == "" {
			return false
		}
	}
	return segs[1] == dg[:4] && segs[2] == dg[4:]
}

// SyncPart refreshes a synchronized part number against a new sequence
// index.  A part number not synchronized with oldIndex passes through
// unchanged.
func SyncPart(part string, oldIndex, newIndex int64) string {
	if !Synchronized(part, oldIndex) {
		return part
	}
	dg := IndexToNumber(newIndex)
	prefix := strings.SplitN(part, "-", 2)[0]
	return prefix + "-" + dg[:4] + "-" + dg[4:]
}

// AllDigits reports whether s is non-empty and consists only of 0-9.
func AllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// padSuffix strips leading zeros then re-pads to a minimum of 3 digits.
func padSuffix(suffix string) string {
	w := strings.TrimLeft(suffix, "0")
	for len(w) < 3 {
		w = "0" + w
	}
	return w
}

func isPartPrefix(partNo string) bool {
	if len(partNo) == 4 && AllDigits(partNo) {
		return true
	}
	return len(partNo) == 5 && AllDigits(partNo[:4]) && partNo[4] == '-'
}
