package types

import (
	"cmp"
	"strconv"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// MaxWBSDepth is the deepest WBS level accepted for a control account
const MaxWBSDepth = 10

// WBSCode is a dot separated work breakdown structure code such as "1.2.10"
type WBSCode string

// Validate checks that every segment is a number without leading zeros
func (w WBSCode) Validate() error {
	if w == "" {
		return goerr.Wrap(ErrInvalidArgument, "WBS code cannot be empty")
	}

	segments := strings.Split(string(w), ".")
	if len(segments) > MaxWBSDepth {
		return goerr.Wrap(ErrInvalidArgument, "WBS code is too deep",
			goerr.V("code", w), goerr.V("depth", len(segments)), goerr.V("max", MaxWBSDepth))
	}

	for i, seg := range segments {
		if seg == "" {
			return goerr.Wrap(ErrInvalidArgument, "WBS code has an empty segment", goerr.V("code", w), goerr.V("index", i))
		}
		if len(seg) > 1 && seg[0] == '0' {
			return goerr.Wrap(ErrInvalidArgument, "WBS code segment has a leading zero", goerr.V("code", w), goerr.V("segment", seg))
		}
		for _, r := range seg {
			if r < '0' || r > '9' {
				return goerr.Wrap(ErrInvalidArgument, "WBS code segment must be numeric", goerr.V("code", w), goerr.V("segment", seg))
			}
		}
	}

	return nil
}

// Depth returns the number of levels in the code
func (w WBSCode) Depth() int {
	if w == "" {
		return 0
	}
	return strings.Count(string(w), ".") + 1
}

// Parent returns the code one level up, or empty for a top level code
func (w WBSCode) Parent() WBSCode {
	idx := strings.LastIndex(string(w), ".")
	if idx < 0 {
		return ""
	}
	return w[:idx]
}

// IsAncestorOf reports whether w is a strict ancestor of other
func (w WBSCode) IsAncestorOf(other WBSCode) bool {
	return w != "" && strings.HasPrefix(string(other), string(w)+".")
}

// Compare orders codes segment by segment numerically, so "1.2" sorts before
// "1.10" and a parent sorts before its children. Non-numeric segments compare
// as strings.
func (w WBSCode) Compare(other WBSCode) int {
	a := strings.Split(string(w), ".")
	b := strings.Split(string(other), ".")
	for i := range min(len(a), len(b)) {
		x, errX := strconv.Atoi(a[i])
		y, errY := strconv.Atoi(b[i])
		var c int
		if errX == nil && errY == nil {
			c = cmp.Compare(x, y)
		} else {
			c = cmp.Compare(a[i], b[i])
		}
		if c != 0 {
			return c
		}
	}
	return cmp.Compare(len(a), len(b))
}

// String returns the string representation of WBSCode
func (w WBSCode) String() string {
	return string(w)
}
