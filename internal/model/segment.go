// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"regexp"
	"strings"
)

// =============================================================================
// MESSAGE BODY SEGMENTS
// =============================================================================

// SegmentKind classifies a single line of a message body.
type SegmentKind int

const (
	// SegmentText is an ordinary prose line.
	SegmentText SegmentKind = iota
	// SegmentImage is a line that looks like an image reference.
	SegmentImage
)

// Segment is one classified line of a message body.
type Segment struct {
	Kind SegmentKind
	Text string
}

// imageURLPattern matches http(s) URLs ending in a common image extension,
// with an optional query string.
var imageURLPattern = regexp.MustCompile(`(?i)^https?://\S+\.(png|jpe?g|gif|webp)(\?\S*)?$`)

// uploadPathMarker marks server-side upload references, which carry no
// file extension (e.g. "/uploads/abc").
const uploadPathMarker = "/uploads/"

// IsImageLine reports whether a trimmed line should render as an image.
//
// This is a heuristic and ambiguous by construction: plain prose that
// happens to be a bare image URL is classified as an image. Accepted
// limitation; the patterns mirror what the backend emits for uploads.
func IsImageLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false
	}
	if strings.HasPrefix(trimmed, "data:image/") {
		return true
	}
	if imageURLPattern.MatchString(trimmed) {
		return true
	}
	if strings.Contains(trimmed, uploadPathMarker) && !strings.ContainsAny(trimmed, " \t") {
		return true
	}
	return false
}

// SplitSegments splits a message body on newlines, trims each line, drops
// empty lines, and classifies each remaining line independently.
// Deterministic pure function of the body.
func SplitSegments(body string) []Segment {
	var segments []Segment
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		kind := SegmentText
		if IsImageLine(line) {
			kind = SegmentImage
		}
		segments = append(segments, Segment{Kind: kind, Text: line})
	}
	return segments
}
