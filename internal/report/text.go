// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package report

import (
	"fmt"
	"strconv"
	"unicode/utf8"
)

// DecodeError describes why captured bytes are not valid UTF-8 text.
type DecodeError struct {
	Offset int // Byte offset of the first invalid sequence.
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("invalid UTF-8 at byte offset %d", e.Offset)
}

// Text is captured output after a best-effort decode: either the decoded
// string, or the raw bytes together with the reason decoding failed.
type Text struct {
	text string
	raw  []byte
	err  *DecodeError
}

// Decode never fails; invalid input yields a Text carrying a *DecodeError.
func Decode(b []byte) Text {
	if utf8.Valid(b) {
		return Text{text: string(b)}
	}

	offset := 0
	for offset < len(b) {
		r, size := utf8.DecodeRune(b[offset:])
		if r == utf8.RuneError && size <= 1 {
			break
		}

		offset += size
	}

	return Text{raw: b, err: &DecodeError{Offset: offset}}
}

// OK reports whether the bytes were valid text.
func (t Text) OK() bool {
	return t.err == nil
}

// String returns the decoded text, or "" if decoding failed.
func (t Text) String() string {
	return t.text
}

// Raw returns the undecodable bytes, or nil if decoding succeeded.
func (t Text) Raw() []byte {
	return t.raw
}

// Err returns the decode failure, or nil.
func (t Text) Err() error {
	if t.err == nil {
		return nil
	}

	return t.err
}

// Render returns a form that is always safe to put in a text body: the text
// itself, or an explanatory note followed by the raw bytes with every
// invalid byte escaped as \xNN.
func (t Text) Render() string {
	if t.OK() {
		return t.text
	}

	return fmt.Sprintf("[output could not be decoded as UTF-8 (%s); raw bytes follow, escaped]\n%s\n",
		t.err, strconv.Quote(string(t.raw)))
}
