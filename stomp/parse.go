package stomp

import (
	"bytes"
	"strconv"
)

// Parse decodes a single STOMP frame from its wire form. Extra trailing
// whitespace after the terminating NUL is ignored. Header order is
// preserved exactly as it appears on the wire, and Serialize writes headers
// back in the order the frame holds them.
func Parse(data []byte) (Frame, error) {
	nul := bytes.IndexByte(data, 0)
	if nul < 0 {
		return Frame{}, &ParseError{Err: ErrMissingNull, Offset: len(data)}
	}
	content := data[:nul]

	lineEnd := bytes.IndexByte(content, '\n')
	if lineEnd < 0 {
		return Frame{}, &ParseError{Err: ErrMalformedHeader, Offset: 0}
	}
	command := Command(content[:lineEnd])
	if !knownCommands[command] {
		return Frame{}, &ParseError{Err: ErrUnknownCommand, Offset: 0}
	}

	rest := content[lineEnd+1:]
	headers := []HeaderPair{}
	offset := lineEnd + 1
	for {
		blank := bytes.IndexByte(rest, '\n')
		if blank < 0 {
			return Frame{}, &ParseError{Err: ErrMalformedHeader, Offset: offset}
		}
		line := rest[:blank]
		if len(line) == 0 {
			rest = rest[blank+1:]
			offset += blank + 1
			break
		}
		colon := bytes.IndexByte(line, ':')
		if colon <= 0 {
			return Frame{}, &ParseError{Err: ErrMalformedHeader, Offset: offset}
		}
		name := line[:colon]
		for _, b := range name {
			if b < 0x20 {
				return Frame{}, &ParseError{Err: ErrMalformedHeader, Offset: offset}
			}
		}
		value, err := unescapeHeaderValue(string(line[colon+1:]))
		if err != nil {
			return Frame{}, &ParseError{Err: ErrBadEscape, Offset: offset}
		}
		headers = append(headers, HeaderPair{Name: Header(name), Value: value})
		rest = rest[blank+1:]
		offset += blank + 1
	}

	body := rest
	f := Frame{Command: command, headers: headers, Body: body}
	if cl, ok := f.Header(HeaderContentLength); ok {
		n, err := strconv.Atoi(cl)
		if err != nil || n < 0 || n != len(body) {
			return Frame{}, &ParseError{Err: ErrLengthMismatch, Offset: offset}
		}
	}
	return f, nil
}
