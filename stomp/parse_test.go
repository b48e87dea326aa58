package stomp

import (
	"bytes"
	"errors"
	"testing"
)

func TestParseRejectsMissingNull(t *testing.T) {
	_, err := Parse([]byte("CONNECTED\nversion:1.2\n\n"))
	if !errors.Is(err, ErrMissingNull) {
		t.Fatalf("expected ErrMissingNull, got %v", err)
	}
}

func TestParseRejectsMissingCommandLine(t *testing.T) {
	_, err := Parse([]byte("CONNECTED\x00"))
	if !errors.Is(err, ErrMalformedHeader) {
		t.Fatalf("expected ErrMalformedHeader, got %v", err)
	}
}

func TestParseRejectsUnterminatedHeaderBlock(t *testing.T) {
	_, err := Parse([]byte("CONNECTED\nversion:1.2\x00"))
	if !errors.Is(err, ErrMalformedHeader) {
		t.Fatalf("expected ErrMalformedHeader, got %v", err)
	}
}

func TestParseRejectsHeaderLineWithoutColon(t *testing.T) {
	_, err := Parse([]byte("CONNECTED\nnocolonhere\n\n\x00"))
	if !errors.Is(err, ErrMalformedHeader) {
		t.Fatalf("expected ErrMalformedHeader, got %v", err)
	}
}

func TestParseRejectsUnknownCommand(t *testing.T) {
	_, err := Parse([]byte("WIGGLE\n\n\x00"))
	if !errors.Is(err, ErrUnknownCommand) {
		t.Fatalf("expected ErrUnknownCommand, got %v", err)
	}
}

func TestParseRejectsBadEscape(t *testing.T) {
	_, err := Parse([]byte("CONNECTED\nversion:bad\\zescape\n\n\x00"))
	if !errors.Is(err, ErrBadEscape) {
		t.Fatalf("expected ErrBadEscape, got %v", err)
	}
}

func TestParseRejectsContentLengthMismatch(t *testing.T) {
	_, err := Parse([]byte("MESSAGE\nsubscription:sub-1\nmessage-id:1\ndestination:/passengers\ncontent-length:5\n\nabc\x00"))
	if !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("expected ErrLengthMismatch, got %v", err)
	}
}

func TestParseReportsOffsetOfOffendingHeader(t *testing.T) {
	data := []byte("CONNECTED\nversion:1.2\nnocolonhere\n\n\x00")
	_, err := Parse(data)
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected a *ParseError, got %T", err)
	}
	if pe.Offset == 0 {
		t.Fatal("expected a non-zero offset for a header past the command line")
	}
}

// TestSerializeParseIsIdentity checks serialize(parse(x)) == x (§8's law)
// for every command this client actually sends or receives.
func TestSerializeParseIsIdentity(t *testing.T) {
	frames := []Frame{
		mustFrame(CommandStomp, []HeaderPair{
			{HeaderAcceptVersion, "1.2"},
			{HeaderHost, "example.com"},
			{HeaderLogin, "alice"},
			{HeaderPasscode, "secret"},
		}, nil),
		mustFrame(CommandSubscribe, []HeaderPair{
			{HeaderID, "sub-1"},
			{HeaderDestination, "/passengers"},
			{HeaderAck, "auto"},
			{HeaderReceipt, "sub-1"},
		}, nil),
		mustFrame(CommandConnected, []HeaderPair{{HeaderVersion, "1.2"}}, nil),
		mustFrame(CommandMessage, []HeaderPair{
			{HeaderSubscription, "sub-1"},
			{HeaderMessageID, "1"},
			{HeaderDestination, "/passengers"},
		}, []byte(`{"station_id":"station_0"}`)),
		mustFrame(CommandReceipt, []HeaderPair{{HeaderReceiptID, "sub-1"}}, nil),
		mustFrame(CommandError, []HeaderPair{{HeaderContentType, "text/plain"}}, []byte("bad credentials")),
	}

	for _, f := range frames {
		wire := f.Serialize()
		parsed, err := Parse(wire)
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", wire, err)
		}
		roundTripped := parsed.Serialize()
		if !bytes.Equal(roundTripped, wire) {
			t.Fatalf("serialize(parse(x)) != x:\n  x    = %q\n  got  = %q", wire, roundTripped)
		}
	}
}

// TestParseYieldsRequiredHeaders is Invariant 6 (§8): parsing any frame this
// client emits or receives yields headers containing at least the required
// set for its command.
func TestParseYieldsRequiredHeaders(t *testing.T) {
	frames := []Frame{
		mustFrame(CommandStomp, []HeaderPair{
			{HeaderAcceptVersion, "1.2"},
			{HeaderHost, "example.com"},
			{HeaderLogin, "alice"},
			{HeaderPasscode, "secret"},
		}, nil),
		mustFrame(CommandSubscribe, []HeaderPair{
			{HeaderID, "sub-1"},
			{HeaderDestination, "/passengers"},
			{HeaderAck, "auto"},
		}, nil),
		mustFrame(CommandConnected, []HeaderPair{{HeaderVersion, "1.2"}}, nil),
		mustFrame(CommandMessage, []HeaderPair{
			{HeaderSubscription, "sub-1"},
			{HeaderMessageID, "1"},
			{HeaderDestination, "/passengers"},
		}, nil),
		mustFrame(CommandReceipt, []HeaderPair{{HeaderReceiptID, "sub-1"}}, nil),
	}

	for _, f := range frames {
		parsed, err := Parse(f.Serialize())
		if err != nil {
			t.Fatalf("Parse failed for %s: %v", f.Command, err)
		}
		for _, required := range requiredHeaders[parsed.Command] {
			if _, ok := parsed.Header(required); !ok {
				t.Fatalf("%s frame missing required header %s after parse", parsed.Command, required)
			}
		}
	}
}
