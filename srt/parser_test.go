package srt

import (
	"errors"
	"reflect"
	"testing"

	"captionsearch/types"
)

const sample = `1
00:00:01,000 --> 00:00:04,500
Hello World

2
00:00:05,000 --> 00:00:07,250 X1:100 X2:600 Y1:40 Y2:80
Two line
caption

3
01:02:03,004 --> 01:02:04,000
Last one
`

func TestParseWellFormed(t *testing.T) {
	entries, err := Parse(sample)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	want := []types.CaptionEntry{
		{Index: 1, StartMS: 1000, EndMS: 4500, Text: "Hello World"},
		{Index: 2, StartMS: 5000, EndMS: 7250, Position: "X1:100 X2:600 Y1:40 Y2:80", Text: "Two line\ncaption"},
		{Index: 3, StartMS: 3723004, EndMS: 3724000, Text: "Last one"},
	}
	if !reflect.DeepEqual(entries, want) {
		t.Fatalf("Parse mismatch:\n got %+v\nwant %+v", entries, want)
	}
}

func TestParseEmptyInput(t *testing.T) {
	for _, raw := range []string{"", "\n\n", "  \r\n"} {
		entries, err := Parser{Strict: true}.Parse(raw)
		if err != nil {
			t.Fatalf("Parse(%q) error: %v", raw, err)
		}
		if entries == nil || len(entries) != 0 {
			t.Fatalf("Parse(%q) = %#v; want empty non-nil slice", raw, entries)
		}
	}
}

func TestParseLenientSkipsMalformed(t *testing.T) {
	raw := "1\n00:00:01,000 --> 00:00:02,000\nfirst\n\n" +
		"oops\n00:00:03,000 --> 00:00:04,000\nbad index\n\n" +
		"3\nnot a timing line\nbad timing\n\n" +
		"4\n00:00:09,000 --> 00:00:08,000\nbackwards\n\n" +
		"5\n00:00:10,000 --> 00:00:11,000\n\n" +
		"6\n00:00:12,000 --> 00:00:13,000\nlast\n"

	var skipped []int
	p := Parser{OnSkip: func(block int, err error) {
		if !errors.Is(err, ErrMalformedBlock) {
			t.Errorf("skip error not ErrMalformedBlock: %v", err)
		}
		skipped = append(skipped, block)
	}}
	entries, err := p.Parse(raw)
	if err != nil {
		t.Fatalf("lenient Parse error: %v", err)
	}
	if len(entries) != 2 || entries[0].Text != "first" || entries[1].Text != "last" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
	if !reflect.DeepEqual(skipped, []int{2, 3, 4, 5}) {
		t.Fatalf("skipped blocks = %v", skipped)
	}
}

func TestParseStrictFails(t *testing.T) {
	raw := "1\n00:00:01,000 --> 00:00:02,000\nok\n\nx\n00:00:03,000 --> 00:00:04,000\nbad\n"
	_, err := Parser{Strict: true}.Parse(raw)
	if !errors.Is(err, ErrMalformedBlock) {
		t.Fatalf("expected ErrMalformedBlock, got %v", err)
	}
}

func TestParseCRLFAndBOM(t *testing.T) {
	raw := "\ufeff1\r\n00:00:01.000 --> 00:00:02.000\r\nwindows\r\n\r\n"
	entries, err := Parse(raw)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Text != "windows" || entries[0].StartMS != 1000 {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}

func TestParseTimestamp(t *testing.T) {
	cases := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"00:00:00,000", 0, false},
		{"00:01:02,345", 62345, false},
		{"10:00:00.001", 36_000_001, false},
		{"00:00:01,5", 1500, false},
		{" 00:00:01,000 ", 1000, false},
		{"00:00:01", 0, true},
		{"00:61:00,000", 0, true},
		{"aa:00:00,000", 0, true},
		{"00:00:00,1234", 0, true},
		{"", 0, true},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			got, err := ParseTimestamp(c.in)
			if c.wantErr {
				if err == nil {
					t.Fatalf("ParseTimestamp(%q) = %d; want error", c.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTimestamp(%q) error: %v", c.in, err)
			}
			if got != c.want {
				t.Fatalf("ParseTimestamp(%q) = %d; want %d", c.in, got, c.want)
			}
		})
	}
}

func TestFormatRoundTrip(t *testing.T) {
	entries, err := Parse(sample)
	if err != nil {
		t.Fatal(err)
	}
	again, err := Parse(Format(entries))
	if err != nil {
		t.Fatalf("reparse error: %v", err)
	}
	if !reflect.DeepEqual(entries, again) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", again, entries)
	}
	if Format(entries) != sample {
		t.Fatalf("Format output differs from canonical input:\n%s", Format(entries))
	}
}
