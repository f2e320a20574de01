package skiplogic

import (
	"reflect"
	"testing"
)

func TestParseCondition(t *testing.T) {
	tests := []struct {
		text   string
		qid    string
		codes  []string
		parsed bool
	}{
		{"Q1=1 또는 2 응답자", "Q1", []string{"1", "2"}, true},
		{"Q2=1 또는 3", "Q2", []string{"1", "3"}, true},
		{"Q3=3,4", "Q3", []string{"3", "4"}, true},
		{"Q5 = 1~3", "Q5", []string{"1", "3"}, true},
		{"sq1a=2", "SQ1A", []string{"2"}, true},
		{"Q2_1 = 5/6", "Q2_1", []string{"5", "6"}, true},
		{"Q7=1,1,2", "Q7", []string{"1", "1", "2"}, true}, // duplicates preserved
		{"Q1≠99", "Q1", []string{"99"}, true},
		// Multi-question AND conditions reduce to the first pair.
		{"Q1=1&Q3=99", "Q1", []string{"1"}, true},
		{"", "", nil, false},
		{"   ", "", nil, false},
		{"anyone who answered", "", nil, false},
		{"Q1이 응답한 경우", "", nil, false}, // no comparator
	}

	for _, tt := range tests {
		ref := ParseCondition(tt.text)
		if ref.Parsed != tt.parsed {
			t.Errorf("ParseCondition(%q).Parsed = %v, want %v", tt.text, ref.Parsed, tt.parsed)
			continue
		}
		if !tt.parsed {
			continue
		}
		if ref.QuestionID != tt.qid {
			t.Errorf("ParseCondition(%q).QuestionID = %q, want %q", tt.text, ref.QuestionID, tt.qid)
		}
		if !reflect.DeepEqual(ref.Codes, tt.codes) {
			t.Errorf("ParseCondition(%q).Codes = %v, want %v", tt.text, ref.Codes, tt.codes)
		}
	}
}

func TestParseConditionNoDigits(t *testing.T) {
	// A comparator with no digit codes is unparsed but keeps the question id.
	ref := ParseCondition("Q1= 또는")
	if ref.Parsed {
		t.Error("expected Parsed=false for code list without digits")
	}
	if ref.QuestionID != "Q1" {
		t.Errorf("QuestionID = %q, want Q1", ref.QuestionID)
	}
}

func TestParseConditionKeepsRaw(t *testing.T) {
	ref := ParseCondition("Q1=1")
	if ref.Raw != "Q1=1" {
		t.Errorf("Raw = %q, want original text", ref.Raw)
	}
}

func TestParseTarget(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"Q5로 이동", "Q5"},
		{"Go to Q12", "Q12"},
		{"skip to sq2a", "SQ2A"},
		{"설문 종료", End},
		{"응답 후 설문 종료 (Q99)", End}, // end vocabulary wins over digits
		{"TERMINATE", End},
		{"End survey", End},
		{"screen out", End},
		{"탈락 처리", End},
		{"다음 문항으로", ""},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		if got := ParseTarget(tt.text); got != tt.want {
			t.Errorf("ParseTarget(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}
