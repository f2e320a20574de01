package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/hazyhaar/surveypipe/survey"
)

func TestParseResponseCleanJSON(t *testing.T) {
	content := `{"questions": [{"question_number": "Q1", "question_text": "Your age?", "question_type": "NUMERIC"}]}`

	questions, ok := parseResponse(content)
	if !ok {
		t.Fatal("clean JSON not parsed")
	}
	if len(questions) != 1 || questions[0].Number != "Q1" || questions[0].Type != "NUMERIC" {
		t.Errorf("questions = %+v", questions)
	}
}

func TestParseResponseCodeFence(t *testing.T) {
	content := "Here is the extraction:\n```json\n{\"questions\": [{\"question_number\": \"Q1\", \"question_text\": \"t\"}]}\n```"

	questions, ok := parseResponse(content)
	if !ok || len(questions) != 1 {
		t.Fatalf("code-fenced JSON not recovered: ok=%v questions=%d", ok, len(questions))
	}
}

func TestParseResponseBraceSalvage(t *testing.T) {
	content := `The model says: {"questions": [{"question_number": "Q2", "question_text": "t"}]} hope that helps`

	questions, ok := parseResponse(content)
	if !ok || len(questions) != 1 || questions[0].Number != "Q2" {
		t.Fatalf("brace salvage failed: ok=%v questions=%+v", ok, questions)
	}
}

func TestParseResponseGarbage(t *testing.T) {
	if _, ok := parseResponse("I could not find any questions, sorry."); ok {
		t.Error("garbage response reported as parsed")
	}
}

func TestValidateQuestion(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want *survey.Question
	}{
		{
			name: "type normalized",
			in:   `{"question_number": "Q1", "question_text": "Gender?", "question_type": "S"}`,
			want: &survey.Question{Number: "Q1", Text: "Gender?", Type: "SA"},
		},
		{
			name: "numeric codes coerced to strings",
			in:   `{"question_number": "Q2", "question_text": "t", "answer_options": [{"code": 1, "label": "Male"}]}`,
			want: &survey.Question{Number: "Q2", Text: "t", Options: []survey.AnswerOption{{Code: "1", Label: "Male"}}},
		},
		{
			name: "null type kept empty",
			in:   `{"question_number": "Q3", "question_text": "t", "question_type": null}`,
			want: &survey.Question{Number: "Q3", Text: "t"},
		},
		{
			name: "missing text rejected",
			in:   `{"question_number": "Q4", "question_text": ""}`,
			want: nil,
		},
		{
			name: "variable name rejected",
			in:   `{"question_number": "RegionCode2", "question_text": "Seoul"}`,
			want: nil,
		},
		{
			name: "process step rejected",
			in:   `{"question_number": "STEP1", "question_text": "Allocate"}`,
			want: nil,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := validateQuestion(json.RawMessage(tc.in))
			if tc.want == nil {
				if got != nil {
					t.Fatalf("want rejection, got %+v", got)
				}
				return
			}
			if got == nil {
				t.Fatal("want question, got rejection")
			}
			if got.Number != tc.want.Number || got.Text != tc.want.Text || got.Type != tc.want.Type {
				t.Errorf("got %+v, want %+v", got, tc.want)
			}
			if len(tc.want.Options) > 0 {
				if len(got.Options) != len(tc.want.Options) || got.Options[0] != tc.want.Options[0] {
					t.Errorf("options = %+v, want %+v", got.Options, tc.want.Options)
				}
			}
		})
	}
}

func TestMergeChunkResults(t *testing.T) {
	chunk1 := []survey.Question{{
		Number:  "Q1",
		Text:    "Short",
		Options: []survey.AnswerOption{{Code: "1", Label: "Yes"}},
	}}
	chunk2 := []survey.Question{
		{
			Number:    "Q1",
			Text:      "Short but longer text",
			Type:      "SA",
			Options:   []survey.AnswerOption{{Code: "1", Label: "Yes"}, {Code: "2", Label: "No"}},
			SkipRules: []survey.SkipRule{{Condition: "Q1=2", Target: "Q5"}},
		},
		{Number: "Q2", Text: "Another"},
	}

	merged := MergeChunkResults([][]survey.Question{chunk1, chunk2})

	if len(merged) != 2 {
		t.Fatalf("merged = %d questions, want 2", len(merged))
	}
	q1 := merged[0]
	if q1.Text != "Short but longer text" {
		t.Errorf("longer text did not win: %q", q1.Text)
	}
	if len(q1.Options) != 2 {
		t.Errorf("options = %+v, want union of 2", q1.Options)
	}
	if len(q1.SkipRules) != 1 || q1.Type != "SA" {
		t.Errorf("skip rules / type not backfilled: %+v", q1)
	}
	if merged[1].Number != "Q2" {
		t.Errorf("first-seen order broken: %v", merged[1].Number)
	}
}

// fakeServer returns an OpenAI-compatible chat endpoint that always responds
// with the given question payload.
func fakeServer(t *testing.T, questions []survey.Question) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		content, _ := json.Marshal(map[string]any{"questions": questions})
		resp := map[string]any{
			"choices": []map[string]any{{
				"message":       map[string]any{"content": string(content)},
				"finish_reason": "stop",
			}},
		}
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestExtractorPipeline(t *testing.T) {
	srv := fakeServer(t, []survey.Question{
		{Number: "Q1", Text: "How satisfied are you?", Type: "5pt"},
	})
	defer srv.Close()

	client := NewClient(ClientConfig{Endpoint: srv.URL, Model: "test-model"})

	var mu sync.Mutex
	events := make(map[string]int)
	e := New(client, WithProgress(func(event string, _ map[string]any) {
		mu.Lock()
		events[event]++
		mu.Unlock()
	}))

	questions, err := e.Extract(context.Background(), []string{"Q1. How satisfied are you? [5pt]"})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(questions) != 1 || questions[0].Number != "Q1" {
		t.Fatalf("questions = %+v", questions)
	}

	for _, want := range []string{"regex_done", "chunk_start", "chunk_done", "merge_done"} {
		if events[want] == 0 {
			t.Errorf("event %s never fired", want)
		}
	}
	if events["rechunk"] != 0 {
		t.Error("rechunk fired for a small chunk")
	}
}

func TestExtractorRechunksDenseChunk(t *testing.T) {
	srv := fakeServer(t, nil)
	defer srv.Close()

	// 85 questions in one chunk exceeds the default ceiling of 80.
	var lines []string
	for i := 1; i <= 85; i++ {
		lines = append(lines, fmt.Sprintf("Q%d. Question number %d?", i, i))
	}

	client := NewClient(ClientConfig{Endpoint: srv.URL, Model: "test-model"})

	var mu sync.Mutex
	events := make(map[string]int)
	e := New(client, WithProgress(func(event string, _ map[string]any) {
		mu.Lock()
		events[event]++
		mu.Unlock()
	}))

	if _, err := e.Extract(context.Background(), []string{strings.Join(lines, "\n")}); err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if events["rechunk"] != 1 {
		t.Errorf("rechunk events = %d, want 1", events["rechunk"])
	}
	if events["chunk_start"] < 2 {
		t.Errorf("chunk_start events = %d, want at least 2 after rechunk", events["chunk_start"])
	}
}

func TestExtractorServerFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "overloaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{Endpoint: srv.URL, Model: "test-model"})
	e := New(client)

	questions, err := e.Extract(context.Background(), []string{"Q1. text"})
	if err != nil {
		t.Fatalf("Extract returned error for failed chunk: %v", err)
	}
	if len(questions) != 0 {
		t.Errorf("questions = %+v, want none from a failing server", questions)
	}
}

func TestNoopCompleter(t *testing.T) {
	client := NewClient(ClientConfig{})
	content, reason, err := client.Complete(context.Background(), "sys", "user")
	if err != nil || reason != "stop" {
		t.Fatalf("noop complete: %v %q", err, reason)
	}
	questions, ok := parseResponse(content)
	if !ok || len(questions) != 0 {
		t.Errorf("noop response = %q", content)
	}
}
