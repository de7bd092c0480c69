package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobtracker_server/core/domain"
	"jobtracker_server/pkg/apperr"
)

type completerFunc func(ctx context.Context, system, user string) (string, error)

func (f completerFunc) CompleteWithSystem(ctx context.Context, system, user string) (string, error) {
	return f(ctx, system, user)
}

func reply(text string) completerFunc {
	return func(context.Context, string, string) (string, error) { return text, nil }
}

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
		wantErr  bool
	}{
		{
			name:     "bare object",
			text:     `{"summary":"ok"}`,
			expected: `{"summary":"ok"}`,
		},
		{
			name:     "fenced with language tag",
			text:     "Here you go:\n```json\n{\"summary\":\"ok\"}\n```\nThanks",
			expected: `{"summary":"ok"}`,
		},
		{
			name:     "prose around object",
			text:     `Sure! {"summary":"ok","actionItems":[]} Let me know.`,
			expected: `{"summary":"ok","actionItems":[]}`,
		},
		{
			name:     "braces inside strings",
			text:     `{"summary":"use {curly} and \"quotes\" }"}`,
			expected: `{"summary":"use {curly} and \"quotes\" }"}`,
		},
		{
			name:     "nested object",
			text:     `{"a":{"b":1},"summary":"x"} trailing }`,
			expected: `{"a":{"b":1},"summary":"x"}`,
		},
		{
			name:     "skips block that is not JSON",
			text:     `{not json} then {"summary":"second"}`,
			expected: `{"summary":"second"}`,
		},
		{
			name:     "stray opener before object",
			text:     `Note: a stray { in prose. {"summary":"Rejected by Acme","actionItems":[],"suggestedStatus":"Rejected"}`,
			expected: `{"summary":"Rejected by Acme","actionItems":[],"suggestedStatus":"Rejected"}`,
		},
		{
			name:    "no object",
			text:    "I cannot help with that.",
			wantErr: true,
		},
		{
			name:    "unbalanced",
			text:    `{"summary":"cut off`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSONObject(tt.text)
			if tt.wantErr {
				if !apperr.HasCode(err, apperr.CodeMalformedModelOutput) {
					t.Fatalf("expected malformed output error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestParseSummary(t *testing.T) {
	t.Run("full payload", func(t *testing.T) {
		s, err := ParseSummary(`{"summary":"  Interview invite from Acme ","actionItems":["Pick a slot"," ","Prepare"],"suggestedStatus":"interviewing"}`)
		require.NoError(t, err)
		assert.Equal(t, "Interview invite from Acme", s.Summary)
		assert.Equal(t, []string{"Pick a slot", "Prepare"}, s.ActionItems)
		assert.Equal(t, domain.StatusInterviewing, s.Status)
	})

	t.Run("defaults", func(t *testing.T) {
		s, err := ParseSummary(`{}`)
		require.NoError(t, err)
		assert.Equal(t, "Processed by AI", s.Summary)
		assert.Empty(t, s.ActionItems)
		assert.Equal(t, domain.StatusApplied, s.Status)
	})

	t.Run("status fallback key and unknown value", func(t *testing.T) {
		s, err := ParseSummary(`{"summary":"x","status":"REJECTED"}`)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusRejected, s.Status)

		s, err = ParseSummary(`{"summary":"x","suggestedStatus":"Ghosted"}`)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusApplied, s.Status)
	})

	t.Run("caps action items and summary length", func(t *testing.T) {
		long := strings.Repeat("a", 500)
		s, err := ParseSummary(fmt.Sprintf(`{"summary":%q,"actionItems":["1","2","3","4"]}`, long))
		require.NoError(t, err)
		assert.Len(t, []rune(s.Summary), 240)
		assert.Equal(t, []string{"1", "2", "3"}, s.ActionItems)
	})

	t.Run("single string action item", func(t *testing.T) {
		s, err := ParseSummary(`{"summary":"x","action_items":"Reply by Friday"}`)
		require.NoError(t, err)
		assert.Equal(t, []string{"Reply by Friday"}, s.ActionItems)
	})

	t.Run("stray brace in prose", func(t *testing.T) {
		s, err := ParseSummary(`Note: a stray { in prose. {"summary":"Rejected by Acme","actionItems":[],"suggestedStatus":"Rejected"}`)
		require.NoError(t, err)
		assert.Equal(t, "Rejected by Acme", s.Summary)
		assert.Equal(t, domain.StatusRejected, s.Status)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := ParseSummary("The email is about a job.")
		assert.True(t, apperr.HasCode(err, apperr.CodeMalformedModelOutput))
	})
}

func TestParseYesNo(t *testing.T) {
	tests := []struct {
		answer   string
		expected bool
		wantErr  bool
	}{
		{"YES", true, false},
		{"yes.", true, false},
		{" **Yes** it is", true, false},
		{"NO", false, false},
		{"no", false, false},
		{"Maybe", false, true},
		{"", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.answer, func(t *testing.T) {
			got, err := ParseYesNo(tt.answer)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseYesNo(%q) error = %v, wantErr %v", tt.answer, err, tt.wantErr)
			}
			if got != tt.expected {
				t.Errorf("ParseYesNo(%q) = %v, expected %v", tt.answer, got, tt.expected)
			}
		})
	}
}

func TestClassifier(t *testing.T) {
	var seen string
	c := NewClassifier(completerFunc(func(_ context.Context, _, user string) (string, error) {
		seen = user
		return "YES", nil
	}))
	ok, err := c.IsJobRelated(context.Background(), strings.Repeat("x", 3000))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Len(t, seen, classifyMaxContent)

	boom := errors.New("boom")
	c = NewClassifier(completerFunc(func(context.Context, string, string) (string, error) { return "", boom }))
	_, err = c.IsJobRelated(context.Background(), "x")
	assert.ErrorIs(t, err, boom)
}

func TestSummarizer(t *testing.T) {
	s := NewSummarizer(reply("```json\n{\"summary\":\"Rejected by Acme\",\"actionItems\":[],\"suggestedStatus\":\"Rejected\"}\n```"))
	got, err := s.Summarize(context.Background(), "Subject: Update\nFrom: a@acme.com\nBody: unfortunately")
	require.NoError(t, err)
	assert.Equal(t, "Rejected by Acme", got.Summary)
	assert.Equal(t, domain.StatusRejected, got.Status)

	t.Run("empty content skips the model", func(t *testing.T) {
		s := NewSummarizer(completerFunc(func(context.Context, string, string) (string, error) {
			t.Fatal("model must not be called")
			return "", nil
		}))
		got, err := s.Summarize(context.Background(), "  ")
		require.NoError(t, err)
		assert.Equal(t, "Empty email", got.Summary)
		assert.Equal(t, domain.StatusApplied, got.Status)
	})
}

func TestClientNotConfigured(t *testing.T) {
	c := NewClientWithConfig(ClientConfig{})
	assert.False(t, c.Configured())
	assert.Equal(t, DefaultModel, c.Model())

	_, err := c.CompleteWithSystem(context.Background(), "s", "u")
	assert.ErrorIs(t, err, apperr.ErrModelNotConfigured)
}

func TestClientCompatibleEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"NO"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	c := NewClientWithConfig(ClientConfig{APIKey: "test-key", BaseURL: srv.URL + "/", Model: "llama-3.1-8b-instant"})
	require.True(t, c.Configured())

	ok, err := NewClassifier(c).IsJobRelated(context.Background(), "Weekly newsletter")
	require.NoError(t, err)
	assert.False(t, ok)
}
