package classifier

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/upgraded-notifs/notifs/internal/domain"
)

type fakeGenerator struct {
	reply   string
	err     error
	prompts []string
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.reply, f.err
}

func (f *fakeGenerator) Model() string { return "fake" }

func TestAnalyzeDropsRolesOutsideInput(t *testing.T) {
	gen := &fakeGenerator{reply: ` ["AI", "Blockchain", "Full stack"] `}
	c := New(gen, nil)

	got, err := c.Analyze(context.Background(), domain.Listing{ID: "upgraded:1", Title: "ML Platform Engineer"}, []string{"AI", "Full stack"})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(got) != 2 || got[0] != "AI" || got[1] != "Full stack" {
		t.Fatalf("unexpected roles %v", got)
	}
	if len(gen.prompts) != 1 {
		t.Fatalf("expected exactly one model call, got %d", len(gen.prompts))
	}
}

func TestAnalyzeUnparsableReplyYieldsNoMatch(t *testing.T) {
	for _, reply := range []string{"I think AI fits", `{"roles": ["AI"]}`, `"AI"`, ""} {
		c := New(&fakeGenerator{reply: reply}, nil)
		got, err := c.Analyze(context.Background(), domain.Listing{ID: "x"}, []string{"AI"})
		if err != nil {
			t.Fatalf("reply %q: unexpected error %v", reply, err)
		}
		if len(got) != 0 {
			t.Fatalf("reply %q: expected no roles, got %v", reply, got)
		}
	}
}

func TestAnalyzeIgnoresNonStringElements(t *testing.T) {
	c := New(&fakeGenerator{reply: `[1, null, "AI", {"x": 1}]`}, nil)
	got, err := c.Analyze(context.Background(), domain.Listing{ID: "x"}, []string{"AI"})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(got) != 1 || got[0] != "AI" {
		t.Fatalf("unexpected roles %v", got)
	}
}

func TestAnalyzePropagatesGeneratorError(t *testing.T) {
	c := New(&fakeGenerator{err: errors.New("overloaded")}, nil)
	if _, err := c.Analyze(context.Background(), domain.Listing{ID: "x"}, []string{"AI"}); err == nil {
		t.Fatal("expected generator error to propagate")
	}
}

func TestBuildPromptTruncatesContent(t *testing.T) {
	content := strings.Repeat("å", maxContentRunes) + "TAIL"
	prompt := BuildPrompt(domain.Listing{Title: "Data Engineer", Content: content}, []string{"AI", "Data"})

	if strings.Contains(prompt, "TAIL") {
		t.Fatal("content beyond the limit must not be sent")
	}
	if !strings.Contains(prompt, strings.Repeat("å", maxContentRunes)) {
		t.Fatal("expected the first runes of the content to be present")
	}
	if !strings.Contains(prompt, "Title: Data Engineer") {
		t.Fatal("expected title in prompt")
	}
	if !strings.Contains(prompt, "- AI\n- Data") {
		t.Fatal("expected role list in prompt")
	}
	if !strings.Contains(prompt, "respond with [].") {
		t.Fatal("expected empty-array instruction")
	}
}
