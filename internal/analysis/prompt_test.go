package analysis

import (
	"strings"
	"testing"
)

func TestBuildPromptLayout(t *testing.T) {
	got := BuildPrompt("a,b\n1,2", "What is the sum of b?")
	want := PromptTemplate + "\n\nData:\na,b\n1,2\n\nQuestion:\nWhat is the sum of b?"
	if got != want {
		t.Fatalf("unexpected prompt:\n%q\nwant:\n%q", got, want)
	}
}

func TestBuildPromptPreservesInputsVerbatim(t *testing.T) {
	data := "  leading spaces\n\ttabs\n"
	got := BuildPrompt(data, "")
	if !strings.Contains(got, "\n\nData:\n"+data+"\n\nQuestion:\n") {
		t.Fatalf("data not embedded verbatim: %q", got)
	}
	if !strings.HasSuffix(got, "\n\nQuestion:\n") {
		t.Fatalf("empty question should end the prompt: %q", got)
	}
}

func TestPromptTemplateShape(t *testing.T) {
	if !strings.HasPrefix(PromptTemplate, "\nRole: ") {
		t.Fatalf("template must open with a newline and the role line")
	}
	if !strings.HasSuffix(PromptTemplate, "Tone: Formal and technical.\n") {
		t.Fatalf("template must end with the tone line")
	}
	if !strings.Contains(PromptTemplate, "into programmable \nPython code") {
		t.Fatalf("template lost its trailing space after 'programmable'")
	}
}
