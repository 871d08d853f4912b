package extract

import (
	"strings"
	"testing"
)

func TestVisibleText_SkipsScriptsAndStyles(t *testing.T) {
	doc := `
	<html>
	<head><title>ignored</title><style>p { color: red; }</style></head>
	<body>
		<p>The heart is part of the circulatory system.</p>
		<script>var x = "has_part(evil, code).";</script>
		<p>The aorta carries blood.</p>
	</body>
	</html>`

	text, err := VisibleText(doc)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if strings.Contains(text, "has_part") {
		t.Errorf("Expected script content to be dropped, got %q", text)
	}
	if strings.Contains(text, "color") {
		t.Errorf("Expected style content to be dropped, got %q", text)
	}
	if !strings.Contains(text, "The heart is part of the circulatory system.") {
		t.Errorf("Expected first paragraph in output, got %q", text)
	}

	lines := strings.Split(text, "\n")
	if len(lines) != 2 {
		t.Errorf("Expected 2 lines (one per paragraph), got %d: %q", len(lines), text)
	}
}

func TestSourceText_ByExtension(t *testing.T) {
	plain := []byte("<p>not parsed</p>")

	got, err := SourceText("notes.txt", plain)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if got != string(plain) {
		t.Errorf("Expected plain text unchanged, got %q", got)
	}

	got, err = SourceText("page.HTML", plain)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if got != "not parsed" {
		t.Errorf("Expected visible text, got %q", got)
	}
}
