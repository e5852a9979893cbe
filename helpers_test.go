package blogspace

import (
	"strings"
	"testing"
)

func TestSplitTags(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", nil},
		{"  ", nil},
		{",", nil},
		{"go", []string{"go"}},
		{"go, web ,db", []string{"go", "web", "db"}},
		{" go ,, web", []string{"go", "web"}},
		{"go,go", []string{"go", "go"}},    // duplicates preserved
		{"Web, Go", []string{"Web", "Go"}}, // case and order preserved
	}
	for _, tt := range tests {
		got := SplitTags(tt.input)
		if len(got) != len(tt.want) {
			t.Errorf("SplitTags(%q) = %v, want %v", tt.input, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("SplitTags(%q)[%d] = %q, want %q", tt.input, i, got[i], tt.want[i])
			}
		}
	}
}

func TestAllowedImageFilename(t *testing.T) {
	allowed := []string{"a.jpg", "a.JPG", "photo.jpeg", "x.png", "anim.GIF", "dir.name.png"}
	for _, name := range allowed {
		if !AllowedImageFilename(name) {
			t.Errorf("AllowedImageFilename(%q) = false, want true", name)
		}
	}
	rejected := []string{"a.exe", "a.svg", "script.php", "noext", "trailing.", "a.jpg.exe", ".jpg"}
	for _, name := range rejected {
		if AllowedImageFilename(name) {
			t.Errorf("AllowedImageFilename(%q) = true, want false", name)
		}
	}
}

func TestImageID(t *testing.T) {
	if got := ImageID("simple.jpg"); got != "simple.jpg" {
		t.Errorf("ImageID(simple.jpg) = %q", got)
	}
	if got := ImageID("my photo.jpg"); got != "my%20photo.jpg" {
		t.Errorf("ImageID(my photo.jpg) = %q, want my%%20photo.jpg", got)
	}
	// Deterministic: the same filename always maps to the same id.
	if ImageID("x y.png") != ImageID("x y.png") {
		t.Error("ImageID should be deterministic")
	}
}

func TestNewPostID(t *testing.T) {
	id := NewPostID(TargetBlog)
	if !strings.HasPrefix(id, "blog_") {
		t.Errorf("NewPostID = %q, want blog_ prefix", id)
	}
	if NewPostID(TargetBlog) == NewPostID(TargetBlog) {
		t.Error("consecutive ids should not collide")
	}
}

func TestValidTarget(t *testing.T) {
	for _, target := range []string{TargetBlog, TargetWork, TargetNone} {
		if !ValidTarget(target) {
			t.Errorf("ValidTarget(%q) = false, want true", target)
		}
	}
	for _, target := range []string{"", "Blog", "admin", "blog "} {
		if ValidTarget(target) {
			t.Errorf("ValidTarget(%q) = true, want false", target)
		}
	}
}
