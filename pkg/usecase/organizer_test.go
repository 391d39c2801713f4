package usecase

import (
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/scormpack/pkg/domain/types"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "invalid characters replaced",
			input: `Course<with>:bad"chars/\|?*`,
			want:  "Course_with_bad_chars",
		},
		{
			name:  "parenthesized chunks collapsed",
			input: "Annual Training (APAR) Module",
			want:  "Annual_Training_Module",
		},
		{
			name:  "whitespace collapsed",
			input: "Course   With    Spaces",
			want:  "Course_With_Spaces",
		},
		{
			name:  "leading and trailing underscores trimmed",
			input: "  (note) Course ",
			want:  "Course",
		},
		{
			name:  "long name truncated with ellipsis",
			input: strings.Repeat("a", 100),
			want:  strings.Repeat("a", 27) + "...",
		},
		{
			name:  "short name unchanged",
			input: "Short",
			want:  "Short",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitizeName(tt.input)
			if got != tt.want {
				t.Errorf("sanitizeName(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if len([]rune(got)) > maxNameLen {
				t.Errorf("sanitizeName(%q) length %d exceeds %d", tt.input, len([]rune(got)), maxNameLen)
			}
		})
	}
}

func TestCourseFolderName_Bounds(t *testing.T) {
	doID := types.DOID("do_113768226086068224132")

	long := courseFolderName(strings.Repeat("Very Long Course Name ", 10), doID)
	parts := strings.Split(long, "_")
	gt.True(t, strings.HasSuffix(long, "_"+doID.Suffix(15)))
	gt.Number(t, len(parts)).Greater(1)

	// Name component never exceeds its limit regardless of input length.
	namePart := strings.TrimSuffix(long, "_"+doID.Suffix(15))
	gt.Number(t, len([]rune(namePart))).LessOrEqual(courseNameLen)
}

func TestFolderNames_CollisionFree(t *testing.T) {
	// Same display name, different identifiers: paths must differ.
	a := courseFolderName("Leadership Fundamentals Program", "do_111111111111111111111")
	b := courseFolderName("Leadership Fundamentals Program", "do_222222222222222222222")
	gt.Value(t, a).NotEqual(b)

	ma := moduleFolderName("Leadership Fundamentals Program", "do_111111111111111111111")
	mb := moduleFolderName("Leadership Fundamentals Program", "do_222222222222222222222")
	gt.Value(t, ma).NotEqual(mb)
}

func TestModulePaths(t *testing.T) {
	dir, file := modulePaths("/tmp/session/course", "Intro Module", "do_9876543210")
	gt.Value(t, dir).Equal("/tmp/session/course/Intro_Module_9876543210")
	gt.Value(t, file).Equal("/tmp/session/course/Intro_Module_9876543210/Intro_Module_9876543210.zip")
}
