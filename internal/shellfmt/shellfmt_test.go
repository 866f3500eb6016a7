package shellfmt

import "testing"

func TestRawFormatter(t *testing.T) {
	f := New(ModeRaw)
	got := f.FormatANSI("\x1b[36m", "test", "\x1b[0m")
	want := "\x1b[36mtest\x1b[0m"
	if got != want {
		t.Errorf("FormatANSI() = %q, want %q", got, want)
	}
}

func TestBashFormatter(t *testing.T) {
	f := New(ModeBash)
	got := f.FormatANSI("\x1b[36m", "test", "\x1b[0m")
	want := "\\[\x1b[36m\\]test\\[\x1b[0m\\]"
	if got != want {
		t.Errorf("FormatANSI() = %q, want %q", got, want)
	}
	if f.Finalize("a\nb") != "a\nb" {
		t.Errorf("bash Finalize should be identity")
	}
}

func TestZshFormatter(t *testing.T) {
	f := New(ModeZsh)
	got := f.FormatANSI("\x1b[36m", "test", "\x1b[0m")
	want := "%{\x1b[36m%}test%{\x1b[0m%}"
	if got != want {
		t.Errorf("FormatANSI() = %q, want %q", got, want)
	}

	if got := f.Finalize("line1\nline2"); got != "line1\\nline2" {
		t.Errorf("Finalize newline = %q, want %q", got, "line1\\nline2")
	}

	input := "%{\x1b[32m%}/path%{\x1b[0m%}\n$ "
	want = "%{\x1b[32m%}/path%{\x1b[0m%}\\n$ "
	if got := f.Finalize(input); got != want {
		t.Errorf("Finalize edge case = %q, want %q", got, want)
	}
}

func TestTcshFormatter(t *testing.T) {
	f := New(ModeTcsh)
	got := f.FormatANSI("\x1b[36m", "test", "\x1b[0m")
	want := "%{\x1b[36m%}test%{\x1b[0m%}"
	if got != want {
		t.Errorf("FormatANSI() = %q, want %q", got, want)
	}
}

func TestTcshFinalizeNewline(t *testing.T) {
	f := New(ModeTcsh)
	if got := f.Finalize("line1\nline2"); got != "line1\\nline2" {
		t.Errorf("Finalize() = %q, want %q", got, "line1\\nline2")
	}
}

func TestTcshFinalizeEdgeCase(t *testing.T) {
	f := New(ModeTcsh)
	input := "%{\x1b[32m%}/path%{\x1b[0m%}\n$ "
	want := "%{\x1b[32m%}/path%{\x1b[0m%} \\n$ "
	if got := f.Finalize(input); got != want {
		t.Errorf("Finalize() = %q, want %q", got, want)
	}
}

func TestTcshFinalizeExclamationEscaping(t *testing.T) {
	f := New(ModeTcsh)

	if got := f.Finalize("! "); got != "\\! " {
		t.Errorf("Finalize() = %q, want %q", got, "\\! ")
	}

	input := "%{\x1b[37m\x1b[1m%}!%{\x1b[0m%} "
	want := "%{\x1b[37m\x1b[1m%}\\!%{\x1b[0m%} "
	if got := f.Finalize(input); got != want {
		t.Errorf("Finalize() = %q, want %q", got, want)
	}
}

func TestTcshFinalizePercentEscaping(t *testing.T) {
	f := New(ModeTcsh)

	input := "%{\x1b[33m%}85%%{\x1b[0m%}"
	want := "%{\x1b[33m%}85%%%{\x1b[0m%}"
	if got := f.Finalize(input); got != want {
		t.Errorf("Finalize() = %q, want %q", got, want)
	}

	input = "100% complete"
	want = "100%% complete"
	if got := f.Finalize(input); got != want {
		t.Errorf("Finalize() = %q, want %q", got, want)
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in   string
		want Mode
		ok   bool
	}{
		{"", ModeRaw, true},
		{"raw", ModeRaw, true},
		{"bash", ModeBash, true},
		{"zsh", ModeZsh, true},
		{"tcsh", ModeTcsh, true},
		{"csh", ModeTcsh, true},
		{"fish", ModeRaw, false},
	}
	for _, tt := range tests {
		got, ok := ParseMode(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseMode(%q) = (%v, %v), want (%v, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
