package names

import (
	"errors"
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantValid bool
		wantError string
	}{
		{"simple", "report.txt", true, ""},
		{"no extension", "README", true, ""},
		{"empty", "", false, MsgEmpty},
		{"only spaces", "   ", false, MsgEmpty},
		{"tab only", "\t", false, MsgEmpty},
		{"reserved upper", "CON", false, MsgReserved},
		{"reserved lower with ext", "con.txt", false, MsgReserved},
		{"reserved lpt", "LPT1", false, MsgReserved},
		{"reserved com9", "com9.log", false, MsgReserved},
		{"reserved nul double ext", "nul.tar.gz", false, MsgReserved},
		{"com0 is not reserved", "COM0", true, ""},
		{"prefix of reserved", "CONTRACT.txt", true, ""},
		{"reserved after dot", "file.con", true, ""},
		{"max length", strings.Repeat("a", 255), true, ""},
		{"too long", strings.Repeat("a", 256), false, MsgTooLong},
		{"multibyte at limit", strings.Repeat("é", 255), true, ""},
		{"single dot", ".", false, MsgInvalid},
		{"double dot", "..", false, MsgTrailing},
		{"dotfile", ".bashrc", true, ""},
		{"trailing dot", "file.", false, MsgTrailing},
		{"trailing space", "file ", false, MsgTrailing},
		{"leading space", " file", true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Validate(tt.input)
			if got.Valid != tt.wantValid {
				t.Errorf("Validate(%q).Valid = %v, want %v", tt.input, got.Valid, tt.wantValid)
			}
			if got.Error != tt.wantError {
				t.Errorf("Validate(%q).Error = %q, want %q", tt.input, got.Error, tt.wantError)
			}
		})
	}
}

func TestValidateIllegalCharacters(t *testing.T) {
	for _, c := range IllegalChars {
		for _, input := range []string{
			string(c) + "file.txt",
			"fi" + string(c) + "le.txt",
			"file.txt" + string(c),
		} {
			got := Validate(input)
			if got.Valid || got.Error != MsgIllegalChars {
				t.Errorf("Validate(%q) = %+v, want illegal characters", input, got)
			}
		}
	}
}

func TestValidatePrecedence(t *testing.T) {
	// Illegal characters are checked before reserved names and length
	if got := Validate("CON:" + strings.Repeat("a", 300)); got.Error != MsgIllegalChars {
		t.Errorf("expected illegal characters first, got %q", got.Error)
	}

	// Reserved names are checked before length
	if got := Validate("aux." + strings.Repeat("a", 300)); got.Error != MsgReserved {
		t.Errorf("expected reserved name before length, got %q", got.Error)
	}

	// Length is checked before the trailing dot rule
	if got := Validate(strings.Repeat("a", 300) + "."); got.Error != MsgTooLong {
		t.Errorf("expected length before trailing dot, got %q", got.Error)
	}
}

func TestValidateIsDeterministic(t *testing.T) {
	inputs := []string{"a.txt", "", "CON", "x.", strings.Repeat("b", 256)}
	for _, in := range inputs {
		if Validate(in) != Validate(in) {
			t.Errorf("Validate(%q) not deterministic", in)
		}
	}
}

func TestValidationResultErr(t *testing.T) {
	if err := Validate("ok.txt").Err(); err != nil {
		t.Errorf("expected nil error for valid name, got %v", err)
	}

	err := Validate("bad|name").Err()
	if !errors.Is(err, ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}
	if !strings.Contains(err.Error(), MsgIllegalChars) {
		t.Errorf("expected message in error, got %q", err.Error())
	}
}
