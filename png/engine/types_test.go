package engine

import "testing"

func TestSignature(t *testing.T) {
	sig := Signature()
	if len(sig) != SignatureLen || sig[0] != 0x89 || string(sig[1:4]) != "PNG" {
		t.Fatalf("Signature() = %x", sig)
	}

	// Callers get a copy; scribbling on it changes nothing.
	sig[1] = 'X'
	if got := Signature(); got[1] != 'P' {
		t.Errorf("Signature() shares storage with an earlier result")
	}
	if !HasSignature(Signature()) {
		t.Errorf("HasSignature rejects the signature after a caller mutated a copy")
	}
}

func TestHasSignature(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want bool
	}{
		{"exact", Signature(), true},
		{"with trailing data", append(Signature(), 0, 0, 0, 13), true},
		{"nil", nil, false},
		{"short", Signature()[:7], false},
		{"crlf damaged", []byte{0x89, 'P', 'N', 'G', '\n', '\n', 0x1a, '\n'}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasSignature(tt.data); got != tt.want {
				t.Errorf("HasSignature() = %v, want %v", got, tt.want)
			}
		})
	}
}
