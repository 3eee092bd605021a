package cas

import (
	"encoding/hex"
	"errors"
	"testing"

	"github.com/zeebo/blake3"

	"github.com/FocuswithJustin/poslavu/core/result"
)

// TestSum verifies both digests against direct library calls.
func TestSum(t *testing.T) {
	data := []byte("<result><id>42</id></result>")
	got := Sum(data)

	h := blake3.Sum256(data)
	if want := hex.EncodeToString(h[:]); got.BLAKE3 != want {
		t.Errorf("BLAKE3 = %s, want %s", got.BLAKE3, want)
	}
	if got.SHA256 != Hash(data) {
		t.Errorf("SHA256 = %s, want %s", got.SHA256, Hash(data))
	}
}

// TestHashKnownVector checks SHA-256 of the empty string.
func TestHashKnownVector(t *testing.T) {
	want := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if got := Hash(nil); got != want {
		t.Errorf("Hash(nil) = %s, want %s", got, want)
	}
}

// TestFingerprintDependsOnOrder verifies that field order changes the digest.
func TestFingerprintDependsOnOrder(t *testing.T) {
	a, _ := result.FromFields(result.Field{Key: "x", Value: 1}, result.Field{Key: "y", Value: 2})
	b, _ := result.FromFields(result.Field{Key: "x", Value: 1}, result.Field{Key: "y", Value: 2})
	c, _ := result.FromFields(result.Field{Key: "y", Value: 2}, result.Field{Key: "x", Value: 1})

	fa, err := Fingerprint(a)
	if err != nil {
		t.Fatalf("Fingerprint failed: %v", err)
	}
	fb, _ := Fingerprint(b)
	fc, _ := Fingerprint(c)

	if fa != fb {
		t.Error("identical records should share a fingerprint")
	}
	if fa == fc {
		t.Error("reordered records should not share a fingerprint")
	}
}

// TestFingerprintInvalidRecord verifies serialization errors propagate.
func TestFingerprintInvalidRecord(t *testing.T) {
	r := result.New()
	r.SetString("bad key", "x")
	if _, err := Fingerprint(r); err == nil {
		t.Error("Fingerprint should fail for an unrenderable key")
	}
}

// TestMatches covers verification against full and partial hash results.
func TestMatches(t *testing.T) {
	data := []byte("<result/>")
	full := Sum(data)

	tests := []struct {
		name    string
		h       HashResult
		data    []byte
		want    bool
		wantErr error
	}{
		{"full match", full, data, true, nil},
		{"full mismatch", full, []byte("<result></result>"), false, nil},
		{"blake3 only", HashResult{BLAKE3: full.BLAKE3}, data, true, nil},
		{"sha256 only", HashResult{SHA256: full.SHA256}, data, true, nil},
		{"empty", HashResult{}, data, false, ErrInvalidHash},
		{"malformed", HashResult{BLAKE3: "xyz"}, data, false, ErrInvalidHash},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.h.Matches(tt.data)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Matches() error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}
