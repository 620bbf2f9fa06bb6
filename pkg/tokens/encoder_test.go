package tokens

import "testing"

func TestMockEncoder_Count(t *testing.T) {
	var enc mockEncoder

	tests := []struct {
		name     string
		text     string
		expected int
	}{
		{name: "empty string", text: "", expected: 0},
		{name: "short text", text: "Hello", expected: 1},
		{name: "medium text", text: "This is a test message", expected: 5},
		{name: "long text", text: "This is a very long text that should produce multiple tokens when counted", expected: 18},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			count, err := enc.Count(tt.text)
			if err != nil {
				t.Fatalf("Count returned error: %v", err)
			}
			if count != tt.expected {
				t.Errorf("Count(%q) = %d, want %d", tt.text, count, tt.expected)
			}
		})
	}
}

func TestDefaultEncoder_Smoke(t *testing.T) {
	enc := DefaultEncoder()
	if enc == nil {
		t.Fatal("DefaultEncoder returned nil")
	}

	count, err := enc.Count("multiplies its input by a fixed factor k")
	if err != nil {
		t.Fatalf("Count returned error: %v", err)
	}
	if count <= 0 {
		t.Errorf("Count of a non-empty description = %d, want > 0", count)
	}
}

func TestDefaultEncoder_Singleton(t *testing.T) {
	if DefaultEncoder() != DefaultEncoder() {
		t.Error("DefaultEncoder should return the same instance on repeated calls")
	}
}
