package browser

import "testing"

func TestIsAdDomain(t *testing.T) {
	tests := []struct {
		host string
		want bool
	}{
		{"doubleclick.net", true},
		{"ad.doubleclick.net", true},
		{"pagead2.googlesyndication.com", true},
		{"GOOGLE-ANALYTICS.COM", true},
		{"example.com", false},
		{"notdoubleclick.net", false},
		{"doubleclick.net.evil.com", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := isAdDomain(tt.host); got != tt.want {
			t.Errorf("isAdDomain(%q) = %v, want %v", tt.host, got, tt.want)
		}
	}
}
