package useragent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		userAgent string
		expected  string
	}{
		{"empty", "", "unknown"},
		{"googlebot", "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)", "bot"},
		{"iphone", "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15", "mobile"},
		{"android phone", "Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 Mobile Safari/537.36", "mobile"},
		{"ipad", "Mozilla/5.0 (iPad; CPU OS 17_0 like Mac OS X) AppleWebKit/605.1.15", "tablet"},
		{"windows desktop", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/120.0 Safari/537.36", "desktop"},
		{"mac desktop", "Mozilla/5.0 (Macintosh; Intel Mac OS X 14_1) AppleWebKit/605.1.15 Safari/605.1.15", "desktop"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.userAgent))
		})
	}
}

func TestGetGlobalParser_NilBeforeInit(t *testing.T) {
	// The singleton may have been initialized by another test; only assert
	// that the accessor does not panic
	_ = GetGlobalParser()
}

func TestNewParser_MissingFile(t *testing.T) {
	_, err := NewParser("testdata/does-not-exist.yaml", zap.NewNop())
	assert.Error(t, err)
}
