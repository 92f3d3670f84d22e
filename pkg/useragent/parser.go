package useragent

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/ua-parser/uap-go/uaparser"
	"go.uber.org/zap"
)

// Parser wraps the User-Agent parser with device type classification
type Parser struct {
	parser *uaparser.Parser
	log    *zap.Logger
}

// DeviceInfo represents parsed device information
type DeviceInfo struct {
	DeviceType string // mobile, desktop, tablet, bot, unknown
	Browser    string // Chrome, Firefox, Safari, etc.
	OS         string // Windows, iOS, Android, etc.
	Raw        string // Original User-Agent string
}

var (
	globalParser *Parser
	once         sync.Once
)

// NewParser creates a new User-Agent parser from a uap-core regexes file
func NewParser(regexFilePath string, log *zap.Logger) (*Parser, error) {
	regexBytes, err := os.ReadFile(regexFilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read regexes file %s: %w", regexFilePath, err)
	}

	parser, err := uaparser.NewFromBytes(regexBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to create User-Agent parser: %w", err)
	}

	log.Info("User-Agent parser initialized", zap.String("regexes_file", regexFilePath))

	return &Parser{
		parser: parser,
		log:    log,
	}, nil
}

// InitGlobalParser initializes the singleton parser instance
func InitGlobalParser(regexFilePath string, log *zap.Logger) error {
	var err error
	once.Do(func() {
		globalParser, err = NewParser(regexFilePath, log)
	})
	return err
}

// GetGlobalParser returns the singleton parser instance, nil if not initialized
func GetGlobalParser() *Parser {
	return globalParser
}

// ParseUserAgent parses a User-Agent string into device information
func (p *Parser) ParseUserAgent(userAgent string) *DeviceInfo {
	if userAgent == "" {
		return &DeviceInfo{DeviceType: "unknown", Browser: "unknown", OS: "unknown"}
	}

	client := p.parser.Parse(userAgent)

	return &DeviceInfo{
		DeviceType: p.classify(client, userAgent),
		Browser:    orUnknown(client.UserAgent.Family),
		OS:         orUnknown(client.Os.Family),
		Raw:        userAgent,
	}
}

// classify maps parsed client info to a coarse device type
func (p *Parser) classify(client *uaparser.Client, userAgent string) string {
	if isBot(client.UserAgent.Family, userAgent) {
		return "bot"
	}

	osFamily := client.Os.Family
	switch {
	case strings.Contains(osFamily, "iOS"):
		if strings.Contains(userAgent, "iPad") {
			return "tablet"
		}
		return "mobile"
	case strings.Contains(osFamily, "Android"):
		// Android tablets typically omit "Mobile" from the User-Agent
		if !strings.Contains(userAgent, "Mobile") {
			return "tablet"
		}
		return "mobile"
	}

	device := client.Device.Family
	if containsAny(device, "iPad", "Tablet", "Kindle", "Surface") {
		return "tablet"
	}
	if containsAny(device, "iPhone", "Phone", "Mobile", "BlackBerry") {
		return "mobile"
	}

	if containsAny(osFamily, "Windows", "Mac OS X", "macOS", "Linux", "Ubuntu", "Chrome OS", "FreeBSD") {
		return "desktop"
	}

	return "unknown"
}

// Classify is a fallback classifier used when no regexes file is available
func Classify(userAgent string) string {
	ua := strings.ToLower(userAgent)
	switch {
	case ua == "":
		return "unknown"
	case strings.Contains(ua, "bot") || strings.Contains(ua, "spider") || strings.Contains(ua, "crawler"):
		return "bot"
	case strings.Contains(ua, "tablet") || strings.Contains(ua, "ipad"):
		return "tablet"
	case strings.Contains(ua, "mobile") || strings.Contains(ua, "android") || strings.Contains(ua, "iphone"):
		return "mobile"
	default:
		return "desktop"
	}
}

func isBot(uaFamily, userAgent string) bool {
	indicators := []string{
		"Googlebot", "Bingbot", "Slurp", "DuckDuckBot", "Baiduspider",
		"YandexBot", "facebookexternalhit", "Twitterbot", "LinkedInBot",
		"WhatsApp", "TelegramBot", "bot", "crawler", "spider", "scraper",
	}
	for _, indicator := range indicators {
		lowered := strings.ToLower(indicator)
		if strings.Contains(strings.ToLower(uaFamily), lowered) ||
			strings.Contains(strings.ToLower(userAgent), lowered) {
			return true
		}
	}
	return false
}

func containsAny(s string, substrings ...string) bool {
	for _, substr := range substrings {
		if strings.Contains(s, substr) {
			return true
		}
	}
	return false
}

func orUnknown(s string) string {
	if s == "" || s == "Other" {
		return "unknown"
	}
	return s
}
