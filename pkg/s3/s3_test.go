package s3

import (
	"strings"
	"testing"
	"time"
)

func TestCaptureKey(t *testing.T) {
	day := time.Now().UTC().Format("2006/01/02")

	tests := []struct {
		name     string
		fileName string
		want     string
	}{
		{name: "keeps extension", fileName: "selfie.jpg", want: "captures/" + day + "/sess-1.jpg"},
		{name: "lowercases extension", fileName: "SELFIE.PNG", want: "captures/" + day + "/sess-1.png"},
		{name: "defaults to png", fileName: "blob", want: "captures/" + day + "/sess-1.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := captureKey("captures", "sess-1", tt.fileName); got != tt.want {
				t.Errorf("captureKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractKeyFromS3Url(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{url: "https://bucket.s3.ap-southeast-1.amazonaws.com/captures/2026/10/17/sess-1.png", want: "captures/2026/10/17/sess-1.png"},
		{url: "captures/sess-1.png", want: "captures/sess-1.png"},
	}

	for _, tt := range tests {
		if got := extractKeyFromS3Url(tt.url); got != tt.want {
			t.Errorf("extractKeyFromS3Url(%q) = %q, want %q", tt.url, got, tt.want)
		}
		if strings.HasPrefix(extractKeyFromS3Url(tt.url), "/") {
			t.Errorf("key for %q should not start with a slash", tt.url)
		}
	}
}
