package models

import (
	"encoding/json"
	"fmt"
)

// Tool names the backend PDF operation.
type Tool string

const (
	ToolMerge    Tool = "merge"
	ToolCompress Tool = "compress"
	ToolProtect  Tool = "protect"
)

// CompressionLevel is the compress tool's quality setting.
type CompressionLevel string

const (
	CompressionLow    CompressionLevel = "low"
	CompressionMedium CompressionLevel = "medium"
	CompressionHigh   CompressionLevel = "high"
)

// ParseCompressionLevel accepts low, medium or high. An empty string yields
// medium.
func ParseCompressionLevel(s string) (CompressionLevel, error) {
	switch CompressionLevel(s) {
	case "":
		return CompressionMedium, nil
	case CompressionLow, CompressionMedium, CompressionHigh:
		return CompressionLevel(s), nil
	default:
		return "", fmt.Errorf("unknown compression level %q", s)
	}
}

// PrintingPermission is one of none, low or high.
type PrintingPermission string

const (
	PrintingNone PrintingPermission = "none"
	PrintingLow  PrintingPermission = "low"
	PrintingHigh PrintingPermission = "high"
)

// Permissions are sent JSON-encoded in the protect form.
type Permissions struct {
	Printing    PrintingPermission `json:"printing"`
	Modifying   bool               `json:"modifying"`
	Copying     bool               `json:"copying"`
	FormFilling bool               `json:"formFilling"`
}

// DefaultPermissions allow high-quality printing and nothing else.
func DefaultPermissions() Permissions {
	return Permissions{Printing: PrintingHigh}
}

// ToolResult is a successful tool response. The backend names the URL field
// either download_urls or download_url and sends a string or a list.
// When the backend answers with the PDF itself, Inline holds the bytes.
type ToolResult struct {
	Message      string        `json:"message,omitempty"`
	DownloadURLs []string      `json:"download_urls"`
	UserUsage    *UsageMetrics `json:"user_usage,omitempty"`
	Inline       []byte        `json:"-"`
	InlineName   string        `json:"-"`
}

func (r *ToolResult) UnmarshalJSON(b []byte) error {
	var raw struct {
		Message      string          `json:"message"`
		DownloadURLs json.RawMessage `json:"download_urls"`
		DownloadURL  json.RawMessage `json:"download_url"`
		UserUsage    *UsageMetrics   `json:"user_usage"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	r.Message = raw.Message
	r.UserUsage = raw.UserUsage
	r.DownloadURLs = nil
	for _, field := range []json.RawMessage{raw.DownloadURLs, raw.DownloadURL} {
		urls, err := decodeURLList(field)
		if err != nil {
			return err
		}
		r.DownloadURLs = append(r.DownloadURLs, urls...)
	}
	return nil
}

func decodeURLList(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var one string
	if err := json.Unmarshal(raw, &one); err == nil {
		if one == "" {
			return nil, nil
		}
		return []string{one}, nil
	}
	var many []string
	if err := json.Unmarshal(raw, &many); err != nil {
		return nil, fmt.Errorf("decode download urls: %w", err)
	}
	return many, nil
}

// DownloadItem describes one result file before it is fetched.
type DownloadItem struct {
	URL            string
	FileName       string
	SizeKB         int64
	EstimatedPages int
}
