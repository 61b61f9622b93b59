package probe

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"hollywoo/internal/models"
)

// FFProbe runs the ffprobe binary and reads its JSON report
type FFProbe struct {
	Path    string
	Timeout time.Duration
}

// NewFFProbe creates an FFProbe. An empty path means "ffprobe" from $PATH.
func NewFFProbe(path string, timeout time.Duration) *FFProbe {
	if path == "" {
		path = "ffprobe"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &FFProbe{Path: path, Timeout: timeout}
}

type ffprobeOutput struct {
	Streams []ffprobeStream `json:"streams"`
	Format  ffprobeFormat   `json:"format"`
}

type ffprobeStream struct {
	CodecType   string `json:"codec_type"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Disposition struct {
		AttachedPic int `json:"attached_pic"`
	} `json:"disposition"`
}

type ffprobeFormat struct {
	Duration string            `json:"duration"`
	Tags     map[string]string `json:"tags"`
}

// Probe runs ffprobe on path
func (f *FFProbe) Probe(ctx context.Context, path string) (*models.Metadata, error) {
	ctx, cancel := context.WithTimeout(ctx, f.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, f.Path,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("ffprobe timed out after %v", f.Timeout)
		}
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}

	return parseFFProbe(stdout.Bytes())
}

// parseFFProbe turns ffprobe's JSON report into Metadata
func parseFFProbe(data []byte) (*models.Metadata, error) {
	var out ffprobeOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to decode ffprobe output: %w", err)
	}

	md := &models.Metadata{}

	for _, s := range out.Streams {
		// cover art shows up as a video stream
		if s.CodecType != "video" || s.Disposition.AttachedPic == 1 {
			continue
		}
		if s.Width > 0 && s.Height > 0 {
			md.Resolution = &models.Resolution{Width: s.Width, Height: s.Height}
		}
		break
	}

	if out.Format.Duration != "" {
		secs, err := strconv.ParseFloat(out.Format.Duration, 64)
		if err == nil && secs > 0 && !math.IsInf(secs, 0) {
			ms := int64(math.Round(secs * 1000))
			if ms > 0 {
				md.Duration = &ms
			}
		}
	}

	// matroska writes upper case tag names
	for k, v := range out.Format.Tags {
		if strings.EqualFold(k, "title") {
			md.Title = strings.TrimSpace(v)
			break
		}
	}

	return md, nil
}
