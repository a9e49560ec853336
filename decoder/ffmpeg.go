package decoder

import (
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// NewFFmpeg constructs an Invoker that pulls the first embedded subtitle
// stream out of a container and writes it to stdout as SRT.
func NewFFmpeg(binary string, timeout time.Duration) (*Invoker, error) {
	return newInvoker(binary, timeout, FFmpegArgs)
}

// FFmpegArgs builds: -i <file> -f srt -map 0:s:0 pipe:1
func FFmpegArgs(filePath string) []string {
	return ffmpeg.Input(filePath).
		Output("pipe:1", ffmpeg.KwArgs{"map": "0:s:0", "f": "srt"}).
		GetArgs()
}
