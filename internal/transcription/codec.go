package transcription

import (
	"path/filepath"
	"strings"
)

// Codec is the encoding hint sent with the audio.
type Codec int

const (
	CodecUnspecified Codec = iota
	CodecPCM16
	CodecMP3
	CodecOpusWebM
)

func (c Codec) String() string {
	switch c {
	case CodecPCM16:
		return "pcm16"
	case CodecMP3:
		return "mp3"
	case CodecOpusWebM:
		return "opus-webm"
	default:
		return "unspecified"
	}
}

// Ext is the canonical file extension for the codec, "" when unspecified.
func (c Codec) Ext() string {
	switch c {
	case CodecPCM16:
		return ".wav"
	case CodecMP3:
		return ".mp3"
	case CodecOpusWebM:
		return ".webm"
	default:
		return ""
	}
}

// CodecFromFilename picks the codec from the file extension. Unknown
// extensions are left for the speech service to detect.
func CodecFromFilename(name string) Codec {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".wav":
		return CodecPCM16
	case ".mp3":
		return CodecMP3
	case ".webm":
		return CodecOpusWebM
	default:
		return CodecUnspecified
	}
}
