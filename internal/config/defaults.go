package config

const (
	defaultDataDir              = "~/.local/share/clipper"
	defaultAPIBind              = "127.0.0.1:8000"
	defaultCORSOrigin           = "http://localhost:5173"
	defaultAudioWindow          = 0.25
	defaultAudioMultiplier      = 2.5
	defaultFrameSkip            = 6
	defaultVisualThreshold      = 30.0
	defaultMinGap               = 180
	defaultMatchWindow          = 1.5
	defaultSampleRate           = 44100
	defaultROIX                 = 800
	defaultROIY                 = 600
	defaultROIW                 = 300
	defaultROIH                 = 100
	defaultClipDuration         = 30
	defaultWhisperXModel        = "small"
	defaultFFmpegBinary         = "ffmpeg"
	defaultFFprobeBinary        = "ffprobe"
	defaultUVXBinary            = "uvx"
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
	defaultLogRetentionDays     = 30
	defaultPruneSchedule        = "@daily"
	defaultHistoryRetentionDays = 90
	defaultVODRetentionDays     = 7
	defaultNtfyTimeout          = 10
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:     defaultDataDir,
			APIBind:     defaultAPIBind,
			CORSOrigins: []string{defaultCORSOrigin},
		},
		Detection: Detection{
			AudioWindow:     defaultAudioWindow,
			AudioMultiplier: defaultAudioMultiplier,
			FrameSkip:       defaultFrameSkip,
			VisualThreshold: defaultVisualThreshold,
			MinGap:          defaultMinGap,
			MatchWindow:     defaultMatchWindow,
			SampleRate:      defaultSampleRate,
			ROIX:            defaultROIX,
			ROIY:            defaultROIY,
			ROIW:            defaultROIW,
			ROIH:            defaultROIH,
		},
		Clips: Clips{
			Duration: defaultClipDuration,
		},
		Transcription: Transcription{
			WhisperXModel: defaultWhisperXModel,
		},
		Tools: Tools{
			FFmpeg:  defaultFFmpegBinary,
			FFprobe: defaultFFprobeBinary,
			UVX:     defaultUVXBinary,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
		Maintenance: Maintenance{
			PruneSchedule:        defaultPruneSchedule,
			HistoryRetentionDays: defaultHistoryRetentionDays,
			VODRetentionDays:     defaultVODRetentionDays,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNtfyTimeout,
		},
	}
}
