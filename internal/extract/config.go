package extract

import "time"

// Config holds tunables for the metadata extractor.
type Config struct {
	// Timeout for a single exiftool invocation.
	Timeout time.Duration

	// BufferSize for streaming I/O. Zero selects a size-derived value.
	BufferSize int

	// MaxFileSize is the largest file the extractor will accept.
	MaxFileSize int64

	// WorkerCount bounds concurrent exiftool processes. Zero selects
	// GetOptimalWorkerCount().
	WorkerCount int

	// FastMode passes -fast to exiftool, skipping full-file scans.
	FastMode bool
}

// DefaultConfig returns the default extractor configuration.
func DefaultConfig() *Config {
	return &Config{
		Timeout:     30 * time.Second,
		BufferSize:  0,
		MaxFileSize: maxSupportedFileSize,
		WorkerCount: 0,
		FastMode:    false,
	}
}

// photoTags are the EXIF-class tags requested for photos.
var photoTags = []string{
	"DateTimeOriginal",
	"CreateDate",
	"DateTime",
	"Model",
	"CameraModelName",
	"LensModel",
	"LensID",
	"LensInfo",
	"ExposureTime",
	"ShutterSpeedValue",
	"FNumber",
	"Aperture",
	"ISO",
	"ISOSpeedRatings",
	"FocalLength",
	"FocalLengthIn35mmFilm",
	"GPSLatitude",
	"GPSLongitude",
	"ImageDescription",
	"UserComment",
	"ImageWidth",
	"ImageHeight",
	"Orientation",
	"ExposureCompensation",
	"FileType",
	"MIMEType",
}

// videoTags are the tags requested for video containers.
var videoTags = []string{
	"VideoCodec",
	"CompressorID",
	"AudioCodec",
	"VideoFrameRate",
	"FrameRate",
	"VideoBitrate",
	"OverallBitrate",
	"ImageWidth",
	"ImageHeight",
	"Duration",
	"CreateDate",
	"DateTimeOriginal",
	"MediaCreateDate",
	"Model",
	"Make",
	"GPSLatitude",
	"GPSLongitude",
	"Title",
	"Description",
	"FileType",
	"MIMEType",
}

// audioTags are the tags requested for audio files.
var audioTags = []string{
	"AudioCodec",
	"AudioFormat",
	"AudioBitrate",
	"Bitrate",
	"NominalBitrate",
	"SampleRate",
	"AudioSampleRate",
	"AudioChannels",
	"Channels",
	"Duration",
	"Artist",
	"AlbumArtist",
	"Album",
	"Title",
	"Genre",
	"Year",
	"Date",
	"Comment",
	"FileType",
	"MIMEType",
}
