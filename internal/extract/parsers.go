package extract

import (
	"fmt"
	"strconv"
	"strings"
)

// Tools disagree on tag names, so each logical field is resolved from a
// priority-ordered candidate list: most specific name first.
var (
	takenTimeFields = []string{
		"DateTimeOriginal",
		"CreateDate",
		"DateTime",
		"ModifyDate",
		"FileModifyDate",
		"DateTimeDigitized",
		"SubSecDateTimeOriginal",
		"GPSDateTime",
	}

	cameraModelFields = []string{"Model", "CameraModelName", "UniqueCameraModel"}

	lensModelFields = []string{"LensModel", "LensID", "LensInfo", "LensType", "Lens"}

	exposureTimeFields = []string{"ExposureTime", "ShutterSpeedValue", "ShutterSpeed"}

	fNumberFields = []string{"FNumber", "Aperture", "ApertureValue"}

	isoFields = []string{"ISO", "ISOSpeedRatings", "RecommendedExposureIndex"}

	focalLengthFields = []string{"FocalLength", "FocalLengthIn35mmFilm", "FocalLengthIn35mmFormat"}

	descriptionFields = []string{"ImageDescription", "UserComment", "XPComment", "Caption", "Description"}

	videoCodecFields = []string{"VideoCodec", "CompressorID", "AudioCodec", "VideoFormat"}

	videoBitrateFields = []string{"VideoBitrate", "Bitrate", "AudioBitrate", "OverallBitrate"}

	frameRateFields = []string{"VideoFrameRate", "FrameRate", "NominalFrameRate"}

	recordedTimeFields = []string{
		"CreateDate",
		"DateTimeOriginal",
		"MediaCreateDate",
		"TrackCreateDate",
		"ModifyDate",
		"FileModifyDate",
		"DateTimeDigitized",
	}

	videoCameraModelFields = []string{"Model", "Make", "CameraModelName", "RecorderModel"}

	videoDescriptionFields = []string{"Description", "Comment", "Title", "Synopsis"}

	audioCodecFields = []string{"AudioCodec", "AudioFormat", "FileTypeExtension", "AudioEncoding"}

	audioBitrateFields = []string{"AudioBitrate", "Bitrate", "NominalBitrate"}

	sampleRateFields = []string{"SampleRate", "AudioSampleRate", "SamplingRate"}

	channelsFields = []string{"AudioChannels", "Channels", "ChannelCount"}

	artistFields = []string{"Artist", "AlbumArtist", "Performer", "Author"}

	albumFields = []string{"Album", "AlbumTitle"}

	audioTitleFields = []string{"Title", "SongTitle", "TrackTitle"}

	genreFields = []string{"Genre", "ContentType"}

	yearFields = []string{"Year", "Date", "ReleaseDate", "RecordingDate"}

	audioDescriptionFields = []string{"Comment", "Description", "Lyrics", "Synopsis"}
)

// firstString returns the first non-empty normalized value among the
// candidate fields.
func firstString(raw map[string]string, fields []string) string {
	for _, field := range fields {
		if v, ok := raw[field]; ok {
			if n := normalizeString(v); n != "" {
				return n
			}
		}
	}
	return ""
}

func parsePhotoMetadata(raw map[string]string) *PhotoMetadata {
	m := &PhotoMetadata{}

	for _, field := range takenTimeFields {
		if v, ok := raw[field]; ok && v != "" {
			if t, err := parseDateTime(v); err == nil {
				m.TakenTime = &t
				break
			}
		}
	}

	m.CameraModel = firstString(raw, cameraModelFields)
	m.LensModel = firstString(raw, lensModelFields)
	m.ExposureTime = firstString(raw, exposureTimeFields)
	m.Description = firstString(raw, descriptionFields)

	for _, field := range fNumberFields {
		if v, ok := raw[field]; ok {
			if f, err := strconv.ParseFloat(v, 32); err == nil {
				m.FNumber = float32(f)
				break
			}
		}
	}

	for _, field := range isoFields {
		if v, ok := raw[field]; ok {
			if iso, err := strconv.Atoi(v); err == nil {
				m.IsoSpeed = iso
				break
			}
		}
	}

	for _, field := range focalLengthFields {
		if v, ok := raw[field]; ok {
			s := normalizeString(v)
			s = strings.TrimSuffix(s, " mm")
			s = strings.TrimSuffix(s, "mm")
			s = strings.TrimSpace(s)
			if f, err := strconv.ParseFloat(s, 32); err == nil {
				m.FocalLength = float32(f)
				break
			}
		}
	}

	if v, ok := raw["ExposureCompensation"]; ok {
		if f, err := strconv.ParseFloat(v, 32); err == nil {
			m.Exposure = float32(f)
		}
	}

	if lat, ok := raw["GPSLatitude"]; ok {
		if v, err := parseGPSCoordinate(lat); err == nil {
			m.GPSLatitude = v
		}
	}
	if lon, ok := raw["GPSLongitude"]; ok {
		if v, err := parseGPSCoordinate(lon); err == nil {
			m.GPSLongitude = v
		}
	}

	if w, okW := parseDimension(raw["ImageWidth"]); okW {
		if h, okH := parseDimension(raw["ImageHeight"]); okH && w > 0 && h > 0 {
			dw, dh := orientDimensions(w, h, raw["Orientation"])
			m.Dimensions = fmt.Sprintf("%dx%d", dw, dh)
			// Rounded integer megapixels.
			m.Resolution = fmt.Sprintf("%dMP", (w*h+500_000)/1_000_000)
		}
	}

	return m
}

func parseVideoMetadata(raw map[string]string) *VideoMetadata {
	m := &VideoMetadata{}

	m.Codec = firstString(raw, videoCodecFields)
	m.CameraModel = firstString(raw, videoCameraModelFields)
	m.Description = firstString(raw, videoDescriptionFields)

	for _, field := range videoBitrateFields {
		if v, ok := raw[field]; ok {
			if b, err := parseBitrate(v); err == nil {
				m.Bitrate = b
				break
			}
		}
	}

	for _, field := range frameRateFields {
		if v, ok := raw[field]; ok {
			if f, err := parseFrameRate(v); err == nil {
				m.FrameRate = f
				break
			}
		}
	}

	for _, field := range recordedTimeFields {
		if v, ok := raw[field]; ok && v != "" {
			if t, err := parseDateTime(v); err == nil {
				m.RecordedTime = &t
				break
			}
		}
	}

	if lat, ok := raw["GPSLatitude"]; ok {
		if v, err := parseGPSCoordinate(lat); err == nil {
			m.GPSLatitude = v
		}
	}
	if lon, ok := raw["GPSLongitude"]; ok {
		if v, err := parseGPSCoordinate(lon); err == nil {
			m.GPSLongitude = v
		}
	}

	return m
}

func parseAudioMetadata(raw map[string]string) *AudioMetadata {
	m := &AudioMetadata{}

	m.Codec = firstString(raw, audioCodecFields)
	m.Artist = firstString(raw, artistFields)
	m.Album = firstString(raw, albumFields)
	m.Title = firstString(raw, audioTitleFields)
	m.Genre = firstString(raw, genreFields)
	m.Description = firstString(raw, audioDescriptionFields)

	for _, field := range audioBitrateFields {
		if v, ok := raw[field]; ok {
			if b, err := parseBitrate(v); err == nil {
				m.Bitrate = b
				break
			}
		}
	}

	for _, field := range sampleRateFields {
		if v, ok := raw[field]; ok {
			if sr, err := parseSampleRate(v); err == nil {
				m.SampleRate = sr
				break
			}
		}
	}

	for _, field := range channelsFields {
		if v, ok := raw[field]; ok {
			if ch, err := strconv.Atoi(v); err == nil {
				m.Channels = ch
				break
			}
		}
	}

	for _, field := range yearFields {
		if v, ok := raw[field]; ok {
			if y, err := parseYear(v); err == nil {
				m.Year = y
				break
			}
		}
	}

	return m
}

// parseDimension extracts a pixel dimension from values like "4032" or
// "4032 pixels".
func parseDimension(s string) (int, bool) {
	s = normalizeString(s)
	if s == "" {
		return 0, false
	}
	if fields := strings.Fields(s); len(fields) > 0 {
		s = fields[0]
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v, true
	}
	var digits strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		} else if digits.Len() > 0 {
			break
		}
	}
	if digits.Len() == 0 {
		return 0, false
	}
	v, err := strconv.Atoi(digits.String())
	if err != nil {
		return 0, false
	}
	return v, true
}

// orientDimensions swaps width and height when the Orientation tag says
// the image is stored rotated 90 or 270 degrees.
func orientDimensions(width, height int, orientation string) (int, int) {
	o := strings.ToLower(strings.TrimSpace(orientation))
	if o == "" {
		return width, height
	}

	// Numeric EXIF orientation codes: 5-8 are the rotated ones.
	if len(o) == 1 && o >= "1" && o <= "8" {
		if o >= "5" {
			return height, width
		}
		return width, height
	}

	if strings.Contains(o, "rotate 90") || strings.Contains(o, "rotate 270") {
		return height, width
	}
	return width, height
}
