package extract

import (
	"testing"
	"time"
)

func TestParsePhotoMetadata(t *testing.T) {
	raw := map[string]string{
		"DateTimeOriginal":     "2023:06:15 14:30:00",
		"Model":                "Canon EOS R5",
		"LensModel":            "RF24-70mm F2.8 L IS USM",
		"ExposureTime":         "1/250",
		"FNumber":              "2.8",
		"ISO":                  "400",
		"FocalLength":          "50.0 mm",
		"ExposureCompensation": "-0.3",
		"GPSLatitude":          "30.2326 N",
		"GPSLongitude":         "97.7429 W",
		"ImageDescription":     "Sunset over the lake",
		"ImageWidth":           "4032",
		"ImageHeight":          "3024",
	}

	m := parsePhotoMetadata(raw)

	wantTime := time.Date(2023, 6, 15, 14, 30, 0, 0, time.UTC)
	if m.TakenTime == nil || !m.TakenTime.Equal(wantTime) {
		t.Errorf("TakenTime = %v, want %v", m.TakenTime, wantTime)
	}
	if m.CameraModel != "Canon EOS R5" {
		t.Errorf("CameraModel = %q", m.CameraModel)
	}
	if m.LensModel != "RF24-70mm F2.8 L IS USM" {
		t.Errorf("LensModel = %q", m.LensModel)
	}
	if m.ExposureTime != "1/250" {
		t.Errorf("ExposureTime = %q", m.ExposureTime)
	}
	if m.FNumber != 2.8 {
		t.Errorf("FNumber = %v", m.FNumber)
	}
	if m.IsoSpeed != 400 {
		t.Errorf("IsoSpeed = %d", m.IsoSpeed)
	}
	if m.FocalLength != 50.0 {
		t.Errorf("FocalLength = %v", m.FocalLength)
	}
	if m.GPSLatitude != 30.2326 {
		t.Errorf("GPSLatitude = %v", m.GPSLatitude)
	}
	if m.GPSLongitude != -97.7429 {
		t.Errorf("GPSLongitude = %v", m.GPSLongitude)
	}
	if m.Description != "Sunset over the lake" {
		t.Errorf("Description = %q", m.Description)
	}
	// 4032 x 3024 = 12.19 megapixels, rounded to 12.
	if m.Resolution != "12MP" {
		t.Errorf("Resolution = %q, want 12MP", m.Resolution)
	}
	if m.Dimensions != "4032x3024" {
		t.Errorf("Dimensions = %q, want 4032x3024", m.Dimensions)
	}
}

func TestParsePhotoMetadataFieldPriority(t *testing.T) {
	// DateTimeOriginal outranks CreateDate; Model outranks CameraModelName.
	raw := map[string]string{
		"CreateDate":       "2020:01:01 00:00:00",
		"DateTimeOriginal": "2023:06:15 14:30:00",
		"CameraModelName":  "Generic Camera",
		"Model":            "Canon EOS R5",
	}

	m := parsePhotoMetadata(raw)
	if m.TakenTime == nil || m.TakenTime.Year() != 2023 {
		t.Errorf("Expected DateTimeOriginal to win, got %v", m.TakenTime)
	}
	if m.CameraModel != "Canon EOS R5" {
		t.Errorf("Expected Model to win, got %q", m.CameraModel)
	}
}

func TestParsePhotoMetadataEmpty(t *testing.T) {
	m := parsePhotoMetadata(map[string]string{})
	if m == nil {
		t.Fatal("Expected non-nil metadata for empty input")
	}
	if m.TakenTime != nil || m.CameraModel != "" || m.FNumber != 0 {
		t.Error("Expected zero-valued metadata for empty input")
	}
}

func TestOrientDimensions(t *testing.T) {
	tests := []struct {
		name        string
		orientation string
		wantW       int
		wantH       int
	}{
		{"No orientation", "", 4032, 3024},
		{"Normal", "Horizontal (normal)", 4032, 3024},
		{"Rotate 90 CW", "Rotate 90 CW", 3024, 4032},
		{"Rotate 270 CW", "Rotate 270 CW", 3024, 4032},
		{"Rotate 180", "Rotate 180", 4032, 3024},
		{"Numeric 6", "6", 3024, 4032},
		{"Numeric 1", "1", 4032, 3024},
		{"Numeric 8", "8", 3024, 4032},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := orientDimensions(4032, 3024, tt.orientation)
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("orientDimensions(4032, 3024, %q) = %dx%d, want %dx%d",
					tt.orientation, w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestParseVideoMetadata(t *testing.T) {
	raw := map[string]string{
		"CompressorID":   "avc1",
		"VideoFrameRate": "29.97",
		"OverallBitrate": "8 Mbps",
		"CreateDate":     "2023:06:15 14:30:00",
		"Model":          "iPhone 14 Pro",
		"Title":          "Beach day",
	}

	m := parseVideoMetadata(raw)
	if m.Codec != "avc1" {
		t.Errorf("Codec = %q", m.Codec)
	}
	if m.FrameRate != 29.97 {
		t.Errorf("FrameRate = %v", m.FrameRate)
	}
	if m.Bitrate != 8000000 {
		t.Errorf("Bitrate = %d", m.Bitrate)
	}
	if m.RecordedTime == nil || m.RecordedTime.Year() != 2023 {
		t.Errorf("RecordedTime = %v", m.RecordedTime)
	}
	if m.CameraModel != "iPhone 14 Pro" {
		t.Errorf("CameraModel = %q", m.CameraModel)
	}
	if m.Description != "Beach day" {
		t.Errorf("Description = %q", m.Description)
	}
}

func TestParseAudioMetadata(t *testing.T) {
	raw := map[string]string{
		"AudioFormat":   "mp3",
		"AudioBitrate":  "320 kbps",
		"SampleRate":    "44100",
		"AudioChannels": "2",
		"Artist":        "The Example Band",
		"Album":         "Greatest Hits",
		"Title":         "Opening Track",
		"Genre":         "Rock",
		"Year":          "1998",
	}

	m := parseAudioMetadata(raw)
	if m.Codec != "mp3" {
		t.Errorf("Codec = %q", m.Codec)
	}
	if m.Bitrate != 320000 {
		t.Errorf("Bitrate = %d", m.Bitrate)
	}
	if m.SampleRate != 44100 {
		t.Errorf("SampleRate = %d", m.SampleRate)
	}
	if m.Channels != 2 {
		t.Errorf("Channels = %d", m.Channels)
	}
	if m.Artist != "The Example Band" {
		t.Errorf("Artist = %q", m.Artist)
	}
	if m.Album != "Greatest Hits" {
		t.Errorf("Album = %q", m.Album)
	}
	if m.Title != "Opening Track" {
		t.Errorf("Title = %q", m.Title)
	}
	if m.Genre != "Rock" {
		t.Errorf("Genre = %q", m.Genre)
	}
	if m.Year != 1998 {
		t.Errorf("Year = %d", m.Year)
	}
}

func TestParseDimension(t *testing.T) {
	tests := []struct {
		input string
		want  int
		ok    bool
	}{
		{"4032", 4032, true},
		{"4032 pixels", 4032, true},
		{"", 0, false},
		{"wide", 0, false},
	}

	for _, tt := range tests {
		got, ok := parseDimension(tt.input)
		if ok != tt.ok || got != tt.want {
			t.Errorf("parseDimension(%q) = (%d, %v), want (%d, %v)", tt.input, got, ok, tt.want, tt.ok)
		}
	}
}
