package mediatypes

import "testing"

func TestGetAssetType(t *testing.T) {
	tests := []struct {
		ext      string
		expected AssetType
	}{
		{".jpg", AssetTypePhoto},
		{".jpeg", AssetTypePhoto},
		{".heic", AssetTypePhoto},
		{".dng", AssetTypePhoto},
		{".mp4", AssetTypeVideo},
		{".mkv", AssetTypeVideo},
		{".mov", AssetTypeVideo},
		{".mp3", AssetTypeAudio},
		{".flac", AssetTypeAudio},
		{".opus", AssetTypeAudio},
		{".txt", AssetTypeUnknown},
		{".exe", AssetTypeUnknown},
		{"", AssetTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			if got := GetAssetType(tt.ext); got != tt.expected {
				t.Errorf("GetAssetType(%q) = %v, want %v", tt.ext, got, tt.expected)
			}
		})
	}
}

func TestAssetTypeValid(t *testing.T) {
	valid := []AssetType{AssetTypePhoto, AssetTypeVideo, AssetTypeAudio}
	for _, at := range valid {
		if !at.Valid() {
			t.Errorf("%v.Valid() = false, want true", at)
		}
	}

	invalid := []AssetType{AssetTypeUnknown, AssetType(""), AssetType("DOCUMENT")}
	for _, at := range invalid {
		if at.Valid() {
			t.Errorf("%v.Valid() = true, want false", at)
		}
	}
}

func TestGetMimeType(t *testing.T) {
	tests := []struct {
		ext      string
		expected string
	}{
		{".jpg", "image/jpeg"},
		{".mp4", "video/mp4"},
		{".flac", "audio/flac"},
		{".unknown", "application/octet-stream"},
		{"", "application/octet-stream"},
	}

	for _, tt := range tests {
		if got := GetMimeType(tt.ext); got != tt.expected {
			t.Errorf("GetMimeType(%q) = %q, want %q", tt.ext, got, tt.expected)
		}
	}
}

func TestIsMediaFile(t *testing.T) {
	if !IsMediaFile(".jpg") {
		t.Error("IsMediaFile(.jpg) = false, want true")
	}
	if !IsMediaFile(".wav") {
		t.Error("IsMediaFile(.wav) = false, want true")
	}
	if IsMediaFile(".pdf") {
		t.Error("IsMediaFile(.pdf) = true, want false")
	}
}
