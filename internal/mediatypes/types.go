package mediatypes

// AssetType classifies a media file by its content category.
type AssetType string

const (
	// AssetTypePhoto represents a still image.
	AssetTypePhoto AssetType = "PHOTO"
	// AssetTypeVideo represents a video file.
	AssetTypeVideo AssetType = "VIDEO"
	// AssetTypeAudio represents an audio file.
	AssetTypeAudio AssetType = "AUDIO"
	// AssetTypeUnknown represents an unrecognized file type.
	AssetTypeUnknown AssetType = "UNKNOWN"
)

// Valid reports whether t is one of the processable asset types.
func (t AssetType) Valid() bool {
	switch t {
	case AssetTypePhoto, AssetTypeVideo, AssetTypeAudio:
		return true
	}
	return false
}

// PhotoExtensions maps file extensions to whether they are supported photo formats.
var PhotoExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
	".tiff": true,
	".tif":  true,
	".heic": true,
	".heif": true,
	".dng":  true,
	".cr2":  true,
	".nef":  true,
	".arw":  true,
}

// VideoExtensions maps file extensions to whether they are supported video formats.
var VideoExtensions = map[string]bool{
	".mp4":  true,
	".mkv":  true,
	".avi":  true,
	".mov":  true,
	".wmv":  true,
	".flv":  true,
	".webm": true,
	".m4v":  true,
	".mpeg": true,
	".mpg":  true,
	".3gp":  true,
	".ts":   true,
}

// AudioExtensions maps file extensions to whether they are supported audio formats.
var AudioExtensions = map[string]bool{
	".mp3":  true,
	".wav":  true,
	".ogg":  true,
	".flac": true,
	".aac":  true,
	".m4a":  true,
	".wma":  true,
	".opus": true,
}

// MimeTypes maps file extensions to their MIME types.
var MimeTypes = map[string]string{
	// Photos
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".webp": "image/webp",
	".tiff": "image/tiff",
	".tif":  "image/tiff",
	".heic": "image/heic",
	".heif": "image/heif",
	".dng":  "image/x-adobe-dng",

	// Videos
	".mp4":  "video/mp4",
	".mkv":  "video/x-matroska",
	".avi":  "video/x-msvideo",
	".mov":  "video/quicktime",
	".wmv":  "video/x-ms-wmv",
	".flv":  "video/x-flv",
	".webm": "video/webm",
	".m4v":  "video/x-m4v",
	".mpeg": "video/mpeg",
	".mpg":  "video/mpeg",
	".3gp":  "video/3gpp",
	".ts":   "video/mp2t",

	// Audio
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".ogg":  "audio/ogg",
	".flac": "audio/flac",
	".aac":  "audio/aac",
	".m4a":  "audio/mp4",
	".wma":  "audio/x-ms-wma",
	".opus": "audio/opus",
}

// GetAssetType returns the AssetType for a given file extension.
// The extension should be lowercase and include the leading dot (e.g., ".jpg").
// Returns AssetTypeUnknown if the extension is not recognized.
func GetAssetType(ext string) AssetType {
	if PhotoExtensions[ext] {
		return AssetTypePhoto
	}
	if VideoExtensions[ext] {
		return AssetTypeVideo
	}
	if AudioExtensions[ext] {
		return AssetTypeAudio
	}
	return AssetTypeUnknown
}

// GetMimeType returns the MIME type for a given file extension.
// The extension should be lowercase and include the leading dot (e.g., ".jpg").
// Returns "application/octet-stream" if the extension is not recognized.
func GetMimeType(ext string) string {
	if mime, ok := MimeTypes[ext]; ok {
		return mime
	}
	return "application/octet-stream"
}

// IsMediaFile returns true if the extension represents a supported media file.
func IsMediaFile(ext string) bool {
	return GetAssetType(ext) != AssetTypeUnknown
}
