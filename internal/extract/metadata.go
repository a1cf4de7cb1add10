package extract

import "time"

// PhotoMetadata holds the EXIF-derived fields kept for photos.
type PhotoMetadata struct {
	TakenTime    *time.Time `json:"taken_time,omitempty"`
	CameraModel  string     `json:"camera_model,omitempty"`
	LensModel    string     `json:"lens_model,omitempty"`
	ExposureTime string     `json:"exposure_time,omitempty"`
	FNumber      float32    `json:"f_number,omitempty"`
	IsoSpeed     int        `json:"iso_speed,omitempty"`
	FocalLength  float32    `json:"focal_length,omitempty"`
	Exposure     float32    `json:"exposure,omitempty"`
	GPSLatitude  float64    `json:"gps_latitude,omitempty"`
	GPSLongitude float64    `json:"gps_longitude,omitempty"`
	Description  string     `json:"description,omitempty"`
	Resolution   string     `json:"resolution,omitempty"`
	Dimensions   string     `json:"dimensions,omitempty"`
}

// VideoMetadata holds the container-derived fields kept for videos.
type VideoMetadata struct {
	Codec        string     `json:"codec,omitempty"`
	Bitrate      int        `json:"bitrate,omitempty"`
	FrameRate    float64    `json:"frame_rate,omitempty"`
	RecordedTime *time.Time `json:"recorded_time,omitempty"`
	CameraModel  string     `json:"camera_model,omitempty"`
	GPSLatitude  float64    `json:"gps_latitude,omitempty"`
	GPSLongitude float64    `json:"gps_longitude,omitempty"`
	Description  string     `json:"description,omitempty"`
}

// AudioMetadata holds the tag-derived fields kept for audio files.
type AudioMetadata struct {
	Codec       string `json:"codec,omitempty"`
	Bitrate     int    `json:"bitrate,omitempty"`
	SampleRate  int    `json:"sample_rate,omitempty"`
	Channels    int    `json:"channels,omitempty"`
	Artist      string `json:"artist,omitempty"`
	Album       string `json:"album,omitempty"`
	Title       string `json:"title,omitempty"`
	Genre       string `json:"genre,omitempty"`
	Year        int    `json:"year,omitempty"`
	Description string `json:"description,omitempty"`
}
