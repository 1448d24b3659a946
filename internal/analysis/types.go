package analysis

// UploadResponse describes an accepted audio upload.
type UploadResponse struct {
	SessionID       string  `json:"session_id"`
	Filename        string  `json:"filename"`
	DurationSeconds float64 `json:"duration_seconds"`
	SampleRate      int     `json:"sample_rate"`
	Message         string  `json:"message"`
}

// PitchAnalysis is the server-side range estimate.
type PitchAnalysis struct {
	MinPitchHz    float64 `json:"min_pitch_hz"`
	MaxPitchHz    float64 `json:"max_pitch_hz"`
	MedianPitchHz float64 `json:"median_pitch_hz"`
	PitchStdHz    float64 `json:"pitch_std_hz"`

	MinPitchNote string `json:"min_pitch_note"`
	MaxPitchNote string `json:"max_pitch_note"`

	DetectedVoiceType string  `json:"detected_voice_type"`
	OctaveRange       float64 `json:"octave_range"`
}

// SimilarArtist is one entry of the optional similarity list.
type SimilarArtist struct {
	Name            string  `json:"name"`
	SimilarityScore float64 `json:"similarity_score"`
	VoiceType       string  `json:"voice_type,omitempty"`
	Genre           string  `json:"genre,omitempty"`
}

// RecommendedSong is one entry of the optional recommendation list.
type RecommendedSong struct {
	Title           string  `json:"title"`
	ArtistName      string  `json:"artist_name"`
	PitchMatchScore float64 `json:"pitch_match_score"`
	Difficulty      int     `json:"difficulty,omitempty"`
}

// Result is the full analyze-voice response.
type Result struct {
	SessionID string        `json:"session_id"`
	Pitch     PitchAnalysis `json:"pitch_analysis"`

	TopSimilarArtists []SimilarArtist   `json:"top_similar_artists,omitempty"`
	RecommendedSongs  []RecommendedSong `json:"recommended_songs,omitempty"`

	AudioDurationSeconds float64 `json:"audio_duration_seconds"`
}
