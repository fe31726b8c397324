package store

import "sync"

// PhotoUpload is the transient file selection made before a profile photo
// upload is confirmed.
type PhotoUpload struct {
	URI      string `json:"uri"`
	FileName string `json:"fileName"`
	MimeType string `json:"mimeType"`
	Size     int64  `json:"size,omitempty"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
}

// AppState holds the in-memory UI-adjacent state the screens read: the
// selected calendar date, loading flags, and the pending photo selection.
// Unlike the session it is intentionally not persisted.
type AppState struct {
	mu sync.RWMutex

	date          string
	correctedDate string

	loading map[string]bool

	photo          *PhotoUpload
	previewURI     string
	uploadProgress int
	uploading      bool
	uploadError    string
}

func NewAppState() *AppState {
	return &AppState{loading: make(map[string]bool)}
}

func (s *AppState) SetDate(date string) {
	s.mu.Lock()
	s.date = date
	s.mu.Unlock()
}

func (s *AppState) Date() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.date
}

func (s *AppState) SetCorrectedDate(date string) {
	s.mu.Lock()
	s.correctedDate = date
	s.mu.Unlock()
}

func (s *AppState) CorrectedDate() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.correctedDate
}

// SetLoading flags a named operation as in flight.
func (s *AppState) SetLoading(name string, loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if loading {
		s.loading[name] = true
		return
	}
	delete(s.loading, name)
}

func (s *AppState) Loading(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading[name]
}

func (s *AppState) AnyLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.loading) > 0
}

func (s *AppState) SelectPhoto(photo PhotoUpload) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.photo = &photo
	s.previewURI = photo.URI
	s.uploadError = ""
	s.uploadProgress = 0
}

func (s *AppState) Photo() *PhotoUpload {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.photo == nil {
		return nil
	}
	copied := *s.photo
	return &copied
}

func (s *AppState) HasPhoto() bool {
	return s.Photo() != nil
}

// ValidPhoto checks the selection is an image reference the upload
// endpoint will accept.
func (s *AppState) ValidPhoto() bool {
	p := s.Photo()
	if p == nil || p.URI == "" {
		return false
	}
	switch p.MimeType {
	case "image/jpeg", "image/png", "image/webp":
		return true
	default:
		return false
	}
}

func (s *AppState) SetUploading(uploading bool) {
	s.mu.Lock()
	s.uploading = uploading
	s.mu.Unlock()
}

func (s *AppState) Uploading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.uploading
}

func (s *AppState) SetUploadProgress(progress int) {
	s.mu.Lock()
	s.uploadProgress = progress
	s.mu.Unlock()
}

func (s *AppState) SetUploadError(message string) {
	s.mu.Lock()
	s.uploadError = message
	s.mu.Unlock()
}

func (s *AppState) UploadError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.uploadError
}

func (s *AppState) ClearPhoto() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.photo = nil
	s.previewURI = ""
	s.uploadProgress = 0
	s.uploading = false
	s.uploadError = ""
}
