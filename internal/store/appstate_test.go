package store

import "testing"

func TestAppStateLoadingFlags(t *testing.T) {
	s := NewAppState()

	if s.AnyLoading() {
		t.Fatal("fresh state should not be loading")
	}

	s.SetLoading("schedules", true)
	s.SetLoading("users", true)
	if !s.Loading("schedules") || !s.AnyLoading() {
		t.Fatal("loading flag lost")
	}

	s.SetLoading("schedules", false)
	if s.Loading("schedules") {
		t.Fatal("flag survived clearing")
	}
	if !s.AnyLoading() {
		t.Fatal("unrelated flag cleared")
	}
}

func TestAppStatePhotoSelection(t *testing.T) {
	s := NewAppState()

	if s.HasPhoto() || s.ValidPhoto() {
		t.Fatal("fresh state should have no photo")
	}

	s.SelectPhoto(PhotoUpload{URI: "file:///tmp/a.png", FileName: "a.png", MimeType: "image/png"})
	if !s.HasPhoto() || !s.ValidPhoto() {
		t.Fatal("valid selection rejected")
	}

	// returned copy must not alias internal state
	photo := s.Photo()
	photo.MimeType = "application/pdf"
	if !s.ValidPhoto() {
		t.Fatal("caller mutation leaked into the state")
	}

	s.SelectPhoto(PhotoUpload{URI: "file:///tmp/b.pdf", MimeType: "application/pdf"})
	if s.ValidPhoto() {
		t.Fatal("pdf selection accepted")
	}

	s.ClearPhoto()
	if s.HasPhoto() {
		t.Fatal("photo survived ClearPhoto")
	}
}

func TestAppStateUploadLifecycle(t *testing.T) {
	s := NewAppState()

	s.SelectPhoto(PhotoUpload{URI: "file:///tmp/a.jpg", MimeType: "image/jpeg"})
	s.SetUploading(true)
	s.SetUploadProgress(40)
	if !s.Uploading() {
		t.Fatal("uploading flag not set")
	}

	s.SetUploadError("connection lost")
	if s.UploadError() != "connection lost" {
		t.Fatalf("error = %q", s.UploadError())
	}

	s.ClearPhoto()
	if s.Uploading() || s.UploadError() != "" {
		t.Fatal("upload state survived ClearPhoto")
	}
}
