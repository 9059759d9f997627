package utils

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"
)

func TestFormatTime(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{1500 * time.Millisecond, "1.50s"},
		{2*time.Minute + 5*time.Second, "2m:5s"},
		{3*time.Hour + 4*time.Minute + 5*time.Second, "3h:4m:5s"},
	}
	for _, tt := range tests {
		if got := FormatTime(tt.d); got != tt.want {
			t.Errorf("FormatTime(%v): expected %q, got %q", tt.d, tt.want, got)
		}
	}
}

func TestColorize(t *testing.T) {
	if got := Colorize(false, ErrorColor, "x"); got != "x" {
		t.Errorf("expected plain text, got %q", got)
	}
	if got := Colorize(true, ErrorColor, "x"); got != ErrorColor+"x"+DefaultColor {
		t.Errorf("expected colored text, got %q", got)
	}
}

func TestSpinner(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner(&buf, false)
	s.Start("working")
	time.Sleep(10 * time.Millisecond)
	s.Stop()
	if !strings.Contains(buf.String(), "working") {
		t.Errorf("expected the message, got %q", buf.String())
	}
}

func TestDownloadImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/image.png" {
			http.NotFound(w, r)
			return
		}
		io.WriteString(w, "payload")
	}))
	defer srv.Close()

	f, err := DownloadImage(context.Background(), srv.URL+"/image.png")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(f.Name())
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil || string(data) != "payload" {
		t.Errorf("expected the payload, got %q %v", data, err)
	}

	if _, err := DownloadImage(context.Background(), srv.URL+"/missing"); err == nil {
		t.Error("expected an error on a missing image")
	}
}
