package present

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/teimsafety/ppectl/internal/media"
	"github.com/teimsafety/ppectl/internal/services"
	tu "github.com/teimsafety/ppectl/internal/testing"
)

func newTestPresenter(t *testing.T, notifier services.Notifier) (*Presenter, *media.Ledger) {
	t.Helper()

	ledger, err := media.NewLedger(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("failed to create ledger: %v", err)
	}

	return NewPresenter(ledger, notifier, "http://example.com/", nil), ledger
}

func TestPresenter(t *testing.T) {
	t.Run("Present", func(t *testing.T) {
		t.Run("Resolves Relative Paths", func(t *testing.T) {
			presenter, _ := newTestPresenter(t, nil)

			display, err := presenter.Present(&services.DetectionResult{
				OriginalPath:  "/media/in/1.jpg",
				AnnotatedPath: "media/out/1.jpg",
			})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if display.OriginalURL != "http://example.com/media/in/1.jpg" {
				t.Errorf("unexpected original URL: %s", display.OriginalURL)
			}
			if display.AnnotatedURL != "http://example.com/media/out/1.jpg" {
				t.Errorf("unexpected annotated URL: %s", display.AnnotatedURL)
			}
		})

		t.Run("Passes Absolute URLs Through", func(t *testing.T) {
			presenter, _ := newTestPresenter(t, nil)

			display, err := presenter.Present(&services.DetectionResult{
				AnnotatedPath: "https://cdn.example.com/out/1.jpg",
			})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if display.AnnotatedURL != "https://cdn.example.com/out/1.jpg" {
				t.Errorf("unexpected annotated URL: %s", display.AnnotatedURL)
			}
		})

		t.Run("Publishes Raw Annotated Bytes", func(t *testing.T) {
			presenter, ledger := newTestPresenter(t, nil)

			display, err := presenter.Present(&services.DetectionResult{
				AnnotatedBytes: []byte("annotated png bytes"),
				AnnotatedMIME:  "image/png",
			})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			handle, ok := ledger.Handle(media.PurposeResult)
			if !ok {
				t.Fatal("expected a result handle to be published")
			}
			if display.AnnotatedURL != handle {
				t.Errorf("expected display to point at handle %s, got %s", handle, display.AnnotatedURL)
			}

			data, err := os.ReadFile(handle)
			if err != nil {
				t.Fatalf("failed to read handle: %v", err)
			}
			if string(data) != "annotated png bytes" {
				t.Errorf("unexpected handle content: %q", data)
			}
		})

		t.Run("Sorts Summary Rows", func(t *testing.T) {
			presenter, _ := newTestPresenter(t, nil)

			display, err := presenter.Present(&services.DetectionResult{
				Summary: map[string]int{"vest": 2, "helmet": 1, "boots": 3},
			})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			want := []string{"boots", "helmet", "vest"}
			if len(display.Summary) != len(want) {
				t.Fatalf("expected %d rows, got %d", len(want), len(display.Summary))
			}
			for i, label := range want {
				if display.Summary[i].Label != label {
					t.Errorf("row %d: expected %s, got %s", i, label, display.Summary[i].Label)
				}
			}
		})

		t.Run("Rejects Nil Result", func(t *testing.T) {
			presenter, _ := newTestPresenter(t, nil)

			if _, err := presenter.Present(nil); err == nil {
				t.Fatal("expected error for nil result")
			}
		})

		t.Run("Keeps Video Flag", func(t *testing.T) {
			presenter, _ := newTestPresenter(t, nil)

			display, err := presenter.Present(&services.DetectionResult{IsVideo: true})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !display.IsVideo {
				t.Error("expected video flag to survive presentation")
			}
		})
	})

	t.Run("Notify", func(t *testing.T) {
		t.Run("Delegates To Notifier", func(t *testing.T) {
			notifier := &tu.MockNotifier{}
			presenter, _ := newTestPresenter(t, notifier)

			if err := presenter.Notify(context.Background(), services.NotifyPPE); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if len(notifier.Kinds) != 1 || notifier.Kinds[0] != services.NotifyPPE {
				t.Errorf("unexpected sends: %v", notifier.Kinds)
			}
		})

		t.Run("Surfaces Failure Without State", func(t *testing.T) {
			notifier := &tu.MockNotifier{Err: errors.New("relay down")}
			presenter, _ := newTestPresenter(t, notifier)

			if err := presenter.Notify(context.Background(), services.NotifyMachine); err == nil {
				t.Fatal("expected notifier error to propagate")
			}
		})

		t.Run("Rejects Missing Notifier", func(t *testing.T) {
			presenter, _ := newTestPresenter(t, nil)

			if err := presenter.Notify(context.Background(), services.NotifyPPE); err == nil {
				t.Fatal("expected error without notifier")
			}
		})
	})
}
