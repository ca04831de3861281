package sources

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// ErrNotFound signalisiert, dass eine Quelle den Spieler explizit nicht kennt.
// Wird nie erneut versucht.
var ErrNotFound = errors.New("spieler bei dieser quelle nicht gefunden")

// TransientError ist ein vorübergehender Quellenfehler (Timeout, 5xx, 429,
// Block-Seite), bei dem sich ein erneuter Versuch lohnt.
type TransientError struct {
	Source     string
	StatusCode int
	Err        error
}

func (e *TransientError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: transienter fehler (status=%d): %v", e.Source, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: transienter fehler: %v", e.Source, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// PermanentError ist ein endgültiger Quellenfehler (4xx außer 429, kaputte
// Konfiguration), bei dem Retries sinnlos sind.
type PermanentError struct {
	Source     string
	StatusCode int
	Err        error
}

func (e *PermanentError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: permanenter fehler (status=%d): %v", e.Source, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: permanenter fehler: %v", e.Source, e.Err)
}

func (e *PermanentError) Unwrap() error { return e.Err }

// IsRetryable entscheidet, ob ein Fehler einen weiteren Versuch rechtfertigt.
// Abbruch durch den Kontext ist nie retrybar.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var perm *PermanentError
	if errors.As(err, &perm) {
		return false
	}
	if errors.Is(err, ErrNotFound) {
		return false
	}
	var trans *TransientError
	if errors.As(err, &trans) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return false
}

// ClassifyStatus ordnet einen HTTP-Status einem Fehlertyp zu. 429 und 5xx
// gelten als transient, alle übrigen Nicht-2xx-Status als permanent.
func ClassifyStatus(source string, status int) error {
	switch {
	case status == http.StatusTooManyRequests || status >= 500:
		return &TransientError{Source: source, StatusCode: status, Err: errors.New("quelle vorübergehend nicht erreichbar")}
	case status == http.StatusNotFound:
		return fmt.Errorf("%s: status %d: %w", source, status, ErrNotFound)
	default:
		return &PermanentError{Source: source, StatusCode: status, Err: errors.New("anfrage abgelehnt")}
	}
}
