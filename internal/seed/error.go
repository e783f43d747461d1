package seed

import "fmt"

// HTTPError is returned when the dataset source answers with a non-2xx status.
type HTTPError struct {
	StatusCode int
	Body       []byte
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("dataset source returned status=%d body=%s", e.StatusCode, string(e.Body))
}
