package directory

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

var ErrUnexpectedStatus = errors.New("unexpected response status code")

func errorFromResponse(response *http.Response) error {
	switch {
	case response.StatusCode == http.StatusBadRequest:
		var decodedError struct {
			Error   string `json:"error"`
			Message string `json:"errorMessage"`
		}

		body, _ := io.ReadAll(response.Body)
		_ = json.Unmarshal(body, &decodedError)

		return &BadRequestError{ErrorType: decodedError.Error, Message: decodedError.Message}
	case response.StatusCode == http.StatusForbidden:
		return &ForbiddenError{}
	case response.StatusCode == http.StatusTooManyRequests:
		return &TooManyRequestsError{}
	case response.StatusCode >= 500:
		return &ServerError{Status: response.StatusCode}
	}

	return fmt.Errorf("%w: %d", ErrUnexpectedStatus, response.StatusCode)
}

// BadRequestError is returned when the directory considers request params invalid
type BadRequestError struct {
	ErrorType string
	Message   string
}

func (e *BadRequestError) Error() string {
	return fmt.Sprintf("400 %s: %s", e.ErrorType, e.Message)
}

type ForbiddenError struct {
}

func (*ForbiddenError) Error() string {
	return "403: Forbidden"
}

type TooManyRequestsError struct {
}

func (*TooManyRequestsError) Error() string {
	return "429: Too Many Requests"
}

// ServerError happens when the directory responds with any 50* status
type ServerError struct {
	Status int
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, "Server error")
}
