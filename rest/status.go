package rest

import "net/http"

// longDescriptions supplies the human sentence for synthesized error
// messages on the statuses this API is known to return.
var longDescriptions = map[int]string{
	http.StatusBadRequest:            "The request could not be understood by the server",
	http.StatusUnauthorized:          "The request requires user authentication",
	http.StatusForbidden:             "The server understood the request, but is refusing to fulfill it",
	http.StatusNotFound:              "The server has not found anything matching the requested URL",
	http.StatusMethodNotAllowed:      "The method specified is not allowed for this resource",
	http.StatusConflict:              "The request could not be completed due to a conflict with the current state of the resource",
	http.StatusLengthRequired:        "The server refuses to accept the request without a defined Content-Length",
	http.StatusRequestEntityTooLarge: "The request entity is larger than the server is willing to process",
	http.StatusInternalServerError:   "The server encountered an unexpected condition which prevented it from fulfilling the request",
	http.StatusNotImplemented:        "The server does not support the functionality required to fulfill the request",
	http.StatusBadGateway:            "The server received an invalid response from the upstream server",
	http.StatusServiceUnavailable:    "The server is currently unable to handle the request",
}

// describeStatus returns the short reason phrase and long description for
// a status code, with fallbacks for codes outside the table.
func describeStatus(code int) (short, long string) {
	short = http.StatusText(code)
	if short == "" {
		short = "?"
	}
	long = longDescriptions[code]
	if long == "" {
		long = "Undefined error"
	}
	return short, long
}
